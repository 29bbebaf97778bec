package gfx

import "fmt"

// StructAttribute is one named field of a CPU-side struct that the GPU reads:
// an explicit (name, byte-offset, kind) tuple supplied by the caller or by a
// code-generation step.
type StructAttribute[T any] struct {
	Name      string
	Offset    uint32
	Attribute T
}

// StructLayout describes the full memory layout of such a struct. Size is the
// declared total byte size and must match the packed span of the fields.
type StructLayout[T any] struct {
	Attributes []StructAttribute[T]
	Size       uint32
}

type VertexLayout = StructLayout[VertexAttributeKind]
type UniformLayout = StructLayout[UniformAttributeKind]

func (l StructLayout[T]) Empty() bool {
	return len(l.Attributes) == 0
}

// VertexLayoutBuilder assembles a VertexLayout field by field. Fields must be
// declared in offset order with no gaps; a layout whose declared size differs
// from the sum of its field sizes is rejected at Build time.
type VertexLayoutBuilder struct {
	fields []StructAttribute[VertexAttributeKind]
	offset uint32
}

func NewVertexLayout() *VertexLayoutBuilder {
	return &VertexLayoutBuilder{}
}

func (b *VertexLayoutBuilder) Field(name string, kind VertexAttributeKind) *VertexLayoutBuilder {
	b.fields = append(b.fields, StructAttribute[VertexAttributeKind]{
		Name:      name,
		Offset:    b.offset,
		Attribute: kind,
	})
	b.offset += kind.Size()
	return b
}

func (b *VertexLayoutBuilder) Build(size uint32) (VertexLayout, error) {
	if size != b.offset {
		return VertexLayout{}, fmt.Errorf("vertex layout size mismatch: declared %d bytes, fields span %d bytes (implicit padding must be removed or declared)", size, b.offset)
	}
	return VertexLayout{Attributes: b.fields, Size: size}, nil
}

// MustBuild is Build for layouts known correct at compile time; a mismatch is
// a programming error caught during development.
func (b *VertexLayoutBuilder) MustBuild(size uint32) VertexLayout {
	l, err := b.Build(size)
	if err != nil {
		panic(err)
	}
	return l
}

// UniformLayoutBuilder assembles a UniformLayout. Alignment follows GLSL
// block rules per attribute kind; padding bytes must be declared explicitly
// and produce no shader-visible field.
type UniformLayoutBuilder struct {
	fields []StructAttribute[UniformAttributeKind]
	offset uint32
	err    error
}

func NewUniformLayout() *UniformLayoutBuilder {
	return &UniformLayoutBuilder{}
}

func (b *UniformLayoutBuilder) Field(name string, kind UniformAttributeKind) *UniformLayoutBuilder {
	if b.err != nil {
		return b
	}
	if kind == UniformPadding {
		b.err = fmt.Errorf("uniform field '%s': use Padding for spacer bytes", name)
		return b
	}
	if b.offset%kind.Alignment() != 0 {
		b.err = fmt.Errorf("uniform field '%s' at offset %d is not aligned to %d", name, b.offset, kind.Alignment())
		return b
	}
	b.fields = append(b.fields, StructAttribute[UniformAttributeKind]{
		Name:      name,
		Offset:    b.offset,
		Attribute: kind,
	})
	b.offset += kind.Size()
	return b
}

func (b *UniformLayoutBuilder) Padding(bytes uint32) *UniformLayoutBuilder {
	if b.err != nil {
		return b
	}
	b.offset += bytes
	return b
}

func (b *UniformLayoutBuilder) Build(size uint32) (UniformLayout, error) {
	if b.err != nil {
		return UniformLayout{}, b.err
	}
	if size != b.offset {
		return UniformLayout{}, fmt.Errorf("uniform layout size mismatch: declared %d bytes, fields+padding span %d bytes", size, b.offset)
	}
	return UniformLayout{Attributes: b.fields, Size: size}, nil
}

func (b *UniformLayoutBuilder) MustBuild(size uint32) UniformLayout {
	l, err := b.Build(size)
	if err != nil {
		panic(err)
	}
	return l
}
