package gfx

// Materials fill descriptor-set slots; a shader may declare at most this many.
const MaxMaterialSlots = 4

// MaterialAttributeKind is the declared binding type of one material member.
type MaterialAttributeKind uint8

const (
	MaterialTexture2D MaterialAttributeKind = iota
	MaterialSampler
	MaterialUniform
)

// MaterialAttribute declares one member of a material layout. Uniform members
// carry the block's field layout.
type MaterialAttribute struct {
	Name    string
	Kind    MaterialAttributeKind
	Uniform UniformLayout
}

// MaterialLayout is the ordered binding list for one material slot.
type MaterialLayout struct {
	Attributes []MaterialAttribute
}

func (l MaterialLayout) Empty() bool {
	return len(l.Attributes) == 0
}

// MaterialRefKind identifies what a bound material member points at.
type MaterialRefKind uint8

const (
	MaterialRefTexture2D MaterialRefKind = iota
	MaterialRefSampler
	MaterialRefUniform
	MaterialRefFramebufferColor
	MaterialRefImmUniform
)

// MaterialAttributeRef is a realized binding: a persistent resource ID or an
// immediate-mode uniform byte range valid for this frame only.
type MaterialAttributeRef struct {
	Kind  MaterialRefKind
	ID    ResourceID
	Start uint32
	Len   uint32
}

// Material is an ordered set of refs matching one material layout, built
// fresh each frame (refs may point at frame-local data).
type Material struct {
	Refs []MaterialAttributeRef
}

func materialEqual(a, b []MaterialAttributeRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TextureRef binds a persistent 2D texture.
func TextureRef(t *Texture2D) MaterialAttributeRef {
	return MaterialAttributeRef{Kind: MaterialRefTexture2D, ID: t.res.id}
}

// SamplerRef binds a persistent sampler.
func SamplerRef(s *Sampler) MaterialAttributeRef {
	return MaterialAttributeRef{Kind: MaterialRefSampler, ID: s.res.id}
}

// UniformRef binds a persistent uniform buffer whole.
func UniformRef(u *UniformBuffer) MaterialAttributeRef {
	return MaterialAttributeRef{Kind: MaterialRefUniform, ID: u.res.id}
}

// FramebufferColorRef binds an off-screen framebuffer's color image for
// sampling.
func FramebufferColorRef(f *Framebuffer) MaterialAttributeRef {
	return MaterialAttributeRef{Kind: MaterialRefFramebufferColor, ID: f.res.id}
}

// ImmUniformRef binds an immediate-mode uniform range pushed this frame.
func ImmUniformRef(u ImmUniform) MaterialAttributeRef {
	return MaterialAttributeRef{Kind: MaterialRefImmUniform, Start: u.Start, Len: u.Len}
}
