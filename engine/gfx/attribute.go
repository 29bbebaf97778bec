package gfx

// ScalarKind identifies the machine scalar backing a vertex or pixel channel.
type ScalarKind uint8

const (
	ScalarF32 ScalarKind = iota
	ScalarU8
	ScalarU16
	ScalarU32
)

func (s ScalarKind) Size() uint32 {
	switch s {
	case ScalarU8:
		return 1
	case ScalarU16:
		return 2
	default:
		return 4
	}
}

// Normalization declares how an unsigned-integer channel is read by shaders.
// NormalizationSrgb is only valid for texture pixel formats.
type Normalization uint8

const (
	NormalizationNone Normalization = iota
	NormalizationZeroToOne
	NormalizationMinusOneToOne
	NormalizationSrgb
)

// VertexAttributeKind describes one vertex field on the wire: scalar family,
// lane count and normalization tag. The backend maps each kind to a concrete
// wire format; unsupported combinations fail at shader registration.
type VertexAttributeKind struct {
	Scalar ScalarKind
	Lanes  uint8
	Norm   Normalization
}

func (k VertexAttributeKind) Size() uint32 {
	return k.Scalar.Size() * uint32(k.Lanes)
}

var (
	AttrF32  = VertexAttributeKind{Scalar: ScalarF32, Lanes: 1}
	AttrVec2 = VertexAttributeKind{Scalar: ScalarF32, Lanes: 2}
	AttrVec3 = VertexAttributeKind{Scalar: ScalarF32, Lanes: 3}
	AttrVec4 = VertexAttributeKind{Scalar: ScalarF32, Lanes: 4}

	AttrU8       = VertexAttributeKind{Scalar: ScalarU8, Lanes: 1}
	AttrU8Vec2   = VertexAttributeKind{Scalar: ScalarU8, Lanes: 2}
	AttrU8Vec4   = VertexAttributeKind{Scalar: ScalarU8, Lanes: 4}
	AttrU16      = VertexAttributeKind{Scalar: ScalarU16, Lanes: 1}
	AttrU16Vec2  = VertexAttributeKind{Scalar: ScalarU16, Lanes: 2}
	AttrU16Vec4  = VertexAttributeKind{Scalar: ScalarU16, Lanes: 4}
	AttrU32      = VertexAttributeKind{Scalar: ScalarU32, Lanes: 1}
	AttrU32Vec2  = VertexAttributeKind{Scalar: ScalarU32, Lanes: 2}
	AttrU32Vec4  = VertexAttributeKind{Scalar: ScalarU32, Lanes: 4}
	AttrU8UNorm  = VertexAttributeKind{Scalar: ScalarU8, Lanes: 1, Norm: NormalizationZeroToOne}
	AttrU8Vec2UN = VertexAttributeKind{Scalar: ScalarU8, Lanes: 2, Norm: NormalizationZeroToOne}
	AttrU8Vec4UN = VertexAttributeKind{Scalar: ScalarU8, Lanes: 4, Norm: NormalizationZeroToOne}
	AttrU8Vec4SN = VertexAttributeKind{Scalar: ScalarU8, Lanes: 4, Norm: NormalizationMinusOneToOne}
)

// UniformAttributeKind describes one field of a uniform block or push-constant
// block. Padding entries reserve bytes without emitting a shader declaration.
type UniformAttributeKind uint8

const (
	UniformF32 UniformAttributeKind = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat2
	UniformMat3
	UniformMat4
	UniformPadding
)

// Size in bytes. Mat3 occupies three vec4-aligned columns, matching GLSL
// block layout rules.
func (k UniformAttributeKind) Size() uint32 {
	switch k {
	case UniformF32:
		return 4
	case UniformVec2:
		return 8
	case UniformVec3:
		return 12
	case UniformVec4:
		return 16
	case UniformMat2:
		return 16
	case UniformMat3:
		return 48
	case UniformMat4:
		return 64
	default:
		return 0
	}
}

func (k UniformAttributeKind) Alignment() uint32 {
	switch k {
	case UniformF32:
		return 4
	case UniformVec2, UniformMat2:
		return 8
	default:
		return 16
	}
}

func (k UniformAttributeKind) GLSLType() string {
	switch k {
	case UniformF32:
		return "float"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat2:
		return "mat2"
	case UniformMat3:
		return "mat3"
	default:
		return "mat4"
	}
}

// PixelFormat describes texture storage: channel scalar, channel count and
// normalization (sRGB allowed here only).
type PixelFormat struct {
	Scalar ScalarKind
	Lanes  uint8
	Norm   Normalization
}

func (p PixelFormat) TexelSize() uint32 {
	return p.Scalar.Size() * uint32(p.Lanes)
}

var (
	PixelRGBA8      = PixelFormat{Scalar: ScalarU8, Lanes: 4, Norm: NormalizationZeroToOne}
	PixelRGBA8Srgb  = PixelFormat{Scalar: ScalarU8, Lanes: 4, Norm: NormalizationSrgb}
	PixelR8         = PixelFormat{Scalar: ScalarU8, Lanes: 1, Norm: NormalizationZeroToOne}
	PixelR16UInt    = PixelFormat{Scalar: ScalarU16, Lanes: 1}
	PixelR32UInt    = PixelFormat{Scalar: ScalarU32, Lanes: 1}
	PixelRGBA32F    = PixelFormat{Scalar: ScalarF32, Lanes: 4}
	PixelRG8        = PixelFormat{Scalar: ScalarU8, Lanes: 2, Norm: NormalizationZeroToOne}
	PixelR8UInt     = PixelFormat{Scalar: ScalarU8, Lanes: 1}
	PixelRGBA8UInt  = PixelFormat{Scalar: ScalarU8, Lanes: 4}
	PixelRGBA16UInt = PixelFormat{Scalar: ScalarU16, Lanes: 4}
)
