package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krill-engine/krill/engine/gfx"
)

const assembleTestCode = "[varying]\nvec3 vcolor;\n[vertex]\nvoid main() {\n  vcolor = color;\n}\n[fragment]\nvoid main() {\n  out_color = vec4(vcolor, 1.0);\n}"

func assembleTestDef() gfx.ShaderFullDefinition {
	return gfx.ShaderFullDefinition{
		Definition: gfx.ShaderDefinition{Code: assembleTestCode},
		VertexLayout: gfx.NewVertexLayout().
			Field("position", gfx.AttrVec2).
			Field("color", gfx.AttrVec3).
			MustBuild(20),
		InstanceLayout: gfx.NewVertexLayout().
			Field("offset", gfx.AttrVec2).
			MustBuild(8),
		PushConstantLayout: gfx.NewUniformLayout().
			Field("mvp", gfx.UniformMat4).
			MustBuild(64),
		MaterialLayouts: []gfx.MaterialLayout{{
			Attributes: []gfx.MaterialAttribute{
				{Name: "tex", Kind: gfx.MaterialTexture2D},
				{Name: "sp", Kind: gfx.MaterialSampler},
				{Name: "globals", Kind: gfx.MaterialUniform, Uniform: gfx.NewUniformLayout().
					Field("tint", gfx.UniformVec4).
					MustBuild(16)},
			},
		}},
	}
}

func TestAssembleGLSLVertexSource(t *testing.T) {
	def := assembleTestDef()
	vs, _, err := AssembleGLSL(&def)
	require.NoError(t, err)

	want := "#version 450\n" +
		"layout(location = 0) in vec2 position;\n" +
		"layout(location = 1) in vec3 color;\n" +
		"layout(location = 2) in vec2 offset;\n" +
		"layout(location = 0) out vec3 vcolor;\n" +
		"layout(set = 0, binding = 0) uniform texture2D tex;\n" +
		"layout(set = 0, binding = 1) uniform sampler sp;\n" +
		"layout(set = 0, binding = 2) uniform _I_1 {\n" +
		"  vec4 tint;\n" +
		"} globals;\n" +
		"layout(push_constant) uniform _I_2 {\n" +
		"  mat4 mvp;\n" +
		"} push;\n" +
		"void main() {\n" +
		"  vcolor = color;\n" +
		"}\n"
	assert.Equal(t, want, vs)
}

func TestAssembleGLSLFragmentSource(t *testing.T) {
	def := assembleTestDef()
	_, fs, err := AssembleGLSL(&def)
	require.NoError(t, err)

	want := "#version 450\n" +
		"layout(location = 0) in vec3 vcolor;\n" +
		"\nlayout(location = 0) out vec4 out_color;\n" +
		"layout(set = 0, binding = 0) uniform texture2D tex;\n" +
		"layout(set = 0, binding = 1) uniform sampler sp;\n" +
		"layout(set = 0, binding = 2) uniform _I_1 {\n" +
		"  vec4 tint;\n" +
		"} globals;\n" +
		"layout(push_constant) uniform _I_2 {\n" +
		"  mat4 mvp;\n" +
		"} push;\n" +
		"void main() {\n" +
		"  out_color = vec4(vcolor, 1.0);\n" +
		"}\n"
	assert.Equal(t, want, fs)
}

func TestAssembleGLSLNoVarying(t *testing.T) {
	def := gfx.ShaderFullDefinition{
		Definition: gfx.ShaderDefinition{
			Code: "[vertex]\nvoid main() { gl_Position = vec4(0.0); }\n[fragment]\nvoid main() { out_color = vec4(1.0); }",
		},
	}
	vs, fs, err := AssembleGLSL(&def)
	require.NoError(t, err)
	assert.NotContains(t, vs, "layout(location = 0) out vec3")
	assert.Contains(t, fs, "layout(location = 0) out vec4 out_color;")
	// no layouts, no blocks
	assert.NotContains(t, vs, "_I_")
	assert.NotContains(t, vs, "push_constant")
}

func TestSplitShaderSections(t *testing.T) {
	varying, vertex, fragment, err := splitShaderSections(assembleTestCode)
	require.NoError(t, err)
	assert.Equal(t, "vec3 vcolor;\n", varying)
	assert.Equal(t, "void main() {\n  vcolor = color;\n}\n", vertex)
	assert.Equal(t, "void main() {\n  out_color = vec4(vcolor, 1.0);\n}\n", fragment)
}

func TestSplitShaderSectionsMissingFragment(t *testing.T) {
	_, _, _, err := splitShaderSections("[vertex]\nvoid main() {}")
	assert.Error(t, err)
}

func TestSplitShaderSectionsDuplicate(t *testing.T) {
	_, _, _, err := splitShaderSections("[vertex]\n[vertex]\n[fragment]\n")
	assert.Error(t, err)
}

func TestAssembleGLSLUnsupportedVertexAttribute(t *testing.T) {
	def := gfx.ShaderFullDefinition{
		Definition: gfx.ShaderDefinition{Code: assembleTestCode},
		VertexLayout: gfx.VertexLayout{
			Attributes: []gfx.StructAttribute[gfx.VertexAttributeKind]{{
				Name:      "bad",
				Attribute: gfx.VertexAttributeKind{Scalar: gfx.ScalarU8, Lanes: 3},
			}},
			Size: 3,
		},
	}
	_, _, err := AssembleGLSL(&def)
	assert.Error(t, err)
}

func TestUniformBlockSkipsPadding(t *testing.T) {
	def := gfx.ShaderFullDefinition{
		Definition: gfx.ShaderDefinition{Code: assembleTestCode},
		PushConstantLayout: gfx.NewUniformLayout().
			Field("intensity", gfx.UniformF32).
			Padding(12).
			Field("tint", gfx.UniformVec4).
			MustBuild(32),
	}
	vs, _, err := AssembleGLSL(&def)
	require.NoError(t, err)
	assert.Contains(t, vs, "layout(push_constant) uniform _I_1 {\n  float intensity;\n  vec4 tint;\n} push;\n")
}
