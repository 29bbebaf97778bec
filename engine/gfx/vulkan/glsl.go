package vulkan

import (
	"fmt"
	"strings"

	"github.com/krill-engine/krill/engine/gfx"
)

// Shader source text is split into three ordered sections by these literal
// marker lines.
const (
	sectionVarying  = "[varying]"
	sectionVertex   = "[vertex]"
	sectionFragment = "[fragment]"
)

func splitShaderSections(code string) (varying, vertex, fragment string, err error) {
	sections := map[string]*strings.Builder{}
	var current *strings.Builder
	for _, line := range strings.Split(code, "\n") {
		switch strings.TrimSpace(line) {
		case sectionVarying, sectionVertex, sectionFragment:
			marker := strings.TrimSpace(line)
			if _, dup := sections[marker]; dup {
				return "", "", "", fmt.Errorf("duplicate shader section %s", marker)
			}
			current = &strings.Builder{}
			sections[marker] = current
		default:
			if current != nil {
				current.WriteString(line)
				current.WriteString("\n")
			}
		}
	}
	vertexSec, ok := sections[sectionVertex]
	if !ok {
		return "", "", "", fmt.Errorf("shader code is missing a %s section", sectionVertex)
	}
	fragmentSec, ok := sections[sectionFragment]
	if !ok {
		return "", "", "", fmt.Errorf("shader code is missing a %s section", sectionFragment)
	}
	if varyingSec, ok := sections[sectionVarying]; ok {
		varying = varyingSec.String()
	}
	return varying, vertexSec.String(), fragmentSec.String(), nil
}

// AssembleGLSL expands a shader definition into complete GLSL vertex and
// fragment sources. Every input, varying, uniform block, material binding and
// the push-constant block are generated from the layouts; the user sections
// supply only the function bodies.
//
// Uniform block type names are generated (_I_1, _I_2, ...) since GLSL needs a
// block name but callers only ever address the instance name.
func AssembleGLSL(def *gfx.ShaderFullDefinition) (vertexSource, fragmentSource string, err error) {
	varyingSec, vertexSec, fragmentSec, err := splitShaderSections(def.Definition.Code)
	if err != nil {
		return "", "", err
	}

	var vsHead, fsHead strings.Builder

	location := 0
	for _, layout := range []gfx.VertexLayout{def.VertexLayout, def.InstanceLayout} {
		for _, attr := range layout.Attributes {
			_, typeName, err := VertexAttributeToVulkan(attr.Attribute)
			if err != nil {
				return "", "", fmt.Errorf("vertex input '%s': %w", attr.Name, err)
			}
			fmt.Fprintf(&vsHead, "layout(location = %d) in %s %s;\n", location, typeName, attr.Name)
			location++
		}
	}

	varyingLocation := 0
	for _, decl := range strings.Split(varyingSec, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		fmt.Fprintf(&vsHead, "layout(location = %d) out %s;\n", varyingLocation, decl)
		fmt.Fprintf(&fsHead, "layout(location = %d) in %s;\n", varyingLocation, decl)
		varyingLocation++
	}

	fsHead.WriteString("\nlayout(location = 0) out vec4 out_color;\n")

	// Declarations shared by both stages; every binding is visible to both.
	var decls strings.Builder
	nStructs := 0
	for set, materialLayout := range def.MaterialLayouts {
		for binding, attr := range materialLayout.Attributes {
			switch attr.Kind {
			case gfx.MaterialTexture2D:
				fmt.Fprintf(&decls, "layout(set = %d, binding = %d) uniform texture2D %s;\n", set, binding, attr.Name)
			case gfx.MaterialSampler:
				fmt.Fprintf(&decls, "layout(set = %d, binding = %d) uniform sampler %s;\n", set, binding, attr.Name)
			case gfx.MaterialUniform:
				nStructs++
				prefix := fmt.Sprintf("layout(set = %d, binding = %d) uniform", set, binding)
				writeUniformBlock(&decls, prefix, attr.Name, attr.Uniform, nStructs)
			default:
				return "", "", fmt.Errorf("material binding '%s' has unknown kind %d", attr.Name, attr.Kind)
			}
		}
	}
	if !def.PushConstantLayout.Empty() {
		nStructs++
		writeUniformBlock(&decls, "layout(push_constant) uniform", "push", def.PushConstantLayout, nStructs)
	}

	shared := "#version 450\n"
	vertexSource = shared + vsHead.String() + decls.String() + vertexSec
	fragmentSource = shared + fsHead.String() + decls.String() + fragmentSec
	return vertexSource, fragmentSource, nil
}

func writeUniformBlock(b *strings.Builder, prefix, instanceName string, layout gfx.UniformLayout, n int) {
	fmt.Fprintf(b, "%s _I_%d {\n", prefix, n)
	for _, field := range layout.Attributes {
		if field.Attribute == gfx.UniformPadding {
			continue
		}
		fmt.Fprintf(b, "  %s %s;\n", field.Attribute.GLSLType(), field.Name)
	}
	fmt.Fprintf(b, "} %s;\n", instanceName)
}
