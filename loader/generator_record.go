package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/webgfx/gentest/expand"
	"github.com/webgfx/gentest/types"
)

// generatorRecord is the declarative replacement for ad-hoc scripted entry
// generation: a template entry plus an ordered matrix of parameter values,
// expanded by cross product with %(key)s interpolation. The supported
// operations are closed by construction; a record can only ever stamp out
// entries, never run code.
type generatorRecord struct {
	Generator struct {
		Template types.TestEntry `yaml:"template"`
		Matrix   matrix          `yaml:"matrix"`
	} `yaml:"generator"`
}

type axis struct {
	key    string
	values []string
}

// matrix preserves axis declaration order so generated entries come out in a
// stable, author-controlled order.
type matrix []axis

func (m *matrix) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("generator matrix must be a mapping")
	}
	var result matrix
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if valueNode.Kind != yaml.SequenceNode {
			return fmt.Errorf("generator matrix axis %q must be a sequence", keyNode.Value)
		}
		a := axis{key: keyNode.Value}
		for _, item := range valueNode.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("generator matrix axis %q must hold scalars", keyNode.Value)
			}
			a.values = append(a.values, item.Value)
		}
		if len(a.values) == 0 {
			return fmt.Errorf("generator matrix axis %q is empty", keyNode.Value)
		}
		result = append(result, a)
	}
	*m = result
	return nil
}

// expand produces one entry per matrix combination, interpolating the
// template's text fields.
func (g *generatorRecord) expand() ([]types.TestEntry, error) {
	template := g.Generator.Template
	if len(g.Generator.Matrix) == 0 {
		return nil, types.NewInvalidDefinition(template.Name,
			"generator record requires a non-empty matrix")
	}

	var entries []types.TestEntry
	params := map[string]string{}
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(g.Generator.Matrix) {
			entry := template.Clone()
			entry.Name = expand.Interpolate(entry.Name, params)
			entry.Desc = expand.Interpolate(entry.Desc, params)
			entry.Notes = expand.Interpolate(entry.Notes, params)
			entry.Code = expand.Interpolate(entry.Code, params)
			entry.Expected = expand.Interpolate(entry.Expected, params)
			entry.Reference = expand.Interpolate(entry.Reference, params)
			entry.HTMLReference = expand.Interpolate(entry.HTMLReference, params)
			entries = append(entries, entry)
			return
		}
		a := g.Generator.Matrix[depth]
		for _, value := range a.values {
			params[a.key] = value
			walk(depth + 1)
		}
		delete(params, a.key)
	}
	walk(0)

	return entries, nil
}
