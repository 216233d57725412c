// Package types defines the data model for canvas conformance test
// definitions: declarative entries, execution targets, and variants.
package types

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestEntry is one declarative test definition as authored in the corpus.
// A single entry may expand into several concrete tests via variants and
// enabled targets.
type TestEntry struct {
	Name          string   `yaml:"name"`
	Desc          string   `yaml:"desc,omitempty"`
	Notes         string   `yaml:"notes,omitempty"`
	Code          string   `yaml:"code"`
	Expected      string   `yaml:"expected,omitempty"`
	Reference     string   `yaml:"reference,omitempty"`
	HTMLReference string   `yaml:"html_reference,omitempty"`
	Variants      Variants `yaml:"variants,omitempty"`
	CanvasTypes   []string `yaml:"canvasType,omitempty"`
	Manual        bool     `yaml:"manual,omitempty"`
	Canvas        string   `yaml:"canvas,omitempty"`
	Size          string   `yaml:"size,omitempty"`
	Images        []string `yaml:"images,omitempty"`
	SVGImages     []string `yaml:"svgimages,omitempty"`
	Attributes    string   `yaml:"attributes,omitempty"`
	Timeout       string   `yaml:"timeout,omitempty"`
	TestType      string   `yaml:"test_type,omitempty"`
	Fuzzy         string   `yaml:"fuzzy,omitempty"`
	Disabled      bool     `yaml:"DISABLED,omitempty"`
}

// HasReference reports whether the entry is a reference (pixel-comparison)
// test rather than a harness (scripted-assertion) test.
func (e *TestEntry) HasReference() bool {
	return e.Reference != "" || e.HTMLReference != ""
}

// Clone returns a deep copy of the entry. Variant expansion works on copies
// so the source corpus is never mutated.
func (e *TestEntry) Clone() TestEntry {
	c := *e
	c.CanvasTypes = append([]string(nil), e.CanvasTypes...)
	c.Images = append([]string(nil), e.Images...)
	c.SVGImages = append([]string(nil), e.SVGImages...)
	c.Variants = e.Variants.clone()
	return c
}

// ApplyParams merges variant parameters into the entry, shallow-overwriting
// the fields named by recognized keys. Unrecognized keys participate in text
// interpolation only.
func (e *TestEntry) ApplyParams(params map[string]string) {
	for key, value := range params {
		switch key {
		case "desc":
			e.Desc = value
		case "notes":
			e.Notes = value
		case "expected":
			e.Expected = value
		case "size":
			e.Size = value
		case "canvas":
			e.Canvas = value
		case "attributes":
			e.Attributes = value
		case "timeout":
			e.Timeout = value
		case "fuzzy":
			e.Fuzzy = value
		case "test_type":
			e.TestType = value
		case "manual":
			e.Manual = value == "true"
		case "canvasType":
			var names []string
			for _, name := range strings.Split(value, ",") {
				names = append(names, strings.TrimSpace(name))
			}
			e.CanvasTypes = names
		}
	}
}

// EnabledTargets resolves the entry's declared canvas types to a target set.
// An entry with no declaration is enabled for all targets.
func (e *TestEntry) EnabledTargets() (TargetSet, error) {
	if len(e.CanvasTypes) == 0 {
		return AllTargetSet(), nil
	}
	set := TargetSet{}
	for _, name := range e.CanvasTypes {
		target, err := ParseTarget(name)
		if err != nil {
			return nil, &InvalidDefinitionError{Test: e.Name, Message: err.Error()}
		}
		set.Add(target)
	}
	return set, nil
}

// Target identifies one of the execution contexts a generated test runs in.
type Target string

const (
	// TargetElement runs against an inline canvas element.
	TargetElement Target = "htmlcanvas"
	// TargetOffscreen runs against an OffscreenCanvas on the main thread.
	TargetOffscreen Target = "offscreencanvas"
	// TargetWorker runs against an OffscreenCanvas in a dedicated worker.
	TargetWorker Target = "worker"
)

// AllTargets returns every valid target.
func AllTargets() []Target {
	return []Target{TargetElement, TargetOffscreen, TargetWorker}
}

// ParseTarget resolves a target name case-insensitively.
func ParseTarget(name string) (Target, error) {
	switch Target(strings.ToLower(name)) {
	case TargetElement:
		return TargetElement, nil
	case TargetOffscreen:
		return TargetOffscreen, nil
	case TargetWorker:
		return TargetWorker, nil
	}
	return "", fmt.Errorf("unknown canvas type %q", name)
}

// TargetSet is a set of enabled targets.
type TargetSet map[Target]bool

// AllTargetSet returns a set containing every target.
func AllTargetSet() TargetSet {
	set := TargetSet{}
	for _, t := range AllTargets() {
		set.Add(t)
	}
	return set
}

// Add inserts a target into the set.
func (s TargetSet) Add(t Target) { s[t] = true }

// Contains reports whether the target is in the set.
func (s TargetSet) Contains(t Target) bool { return s[t] }

// ContainsAny reports whether any of the given targets is in the set.
func (s TargetSet) ContainsAny(targets ...Target) bool {
	for _, t := range targets {
		if s[t] {
			return true
		}
	}
	return false
}

// Intersect returns the targets present in both sets.
func (s TargetSet) Intersect(other TargetSet) TargetSet {
	result := TargetSet{}
	for t := range s {
		if other.Contains(t) {
			result.Add(t)
		}
	}
	return result
}

// Union merges the other set into this one.
func (s TargetSet) Union(other TargetSet) {
	for t := range other {
		s.Add(t)
	}
}

// Names returns the sorted target names, for stable error messages.
func (s TargetSet) Names() []string {
	names := make([]string, 0, len(s))
	for t := range s {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// Variant is a named parameter substitution applied to a base entry.
type Variant struct {
	Name   string
	Params map[string]string
}

// Variants preserves the declaration order of a variant mapping. Order
// matters for duplicate detection and stable output.
type Variants []Variant

// UnmarshalYAML decodes a YAML mapping into an ordered variant list.
func (v *Variants) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("variants must be a mapping, got %s", nodeKind(node))
	}
	var result Variants
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		variant := Variant{Name: keyNode.Value, Params: map[string]string{}}
		switch {
		case valueNode.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(valueNode.Content); j += 2 {
				paramKey, paramValue := valueNode.Content[j], valueNode.Content[j+1]
				if paramValue.Kind != yaml.ScalarNode {
					return fmt.Errorf("variant %q: parameter %q must be a scalar",
						keyNode.Value, paramKey.Value)
				}
				variant.Params[paramKey.Value] = paramValue.Value
			}
		case valueNode.Kind == yaml.ScalarNode && valueNode.Tag == "!!null":
			// Variant with no parameters, only a name suffix.
		default:
			return fmt.Errorf("variant %q: parameters must be a mapping or null", keyNode.Value)
		}
		result = append(result, variant)
	}
	*v = result
	return nil
}

func (v Variants) clone() Variants {
	if v == nil {
		return nil
	}
	result := make(Variants, len(v))
	for i, variant := range v {
		params := make(map[string]string, len(variant.Params))
		for k, value := range variant.Params {
			params[k] = value
		}
		result[i] = Variant{Name: variant.Name, Params: params}
	}
	return result
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "unknown node"
	}
}
