package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"htmlcanvas", TargetElement, false},
		{"HtmlCanvas", TargetElement, false},
		{"OFFSCREENCANVAS", TargetOffscreen, false},
		{"worker", TargetWorker, false},
		{"mainthread", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestEnabledTargets_DefaultsToAll(t *testing.T) {
	entry := TestEntry{Name: "2d.example"}
	set, err := entry.EnabledTargets()
	require.NoError(t, err)
	assert.Len(t, set, 3)
}

func TestEnabledTargets_Restricted(t *testing.T) {
	entry := TestEntry{Name: "2d.example", CanvasTypes: []string{"HtmlCanvas", "Worker"}}
	set, err := entry.EnabledTargets()
	require.NoError(t, err)
	assert.True(t, set.Contains(TargetElement))
	assert.False(t, set.Contains(TargetOffscreen))
	assert.True(t, set.Contains(TargetWorker))
}

func TestEnabledTargets_UnknownType(t *testing.T) {
	entry := TestEntry{Name: "2d.example", CanvasTypes: []string{"plasma"}}
	_, err := entry.EnabledTargets()
	require.Error(t, err)

	var invalid *InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "2d.example", invalid.Test)
}

func TestTargetSet_Intersect(t *testing.T) {
	a := TargetSet{TargetElement: true, TargetWorker: true}
	b := TargetSet{TargetWorker: true, TargetOffscreen: true}

	both := a.Intersect(b)
	assert.Len(t, both, 1)
	assert.True(t, both.Contains(TargetWorker))

	var nilSet TargetSet
	assert.Empty(t, nilSet.Intersect(a))
}

func TestTargetSet_Names(t *testing.T) {
	set := TargetSet{TargetWorker: true, TargetElement: true}
	assert.Equal(t, []string{"htmlcanvas", "worker"}, set.Names())
}

func TestVariants_PreserveDeclarationOrder(t *testing.T) {
	src := `
zeta:
  color: blue
alpha:
  color: red
middle:
`
	var variants Variants
	require.NoError(t, yaml.Unmarshal([]byte(src), &variants))

	require.Len(t, variants, 3)
	assert.Equal(t, "zeta", variants[0].Name)
	assert.Equal(t, "alpha", variants[1].Name)
	assert.Equal(t, "middle", variants[2].Name)
	assert.Equal(t, "blue", variants[0].Params["color"])
	assert.Empty(t, variants[2].Params)
}

func TestVariants_RejectNonScalarParams(t *testing.T) {
	src := `
broken:
  values: [1, 2]
`
	var variants Variants
	assert.Error(t, yaml.Unmarshal([]byte(src), &variants))
}

func TestClone_IsDeep(t *testing.T) {
	entry := TestEntry{
		Name:        "2d.example",
		CanvasTypes: []string{"worker"},
		Images:      []string{"red.png"},
		Variants:    Variants{{Name: "v", Params: map[string]string{"k": "1"}}},
	}
	clone := entry.Clone()
	clone.CanvasTypes[0] = "htmlcanvas"
	clone.Images[0] = "blue.png"
	clone.Variants[0].Params["k"] = "2"

	assert.Equal(t, "worker", entry.CanvasTypes[0])
	assert.Equal(t, "red.png", entry.Images[0])
	assert.Equal(t, "1", entry.Variants[0].Params["k"])
}

func TestApplyParams(t *testing.T) {
	entry := TestEntry{Name: "2d.example", Size: "100, 50"}
	entry.ApplyParams(map[string]string{
		"size":       "200, 200",
		"manual":     "true",
		"canvasType": "HtmlCanvas, Worker",
		"fuzzy":      "maxDifference=0-2",
		"unknown":    "ignored",
	})

	assert.Equal(t, "200, 200", entry.Size)
	assert.True(t, entry.Manual)
	assert.Equal(t, []string{"HtmlCanvas", "Worker"}, entry.CanvasTypes)
	assert.Equal(t, "maxDifference=0-2", entry.Fuzzy)
}

func TestInvalidDefinitionError_Message(t *testing.T) {
	err := NewInvalidDefinition("2d.example", "duplicate for %s", "worker")
	assert.Equal(t, `invalid test definition "2d.example": duplicate for worker`, err.Error())

	anon := &InvalidDefinitionError{Message: "bad"}
	assert.Equal(t, "invalid test definition: bad", anon.Error())
}
