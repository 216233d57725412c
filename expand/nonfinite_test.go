package expand

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webgfx/gentest/types"
)

func TestNonfinite_TwoArguments(t *testing.T) {
	got, err := Nonfinite("f", "<0 a>, <0 b>", ";")
	require.NoError(t, err)

	// Single substitutions first, in argument order, then the joint one.
	assert.Equal(t, "f(a, 0);\nf(0, b);\nf(a, b);", got)
}

func TestNonfinite_ThreeArguments(t *testing.T) {
	got, err := Nonfinite("f", "<0 a>, <0 b c>, <0 d>", ";")
	require.NoError(t, err)

	want := strings.Join([]string{
		"f(a, 0, 0);",
		"f(0, b, 0);",
		"f(0, c, 0);",
		"f(0, 0, d);",
		"f(a, b, 0);",
		"f(a, b, d);",
		"f(a, 0, d);",
		"f(0, b, d);",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected expansion (-want +got):\n%s", diff)
	}
}

func TestNonfinite_InvalidValueOrderPreserved(t *testing.T) {
	got, err := Nonfinite("f", "<0 NaN Infinity -Infinity>", "")
	require.NoError(t, err)
	assert.Equal(t, "f(NaN)\nf(Infinity)\nf(-Infinity)", got)
}

func TestNonfinite_JointUsesFirstInvalidOnly(t *testing.T) {
	got, err := Nonfinite("f", "<0 x y>, <0 z w>", ";")
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	// The one joint substitution must use x and z, never y or w.
	assert.Equal(t, "f(x, z);", lines[4])
}

func TestNonfinite_ValidOnlyArgumentStaysFixed(t *testing.T) {
	got, err := Nonfinite("f", "<ctx>, <0 a>", ";")
	require.NoError(t, err)
	assert.Equal(t, "f(ctx, a);", got)
}

func TestNonfinite_MalformedGroup(t *testing.T) {
	_, err := Nonfinite("f", "<0 a>, 0 b", ";")
	require.Error(t, err)

	var invalid *types.InvalidDefinitionError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Message, "0 b")
}

func TestNonfinite_KeepsTail(t *testing.T) {
	got, err := Nonfinite("ctx.moveTo", "<0 Infinity>, <0 NaN>", "; // unchecked")
	require.NoError(t, err)
	for _, line := range strings.Split(got, "\n") {
		assert.True(t, strings.HasSuffix(line, "; // unchecked"), "line %q", line)
	}
}
