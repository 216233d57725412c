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

func TestJoinContinuations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hard join keeps following whitespace", "a \\\n  b", "a   b"},
		{"soft join eats following whitespace", "a \\-\n    b", "a b"},
		{"soft join eats blank lines", "a \\-\n\n   \n  b", "a b"},
		{"mixed", "a \\\nb \\-\n   c", "a b c"},
		{"no continuation", "a\nb", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinContinuations(tt.in))
		})
	}
}

func TestCode_AssertForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"exact pixel",
			"@assert pixel 50,25 == 0,255,0,255;",
			"_assertPixel(canvas, 50,25, 0,255,0,255);",
		},
		{
			"approximate pixel with default tolerance",
			"@assert pixel 50,25 ==~ 0,255,0,255;",
			"_assertPixelApprox(canvas, 50,25, 0,255,0,255, 2);",
		},
		{
			"approximate pixel with explicit tolerance",
			"@assert pixel 50,25 ==~ 0,255,0,255 +/- 5;",
			"_assertPixelApprox(canvas, 50,25, 0,255,0,255, 5);",
		},
		{
			"throws legacy error code",
			"@assert throws INDEX_SIZE_ERR ctx.createImageData(0, 10);",
			`assert_throws_dom("INDEX_SIZE_ERR", function() { ctx.createImageData(0, 10); });`,
		},
		{
			"throws script error type",
			"@assert throws TypeError ctx.fill(null);",
			"assert_throws_js(TypeError, function() { ctx.fill(null); });",
		},
		{
			"deep equality",
			"@assert ctx.lineWidth === 1.5;",
			`_assertSame(ctx.lineWidth, 1.5, "ctx.lineWidth", "1.5");`,
		},
		{
			"inequality",
			"@assert a !== b;",
			`_assertDifferent(a, b, "a", "b");`,
		},
		{
			"pattern match",
			"@assert navigator.userAgent =~ /Canvas/;",
			"assert_regexp_match(navigator.userAgent, /Canvas/);",
		},
		{
			"truthiness",
			"@assert ctx;",
			`_assert(ctx, "ctx");`,
		},
		{
			"subscript rewritten for message output",
			"@assert arr[i] === 1;",
			`_assertSame(arr[i], 1, "arr[\""+(i)+"\"]", "1");`,
		},
		{
			"quotes escaped in message",
			`@assert ctx.font === "10px sans-serif";`,
			`_assertSame(ctx.font, "10px sans-serif", "ctx.font", "\"10px sans-serif\"");`,
		},
		{
			"indentation preserved",
			"  @assert ctx;",
			`  _assert(ctx, "ctx");`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Code(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCode_UnrollDirective(t *testing.T) {
	got, err := Code("@unroll ctx.<fill | stroke>();\nctx.save();")
	require.NoError(t, err)
	assert.Equal(t, "ctx.fill();\nctx.stroke();\nctx.save();", got)
}

func TestCode_UnrollWithoutSemicolon(t *testing.T) {
	_, err := Code("@unroll ctx.<fill | stroke>()")
	var invalid *types.InvalidDefinitionError
	require.True(t, errors.As(err, &invalid))
}

func TestCode_NonfiniteBeforeAsserts(t *testing.T) {
	// The combinator's output contains assertion directives of its own,
	// which the later pipeline stages must still expand.
	got, err := Code("@nonfinite @assert ctx.isPointInPath(<0 Infinity>, <0 NaN>) === false;")
	require.NoError(t, err)

	want := strings.Join([]string{
		`_assertSame(ctx.isPointInPath(Infinity, 0), false, "ctx.isPointInPath(Infinity, 0)", "false");`,
		`_assertSame(ctx.isPointInPath(0, NaN), false, "ctx.isPointInPath(0, NaN)", "false");`,
		`_assertSame(ctx.isPointInPath(Infinity, NaN), false, "ctx.isPointInPath(Infinity, NaN)", "false");`,
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected expansion (-want +got):\n%s", diff)
	}
}

func TestCode_NonfinitePlainCalls(t *testing.T) {
	got, err := Code("@nonfinite ctx.moveTo(<0 Infinity NaN>, <0 Infinity>);")
	require.NoError(t, err)

	want := strings.Join([]string{
		"ctx.moveTo(Infinity, 0);",
		"ctx.moveTo(NaN, 0);",
		"ctx.moveTo(0, Infinity);",
		"ctx.moveTo(Infinity, Infinity);",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestCode_LegacyMarkersRemoved(t *testing.T) {
	got, err := Code("ctx.fill(); @moz-todo\n@moz-UniversalBrowserRead;ok();")
	require.NoError(t, err)
	assert.Equal(t, "ctx.fill();\nok();", got)
}

func TestCode_StrayMarkerIsInternalFault(t *testing.T) {
	_, err := Code("ctx.fill(); @bogus-directive")
	require.Error(t, err)

	var internal *types.InternalError
	require.True(t, errors.As(err, &internal), "want InternalError, got %v", err)

	var invalid *types.InvalidDefinitionError
	assert.False(t, errors.As(err, &invalid))
}

func TestCode_AssertWithoutSemicolonFails(t *testing.T) {
	_, err := Code("@assert ctx.fillStyle")
	var invalid *types.InvalidDefinitionError
	require.True(t, errors.As(err, &invalid))
}

func TestCode_NoMarkerSurvives(t *testing.T) {
	bodies := []string{
		"@assert ctx;",
		"@unroll ctx.<a | b>();",
		"@nonfinite f(<0 x>, <0 y>);",
		"@assert pixel 0,0 == 0,0,0,0;\n@assert throws TypeError f();",
		"ctx.fill(); @moz-todo",
	}
	for _, body := range bodies {
		got, err := Code(body)
		require.NoError(t, err, "body %q", body)
		assert.NotContains(t, got, "@", "body %q", body)
	}
}

func TestEscapeSource(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a"b`, `a\"b`},
		{`a\b`, `a\\b`},
		{"arr[i]", `arr[\""+(i)+"\"]`},
		{"arr[0]", `arr[\""+(0)+"\"]`},
		{"arr[i + 1]", "arr[i + 1]"}, // only bare identifiers are rewritten
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeSource(tt.in), "input %q", tt.in)
	}
}

func TestSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())
}

func TestInterpolate(t *testing.T) {
	params := map[string]string{"color": "green", "op": "fillRect"}
	got := Interpolate("ctx.%(op)s('%(color)s', %(missing)s);", params)
	assert.Equal(t, "ctx.fillRect('green', %(missing)s);", got)
}
