package expand

import (
	"fmt"
	"strings"

	"github.com/webgfx/gentest/types"
)

// Nonfinite expands a call with per-argument valid/invalid value groups into
// one call per generated combination. Each group in argstr has the form
// "<valid invalid1 invalid2 ...>"; the invalid values are usually Infinity,
// -Infinity and NaN.
//
// The expansion is deliberately bounded rather than a full cross product:
// every single argument is tried with each of its invalid values while the
// others stay valid, then every combination of two or more arguments (taken
// in increasing index order) is tried with each argument's first invalid
// value only.
//
// Nonfinite("f", "<0 a>, <0 b>", ";") produces:
//
//	f(a, 0);
//	f(0, b);
//	f(a, b);
func Nonfinite(method, argstr, tail string) (string, error) {
	var args [][]string
	for _, group := range strings.Split(argstr, ", ") {
		if len(group) < 2 || group[0] != '<' || group[len(group)-1] != '>' {
			return "", types.NewInvalidDefinition("", fmt.Sprintf(
				"expected argument group of the form '<valid invalid...>', but was: %s", group))
		}
		args = append(args, strings.Split(group[1:len(group)-1], " "))
	}

	baseline := make([]string, len(args))
	for i, values := range args {
		baseline[i] = values[0]
	}

	var calls [][]string
	// Each argument alone, with every one of its invalid values.
	for i, values := range args {
		for _, invalid := range values[1:] {
			call := append([]string(nil), baseline...)
			call[i] = invalid
			calls = append(calls, call)
		}
	}
	// Combinations of two or more arguments, first invalid value only.
	var combine func(call []string, start, depth int)
	combine = func(call []string, start, depth int) {
		for i := start; i < len(args); i++ {
			if len(args[i]) < 2 {
				continue
			}
			next := append([]string(nil), call...)
			next[i] = args[i][1]
			if depth > 0 {
				calls = append(calls, next)
			}
			combine(next, i+1, depth+1)
		}
	}
	combine(baseline, 0, 0)

	lines := make([]string, len(calls))
	for i, call := range calls {
		lines[i] = fmt.Sprintf("%s(%s)%s", method, strings.Join(call, ", "), tail)
	}
	return strings.Join(lines, "\n"), nil
}
