package expand

import (
	"fmt"
	"strings"
)

// SelfTest exercises the documented expansion examples without touching the
// filesystem. It backs the CLI's --test mode.
func SelfTest() error {
	var failures []string
	check := func(name, got, want string) {
		if got != want {
			failures = append(failures, fmt.Sprintf("%s:\n  got:  %q\n  want: %q", name, got, want))
		}
	}

	check("unroll cross product",
		Unroll("f = {<a | b>: <1 | 2 | 3>};"),
		"// a\nf = {a: 1};\nf = {a: 2};\nf = {a: 3};\n"+
			"// b\nf = {b: 1};\nf = {b: 2};\nf = {b: 3};")

	if got, err := Nonfinite("f", "<0 a>, <0 b>", ";"); err != nil {
		failures = append(failures, "nonfinite two args: "+err.Error())
	} else {
		check("nonfinite two args", got, "f(a, 0);\nf(0, b);\nf(a, b);")
	}

	if got, err := Nonfinite("f", "<0 a>, <0 b c>, <0 d>", ";"); err != nil {
		failures = append(failures, "nonfinite three args: "+err.Error())
	} else {
		check("nonfinite three args", got,
			"f(a, 0, 0);\nf(0, b, 0);\nf(0, c, 0);\nf(0, 0, d);\n"+
				"f(a, b, 0);\nf(a, b, d);\nf(a, 0, d);\nf(0, b, d);")
	}

	if got, err := Code("@assert arr[i] === 1;"); err != nil {
		failures = append(failures, "assert same: "+err.Error())
	} else {
		check("assert same", got, `_assertSame(arr[i], 1, "arr[\""+(i)+"\"]", "1");`)
	}

	check("continuation join",
		JoinContinuations("a \\\nb \\-\n   c"),
		"a b c")

	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("self test failed:\n%s", strings.Join(failures, "\n"))
}
