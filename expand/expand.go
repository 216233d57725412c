// Package expand implements the directive-expansion engine that rewrites
// annotated test code bodies into plain executable test code.
//
// A code body may contain a fixed set of @-prefixed directives: @unroll for
// cross-product parameter expansion, @nonfinite for bounded invalid-argument
// combinatorics, and the @assert family for assertion rewriting. Expansion
// is an ordered pipeline; @nonfinite runs before the assertion rules because
// its output may itself contain assertion directives.
package expand

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/webgfx/gentest/types"
)

const (
	unrollDirective    = "@unroll "
	nonfiniteDirective = "@nonfinite "
	assertDirective    = "@assert "
)

// Code runs the full directive pipeline over a code body. After expansion no
// directive marker may remain; a stray marker is an internal fault (a missing
// expansion rule), not a definition error.
func Code(code string) (string, error) {
	code = JoinContinuations(code)

	code, err := expandUnrolls(code)
	if err != nil {
		return "", err
	}
	code, err = expandNonfinite(code)
	if err != nil {
		return "", err
	}
	code, err = expandAsserts(code)
	if err != nil {
		return "", err
	}

	code = strings.ReplaceAll(code, " @moz-todo", "")
	code = strings.ReplaceAll(code, "@moz-UniversalBrowserRead;", "")

	if idx := strings.IndexByte(code, '@'); idx >= 0 {
		end := idx + 32
		if end > len(code) {
			end = len(code)
		}
		return "", &types.InternalError{
			Message: fmt.Sprintf("unexpanded directive marker at %q", code[idx:end]),
		}
	}
	return code, nil
}

// JoinContinuations removes escaped newlines. A trailing backslash deletes
// the newline; a trailing backslash-hyphen deletes the newline and any
// leading whitespace on the following lines.
func JoinContinuations(text string) string {
	text = strings.ReplaceAll(text, "\\\n", "")

	var b strings.Builder
	for {
		idx := strings.Index(text, "\\-\n")
		if idx < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:idx])
		rest := text[idx+3:]
		text = strings.TrimLeft(rest, " \t\r\n\f\v")
	}
	return b.String()
}

// expandUnrolls replaces each "@unroll <expr>;" directive with the unrolled
// cross product of its bracketed alternations. The expression extends to the
// first semicolon, which is included in the unrolled text.
func expandUnrolls(code string) (string, error) {
	var b strings.Builder
	for {
		idx := strings.Index(code, unrollDirective)
		if idx < 0 {
			b.WriteString(code)
			break
		}
		b.WriteString(code[:idx])
		rest := code[idx+len(unrollDirective):]
		semi := strings.IndexByte(rest, ';')
		if semi < 0 {
			return "", types.NewInvalidDefinition("", "@unroll directive has no terminating semicolon")
		}
		b.WriteString(Unroll(rest[:semi+1]))
		code = rest[semi+1:]
	}
	return b.String(), nil
}

// expandNonfinite replaces each "@nonfinite method(arglist) tail" directive,
// which extends to the end of its line, with the combinator's expansion.
func expandNonfinite(code string) (string, error) {
	var b strings.Builder
	for {
		idx := strings.Index(code, nonfiniteDirective)
		if idx < 0 {
			b.WriteString(code)
			break
		}
		b.WriteString(code[:idx])
		rest := code[idx+len(nonfiniteDirective):]

		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return "", types.NewInvalidDefinition("", "@nonfinite directive has no argument list")
		}
		closing := strings.IndexByte(rest[open:], ')')
		if closing < 0 {
			return "", types.NewInvalidDefinition("", "@nonfinite directive has no closing parenthesis")
		}
		closing += open
		tailEnd := strings.IndexByte(rest[closing:], '\n')
		if tailEnd < 0 {
			tailEnd = len(rest)
		} else {
			tailEnd += closing
		}

		expansion, err := Nonfinite(rest[:open], rest[open+1:closing], rest[closing+1:tailEnd])
		if err != nil {
			return "", err
		}
		b.WriteString(expansion)
		code = rest[tailEnd:]
	}
	return b.String(), nil
}

var (
	pixelExactRe  = regexp.MustCompile(`^pixel (\d+,\d+) == (\d+,\d+,\d+,\d+);`)
	pixelApproxRe = regexp.MustCompile(`^pixel (\d+,\d+) ==~ (\d+,\d+,\d+,\d+)(?: \+/- (\d+))?;`)
	throwsDOMRe   = regexp.MustCompile(`^throws (\S+_ERR) (.*);`)
	throwsJSRe    = regexp.MustCompile(`^throws (\S+Error) (.*);`)
)

// expandAsserts rewrites every @assert directive, line by line, trying the
// assertion forms in precedence order. The generic truthiness form matches
// last so the more specific forms always win.
func expandAsserts(code string) (string, error) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		idx := strings.Index(line, assertDirective)
		if idx < 0 {
			continue
		}
		rewritten, err := rewriteAssert(line[idx+len(assertDirective):])
		if err != nil {
			return "", err
		}
		lines[i] = line[:idx] + rewritten
	}
	return strings.Join(lines, "\n"), nil
}

// rewriteAssert expands the body of a single @assert directive (everything
// after the "@assert " marker up to the end of its line).
func rewriteAssert(body string) (string, error) {
	if m := pixelExactRe.FindStringSubmatch(body); m != nil {
		return fmt.Sprintf("_assertPixel(canvas, %s, %s);%s",
			m[1], m[2], body[len(m[0]):]), nil
	}
	if m := pixelApproxRe.FindStringSubmatch(body); m != nil {
		tolerance := m[3]
		if tolerance == "" {
			tolerance = "2"
		}
		return fmt.Sprintf("_assertPixelApprox(canvas, %s, %s, %s);%s",
			m[1], m[2], tolerance, body[len(m[0]):]), nil
	}
	if m := throwsDOMRe.FindStringSubmatch(body); m != nil {
		return fmt.Sprintf("assert_throws_dom(\"%s\", function() { %s; });%s",
			m[1], m[2], body[len(m[0]):]), nil
	}
	if m := throwsJSRe.FindStringSubmatch(body); m != nil {
		return fmt.Sprintf("assert_throws_js(%s, function() { %s; });%s",
			m[1], m[2], body[len(m[0]):]), nil
	}

	semi := strings.LastIndexByte(body, ';')
	if semi < 0 {
		return "", types.NewInvalidDefinition("", fmt.Sprintf(
			"@assert directive has no terminating semicolon: %q", body))
	}
	stmt, suffix := body[:semi], body[semi+1:]

	if pos := strings.LastIndex(stmt, " === "); pos >= 0 {
		lhs, rhs := stmt[:pos], stmt[pos+5:]
		return fmt.Sprintf("_assertSame(%s, %s, \"%s\", \"%s\");%s",
			lhs, rhs, EscapeSource(lhs), EscapeSource(rhs), suffix), nil
	}
	if pos := strings.LastIndex(stmt, " !== "); pos >= 0 {
		lhs, rhs := stmt[:pos], stmt[pos+5:]
		return fmt.Sprintf("_assertDifferent(%s, %s, \"%s\", \"%s\");%s",
			lhs, rhs, EscapeSource(lhs), EscapeSource(rhs), suffix), nil
	}
	if pos := strings.LastIndex(stmt, " =~ "); pos >= 0 {
		lhs, rhs := stmt[:pos], stmt[pos+4:]
		return fmt.Sprintf("assert_regexp_match(%s, %s);%s", lhs, rhs, suffix), nil
	}
	return fmt.Sprintf("_assert(%s, \"%s\");%s", stmt, EscapeSource(stmt), suffix), nil
}

var subscriptRe = regexp.MustCompile(`\[(\w+)\]`)

// DoubleQuoteEscape escapes backslashes and double quotes so a source
// snippet can be embedded in a double-quoted string literal.
func DoubleQuoteEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// EscapeSource escapes a source snippet for embedding in a failure message.
// Identifier subscripts like arr[i] are rewritten so the subscript value is
// evaluated and concatenated at runtime, which gives much more useful
// messages when the subscript is a loop variable.
func EscapeSource(s string) string {
	s = DoubleQuoteEscape(s)
	return subscriptRe.ReplaceAllString(s, `[\""+($1)+"\"]`)
}
