package expand

import (
	"fmt"
	"regexp"
	"strings"
)

var alternationRe = regexp.MustCompile(`<([^>]+)>`)

// Unroll expands every <a | b | c> alternation marker in the text into the
// cross product of concrete lines. Markers expand left to right with the
// first marker varying slowest, and each change of the outermost marker's
// value is labelled with a comment line naming that value.
//
// Unroll("f = {<a | b>: <1 | 2 | 3>};") produces:
//
//	// a
//	f = {a: 1};
//	f = {a: 2};
//	f = {a: 3};
//	// b
//	f = {b: 1};
//	f = {b: 2};
//	f = {b: 3};
func Unroll(text string) string {
	// Markers are first swapped for placeholder keys so a substituted value
	// can never be re-matched as a marker.
	var patterns []unrollPattern
	for {
		loc := alternationRe.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		key := fmt.Sprintf("@unroll_pattern_%d", len(patterns))
		raw := strings.Split(text[loc[2]:loc[3]], "|")
		values := make([]string, len(raw))
		for i, value := range raw {
			values[i] = strings.TrimSpace(value)
		}
		text = text[:loc[0]] + key + text[loc[1]:]
		patterns = append(patterns, unrollPattern{key: key, values: values})
	}
	return strings.Join(unrollPatterns(text, patterns, ""), "\n")
}

type unrollPattern struct {
	key    string
	values []string
}

func unrollPatterns(text string, patterns []unrollPattern, label string) []string {
	if len(patterns) == 0 {
		return []string{text}
	}
	first, rest := patterns[0], patterns[1:]
	var lines []string
	if label != "" {
		lines = append(lines, "// "+label)
	}
	for _, value := range first.values {
		substituted := strings.ReplaceAll(text, first.key, value)
		lines = append(lines, unrollPatterns(substituted, rest, value)...)
	}
	return lines
}
