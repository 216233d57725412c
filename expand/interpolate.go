package expand

import "strings"

// Interpolate substitutes every %(key)s placeholder in text with its value
// from params. Placeholders with no matching parameter are left untouched.
func Interpolate(text string, params map[string]string) string {
	for key, value := range params {
		text = strings.ReplaceAll(text, "%("+key+")s", value)
	}
	return text
}
