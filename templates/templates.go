// Package templates embeds the output artifact templates and renders them.
// Templates are text templates on purpose: the rendered artifacts are test
// files whose code bodies must be emitted verbatim, not HTML-escaped.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/webgfx/gentest/expand"
)

// Artifact template names.
const (
	TestharnessElement   = "testharness_element.html.tmpl"
	TestharnessOffscreen = "testharness_offscreen.html.tmpl"
	TestharnessWorker    = "testharness_worker.js.tmpl"
	Reftest              = "reftest.html.tmpl"
	ReftestElement       = "reftest_element.html.tmpl"
	ReftestOffscreen     = "reftest_offscreen.html.tmpl"
	ReftestWorker        = "reftest_worker.html.tmpl"
)

//go:embed *.tmpl
var files embed.FS

var set = template.Must(template.New("artifacts").Funcs(template.FuncMap{
	"double_quote_escape": expand.DoubleQuoteEscape,
}).ParseFS(files, "*.tmpl"))

// Render executes the named artifact template.
func Render(name string, params any) (string, error) {
	var b strings.Builder
	if err := set.ExecuteTemplate(&b, name, params); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return b.String(), nil
}
