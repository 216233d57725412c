// Package generator expands declarative test entries into concrete test
// artifacts. It applies variant expansion, routes every entry to its enabled
// targets and output subdirectory, runs directive expansion on the code body
// and renders the final files through the template collaborator.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/webgfx/gentest/config"
	"github.com/webgfx/gentest/expand"
	"github.com/webgfx/gentest/render"
	"github.com/webgfx/gentest/templates"
	"github.com/webgfx/gentest/types"
)

// RenderFunc renders a named artifact template; the default implementation
// is the embedded template set.
type RenderFunc func(template string, params any) (string, error)

// WriteFileFunc persists a generated artifact.
type WriteFileFunc func(path string, data []byte) error

// Options customizes a Generator; zero values select the defaults.
type Options struct {
	Logger    *zap.Logger
	Render    RenderFunc
	WriteFile WriteFileFunc
}

// Generator runs a full generation pass over a corpus of test entries.
type Generator struct {
	cfg       config.Config
	table     *config.DirTable
	render    RenderFunc
	writeFile WriteFileFunc
	log       *zap.Logger

	// used tracks which targets each test name has already been emitted
	// for; a second definition for an overlapping target is an error.
	used map[string]types.TargetSet
}

// New creates a generator for the given run configuration and directory table.
func New(cfg config.Config, table *config.DirTable, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Render == nil {
		opts.Render = templates.Render
	}
	if opts.WriteFile == nil {
		opts.WriteFile = func(path string, data []byte) error {
			return os.WriteFile(path, data, 0644)
		}
	}
	return &Generator{
		cfg:       cfg,
		table:     table,
		render:    opts.Render,
		writeFile: opts.WriteFile,
		log:       opts.Logger,
		used:      map[string]types.TargetSet{},
	}
}

// Run generates all artifacts for the corpus. The first invalid definition
// aborts the run; there is no partial-success mode.
func (g *Generator) Run(entries []types.TestEntry) error {
	if err := g.ensureOutputDirs(); err != nil {
		return err
	}
	for _, original := range entries {
		expanded := ExpandVariants(original)
		for i := range expanded {
			if err := g.generate(&expanded[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExpandVariants produces one concrete entry per declared variant, or the
// entry itself when no variants are declared. A variant with a non-empty
// name or parameters qualifies the entry name and interpolates the code and
// reference fields.
func ExpandVariants(original types.TestEntry) []types.TestEntry {
	variants := original.Variants
	if len(variants) == 0 {
		variants = types.Variants{{}}
	}
	result := make([]types.TestEntry, 0, len(variants))
	for _, variant := range variants {
		entry := original.Clone()
		entry.Variants = nil
		if variant.Name != "" || len(variant.Params) > 0 {
			entry.Name += "." + variant.Name
			entry.Code = expand.Interpolate(entry.Code, variant.Params)
			if entry.Reference != "" {
				entry.Reference = expand.Interpolate(entry.Reference, variant.Params)
			}
			if entry.HTMLReference != "" {
				entry.HTMLReference = expand.Interpolate(entry.HTMLReference, variant.Params)
			}
			entry.ApplyParams(variant.Params)
		}
		result = append(result, entry)
	}
	return result
}

// TemplateParams is the parameter set handed to the artifact templates.
type TemplateParams struct {
	Name        string
	Desc        string
	Notes       string
	Images      string
	Timeout     string
	Canvas      string
	Width       string
	Height      string
	Expected    string
	Code        string
	Attributes  string
	PromiseTest bool
	RefLink     string
	Fuzzy       string
	DoneNeeded  bool
}

var probableWrongPixelRe = regexp.MustCompile(`@assert pixel .* 0,0,0,0;`)

func (g *Generator) generate(entry *types.TestEntry) error {
	name := entry.Name
	g.log.Debug("generating test", zap.String("name", name))

	if entry.Expected == "green" && probableWrongPixelRe.MatchString(entry.Code) {
		g.log.Warn("probable incorrect pixel test", zap.String("name", name))
	}

	enabled, err := entry.EnabledTargets()
	if err != nil {
		return err
	}

	already := g.used[name].Intersect(enabled)
	if len(already) > 0 {
		return types.NewInvalidDefinition(name,
			"defined twice for targets %s", strings.Join(already.Names(), ", "))
	}
	registered := g.used[name]
	if registered == nil {
		registered = types.TargetSet{}
		g.used[name] = registered
	}
	registered.Union(enabled)

	subDir, err := g.table.Resolve(name)
	if err != nil {
		return err
	}

	expectationHTML, err := g.renderExpected(entry, subDir, enabled)
	if err != nil {
		return err
	}

	width, height, err := canvasSize(entry)
	if err != nil {
		return err
	}

	promiseTest := false
	switch entry.TestType {
	case "":
	case "promise":
		promiseTest = true
	default:
		return types.NewInvalidDefinition(name,
			`test_type %q is invalid, it only accepts "promise"`, entry.TestType)
	}

	code, err := expand.Code(entry.Code)
	if err != nil {
		return attachName(err, name)
	}

	params := TemplateParams{
		Name:        name,
		Desc:        entry.Desc,
		Notes:       entry.Notes,
		Images:      buildImageMarkup(entry),
		Timeout:     entry.Timeout,
		Canvas:      entry.Canvas,
		Width:       width,
		Height:      height,
		Expected:    expectationHTML,
		Code:        code,
		Attributes:  entry.Attributes,
		PromiseTest: promiseTest,
	}

	canvasPath := filepath.Join(g.cfg.Element.OutDir, subDir, name)
	offscreenPath := filepath.Join(g.cfg.Offscreen.OutDir, subDir, name)
	if entry.Manual {
		canvasPath += "-manual"
		offscreenPath += "-manual"
	}

	if entry.HasReference() {
		return g.writeReferenceTest(entry, params, enabled, canvasPath, offscreenPath)
	}
	return g.writeTestharnessTest(params, enabled, canvasPath, offscreenPath)
}

// writeReferenceTest emits the expected artifact once per enabled target
// family, then the test proper linking to it.
func (g *Generator) writeReferenceTest(entry *types.TestEntry, params TemplateParams,
	enabled types.TargetSet, canvasPath, offscreenPath string) error {
	if entry.Reference != "" && entry.HTMLReference != "" {
		return types.NewInvalidDefinition(entry.Name,
			`"reference" and "html_reference" can't both be specified at the same time`)
	}

	refParams := params
	refTemplate := templates.Reftest
	if entry.Reference != "" {
		refParams.Code = entry.Reference
		refTemplate = templates.ReftestElement
	} else {
		refParams.Code = entry.HTMLReference
	}
	if enabled.Contains(types.TargetElement) {
		if err := g.emit(refTemplate, canvasPath+"-expected.html", refParams); err != nil {
			return err
		}
	}
	if enabled.ContainsAny(types.TargetOffscreen, types.TargetWorker) {
		if err := g.emit(refTemplate, offscreenPath+"-expected.html", refParams); err != nil {
			return err
		}
	}

	params.RefLink = entry.Name + "-expected.html"
	params.Fuzzy = entry.Fuzzy
	if enabled.Contains(types.TargetElement) {
		if err := g.emit(templates.ReftestElement, canvasPath+".html", params); err != nil {
			return err
		}
	}
	if enabled.Contains(types.TargetOffscreen) {
		if err := g.emit(templates.ReftestOffscreen, offscreenPath+".html", params); err != nil {
			return err
		}
	}
	if enabled.Contains(types.TargetWorker) {
		if err := g.emit(templates.ReftestWorker, offscreenPath+".w.html", params); err != nil {
			return err
		}
	}
	return nil
}

// writeTestharnessTest emits one harness-style artifact per enabled target.
func (g *Generator) writeTestharnessTest(params TemplateParams,
	enabled types.TargetSet, canvasPath, offscreenPath string) error {
	if enabled.Contains(types.TargetElement) {
		if err := g.emit(templates.TestharnessElement, canvasPath+".html", params); err != nil {
			return err
		}
	}

	// Offscreen and worker variants need an explicit completion signal
	// unless the code already chains its own pass/fail continuation.
	params.DoneNeeded = !strings.Contains(params.Code, "then(t_pass, t_fail);")

	if enabled.Contains(types.TargetOffscreen) {
		if err := g.emit(templates.TestharnessOffscreen, offscreenPath+".html", params); err != nil {
			return err
		}
	}
	if enabled.Contains(types.TargetWorker) {
		if err := g.emit(templates.TestharnessWorker, offscreenPath+".worker.js", params); err != nil {
			return err
		}
	}
	return nil
}

// renderExpected resolves the entry's expected field into expectation markup,
// rasterizing drawing scripts to PNG for every enabled target family.
func (g *Generator) renderExpected(entry *types.TestEntry, subDir string,
	enabled types.TargetSet) (string, error) {
	if entry.Expected == "" {
		return "", nil
	}

	var expectedImg string
	switch entry.Expected {
	case "green":
		expectedImg = "/images/green-100x50.png"
	case "clear":
		expectedImg = "/images/clear-100x50.png"
	default:
		if strings.Contains(entry.Expected, ";") {
			g.log.Warn("found semicolon in expected drawing script",
				zap.String("name", entry.Name))
		}
		script, err := render.Parse(entry.Name, entry.Expected)
		if err != nil {
			return "", err
		}
		if enabled.Contains(types.TargetElement) {
			out := filepath.Join(g.cfg.Element.ImageOutDir, subDir, entry.Name+".png")
			if err := script.WritePNG(out); err != nil {
				return "", err
			}
		}
		if enabled.ContainsAny(types.TargetOffscreen, types.TargetWorker) {
			out := filepath.Join(g.cfg.Offscreen.ImageOutDir, subDir, entry.Name+".png")
			if err := script.WritePNG(out); err != nil {
				return "", err
			}
		}
		expectedImg = entry.Name + ".png"
	}

	return fmt.Sprintf(`<p class="output expectedtext">Expected output:<p>`+
		`<img src="%s" class="output expected" id="expected" alt="">`, expectedImg), nil
}

func (g *Generator) emit(template, path string, params TemplateParams) error {
	out, err := g.render(template, params)
	if err != nil {
		return err
	}
	if err := g.writeFile(path, []byte(out)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	g.log.Debug("wrote artifact", zap.String("path", path))
	return nil
}

// ensureOutputDirs creates every output directory the run can write to.
// Pre-existing directories are fine.
func (g *Generator) ensureOutputDirs() error {
	roots := []string{
		g.cfg.Element.OutDir, g.cfg.Element.ImageOutDir,
		g.cfg.Offscreen.OutDir, g.cfg.Offscreen.ImageOutDir,
	}
	dirs := append([]string(nil), roots...)
	for _, sub := range g.table.SubDirs() {
		for _, root := range roots {
			dirs = append(dirs, filepath.Join(root, sub))
		}
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

// canvasSize parses the entry's "width, height" size override, defaulting
// to the standard 100x50 surface.
func canvasSize(entry *types.TestEntry) (string, string, error) {
	size := entry.Size
	if size == "" {
		size = "100, 50"
	}
	sep := strings.LastIndex(size, ", ")
	if sep < 0 {
		return "", "", types.NewInvalidDefinition(entry.Name,
			`invalid canvas size %q, expected "<width>, <height>"`, size)
	}
	return size[:sep], size[sep+2:], nil
}

// buildImageMarkup renders the entry's resource image lists as markup.
// Bare filenames resolve to the shared image directory.
func buildImageMarkup(entry *types.TestEntry) string {
	var b strings.Builder
	for _, src := range entry.Images {
		id := path.Base(src)
		if !strings.Contains(src, "/") {
			src = "../images/" + src
		}
		fmt.Fprintf(&b, "<img src=\"%s\" id=\"%s\" class=\"resource\">\n", src, id)
	}
	for _, src := range entry.SVGImages {
		id := path.Base(src)
		if !strings.Contains(src, "/") {
			src = "../images/" + src
		}
		fmt.Fprintf(&b, "<svg><image xlink:href=\"%s\" id=\"%s\" class=\"resource\"></svg>\n", src, id)
	}
	return strings.ReplaceAll(b.String(), "../images/", "/images/")
}

// attachName fills in the test name on definition errors raised by
// context-free expansion helpers.
func attachName(err error, name string) error {
	var invalid *types.InvalidDefinitionError
	if errors.As(err, &invalid) && invalid.Test == "" {
		invalid.Test = name
	}
	return err
}
