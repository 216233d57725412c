// Package render interprets expected-output drawing scripts and rasterizes
// them to PNG images for pixel-comparison tests.
//
// A script is a small closed vocabulary, one operation per line:
//
//	size 100 50
//	fill 0 255 0 255
//	rect 20 10 60 30 255 0 0 255
//
// The leading size line is mandatory. Supported operations are "fill"
// (paint the whole surface), "rect" (paint a filled rectangle) and "clear"
// (reset to transparent). Blank lines and lines starting with '#' are
// ignored. There is deliberately no way to run arbitrary drawing code.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"github.com/webgfx/gentest/types"
)

// Script is a parsed drawing script.
type Script struct {
	Width  int
	Height int
	ops    []op
}

type op struct {
	kind string
	rect image.Rectangle
	fill color.RGBA
}

// Parse validates a drawing script for the named test.
func Parse(test, text string) (*Script, error) {
	lines := strings.Split(text, "\n")
	script := &Script{}
	sized := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if !sized {
			if fields[0] != "size" || len(fields) != 3 {
				return nil, types.NewInvalidDefinition(test,
					"expected drawing script must start with \"size <width> <height>\"")
			}
			width, werr := strconv.Atoi(fields[1])
			height, herr := strconv.Atoi(fields[2])
			if werr != nil || herr != nil || width <= 0 || height <= 0 {
				return nil, types.NewInvalidDefinition(test,
					"invalid surface size in drawing script: %q", line)
			}
			script.Width, script.Height = width, height
			sized = true
			continue
		}

		switch fields[0] {
		case "fill":
			fill, err := parseColor(fields[1:])
			if err != nil {
				return nil, types.NewInvalidDefinition(test, "bad fill operation %q: %v", line, err)
			}
			script.ops = append(script.ops, op{
				kind: "fill",
				rect: image.Rect(0, 0, script.Width, script.Height),
				fill: fill,
			})
		case "rect":
			if len(fields) != 9 {
				return nil, types.NewInvalidDefinition(test,
					"rect operation needs x y w h r g b a: %q", line)
			}
			coords, err := parseInts(fields[1:5])
			if err != nil {
				return nil, types.NewInvalidDefinition(test, "bad rect operation %q: %v", line, err)
			}
			fill, err := parseColor(fields[5:])
			if err != nil {
				return nil, types.NewInvalidDefinition(test, "bad rect operation %q: %v", line, err)
			}
			x, y, w, h := coords[0], coords[1], coords[2], coords[3]
			script.ops = append(script.ops, op{
				kind: "fill",
				rect: image.Rect(x, y, x+w, y+h),
				fill: fill,
			})
		case "clear":
			script.ops = append(script.ops, op{
				kind: "clear",
				rect: image.Rect(0, 0, script.Width, script.Height),
			})
		default:
			return nil, types.NewInvalidDefinition(test,
				"unsupported drawing operation %q", fields[0])
		}
	}
	if !sized {
		return nil, types.NewInvalidDefinition(test, "empty expected drawing script")
	}
	return script, nil
}

// Image rasterizes the script onto a fresh transparent surface.
func (s *Script) Image() *image.RGBA {
	surface := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for _, o := range s.ops {
		switch o.kind {
		case "fill":
			draw.Draw(surface, o.rect, image.NewUniform(o.fill), image.Point{}, draw.Over)
		case "clear":
			draw.Draw(surface, o.rect, image.Transparent, image.Point{}, draw.Src)
		}
	}
	return surface
}

// WritePNG rasterizes the script and writes it to path.
func (s *Script) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", path, err)
	}
	if err := png.Encode(file, s.Image()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}
	return file.Close()
}

func parseColor(fields []string) (color.RGBA, error) {
	if len(fields) != 4 {
		return color.RGBA{}, fmt.Errorf("expected 4 color channels, got %d", len(fields))
	}
	channels, err := parseInts(fields)
	if err != nil {
		return color.RGBA{}, err
	}
	for _, c := range channels {
		if c < 0 || c > 255 {
			return color.RGBA{}, fmt.Errorf("color channel %d out of range", c)
		}
	}
	return color.RGBA{
		R: uint8(channels[0]),
		G: uint8(channels[1]),
		B: uint8(channels[2]),
		A: uint8(channels[3]),
	}, nil
}

func parseInts(fields []string) ([]int, error) {
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", field)
		}
		values[i] = v
	}
	return values, nil
}
