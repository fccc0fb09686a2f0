// surface_text.go - font loading and text rendering onto fresh surfaces.
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Font wraps a glyph face usable by Surface text rendering. The zero path
// ("" or a file that fails to parse) falls back to a built-in bitmap face so
// text rendering inside a frame can never fail.
type Font struct {
	face font.Face
	name string
}

// LoadFont opens a TrueType/OpenType font at the given pixel size. An empty
// path selects the built-in face. Unreadable or unparsable files degrade to
// the built-in face with a logged warning rather than an error.
func LoadFont(path string, size int) *Font {
	if path == "" {
		return builtinFont()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Warning: failed to read font %s: %v, using built-in face\n", path, err)
		return builtinFont()
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		fmt.Printf("Warning: failed to parse font %s: %v, using built-in face\n", path, err)
		return builtinFont()
	}
	if size < 1 {
		size = 12
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		fmt.Printf("Warning: failed to build face for %s: %v, using built-in face\n", path, err)
		return builtinFont()
	}
	return &Font{face: face, name: path}
}

func builtinFont() *Font {
	return &Font{face: basicfont.Face7x13, name: "builtin"}
}

// Name reports where the face came from ("builtin" for the fallback).
func (f *Font) Name() string { return f.name }

// Render draws text onto a newly allocated surface sized exactly to the ink
// bounding box. bg nil renders onto a transparent alpha surface; a non-nil
// bg gives an opaque surface filled with that color first.
func (f *Font) Render(text string, c Color, bg *Color) *Surface {
	bounds, _ := font.BoundString(f.face, text)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	var dst *Surface
	if bg != nil {
		dst = NewSurface(w, h)
		dst.Fill(*bg)
	} else {
		dst = NewSurfaceAlpha(w, h)
	}

	d := font.Drawer{
		Dst:  dst.view(),
		Src:  image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}),
		Face: f.face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(text)
	return dst
}
