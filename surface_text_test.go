// surface_text_test.go - font loading and text rendering tests.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestText_EmptyPathUsesBuiltin(t *testing.T) {
	f := LoadFont("", 12)
	if f == nil {
		t.Fatal("expected a font, got nil")
	}
	if f.Name() != "builtin" {
		t.Errorf("expected font name builtin, got %s", f.Name())
	}
}

func TestText_MissingFileFallsBackToBuiltin(t *testing.T) {
	f := LoadFont("/nonexistent/font.ttf", 24)
	if f == nil {
		t.Fatal("expected a fallback font, got nil")
	}
	if f.Name() != "builtin" {
		t.Errorf("expected fallback name builtin, got %s", f.Name())
	}
}

func TestText_CorruptFileFallsBackToBuiltin(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-font-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	f := LoadFont(path, 16)
	if f.Name() != "builtin" {
		t.Errorf("expected fallback name builtin, got %s", f.Name())
	}
}

func TestText_RenderProducesInk(t *testing.T) {
	f := LoadFont("", 12)
	s := f.Render("Hello", Color{R: 255, G: 255, B: 255}, nil)
	if s == nil {
		t.Fatal("expected a surface, got nil")
	}
	if s.Width() < 2 || s.Height() < 2 {
		t.Fatalf("expected a multi-pixel ink box, got %dx%d", s.Width(), s.Height())
	}
	if !s.HasAlpha() {
		t.Error("expected transparent background render to carry alpha")
	}

	found := false
	for y := 0; y < s.Height() && !found; y++ {
		for x := 0; x < s.Width(); x++ {
			r, _, _, a := s.GetAt(x, y)
			if a > 0 && r == 255 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected at least one ink pixel, found none")
	}
}

func TestText_RenderWithBackground(t *testing.T) {
	f := LoadFont("", 12)
	bg := Color{R: 10, G: 20, B: 30}
	s := f.Render("Hi", Color{R: 255, G: 255, B: 255}, &bg)
	if s.HasAlpha() {
		t.Error("expected opaque surface when a background color is given")
	}

	// Every pixel is either background or antialiased ink.
	sawBG, sawInk := false, false
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			r, g, b, _ := s.GetAt(x, y)
			if r == 10 && g == 20 && b == 30 {
				sawBG = true
			}
			if r == 255 && g == 255 && b == 255 {
				sawInk = true
			}
		}
	}
	if !sawBG {
		t.Error("expected background pixels around the text, found none")
	}
	if !sawInk {
		t.Error("expected ink pixels over the background, found none")
	}
}

func TestText_RenderEmptyString(t *testing.T) {
	f := LoadFont("", 12)
	s := f.Render("", Color{R: 255}, nil)
	if s == nil {
		t.Fatal("expected a surface for empty text, got nil")
	}
	if s.Width() < 1 || s.Height() < 1 {
		t.Errorf("expected at least a 1x1 surface, got %dx%d", s.Width(), s.Height())
	}
}
