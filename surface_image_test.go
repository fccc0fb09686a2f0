// surface_image_test.go - raster codec tests.
package main

import (
	"bytes"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestImage_PNGRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-image-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	src := NewSurface(8, 6)
	src.Fill(Color{R: 40, G: 80, B: 120})
	src.SetAt(3, 2, Color{R: 255})

	path := filepath.Join(dir, "frame.png")
	if err := SaveImage(src, path); err != nil {
		t.Fatalf("failed to save PNG: %v", err)
	}

	got := LoadImage(path)
	if got.Width() != 8 || got.Height() != 6 {
		t.Fatalf("expected 8x6 after round trip, got %dx%d", got.Width(), got.Height())
	}
	if r, g, b, _ := got.GetAt(0, 0); r != 40 || g != 80 || b != 120 {
		t.Errorf("expected fill color (40,80,120), got (%d,%d,%d)", r, g, b)
	}
	if r, g, b, _ := got.GetAt(3, 2); r != 255 || g != 0 || b != 0 {
		t.Errorf("expected marked pixel (255,0,0), got (%d,%d,%d)", r, g, b)
	}
	if got.HasAlpha() {
		t.Error("expected fully opaque PNG to load as an opaque surface")
	}
}

func TestImage_PNGKeepsTranslucency(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-image-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	src := NewSurfaceAlpha(4, 4)
	src.FillAlpha(Color{R: 200, G: 100, B: 50}, 128)

	path := filepath.Join(dir, "veil.png")
	if err := SaveImage(src, path); err != nil {
		t.Fatalf("failed to save PNG: %v", err)
	}

	got := LoadImage(path)
	if !got.HasAlpha() {
		t.Error("expected translucent PNG to load as an alpha surface")
	}
	if _, _, _, a := got.GetAt(1, 1); a != 128 {
		t.Errorf("expected alpha 128 after round trip, got %d", a)
	}
}

func TestImage_MissingFilePlaceholder(t *testing.T) {
	s := LoadImage("/nonexistent/path/missing.png")
	if s == nil {
		t.Fatal("expected a placeholder surface, got nil")
	}
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1 placeholder, got %dx%d", s.Width(), s.Height())
	}
}

func TestImage_CorruptFilePlaceholder(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-image-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	s := LoadImage(path)
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1 placeholder for corrupt file, got %dx%d", s.Width(), s.Height())
	}
}

func TestImage_UnsupportedExtension(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-image-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	s := NewSurface(2, 2)
	if err := SaveImage(s, filepath.Join(dir, "frame.tiff")); err == nil {
		t.Error("expected error for unsupported extension, got nil")
	}
}

func TestImage_EncodeFrameJPEG(t *testing.T) {
	s := NewSurface(32, 16)
	s.Fill(Color{R: 120, G: 60, B: 30})

	data, err := encodeFrameJPEG(s)
	if err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected JPEG bytes, got none")
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("frame bytes do not decode as JPEG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("expected 32x16 frame, got %dx%d", b.Dx(), b.Dy())
	}
}
