// surface_image.go - raster file decode/encode for surfaces.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

const JPEG_QUALITY = 85 // frame stream favors speed over fidelity

// LoadImage decodes a raster file (PNG, JPEG, GIF, BMP) into a surface.
// Sources with transparency produce an alpha surface. A missing or corrupt
// file degrades to a 1x1 black placeholder with a logged warning so a mode's
// draw never loses its frame over an absent asset.
func LoadImage(path string) *Surface {
	fp, err := os.Open(path)
	if err != nil {
		fmt.Printf("Warning: failed to load image %s: %v\n", path, err)
		return NewSurface(1, 1)
	}
	defer fp.Close()

	img, _, err := image.Decode(fp)
	if err != nil {
		fmt.Printf("Warning: failed to decode image %s: %v\n", path, err)
		return NewSurface(1, 1)
	}

	b := img.Bounds()
	s := NewSurfaceAlpha(b.Dx(), b.Dy())
	draw.Draw(s.view(), s.view().Bounds(), img, b.Min, draw.Src)

	opaque := true
	for i := 3; i < len(s.pix); i += 4 {
		if s.pix[i] != 0xFF {
			opaque = false
			break
		}
	}
	if opaque {
		s.hasAlpha = false
	}
	return s
}

// SaveImage encodes the surface to path; the extension picks the format
// (.png, .jpg/.jpeg, .gif, .bmp).
func SaveImage(s *Surface, path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer fp.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(fp, s.view())
	case ".jpg", ".jpeg":
		err = jpeg.Encode(fp, s.view(), &jpeg.Options{Quality: JPEG_QUALITY})
	case ".gif":
		err = gif.Encode(fp, s.view(), nil)
	case ".bmp":
		err = bmp.Encode(fp, s.view())
	default:
		err = fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// encodeFrameJPEG compresses the surface for the frame stream.
func encodeFrameJPEG(s *Surface) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.view(), &jpeg.Options{Quality: JPEG_QUALITY}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
