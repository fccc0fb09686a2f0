// surface.go - CPU pixel surface: buffer management, pixel access, blitting.
package main

import (
	"image"
)

// Color is an RGB triple. Draw calls take colors with the alpha channel
// already stripped; surfaces that carry alpha manage it themselves.
type Color struct {
	R, G, B uint8
}

// Rect is an axis-aligned rectangle in surface coordinates.
type Rect struct {
	X, Y, W, H int
}

// CenteredAt returns a copy of r repositioned so its center lands on (cx, cy).
func (r Rect) CenteredAt(cx, cy int) Rect {
	r.X = cx - r.W/2
	r.Y = cy - r.H/2
	return r
}

// TopLeftAt returns a copy of r repositioned by its top-left corner.
func (r Rect) TopLeftAt(x, y int) Rect {
	r.X = x
	r.Y = y
	return r
}

// TopRightAt returns a copy of r repositioned by its top-right corner.
func (r Rect) TopRightAt(x, y int) Rect {
	r.X = x - r.W
	r.Y = y
	return r
}

// Surface is a width x height pixel buffer plus the drawing operations mode
// scripts call. Storage is straight (non-premultiplied) RGBA regardless of
// whether the surface exposes an alpha channel; hasAlpha selects the blit
// and pixel-read semantics. Every operation clips silently to the buffer
// bounds. Surfaces are not internally locked: callers serialize access (the
// engine mutex covers the canonical screen surface).
type Surface struct {
	width    int
	height   int
	pix      []uint8 // RGBA, 4 bytes per pixel, row-major
	hasAlpha bool
}

// NewSurface creates an opaque surface cleared to black.
func NewSurface(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s := &Surface{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
	for i := 3; i < len(s.pix); i += 4 {
		s.pix[i] = 0xFF
	}
	return s
}

// NewSurfaceAlpha creates a surface with an alpha channel, cleared to fully
// transparent black.
func NewSurfaceAlpha(width, height int) *Surface {
	s := NewSurface(width, height)
	s.hasAlpha = true
	for i := 3; i < len(s.pix); i += 4 {
		s.pix[i] = 0
	}
	return s
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// GetSize returns the surface dimensions.
func (s *Surface) GetSize() (int, int) { return s.width, s.height }

// HasAlpha reports whether the surface carries a meaningful alpha channel.
func (s *Surface) HasAlpha() bool { return s.hasAlpha }

// GetRect returns the surface bounds anchored at the origin. Reposition with
// the Rect anchor helpers.
func (s *Surface) GetRect() Rect {
	return Rect{X: 0, Y: 0, W: s.width, H: s.height}
}

// Fill replaces the entire buffer with a solid color. On surfaces with an
// alpha channel the optional alpha argument is honored so offscreen layers
// can be cleared back to transparent; opaque surfaces always fill opaque.
func (s *Surface) Fill(c Color) {
	s.FillAlpha(c, 0xFF)
}

func (s *Surface) FillAlpha(c Color, alpha uint8) {
	if !s.hasAlpha {
		alpha = 0xFF
	}
	px := [4]uint8{c.R, c.G, c.B, alpha}
	for i := 0; i < len(s.pix); i += 4 {
		copy(s.pix[i:i+4], px[:])
	}
}

// GetAt reads one pixel. Out-of-bounds reads return opaque black rather than
// failing; surfaces without alpha report full opacity.
func (s *Surface) GetAt(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, 0, 0, 0xFF
	}
	i := (y*s.width + x) * 4
	r, g, b, a = s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]
	if !s.hasAlpha {
		a = 0xFF
	}
	return r, g, b, a
}

// SetAt writes one pixel, clipping silently when out of bounds.
func (s *Surface) SetAt(x, y int, c Color) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	i := (y*s.width + x) * 4
	s.pix[i] = c.R
	s.pix[i+1] = c.G
	s.pix[i+2] = c.B
	s.pix[i+3] = 0xFF
}

// Blit copies src onto s at (x, y), which may be negative. area selects a
// sub-rectangle of src (clipped to the source bounds) or nil for the whole
// surface. When src carries alpha the channel acts as a copy mask: alpha 0
// leaves the destination pixel untouched, alpha 255 replaces it, and partial
// alpha composites source-over. Alphaless sources overwrite.
func (s *Surface) Blit(src *Surface, x, y int, area *Rect) {
	if src == nil {
		return
	}
	sr := Rect{0, 0, src.width, src.height}
	if area != nil {
		sr = *area
		if sr.X < 0 {
			sr.W += sr.X
			sr.X = 0
		}
		if sr.Y < 0 {
			sr.H += sr.Y
			sr.Y = 0
		}
		if sr.X+sr.W > src.width {
			sr.W = src.width - sr.X
		}
		if sr.Y+sr.H > src.height {
			sr.H = src.height - sr.Y
		}
	}
	if sr.W <= 0 || sr.H <= 0 {
		return
	}

	// Clip the destination placement, sliding the source window to match.
	dx, dy := x, y
	if dx < 0 {
		sr.X -= dx
		sr.W += dx
		dx = 0
	}
	if dy < 0 {
		sr.Y -= dy
		sr.H += dy
		dy = 0
	}
	w, h := sr.W, sr.H
	if dx+w > s.width {
		w = s.width - dx
	}
	if dy+h > s.height {
		h = s.height - dy
	}
	if w <= 0 || h <= 0 {
		return
	}

	if !src.hasAlpha {
		for row := 0; row < h; row++ {
			so := ((sr.Y+row)*src.width + sr.X) * 4
			do := ((dy+row)*s.width + dx) * 4
			copy(s.pix[do:do+w*4], src.pix[so:so+w*4])
		}
		return
	}

	for row := 0; row < h; row++ {
		so := ((sr.Y+row)*src.width + sr.X) * 4
		do := ((dy+row)*s.width + dx) * 4
		for col := 0; col < w; col++ {
			si := so + col*4
			di := do + col*4
			a := uint32(src.pix[si+3])
			switch a {
			case 0:
				// mask: transparent source pixels never touch the destination
			case 0xFF:
				copy(s.pix[di:di+4], src.pix[si:si+4])
			default:
				na := 0xFF - a
				s.pix[di] = uint8((uint32(src.pix[si])*a + uint32(s.pix[di])*na) / 0xFF)
				s.pix[di+1] = uint8((uint32(src.pix[si+1])*a + uint32(s.pix[di+1])*na) / 0xFF)
				s.pix[di+2] = uint8((uint32(src.pix[si+2])*a + uint32(s.pix[di+2])*na) / 0xFF)
				if s.hasAlpha {
					s.pix[di+3] = uint8(a + uint32(s.pix[di+3])*na/0xFF)
				}
			}
		}
	}
}

// Clone returns an independent copy of the surface.
func (s *Surface) Clone() *Surface {
	c := &Surface{
		width:    s.width,
		height:   s.height,
		pix:      make([]uint8, len(s.pix)),
		hasAlpha: s.hasAlpha,
	}
	copy(c.pix, s.pix)
	return c
}

// Array3 flattens the surface into a dense 3-channel array (row-major RGB),
// dropping alpha. Round-trips losslessly through NewSurfaceFromArray3.
func (s *Surface) Array3() []uint8 {
	out := make([]uint8, s.width*s.height*3)
	for p, i := 0, 0; i < len(s.pix); i += 4 {
		out[p] = s.pix[i]
		out[p+1] = s.pix[i+1]
		out[p+2] = s.pix[i+2]
		p += 3
	}
	return out
}

// LoadArray3 overwrites the surface's color channels from a dense 3-channel
// array produced by Array3 (or computed directly). Alpha becomes opaque.
// Mismatched lengths are ignored.
func (s *Surface) LoadArray3(data []uint8) {
	if len(data) != s.width*s.height*3 {
		return
	}
	for p, i := 0, 0; i < len(s.pix); i += 4 {
		s.pix[i] = data[p]
		s.pix[i+1] = data[p+1]
		s.pix[i+2] = data[p+2]
		s.pix[i+3] = 0xFF
		p += 3
	}
}

// NewSurfaceFromArray3 builds an opaque surface from a dense 3-channel array.
// A length mismatch yields a black surface of the requested size.
func NewSurfaceFromArray3(width, height int, data []uint8) *Surface {
	s := NewSurface(width, height)
	s.LoadArray3(data)
	return s
}

// Snapshot returns a copy of the raw RGBA bytes, for display backends.
func (s *Surface) Snapshot() []uint8 {
	out := make([]uint8, len(s.pix))
	copy(out, s.pix)
	return out
}

// view wraps the buffer as an image.NRGBA without copying. The byte layout
// matches exactly: straight alpha, RGBA order, 4 bytes per pixel. Transform,
// text, and codec paths draw through this view.
func (s *Surface) view() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.pix,
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
}
