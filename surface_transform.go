// surface_transform.go - whole-surface transforms. Each returns a new
// surface; sources are never mutated.
package main

import (
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Scale resamples to width x height with nearest-neighbor sampling.
func (s *Surface) Scale(width, height int) *Surface {
	dst := s.newLike(width, height)
	xdraw.NearestNeighbor.Scale(dst.view(), dst.view().Bounds(), s.view(), s.view().Bounds(), xdraw.Src, nil)
	return dst
}

// SmoothScale resamples to width x height with a higher-quality kernel.
func (s *Surface) SmoothScale(width, height int) *Surface {
	dst := s.newLike(width, height)
	xdraw.CatmullRom.Scale(dst.view(), dst.view().Bounds(), s.view(), s.view().Bounds(), xdraw.Src, nil)
	return dst
}

// Flip mirrors horizontally and/or vertically.
func (s *Surface) Flip(horizontal, vertical bool) *Surface {
	dst := s.newLike(s.width, s.height)
	for y := 0; y < s.height; y++ {
		sy := y
		if vertical {
			sy = s.height - 1 - y
		}
		for x := 0; x < s.width; x++ {
			sx := x
			if horizontal {
				sx = s.width - 1 - x
			}
			copy(dst.pix[(y*s.width+x)*4:(y*s.width+x)*4+4], s.pix[(sy*s.width+sx)*4:(sy*s.width+sx)*4+4])
		}
	}
	return dst
}

// Rotate turns the surface counterclockwise by the given angle in degrees,
// expanding the canvas to fit the rotated content. Quarter turns copy
// exactly; everything else resamples bilinearly. Alphaless surfaces gain a
// black border, alpha surfaces a transparent one.
func (s *Surface) Rotate(degrees float64) *Surface {
	norm := math.Mod(degrees, 360)
	if norm < 0 {
		norm += 360
	}
	switch norm {
	case 0:
		return s.Clone()
	case 90, 180, 270:
		return s.rotateQuarter(int(norm))
	}

	rad := norm * math.Pi / 180
	sin, cos := math.Sincos(rad)
	w := float64(s.width)
	h := float64(s.height)
	newW := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin)))
	newH := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos)))

	dst := s.newLike(newW, newH)
	if !s.hasAlpha {
		dst.Fill(Color{0, 0, 0})
	}

	// Source-to-destination affine: rotate about the source center, then
	// recenter on the expanded canvas. Screen coordinates have y down, so a
	// visually counterclockwise turn uses a negated sine row.
	srcCx, srcCy := w/2, h/2
	dstCx, dstCy := float64(newW)/2, float64(newH)/2
	m := f64.Aff3{
		cos, sin, dstCx - cos*srcCx - sin*srcCy,
		-sin, cos, dstCy + sin*srcCx - cos*srcCy,
	}
	xdraw.BiLinear.Transform(dst.view(), m, s.view(), s.view().Bounds(), xdraw.Src, nil)
	return dst
}

func (s *Surface) rotateQuarter(turn int) *Surface {
	var dst *Surface
	switch turn {
	case 90:
		dst = s.newLike(s.height, s.width)
	case 270:
		dst = s.newLike(s.height, s.width)
	default:
		dst = s.newLike(s.width, s.height)
	}
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			var dx, dy int
			switch turn {
			case 90: // counterclockwise
				dx = y
				dy = s.width - 1 - x
			case 180:
				dx = s.width - 1 - x
				dy = s.height - 1 - y
			case 270:
				dx = s.height - 1 - y
				dy = x
			}
			copy(dst.pix[(dy*dst.width+dx)*4:(dy*dst.width+dx)*4+4], s.pix[(y*s.width+x)*4:(y*s.width+x)*4+4])
		}
	}
	return dst
}

// newLike allocates a surface matching s's alpha mode.
func (s *Surface) newLike(width, height int) *Surface {
	if s.hasAlpha {
		return NewSurfaceAlpha(width, height)
	}
	return NewSurface(width, height)
}
