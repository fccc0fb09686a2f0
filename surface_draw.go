// surface_draw.go - immediate-mode shape rasterizers for Surface.
package main

import (
	"math"
	"sort"
)

// Shape rasterization follows the conventions of the synthesizer's original
// drawing layer: bounding boxes include their right/bottom edges, width=0
// means filled, width>0 strokes inward from the shape boundary, and all
// malformed geometry degrades to a no-op. Nothing here ever returns an error;
// clipping is silent.

// hspan fills the inclusive horizontal run [x0, x1] on row y.
func (s *Surface) hspan(x0, x1, y int, c Color) {
	if y < 0 || y >= s.height {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= s.width {
		x1 = s.width - 1
	}
	if x0 > x1 {
		return
	}
	i := (y*s.width + x0) * 4
	for x := x0; x <= x1; x++ {
		s.pix[i] = c.R
		s.pix[i+1] = c.G
		s.pix[i+2] = c.B
		s.pix[i+3] = 0xFF
		i += 4
	}
}

// vspan fills the inclusive vertical run [y0, y1] on column x.
func (s *Surface) vspan(x, y0, y1 int, c Color) {
	if x < 0 || x >= s.width {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= s.height {
		y1 = s.height - 1
	}
	for y := y0; y <= y1; y++ {
		i := (y*s.width + x) * 4
		s.pix[i] = c.R
		s.pix[i+1] = c.G
		s.pix[i+2] = c.B
		s.pix[i+3] = 0xFF
	}
}

// Circle draws a circle centered at (cx, cy). width 0 fills; width > 0
// strokes a ring of that thickness growing inward from the radius.
func (s *Surface) Circle(c Color, cx, cy, radius, width int) {
	if radius < 0 {
		return
	}
	if width <= 0 || width > radius {
		for dy := -radius; dy <= radius; dy++ {
			half := int(math.Sqrt(float64(radius*radius - dy*dy)))
			s.hspan(cx-half, cx+half, cy+dy, c)
		}
		return
	}
	outer := radius * radius
	in := radius - width
	inner := in * in
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 <= outer && d2 > inner {
				s.SetAt(cx+dx, cy+dy, c)
			}
		}
	}
}

// Rectangle draws r with inclusive right/bottom edges. width 0 fills;
// width > 0 strokes that many pixels inward.
func (s *Surface) Rectangle(c Color, r Rect, width int) {
	if r.W < 0 || r.H < 0 {
		return
	}
	x1 := r.X + r.W
	y1 := r.Y + r.H
	if width <= 0 {
		for y := r.Y; y <= y1; y++ {
			s.hspan(r.X, x1, y, c)
		}
		return
	}
	for i := 0; i < width; i++ {
		if r.X+i > x1-i || r.Y+i > y1-i {
			break
		}
		s.hspan(r.X+i, x1-i, r.Y+i, c)
		s.hspan(r.X+i, x1-i, y1-i, c)
		s.vspan(r.X+i, r.Y+i, y1-i, c)
		s.vspan(x1-i, r.Y+i, y1-i, c)
	}
}

// Ellipse draws the ellipse inscribed in r (inclusive edges). width 0 fills;
// width > 0 strokes inward.
func (s *Surface) Ellipse(c Color, r Rect, width int) {
	if r.W < 0 || r.H < 0 {
		return
	}
	if r.W == 0 || r.H == 0 {
		s.Rectangle(c, r, 0)
		return
	}
	rx := float64(r.W) / 2
	ry := float64(r.H) / 2
	cx := float64(r.X) + rx
	cy := float64(r.Y) + ry

	filled := width <= 0 || float64(width) >= math.Min(rx, ry)
	irx := rx - float64(width)
	iry := ry - float64(width)

	for y := r.Y; y <= r.Y+r.H; y++ {
		fy := (float64(y) - cy) / ry
		if fy < -1 || fy > 1 {
			continue
		}
		half := rx * math.Sqrt(1-fy*fy)
		x0 := int(math.Ceil(cx - half))
		x1 := int(math.Floor(cx + half))
		if filled {
			s.hspan(x0, x1, y, c)
			continue
		}
		// Stroke: subtract the inner ellipse's span on this row, if any.
		dy := float64(y) - cy
		if iry > 0 && dy > -iry && dy < iry {
			ihalf := irx * math.Sqrt(1-(dy/iry)*(dy/iry))
			ix0 := int(math.Ceil(cx - ihalf))
			ix1 := int(math.Floor(cx + ihalf))
			s.hspan(x0, ix0-1, y, c)
			s.hspan(ix1+1, x1, y, c)
		} else {
			s.hspan(x0, x1, y, c)
		}
	}
}

// Line draws a segment from (x0, y0) to (x1, y1) of the given pixel width.
func (s *Surface) Line(c Color, x0, y0, x1, y1, width int) {
	if width <= 1 {
		s.thinLine(c, x0, y0, x1, y1)
		return
	}
	if x0 == x1 && y0 == y1 {
		half := width / 2
		s.Rectangle(c, Rect{x0 - half, y0 - half, width - 1, width - 1}, 0)
		return
	}
	// Thick line as a filled quad: offset both endpoints by the perpendicular.
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	l := math.Hypot(dx, dy)
	nx := -dy / l * float64(width) / 2
	ny := dx / l * float64(width) / 2
	quad := [][2]int{
		{int(math.Round(float64(x0) + nx)), int(math.Round(float64(y0) + ny))},
		{int(math.Round(float64(x1) + nx)), int(math.Round(float64(y1) + ny))},
		{int(math.Round(float64(x1) - nx)), int(math.Round(float64(y1) - ny))},
		{int(math.Round(float64(x0) - nx)), int(math.Round(float64(y0) - ny))},
	}
	s.Polygon(c, quad, 0)
}

// thinLine is a classic Bresenham walk, endpoints inclusive.
func (s *Surface) thinLine(c Color, x0, y0, x1, y1 int) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		s.SetAt(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Polygon draws a closed polygon. Fewer than three points is a no-op.
// width 0 fills (even-odd scanline, boundary included); width > 0 strokes
// each edge, including the closing edge.
func (s *Surface) Polygon(c Color, points [][2]int, width int) {
	if len(points) < 3 {
		return
	}
	if width > 0 {
		for i := range points {
			j := (i + 1) % len(points)
			s.Line(c, points[i][0], points[i][1], points[j][0], points[j][1], width)
		}
		return
	}

	minY, maxY := points[0][1], points[0][1]
	for _, p := range points {
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= s.height {
		maxY = s.height - 1
	}

	xs := make([]float64, 0, len(points))
	for y := minY; y <= maxY; y++ {
		fy := float64(y)
		xs = xs[:0]
		for i := range points {
			j := (i + 1) % len(points)
			y0 := float64(points[i][1])
			y1 := float64(points[j][1])
			if y0 == y1 {
				continue
			}
			// Half-open rule so shared vertices count once per edge pair.
			if (fy >= y0 && fy < y1) || (fy >= y1 && fy < y0) {
				x0 := float64(points[i][0])
				x1 := float64(points[j][0])
				xs = append(xs, x0+(fy-y0)/(y1-y0)*(x1-x0))
			}
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			s.hspan(int(math.Ceil(xs[k])), int(math.Floor(xs[k+1])), y, c)
		}
	}
	// Boundary pass so edge pixels are always painted.
	for i := range points {
		j := (i + 1) % len(points)
		s.thinLine(c, points[i][0], points[i][1], points[j][0], points[j][1])
	}
}

// Arc strokes the elliptical arc inscribed in r between startRad and stopRad.
// Angles run counterclockwise from three o'clock (math convention, so the
// sine term is negated in the y-down buffer). Never a filled wedge; width
// strokes inward like the other shapes.
func (s *Surface) Arc(c Color, r Rect, startRad, stopRad float64, width int) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	if width <= 0 {
		width = 1
	}
	for stopRad < startRad {
		stopRad += 2 * math.Pi
	}
	if stopRad-startRad > 2*math.Pi {
		stopRad = startRad + 2*math.Pi
	}
	rx := float64(r.W) / 2
	ry := float64(r.H) / 2
	cx := float64(r.X) + rx
	cy := float64(r.Y) + ry

	for k := 0; k < width; k++ {
		arx := rx - float64(k)
		ary := ry - float64(k)
		if arx <= 0 || ary <= 0 {
			break
		}
		// Half-pixel sampling along the arc. Interpolating over a fixed
		// step count lands the final sample exactly on stopRad, so both
		// endpoints are always plotted.
		span := stopRad - startRad
		steps := int(math.Ceil(span * 2 * math.Max(arx, ary)))
		if steps < 1 {
			steps = 1
		}
		for i := 0; i <= steps; i++ {
			t := startRad + span*float64(i)/float64(steps)
			x := int(math.Round(cx + arx*math.Cos(t)))
			y := int(math.Round(cy - ary*math.Sin(t)))
			s.SetAt(x, y, c)
		}
	}
}
