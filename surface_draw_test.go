package main

import (
	"math"
	"testing"
)

var ink = Color{R: 255, G: 255, B: 255}

func pixelOn(t *testing.T, s *Surface, x, y int) bool {
	t.Helper()
	r, g, b, _ := s.GetAt(x, y)
	return r != 0 || g != 0 || b != 0
}

func TestDraw_CircleFilled(t *testing.T) {
	s := NewSurface(64, 64)
	s.Circle(ink, 32, 32, 10, 0)

	if !pixelOn(t, s, 32, 32) {
		t.Error("expected filled center")
	}
	if !pixelOn(t, s, 41, 32) {
		t.Error("expected pixel just inside radius")
	}
	if pixelOn(t, s, 44, 32) {
		t.Error("expected pixel outside radius to stay black")
	}
}

func TestDraw_CircleStroked(t *testing.T) {
	s := NewSurface(64, 64)
	s.Circle(ink, 32, 32, 10, 2)

	if pixelOn(t, s, 32, 32) {
		t.Error("expected hollow center")
	}
	if !pixelOn(t, s, 42, 32) {
		t.Error("expected ring pixel at radius")
	}
	if !pixelOn(t, s, 41, 32) {
		t.Error("expected ring pixel one inward")
	}
	if pixelOn(t, s, 38, 32) {
		t.Error("expected pixel inside ring to stay black")
	}
}

func TestDraw_CircleClipsAtEdge(t *testing.T) {
	s := NewSurface(16, 16)
	s.Circle(ink, 0, 0, 10, 0) // mostly off-surface, must not panic
	if !pixelOn(t, s, 0, 0) {
		t.Error("expected visible quadrant at origin")
	}
}

func TestDraw_RectangleFilledAndStroked(t *testing.T) {
	s := NewSurface(32, 32)
	s.Rectangle(ink, Rect{4, 4, 8, 8}, 0)

	if !pixelOn(t, s, 4, 4) || !pixelOn(t, s, 12, 12) {
		t.Error("expected inclusive corners filled")
	}
	if pixelOn(t, s, 13, 13) {
		t.Error("expected pixel past inclusive edge to stay black")
	}

	s2 := NewSurface(32, 32)
	s2.Rectangle(ink, Rect{4, 4, 8, 8}, 1)
	if !pixelOn(t, s2, 4, 4) || !pixelOn(t, s2, 12, 4) {
		t.Error("expected stroked border")
	}
	if pixelOn(t, s2, 8, 8) {
		t.Error("expected hollow interior")
	}
}

func TestDraw_EllipseFilled(t *testing.T) {
	s := NewSurface(64, 64)
	s.Ellipse(ink, Rect{12, 22, 40, 20}, 0)

	if !pixelOn(t, s, 32, 32) {
		t.Error("expected filled center")
	}
	if !pixelOn(t, s, 13, 32) {
		t.Error("expected left extreme on")
	}
	if pixelOn(t, s, 13, 23) {
		t.Error("expected bounding-box corner outside ellipse")
	}
}

func TestDraw_EllipseStrokedHollow(t *testing.T) {
	s := NewSurface(64, 64)
	s.Ellipse(ink, Rect{12, 12, 40, 40}, 2)
	if pixelOn(t, s, 32, 32) {
		t.Error("expected hollow center")
	}
	if !pixelOn(t, s, 12, 32) {
		t.Error("expected rim pixel")
	}
}

func TestDraw_LineThin(t *testing.T) {
	s := NewSurface(16, 16)
	s.Line(ink, 2, 2, 10, 2, 1)

	for x := 2; x <= 10; x++ {
		if !pixelOn(t, s, x, 2) {
			t.Errorf("expected pixel (%d,2) on", x)
		}
	}
	if pixelOn(t, s, 11, 2) || pixelOn(t, s, 1, 2) {
		t.Error("expected endpoints inclusive, nothing beyond")
	}
}

func TestDraw_LineThick(t *testing.T) {
	s := NewSurface(32, 32)
	s.Line(ink, 4, 16, 28, 16, 6)

	if !pixelOn(t, s, 16, 14) || !pixelOn(t, s, 16, 18) {
		t.Error("expected thickness to extend vertically")
	}
	if pixelOn(t, s, 16, 10) || pixelOn(t, s, 16, 22) {
		t.Error("expected nothing far above/below the band")
	}
}

func TestDraw_LineDiagonalEndpoints(t *testing.T) {
	s := NewSurface(16, 16)
	s.Line(ink, 0, 0, 15, 15, 1)
	if !pixelOn(t, s, 0, 0) || !pixelOn(t, s, 15, 15) || !pixelOn(t, s, 7, 7) {
		t.Error("expected diagonal through endpoints and center")
	}
}

func TestDraw_PolygonFewPointsNoOp(t *testing.T) {
	s := NewSurface(16, 16)
	s.Polygon(ink, [][2]int{}, 0)
	s.Polygon(ink, [][2]int{{5, 5}}, 0)
	s.Polygon(ink, [][2]int{{5, 5}, {10, 10}}, 0)

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if pixelOn(t, s, x, y) {
				t.Fatalf("expected untouched surface, got pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestDraw_PolygonFilledTriangle(t *testing.T) {
	s := NewSurface(32, 32)
	s.Polygon(ink, [][2]int{{16, 4}, {28, 28}, {4, 28}}, 0)

	if !pixelOn(t, s, 16, 20) {
		t.Error("expected interior filled")
	}
	if !pixelOn(t, s, 16, 4) {
		t.Error("expected vertex painted")
	}
	if pixelOn(t, s, 4, 4) {
		t.Error("expected outside corner black")
	}
}

func TestDraw_PolygonStroked(t *testing.T) {
	s := NewSurface(32, 32)
	s.Polygon(ink, [][2]int{{4, 4}, {28, 4}, {28, 28}, {4, 28}}, 1)

	if !pixelOn(t, s, 16, 4) || !pixelOn(t, s, 4, 16) {
		t.Error("expected stroked edges, including the closing edge")
	}
	if pixelOn(t, s, 16, 16) {
		t.Error("expected hollow interior")
	}
}

func TestDraw_ArcIsStrokeNotWedge(t *testing.T) {
	s := NewSurface(64, 64)
	// Top half arc: 0..pi counterclockwise means the upper semicircle.
	s.Arc(ink, Rect{12, 12, 40, 40}, 0, math.Pi, 1)

	if !pixelOn(t, s, 32, 12) {
		t.Error("expected top of arc painted")
	}
	if pixelOn(t, s, 32, 32) {
		t.Error("expected center empty (stroke, not wedge)")
	}
	if pixelOn(t, s, 32, 51) {
		t.Error("expected bottom half empty")
	}
}

func TestDraw_ArcPlotsBothEndpoints(t *testing.T) {
	for _, stop := range []float64{0.7, math.Pi / 4, math.Pi / 2, math.Pi, 2.1} {
		s := NewSurface(128, 128)
		s.Arc(ink, Rect{14, 14, 100, 100}, 0.2, stop, 1)

		sx := int(math.Round(64 + 50*math.Cos(0.2)))
		sy := int(math.Round(64 - 50*math.Sin(0.2)))
		if !pixelOn(t, s, sx, sy) {
			t.Errorf("stop %v: expected start endpoint (%d,%d) painted", stop, sx, sy)
		}
		ex := int(math.Round(64 + 50*math.Cos(stop)))
		ey := int(math.Round(64 - 50*math.Sin(stop)))
		if !pixelOn(t, s, ex, ey) {
			t.Errorf("stop %v: expected stop endpoint (%d,%d) painted", stop, ex, ey)
		}
	}
}

func TestDraw_ArcDegenerateRect(t *testing.T) {
	s := NewSurface(16, 16)
	s.Arc(ink, Rect{4, 4, 0, 8}, 0, math.Pi, 1) // must not panic
}
