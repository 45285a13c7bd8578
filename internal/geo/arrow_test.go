package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// identity maps geographic points straight onto pixels.
type identity struct{}

func (identity) ProjectToPixel(p orb.Point) orb.Point { return p }
func (identity) Unproject(px orb.Point) orb.Point     { return px }

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

func TestArrowHead_Degenerate(t *testing.T) {
	if _, ok := ArrowHead(orb.Point{3, 4}, orb.Point{3, 4}); ok {
		t.Fatal("zero-length segment must not produce an arrowhead")
	}

	a := BuildArrow(identity{}, orb.Point{1, 1}, orb.Point{1, 1})
	if a.HasHead() {
		t.Error("degenerate overlay has a head")
	}
	if len(a.Line) != 2 {
		t.Errorf("line should still be drawn, got %d points", len(a.Line))
	}
}

func TestArrowHead_Horizontal(t *testing.T) {
	tri, ok := ArrowHead(orb.Point{0, 0}, orb.Point{100, 0})
	if !ok {
		t.Fatal("expected arrowhead")
	}

	u, _ := Direction(orb.Point{0, 0}, orb.Point{100, 0})
	perp := Perpendicular(u)
	if perp[0] != 0 || math.Abs(perp[1]) != 1 {
		t.Errorf("perpendicular of horizontal segment = %v, want purely vertical", perp)
	}

	if !near(tri.Apex, orb.Point{50, 0}) {
		t.Errorf("apex = %v, want midpoint (50,0)", tri.Apex)
	}
	// both corners sit 20px behind the apex, mirrored across y=0
	if tri.Corner1[0] != 30 || tri.Corner2[0] != 30 {
		t.Errorf("corner x = %v, %v, want 30", tri.Corner1[0], tri.Corner2[0])
	}
	if tri.Corner1[1] != -tri.Corner2[1] || math.Abs(tri.Corner1[1]) != ArrowWidthPx/2 {
		t.Errorf("corners not symmetric about the line: %v %v", tri.Corner1, tri.Corner2)
	}
}

func TestArrowHead_PointsAlongSegment(t *testing.T) {
	tests := []struct {
		name       string
		start, end orb.Point
	}{
		{"east", orb.Point{0, 0}, orb.Point{10, 0}},
		{"west", orb.Point{10, 0}, orb.Point{0, 0}},
		{"south", orb.Point{0, 0}, orb.Point{0, 80}},
		{"diagonal", orb.Point{-3, 7}, orb.Point{40, -25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tri, ok := ArrowHead(tt.start, tt.end)
			if !ok {
				t.Fatal("expected arrowhead")
			}
			u, _ := Direction(tt.start, tt.end)
			base := orb.Point{(tri.Corner1[0] + tri.Corner2[0]) / 2, (tri.Corner1[1] + tri.Corner2[1]) / 2}
			// apex - base must equal ArrowLengthPx along u
			dx, dy := tri.Apex[0]-base[0], tri.Apex[1]-base[1]
			if math.Abs(dx-ArrowLengthPx*u[0]) > 1e-9 || math.Abs(dy-ArrowLengthPx*u[1]) > 1e-9 {
				t.Errorf("apex-base = (%v,%v), want %v*u=%v", dx, dy, ArrowLengthPx, u)
			}
			width := math.Hypot(tri.Corner1[0]-tri.Corner2[0], tri.Corner1[1]-tri.Corner2[1])
			if math.Abs(width-ArrowWidthPx) > 1e-9 {
				t.Errorf("base width = %v, want %v", width, ArrowWidthPx)
			}
		})
	}
}

func TestBuildArrow(t *testing.T) {
	a := BuildArrow(identity{}, orb.Point{0, 0}, orb.Point{0, 100})
	if !a.HasHead() {
		t.Fatal("expected head")
	}
	ring := a.Head[0]
	if len(ring) != 4 || ring[0] != ring[3] {
		t.Errorf("head ring should be a closed triangle, got %v", ring)
	}
	if !near(ring[0], orb.Point{0, 50}) {
		t.Errorf("apex = %v, want (0,50)", ring[0])
	}
	if a.Style != DefaultArrowStyle {
		t.Errorf("style = %+v", a.Style)
	}
}

func TestArrowOverlay_FeatureCollection(t *testing.T) {
	fc := BuildArrow(identity{}, orb.Point{0, 0}, orb.Point{10, 10}).FeatureCollection()
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	if fc.Features[0].Properties["role"] != "line" || fc.Features[1].Properties["role"] != "head" {
		t.Errorf("unexpected roles: %v, %v", fc.Features[0].Properties, fc.Features[1].Properties)
	}

	flat := BuildArrow(identity{}, orb.Point{1, 1}, orb.Point{1, 1}).FeatureCollection()
	if len(flat.Features) != 1 {
		t.Errorf("degenerate arrow features = %d, want 1", len(flat.Features))
	}
}

func TestBuildArrow_WebMercator(t *testing.T) {
	proj := NewWebMercator(orb.Point{-0.09, 51.5}, 13, 800, 600)
	start := orb.Point{-0.10, 51.50}
	end := orb.Point{-0.08, 51.50}

	a := BuildArrow(proj, start, end)
	if !a.HasHead() {
		t.Fatal("expected head")
	}
	apex := a.Head[0][0]
	if math.Abs(apex.Lon()-(-0.09)) > 1e-6 {
		t.Errorf("apex lng = %v, want midpoint -0.09", apex.Lon())
	}
	// eastward segment: the head base lies west of the apex
	if a.Head[0][1].Lon() >= apex.Lon() || a.Head[0][2].Lon() >= apex.Lon() {
		t.Errorf("arrowhead points the wrong way: %v", a.Head[0])
	}
}
