package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// ArrowLengthPx is the distance from the arrowhead apex to its base.
	ArrowLengthPx = 20.0
	// ArrowWidthPx is the width of the arrowhead base.
	ArrowWidthPx = 10.0
)

// Style is the stroke/fill style shared by an arrow's line and head.
type Style struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// DefaultArrowStyle matches the trail colour used on the map.
var DefaultArrowStyle = Style{Color: "orange", Opacity: 0.6}

// Projector converts between geographic points (X=lng, Y=lat) and a flat
// pixel space. It is supplied by the map widget.
type Projector interface {
	ProjectToPixel(p orb.Point) orb.Point
	Unproject(px orb.Point) orb.Point
}

// Triangle is an arrowhead in pixel space.
type Triangle struct {
	Apex    orb.Point
	Corner1 orb.Point
	Corner2 orb.Point
}

// Direction returns the unit vector from start to end. ok is false when the
// two points coincide.
func Direction(start, end orb.Point) (u orb.Point, ok bool) {
	dx := end[0] - start[0]
	dy := end[1] - start[1]
	if dx == 0 && dy == 0 {
		return orb.Point{}, false
	}
	length := math.Hypot(dx, dy)
	return orb.Point{dx / length, dy / length}, true
}

// Perpendicular returns u rotated by a right angle: (uy, -ux).
func Perpendicular(u orb.Point) orb.Point {
	return orb.Point{u[1], -u[0]}
}

// ArrowHead builds the arrowhead for the pixel segment start→end. The apex
// sits on the segment midpoint and the head points along the segment.
// ok is false for a zero-length segment.
func ArrowHead(start, end orb.Point) (Triangle, bool) {
	u, ok := Direction(start, end)
	if !ok {
		return Triangle{}, false
	}
	perp := Perpendicular(u)

	mid := orb.Point{(start[0] + end[0]) / 2, (start[1] + end[1]) / 2}
	back := orb.Point{mid[0] - ArrowLengthPx*u[0], mid[1] - ArrowLengthPx*u[1]}
	half := ArrowWidthPx / 2

	return Triangle{
		Apex:    mid,
		Corner1: orb.Point{back[0] + half*perp[0], back[1] + half*perp[1]},
		Corner2: orb.Point{back[0] - half*perp[0], back[1] - half*perp[1]},
	}, true
}

// ArrowOverlay is a trail segment plus its direction arrowhead, in
// geographic coordinates. Head is nil for a degenerate segment.
type ArrowOverlay struct {
	Line  orb.LineString
	Head  orb.Polygon
	Style Style
}

// HasHead reports whether an arrowhead was produced.
func (a ArrowOverlay) HasHead() bool {
	return len(a.Head) > 0
}

// BuildArrow projects start and end (X=lng, Y=lat) to pixels, builds the
// arrowhead there and maps it back to geographic coordinates.
func BuildArrow(p Projector, start, end orb.Point) ArrowOverlay {
	overlay := ArrowOverlay{
		Line:  orb.LineString{start, end},
		Style: DefaultArrowStyle,
	}

	tri, ok := ArrowHead(p.ProjectToPixel(start), p.ProjectToPixel(end))
	if !ok {
		return overlay
	}

	ring := orb.Ring{
		p.Unproject(tri.Apex),
		p.Unproject(tri.Corner1),
		p.Unproject(tri.Corner2),
	}
	// close the ring for GeoJSON consumers
	ring = append(ring, ring[0])
	overlay.Head = orb.Polygon{ring}
	return overlay
}

// FeatureCollection renders the overlay as GeoJSON: the line, then the head
// when present. Both features carry the style as properties.
func (a ArrowOverlay) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(a.Line)
	line.Properties["role"] = "line"
	line.Properties["color"] = a.Style.Color
	line.Properties["opacity"] = a.Style.Opacity
	fc.Append(line)

	if a.HasHead() {
		head := geojson.NewFeature(a.Head)
		head.Properties["role"] = "head"
		head.Properties["color"] = a.Style.Color
		head.Properties["fillColor"] = a.Style.Color
		head.Properties["opacity"] = a.Style.Opacity
		head.Properties["fillOpacity"] = a.Style.Opacity
		fc.Append(head)
	}
	return fc
}
