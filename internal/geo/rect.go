// Package geo contains the geographic value types used by the photo map:
// bounding rectangles, arrow overlays and the pixel projection they need.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Rect is a latitude/longitude bounding rectangle that may be empty.
// An invalid Rect contains no points; its bounds carry no meaning.
type Rect struct {
	bound orb.Bound
	valid bool
}

// NewRect returns a Rect covering the given points.
func NewRect(points ...orb.Point) Rect {
	var r Rect
	for _, p := range points {
		r.AddPoint(p)
	}
	return r
}

// AddElement widens the rectangle to contain (lat, lng).
// A nil or NaN coordinate is ignored.
func (r *Rect) AddElement(lat, lng *float64) {
	if lat == nil || lng == nil {
		return
	}
	r.AddPoint(orb.Point{*lng, *lat})
}

// AddPoint widens the rectangle to contain p (X is longitude, Y latitude).
func (r *Rect) AddPoint(p orb.Point) {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return
	}
	if !r.valid {
		r.bound = orb.Bound{Min: p, Max: p}
		r.valid = true
		return
	}
	r.bound = r.bound.Extend(p)
}

// Valid reports whether any point has been added.
func (r Rect) Valid() bool {
	return r.valid
}

// Clone returns a copy of r.
func (r Rect) Clone() Rect {
	return Rect{bound: orb.Bound{Min: r.bound.Min, Max: r.bound.Max}, valid: r.valid}
}

// Bound returns the rectangle as an orb.Bound. ok is false for an empty Rect.
func (r Rect) Bound() (b orb.Bound, ok bool) {
	if !r.valid {
		return orb.Bound{}, false
	}
	return r.bound, true
}

// MinLat is the southern edge. Like the other edge accessors it is only
// meaningful for a valid rect.
func (r Rect) MinLat() float64 { return r.bound.Min.Lat() }

// MaxLat is the northern edge.
func (r Rect) MaxLat() float64 { return r.bound.Max.Lat() }

// MinLng is the western edge.
func (r Rect) MinLng() float64 { return r.bound.Min.Lon() }

// MaxLng is the eastern edge.
func (r Rect) MaxLng() float64 { return r.bound.Max.Lon() }

// Contains reports whether (lat, lng) lies inside a valid rectangle.
func (r Rect) Contains(lat, lng float64) bool {
	return r.valid && r.bound.Contains(orb.Point{lng, lat})
}

// Expand pads each axis by fraction of its span on both sides.
func (r Rect) Expand(fraction float64) Rect {
	if !r.valid {
		return r
	}
	dLat := (r.MaxLat() - r.MinLat()) * fraction
	dLng := (r.MaxLng() - r.MinLng()) * fraction
	return Rect{
		bound: orb.Bound{
			Min: orb.Point{r.MinLng() - dLng, r.MinLat() - dLat},
			Max: orb.Point{r.MaxLng() + dLng, r.MaxLat() + dLat},
		},
		valid: true,
	}
}

// Equal reports whether two rectangles describe the same set.
// All invalid rectangles are equal.
func (r Rect) Equal(o Rect) bool {
	if !r.valid || !o.valid {
		return r.valid == o.valid
	}
	return r.bound == o.bound
}

// Merge combines two rectangles. The empty rectangle is the identity.
func Merge(a, b Rect) Rect {
	switch {
	case !a.valid && !b.valid:
		return Rect{}
	case !b.valid:
		return a.Clone()
	case !a.valid:
		return b.Clone()
	}
	return Rect{bound: a.bound.Union(b.bound), valid: true}
}
