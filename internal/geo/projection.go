package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// mercatorWorld is the width of the spherical mercator plane in meters.
const mercatorWorld = 2 * 20037508.342789244

// TileSize is the pixel size of one tile at zoom 0.
const TileSize = 256

// WebMercator projects geographic points to Leaflet-style layer points:
// a 256·2^zoom pixel world translated so Origin is (0, 0).
type WebMercator struct {
	Zoom   float64
	Origin orb.Point
}

// NewWebMercator returns the projection for a viewport of the given pixel
// size centred on center (X=lng, Y=lat).
func NewWebMercator(center orb.Point, zoom float64, width, height int) WebMercator {
	w := WebMercator{Zoom: zoom}
	c := w.worldPixel(center)
	w.Origin = orb.Point{
		math.Round(c[0] - float64(width)/2),
		math.Round(c[1] - float64(height)/2),
	}
	return w
}

func (w WebMercator) scale() float64 {
	return TileSize * math.Pow(2, w.Zoom)
}

func (w WebMercator) worldPixel(p orb.Point) orb.Point {
	m := project.WGS84.ToMercator(p)
	s := w.scale()
	return orb.Point{
		s * (m[0]/mercatorWorld + 0.5),
		s * (0.5 - m[1]/mercatorWorld),
	}
}

// ProjectToPixel implements Projector.
func (w WebMercator) ProjectToPixel(p orb.Point) orb.Point {
	px := w.worldPixel(p)
	return orb.Point{px[0] - w.Origin[0], px[1] - w.Origin[1]}
}

// Unproject implements Projector.
func (w WebMercator) Unproject(px orb.Point) orb.Point {
	s := w.scale()
	wx := (px[0] + w.Origin[0]) / s
	wy := (px[1] + w.Origin[1]) / s
	return project.Mercator.ToWGS84(orb.Point{
		(wx - 0.5) * mercatorWorld,
		(0.5 - wy) * mercatorWorld,
	})
}
