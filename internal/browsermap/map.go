// Package browsermap is the server-side stand-in for the Leaflet map in the
// browser. It keeps the projection in sync with the reported view and turns
// every map call into an event the SSE stream forwards to the page.
package browsermap

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-photomap/internal/geo"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// Event resources published by Map.
const (
	ResourceMarker = "marker"
	ResourceArrow  = "arrow"
	ResourcePopup  = "popup"
	ResourceView   = "view"
)

// DefaultView is the map shown before the browser reports its own.
var DefaultView = photomap.View{
	CenterLat: 51.505,
	CenterLng: -0.09,
	Zoom:      13,
	Width:     800,
	Height:    600,
}

// Arrow is the payload of an arrow.attached event.
type Arrow struct {
	Index    int                        `json:"index"`
	Features *geojson.FeatureCollection `json:"features"`
}

// Popup is the payload of popup events.
type Popup struct {
	Marker int    `json:"marker"`
	HTML   string `json:"html"`
}

// ViewChange is the payload of view events. Bounds is set for fit.
type ViewChange struct {
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`
	Zoom   float64   `json:"zoom,omitempty"`
	Bounds []float64 `json:"bounds,omitempty"` // south, west, north, east
}

// Map implements photomap.Map by publishing to an event bus.
type Map struct {
	bus *service.EventBus

	mu   sync.RWMutex
	view photomap.View
	proj geo.WebMercator
}

// New returns a map showing initial. A zero-sized view falls back to
// DefaultView's dimensions.
func New(bus *service.EventBus, initial photomap.View) *Map {
	m := &Map{bus: bus}
	m.setView(initial)
	return m
}

func (m *Map) setView(v photomap.View) {
	if v.Width <= 0 || v.Height <= 0 {
		v.Width, v.Height = DefaultView.Width, DefaultView.Height
	}
	m.mu.Lock()
	m.view = v
	m.proj = geo.NewWebMercator(v.Center(), v.Zoom, v.Width, v.Height)
	m.mu.Unlock()
}

// View returns the last known view.
func (m *Map) View() photomap.View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

func (m *Map) projection() geo.WebMercator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.proj
}

func (m *Map) ProjectToPixel(p orb.Point) orb.Point { return m.projection().ProjectToPixel(p) }
func (m *Map) Unproject(px orb.Point) orb.Point     { return m.projection().Unproject(px) }

func (m *Map) publish(resource, action, id string, data any) {
	m.bus.Publish(service.Event{Resource: resource, Action: action, ID: id, Data: data})
}

func (m *Map) AttachMarker(v photomap.MarkerView) {
	m.publish(ResourceMarker, "attached", service.IndexID(v.Index), v)
}

func (m *Map) DetachMarker(index int) {
	m.publish(ResourceMarker, "detached", service.IndexID(index), nil)
}

func (m *Map) AttachArrow(index int, a geo.ArrowOverlay) {
	m.publish(ResourceArrow, "attached", service.IndexID(index), Arrow{Index: index, Features: a.FeatureCollection()})
}

func (m *Map) DetachArrow(index int) {
	m.publish(ResourceArrow, "detached", service.IndexID(index), nil)
}

func (m *Map) OpenPopup(marker int, html string) {
	m.publish(ResourcePopup, "opened", service.IndexID(marker), Popup{Marker: marker, HTML: html})
}

func (m *Map) UpdatePopup(marker int, html string) {
	m.publish(ResourcePopup, "updated", service.IndexID(marker), Popup{Marker: marker, HTML: html})
}

func (m *Map) SetView(center orb.Point, zoom float64) {
	v := m.View()
	v.CenterLat, v.CenterLng, v.Zoom = center.Lat(), center.Lon(), zoom
	m.setView(v)
	m.publish(ResourceView, "set", "", ViewChange{Lat: center.Lat(), Lng: center.Lon(), Zoom: zoom})
}

func (m *Map) PanTo(center orb.Point) {
	v := m.View()
	v.CenterLat, v.CenterLng = center.Lat(), center.Lon()
	m.setView(v)
	m.publish(ResourceView, "pan", "", ViewChange{Lat: center.Lat(), Lng: center.Lon(), Zoom: v.Zoom})
}

// FitBounds recentres the projection on b; the zoom the browser settles on
// arrives later through Moved.
func (m *Map) FitBounds(b orb.Bound) {
	c := b.Center()
	v := m.View()
	v.CenterLat, v.CenterLng = c.Lat(), c.Lon()
	v.South, v.West, v.North, v.East = b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon()
	m.setView(v)
	m.publish(ResourceView, "fit", "", ViewChange{
		Lat:    c.Lat(),
		Lng:    c.Lon(),
		Bounds: []float64{b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon()},
	})
}

func (m *Map) Moved(v photomap.View) {
	m.setView(v)
}
