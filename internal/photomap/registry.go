package photomap

import (
	"math"

	"github.com/joeblew999/plat-photomap/internal/geo"
	"github.com/joeblew999/plat-photomap/internal/icon"
	"github.com/joeblew999/plat-photomap/internal/metrics"
)

type marker struct {
	index     int
	ids       []int64
	lat, lng  float64
	draggable bool
	icon      icon.Icon

	// current is the image index last requested; popup is what is shown.
	current int
	popup   PopupState
}

func (m *marker) view() MarkerView {
	return MarkerView{
		Index:     m.index,
		ImageIDs:  append([]int64(nil), m.ids...),
		Lat:       m.lat,
		Lng:       m.lng,
		Draggable: m.draggable,
		Icon:      m.icon,
	}
}

func (m *marker) cluster() bool { return len(m.ids) > 1 }

// ReplaceAll detaches every marker and arrow, then plots arrows and starts
// resolving an icon for each usable marker. Markers attach as their icons
// resolve, in any order. It returns the number of markers accepted.
func (e *Engine) ReplaceAll(markers []MarkerSnapshot, arrows []ArrowSnapshot) int {
	e.reset()

	e.arrows = append([]ArrowSnapshot(nil), arrows...)
	e.rebuildArrows()

	accepted := 0
	for _, s := range markers {
		if len(s.ImageIDs) == 0 || !coord(s.Lat) || !coord(s.Lng) {
			e.log.Debug("marker skipped", "ids", s.ImageIDs)
			continue
		}
		pending := &marker{
			ids:       append([]int64(nil), s.ImageIDs...),
			lat:       *s.Lat,
			lng:       *s.Lng,
			draggable: s.Draggable,
		}
		gen := e.generation
		e.resolver.Resolve(s.Thumbnail, len(pending.ids), func(ic icon.Icon, err error) {
			e.attach(gen, pending, ic, err)
		})
		accepted++
	}
	e.log.Info("markers replaced", "generation", e.generation, "markers", accepted, "arrows", len(arrows))
	return accepted
}

// Clear detaches every marker and arrow. Repeated calls are harmless.
func (e *Engine) Clear() {
	e.reset()
	e.arrows = nil
	e.log.Info("map cleared", "generation", e.generation)
}

// reset detaches the current set and starts a new generation, which
// invalidates every outstanding icon decode and metadata fetch.
func (e *Engine) reset() {
	for i := range e.markers {
		e.m.DetachMarker(i)
	}
	for i := range e.overlays {
		e.m.DetachArrow(i)
	}
	if e.open >= 0 {
		e.notify.HighlightCleared()
	}
	e.markers = nil
	e.overlays = nil
	e.open = -1
	e.generation++
	metrics.MarkersAttached.Set(0)
	metrics.ArrowsAttached.Set(0)
}

func (e *Engine) attach(gen uint64, m *marker, ic icon.Icon, err error) {
	if gen != e.generation {
		metrics.StaleCompletionsTotal.WithLabelValues("icon").Inc()
		return
	}
	if err != nil {
		e.log.Warn("marker dropped", "ids", m.ids, "error", err)
		return
	}
	m.icon = ic
	m.index = len(e.markers)
	e.markers = append(e.markers, m)
	e.m.AttachMarker(m.view())
	metrics.MarkersAttached.Set(float64(len(e.markers)))
}

// rebuildArrows projects every arrow with the current view and attaches it,
// replacing whatever overlay held the same index.
func (e *Engine) rebuildArrows() {
	overlays := make([]geo.ArrowOverlay, len(e.arrows))
	for i, a := range e.arrows {
		overlays[i] = geo.BuildArrow(e.m, a.Start, a.End)
		e.m.AttachArrow(i, overlays[i])
	}
	e.overlays = overlays
	metrics.ArrowsAttached.Set(float64(len(overlays)))
}

// Markers returns the attached markers in registry order.
func (e *Engine) Markers() []MarkerState {
	out := make([]MarkerState, len(e.markers))
	for i, m := range e.markers {
		out[i] = MarkerState{MarkerView: m.view(), Current: m.current, Popup: m.popup}
	}
	return out
}

// Arrows returns the attached arrow overlays.
func (e *Engine) Arrows() []geo.ArrowOverlay {
	return append([]geo.ArrowOverlay(nil), e.overlays...)
}

// Bounds is the rectangle covering every attached marker.
func (e *Engine) Bounds() geo.Rect {
	var r geo.Rect
	for _, m := range e.markers {
		r.AddElement(&m.lat, &m.lng)
	}
	return r
}

// ZoomToAll fits the view around every attached marker. It reports false
// when there is nothing to fit.
func (e *Engine) ZoomToAll() bool {
	return e.FitRect(e.Bounds())
}

// FitRect fits the view to r padded by ZoomToAllPadding on each side. It
// reports false for an invalid rect.
func (e *Engine) FitRect(r geo.Rect) bool {
	b, ok := r.Expand(ZoomToAllPadding).Bound()
	if !ok {
		return false
	}
	e.m.FitBounds(b)
	return true
}

func coord(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
