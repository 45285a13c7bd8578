package photomap

import (
	"fmt"

	"github.com/joeblew999/plat-photomap/internal/metrics"
)

// Click requests the first photo of a marker and opens its popup when the
// metadata arrives. Single markers get a plain popup, clusters a paging one.
func (e *Engine) Click(index int) error {
	m, err := e.marker(index)
	if err != nil {
		return err
	}
	tok := Token{Generation: e.generation, Marker: index, Image: 0}
	e.fetch(tok, m.ids[0], e.opened)
	return nil
}

// Next pages a cluster popup forward.
func (e *Engine) Next(index int) error {
	return e.page(index, +1)
}

// Prev pages a cluster popup back.
func (e *Engine) Prev(index int) error {
	return e.page(index, -1)
}

// CanPage reports whether Prev and Next are currently enabled for a marker.
func (e *Engine) CanPage(index int) (prev, next bool) {
	if index < 0 || index >= len(e.markers) {
		return false, false
	}
	m := e.markers[index]
	if !m.cluster() || !m.popup.Open {
		return false, false
	}
	return m.current > 0, m.current < len(m.ids)-1
}

func (e *Engine) page(index, step int) error {
	m, err := e.marker(index)
	if err != nil {
		return err
	}
	if !m.cluster() {
		return fmt.Errorf("marker %d has one photo: %w", index, ErrPagingDisabled)
	}
	if !m.popup.Open {
		return fmt.Errorf("marker %d: %w", index, ErrPopupNotOpen)
	}
	prev, next := e.CanPage(index)
	if (step < 0 && !prev) || (step > 0 && !next) {
		return fmt.Errorf("marker %d at photo %d of %d: %w", index, m.current+1, len(m.ids), ErrPagingDisabled)
	}

	m.current += step
	tok := Token{Generation: e.generation, Marker: index, Image: m.current}
	e.fetch(tok, m.ids[m.current], e.paged)
	return nil
}

// PopupClosed handles the browser closing marker's popup. A close for any
// marker other than the open one arrives after another popup replaced it
// and is ignored.
func (e *Engine) PopupClosed(marker int) {
	if e.open < 0 || marker != e.open {
		metrics.StaleCompletionsTotal.WithLabelValues("close").Inc()
		e.log.Debug("close for replaced popup ignored", "marker", marker, "open", e.open)
		return
	}
	if e.open < len(e.markers) {
		e.markers[e.open].popup = PopupState{}
	}
	e.open = -1
	e.notify.HighlightCleared()
}

// OpenPopup reports which marker's popup is open.
func (e *Engine) OpenPopup() (int, bool) {
	return e.open, e.open >= 0
}

func (e *Engine) opened(tok Token, md Metadata) {
	m, ok := e.live(tok, "open")
	if !ok {
		return
	}

	html, err := e.render.Popup(e.popupView(m, 0, md))
	if err != nil {
		e.log.Error("render popup", "marker", tok.Marker, "error", err)
		return
	}

	if e.open >= 0 && e.open != tok.Marker && e.open < len(e.markers) {
		e.markers[e.open].popup = PopupState{}
	}
	m.current = 0
	m.popup = PopupState{Open: true, Index: 0}
	e.open = tok.Marker
	e.m.OpenPopup(tok.Marker, html)
	e.highlight(m.ids[0])
}

func (e *Engine) paged(tok Token, md Metadata) {
	m, ok := e.live(tok, "page")
	if !ok {
		return
	}
	if !m.popup.Open || m.current != tok.Image {
		metrics.StaleCompletionsTotal.WithLabelValues("page").Inc()
		e.log.Debug("superseded page ignored", "marker", tok.Marker, "image", tok.Image, "current", m.current)
		return
	}
	m.popup.Index = tok.Image

	html, err := e.render.PopupContent(e.popupView(m, m.current, md))
	if err != nil {
		e.log.Error("render popup content", "marker", tok.Marker, "error", err)
		return
	}
	e.m.UpdatePopup(tok.Marker, html)
	e.highlight(m.ids[m.current])
}

func (e *Engine) highlight(id int64) {
	e.notify.HighlightCleared()
	e.notify.MarkerHighlighted(id)
}

func (e *Engine) popupView(m *marker, index int, md Metadata) PopupView {
	return PopupView{
		Marker:  m.index,
		Meta:    md,
		Index:   index,
		Count:   len(m.ids),
		Paging:  m.cluster(),
		HasPrev: m.cluster() && index > 0,
		HasNext: m.cluster() && index < len(m.ids)-1,
	}
}
