// Package mapview streams map commands to the browser page over Datastar SSE
// and receives the view the page reports back.
package mapview

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/browsermap"
	"github.com/joeblew999/plat-photomap/internal/humastar"
	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
	"github.com/joeblew999/plat-photomap/internal/templates"
)

// EventPrefix prefixes the custom DOM events dispatched for map commands,
// e.g. "photomap-marker-attached".
const EventPrefix = "photomap-"

// MarkerListSelector is the element holding the marker side panel.
const MarkerListSelector = "#marker-list"

// Handler serves the map command stream.
type Handler struct {
	humastar.Handler
	svc    *photomap.Service
	popups templates.Popups
	bus    *service.EventBus
	log    *slog.Logger
}

// NewHandler creates a map stream handler reading commands from bus.
func NewHandler(svc *photomap.Service, bus *service.EventBus, renderer *templates.Renderer, log *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		popups: templates.Popups{R: renderer},
		bus:    bus,
		log:    logger.Or(log),
	}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/map/events", h.Events, huma.OperationTags(humastar.StreamTag))
	huma.Get(api, "/api/v1/map/markers", h.MarkerList, huma.OperationTags(humastar.StreamTag))
	huma.Post(api, "/api/v1/map/moved", h.Moved, huma.OperationTags(humastar.StreamTag))
}

// Events streams every map command as a custom DOM event. Popup content
// updates are also patched in place, and marker changes re-render the
// marker list.
func (h *Handler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Follow(ctx, h.bus, func(sse humastar.SSE) {
		h.patchMarkerList(ctx, sse)
	}, func(sse humastar.SSE, ev service.Event) bool {
		if ev.Resource == "host" {
			return true
		}
		sse.DispatchCustomEvent(EventPrefix+ev.Resource+"-"+ev.Action, map[string]any{
			"id":   ev.ID,
			"data": ev.Data,
		})

		switch ev.Resource {
		case browsermap.ResourcePopup:
			if p, ok := ev.Data.(browsermap.Popup); ok && ev.Action == "updated" {
				sse.Patch(p.HTML, popupSelector(p.Marker))
			}
			h.patchMarkerList(ctx, sse)
		case browsermap.ResourceMarker:
			h.patchMarkerList(ctx, sse)
		}
		return true
	}), nil
}

// MarkerList sends the current marker list once.
func (h *Handler) MarkerList(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.patchMarkerList(ctx, sse)
	}), nil
}

func (h *Handler) patchMarkerList(ctx context.Context, sse humastar.SSE) {
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		sse.Error("Map unavailable: " + err.Error())
		return
	}
	html, err := h.popups.MarkerList(snap.Markers)
	if err != nil {
		h.log.Error("render marker list", "error", err)
		sse.Error("Failed to render markers")
		return
	}
	sse.Patch(html, MarkerListSelector)
}

func popupSelector(marker int) string {
	return "#marker_" + service.IndexID(marker)
}

// Moved records the view the page reports after every pan or zoom. The
// signal names match photomap.View's JSON fields.
func (h *Handler) Moved(ctx context.Context, input *humastar.SignalsInput) (*struct{}, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	if !signals.Has("zoom") || !signals.Has("centreLat") || !signals.Has("centreLng") {
		return nil, huma.Error400BadRequest("centreLat, centreLng and zoom are required")
	}
	v := ViewFromSignals(signals)
	if err := h.svc.MapMoved(ctx, v); err != nil {
		return nil, huma.Error503ServiceUnavailable("map engine unavailable", err)
	}
	return &struct{}{}, nil
}

// ViewFromSignals reads a reported view.
func ViewFromSignals(s humastar.Signals) photomap.View {
	return photomap.View{
		CenterLat: s.Float("centreLat"),
		CenterLng: s.Float("centreLng"),
		Zoom:      s.Float("zoom"),
		North:     s.Float("north"),
		South:     s.Float("south"),
		West:      s.Float("west"),
		East:      s.Float("east"),
		Width:     s.Int("mapWidth"),
		Height:    s.Int("mapHeight"),
	}
}
