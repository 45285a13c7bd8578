package api

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/bridge"
	"github.com/joeblew999/plat-photomap/internal/humastar"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// markerActions are offered per marker; paging only while its popup is open
// and a neighbouring photo exists.
var markerActions = []humastar.ActionDef[photomap.MarkerState]{
	{Rel: "click", Pattern: "/api/v1/markers/%s/click", Method: "POST", Title: "Open popup"},
	{Rel: "prev", Pattern: "/api/v1/markers/%s/prev", Method: "POST", Title: "Previous photo",
		Enabled: func(m photomap.MarkerState) bool { return m.Popup.Open && m.Cluster() && m.Current > 0 }},
	{Rel: "next", Pattern: "/api/v1/markers/%s/next", Method: "POST", Title: "Next photo",
		Enabled: func(m photomap.MarkerState) bool { return m.Popup.Open && m.Cluster() && m.Current < len(m.ImageIDs)-1 }},
	{Rel: "drag", Pattern: "/api/v1/markers/%s/drag", Method: "POST", Title: "Move marker",
		Enabled: func(m photomap.MarkerState) bool { return m.Draggable }},
}

// MarkersBody is the plotted marker state.
type MarkersBody struct {
	photomap.Snapshot
}

// Actions implements humastar.Actor.
func (b MarkersBody) Actions() []humastar.Action {
	var actions []humastar.Action
	for _, m := range b.Markers {
		actions = append(actions, humastar.ActionsFor(service.IndexID(m.Index), m, markerActions)...)
	}
	if b.OpenPopup != nil {
		actions = append(actions, humastar.Action{
			Rel:    "close",
			Href:   "/api/v1/markers/" + service.IndexID(*b.OpenPopup) + "/close",
			Method: "POST",
			Title:  "Close popup",
		})
	}
	if len(b.Markers) > 0 {
		actions = append(actions, humastar.Action{Rel: "fit", Href: "/api/v1/view/fit", Method: "POST", Title: "Zoom to all markers"})
	}
	return actions
}

type MarkersOutput struct {
	Body MarkersBody
}

type PutMarkersInput struct {
	Body struct {
		Markers []photomap.MarkerSnapshot `json:"markers" doc:"Markers to plot; those without a position are skipped"`
		Arrows  []photomap.ArrowSnapshot  `json:"arrows,omitempty" doc:"Trail segments between markers"`
	}
}

type AcceptedBody struct {
	Accepted int `json:"accepted" doc:"Markers accepted for plotting"`
}

type DragInput struct {
	IndexInput
	Body struct {
		Lat float64 `json:"lat" minimum:"-90" maximum:"90" doc:"New latitude"`
		Lng float64 `json:"lng" minimum:"-180" maximum:"180" doc:"New longitude"`
	}
}

func (h *APIHandler) GetMarkers(ctx context.Context, input *struct{}) (*MarkersOutput, error) {
	snap, err := h.svc.Map.Snapshot(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	if snap.Markers == nil {
		snap.Markers = []photomap.MarkerState{}
	}
	return &MarkersOutput{Body: MarkersBody{snap}}, nil
}

func (h *APIHandler) PutMarkers(ctx context.Context, input *PutMarkersInput) (*struct{ Body AcceptedBody }, error) {
	n, err := h.svc.Map.ReplaceAll(ctx, input.Body.Markers, input.Body.Arrows)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body AcceptedBody }{Body: AcceptedBody{Accepted: n}}, nil
}

func (h *APIHandler) ClearMarkers(ctx context.Context, input *struct{}) (*MessageOutput, error) {
	if err := h.svc.Map.Clear(ctx); err != nil {
		return nil, httpError(err)
	}
	return message("Map cleared"), nil
}

func (h *APIHandler) ClickMarker(ctx context.Context, input *IndexInput) (*MessageOutput, error) {
	if err := h.svc.Map.Click(ctx, input.Index); err != nil {
		return nil, httpError(err)
	}
	return message("Popup requested"), nil
}

func (h *APIHandler) NextPhoto(ctx context.Context, input *IndexInput) (*MessageOutput, error) {
	if err := h.svc.Map.Next(ctx, input.Index); err != nil {
		return nil, httpError(err)
	}
	return message("Next photo requested"), nil
}

func (h *APIHandler) PrevPhoto(ctx context.Context, input *IndexInput) (*MessageOutput, error) {
	if err := h.svc.Map.Prev(ctx, input.Index); err != nil {
		return nil, httpError(err)
	}
	return message("Previous photo requested"), nil
}

func (h *APIHandler) DragMarker(ctx context.Context, input *DragInput) (*MessageOutput, error) {
	if err := h.svc.Map.DragEnd(ctx, input.Index, input.Body.Lat, input.Body.Lng); err != nil {
		return nil, httpError(err)
	}
	return message("Marker moved"), nil
}

// ClosePopup reports the browser closing a marker's popup. Closes for a
// popup another marker already replaced are ignored.
func (h *APIHandler) ClosePopup(ctx context.Context, input *IndexInput) (*MessageOutput, error) {
	if err := h.svc.Map.PopupClosed(ctx, input.Index); err != nil {
		return nil, httpError(err)
	}
	return message("Popup closed"), nil
}

// View

type SetViewInput struct {
	Body struct {
		Lat  float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Centre latitude" example:"51.505"`
		Lng  float64 `json:"lng" minimum:"-180" maximum:"180" doc:"Centre longitude" example:"-0.09"`
		Zoom float64 `json:"zoom" minimum:"0" maximum:"22" doc:"Zoom level" example:"13"`
	}
}

type PanInput struct {
	Body struct {
		Lat float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Centre latitude"`
		Lng float64 `json:"lng" minimum:"-180" maximum:"180" doc:"Centre longitude"`
	}
}

type FitInput struct {
	From time.Time `query:"from" doc:"Fit the located photos taken from this date (RFC 3339) instead of the markers"`
	To   time.Time `query:"to" doc:"End of the taken date range"`
}

type FitBody struct {
	Fitted bool `json:"fitted" doc:"False when there were no markers to fit"`
}

func (h *APIHandler) SetView(ctx context.Context, input *SetViewInput) (*MessageOutput, error) {
	if err := h.svc.Map.SetView(ctx, input.Body.Lat, input.Body.Lng, input.Body.Zoom); err != nil {
		return nil, httpError(err)
	}
	return message("View set"), nil
}

func (h *APIHandler) PanView(ctx context.Context, input *PanInput) (*MessageOutput, error) {
	if err := h.svc.Map.PanTo(ctx, input.Body.Lat, input.Body.Lng); err != nil {
		return nil, httpError(err)
	}
	return message("View panned"), nil
}

// FitView zooms to every marker, or with a date range to every located
// photo taken in it.
func (h *APIHandler) FitView(ctx context.Context, input *FitInput) (*struct{ Body FitBody }, error) {
	if input.From.IsZero() != input.To.IsZero() {
		return nil, huma.Error400BadRequest("from and to go together")
	}
	if input.From.IsZero() {
		ok, err := h.svc.Map.ZoomToAll(ctx)
		if err != nil {
			return nil, httpError(err)
		}
		return &struct{ Body FitBody }{Body: FitBody{Fitted: ok}}, nil
	}

	photos, err := h.photos()
	if err != nil {
		return nil, err
	}
	if input.To.Before(input.From) {
		return nil, huma.Error400BadRequest("to is before from")
	}
	r, err := photos.Bounds(ctx, input.From, input.To)
	if err != nil {
		return nil, httpError(err)
	}
	if !r.Valid() {
		return nil, huma.Error404NotFound("no located photos taken in the date range")
	}
	ok, err := h.svc.Map.FitRect(ctx, r)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body FitBody }{Body: FitBody{Fitted: ok}}, nil
}

// Bridge

type BridgeInput struct {
	Fn      string `path:"fn" doc:"Function name" example:"setMapMarkers"`
	RawBody []byte `contentType:"application/json"`
}

func (h *APIHandler) CallBridge(ctx context.Context, input *BridgeInput) (*struct{ Body bridge.Result }, error) {
	if h.svc.Bridge == nil {
		return nil, huma.Error503ServiceUnavailable("bridge not available")
	}
	res, err := h.svc.Bridge.Call(ctx, input.Fn, input.RawBody)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body bridge.Result }{Body: res}, nil
}
