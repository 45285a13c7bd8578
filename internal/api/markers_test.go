package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/bridge"
	"github.com/joeblew999/plat-photomap/internal/humastar"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

func rels(actions []humastar.Action) map[string]bool {
	out := map[string]bool{}
	for _, a := range actions {
		out[a.Href+" "+a.Rel] = true
	}
	return out
}

func TestMarkersBodyActions(t *testing.T) {
	open := 1
	body := MarkersBody{photomap.Snapshot{
		Markers: []photomap.MarkerState{
			{MarkerView: photomap.MarkerView{Index: 0, ImageIDs: []int64{1}, Draggable: true}},
			{
				MarkerView: photomap.MarkerView{Index: 1, ImageIDs: []int64{2, 3, 4}},
				Current:    1,
				Popup:      photomap.PopupState{Open: true, Index: 1},
			},
		},
		OpenPopup: &open,
	}}

	got := rels(body.Actions())
	want := []string{
		"/api/v1/markers/0/click click",
		"/api/v1/markers/0/drag drag",
		"/api/v1/markers/1/click click",
		"/api/v1/markers/1/prev prev",
		"/api/v1/markers/1/next next",
		"/api/v1/markers/1/close close",
		"/api/v1/view/fit fit",
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing action %q", w)
		}
	}
	if got["/api/v1/markers/1/drag drag"] || got["/api/v1/markers/0/next next"] {
		t.Errorf("unexpected actions: %v", got)
	}
	if len(got) != len(want) {
		t.Errorf("got %d actions, want %d", len(got), len(want))
	}
}

func TestMarkersBodyActions_Empty(t *testing.T) {
	if a := (MarkersBody{}).Actions(); len(a) != 0 {
		t.Errorf("empty map actions = %v", a)
	}
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("marker 3: %w", photomap.ErrNoSuchMarker), http.StatusNotFound},
		{fmt.Errorf("photo 1: %w", service.ErrPhotoNotFound), http.StatusNotFound},
		{bridge.ErrUnknownFunction, http.StatusNotFound},
		{photomap.ErrPopupNotOpen, http.StatusConflict},
		{photomap.ErrPagingDisabled, http.StatusConflict},
		{photomap.ErrNotDraggable, http.StatusConflict},
		{fmt.Errorf("lat: %w", bridge.ErrBadParams), http.StatusUnprocessableEntity},
		{photomap.ErrLoopStopped, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var se huma.StatusError
		if !errors.As(httpError(tt.err), &se) {
			t.Fatalf("%v: not a status error", tt.err)
		}
		if se.GetStatus() != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, se.GetStatus(), tt.want)
		}
	}
}
