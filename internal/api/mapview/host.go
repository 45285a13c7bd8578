package mapview

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/joeblew999/plat-photomap/internal/humastar"
	"github.com/joeblew999/plat-photomap/internal/notify"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// HostEvents streams notifications meant for the host application. Unlike
// the map stream these are plain typed SSE messages, not Datastar patches.
type HostEvents struct {
	bus *service.EventBus
}

// NewHostEvents creates a host event stream over bus.
func NewHostEvents(bus *service.EventBus) *HostEvents {
	return &HostEvents{bus: bus}
}

func (h *HostEvents) RegisterRoutes(api huma.API) {
	sse.Register(api, huma.Operation{
		OperationID: "host-events",
		Method:      http.MethodGet,
		Path:        "/api/v1/host/events",
		Summary:     "Host notifications",
		Tags:        []string{humastar.StreamTag},
	}, map[string]any{
		notify.KindHighlighted:      notify.Highlight{},
		notify.KindHighlightCleared: notify.Cleared{},
		notify.KindDragged:          notify.Dragged{},
		notify.KindMoved:            photomap.View{},
	}, h.stream)
}

func (h *HostEvents) stream(ctx context.Context, input *struct{}, send sse.Sender) {
	ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Resource != "host" || ev.Data == nil {
				continue
			}
			if err := send.Data(ev.Data); err != nil {
				return
			}
		}
	}
}
