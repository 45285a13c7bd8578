// Package notify delivers engine notifications to the host application:
// onto the in-process event bus for the host SSE stream, and over NATS.
package notify

import (
	"log/slog"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// Notification kinds, used as bus actions and NATS subject suffixes.
const (
	KindHighlighted      = "highlight"
	KindHighlightCleared = "highlight.cleared"
	KindDragged          = "dragged"
	KindMoved            = "moved"
)

// Highlight is the payload of a highlight notification.
type Highlight struct {
	ImageID int64 `json:"image_id"`
}

// Cleared is the payload of a highlight-cleared notification.
type Cleared struct{}

// Dragged is the payload of a drag notification.
type Dragged struct {
	ImageIDs  []int64 `json:"image_id_list"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bus publishes notifications as "host" events.
type Bus struct {
	bus *service.EventBus
}

// NewBus returns a notifier publishing to bus.
func NewBus(bus *service.EventBus) *Bus {
	return &Bus{bus: bus}
}

func (b *Bus) publish(kind, id string, data any) {
	b.bus.Publish(service.Event{Resource: "host", Action: kind, ID: id, Data: data})
	metrics.NotificationsTotal.WithLabelValues("bus", kind).Inc()
}

func (b *Bus) MarkerHighlighted(id int64) {
	b.publish(KindHighlighted, service.IndexID(id), Highlight{ImageID: id})
}

func (b *Bus) HighlightCleared() {
	b.publish(KindHighlightCleared, "", Cleared{})
}

func (b *Bus) MarkersDragged(ids []int64, lat, lng float64) {
	b.publish(KindDragged, "", Dragged{ImageIDs: ids, Latitude: lat, Longitude: lng})
}

func (b *Bus) MapMoved(v photomap.View) {
	b.publish(KindMoved, "", v)
}

// Multi fans notifications out to several notifiers.
type Multi []photomap.Notifier

func (m Multi) MarkerHighlighted(id int64) {
	for _, n := range m {
		n.MarkerHighlighted(id)
	}
}

func (m Multi) HighlightCleared() {
	for _, n := range m {
		n.HighlightCleared()
	}
}

func (m Multi) MarkersDragged(ids []int64, lat, lng float64) {
	for _, n := range m {
		n.MarkersDragged(ids, lat, lng)
	}
}

func (m Multi) MapMoved(v photomap.View) {
	for _, n := range m {
		n.MapMoved(v)
	}
}

// Logging writes every notification to a logger at debug level.
type Logging struct {
	Log *slog.Logger
}

func (l Logging) log() *slog.Logger { return logger.Or(l.Log) }

func (l Logging) MarkerHighlighted(id int64) {
	l.log().Debug("host notified", "kind", KindHighlighted, "image", id)
}

func (l Logging) HighlightCleared() {
	l.log().Debug("host notified", "kind", KindHighlightCleared)
}

func (l Logging) MarkersDragged(ids []int64, lat, lng float64) {
	l.log().Debug("host notified", "kind", KindDragged, "ids", ids, "lat", lat, "lng", lng)
}

func (l Logging) MapMoved(v photomap.View) {
	l.log().Debug("host notified", "kind", KindMoved, "zoom", v.Zoom)
}
