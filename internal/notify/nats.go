package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
	"github.com/joeblew999/plat-photomap/internal/photomap"
)

// DefaultSubjectPrefix prefixes every NATS subject.
const DefaultSubjectPrefix = "photomap"

// Publisher is the part of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes notifications as JSON on <prefix>.<kind> subjects.
type NATS struct {
	pub    Publisher
	prefix string
	log    *slog.Logger
}

// Connect dials url, retrying in the background until the server is up.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("photomap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// NewNATS returns a notifier publishing through pub. An empty prefix uses
// DefaultSubjectPrefix.
func NewNATS(pub Publisher, prefix string, log *slog.Logger) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{pub: pub, prefix: prefix, log: logger.Or(log)}
}

// Subject returns the subject a kind is published on.
func (n *NATS) Subject(kind string) string {
	return n.prefix + "." + kind
}

func (n *NATS) publish(kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.log.Error("encode notification", "kind", kind, "error", err)
		return
	}
	if err := n.pub.Publish(n.Subject(kind), data); err != nil {
		metrics.NotificationsTotal.WithLabelValues("nats_error", kind).Inc()
		n.log.Warn("publish notification", "subject", n.Subject(kind), "error", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("nats", kind).Inc()
}

func (n *NATS) MarkerHighlighted(id int64) {
	n.publish(KindHighlighted, Highlight{ImageID: id})
}

func (n *NATS) HighlightCleared() {
	n.publish(KindHighlightCleared, Cleared{})
}

func (n *NATS) MarkersDragged(ids []int64, lat, lng float64) {
	n.publish(KindDragged, Dragged{ImageIDs: ids, Latitude: lat, Longitude: lng})
}

func (n *NATS) MapMoved(v photomap.View) {
	n.publish(KindMoved, v)
}
