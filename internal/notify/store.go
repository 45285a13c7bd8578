package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
	"github.com/joeblew999/plat-photomap/internal/photomap"
)

// DefaultPlaceTimeout bounds one write of dragged positions.
const DefaultPlaceTimeout = 5 * time.Second

// Placer saves new positions for photos.
type Placer interface {
	Place(ctx context.Context, ids []int64, lat, lng float64) (int, error)
}

// Store writes dragged markers back to the photo store: the photos take the
// new position and become user placed. Other notifications are ignored.
type Store struct {
	placer  Placer
	timeout time.Duration
	log     *slog.Logger
}

// NewStore returns a notifier saving drags through p. A zero timeout uses
// DefaultPlaceTimeout.
func NewStore(p Placer, timeout time.Duration, log *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultPlaceTimeout
	}
	return &Store{placer: p, timeout: timeout, log: logger.Or(log)}
}

func (s *Store) MarkersDragged(ids []int64, lat, lng float64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.placer.Place(ctx, ids, lat, lng)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("store_error", KindDragged).Inc()
		s.log.Warn("save dragged photos", "ids", ids, "error", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("store", KindDragged).Inc()
	s.log.Debug("dragged photos saved", "ids", ids, "placed", n, "lat", lat, "lng", lng)
}

func (s *Store) MarkerHighlighted(int64) {}
func (s *Store) HighlightCleared()       {}
func (s *Store) MapMoved(photomap.View)  {}
