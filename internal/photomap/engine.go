package photomap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-photomap/internal/geo"
	"github.com/joeblew999/plat-photomap/internal/icon"
	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
)

var (
	ErrNoSuchMarker   = errors.New("no such marker")
	ErrPopupNotOpen   = errors.New("popup not open")
	ErrPagingDisabled = errors.New("paging disabled")
	ErrNotDraggable   = errors.New("marker not draggable")
)

// DefaultFetchTimeout bounds a single metadata request.
const DefaultFetchTimeout = 10 * time.Second

// ZoomToAllPadding is the fraction of the marker span added on each side
// when fitting the view to every marker.
const ZoomToAllPadding = 0.025

// Options configures an Engine. Map, Metadata, Renderer and Scheduler are
// required.
type Options struct {
	Map          Map
	Metadata     MetadataSource
	Notifier     Notifier
	Renderer     Renderer
	Scheduler    Scheduler
	Logger       *slog.Logger
	FetchTimeout time.Duration
}

// Engine is the marker registry and popup state machine.
type Engine struct {
	m        Map
	meta     MetadataSource
	notify   Notifier
	render   Renderer
	sched    Scheduler
	resolver *icon.Resolver
	log      *slog.Logger
	timeout  time.Duration

	generation uint64
	markers    []*marker
	arrows     []ArrowSnapshot
	overlays   []geo.ArrowOverlay
	open       int // marker with an open popup, or -1
	zoom       float64
}

// NewEngine returns an empty engine.
func NewEngine(o Options) *Engine {
	if o.Notifier == nil {
		o.Notifier = NopNotifier{}
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	log := logger.Or(o.Logger).With("component", "photomap")
	return &Engine{
		m:        o.Map,
		meta:     o.Metadata,
		notify:   o.Notifier,
		render:   o.Renderer,
		sched:    o.Scheduler,
		resolver: icon.NewResolver(o.Scheduler, log),
		log:      log,
		timeout:  o.FetchTimeout,
		open:     -1,
	}
}

// Generation returns the registry generation, bumped by every replace and
// clear.
func (e *Engine) Generation() uint64 { return e.generation }

// PendingIcons reports thumbnails still being decoded.
func (e *Engine) PendingIcons() int { return e.resolver.Pending() }

// SetView centres the map on (lat, lng) at zoom.
func (e *Engine) SetView(lat, lng, zoom float64) {
	e.m.SetView(orb.Point{lng, lat}, zoom)
}

// PanTo moves the map centre to (lat, lng) keeping the zoom.
func (e *Engine) PanTo(lat, lng float64) {
	e.m.PanTo(orb.Point{lng, lat})
}

// MapMoved records a view reported by the browser and forwards it to the
// host. Arrowheads are rebuilt when the zoom changes since their size is
// fixed in pixels.
func (e *Engine) MapMoved(v View) {
	e.m.Moved(v)
	if v.Zoom != e.zoom {
		e.zoom = v.Zoom
		e.rebuildArrows()
	}
	e.notify.MapMoved(v)
}

// DragEnd moves a draggable marker and tells the host which photos moved.
func (e *Engine) DragEnd(index int, lat, lng float64) error {
	m, err := e.marker(index)
	if err != nil {
		return err
	}
	if !m.draggable {
		return fmt.Errorf("marker %d: %w", index, ErrNotDraggable)
	}
	m.lat, m.lng = lat, lng
	ids := append([]int64(nil), m.ids...)
	e.log.Debug("markers dragged", "marker", index, "ids", ids, "lat", lat, "lng", lng)
	e.notify.MarkersDragged(ids, lat, lng)
	return nil
}

func (e *Engine) marker(index int) (*marker, error) {
	if index < 0 || index >= len(e.markers) {
		return nil, fmt.Errorf("marker %d: %w", index, ErrNoSuchMarker)
	}
	return e.markers[index], nil
}

// fetch loads metadata for id off the loop and hands it to apply on the loop.
// Failures are logged and dropped.
func (e *Engine) fetch(tok Token, id int64, apply func(Token, Metadata)) {
	metrics.MetadataFetchesTotal.Inc()
	timeout := e.timeout
	e.sched.Go(func() func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		md, err := e.meta.ImageMetadata(ctx, id)
		metrics.MetadataDurationMs.Observe(float64(time.Since(start).Milliseconds()))

		return func() {
			if err != nil {
				metrics.MetadataFailuresTotal.Inc()
				e.log.Warn("image metadata fetch failed", "image", id, "marker", tok.Marker, "error", err)
				return
			}
			apply(tok, md)
		}
	})
}

// live returns the marker a token refers to, or false if the registry has
// been replaced or cleared since the token was issued.
func (e *Engine) live(tok Token, kind string) (*marker, bool) {
	if tok.Generation != e.generation || tok.Marker < 0 || tok.Marker >= len(e.markers) {
		metrics.StaleCompletionsTotal.WithLabelValues(kind).Inc()
		e.log.Debug("stale completion ignored", "kind", kind, "marker", tok.Marker,
			"generation", tok.Generation, "current", e.generation)
		return nil, false
	}
	return e.markers[tok.Marker], true
}
