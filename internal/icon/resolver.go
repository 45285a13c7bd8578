// Package icon turns marker thumbnails into sized, framed map icons.
//
// Only the image header is decoded: the intrinsic size is all that is needed
// to scale the icon. Decoding runs off the caller's goroutine through a
// Scheduler; every in-flight decode is owned by the Resolver's pending table
// until the decode itself returns, so a completion the scheduler never runs
// cannot leak an entry.
package icon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
)

// ErrEmptyImage is returned for images that report a zero dimension.
var ErrEmptyImage = errors.New("icon: image has no pixels")

// Scheduler runs work off the caller's goroutine. The closure work returns
// is run back on the caller's goroutine once work finishes.
type Scheduler interface {
	Go(work func() (complete func()))
}

// LoadID identifies one in-flight decode.
type LoadID uint64

type pendingLoad struct {
	started time.Time
}

// Resolver decodes thumbnails into Icons.
type Resolver struct {
	sched Scheduler
	log   *slog.Logger

	mu      sync.Mutex
	next    LoadID
	pending map[LoadID]*pendingLoad
}

// NewResolver returns a Resolver that decodes on sched. A nil logger uses
// slog.Default().
func NewResolver(sched Scheduler, log *slog.Logger) *Resolver {
	return &Resolver{
		sched:   sched,
		log:     logger.Or(log),
		pending: make(map[LoadID]*pendingLoad),
	}
}

// Resolve decodes payload's header and calls done with the icon for a marker
// carrying ids images. done runs from the scheduler's completion, after the
// load has left the pending table; on failure it receives the error and a
// zero Icon.
func (r *Resolver) Resolve(payload []byte, ids int, done func(Icon, error)) LoadID {
	id := r.register()

	r.sched.Go(func() func() {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(payload))
		if err == nil && (cfg.Width <= 0 || cfg.Height <= 0) {
			err = ErrEmptyImage
		}
		load := r.release(id)

		return func() {
			if err != nil {
				metrics.IconDecodeFailuresTotal.Inc()
				r.log.Warn("marker icon decode failed", "load", id, "bytes", len(payload), "error", err)
				done(Icon{}, fmt.Errorf("decode icon: %w", err))
				return
			}
			if load != nil {
				r.log.Debug("marker icon resolved", "load", id, "format", format,
					"width", cfg.Width, "height", cfg.Height, "took", time.Since(load.started))
			}
			done(Build(payload, format, cfg.Width, cfg.Height, ids), nil)
		}
	})
	return id
}

// Pending reports the number of decodes in flight.
func (r *Resolver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Resolver) register() LoadID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.pending[r.next] = &pendingLoad{started: time.Now()}
	metrics.PendingIconLoads.Set(float64(len(r.pending)))
	return r.next
}

func (r *Resolver) release(id LoadID) *pendingLoad {
	r.mu.Lock()
	defer r.mu.Unlock()
	load := r.pending[id]
	delete(r.pending, id)
	metrics.PendingIconLoads.Set(float64(len(r.pending)))
	return load
}
