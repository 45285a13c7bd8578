package photomap

import (
	"context"

	"github.com/joeblew999/plat-photomap/internal/geo"
)

// Service exposes an Engine to other goroutines by running every call on
// its Loop.
type Service struct {
	loop   *Loop
	engine *Engine
}

// NewService wraps engine, which must only be driven through loop.
func NewService(loop *Loop, engine *Engine) *Service {
	return &Service{loop: loop, engine: engine}
}

// do runs f on the loop and returns f's error, or the loop's if f never ran.
func (s *Service) do(ctx context.Context, f func(e *Engine) error) error {
	var opErr error
	if err := s.loop.Do(ctx, func() { opErr = f(s.engine) }); err != nil {
		return err
	}
	return opErr
}

func (s *Service) ReplaceAll(ctx context.Context, markers []MarkerSnapshot, arrows []ArrowSnapshot) (int, error) {
	var n int
	err := s.do(ctx, func(e *Engine) error {
		n = e.ReplaceAll(markers, arrows)
		return nil
	})
	return n, err
}

func (s *Service) Clear(ctx context.Context) error {
	return s.do(ctx, func(e *Engine) error { e.Clear(); return nil })
}

func (s *Service) SetView(ctx context.Context, lat, lng, zoom float64) error {
	return s.do(ctx, func(e *Engine) error { e.SetView(lat, lng, zoom); return nil })
}

func (s *Service) PanTo(ctx context.Context, lat, lng float64) error {
	return s.do(ctx, func(e *Engine) error { e.PanTo(lat, lng); return nil })
}

// ZoomToAll reports false when there are no markers to fit.
func (s *Service) ZoomToAll(ctx context.Context) (bool, error) {
	var ok bool
	err := s.do(ctx, func(e *Engine) error { ok = e.ZoomToAll(); return nil })
	return ok, err
}

// FitRect fits the view to r, e.g. the photos taken in a date range. It
// reports false when r is empty.
func (s *Service) FitRect(ctx context.Context, r geo.Rect) (bool, error) {
	var ok bool
	err := s.do(ctx, func(e *Engine) error { ok = e.FitRect(r); return nil })
	return ok, err
}

func (s *Service) Click(ctx context.Context, index int) error {
	return s.do(ctx, func(e *Engine) error { return e.Click(index) })
}

func (s *Service) Next(ctx context.Context, index int) error {
	return s.do(ctx, func(e *Engine) error { return e.Next(index) })
}

func (s *Service) Prev(ctx context.Context, index int) error {
	return s.do(ctx, func(e *Engine) error { return e.Prev(index) })
}

func (s *Service) PopupClosed(ctx context.Context, index int) error {
	return s.do(ctx, func(e *Engine) error { e.PopupClosed(index); return nil })
}

func (s *Service) DragEnd(ctx context.Context, index int, lat, lng float64) error {
	return s.do(ctx, func(e *Engine) error { return e.DragEnd(index, lat, lng) })
}

func (s *Service) MapMoved(ctx context.Context, v View) error {
	return s.do(ctx, func(e *Engine) error { e.MapMoved(v); return nil })
}

// Snapshot is the engine state read in one loop turn.
type Snapshot struct {
	Generation uint64        `json:"generation"`
	Markers    []MarkerState `json:"markers"`
	Arrows     int           `json:"arrows"`
	Pending    int           `json:"pending" doc:"Marker icons still decoding"`
	OpenPopup  *int          `json:"openPopup,omitempty"`
	Bounds     *Bounds       `json:"bounds,omitempty"`
}

// Bounds is a GeoRect in wire form.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// BoundsOf converts a valid rect; it returns nil for an empty one.
func BoundsOf(r geo.Rect) *Bounds {
	if !r.Valid() {
		return nil
	}
	return &Bounds{MinLat: r.MinLat(), MaxLat: r.MaxLat(), MinLng: r.MinLng(), MaxLng: r.MaxLng()}
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func(e *Engine) error {
		snap = Snapshot{
			Generation: e.Generation(),
			Markers:    e.Markers(),
			Arrows:     len(e.overlays),
			Pending:    e.PendingIcons(),
			Bounds:     BoundsOf(e.Bounds()),
		}
		if i, ok := e.OpenPopup(); ok {
			snap.OpenPopup = &i
		}
		return nil
	})
	return snap, err
}

// CanPage reports whether prev and next are enabled for a marker.
func (s *Service) CanPage(ctx context.Context, index int) (prev, next bool, err error) {
	err = s.do(ctx, func(e *Engine) error {
		if _, err := e.marker(index); err != nil {
			return err
		}
		prev, next = e.CanPage(index)
		return nil
	})
	return prev, next, err
}
