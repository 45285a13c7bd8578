package photomap

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-photomap/internal/geo"
)

// Map is the map widget the engine draws on. Calls arrive on the engine's
// goroutine.
type Map interface {
	geo.Projector

	AttachMarker(m MarkerView)
	DetachMarker(index int)
	AttachArrow(index int, a geo.ArrowOverlay)
	DetachArrow(index int)

	// OpenPopup binds html to the marker and opens it, closing any other popup.
	OpenPopup(marker int, html string)
	// UpdatePopup replaces the inner content of a paging popup in place.
	UpdatePopup(marker int, html string)

	SetView(center orb.Point, zoom float64)
	PanTo(center orb.Point)
	FitBounds(b orb.Bound)

	// Moved records the view the browser reports; later projections use it.
	Moved(v View)
}

// MetadataSource loads popup data for a photo.
type MetadataSource interface {
	ImageMetadata(ctx context.Context, id int64) (Metadata, error)
}

// Notifier receives fire-and-forget notifications for the host application.
type Notifier interface {
	MarkerHighlighted(id int64)
	HighlightCleared()
	MarkersDragged(ids []int64, lat, lng float64)
	MapMoved(v View)
}

// Renderer assembles popup HTML.
type Renderer interface {
	// Popup renders a whole popup. Paging popups wrap their content in an
	// element the matching PopupContent can later replace.
	Popup(v PopupView) (string, error)
	PopupContent(v PopupView) (string, error)
}

// Scheduler runs work off the engine goroutine; the closure work returns is
// run back on it.
type Scheduler interface {
	Go(work func() (complete func()))
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) MarkerHighlighted(int64)                  {}
func (NopNotifier) HighlightCleared()                        {}
func (NopNotifier) MarkersDragged([]int64, float64, float64) {}
func (NopNotifier) MapMoved(View)                            {}
