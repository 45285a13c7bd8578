package photomap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-photomap/internal/geo"
)

// manualScheduler queues work; tests choose when and in which order each
// piece finishes.
type manualScheduler struct {
	queued []func() func()
	done   []bool
}

func (s *manualScheduler) Go(work func() func()) {
	s.queued = append(s.queued, work)
	s.done = append(s.done, false)
}

func (s *manualScheduler) finish(i int) {
	if s.done[i] {
		panic(fmt.Sprintf("work %d finished twice", i))
	}
	s.done[i] = true
	if c := s.queued[i](); c != nil {
		c()
	}
}

// drain finishes everything queued so far, and anything queued meanwhile.
func (s *manualScheduler) drain() {
	for i := 0; i < len(s.queued); i++ {
		if !s.done[i] {
			s.finish(i)
		}
	}
}

func (s *manualScheduler) last() int { return len(s.queued) - 1 }

type popupCall struct {
	marker int
	html   string
}

type fakeMap struct {
	attached map[int]MarkerView
	arrows   map[int]geo.ArrowOverlay
	attaches int
	opened   []popupCall
	updated  []popupCall
	views    []View
	fitted   []orb.Bound
	centre   orb.Point
	zoom     float64
}

func newFakeMap() *fakeMap {
	return &fakeMap{attached: map[int]MarkerView{}, arrows: map[int]geo.ArrowOverlay{}}
}

func (f *fakeMap) ProjectToPixel(p orb.Point) orb.Point { return orb.Point{p[0] * 100, -p[1] * 100} }
func (f *fakeMap) Unproject(px orb.Point) orb.Point     { return orb.Point{px[0] / 100, -px[1] / 100} }

func (f *fakeMap) AttachMarker(m MarkerView) {
	if _, dup := f.attached[m.Index]; dup {
		panic(fmt.Sprintf("marker %d attached twice", m.Index))
	}
	f.attached[m.Index] = m
	f.attaches++
}

func (f *fakeMap) DetachMarker(i int)                    { delete(f.attached, i) }
func (f *fakeMap) AttachArrow(i int, a geo.ArrowOverlay) { f.arrows[i] = a }
func (f *fakeMap) DetachArrow(i int)                     { delete(f.arrows, i) }
func (f *fakeMap) OpenPopup(m int, html string)          { f.opened = append(f.opened, popupCall{m, html}) }
func (f *fakeMap) UpdatePopup(m int, html string)        { f.updated = append(f.updated, popupCall{m, html}) }
func (f *fakeMap) SetView(c orb.Point, zoom float64)     { f.centre, f.zoom = c, zoom }
func (f *fakeMap) PanTo(c orb.Point)                     { f.centre = c }
func (f *fakeMap) FitBounds(b orb.Bound)                 { f.fitted = append(f.fitted, b) }
func (f *fakeMap) Moved(v View)                          { f.views = append(f.views, v) }

type fakeMeta struct {
	mu    sync.Mutex
	calls []int64
	fail  map[int64]bool
}

func (f *fakeMeta) ImageMetadata(_ context.Context, id int64) (Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.fail[id] {
		return Metadata{}, errors.New("photo store unavailable")
	}
	return Metadata{ID: id, Filename: fmt.Sprintf("IMG_%04d.JPG", id)}, nil
}

func (f *fakeMeta) fetched() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calls...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(s string) {
	n.mu.Lock()
	n.events = append(n.events, s)
	n.mu.Unlock()
}

func (n *recordingNotifier) MarkerHighlighted(id int64) { n.add(fmt.Sprintf("highlight %d", id)) }
func (n *recordingNotifier) HighlightCleared()          { n.add("clear") }
func (n *recordingNotifier) MarkersDragged(ids []int64, lat, lng float64) {
	n.add(fmt.Sprintf("dragged %v %.2f %.2f", ids, lat, lng))
}
func (n *recordingNotifier) MapMoved(v View) { n.add(fmt.Sprintf("moved %.0f", v.Zoom)) }

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// textRenderer renders popups as short strings tests can compare.
type textRenderer struct{}

func (textRenderer) Popup(v PopupView) (string, error) {
	if v.Paging {
		return fmt.Sprintf("marker_%d[%s]", v.Marker, content(v)), nil
	}
	return v.Meta.Filename, nil
}

func (textRenderer) PopupContent(v PopupView) (string, error) { return content(v), nil }

func content(v PopupView) string {
	return fmt.Sprintf("%s %d of %d prev=%t next=%t", v.Meta.Filename, v.Index+1, v.Count, v.HasPrev, v.HasNext)
}

type harness struct {
	engine *Engine
	sched  *manualScheduler
	m      *fakeMap
	meta   *fakeMeta
	notify *recordingNotifier
}

func newHarness() *harness {
	h := &harness{
		sched:  &manualScheduler{},
		m:      newFakeMap(),
		meta:   &fakeMeta{fail: map[int64]bool{}},
		notify: &recordingNotifier{},
	}
	h.engine = NewEngine(Options{
		Map:       h.m,
		Metadata:  h.meta,
		Notifier:  h.notify,
		Renderer:  textRenderer{},
		Scheduler: h.sched,
	})
	return h
}

var thumbOnce struct {
	sync.Once
	data []byte
}

// thumb is a 400x200 PNG.
func thumb(t *testing.T) []byte {
	t.Helper()
	thumbOnce.Do(func() {
		var buf bytes.Buffer
		img := imaging.New(400, 200, color.NRGBA{R: 90, G: 160, B: 60, A: 255})
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			panic(err)
		}
		thumbOnce.data = buf.Bytes()
	})
	return thumbOnce.data
}

func fp(v float64) *float64 { return &v }

func snapshot(t *testing.T, lat, lng float64, ids ...int64) MarkerSnapshot {
	return MarkerSnapshot{ImageIDs: ids, Lat: fp(lat), Lng: fp(lng), Thumbnail: thumb(t)}
}
