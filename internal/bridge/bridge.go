// Package bridge dispatches the host application's map function calls
// (setMapMarkers, clearMap, setMapPosition, panMapTo, zoomToAll) onto the
// engine. Parameters arrive as JSON, either as an object of named fields or
// as a positional array.
package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
	"github.com/joeblew999/plat-photomap/internal/photomap"
)

var (
	ErrUnknownFunction = errors.New("unknown bridge function")
	ErrBadParams       = errors.New("invalid bridge parameters")
)

// Engine is the part of photomap.Service the bridge drives.
type Engine interface {
	ReplaceAll(ctx context.Context, markers []photomap.MarkerSnapshot, arrows []photomap.ArrowSnapshot) (int, error)
	Clear(ctx context.Context) error
	SetView(ctx context.Context, lat, lng, zoom float64) error
	PanTo(ctx context.Context, lat, lng float64) error
	ZoomToAll(ctx context.Context) (bool, error)
}

// Result is returned to the host for every successful call.
type Result struct {
	Function string `json:"function"`
	Markers  *int   `json:"markers,omitempty" doc:"Markers accepted by setMapMarkers"`
	Fitted   *bool  `json:"fitted,omitempty" doc:"Whether zoomToAll had markers to fit"`
}

type handler func(ctx context.Context, params gjson.Result) (Result, error)

// Dispatcher routes calls by function name.
type Dispatcher struct {
	engine Engine
	log    *slog.Logger
	fns    map[string]handler
}

// New returns a dispatcher driving engine.
func New(engine Engine, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{engine: engine, log: logger.Or(log)}
	d.fns = map[string]handler{
		"setMapMarkers":  d.setMapMarkers,
		"clearMap":       d.clearMap,
		"setMapPosition": d.setMapPosition,
		"panMapTo":       d.panMapTo,
		"zoomToAll":      d.zoomToAll,
	}
	return d
}

// Functions lists the callable function names.
func (d *Dispatcher) Functions() []string {
	names := make([]string, 0, len(d.fns))
	for n := range d.fns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call runs fn with the JSON params. Empty params are treated as {}.
func (d *Dispatcher) Call(ctx context.Context, fn string, params []byte) (Result, error) {
	h, ok := d.fns[fn]
	if !ok {
		metrics.BridgeCallsTotal.WithLabelValues("unknown", "error").Inc()
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFunction, fn)
	}
	if len(strings.TrimSpace(string(params))) == 0 {
		params = []byte("{}")
	}
	if !gjson.ValidBytes(params) {
		metrics.BridgeCallsTotal.WithLabelValues(fn, "error").Inc()
		return Result{}, fmt.Errorf("%w: malformed JSON", ErrBadParams)
	}

	res, err := h(ctx, gjson.ParseBytes(params))
	if err != nil {
		metrics.BridgeCallsTotal.WithLabelValues(fn, "error").Inc()
		d.log.Warn("bridge call failed", "fn", fn, "error", err)
		return Result{}, err
	}
	metrics.BridgeCallsTotal.WithLabelValues(fn, "ok").Inc()
	d.log.Debug("bridge call", "fn", fn)
	res.Function = fn
	return res, nil
}

// arg returns a named field, or the pos'th element when params is an array.
func arg(params gjson.Result, name string, pos int) gjson.Result {
	if params.IsArray() {
		return params.Get(strconv.Itoa(pos))
	}
	return params.Get(name)
}

func number(params gjson.Result, name string, pos int) (float64, error) {
	v := arg(params, name, pos)
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadParams, name)
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrBadParams, name)
	}
	return f, nil
}

func (d *Dispatcher) setMapMarkers(ctx context.Context, params gjson.Result) (Result, error) {
	markers, err := ParseMarkers(arg(params, "markers", 0))
	if err != nil {
		return Result{}, err
	}
	arrows, err := ParseArrows(arg(params, "arrows", 1))
	if err != nil {
		return Result{}, err
	}
	n, err := d.engine.ReplaceAll(ctx, markers, arrows)
	if err != nil {
		return Result{}, err
	}
	return Result{Markers: &n}, nil
}

func (d *Dispatcher) clearMap(ctx context.Context, _ gjson.Result) (Result, error) {
	return Result{}, d.engine.Clear(ctx)
}

func (d *Dispatcher) setMapPosition(ctx context.Context, params gjson.Result) (Result, error) {
	lat, err := number(params, "lat", 0)
	if err != nil {
		return Result{}, err
	}
	lng, err := number(params, "lng", 1)
	if err != nil {
		return Result{}, err
	}
	zoom, err := number(params, "zoom", 2)
	if err != nil {
		return Result{}, err
	}
	return Result{}, d.engine.SetView(ctx, lat, lng, zoom)
}

func (d *Dispatcher) panMapTo(ctx context.Context, params gjson.Result) (Result, error) {
	lat, err := number(params, "lat", 0)
	if err != nil {
		return Result{}, err
	}
	lng, err := number(params, "lng", 1)
	if err != nil {
		return Result{}, err
	}
	return Result{}, d.engine.PanTo(ctx, lat, lng)
}

func (d *Dispatcher) zoomToAll(ctx context.Context, _ gjson.Result) (Result, error) {
	ok, err := d.engine.ZoomToAll(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Fitted: &ok}, nil
}

// ParseMarkers reads a JSON array of marker snapshots. Missing or null
// coordinates are kept as nil so the engine can skip the marker.
func ParseMarkers(v gjson.Result) ([]photomap.MarkerSnapshot, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: markers must be an array", ErrBadParams)
	}
	var out []photomap.MarkerSnapshot
	for i, m := range v.Array() {
		s := photomap.MarkerSnapshot{
			Lat:       coordinate(m.Get("lat")),
			Lng:       coordinate(m.Get("lng")),
			Draggable: m.Get("draggable").Bool(),
		}
		for _, id := range m.Get("image_id_list").Array() {
			if id.Type != gjson.Number {
				return nil, fmt.Errorf("%w: marker %d has a non-numeric image id", ErrBadParams, i)
			}
			s.ImageIDs = append(s.ImageIDs, id.Int())
		}
		thumb, err := decodeThumbnail(m.Get("thumbnail").String())
		if err != nil {
			return nil, fmt.Errorf("%w: marker %d thumbnail: %v", ErrBadParams, i, err)
		}
		s.Thumbnail = thumb
		out = append(out, s)
	}
	return out, nil
}

func coordinate(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

// decodeThumbnail accepts raw base64 or a base64 data URI.
func decodeThumbnail(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

// ParseArrows reads arrows given either as {start:[lng,lat], end:[lng,lat]}
// or as [[lng,lat],[lng,lat]].
func ParseArrows(v gjson.Result) ([]photomap.ArrowSnapshot, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: arrows must be an array", ErrBadParams)
	}
	var out []photomap.ArrowSnapshot
	for i, a := range v.Array() {
		var start, end gjson.Result
		if a.IsArray() {
			start, end = a.Get("0"), a.Get("1")
		} else {
			start, end = a.Get("start"), a.Get("end")
		}
		s, ok1 := point(start)
		e, ok2 := point(end)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: arrow %d needs [lng, lat] start and end", ErrBadParams, i)
		}
		out = append(out, photomap.ArrowSnapshot{Start: s, End: e})
	}
	return out, nil
}

func point(v gjson.Result) (orb.Point, bool) {
	xs := v.Array()
	if !v.IsArray() || len(xs) != 2 || xs[0].Type != gjson.Number || xs[1].Type != gjson.Number {
		return orb.Point{}, false
	}
	return orb.Point{xs[0].Float(), xs[1].Float()}, true
}
