// Package photomap is the marker and popup engine behind the photo map.
//
// An Engine owns the plotted markers, the arrow overlays and every popup.
// All of its methods must be called from one goroutine, normally a Loop;
// slow work (thumbnail decoding, metadata fetches) runs through a Scheduler
// and its result is applied back on that goroutine, tagged with a Token so
// results that no longer match the current markers are discarded.
package photomap

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-photomap/internal/icon"
)

// Date type codes reported with Metadata.TakenDate.
const (
	DateTaken = 0 // from EXIF
	DateFile  = 1 // file modification time
)

// MarkerSnapshot is one marker as supplied by the host.
type MarkerSnapshot struct {
	ImageIDs  []int64  `json:"image_id_list" minItems:"1" doc:"Photos shown by this marker, in paging order"`
	Lat       *float64 `json:"lat" required:"false" doc:"Latitude; markers without one are skipped"`
	Lng       *float64 `json:"lng" required:"false" doc:"Longitude; markers without one are skipped"`
	Draggable bool     `json:"draggable" required:"false" doc:"Whether the user may move the marker"`
	Thumbnail []byte   `json:"thumbnail" required:"false" doc:"Base64 encoded icon image"`
}

// ArrowSnapshot is one trail segment, X=lng Y=lat.
type ArrowSnapshot struct {
	Start orb.Point `json:"start" doc:"[lng, lat]"`
	End   orb.Point `json:"end" doc:"[lng, lat]"`
}

// Metadata is what a popup shows for one photo.
type Metadata struct {
	ID            int64     `json:"image_id"`
	Thumbnail     []byte    `json:"thumbnail"`
	Filename      string    `json:"filename"`
	TakenDate     time.Time `json:"taken_date"`
	TakenDateType int       `json:"taken_date_type"`
	CameraMake    string    `json:"camera_make"`
}

// View is the visible map area as reported by the browser.
type View struct {
	CenterLat float64 `json:"centreLat"`
	CenterLng float64 `json:"centreLng"`
	Zoom      float64 `json:"zoom"`
	North     float64 `json:"north"`
	South     float64 `json:"south"`
	West      float64 `json:"west"`
	East      float64 `json:"east"`
	Width     int     `json:"mapWidth"`
	Height    int     `json:"mapHeight"`
}

// Center returns the view centre as an orb.Point.
func (v View) Center() orb.Point { return orb.Point{v.CenterLng, v.CenterLat} }

// PopupState is Closed (Open false) or Open at Index.
type PopupState struct {
	Open  bool `json:"open"`
	Index int  `json:"index"`
}

// Token correlates an async completion with the state that requested it.
type Token struct {
	Generation uint64
	Marker     int
	Image      int
}

// MarkerView is an attached marker as the map widget draws it.
type MarkerView struct {
	Index     int       `json:"index"`
	ImageIDs  []int64   `json:"imageIds"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Draggable bool      `json:"draggable"`
	Icon      icon.Icon `json:"icon"`
}

// Cluster reports whether the marker pages through several photos.
func (m MarkerView) Cluster() bool { return len(m.ImageIDs) > 1 }

// MarkerState is a snapshot of one registered marker.
type MarkerState struct {
	MarkerView
	Current int        `json:"current" doc:"Image index the popup is showing or loading"`
	Popup   PopupState `json:"popup"`
}

// PopupView is the data a popup is rendered from.
type PopupView struct {
	Marker  int
	Meta    Metadata
	Index   int
	Count   int
	Paging  bool
	HasPrev bool
	HasNext bool
}
