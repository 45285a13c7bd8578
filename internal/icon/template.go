package icon

import (
	"encoding/base64"
	"math"
)

const (
	// MapIconMax is the larger dimension of a marker icon on the map.
	MapIconMax = 75.0
	// PopupImageWidth is the width thumbnails are shown at inside popups.
	PopupImageWidth = 150
)

// Border is the frame drawn behind a marker icon. It is rendered as the
// icon's shadow, Margin pixels larger than the image in each dimension.
type Border struct {
	Source string
	Margin int
}

var (
	SingleBorder   = Border{Source: "images/picture_border.png", Margin: 2}
	MultipleBorder = Border{Source: "images/multiple_picture_border.png", Margin: 15}
)

// BorderFor returns the frame for a marker carrying ids images.
func BorderFor(ids int) Border {
	if ids > 1 {
		return MultipleBorder
	}
	return SingleBorder
}

// Icon describes a resolved marker icon.
type Icon struct {
	ImageSource  string `json:"iconUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ShadowSource string `json:"shadowUrl"`
	ShadowWidth  int    `json:"shadowWidth"`
	ShadowHeight int    `json:"shadowHeight"`
}

// ScaleToFit scales (w, h) so the larger side equals target, preserving the
// aspect ratio, and rounds each side to the nearest pixel.
func ScaleToFit(w, h int, target float64) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	var scale float64
	if h > w {
		scale = target / float64(h)
	} else {
		scale = target / float64(w)
	}
	return int(math.Round(float64(w) * scale)), int(math.Round(float64(h) * scale))
}

// DataURI encodes payload as a data: URI of the given image format.
func DataURI(format string, payload []byte) string {
	if format == "" {
		format = "jpeg"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// Build assembles the icon for an image of intrinsic size (w, h).
func Build(payload []byte, format string, w, h, ids int) Icon {
	sw, sh := ScaleToFit(w, h, MapIconMax)
	b := BorderFor(ids)
	return Icon{
		ImageSource:  DataURI(format, payload),
		Width:        sw,
		Height:       sh,
		ShadowSource: b.Source,
		ShadowWidth:  sw + b.Margin,
		ShadowHeight: sh + b.Margin,
	}
}
