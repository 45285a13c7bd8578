// Package thumbnail decorates photo thumbnails with the pin/compass badge
// that tells the user where a photo's location came from.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	// BadgeOpacity is the opacity the badge is painted with.
	BadgeOpacity = 0.7
	// JPEGQuality is the quality decorated thumbnails are re-encoded at.
	JPEGQuality = 90

	badgeSize = 16
)

// Badges holds the two overlay images.
type Badges struct {
	// Pin marks photos the user placed by hand.
	Pin image.Image
	// Compass marks photos located from their EXIF data.
	Compass image.Image
}

// DefaultBadges draws plain badges: a red disc for the pin and a blue ring
// for the compass.
func DefaultBadges() Badges {
	return Badges{
		Pin:     disc(color.NRGBA{R: 220, G: 40, B: 40, A: 255}, false),
		Compass: disc(color.NRGBA{R: 40, G: 90, B: 220, A: 255}, true),
	}
}

// LoadBadges reads images/pin.png and images/compass.png from dir. A badge
// that cannot be opened falls back to its DefaultBadges drawing.
func LoadBadges(dir string) Badges {
	b := DefaultBadges()
	if dir == "" {
		return b
	}
	if img, err := open(filepath.Join(dir, "images", "pin.png")); err == nil {
		b.Pin = img
	}
	if img, err := open(filepath.Join(dir, "images", "compass.png")); err == nil {
		b.Compass = img
	}
	return b
}

func open(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return imaging.Open(path)
}

// Decorate paints the badge for a photo over the top-left corner of a JPEG
// thumbnail and returns the re-encoded JPEG. An empty thumbnail is returned
// unchanged.
func (b Badges) Decorate(thumb []byte, userPlaced bool) ([]byte, error) {
	if len(thumb) == 0 {
		return thumb, nil
	}
	img, err := imaging.Decode(bytes.NewReader(thumb))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	badge := b.Compass
	if userPlaced {
		badge = b.Pin
	}
	out := imaging.Overlay(img, badge, image.Pt(0, 0), BadgeOpacity)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func disc(c color.NRGBA, ring bool) image.Image {
	img := imaging.New(badgeSize, badgeSize, color.NRGBA{})
	r := float64(badgeSize) / 2
	for y := 0; y < badgeSize; y++ {
		for x := 0; x < badgeSize; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			d := dx*dx + dy*dy
			if d > r*r || (ring && d < (r-4)*(r-4)) {
				continue
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
