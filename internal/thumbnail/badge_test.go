package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func jpegThumb(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecorate(t *testing.T) {
	b := DefaultBadges()
	thumb := jpegThumb(t, 120, 90)

	tests := []struct {
		name       string
		userPlaced bool
		// dominant channel expected at the badge centre
		channel func(r, g, b uint32) bool
	}{
		{"pin", true, func(r, g, b uint32) bool { return r > b }},
		{"compass", false, func(r, g, b uint32) bool { return b > r }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := b.Decorate(thumb, tt.userPlaced)
			if err != nil {
				t.Fatalf("Decorate: %v", err)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output not decodable: %v", err)
			}
			if format != "jpeg" || cfg.Width != 120 || cfg.Height != 90 {
				t.Errorf("output = %s %dx%d, want jpeg 120x90", format, cfg.Width, cfg.Height)
			}

			img, err := imaging.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatal(err)
			}
			// the compass is a ring, so sample on its rim
			r, g, bl, _ := img.At(badgeSize/2, 1).RGBA()
			if !tt.channel(r, g, bl) {
				t.Errorf("badge colour at rim = (%d,%d,%d)", r>>8, g>>8, bl>>8)
			}
		})
	}
}

func TestDecorate_Empty(t *testing.T) {
	out, err := DefaultBadges().Decorate(nil, true)
	if err != nil || len(out) != 0 {
		t.Errorf("Decorate(nil) = %v, %v", out, err)
	}
}

func TestDecorate_Invalid(t *testing.T) {
	if _, err := DefaultBadges().Decorate([]byte("garbage"), false); err == nil {
		t.Error("expected error for undecodable thumbnail")
	}
}

func TestLoadBadges(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	green := imaging.New(4, 4, color.NRGBA{G: 255, A: 255})
	if err := imaging.Save(green, filepath.Join(dir, "images", "pin.png")); err != nil {
		t.Fatal(err)
	}

	b := LoadBadges(dir)
	if b.Pin.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("pin not loaded from disk: %v", b.Pin.Bounds())
	}
	if b.Compass.Bounds().Dx() != badgeSize {
		t.Errorf("missing compass should fall back to the default badge")
	}
}
