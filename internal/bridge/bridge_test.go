package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"

	"github.com/joeblew999/plat-photomap/internal/photomap"
)

type fakeEngine struct {
	markers []photomap.MarkerSnapshot
	arrows  []photomap.ArrowSnapshot
	calls   []string
	view    [3]float64
	fit     bool
}

func (f *fakeEngine) ReplaceAll(_ context.Context, m []photomap.MarkerSnapshot, a []photomap.ArrowSnapshot) (int, error) {
	f.calls = append(f.calls, "replace")
	f.markers, f.arrows = m, a
	return len(m), nil
}

func (f *fakeEngine) Clear(context.Context) error {
	f.calls = append(f.calls, "clear")
	return nil
}

func (f *fakeEngine) SetView(_ context.Context, lat, lng, zoom float64) error {
	f.calls = append(f.calls, "view")
	f.view = [3]float64{lat, lng, zoom}
	return nil
}

func (f *fakeEngine) PanTo(_ context.Context, lat, lng float64) error {
	f.calls = append(f.calls, "pan")
	f.view = [3]float64{lat, lng, f.view[2]}
	return nil
}

func (f *fakeEngine) ZoomToAll(context.Context) (bool, error) {
	f.calls = append(f.calls, "fit")
	return f.fit, nil
}

func TestSetMapMarkers(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, nil)
	thumb := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})

	params := `{
		"markers": [
			{"image_id_list": [1, 2, 3], "lat": 51.5, "lng": -0.09, "draggable": true, "thumbnail": "` + thumb + `"},
			{"image_id_list": [4], "lat": null, "lng": 2}
		],
		"arrows": [
			{"start": [-0.09, 51.5], "end": [-0.08, 51.6]},
			[[1, 2], [3, 4]]
		]
	}`
	res, err := d.Call(context.Background(), "setMapMarkers", []byte(params))
	if err != nil {
		t.Fatal(err)
	}
	if res.Markers == nil || *res.Markers != 2 || res.Function != "setMapMarkers" {
		t.Errorf("result = %+v", res)
	}

	m := eng.markers[0]
	if len(m.ImageIDs) != 3 || *m.Lat != 51.5 || *m.Lng != -0.09 || !m.Draggable || len(m.Thumbnail) != 3 {
		t.Errorf("marker 0 = %+v", m)
	}
	if eng.markers[1].Lat != nil {
		t.Error("null lat should stay nil")
	}
	want := []photomap.ArrowSnapshot{
		{Start: orb.Point{-0.09, 51.5}, End: orb.Point{-0.08, 51.6}},
		{Start: orb.Point{1, 2}, End: orb.Point{3, 4}},
	}
	for i, a := range want {
		if eng.arrows[i] != a {
			t.Errorf("arrow %d = %+v, want %+v", i, eng.arrows[i], a)
		}
	}
}

func TestSetMapMarkers_Positional(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, nil)
	_, err := d.Call(context.Background(), "setMapMarkers", []byte(`[[{"image_id_list":[7],"lat":1,"lng":2}], []]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(eng.markers) != 1 || eng.markers[0].ImageIDs[0] != 7 || len(eng.arrows) != 0 {
		t.Errorf("markers = %+v arrows = %+v", eng.markers, eng.arrows)
	}
}

func TestPositionCalls(t *testing.T) {
	tests := []struct {
		fn     string
		params string
		want   [3]float64
	}{
		{"setMapPosition", `{"lat": 48.85, "lng": 2.35, "zoom": 12}`, [3]float64{48.85, 2.35, 12}},
		{"setMapPosition", `[10, 20, 5]`, [3]float64{10, 20, 5}},
		{"panMapTo", `{"lat": -33.9, "lng": 151.2}`, [3]float64{-33.9, 151.2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.fn+" "+tt.params, func(t *testing.T) {
			eng := &fakeEngine{}
			if _, err := New(eng, nil).Call(context.Background(), tt.fn, []byte(tt.params)); err != nil {
				t.Fatal(err)
			}
			if eng.view != tt.want {
				t.Errorf("view = %v, want %v", eng.view, tt.want)
			}
		})
	}
}

func TestClearAndZoom(t *testing.T) {
	eng := &fakeEngine{fit: true}
	d := New(eng, nil)
	if _, err := d.Call(context.Background(), "clearMap", nil); err != nil {
		t.Fatal(err)
	}
	res, err := d.Call(context.Background(), "zoomToAll", []byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Fitted == nil || !*res.Fitted {
		t.Errorf("fitted = %v", res.Fitted)
	}
	if len(eng.calls) != 2 || eng.calls[0] != "clear" || eng.calls[1] != "fit" {
		t.Errorf("calls = %v", eng.calls)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		fn     string
		params string
		want   error
	}{
		{"unknown", "dropTable", `{}`, ErrUnknownFunction},
		{"malformed", "panMapTo", `{"lat":`, ErrBadParams},
		{"missing lng", "panMapTo", `{"lat": 1}`, ErrBadParams},
		{"string zoom", "setMapPosition", `{"lat": 1, "lng": 2, "zoom": "12"}`, ErrBadParams},
		{"markers object", "setMapMarkers", `{"markers": {}}`, ErrBadParams},
		{"short arrow", "setMapMarkers", `{"arrows": [[[1, 2]]]}`, ErrBadParams},
		{"bad thumbnail", "setMapMarkers", `{"markers": [{"image_id_list": [1], "thumbnail": "***"}]}`, ErrBadParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{}
			_, err := New(eng, nil).Call(context.Background(), tt.fn, []byte(tt.params))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(eng.calls) != 0 {
				t.Errorf("engine called: %v", eng.calls)
			}
		})
	}
}

func TestDecodeThumbnail_DataURI(t *testing.T) {
	raw := []byte("png-bytes")
	got, err := decodeThumbnail("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	if err != nil || string(got) != "png-bytes" {
		t.Errorf("decode = %q, %v", got, err)
	}
}

func TestParseArrows_Empty(t *testing.T) {
	arrows, err := ParseArrows(gjson.Parse(`null`))
	if err != nil || arrows != nil {
		t.Errorf("arrows = %v, err = %v", arrows, err)
	}
}

func TestFunctions(t *testing.T) {
	got := New(&fakeEngine{}, nil).Functions()
	if len(got) != 5 || got[0] != "clearMap" {
		t.Errorf("functions = %v", got)
	}
}
