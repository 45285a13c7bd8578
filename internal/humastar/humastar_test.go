package humastar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

type pager struct {
	Index int
	Prev  bool
	Next  bool
}

var pagerDefs = []ActionDef[pager]{
	{Rel: "click", Pattern: "/api/v1/markers/%s/click", Method: "POST", Title: "Open popup"},
	{Rel: "prev", Pattern: "/api/v1/markers/%s/prev", Method: "POST", Enabled: func(p pager) bool { return p.Prev }},
	{Rel: "next", Pattern: "/api/v1/markers/%s/next", Method: "POST", Enabled: func(p pager) bool { return p.Next }},
}

func TestActionsFor(t *testing.T) {
	got := ActionsFor("2", pager{Index: 2, Next: true}, pagerDefs)
	if len(got) != 2 {
		t.Fatalf("actions = %+v", got)
	}
	if got[0].Rel != "click" || got[1].Rel != "next" || got[1].Href != "/api/v1/markers/2/next" {
		t.Errorf("actions = %+v", got)
	}
}

func TestActionLinkHeader(t *testing.T) {
	a := Action{Rel: "next", Href: "/m/1/next", Method: "POST", Title: "Next photo"}
	want := `</m/1/next>; rel="next"; method="POST"; title="Next photo"`
	if got := a.LinkHeader(); got != want {
		t.Errorf("LinkHeader = %s", got)
	}
	if got := (Action{Rel: "up", Href: "/"}).LinkHeader(); got != `</>; rel="up"` {
		t.Errorf("bare LinkHeader = %s", got)
	}
}

func TestSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"zoom": 12, "centreLat": 51.5, "mapWidth": 800.0}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Int("zoom") != 12 || s.Float("centreLat") != 51.5 || s.Int("mapWidth") != 800 {
		t.Errorf("signals = %v", s)
	}
	if s.Has("missing") || s.Float("missing") != 0 {
		t.Error("missing key reported")
	}

	in := &SignalsInput{RawBody: []byte("{")}
	if _, err := in.MustParse(); err == nil {
		t.Error("malformed body accepted")
	}
}

type itemBody struct {
	ID string `json:"id"`
}

type itemOutput struct {
	Body itemBody
}

func (b itemBody) Actions() []Action {
	return []Action{{Rel: "delete", Href: "/api/v1/items/" + b.ID, Method: "DELETE"}}
}

func TestLinks(t *testing.T) {
	mux := http.NewServeMux()
	links := NewLinks("/health")
	cfg := huma.DefaultConfig("test", "1.0.0")
	cfg.Transformers = append(cfg.Transformers, links.Transformer())
	api := humago.New(mux, cfg)

	huma.Get(api, "/health", func(ctx context.Context, _ *struct{}) (*struct{}, error) { return &struct{}{}, nil })
	huma.Get(api, "/api/v1/items", func(ctx context.Context, _ *struct{}) (*struct{ Body []string }, error) {
		return &struct{ Body []string }{Body: []string{}}, nil
	})
	huma.Get(api, "/api/v1/items/{id}", func(ctx context.Context, in *struct {
		ID string `path:"id"`
	}) (*itemOutput, error) {
		return &itemOutput{Body: itemBody{ID: in.ID}}, nil
	})
	huma.Get(api, "/api/v1/events", func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return &struct{}{}, nil
	}, huma.OperationTags(StreamTag))
	links.Generate(api)

	health := strings.Join(links.For("/health"), ",")
	if !strings.Contains(health, `</api/v1/items>; rel="items"`) || !strings.Contains(health, `rel="service-desc"`) {
		t.Errorf("health links = %s", health)
	}
	if strings.Contains(health, "/api/v1/events") {
		t.Errorf("stream endpoint linked: %s", health)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/7", nil))
	got := strings.Join(rec.Header().Values("Link"), ",")
	for _, want := range []string{
		`</api/v1/items>; rel="collection"`,
		`</api/v1/items/7>; rel="self"`,
		`</api/v1/items/7>; rel="delete"; method="DELETE"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Link headers missing %s: %s", want, got)
		}
	}
}
