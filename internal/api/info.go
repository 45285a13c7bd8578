package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir  string
	dbOK     bool
	natsOK   bool
	features []string
}

func NewInfoHandler(dataDir string, dbOK, natsOK bool) *InfoHandler {
	features := []string{"markers", "popups", "arrows", "bridge", "sse"}
	if dbOK {
		features = append(features, "duckdb")
	}
	if natsOK {
		features = append(features, "nats")
	}
	return &InfoHandler{dataDir: dataDir, dbOK: dbOK, natsOK: natsOK, features: features}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path, empty for an in-memory store"`
	DB       bool     `json:"db" doc:"Whether the photo store is available"`
	NATS     bool     `json:"nats" doc:"Whether host notifications go to NATS"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-photomap",
		Version:  "0.1.0",
		DataDir:  h.dataDir,
		DB:       h.dbOK,
		NATS:     h.natsOK,
		Features: h.features,
	}}, nil
}
