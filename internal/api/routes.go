// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/bridge"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Map    *photomap.Service
	Photos *service.PhotoService // nil when the database is unavailable
	Bridge *bridge.Dispatcher
}

// Types

type IndexInput struct {
	Index int `path:"index" minimum:"0" doc:"Marker index" example:"0"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageBody
}

func message(msg string) *MessageOutput {
	return &MessageOutput{Body: MessageBody{Message: msg}}
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterMarkers registers marker and popup routes.
func (h *APIHandler) RegisterMarkers(api huma.API) {
	huma.Get(api, "/api/v1/markers", h.GetMarkers, huma.OperationTags("markers"))
	huma.Put(api, "/api/v1/markers", h.PutMarkers, huma.OperationTags("markers"))
	huma.Delete(api, "/api/v1/markers", h.ClearMarkers, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers/{index}/click", h.ClickMarker, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers/{index}/next", h.NextPhoto, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers/{index}/prev", h.PrevPhoto, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers/{index}/drag", h.DragMarker, huma.OperationTags("markers"))
	huma.Post(api, "/api/v1/markers/{index}/close", h.ClosePopup, huma.OperationTags("markers"))
}

// RegisterView registers map view routes.
func (h *APIHandler) RegisterView(api huma.API) {
	huma.Put(api, "/api/v1/view", h.SetView, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/pan", h.PanView, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/fit", h.FitView, huma.OperationTags("view"))
}

// RegisterPhotos registers photo record routes.
func (h *APIHandler) RegisterPhotos(api huma.API) {
	huma.Get(api, "/api/v1/photos/bounds", h.GetPhotoBounds, huma.OperationTags("photos"))
	huma.Get(api, "/api/v1/photos/{id}", h.GetPhoto, huma.OperationTags("photos"))
	huma.Put(api, "/api/v1/photos/{id}", h.PutPhoto, huma.OperationTags("photos"))
	huma.Delete(api, "/api/v1/photos/{id}", h.DeletePhoto, huma.OperationTags("photos"))
}

// RegisterBridge registers the host function-call route.
func (h *APIHandler) RegisterBridge(api huma.API) {
	huma.Post(api, "/api/v1/bridge/{fn}", h.CallBridge, huma.OperationTags("bridge"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}
