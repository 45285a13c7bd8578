package api

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

type PhotoIDInput struct {
	ID int64 `path:"id" doc:"Image identifier" example:"1"`
}

type PhotoOutput struct {
	Body service.Photo
}

type PutPhotoInput struct {
	PhotoIDInput
	Body service.Photo
}

type BoundsInput struct {
	From time.Time `query:"from" required:"true" doc:"Earliest taken date (RFC 3339)"`
	To   time.Time `query:"to" required:"true" doc:"Latest taken date (RFC 3339)"`
}

type BoundsBody struct {
	Valid  bool             `json:"valid" doc:"False when no located photo was taken in the range"`
	Bounds *photomap.Bounds `json:"bounds,omitempty"`
}

func (h *APIHandler) photos() (*service.PhotoService, error) {
	if h.svc == nil || h.svc.Photos == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	return h.svc.Photos, nil
}

func (h *APIHandler) GetPhoto(ctx context.Context, input *PhotoIDInput) (*PhotoOutput, error) {
	photos, err := h.photos()
	if err != nil {
		return nil, err
	}
	p, err := photos.Get(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &PhotoOutput{Body: p}, nil
}

func (h *APIHandler) PutPhoto(ctx context.Context, input *PutPhotoInput) (*PhotoOutput, error) {
	photos, err := h.photos()
	if err != nil {
		return nil, err
	}
	p := input.Body
	p.ID = input.ID
	if err := photos.Put(ctx, p); err != nil {
		return nil, httpError(err)
	}
	return &PhotoOutput{Body: p}, nil
}

func (h *APIHandler) DeletePhoto(ctx context.Context, input *PhotoIDInput) (*MessageOutput, error) {
	photos, err := h.photos()
	if err != nil {
		return nil, err
	}
	if err := photos.Delete(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return message("Photo deleted"), nil
}

func (h *APIHandler) GetPhotoBounds(ctx context.Context, input *BoundsInput) (*struct{ Body BoundsBody }, error) {
	photos, err := h.photos()
	if err != nil {
		return nil, err
	}
	if input.To.Before(input.From) {
		return nil, huma.Error400BadRequest("to is before from")
	}
	r, err := photos.Bounds(ctx, input.From, input.To)
	if err != nil {
		return nil, httpError(err)
	}
	b := photomap.BoundsOf(r)
	return &struct{ Body BoundsBody }{Body: BoundsBody{Valid: b != nil, Bounds: b}}, nil
}
