package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-photomap/internal/bridge"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
)

// httpError maps domain errors onto Huma status errors.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, photomap.ErrNoSuchMarker),
		errors.Is(err, service.ErrPhotoNotFound),
		errors.Is(err, bridge.ErrUnknownFunction):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, photomap.ErrPopupNotOpen),
		errors.Is(err, photomap.ErrPagingDisabled),
		errors.Is(err, photomap.ErrNotDraggable):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, bridge.ErrBadParams):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, photomap.ErrLoopStopped),
		errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("map engine unavailable", err)
	default:
		return huma.Error500InternalServerError("request failed", err)
	}
}
