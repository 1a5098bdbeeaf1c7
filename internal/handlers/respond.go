package handlers

import (
	"errors"

	"collect-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/kerimovok/go-pkg-utils/httpx"
)

// sendServiceError maps a service error to its response shape. Every
// handler funnels service failures through here so the mapping stays in
// one place.
func sendServiceError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case services.KindValidation:
			return httpx.SendResponse(c, httpx.BadRequest(svcErr.Message, svcErr.Err))
		case services.KindNotFound:
			return httpx.SendResponse(c, httpx.NotFound(svcErr.Message))
		case services.KindAccessDenied:
			return httpx.SendResponse(c, httpx.Forbidden(svcErr.Message))
		case services.KindConflict:
			return httpx.SendResponse(c, httpx.Conflict(svcErr.Message, svcErr.Err))
		case services.KindStorage:
			return httpx.SendResponse(c, httpx.InternalServerError(svcErr.Message, svcErr.Err))
		}
	}
	return httpx.SendResponse(c, httpx.InternalServerError("Unexpected error", err))
}
