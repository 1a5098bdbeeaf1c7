package handlers

import (
	"collect-api/internal/middleware"
	"collect-api/internal/requests"
	"collect-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
)

// expiringSoonDays is the dashboard window for links about to expire.
const expiringSoonDays = 3

// LinkHandler handles upload link HTTP requests
type LinkHandler struct {
	links *services.LinkService
}

func NewLinkHandler(links *services.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// ListLinks returns the links visible to the caller
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	links, err := h.links.List(c.Context(), identity)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload links retrieved successfully", links)
	return httpx.SendResponse(c, response)
}

// GetLink returns a single upload link
func (h *LinkHandler) GetLink(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	linkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid link ID", err)
		return httpx.SendResponse(c, response)
	}

	link, err := h.links.Get(c.Context(), identity, linkID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload link retrieved successfully", link)
	return httpx.SendResponse(c, response)
}

// CreateLink issues a new upload link for a job number
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	var input requests.CreateUploadLinkRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	link, err := h.links.Create(c.Context(), identity, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.Created("Upload link created successfully", link)
	return httpx.SendResponse(c, response)
}

// UpdateLink patches a link's status, expiry or client email
func (h *LinkHandler) UpdateLink(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	linkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid link ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.UpdateUploadLinkRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	link, err := h.links.Update(c.Context(), identity, linkID, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload link updated successfully", link)
	return httpx.SendResponse(c, response)
}

// DeleteLink removes an upload link
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	linkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid link ID", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.links.Delete(c.Context(), identity, linkID); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload link deleted successfully", nil)
	return httpx.SendResponse(c, response)
}

// ValidateLink is the public pre-upload check used by clients. An active
// link past its expiry flips to expired as part of this call.
func (h *LinkHandler) ValidateLink(c *fiber.Ctx) error {
	linkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid link ID", err)
		return httpx.SendResponse(c, response)
	}

	validation, err := h.links.Validate(c.Context(), linkID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Link validation result", validation)
	return httpx.SendResponse(c, response)
}

// GetLinkStats returns the dashboard counters: active links and links
// expiring within the next few days
func (h *LinkHandler) GetLinkStats(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	activeCount, err := h.links.ActiveCount(c.Context(), identity)
	if err != nil {
		return sendServiceError(c, err)
	}
	expiring, err := h.links.ExpiringSoon(c.Context(), identity, expiringSoonDays)
	if err != nil {
		return sendServiceError(c, err)
	}

	stats := map[string]interface{}{
		"activeLinks":   activeCount,
		"expiringSoon":  expiring,
		"expiringCount": len(expiring),
	}

	response := httpx.OK("Link statistics retrieved successfully", stats)
	return httpx.SendResponse(c, response)
}
