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

// TemplateHandler handles form template HTTP requests
type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// ListTemplates returns the templates visible to the caller
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	templates, err := h.templates.List(c.Context(), identity)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Templates retrieved successfully", templates)
	return httpx.SendResponse(c, response)
}

// GetTemplate returns a template with its fields
func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	templateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid template ID", err)
		return httpx.SendResponse(c, response)
	}

	template, err := h.templates.Get(c.Context(), identity, templateID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Template retrieved successfully", template)
	return httpx.SendResponse(c, response)
}

// CreateTemplate creates a template together with its fields
func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	var input requests.CreateFormTemplateRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	template, err := h.templates.Create(c.Context(), identity, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.Created("Template created successfully", template)
	return httpx.SendResponse(c, response)
}

// UpdateTemplate patches a template's name, description or active flag
func (h *TemplateHandler) UpdateTemplate(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	templateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid template ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.UpdateFormTemplateRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	template, err := h.templates.Update(c.Context(), identity, templateID, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Template updated successfully", template)
	return httpx.SendResponse(c, response)
}

// DeleteTemplate deactivates a template
func (h *TemplateHandler) DeleteTemplate(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	templateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid template ID", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.templates.Delete(c.Context(), identity, templateID); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Template deleted successfully", nil)
	return httpx.SendResponse(c, response)
}

// AddField appends a field to a template
func (h *TemplateHandler) AddField(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	templateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid template ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.CreateFormFieldRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	field, err := h.templates.AddField(c.Context(), identity, templateID, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.Created("Field added successfully", field)
	return httpx.SendResponse(c, response)
}

// UpdateField patches a field definition
func (h *TemplateHandler) UpdateField(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	fieldID, err := uuid.Parse(c.Params("fieldId"))
	if err != nil {
		response := httpx.BadRequest("Invalid field ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.UpdateFormFieldRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.templates.UpdateField(c.Context(), identity, fieldID, input); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Field updated successfully", nil)
	return httpx.SendResponse(c, response)
}

// DeleteField removes a field from its template
func (h *TemplateHandler) DeleteField(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	fieldID, err := uuid.Parse(c.Params("fieldId"))
	if err != nil {
		response := httpx.BadRequest("Invalid field ID", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.templates.DeleteField(c.Context(), identity, fieldID); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Field deleted successfully", nil)
	return httpx.SendResponse(c, response)
}
