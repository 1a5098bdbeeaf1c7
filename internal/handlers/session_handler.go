package handlers

import (
	"collect-api/internal/requests"
	"collect-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
)

// SessionHandler handles upload session HTTP requests. Session creation
// and submission are public; the service re-validates the link on both.
type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession opens a session against a validated link
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var input requests.CreateUploadSessionRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	session, err := h.sessions.Create(c.Context(), input.UploadLinkID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.Created("Upload session created successfully", session)
	return httpx.SendResponse(c, response)
}

// SubmitSession finalizes a session from a multipart form: every file
// part becomes an uploaded file, every value part becomes form data.
func (h *SessionHandler) SubmitSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid session ID", err)
		return httpx.SendResponse(c, response)
	}

	form, err := c.MultipartForm()
	if err != nil {
		response := httpx.BadRequest("Invalid multipart form", err)
		return httpx.SendResponse(c, response)
	}

	formData := make(map[string]string, len(form.Value))
	for key, values := range form.Value {
		if len(values) > 0 {
			formData[key] = values[0]
		}
	}

	var files []requests.UploadPart
	for fieldName, headers := range form.File {
		for _, header := range headers {
			files = append(files, requests.UploadPart{FieldName: fieldName, File: header})
		}
	}

	session, err := h.sessions.Submit(c.Context(), sessionID, formData, files)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload session submitted successfully", session)
	return httpx.SendResponse(c, response)
}

// UpdateSessionData merges form data into an in-progress session
func (h *SessionHandler) UpdateSessionData(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid session ID", err)
		return httpx.SendResponse(c, response)
	}

	var input map[string]interface{}
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	session, err := h.sessions.UpdateData(c.Context(), sessionID, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Session data updated successfully", session)
	return httpx.SendResponse(c, response)
}

// FailSession moves a session to the failed state, used by clients that
// abandon an upload attempt
func (h *SessionHandler) FailSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid session ID", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.sessions.MarkFailed(c.Context(), sessionID); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload session marked as failed", nil)
	return httpx.SendResponse(c, response)
}

// GetSession returns a session with its files
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid session ID", err)
		return httpx.SendResponse(c, response)
	}

	session, err := h.sessions.Get(c.Context(), sessionID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload session retrieved successfully", session)
	return httpx.SendResponse(c, response)
}

// ListSessions returns every upload session
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.sessions.ListAll(c.Context())
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload sessions retrieved successfully", sessions)
	return httpx.SendResponse(c, response)
}

// ListSessionsForLink returns the sessions opened against one link
func (h *SessionHandler) ListSessionsForLink(c *fiber.Ctx) error {
	linkID, err := uuid.Parse(c.Params("linkId"))
	if err != nil {
		response := httpx.BadRequest("Invalid link ID", err)
		return httpx.SendResponse(c, response)
	}

	sessions, err := h.sessions.ListForLink(c.Context(), linkID)
	if err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload sessions retrieved successfully", sessions)
	return httpx.SendResponse(c, response)
}

// DeleteSession removes a session and every file it owns
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid session ID", err)
		return httpx.SendResponse(c, response)
	}

	if err := h.sessions.Delete(c.Context(), sessionID); err != nil {
		return sendServiceError(c, err)
	}

	response := httpx.OK("Upload session deleted successfully", nil)
	return httpx.SendResponse(c, response)
}
