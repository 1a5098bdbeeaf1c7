package handlers

import (
	"os"

	"collect-api/internal/middleware"
	"collect-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-utils/httpx"
)

// FileHandler handles downloads of files collected through sessions.
type FileHandler struct {
	sessions *services.SessionService
}

func NewFileHandler(sessions *services.SessionService) *FileHandler {
	return &FileHandler{sessions: sessions}
}

// DownloadFile streams a collected file to an authenticated caller.
// Access follows the owning link's ownership rule and every attempt,
// allowed or denied, lands in the audit log.
func (h *FileHandler) DownloadFile(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return httpx.SendResponse(c, httpx.Unauthorized("Access token required"))
	}

	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid file ID", err)
		return httpx.SendResponse(c, response)
	}

	file, err := h.sessions.FileForDownload(c.Context(), identity, fileID, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return sendServiceError(c, err)
	}

	if _, err := os.Stat(file.FilePath); os.IsNotExist(err) {
		response := httpx.NotFound("File not found on disk")
		return httpx.SendResponse(c, response)
	}

	return c.Download(file.FilePath, file.OriginalName)
}
