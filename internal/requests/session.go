package requests

import (
	"mime/multipart"

	"github.com/google/uuid"
)

// CreateUploadSessionRequest opens a session against a validated link.
type CreateUploadSessionRequest struct {
	UploadLinkID uuid.UUID `json:"uploadLinkId" validate:"required"`
}

// UploadPart is one file of a multi-file submission, keyed by the
// template field name it was submitted under.
type UploadPart struct {
	FieldName string
	File      *multipart.FileHeader
}
