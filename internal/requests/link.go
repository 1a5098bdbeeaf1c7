package requests

import (
	"time"

	"github.com/google/uuid"
)

// CreateUploadLinkRequest represents an upload link creation request.
// ExpiresAt defaults to 30 days from creation when omitted.
type CreateUploadLinkRequest struct {
	JobNumber      string     `json:"jobNumber" validate:"required"`
	FormTemplateID uuid.UUID  `json:"formTemplateId" validate:"required"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	ClientEmail    *string    `json:"clientEmail,omitempty" validate:"omitempty,email"`
}

// UpdateUploadLinkRequest represents a partial link patch
type UpdateUploadLinkRequest struct {
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=active expired completed disabled"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ClientEmail *string    `json:"clientEmail,omitempty" validate:"omitempty,email"`
}
