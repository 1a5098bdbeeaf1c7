package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-database/sql"
)

// Upload link lifecycle states
const (
	LinkStatusActive    = "active"
	LinkStatusExpired   = "expired"
	LinkStatusCompleted = "completed"
	LinkStatusDisabled  = "disabled"
)

// IsValidLinkStatus reports whether s is a known link status.
func IsValidLinkStatus(s string) bool {
	switch s {
	case LinkStatusActive, LinkStatusExpired, LinkStatusCompleted, LinkStatusDisabled:
		return true
	}
	return false
}

// UploadLink is a shareable, expiring token scoped to a business job
// number that exposes one form template to an unauthenticated client.
// An active link whose expiry has passed is moved to expired lazily the
// next time it is validated; there is no background sweep.
type UploadLink struct {
	sql.BaseModel
	JobNumber      string    `json:"jobNumber" gorm:"not null;uniqueIndex"`
	FormTemplateID uuid.UUID `json:"formTemplateId" gorm:"type:uuid;not null;index"`
	CreatedBy      uuid.UUID `json:"createdBy" gorm:"type:uuid;not null;index"`
	Status         string    `json:"status" gorm:"not null;default:'active'"`
	ExpiresAt      time.Time `json:"expiresAt" gorm:"not null;index"`
	ClientEmail    *string   `json:"clientEmail,omitempty"`
}
