package models

import (
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-database/sql"
)

// Audited file access actions
const (
	AccessActionView     = "view"
	AccessActionDownload = "download"
	AccessActionDelete   = "delete"
	AccessActionShare    = "share"
	AccessActionDenied   = "access_denied"
)

// FileAccessLog is an append-only audit record of an action taken (or
// refused) against an uploaded file. UserID is nil for public access.
type FileAccessLog struct {
	sql.BaseModel
	FileID    uuid.UUID  `json:"fileId" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"userId,omitempty" gorm:"type:uuid;index"`
	Action    string     `json:"action" gorm:"not null;index"`
	IPAddress string     `json:"ipAddress"`
	UserAgent string     `json:"userAgent"`
}
