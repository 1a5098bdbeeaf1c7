package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-database/sql"
)

// Upload session states. A session starts in_progress and ends completed
// (client submitted) or failed (marked externally).
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// UploadSession is one client's attempt to fill out a link's form and
// upload files. The session exclusively owns its files; deleting the
// session deletes them.
type UploadSession struct {
	sql.BaseModel
	UploadLinkID uuid.UUID              `json:"uploadLinkId" gorm:"type:uuid;not null;index"`
	FormData     map[string]interface{} `json:"formData" gorm:"serializer:json"`
	Status       string                 `json:"status" gorm:"not null;default:'in_progress'"`
	SubmittedAt  *time.Time             `json:"submittedAt,omitempty"`
	Files        []UploadedFile         `json:"files" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// UploadedFile is a single file received within a session, recorded under
// the template field name it was submitted for.
type UploadedFile struct {
	sql.BaseModel
	SessionID    uuid.UUID `json:"sessionId" gorm:"type:uuid;not null;index"`
	FieldName    string    `json:"fieldName" gorm:"not null"`
	OriginalName string    `json:"originalName" gorm:"not null"`
	StoredName   string    `json:"storedName" gorm:"not null"`
	FilePath     string    `json:"filePath" gorm:"not null"`
	MimeType     string    `json:"mimeType" gorm:"not null"`
	FileSize     int64     `json:"fileSize" gorm:"not null"`
	DocumentType *string   `json:"documentType,omitempty"`
}
