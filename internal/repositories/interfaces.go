package repositories

import (
	"context"
	"time"

	"collect-api/internal/models"

	"github.com/google/uuid"
)

// Repositories return gorm.ErrRecordNotFound for unknown ids and
// gorm.ErrDuplicatedKey for job number collisions regardless of backing
// store, so the service layer translates errors uniformly.

// TemplatePatch is a partial update of a template's mutable attributes.
type TemplatePatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// FieldPatch is a partial update of a form field. Any attribute may change.
type FieldPatch struct {
	FieldName        *string
	FieldType        *string
	FieldLabel       *string
	FieldOptions     map[string]interface{}
	ValidationRules  map[string]interface{}
	DocumentDataType *string
	IsRequired       *bool
	DisplayOrder     *int
}

// LinkPatch is a partial update of an upload link.
type LinkPatch struct {
	Status      *string
	ExpiresAt   *time.Time
	ClientEmail *string
}

type TemplateRepository interface {
	// List and ListByCreator return active templates only, newest first,
	// without fields.
	List(ctx context.Context) ([]models.FormTemplate, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.FormTemplate, error)
	// GetByID returns the template with its fields sorted by display order.
	GetByID(ctx context.Context, id uuid.UUID) (models.FormTemplate, error)
	// Create persists the template and all of its fields atomically; a
	// failed field insert rolls back the whole creation.
	Create(ctx context.Context, template *models.FormTemplate) error
	Update(ctx context.Context, id uuid.UUID, patch TemplatePatch) error
	GetField(ctx context.Context, fieldID uuid.UUID) (models.FormField, error)
	AddField(ctx context.Context, field *models.FormField) error
	UpdateField(ctx context.Context, fieldID uuid.UUID, patch FieldPatch) error
	DeleteField(ctx context.Context, fieldID uuid.UUID) error
}

type LinkRepository interface {
	// List and ListByCreator return links newest first.
	List(ctx context.Context) ([]models.UploadLink, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.UploadLink, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.UploadLink, error)
	GetByJobNumber(ctx context.Context, jobNumber string) (models.UploadLink, error)
	Create(ctx context.Context, link *models.UploadLink) error
	Update(ctx context.Context, id uuid.UUID, patch LinkPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.UploadSession) error
	// GetByID returns the session with its files.
	GetByID(ctx context.Context, id uuid.UUID) (models.UploadSession, error)
	ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.UploadSession, error)
	List(ctx context.Context) ([]models.UploadSession, error)
	// MergeData shallow-merges data into the session's form data; later
	// keys overwrite earlier ones with the same name.
	MergeData(ctx context.Context, id uuid.UUID, data map[string]interface{}) error
	SetStatus(ctx context.Context, id uuid.UUID, status string, submittedAt *time.Time) error
	AddFile(ctx context.Context, file *models.UploadedFile) error
	GetFile(ctx context.Context, fileID uuid.UUID) (models.UploadedFile, error)
	// Delete removes the session and all files it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}

type AccessLogRepository interface {
	Record(ctx context.Context, entry *models.FileAccessLog) error
}

// Container bundles the repositories handed to the service layer.
type Container struct {
	Templates  TemplateRepository
	Links      LinkRepository
	Sessions   SessionRepository
	AccessLogs AccessLogRepository
}
