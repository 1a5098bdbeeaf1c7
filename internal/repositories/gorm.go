package repositories

import (
	"context"
	"time"

	"collect-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewGormContainer builds the production repository set on top of a
// pooled gorm connection.
func NewGormContainer(db *gorm.DB) Container {
	return Container{
		Templates:  &gormTemplateRepository{db: db},
		Links:      &gormLinkRepository{db: db},
		Sessions:   &gormSessionRepository{db: db},
		AccessLogs: &gormAccessLogRepository{db: db},
	}
}

type gormTemplateRepository struct {
	db *gorm.DB
}

func (r *gormTemplateRepository) List(ctx context.Context) ([]models.FormTemplate, error) {
	var templates []models.FormTemplate
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&templates).Error
	return templates, err
}

func (r *gormTemplateRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.FormTemplate, error) {
	var templates []models.FormTemplate
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND created_by = ?", true, creatorID).
		Order("created_at DESC").
		Find(&templates).Error
	return templates, err
}

func (r *gormTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (models.FormTemplate, error) {
	var template models.FormTemplate
	err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&template, "id = ?", id).Error
	return template, err
}

func (r *gormTemplateRepository) Create(ctx context.Context, template *models.FormTemplate) error {
	// One transaction for the template and all of its fields; a failed
	// field insert must not leave an orphaned template behind.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Fields").Create(template).Error; err != nil {
			return err
		}
		for i := range template.Fields {
			template.Fields[i].TemplateID = template.ID
			if err := tx.Create(&template.Fields[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormTemplateRepository) Update(ctx context.Context, id uuid.UUID, patch TemplatePatch) error {
	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.FormTemplate{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *gormTemplateRepository) GetField(ctx context.Context, fieldID uuid.UUID) (models.FormField, error) {
	var field models.FormField
	err := r.db.WithContext(ctx).First(&field, "id = ?", fieldID).Error
	return field, err
}

func (r *gormTemplateRepository) AddField(ctx context.Context, field *models.FormField) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *gormTemplateRepository) UpdateField(ctx context.Context, fieldID uuid.UUID, patch FieldPatch) error {
	updates := make(map[string]interface{})
	if patch.FieldName != nil {
		updates["field_name"] = *patch.FieldName
	}
	if patch.FieldType != nil {
		updates["field_type"] = *patch.FieldType
	}
	if patch.FieldLabel != nil {
		updates["field_label"] = *patch.FieldLabel
	}
	if patch.FieldOptions != nil {
		updates["field_options"] = patch.FieldOptions
	}
	if patch.ValidationRules != nil {
		updates["validation_rules"] = patch.ValidationRules
	}
	if patch.DocumentDataType != nil {
		updates["document_data_type"] = *patch.DocumentDataType
	}
	if patch.IsRequired != nil {
		updates["is_required"] = *patch.IsRequired
	}
	if patch.DisplayOrder != nil {
		updates["display_order"] = *patch.DisplayOrder
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.FormField{}).
		Where("id = ?", fieldID).
		Updates(updates).Error
}

func (r *gormTemplateRepository) DeleteField(ctx context.Context, fieldID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.FormField{}, "id = ?", fieldID).Error
}

type gormLinkRepository struct {
	db *gorm.DB
}

func (r *gormLinkRepository) List(ctx context.Context) ([]models.UploadLink, error) {
	var links []models.UploadLink
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error
	return links, err
}

func (r *gormLinkRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.UploadLink, error) {
	var links []models.UploadLink
	err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (r *gormLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (models.UploadLink, error) {
	var link models.UploadLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	return link, err
}

func (r *gormLinkRepository) GetByJobNumber(ctx context.Context, jobNumber string) (models.UploadLink, error) {
	var link models.UploadLink
	err := r.db.WithContext(ctx).First(&link, "job_number = ?", jobNumber).Error
	return link, err
}

func (r *gormLinkRepository) Create(ctx context.Context, link *models.UploadLink) error {
	// The unique index on job_number is the safety net for concurrent
	// creations; the service-level existence check is best-effort only.
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *gormLinkRepository) Update(ctx context.Context, id uuid.UUID, patch LinkPatch) error {
	updates := make(map[string]interface{})
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.ExpiresAt != nil {
		updates["expires_at"] = *patch.ExpiresAt
	}
	if patch.ClientEmail != nil {
		updates["client_email"] = *patch.ClientEmail
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.UploadLink{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *gormLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.UploadLink{}, "id = ?", id).Error
}

type gormSessionRepository struct {
	db *gorm.DB
}

func (r *gormSessionRepository) Create(ctx context.Context, session *models.UploadSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gormSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.UploadSession, error) {
	var session models.UploadSession
	err := r.db.WithContext(ctx).Preload("Files").First(&session, "id = ?", id).Error
	return session, err
}

func (r *gormSessionRepository) ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.UploadSession, error) {
	var sessions []models.UploadSession
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("upload_link_id = ?", linkID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormSessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	var sessions []models.UploadSession
	err := r.db.WithContext(ctx).
		Preload("Files").
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormSessionRepository) MergeData(ctx context.Context, id uuid.UUID, data map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.UploadSession
		if err := tx.First(&session, "id = ?", id).Error; err != nil {
			return err
		}
		merged := make(map[string]interface{}, len(session.FormData)+len(data))
		for k, v := range session.FormData {
			merged[k] = v
		}
		for k, v := range data {
			merged[k] = v
		}
		return tx.Model(&models.UploadSession{}).
			Where("id = ?", id).
			Update("form_data", merged).Error
	})
}

func (r *gormSessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, submittedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if submittedAt != nil {
		updates["submitted_at"] = *submittedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.UploadSession{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormSessionRepository) AddFile(ctx context.Context, file *models.UploadedFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *gormSessionRepository) GetFile(ctx context.Context, fileID uuid.UUID) (models.UploadedFile, error) {
	var file models.UploadedFile
	err := r.db.WithContext(ctx).First(&file, "id = ?", fileID).Error
	return file, err
}

func (r *gormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.UploadSession
		if err := tx.First(&session, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.UploadedFile{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UploadSession{}, "id = ?", id).Error
	})
}

type gormAccessLogRepository struct {
	db *gorm.DB
}

func (r *gormAccessLogRepository) Record(ctx context.Context, entry *models.FileAccessLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
