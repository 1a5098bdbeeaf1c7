package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"collect-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewMemoryContainer builds the map-backed repository set used by tests
// and local development. Every store guards its maps with its own mutex,
// so each operation is atomic without cross-store locking.
func NewMemoryContainer() Container {
	return Container{
		Templates: &memoryTemplateRepository{
			templates: make(map[uuid.UUID]models.FormTemplate),
			fields:    make(map[uuid.UUID]models.FormField),
		},
		Links: &memoryLinkRepository{
			links: make(map[uuid.UUID]models.UploadLink),
		},
		Sessions: &memorySessionRepository{
			sessions: make(map[uuid.UUID]models.UploadSession),
			files:    make(map[uuid.UUID]models.UploadedFile),
		},
		AccessLogs: &memoryAccessLogRepository{},
	}
}

func stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func copyData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

type memoryTemplateRepository struct {
	mu        sync.RWMutex
	seq       uint64
	order     map[uuid.UUID]uint64
	templates map[uuid.UUID]models.FormTemplate
	fields    map[uuid.UUID]models.FormField
}

func (r *memoryTemplateRepository) next(id uuid.UUID) {
	if r.order == nil {
		r.order = make(map[uuid.UUID]uint64)
	}
	r.seq++
	r.order[id] = r.seq
}

func (r *memoryTemplateRepository) list(filter func(models.FormTemplate) bool) []models.FormTemplate {
	out := make([]models.FormTemplate, 0)
	for _, t := range r.templates {
		if t.IsActive && filter(t) {
			t.Fields = nil
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	return out
}

func (r *memoryTemplateRepository) List(ctx context.Context) ([]models.FormTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(models.FormTemplate) bool { return true }), nil
}

func (r *memoryTemplateRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.FormTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(t models.FormTemplate) bool { return t.CreatedBy == creatorID }), nil
}

func (r *memoryTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (models.FormTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[id]
	if !ok {
		return models.FormTemplate{}, gorm.ErrRecordNotFound
	}
	template.Fields = r.fieldsForTemplate(id)
	return template, nil
}

func (r *memoryTemplateRepository) fieldsForTemplate(templateID uuid.UUID) []models.FormField {
	fields := make([]models.FormField, 0)
	for _, f := range r.fields {
		if f.TemplateID == templateID {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].DisplayOrder < fields[j].DisplayOrder
	})
	return fields
}

func (r *memoryTemplateRepository) Create(ctx context.Context, template *models.FormTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&template.ID, &template.CreatedAt, &template.UpdatedAt)
	for i := range template.Fields {
		field := &template.Fields[i]
		field.TemplateID = template.ID
		stamp(&field.ID, &field.CreatedAt, &field.UpdatedAt)
		r.fields[field.ID] = *field
	}
	stored := *template
	stored.Fields = nil
	r.templates[template.ID] = stored
	r.next(template.ID)
	return nil
}

func (r *memoryTemplateRepository) Update(ctx context.Context, id uuid.UUID, patch TemplatePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if patch.Name != nil {
		template.Name = *patch.Name
	}
	if patch.Description != nil {
		template.Description = *patch.Description
	}
	if patch.IsActive != nil {
		template.IsActive = *patch.IsActive
	}
	template.UpdatedAt = time.Now().UTC()
	r.templates[id] = template
	return nil
}

func (r *memoryTemplateRepository) GetField(ctx context.Context, fieldID uuid.UUID) (models.FormField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	field, ok := r.fields[fieldID]
	if !ok {
		return models.FormField{}, gorm.ErrRecordNotFound
	}
	return field, nil
}

func (r *memoryTemplateRepository) AddField(ctx context.Context, field *models.FormField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[field.TemplateID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stamp(&field.ID, &field.CreatedAt, &field.UpdatedAt)
	r.fields[field.ID] = *field
	return nil
}

func (r *memoryTemplateRepository) UpdateField(ctx context.Context, fieldID uuid.UUID, patch FieldPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	field, ok := r.fields[fieldID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if patch.FieldName != nil {
		field.FieldName = *patch.FieldName
	}
	if patch.FieldType != nil {
		field.FieldType = *patch.FieldType
	}
	if patch.FieldLabel != nil {
		field.FieldLabel = *patch.FieldLabel
	}
	if patch.FieldOptions != nil {
		field.FieldOptions = copyData(patch.FieldOptions)
	}
	if patch.ValidationRules != nil {
		field.ValidationRules = copyData(patch.ValidationRules)
	}
	if patch.DocumentDataType != nil {
		documentType := *patch.DocumentDataType
		field.DocumentDataType = &documentType
	}
	if patch.IsRequired != nil {
		field.IsRequired = *patch.IsRequired
	}
	if patch.DisplayOrder != nil {
		field.DisplayOrder = *patch.DisplayOrder
	}
	field.UpdatedAt = time.Now().UTC()
	r.fields[fieldID] = field
	return nil
}

func (r *memoryTemplateRepository) DeleteField(ctx context.Context, fieldID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fields[fieldID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.fields, fieldID)
	return nil
}

type memoryLinkRepository struct {
	mu    sync.RWMutex
	seq   uint64
	order map[uuid.UUID]uint64
	links map[uuid.UUID]models.UploadLink
}

func (r *memoryLinkRepository) list(filter func(models.UploadLink) bool) []models.UploadLink {
	out := make([]models.UploadLink, 0)
	for _, link := range r.links {
		if filter(link) {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	return out
}

func (r *memoryLinkRepository) List(ctx context.Context) ([]models.UploadLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(models.UploadLink) bool { return true }), nil
}

func (r *memoryLinkRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.UploadLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(l models.UploadLink) bool { return l.CreatedBy == creatorID }), nil
}

func (r *memoryLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (models.UploadLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[id]
	if !ok {
		return models.UploadLink{}, gorm.ErrRecordNotFound
	}
	return link, nil
}

func (r *memoryLinkRepository) GetByJobNumber(ctx context.Context, jobNumber string) (models.UploadLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, link := range r.links {
		if link.JobNumber == jobNumber {
			return link, nil
		}
	}
	return models.UploadLink{}, gorm.ErrRecordNotFound
}

func (r *memoryLinkRepository) Create(ctx context.Context, link *models.UploadLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same guarantee the unique index provides in the SQL store.
	for _, existing := range r.links {
		if existing.JobNumber == link.JobNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&link.ID, &link.CreatedAt, &link.UpdatedAt)
	r.links[link.ID] = *link
	if r.order == nil {
		r.order = make(map[uuid.UUID]uint64)
	}
	r.seq++
	r.order[link.ID] = r.seq
	return nil
}

func (r *memoryLinkRepository) Update(ctx context.Context, id uuid.UUID, patch LinkPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if patch.Status != nil {
		link.Status = *patch.Status
	}
	if patch.ExpiresAt != nil {
		link.ExpiresAt = *patch.ExpiresAt
	}
	if patch.ClientEmail != nil {
		email := *patch.ClientEmail
		link.ClientEmail = &email
	}
	link.UpdatedAt = time.Now().UTC()
	r.links[id] = link
	return nil
}

func (r *memoryLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.links, id)
	return nil
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	seq      uint64
	order    map[uuid.UUID]uint64
	sessions map[uuid.UUID]models.UploadSession
	files    map[uuid.UUID]models.UploadedFile
}

func (r *memorySessionRepository) Create(ctx context.Context, session *models.UploadSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if session.Status == "" {
		session.Status = models.SessionStatusInProgress
	}
	stored := *session
	stored.FormData = copyData(session.FormData)
	stored.Files = nil
	r.sessions[session.ID] = stored
	if r.order == nil {
		r.order = make(map[uuid.UUID]uint64)
	}
	r.seq++
	r.order[session.ID] = r.seq
	return nil
}

func (r *memorySessionRepository) withFiles(session models.UploadSession) models.UploadSession {
	session.FormData = copyData(session.FormData)
	session.Files = make([]models.UploadedFile, 0)
	for _, f := range r.files {
		if f.SessionID == session.ID {
			session.Files = append(session.Files, f)
		}
	}
	sort.Slice(session.Files, func(i, j int) bool {
		return session.Files[i].CreatedAt.Before(session.Files[j].CreatedAt)
	})
	return session
}

func (r *memorySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.UploadSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return models.UploadSession{}, gorm.ErrRecordNotFound
	}
	return r.withFiles(session), nil
}

func (r *memorySessionRepository) list(filter func(models.UploadSession) bool) []models.UploadSession {
	out := make([]models.UploadSession, 0)
	for _, session := range r.sessions {
		if filter(session) {
			out = append(out, r.withFiles(session))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	return out
}

func (r *memorySessionRepository) ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.UploadSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(s models.UploadSession) bool { return s.UploadLinkID == linkID }), nil
}

func (r *memorySessionRepository) List(ctx context.Context) ([]models.UploadSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(models.UploadSession) bool { return true }), nil
}

func (r *memorySessionRepository) MergeData(ctx context.Context, id uuid.UUID, data map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	merged := make(map[string]interface{}, len(session.FormData)+len(data))
	for k, v := range session.FormData {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	session.FormData = merged
	session.UpdatedAt = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *memorySessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, submittedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.Status = status
	if submittedAt != nil {
		at := *submittedAt
		session.SubmittedAt = &at
	}
	session.UpdatedAt = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *memorySessionRepository) AddFile(ctx context.Context, file *models.UploadedFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[file.SessionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stamp(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	r.files[file.ID] = *file
	return nil
}

func (r *memorySessionRepository) GetFile(ctx context.Context, fileID uuid.UUID) (models.UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[fileID]
	if !ok {
		return models.UploadedFile{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for fileID, file := range r.files {
		if file.SessionID == id {
			delete(r.files, fileID)
		}
	}
	delete(r.sessions, id)
	return nil
}

type memoryAccessLogRepository struct {
	mu      sync.Mutex
	entries []models.FileAccessLog
}

func (r *memoryAccessLogRepository) Record(ctx context.Context, entry *models.FileAccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	r.entries = append(r.entries, *entry)
	return nil
}
