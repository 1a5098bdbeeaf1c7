package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"collect-api/internal/auth"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService manages upload sessions and the files received through
// them. Sessions are opened and submitted by unauthenticated clients, so
// every entry point re-validates the link first.
type SessionService struct {
	sessions   repositories.SessionRepository
	links      *LinkService
	templates  repositories.TemplateRepository
	accessLogs repositories.AccessLogRepository
	intake     *IntakeService
	now        func() time.Time
}

func NewSessionService(
	sessions repositories.SessionRepository,
	links *LinkService,
	templates repositories.TemplateRepository,
	accessLogs repositories.AccessLogRepository,
	intake *IntakeService,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		links:      links,
		templates:  templates,
		accessLogs: accessLogs,
		intake:     intake,
		now:        time.Now,
	}
}

// Create opens a session against a link. The link is validated before any
// record is written, so an expired or disabled link never produces a
// session.
func (s *SessionService) Create(ctx context.Context, linkID uuid.UUID) (models.UploadSession, error) {
	validation, err := s.links.Validate(ctx, linkID)
	if err != nil {
		return models.UploadSession{}, err
	}
	if !validation.IsValid {
		return models.UploadSession{}, validationError(validation.Reason)
	}

	session := models.UploadSession{
		UploadLinkID: linkID,
		FormData:     map[string]interface{}{},
		Status:       models.SessionStatusInProgress,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		log.Printf("Failed to create upload session: %v", err)
		return models.UploadSession{}, storageError("Failed to create upload session", err)
	}
	return session, nil
}

// Get returns a session with its files.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (models.UploadSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UploadSession{}, notFoundError("Upload session not found")
		}
		log.Printf("Failed to fetch upload session %s: %v", id, err)
		return models.UploadSession{}, storageError("Failed to fetch upload session", err)
	}
	return session, nil
}

// ListForLink returns every session opened against a link.
func (s *SessionService) ListForLink(ctx context.Context, linkID uuid.UUID) ([]models.UploadSession, error) {
	sessions, err := s.sessions.ListByLink(ctx, linkID)
	if err != nil {
		log.Printf("Failed to list sessions for link %s: %v", linkID, err)
		return nil, storageError("Failed to fetch upload sessions", err)
	}
	return sessions, nil
}

// ListAll returns every session in the system.
func (s *SessionService) ListAll(ctx context.Context) ([]models.UploadSession, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		log.Printf("Failed to list upload sessions: %v", err)
		return nil, storageError("Failed to fetch upload sessions", err)
	}
	return sessions, nil
}

// UpdateData shallow-merges data into the session's form data.
func (s *SessionService) UpdateData(ctx context.Context, id uuid.UUID, data map[string]interface{}) (models.UploadSession, error) {
	if err := s.sessions.MergeData(ctx, id, data); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UploadSession{}, notFoundError("Upload session not found")
		}
		log.Printf("Failed to update session data %s: %v", id, err)
		return models.UploadSession{}, storageError("Failed to update session data", err)
	}
	return s.Get(ctx, id)
}

// Complete marks a session completed and stamps the submission time.
func (s *SessionService) Complete(ctx context.Context, id uuid.UUID) error {
	submittedAt := s.now().UTC()
	return s.setStatus(ctx, id, models.SessionStatusCompleted, &submittedAt)
}

// MarkFailed moves a session to the failed state.
func (s *SessionService) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.SessionStatusFailed, nil)
}

func (s *SessionService) setStatus(ctx context.Context, id uuid.UUID, status string, submittedAt *time.Time) error {
	if err := s.sessions.SetStatus(ctx, id, status, submittedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("Upload session not found")
		}
		log.Printf("Failed to set session %s status to %s: %v", id, status, err)
		return storageError("Failed to update upload session", err)
	}
	return nil
}

// Delete removes a session and all files it owns.
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		log.Printf("Failed to delete upload session %s: %v", id, err)
		return storageError("Failed to delete upload session", err)
	}
	return nil
}

// GetFile returns a single uploaded file record.
func (s *SessionService) GetFile(ctx context.Context, fileID uuid.UUID) (models.UploadedFile, error) {
	file, err := s.sessions.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UploadedFile{}, notFoundError("File not found")
		}
		log.Printf("Failed to fetch uploaded file %s: %v", fileID, err)
		return models.UploadedFile{}, storageError("Failed to fetch uploaded file", err)
	}
	return file, nil
}

// Submit finalizes a session: validates and stores the uploaded files,
// merges the submitted form data and marks the session completed. The
// link is re-validated so a link that expired mid-session rejects the
// submission.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, formData map[string]string, files []requests.UploadPart) (models.UploadSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return models.UploadSession{}, err
	}
	if session.Status != models.SessionStatusInProgress {
		return models.UploadSession{}, validationError("Upload session is no longer in progress")
	}

	validation, err := s.links.Validate(ctx, session.UploadLinkID)
	if err != nil {
		return models.UploadSession{}, err
	}
	if !validation.IsValid {
		return models.UploadSession{}, validationError(validation.Reason)
	}

	template, err := s.templates.GetByID(ctx, validation.Link.FormTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UploadSession{}, notFoundError("Form template not found")
		}
		log.Printf("Failed to fetch template for link %s: %v", session.UploadLinkID, err)
		return models.UploadSession{}, storageError("Failed to process submission", err)
	}

	if len(files) > s.intake.MaxFiles() {
		return models.UploadSession{}, validationError("Too many files in one submission")
	}

	fieldsByName := make(map[string]models.FormField, len(template.Fields))
	for _, field := range template.Fields {
		fieldsByName[field.FieldName] = field
	}

	for _, part := range files {
		if part.File == nil {
			return models.UploadSession{}, validationError("Missing file content for " + part.FieldName)
		}

		docType := resolveDocumentType(fieldsByName, formData, part.FieldName)
		if err := s.intake.ValidateUpload(part.File, docType); err != nil {
			return models.UploadSession{}, err
		}

		filePath, storedName, err := s.intake.StoreFile(part.File)
		if err != nil {
			return models.UploadSession{}, err
		}

		file := models.UploadedFile{
			SessionID:    session.ID,
			FieldName:    part.FieldName,
			OriginalName: part.File.Filename,
			StoredName:   storedName,
			FilePath:     filePath,
			MimeType:     part.File.Header.Get("Content-Type"),
			FileSize:     part.File.Size,
			DocumentType: docType,
		}
		if err := s.sessions.AddFile(ctx, &file); err != nil {
			log.Printf("Failed to record uploaded file for session %s: %v", id, err)
			return models.UploadSession{}, storageError("Failed to record uploaded file", err)
		}
	}

	if err := s.sessions.MergeData(ctx, id, cleanFormData(formData)); err != nil {
		log.Printf("Failed to merge form data for session %s: %v", id, err)
		return models.UploadSession{}, storageError("Failed to save form data", err)
	}
	if err := s.Complete(ctx, id); err != nil {
		return models.UploadSession{}, err
	}
	return s.Get(ctx, id)
}

// resolveDocumentType picks the document type for a file: the template
// field's configured type wins, then the companion <field>_document_type
// form value if the client sent one.
func resolveDocumentType(fields map[string]models.FormField, formData map[string]string, fieldName string) *string {
	if field, ok := fields[fieldName]; ok && field.DocumentDataType != nil && *field.DocumentDataType != "" {
		return field.DocumentDataType
	}
	if value, ok := formData[fieldName+"_document_type"]; ok && value != "" {
		return &value
	}
	return nil
}

// cleanFormData drops companion document type keys and internal
// underscore-prefixed keys before the merge, keeping only the answers.
func cleanFormData(formData map[string]string) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(formData))
	for key, value := range formData {
		if strings.HasSuffix(key, "_document_type") || strings.HasPrefix(key, "_") {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

// FileForDownload resolves a file for an authenticated download, walking
// file to session to link so the link's ownership rule decides access.
// Denied attempts are recorded in the audit log.
func (s *SessionService) FileForDownload(ctx context.Context, caller auth.Identity, fileID uuid.UUID, ipAddress, userAgent string) (models.UploadedFile, error) {
	file, err := s.GetFile(ctx, fileID)
	if err != nil {
		return models.UploadedFile{}, err
	}
	session, err := s.Get(ctx, file.SessionID)
	if err != nil {
		return models.UploadedFile{}, err
	}
	if _, err := s.links.Get(ctx, caller, session.UploadLinkID); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Kind == KindAccessDenied {
			s.RecordFileAccess(ctx, fileID, &caller.ID, models.AccessActionDenied, ipAddress, userAgent)
		}
		return models.UploadedFile{}, err
	}

	s.RecordFileAccess(ctx, fileID, &caller.ID, models.AccessActionDownload, ipAddress, userAgent)
	return file, nil
}

// RecordFileAccess appends an audit entry. Audit writes never fail the
// request; failures are only logged.
func (s *SessionService) RecordFileAccess(ctx context.Context, fileID uuid.UUID, userID *uuid.UUID, action, ipAddress, userAgent string) {
	entry := models.FileAccessLog{
		FileID:    fileID,
		UserID:    userID,
		Action:    action,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.accessLogs.Record(ctx, &entry); err != nil {
		log.Printf("Failed to record file access (%s on %s): %v", action, fileID, err)
	}
}
