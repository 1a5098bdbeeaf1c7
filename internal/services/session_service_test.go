package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"
	"time"

	"collect-api/internal/auth"
	"collect-api/internal/config"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	repos repositories.Container
	svcs  *Container
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repositories.NewMemoryContainer()
	intakeConfig := config.IntakeConfig{
		MaxFileSize:           "10MB",
		MaxFilesPerSubmission: 20,
		Storage: config.LocalStorageConfig{
			UploadDir:  t.TempDir(),
			CreateDirs: true,
		},
		DocumentTypes: map[string]config.DocumentTypeRule{
			"resume":     {MimeTypes: []string{"application/pdf"}, MaxFileSize: "5MB"},
			"tax_return": {MimeTypes: []string{"application/pdf"}},
		},
	}
	env := &testEnv{
		repos: repos,
		svcs:  NewContainer(repos, intakeConfig),
		now:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svcs.Links.now = func() time.Time { return env.now }
	env.svcs.Sessions.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) createTemplate(t *testing.T, caller auth.Identity, fields ...requests.CreateFormFieldRequest) models.FormTemplate {
	t.Helper()
	template, err := e.svcs.Templates.Create(context.Background(), caller, requests.CreateFormTemplateRequest{
		Name:   "Onboarding",
		Fields: fields,
	})
	require.NoError(t, err)
	return template
}

func (e *testEnv) createLink(t *testing.T, caller auth.Identity, jobNumber string, templateID uuid.UUID) models.UploadLink {
	t.Helper()
	link, err := e.svcs.Links.Create(context.Background(), caller, requests.CreateUploadLinkRequest{
		JobNumber:      jobNumber,
		FormTemplateID: templateID,
	})
	require.NoError(t, err)
	return link
}

// makeFileHeader builds a real multipart file header so tests exercise
// the same Open path handlers see.
func makeFileHeader(t *testing.T, fieldName, fileName, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	headers := form.File[fieldName]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestCreateSessionRejectsExpiredLinkWithoutCreatingARecord(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	env.now = env.now.Add(31 * 24 * time.Hour)

	_, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	requireKind(t, err, KindValidation)

	sessions, err := env.svcs.Sessions.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestCreateSessionRejectsDisabledLink(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	disabled := models.LinkStatusDisabled
	_, err := env.svcs.Links.Update(context.Background(), caller, link.ID, requests.UpdateUploadLinkRequest{Status: &disabled})
	require.NoError(t, err)

	_, err = env.svcs.Sessions.Create(context.Background(), link.ID)
	requireKind(t, err, KindValidation)
}

func TestUpdateDataShallowMerges(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	_, err = env.svcs.Sessions.UpdateData(context.Background(), session.ID, map[string]interface{}{"a": "1"})
	require.NoError(t, err)
	updated, err := env.svcs.Sessions.UpdateData(context.Background(), session.ID, map[string]interface{}{"a": "2", "b": "3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"a": "2", "b": "3"}, updated.FormData)
}

func TestDeleteSessionCascadesToFiles(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	file := models.UploadedFile{
		SessionID:    session.ID,
		FieldName:    "resume",
		OriginalName: "resume.pdf",
		StoredName:   "stored.pdf",
		FilePath:     "/tmp/stored.pdf",
		MimeType:     "application/pdf",
		FileSize:     100,
	}
	require.NoError(t, env.repos.Sessions.AddFile(context.Background(), &file))

	require.NoError(t, env.svcs.Sessions.Delete(context.Background(), session.ID))

	_, err = env.svcs.Sessions.Get(context.Background(), session.ID)
	requireKind(t, err, KindNotFound)
	_, err = env.svcs.Sessions.GetFile(context.Background(), file.ID)
	requireKind(t, err, KindNotFound)
}

func TestSubmitCompletesSessionWithFilesAndFormData(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	resumeType := "resume"
	template := env.createTemplate(t, caller,
		textField("full_name", 1),
		requests.CreateFormFieldRequest{
			FieldName:        "resume",
			FieldType:        models.FieldTypeFile,
			FieldLabel:       "Resume",
			DocumentDataType: &resumeType,
			DisplayOrder:     2,
		},
	)
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	formData := map[string]string{
		"full_name":          "Jane Doe",
		"_csrf":              "internal",
		"resume_document_type": "ignored",
	}
	files := []requests.UploadPart{{
		FieldName: "resume",
		File:      makeFileHeader(t, "resume", "resume.pdf", "application/pdf", []byte("%PDF-1.4 test")),
	}}

	submitted, err := env.svcs.Sessions.Submit(context.Background(), session.ID, formData, files)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusCompleted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, env.now, *submitted.SubmittedAt)

	// Companion and internal keys are stripped before the merge.
	assert.Equal(t, map[string]interface{}{"full_name": "Jane Doe"}, submitted.FormData)

	require.Len(t, submitted.Files, 1)
	stored := submitted.Files[0]
	assert.Equal(t, "resume", stored.FieldName)
	assert.Equal(t, "resume.pdf", stored.OriginalName)
	assert.Equal(t, "application/pdf", stored.MimeType)
	require.NotNil(t, stored.DocumentType)
	assert.Equal(t, "resume", *stored.DocumentType)

	content, err := os.ReadFile(stored.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), content)
}

func TestSubmitUsesCompanionKeyWhenFieldHasNoDocumentType(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller,
		requests.CreateFormFieldRequest{
			FieldName:    "document",
			FieldType:    models.FieldTypeFile,
			FieldLabel:   "Document",
			DisplayOrder: 1,
		},
	)
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	formData := map[string]string{"document_document_type": "tax_return"}
	files := []requests.UploadPart{{
		FieldName: "document",
		File:      makeFileHeader(t, "document", "w2.pdf", "application/pdf", []byte("%PDF-1.4")),
	}}

	submitted, err := env.svcs.Sessions.Submit(context.Background(), session.ID, formData, files)
	require.NoError(t, err)
	require.Len(t, submitted.Files, 1)
	require.NotNil(t, submitted.Files[0].DocumentType)
	assert.Equal(t, "tax_return", *submitted.Files[0].DocumentType)
}

func TestSubmitRejectsDisallowedMimeType(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	taxType := "tax_return"
	template := env.createTemplate(t, caller,
		requests.CreateFormFieldRequest{
			FieldName:        "tax_form",
			FieldType:        models.FieldTypeFile,
			FieldLabel:       "Tax Form",
			DocumentDataType: &taxType,
			DisplayOrder:     1,
		},
	)
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	files := []requests.UploadPart{{
		FieldName: "tax_form",
		File:      makeFileHeader(t, "tax_form", "photo.png", "image/png", []byte("png")),
	}}

	_, err = env.svcs.Sessions.Submit(context.Background(), session.ID, map[string]string{}, files)
	requireKind(t, err, KindValidation)

	// The session stays in progress after a rejected submission.
	current, err := env.svcs.Sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusInProgress, current.Status)
}

func TestSubmitRejectsWhenLinkExpiredMidSession(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	env.now = env.now.Add(31 * 24 * time.Hour)

	_, err = env.svcs.Sessions.Submit(context.Background(), session.ID, map[string]string{"full_name": "Jane"}, nil)
	requireKind(t, err, KindValidation)
}

func TestSubmitRejectsSessionNotInProgress(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)
	require.NoError(t, env.svcs.Sessions.Complete(context.Background(), session.ID))

	_, err = env.svcs.Sessions.Submit(context.Background(), session.ID, map[string]string{}, nil)
	requireKind(t, err, KindValidation)
}

func TestMarkFailed(t *testing.T) {
	env := newTestEnv(t)
	caller := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, caller, textField("full_name", 1))
	link := env.createLink(t, caller, "JOB-100", template.ID)

	session, err := env.svcs.Sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	require.NoError(t, env.svcs.Sessions.MarkFailed(context.Background(), session.ID))

	current, err := env.svcs.Sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFailed, current.Status)
	assert.Nil(t, current.SubmittedAt)

	err = env.svcs.Sessions.MarkFailed(context.Background(), uuid.New())
	requireKind(t, err, KindNotFound)
}

type recordingAccessLog struct {
	entries []models.FileAccessLog
}

func (r *recordingAccessLog) Record(ctx context.Context, entry *models.FileAccessLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func TestFileForDownloadEnforcesLinkOwnershipAndAudits(t *testing.T) {
	env := newTestEnv(t)
	auditLog := &recordingAccessLog{}
	sessions := NewSessionService(env.repos.Sessions, env.svcs.Links, env.repos.Templates, auditLog, env.svcs.Intake)

	owner := testIdentity(auth.RoleRecruiter)
	other := testIdentity(auth.RoleRecruiter)
	template := env.createTemplate(t, owner, textField("full_name", 1))
	link := env.createLink(t, owner, "JOB-100", template.ID)

	session, err := sessions.Create(context.Background(), link.ID)
	require.NoError(t, err)

	file := models.UploadedFile{
		SessionID:    session.ID,
		FieldName:    "resume",
		OriginalName: "resume.pdf",
		StoredName:   "stored.pdf",
		FilePath:     "/tmp/stored.pdf",
		MimeType:     "application/pdf",
		FileSize:     100,
	}
	require.NoError(t, env.repos.Sessions.AddFile(context.Background(), &file))

	_, err = sessions.FileForDownload(context.Background(), other, file.ID, "10.0.0.1", "test-agent")
	requireKind(t, err, KindAccessDenied)

	fetched, err := sessions.FileForDownload(context.Background(), owner, file.ID, "10.0.0.2", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, file.ID, fetched.ID)

	require.Len(t, auditLog.entries, 2)
	assert.Equal(t, models.AccessActionDenied, auditLog.entries[0].Action)
	require.NotNil(t, auditLog.entries[0].UserID)
	assert.Equal(t, other.ID, *auditLog.entries[0].UserID)
	assert.Equal(t, models.AccessActionDownload, auditLog.entries[1].Action)
}
