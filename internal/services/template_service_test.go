package services

import (
	"context"
	"testing"

	"collect-api/internal/auth"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateService() *TemplateService {
	repos := repositories.NewMemoryContainer()
	return NewTemplateService(repos.Templates)
}

func templateInput(name string, fields ...requests.CreateFormFieldRequest) requests.CreateFormTemplateRequest {
	return requests.CreateFormTemplateRequest{Name: name, Fields: fields}
}

func textField(name string, order int) requests.CreateFormFieldRequest {
	return requests.CreateFormFieldRequest{
		FieldName:    name,
		FieldType:    models.FieldTypeText,
		FieldLabel:   name,
		DisplayOrder: order,
	}
}

func TestCreateTemplateRequiresAtLeastOneField(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	_, err := svc.Create(context.Background(), caller, templateInput("Onboarding"))
	requireKind(t, err, KindValidation)

	templates, err := svc.List(context.Background(), caller)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestCreateTemplateRejectsUnknownFieldType(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	input := templateInput("Onboarding", requests.CreateFormFieldRequest{
		FieldName:  "signature",
		FieldType:  "drawing",
		FieldLabel: "Signature",
	})
	_, err := svc.Create(context.Background(), caller, input)
	requireKind(t, err, KindValidation)
}

func TestCreateTemplateAcceptsEveryKnownFieldType(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	fields := make([]requests.CreateFormFieldRequest, 0, len(models.FieldTypes))
	for i, fieldType := range models.FieldTypes {
		fields = append(fields, requests.CreateFormFieldRequest{
			FieldName:    fieldType + "_field",
			FieldType:    fieldType,
			FieldLabel:   fieldType,
			DisplayOrder: i,
		})
	}

	created, err := svc.Create(context.Background(), caller, templateInput("All Types", fields...))
	require.NoError(t, err)
	assert.Len(t, created.Fields, len(models.FieldTypes))

	// Numeric answers are a regular typed field like any other.
	assert.True(t, models.IsValidFieldType(models.FieldTypeNumber))
}

func TestGetTemplateSortsFieldsByDisplayOrder(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	created, err := svc.Create(context.Background(), caller, templateInput("Onboarding",
		textField("second", 2),
		textField("first", 1),
		textField("third", 3),
	))
	require.NoError(t, err)

	template, err := svc.Get(context.Background(), caller, created.ID)
	require.NoError(t, err)
	require.Len(t, template.Fields, 3)
	assert.Equal(t, "first", template.Fields[0].FieldName)
	assert.Equal(t, "second", template.Fields[1].FieldName)
	assert.Equal(t, "third", template.Fields[2].FieldName)
}

func TestListTemplatesFiltersByCreatorForNonElevatedRoles(t *testing.T) {
	svc := newTemplateService()
	recruiter := testIdentity(auth.RoleRecruiter)
	manager := testIdentity(auth.RoleManager)
	admin := testIdentity(auth.RoleAdmin)

	_, err := svc.Create(context.Background(), recruiter, templateInput("Recruiter Form", textField("a", 1)))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), manager, templateInput("Manager Form", textField("b", 1)))
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), recruiter)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Recruiter Form", mine[0].Name)

	all, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetTemplateDeniedForOtherCreator(t *testing.T) {
	svc := newTemplateService()
	owner := testIdentity(auth.RoleRecruiter)
	other := testIdentity(auth.RoleRecruiter)
	compliance := testIdentity(auth.RoleCompliance)

	created, err := svc.Create(context.Background(), owner, templateInput("Onboarding", textField("a", 1)))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, created.ID)
	requireKind(t, err, KindAccessDenied)

	_, err = svc.Get(context.Background(), compliance, created.ID)
	assert.NoError(t, err)
}

func TestDeleteTemplateDeactivates(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	created, err := svc.Create(context.Background(), caller, templateInput("Onboarding", textField("a", 1)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), caller, created.ID))

	templates, err := svc.List(context.Background(), caller)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestFieldOperationsRecheckTemplateOwnership(t *testing.T) {
	svc := newTemplateService()
	owner := testIdentity(auth.RoleRecruiter)
	other := testIdentity(auth.RoleRecruiter)

	created, err := svc.Create(context.Background(), owner, templateInput("Onboarding", textField("a", 1)))
	require.NoError(t, err)
	fieldID := created.Fields[0].ID

	label := "Renamed"
	err = svc.UpdateField(context.Background(), other, fieldID, requests.UpdateFormFieldRequest{FieldLabel: &label})
	requireKind(t, err, KindAccessDenied)

	err = svc.DeleteField(context.Background(), other, fieldID)
	requireKind(t, err, KindAccessDenied)

	err = svc.UpdateField(context.Background(), owner, fieldID, requests.UpdateFormFieldRequest{FieldLabel: &label})
	require.NoError(t, err)

	template, err := svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", template.Fields[0].FieldLabel)
}

func TestAddFieldValidatesType(t *testing.T) {
	svc := newTemplateService()
	caller := testIdentity(auth.RoleRecruiter)

	created, err := svc.Create(context.Background(), caller, templateInput("Onboarding", textField("a", 1)))
	require.NoError(t, err)

	_, err = svc.AddField(context.Background(), caller, created.ID, requests.CreateFormFieldRequest{
		FieldName:  "resume",
		FieldType:  "attachment",
		FieldLabel: "Resume",
	})
	requireKind(t, err, KindValidation)

	field, err := svc.AddField(context.Background(), caller, created.ID, requests.CreateFormFieldRequest{
		FieldName:    "resume",
		FieldType:    models.FieldTypeFile,
		FieldLabel:   "Resume",
		DisplayOrder: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, field.TemplateID)
}
