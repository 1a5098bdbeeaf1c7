package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"collect-api/internal/auth"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateService manages form templates and their field definitions.
type TemplateService struct {
	templates repositories.TemplateRepository
}

func NewTemplateService(templates repositories.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// List returns active templates visible to the caller, newest first.
func (s *TemplateService) List(ctx context.Context, caller auth.Identity) ([]models.FormTemplate, error) {
	var (
		templates []models.FormTemplate
		err       error
	)
	if caller.IsElevated() {
		templates, err = s.templates.List(ctx)
	} else {
		templates, err = s.templates.ListByCreator(ctx, caller.ID)
	}
	if err != nil {
		log.Printf("Failed to list form templates: %v", err)
		return nil, storageError("Failed to fetch form templates", err)
	}
	return templates, nil
}

// Get returns a template with its fields sorted by display order.
func (s *TemplateService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (models.FormTemplate, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormTemplate{}, notFoundError("Template not found")
		}
		log.Printf("Failed to fetch form template %s: %v", id, err)
		return models.FormTemplate{}, storageError("Failed to fetch form template", err)
	}
	if !canAccess(caller, template.CreatedBy) {
		return models.FormTemplate{}, accessDeniedError("Access denied to this template")
	}
	return template, nil
}

func validateFieldInput(in requests.CreateFormFieldRequest) error {
	if in.FieldName == "" || in.FieldType == "" || in.FieldLabel == "" {
		return validationError("Each field requires a name, type and label")
	}
	if !models.IsValidFieldType(in.FieldType) {
		return validationError(fmt.Sprintf("Unknown field type: %s", in.FieldType))
	}
	return nil
}

func fieldFromInput(templateID uuid.UUID, in requests.CreateFormFieldRequest) models.FormField {
	return models.FormField{
		TemplateID:       templateID,
		FieldName:        in.FieldName,
		FieldType:        in.FieldType,
		FieldLabel:       in.FieldLabel,
		FieldOptions:     in.FieldOptions,
		ValidationRules:  in.ValidationRules,
		DocumentDataType: in.DocumentDataType,
		IsRequired:       in.IsRequired,
		DisplayOrder:     in.DisplayOrder,
	}
}

// Create persists a template and its fields atomically.
func (s *TemplateService) Create(ctx context.Context, caller auth.Identity, in requests.CreateFormTemplateRequest) (models.FormTemplate, error) {
	if in.Name == "" {
		return models.FormTemplate{}, validationError("Template name is required")
	}
	if len(in.Fields) == 0 {
		return models.FormTemplate{}, validationError("Template requires at least one field")
	}

	template := models.FormTemplate{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		CreatedBy:   caller.ID,
	}
	for _, fieldInput := range in.Fields {
		if err := validateFieldInput(fieldInput); err != nil {
			return models.FormTemplate{}, err
		}
		template.Fields = append(template.Fields, fieldFromInput(uuid.Nil, fieldInput))
	}

	if err := s.templates.Create(ctx, &template); err != nil {
		log.Printf("Failed to create form template: %v", err)
		return models.FormTemplate{}, storageError("Failed to create form template", err)
	}
	return s.Get(ctx, caller, template.ID)
}

// Update patches name, description and the active flag.
func (s *TemplateService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in requests.UpdateFormTemplateRequest) (models.FormTemplate, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return models.FormTemplate{}, err
	}

	patch := repositories.TemplatePatch{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    in.IsActive,
	}
	if in.Name != nil && *in.Name == "" {
		return models.FormTemplate{}, validationError("Template name cannot be empty")
	}
	if err := s.templates.Update(ctx, id, patch); err != nil {
		log.Printf("Failed to update form template %s: %v", id, err)
		return models.FormTemplate{}, storageError("Failed to update form template", err)
	}
	return s.Get(ctx, caller, id)
}

// Delete soft-deletes a template by clearing its active flag.
func (s *TemplateService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	inactive := false
	if err := s.templates.Update(ctx, id, repositories.TemplatePatch{IsActive: &inactive}); err != nil {
		log.Printf("Failed to delete form template %s: %v", id, err)
		return storageError("Failed to delete form template", err)
	}
	return nil
}

// AddField appends a field to an existing template.
func (s *TemplateService) AddField(ctx context.Context, caller auth.Identity, templateID uuid.UUID, in requests.CreateFormFieldRequest) (models.FormField, error) {
	if _, err := s.Get(ctx, caller, templateID); err != nil {
		return models.FormField{}, err
	}
	if err := validateFieldInput(in); err != nil {
		return models.FormField{}, err
	}

	field := fieldFromInput(templateID, in)
	if err := s.templates.AddField(ctx, &field); err != nil {
		log.Printf("Failed to add field to template %s: %v", templateID, err)
		return models.FormField{}, storageError("Failed to add form field", err)
	}
	return field, nil
}

// resolveFieldTemplate looks up a field's owning template and re-runs the
// template access check, so field permissions are always evaluated against
// the template owner.
func (s *TemplateService) resolveFieldTemplate(ctx context.Context, caller auth.Identity, fieldID uuid.UUID) (models.FormField, error) {
	field, err := s.templates.GetField(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormField{}, notFoundError("Field not found")
		}
		log.Printf("Failed to fetch form field %s: %v", fieldID, err)
		return models.FormField{}, storageError("Failed to fetch form field", err)
	}
	if _, err := s.Get(ctx, caller, field.TemplateID); err != nil {
		return models.FormField{}, err
	}
	return field, nil
}

// UpdateField patches any attribute of a field.
func (s *TemplateService) UpdateField(ctx context.Context, caller auth.Identity, fieldID uuid.UUID, in requests.UpdateFormFieldRequest) error {
	if _, err := s.resolveFieldTemplate(ctx, caller, fieldID); err != nil {
		return err
	}
	if in.FieldType != nil && !models.IsValidFieldType(*in.FieldType) {
		return validationError(fmt.Sprintf("Unknown field type: %s", *in.FieldType))
	}

	patch := repositories.FieldPatch{
		FieldName:        in.FieldName,
		FieldType:        in.FieldType,
		FieldLabel:       in.FieldLabel,
		FieldOptions:     in.FieldOptions,
		ValidationRules:  in.ValidationRules,
		DocumentDataType: in.DocumentDataType,
		IsRequired:       in.IsRequired,
		DisplayOrder:     in.DisplayOrder,
	}
	if err := s.templates.UpdateField(ctx, fieldID, patch); err != nil {
		log.Printf("Failed to update form field %s: %v", fieldID, err)
		return storageError("Failed to update form field", err)
	}
	return nil
}

// DeleteField removes a field from its template.
func (s *TemplateService) DeleteField(ctx context.Context, caller auth.Identity, fieldID uuid.UUID) error {
	if _, err := s.resolveFieldTemplate(ctx, caller, fieldID); err != nil {
		return err
	}
	if err := s.templates.DeleteField(ctx, fieldID); err != nil {
		log.Printf("Failed to delete form field %s: %v", fieldID, err)
		return storageError("Failed to delete form field", err)
	}
	return nil
}
