package requests

// CreateFormFieldRequest describes one field of a template being created,
// or a field added to an existing template.
type CreateFormFieldRequest struct {
	FieldName        string                 `json:"fieldName" validate:"required"`
	FieldType        string                 `json:"fieldType" validate:"required"`
	FieldLabel       string                 `json:"fieldLabel" validate:"required"`
	FieldOptions     map[string]interface{} `json:"fieldOptions,omitempty"`
	ValidationRules  map[string]interface{} `json:"validationRules,omitempty"`
	DocumentDataType *string                `json:"documentDataType,omitempty"`
	IsRequired       bool                   `json:"isRequired"`
	DisplayOrder     int                    `json:"displayOrder"`
}

// CreateFormTemplateRequest represents a template creation request
type CreateFormTemplateRequest struct {
	Name        string                   `json:"name" validate:"required"`
	Description string                   `json:"description,omitempty"`
	Fields      []CreateFormFieldRequest `json:"fields" validate:"required,min=1,dive"`
}

// UpdateFormTemplateRequest represents a partial template patch
type UpdateFormTemplateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdateFormFieldRequest represents a partial field patch
type UpdateFormFieldRequest struct {
	FieldName        *string                `json:"fieldName,omitempty"`
	FieldType        *string                `json:"fieldType,omitempty"`
	FieldLabel       *string                `json:"fieldLabel,omitempty"`
	FieldOptions     map[string]interface{} `json:"fieldOptions,omitempty"`
	ValidationRules  map[string]interface{} `json:"validationRules,omitempty"`
	DocumentDataType *string                `json:"documentDataType,omitempty"`
	IsRequired       *bool                  `json:"isRequired,omitempty"`
	DisplayOrder     *int                   `json:"displayOrder,omitempty"`
}
