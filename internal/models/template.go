package models

import (
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-database/sql"
)

// Field types supported by form templates
const (
	FieldTypeText        = "text"
	FieldTypeEmail       = "email"
	FieldTypePhone       = "phone"
	FieldTypeDate        = "date"
	FieldTypeSelect      = "select"
	FieldTypeMultiselect = "multiselect"
	FieldTypeFile        = "file"
	FieldTypeTextarea    = "textarea"
	FieldTypeCheckbox    = "checkbox"
	FieldTypeRadio       = "radio"
	FieldTypeNumber      = "number"
)

// FieldTypes lists every valid form field type.
var FieldTypes = []string{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeDate,
	FieldTypeSelect,
	FieldTypeMultiselect,
	FieldTypeFile,
	FieldTypeTextarea,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeNumber,
}

// IsValidFieldType reports whether t is a known form field type.
func IsValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// FormTemplate is a named, ordered set of field definitions describing
// what an upload link's form will collect. Templates are soft-deleted
// by clearing IsActive.
type FormTemplate struct {
	sql.BaseModel
	Name        string      `json:"name" gorm:"not null"`
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive" gorm:"not null;default:true"`
	CreatedBy   uuid.UUID   `json:"createdBy" gorm:"type:uuid;not null;index"`
	Fields      []FormField `json:"fields" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

// FormField is one typed field of a template. Fields are always returned
// sorted ascending by DisplayOrder.
type FormField struct {
	sql.BaseModel
	TemplateID       uuid.UUID              `json:"templateId" gorm:"type:uuid;not null;index:idx_fields_template_order"`
	FieldName        string                 `json:"fieldName" gorm:"not null"`
	FieldType        string                 `json:"fieldType" gorm:"not null"`
	FieldLabel       string                 `json:"fieldLabel" gorm:"not null"`
	FieldOptions     map[string]interface{} `json:"fieldOptions,omitempty" gorm:"serializer:json"`
	ValidationRules  map[string]interface{} `json:"validationRules,omitempty" gorm:"serializer:json"`
	DocumentDataType *string                `json:"documentDataType,omitempty"`
	IsRequired       bool                   `json:"isRequired" gorm:"not null;default:false"`
	DisplayOrder     int                    `json:"displayOrder" gorm:"not null;index:idx_fields_template_order"`
}
