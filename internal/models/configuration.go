// internal/models/configuration.go
package models

// Configuration is the AI-generated product configuration attached to a
// project once analysis completes.
type Configuration struct {
	RecordTypes []RecordType `json:"record_types"`
	Departments []Department `json:"departments"`
	UserRoles   []UserRole   `json:"user_roles"`
	Summary     string       `json:"summary,omitempty"`
}

// RecordType bundles everything needed to configure one permit, license
// or code-enforcement case type.
type RecordType struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Category          string         `json:"category,omitempty"`
	Description       string         `json:"description,omitempty"`
	FormFields        []FormField    `json:"form_fields,omitempty"`
	WorkflowSteps     []WorkflowStep `json:"workflow_steps,omitempty"`
	Fees              []Fee          `json:"fees,omitempty"`
	RequiredDocuments []Document     `json:"required_documents,omitempty"`
}

type FormField struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	FieldType  string      `json:"field_type"`
	Required   bool        `json:"required"`
	Options    []string    `json:"options,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

type WorkflowStep struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Department string      `json:"department,omitempty"`
	Order      int         `json:"order"`
	Conditions []Condition `json:"conditions,omitempty"`
}

type Fee struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Amount     float64     `json:"amount"`
	Unit       string      `json:"unit,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

type Document struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Condition is a field-level visibility/applicability rule attached to
// form fields, workflow steps, fees and documents.
type Condition struct {
	SourceField string `json:"source_field"`
	Operator    string `json:"operator"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UserRole struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}
