// Package validation guards requests client-side so malformed edits
// never reach the network.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

const createProjectSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"customer_name": {"type": "string", "minLength": 1},
		"product_type": {"type": "string", "minLength": 1},
		"community_url": {"type": "string"}
	},
	"required": ["name", "customer_name", "product_type"]
}`

const recordTypeSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"category": {"type": "string"},
		"description": {"type": "string"},
		"form_fields": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"label": {"type": "string", "minLength": 1},
					"field_type": {"type": "string", "minLength": 1}
				},
				"required": ["label", "field_type"]
			}
		},
		"workflow_steps": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"order": {"type": "integer", "minimum": 0}
				},
				"required": ["name"]
			}
		},
		"fees": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"amount": {"type": "number", "minimum": 0}
				},
				"required": ["name", "amount"]
			}
		}
	},
	"required": ["name"]
}`

const departmentSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"}
	},
	"required": ["name"]
}`

const userRoleSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"permissions": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["name"]
}`

// ValidateCreateProject rejects creation requests missing a name,
// customer name or product type before any network call is made.
func ValidateCreateProject(req *models.CreateProjectRequest) error {
	return validate(createProjectSchema, req)
}

func ValidateRecordType(rt *models.RecordType) error {
	return validate(recordTypeSchema, rt)
}

func ValidateDepartment(dep *models.Department) error {
	return validate(departmentSchema, dep)
}

func ValidateUserRole(role *models.UserRole) error {
	return validate(userRoleSchema, role)
}

func validate(schema string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return commonerrors.NewValidationFailedError(fmt.Sprintf("marshal: %v", err))
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return commonerrors.NewValidationFailedError(err.Error())
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return commonerrors.NewValidationFailedError(strings.Join(msgs, "; "))
	}

	return nil
}
