// internal/api/configuration.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/validation"
)

// Configuration edits are immediate round trips; the server returns the
// updated configuration and callers re-render from that object rather
// than mutating local state.

func (c *Client) configPath(projectID string, parts ...string) string {
	path := "/projects/" + url.PathEscape(projectID) + "/configurations"
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

// GetConfiguration fetches the project's current configuration.
func (c *Client) GetConfiguration(ctx context.Context, projectID string) (*models.Configuration, error) {
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodGet, c.configPath(projectID), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CreateRecordType adds a record type and returns the updated
// configuration.
func (c *Client) CreateRecordType(ctx context.Context, projectID string, rt models.RecordType) (*models.Configuration, error) {
	if err := validation.ValidateRecordType(&rt); err != nil {
		return nil, err
	}
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodPost, c.configPath(projectID, "record-types"), rt, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateRecordType replaces a record type and returns the updated
// configuration.
func (c *Client) UpdateRecordType(ctx context.Context, projectID string, rt models.RecordType) (*models.Configuration, error) {
	if err := validation.ValidateRecordType(&rt); err != nil {
		return nil, err
	}
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodPut, c.configPath(projectID, "record-types", rt.ID), rt, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteRecordType removes a record type.
func (c *Client) DeleteRecordType(ctx context.Context, projectID, recordTypeID string) error {
	return c.doJSON(ctx, http.MethodDelete, c.configPath(projectID, "record-types", recordTypeID), nil, nil)
}

// CreateDepartment adds a department.
func (c *Client) CreateDepartment(ctx context.Context, projectID string, dep models.Department) (*models.Configuration, error) {
	if err := validation.ValidateDepartment(&dep); err != nil {
		return nil, err
	}
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodPost, c.configPath(projectID, "departments"), dep, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateDepartment replaces a department.
func (c *Client) UpdateDepartment(ctx context.Context, projectID string, dep models.Department) (*models.Configuration, error) {
	if err := validation.ValidateDepartment(&dep); err != nil {
		return nil, err
	}
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodPut, c.configPath(projectID, "departments", dep.ID), dep, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, projectID, departmentID string) error {
	return c.doJSON(ctx, http.MethodDelete, c.configPath(projectID, "departments", departmentID), nil, nil)
}

// UpdateUserRole replaces a user role.
func (c *Client) UpdateUserRole(ctx context.Context, projectID string, role models.UserRole) (*models.Configuration, error) {
	if err := validation.ValidateUserRole(&role); err != nil {
		return nil, err
	}
	var cfg models.Configuration
	if err := c.doJSON(ctx, http.MethodPut, c.configPath(projectID, "user-roles", role.ID), role, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeployConfiguration pushes the configuration to the external PLC
// system.
func (c *Client) DeployConfiguration(ctx context.Context, projectID string) (*models.DeployResult, error) {
	var result models.DeployResult
	if err := c.doJSON(ctx, http.MethodPost, c.configPath(projectID, "deploy"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
