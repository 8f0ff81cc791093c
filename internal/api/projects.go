// internal/api/projects.go
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/validation"
)

// UploadFile is one file to send in a multipart upload.
type UploadFile struct {
	Filename string
	Content  io.Reader
}

// ListProjects returns all projects visible to the caller.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project. Validation runs before any network
// call; an empty name or customer name never reaches the server. When
// the request carries no id, one is generated client-side so a later
// recovery can replay this exact creation.
func (c *Client) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateCreateProject(&req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	var project models.Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject fetches a project including its configuration.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project server-side.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, nil)
}

// UploadFiles posts CSV/TXT exports as multipart form data and returns
// the updated project.
func (c *Client) UploadFiles(ctx context.Context, projectID string, files []UploadFile) (*models.Project, error) {
	var project models.Project
	path := "/projects/" + url.PathEscape(projectID) + "/upload"
	if err := c.doMultipart(ctx, http.MethodPost, path, files, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
