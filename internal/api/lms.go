// internal/api/lms.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// GenerateArtifact asks the server to produce a downloadable training
// artifact of the given type. The content comes back base64-encoded.
func (c *Client) GenerateArtifact(ctx context.Context, projectID, artifactType string) (*models.Artifact, error) {
	var artifact models.Artifact
	path := "/projects/" + url.PathEscape(projectID) + "/lms/generate/" + url.PathEscape(artifactType)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}
