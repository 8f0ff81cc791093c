// internal/api/analysis.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// StartAnalysis triggers AI configuration generation. The server may
// answer synchronously with the fully configured project (fast path) or
// the call may time out while the job keeps running, in which case the
// caller falls back to polling GetAnalysisStatus.
func (c *Client) StartAnalysis(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	path := "/projects/" + url.PathEscape(projectID) + "/analyze"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetAnalysisStatus polls the analysis job state.
func (c *Client) GetAnalysisStatus(ctx context.Context, projectID string) (*models.AnalysisStatus, error) {
	var status models.AnalysisStatus
	path := "/projects/" + url.PathEscape(projectID) + "/analysis-status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetIntelligence fetches the analysis report.
func (c *Client) GetIntelligence(ctx context.Context, projectID string) (*models.IntelligenceReport, error) {
	var report models.IntelligenceReport
	path := "/projects/" + url.PathEscape(projectID) + "/intelligence"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
