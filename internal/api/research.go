// internal/api/research.go
package api

import (
	"context"
	"net/http"
	"net/url"

	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// StartResearch kicks off a community research job for the project's
// community URL.
func (c *Client) StartResearch(ctx context.Context, projectID string) (*models.ResearchReport, error) {
	var report models.ResearchReport
	path := "/projects/" + url.PathEscape(projectID) + "/research"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetResearch fetches the latest research result. A no_research or
// not_available status is a distinct display state, not an error.
func (c *Client) GetResearch(ctx context.Context, projectID string) (*models.ResearchReport, error) {
	var report models.ResearchReport
	path := "/projects/" + url.PathEscape(projectID) + "/research"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeepScrape runs a per-agent deep website crawl.
func (c *Client) DeepScrape(ctx context.Context, projectID, agent string) (*models.ResearchReport, error) {
	var report models.ResearchReport
	path := "/projects/" + url.PathEscape(projectID) + "/deep-scrape"
	body := map[string]string{"agent": agent}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// AskConsultant sends a chat-style question over the project data.
func (c *Client) AskConsultant(ctx context.Context, projectID, question string) (*models.ConsultantAnswer, error) {
	if question == "" {
		return nil, commonerrors.NewValidationFailedError("question must not be empty")
	}
	var answer models.ConsultantAnswer
	path := "/projects/" + url.PathEscape(projectID) + "/consultant/ask"
	body := map[string]string{"question": question}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}
