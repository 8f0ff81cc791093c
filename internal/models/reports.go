// internal/models/reports.go
package models

import "encoding/json"

// ReportStatus discriminates the three display states a server report
// can be in. "not yet ready" states are not errors.
type ReportStatus string

const (
	ReportAvailable    ReportStatus = "available"
	ReportNoResearch   ReportStatus = "no_research"
	ReportNotAvailable ReportStatus = "not_available"
)

// ResearchReport is the community-research result. The payload is an
// opaque server-produced blob rendered as-is.
type ResearchReport struct {
	ProjectID string          `json:"project_id"`
	Status    ReportStatus    `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// IntelligenceReport is the server-computed analysis summary.
type IntelligenceReport struct {
	ProjectID         string          `json:"project_id"`
	Status            ReportStatus    `json:"status"`
	CompletenessScore float64         `json:"completeness_score,omitempty"`
	SourcesUsed       []string        `json:"sources_used,omitempty"`
	Enhancements      json.RawMessage `json:"enhancements,omitempty"`
}

// AnalysisStatus is returned by GET /projects/{id}/analysis-status.
type AnalysisStatus struct {
	ProjectID string        `json:"project_id"`
	Status    ProjectStatus `json:"status"`
	Stage     string        `json:"stage,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// ConsultantAnswer is the reply to a chat-style question over project
// data.
type ConsultantAnswer struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

// Artifact is a generated downloadable training/document artifact. The
// server returns the content base64-encoded; the client decodes it into
// a local file.
type Artifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content"` // base64
}

// DeployResult reports the outcome of pushing a configuration to the
// external PLC system.
type DeployResult struct {
	Deployed bool   `json:"deployed"`
	Message  string `json:"message,omitempty"`
}
