// internal/models/project.go
package models

// ProjectStatus is the server-driven lifecycle state of a project.
// The client never computes status itself; it renders what the server
// last returned.
type ProjectStatus string

const (
	StatusSetup      ProjectStatus = "setup"
	StatusUploading  ProjectStatus = "uploading"
	StatusAnalyzing  ProjectStatus = "analyzing"
	StatusConfigured ProjectStatus = "configured"
	StatusError      ProjectStatus = "error"
)

// Project is the top-level entity exchanged with the server.
type Project struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	CustomerName  string         `json:"customer_name"`
	ProductType   string         `json:"product_type"`
	CommunityURL  string         `json:"community_url,omitempty"`
	Status        ProjectStatus  `json:"status"`
	UploadedFiles []UploadedFile `json:"uploaded_files,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
}

// UploadedFile describes one CSV/TXT export accepted by the server.
type UploadedFile struct {
	Filename  string `json:"filename"`
	RowsCount int    `json:"rows_count"`
	Columns   int    `json:"columns,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// CreateProjectRequest is the body of POST /projects. The id is
// client-generated so that recovery after a backend cold start can
// replay creation idempotently.
type CreateProjectRequest struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	ProductType  string `json:"product_type"`
	CommunityURL string `json:"community_url,omitempty"`
}
