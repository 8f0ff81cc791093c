// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t), opts...)
	return client, server
}

// countingTransport fails the first n round trips with a transport
// error and delegates the rest.
type countingTransport struct {
	failures int
	calls    int
	next     http.RoundTripper
}

func (ct *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ct.calls++
	if ct.calls <= ct.failures {
		return nil, fmt.Errorf("connection refused")
	}
	return ct.next.RoundTrip(req)
}

// ==========================
// Error Passthrough Tests
// ==========================

func TestClient_ServerDetailPassthrough(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantDetail string
	}{
		{
			name:       "detail field surfaces verbatim",
			statusCode: http.StatusUnprocessableEntity,
			body:       `{"detail": "File 'records.csv' has no recognizable columns"}`,
			wantDetail: "File 'records.csv' has no recognizable columns",
		},
		{
			name:       "404 detail",
			statusCode: http.StatusNotFound,
			body:       `{"detail": "Project not found"}`,
			wantDetail: "Project not found",
		},
		{
			name:       "missing detail falls back to status text",
			statusCode: http.StatusInternalServerError,
			body:       `{"error": "something else"}`,
			wantDetail: "Internal Server Error",
		},
		{
			name:       "non-JSON body falls back to status text",
			statusCode: http.StatusBadGateway,
			body:       "<html>bad gateway</html>",
			wantDetail: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))

			_, err := client.GetProject(context.Background(), "proj-1")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantDetail, apiErr.Error())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsNotFound(errors.New("dial tcp: connection refused")))
	assert.False(t, IsNotFound(nil))
}

// ==========================
// Retry Behavior Tests
// ==========================

func TestClient_RetriesTransportErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "proj-1", "name": "Springfield Permits", "status": "setup"}`))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport := &countingTransport{failures: 2, next: http.DefaultTransport}
	hc := &http.Client{Transport: transport}

	client := NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t),
		WithHTTPClient(hc),
		WithRetries(2, time.Millisecond),
	)

	project, err := client.GetProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", project.ID)
	assert.Equal(t, 3, transport.calls)
}

func TestClient_DoesNotRetryHTTPErrors(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "analysis engine restarting"}`))
	}), WithRetries(3, time.Millisecond))

	_, err := client.GetProject(context.Background(), "proj-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 1, calls)
}

func TestClient_GivesUpAfterRetryBudget(t *testing.T) {
	transport := &countingTransport{failures: 100, next: http.DefaultTransport}
	hc := &http.Client{Transport: transport}

	client := NewClient("http://localhost:1", 5*time.Second, logger.NewTestLogger(t),
		WithHTTPClient(hc),
		WithRetries(2, time.Millisecond),
	)

	_, err := client.GetProject(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, transport.calls)
}

func TestClient_StopsRetryingOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &countingTransport{failures: 100, next: http.DefaultTransport}
	client := NewClient("http://localhost:1", 5*time.Second, logger.NewTestLogger(t),
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRetries(5, time.Millisecond),
	)

	_, err := client.GetProject(ctx, "proj-1")
	require.Error(t, err)
	assert.LessOrEqual(t, transport.calls, 1)
}

// ==========================
// Project Operation Tests
// ==========================

func TestClient_CreateProject_ValidatesBeforeNetwork(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	tests := []struct {
		name string
		req  models.CreateProjectRequest
	}{
		{
			name: "empty name",
			req:  models.CreateProjectRequest{CustomerName: "Springfield", ProductType: "permitting"},
		},
		{
			name: "empty customer name",
			req:  models.CreateProjectRequest{Name: "Permits", ProductType: "permitting"},
		},
		{
			name: "missing product type",
			req:  models.CreateProjectRequest{Name: "Permits", CustomerName: "Springfield"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateProject(context.Background(), tt.req)
			require.Error(t, err)

			var stdErr *commonerrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, commonerrors.ErrCodeValidationFailed, stdErr.Code)
		})
	}

	assert.Equal(t, 0, calls, "invalid requests must never reach the server")
}

func TestClient_CreateProject_GeneratesClientID(t *testing.T) {
	var gotID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotID = req.ID

		json.NewEncoder(w).Encode(models.Project{ID: req.ID, Name: req.Name, Status: models.StatusSetup})
	}))

	project, err := client.CreateProject(context.Background(), models.CreateProjectRequest{
		Name:         "Permits",
		CustomerName: "Springfield",
		ProductType:  "permitting",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotID, "id must be generated client-side")
	assert.Equal(t, gotID, project.ID)
}

func TestClient_CreateProject_KeepsProvidedID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(models.Project{ID: req.ID, Status: models.StatusSetup})
	}))

	project, err := client.CreateProject(context.Background(), models.CreateProjectRequest{
		ID:           "replayed-id",
		Name:         "Permits",
		CustomerName: "Springfield",
		ProductType:  "permitting",
	})
	require.NoError(t, err)
	assert.Equal(t, "replayed-id", project.ID)
}

// ==========================
// Multipart Upload Tests
// ==========================

func TestClient_UploadFiles(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/proj-1/upload", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "permits.csv", files[0].Filename)
		assert.Equal(t, "licenses.csv", files[1].Filename)

		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "type,fee\nbuilding,100\n", string(content))

		json.NewEncoder(w).Encode(models.Project{
			ID:     "proj-1",
			Status: models.StatusUploading,
			UploadedFiles: []models.UploadedFile{
				{Filename: "permits.csv", RowsCount: 1},
				{Filename: "licenses.csv", RowsCount: 3},
			},
		})
	}))

	project, err := client.UploadFiles(context.Background(), "proj-1", []UploadFile{
		{Filename: "permits.csv", Content: strings.NewReader("type,fee\nbuilding,100\n")},
		{Filename: "licenses.csv", Content: strings.NewReader("name\na\nb\nc\n")},
	})
	require.NoError(t, err)
	require.Len(t, project.UploadedFiles, 2)
	assert.Equal(t, 1, project.UploadedFiles[0].RowsCount)
}

func TestClient_DeleteProject(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/projects/proj-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.DeleteProject(context.Background(), "proj-1"))
}
