// internal/session/recovery_test.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/api"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// fakeBackend simulates the stateless backend: projects vanish on a
// cold start and reappear when creation is replayed.
type fakeBackend struct {
	mu             sync.Mutex
	projects       map[string]models.Project
	getCalls       int
	createCalls    int
	createFailures int // number of POSTs to reject before accepting
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{projects: make(map[string]models.Project)}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.getCalls++

		project, ok := b.projects[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Project not found"}`))
			return
		}
		json.NewEncoder(w).Encode(project)
	})
	mux.HandleFunc("POST /projects", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.createCalls++

		if b.createCalls <= b.createFailures {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"detail": "backend starting up"}`))
			return
		}

		var req models.CreateProjectRequest
		json.NewDecoder(r.Body).Decode(&req)
		project := models.Project{
			ID:           req.ID,
			Name:         req.Name,
			CustomerName: req.CustomerName,
			ProductType:  req.ProductType,
			CommunityURL: req.CommunityURL,
			Status:       models.StatusSetup,
		}
		b.projects[req.ID] = project
		json.NewEncoder(w).Encode(project)
	})
	return mux
}

func (b *fakeBackend) counts() (gets, creates int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.getCalls, b.createCalls
}

func testDescriptor() Descriptor {
	return Descriptor{
		ID:           "proj-1",
		Name:         "Springfield Permits",
		CustomerName: "City of Springfield",
		ProductType:  "permitting",
	}
}

func newTestRecoverer(t *testing.T, backend *fakeBackend, maxAttempts int) *Recoverer {
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t))
	return NewRecoverer(client, RecoveryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
	}, logger.NewTestLogger(t))
}

func TestEnsureProject_ExistingProjectNeedsNoRecovery(t *testing.T) {
	backend := newFakeBackend()
	backend.projects["proj-1"] = models.Project{ID: "proj-1", Name: "Springfield Permits", Status: models.StatusConfigured}

	r := newTestRecoverer(t, backend, 3)
	project, err := r.EnsureProject(context.Background(), testDescriptor())

	require.NoError(t, err)
	assert.Equal(t, models.StatusConfigured, project.Status)

	_, creates := backend.counts()
	assert.Equal(t, 0, creates, "existing project must not be recreated")
}

func TestEnsureProject_RecreatesAfterColdStart(t *testing.T) {
	backend := newFakeBackend()

	r := newTestRecoverer(t, backend, 3)
	project, err := r.EnsureProject(context.Background(), testDescriptor())

	require.NoError(t, err)
	assert.Equal(t, "proj-1", project.ID)
	assert.Equal(t, "City of Springfield", project.CustomerName)

	_, creates := backend.counts()
	assert.Equal(t, 1, creates, "a successful recovery issues exactly one POST")
}

func TestEnsureProject_RetriesRecreationWithBudget(t *testing.T) {
	backend := newFakeBackend()
	backend.createFailures = 2

	r := newTestRecoverer(t, backend, 3)
	project, err := r.EnsureProject(context.Background(), testDescriptor())

	require.NoError(t, err)
	assert.Equal(t, "proj-1", project.ID)

	_, creates := backend.counts()
	assert.Equal(t, 3, creates)
}

func TestEnsureProject_RecoveryFailureIsTerminal(t *testing.T) {
	backend := newFakeBackend()
	backend.createFailures = 100

	r := newTestRecoverer(t, backend, 3)
	_, err := r.EnsureProject(context.Background(), testDescriptor())

	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeRecoveryFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	_, creates := backend.counts()
	assert.Equal(t, 3, creates, "recreation stops at the attempt budget")
}

func TestEnsureProject_NonNotFoundErrorsPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "database connection lost"}`))
	}))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t))
	r := NewRecoverer(client, DefaultRecoveryConfig(), logger.NewTestLogger(t))

	_, err := r.EnsureProject(context.Background(), testDescriptor())
	require.Error(t, err)

	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "database connection lost", apiErr.Detail)
}

func TestWithRecovery_RetriesOperationOnceAfterRecovery(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRecoverer(t, backend, 3)

	var opCalls int
	err := r.WithRecovery(context.Background(), testDescriptor(), func(context.Context) error {
		opCalls++
		if opCalls == 1 {
			return &api.APIError{StatusCode: http.StatusNotFound, Detail: "Project not found"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, opCalls)

	_, creates := backend.counts()
	assert.Equal(t, 1, creates)
}

func TestWithRecovery_OtherErrorsPassThroughUntouched(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRecoverer(t, backend, 3)

	rejected := &api.APIError{StatusCode: http.StatusUnprocessableEntity, Detail: "File has no recognizable columns"}

	var opCalls int
	err := r.WithRecovery(context.Background(), testDescriptor(), func(context.Context) error {
		opCalls++
		return rejected
	})

	assert.Equal(t, rejected, err)
	assert.Equal(t, 1, opCalls)

	_, creates := backend.counts()
	assert.Equal(t, 0, creates)
}

func TestRecoverer_ContextCancellationStopsRecreation(t *testing.T) {
	backend := newFakeBackend()
	backend.createFailures = 100

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t))
	r := NewRecoverer(client, RecoveryConfig{MaxAttempts: 3, BaseDelay: time.Hour}, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.EnsureProject(ctx, testDescriptor())
	assert.ErrorIs(t, err, context.Canceled)

	_, creates := backend.counts()
	assert.Equal(t, 0, creates)
}
