// internal/session/recovery.go
package session

import (
	"context"
	"time"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/api"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/metrics"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
)

// Descriptor holds the client-side creation data needed to replay a
// project creation after the backend loses it to a cold start.
type Descriptor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	ProductType  string `json:"product_type"`
	CommunityURL string `json:"community_url,omitempty"`
}

func (d Descriptor) toCreateRequest() models.CreateProjectRequest {
	return models.CreateProjectRequest{
		ID:           d.ID,
		Name:         d.Name,
		CustomerName: d.CustomerName,
		ProductType:  d.ProductType,
		CommunityURL: d.CommunityURL,
	}
}

// RecoveryConfig bounds the re-creation loop. Back-off is linear:
// BaseDelay times the attempt number (1.5s, 3s, 4.5s by default).
type RecoveryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		MaxAttempts: 3,
		BaseDelay:   1500 * time.Millisecond,
	}
}

// Recoverer compensates for a stateless backend: project existence is
// eventually consistent, and any per-project call must be prepared to
// replay creation.
type Recoverer struct {
	client *api.Client
	cfg    RecoveryConfig
	logger logger.Logger
}

func NewRecoverer(client *api.Client, cfg RecoveryConfig, log logger.Logger) *Recoverer {
	return &Recoverer{
		client: client,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "recovery"}),
	}
}

// EnsureProject fetches the project, recreating it from the descriptor
// when the server answers 404. Exactly one POST is issued per recovery
// attempt; a successful recovery ends the loop immediately.
func (r *Recoverer) EnsureProject(ctx context.Context, desc Descriptor) (*models.Project, error) {
	project, err := r.client.GetProject(ctx, desc.ID)
	if err == nil {
		return project, nil
	}
	if !api.IsNotFound(err) {
		return nil, err
	}

	r.logger.Warn("project missing server-side, recreating", map[string]interface{}{
		"projectId": desc.ID,
	})

	return r.recreate(ctx, desc)
}

// WithRecovery runs op, and when it fails with a 404 recreates the
// project once and retries op a single time. Any other failure passes
// through untouched.
func (r *Recoverer) WithRecovery(ctx context.Context, desc Descriptor, op func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil || !api.IsNotFound(err) {
		return err
	}

	if _, rerr := r.recreate(ctx, desc); rerr != nil {
		return rerr
	}

	return op(ctx)
}

func (r *Recoverer) recreate(ctx context.Context, desc Descriptor) (*models.Project, error) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.cfg.BaseDelay * time.Duration(attempt)):
		}

		project, err := r.client.CreateProject(ctx, desc.toCreateRequest())
		if err == nil {
			metrics.RecoveryAttempts.WithLabelValues("recovered").Inc()
			r.logger.Info("project recovered", map[string]interface{}{
				"projectId": desc.ID,
				"attempt":   attempt,
			})
			return project, nil
		}

		metrics.RecoveryAttempts.WithLabelValues("failed").Inc()
		r.logger.Warn("recovery attempt failed", map[string]interface{}{
			"projectId": desc.ID,
			"attempt":   attempt,
			"error":     err.Error(),
		})
		lastErr = err
	}

	return nil, commonerrors.NewRecoveryFailedError(desc.ID, r.cfg.MaxAttempts, lastErr)
}
