// internal/session/session.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/api"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/cache"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/metrics"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/notify"
)

// ProgressFunc receives estimated progress while an analysis poll runs.
// The percentage is derived from elapsed attempts, not reported by the
// server, and is capped below 100 until the job actually completes.
type ProgressFunc func(percent int, stage string)

// ProjectSession ties the API client, the recovery protocol, the poll
// loop, the fallback cache and completion notifications together for
// one project.
type ProjectSession struct {
	client    *api.Client
	recoverer *Recoverer
	pollCfg   PollConfig
	cache     cache.Cache
	notifier  notify.Notifier
	logger    logger.Logger
}

func New(client *api.Client, recoverer *Recoverer, pollCfg PollConfig, reportCache cache.Cache, notifier notify.Notifier, log logger.Logger) *ProjectSession {
	if notifier == nil {
		notifier = notify.NewNoOp()
	}
	return &ProjectSession{
		client:    client,
		recoverer: recoverer,
		pollCfg:   pollCfg,
		cache:     reportCache,
		notifier:  notifier,
		logger:    log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// RunAnalysis triggers AI configuration generation and sees it through
// to a terminal state. Fast path: the triggering POST returns the
// configured project synchronously. Slow path: poll the status endpoint
// until configured, failed, or the attempt budget runs out. A transport
// timeout on the POST re-checks status once before declaring failure —
// the job may have completed server-side while the response was lost.
func (s *ProjectSession) RunAnalysis(ctx context.Context, desc Descriptor, progress ProgressFunc) (*models.Project, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	var project *models.Project
	err := s.recoverer.WithRecovery(ctx, desc, func(ctx context.Context) error {
		p, startErr := s.client.StartAnalysis(ctx, desc.ID)
		if startErr != nil {
			return startErr
		}
		project = p
		return nil
	})

	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		var stdErr *commonerrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == commonerrors.ErrCodeRecoveryFailed {
			return nil, err
		}

		// Transport failure: the analysis may have completed while the
		// connection died. Check status once before giving up.
		s.logger.Warn("analyze request failed, re-checking status", map[string]interface{}{
			"projectId": desc.ID,
			"error":     err.Error(),
		})
		status, statusErr := s.client.GetAnalysisStatus(ctx, desc.ID)
		if statusErr != nil || status.Status != models.StatusConfigured {
			return nil, err
		}
		return s.finishAnalysis(ctx, desc.ID, progress)
	}

	if project != nil && project.Status == models.StatusConfigured {
		progress(100, "configured")
		s.notifyCompletion(ctx, desc.ID, true, "Analysis completed")
		return project, nil
	}

	return s.pollAnalysis(ctx, desc.ID, progress)
}

func (s *ProjectSession) pollAnalysis(ctx context.Context, projectID string, progress ProgressFunc) (*models.Project, error) {
	err := Poll(ctx, "analysis", s.pollCfg, func(ctx context.Context, attempt int) (bool, error) {
		progress(estimatedProgress(attempt, s.pollCfg.MaxAttempts), "analyzing")

		status, err := s.client.GetAnalysisStatus(ctx, projectID)
		if err != nil {
			// anything other than "not yet ready" surfaces immediately
			return false, err
		}

		switch status.Status {
		case models.StatusConfigured:
			return true, nil
		case models.StatusError:
			return false, commonerrors.NewAnalysisFailedError(projectID, status.Message)
		default:
			return false, nil
		}
	})

	if err != nil {
		var exhausted *ErrPollExhausted
		if errors.As(err, &exhausted) {
			s.notifyCompletion(ctx, projectID, false, "Analysis timed out client-side; the server job may still be running")
			return nil, commonerrors.NewAnalysisTimeoutError(projectID, exhausted.Attempts)
		}
		return nil, err
	}

	return s.finishAnalysis(ctx, projectID, progress)
}

func (s *ProjectSession) finishAnalysis(ctx context.Context, projectID string, progress ProgressFunc) (*models.Project, error) {
	project, err := s.client.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	progress(100, "configured")
	s.notifyCompletion(ctx, projectID, true, "Analysis completed")
	return project, nil
}

func (s *ProjectSession) notifyCompletion(ctx context.Context, projectID string, succeeded bool, message string) {
	outcome := "success"
	if !succeeded {
		outcome = "timeout"
	}
	subject := fmt.Sprintf("PLC AutoConfig: analysis %s for project %s", outcome, projectID)
	if err := s.notifier.Notify(ctx, subject, message); err != nil {
		s.logger.Warn("completion notification failed", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
	}
}

// estimatedProgress maps elapsed attempts to a display percentage. It
// is an estimate: the server reports no true completion fraction, so
// the value is capped at 95 until a terminal status arrives.
func estimatedProgress(attempt, maxAttempts int) int {
	if maxAttempts <= 0 {
		return 0
	}
	pct := attempt * 100 / maxAttempts
	if pct > 95 {
		pct = 95
	}
	return pct
}

// FetchResearch returns the project's research report, preferring a
// fresh server copy. On a fetch failure or a non-available status, the
// cached copy is consulted before reporting the empty state. The second
// return value reports whether the result came from the cache.
func (s *ProjectSession) FetchResearch(ctx context.Context, projectID string) (*models.ResearchReport, bool, error) {
	report, err := s.client.GetResearch(ctx, projectID)
	if err == nil && report.Status == models.ReportAvailable {
		s.cacheReport(ctx, "research", cache.ResearchKey(projectID), report)
		return report, false, nil
	}

	if cached, ok := s.cachedResearch(ctx, projectID); ok {
		return cached, true, nil
	}

	if err != nil {
		return nil, false, err
	}
	return report, false, nil
}

// FetchIntelligence mirrors FetchResearch for the intelligence report.
func (s *ProjectSession) FetchIntelligence(ctx context.Context, projectID string) (*models.IntelligenceReport, bool, error) {
	report, err := s.client.GetIntelligence(ctx, projectID)
	if err == nil && report.Status == models.ReportAvailable {
		s.cacheReport(ctx, "intelligence", cache.IntelligenceKey(projectID), report)
		return report, false, nil
	}

	if data, cerr := s.cache.Get(ctx, cache.IntelligenceKey(projectID)); cerr == nil {
		var cached models.IntelligenceReport
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			metrics.CacheOperations.WithLabelValues("intelligence", "hit").Inc()
			return &cached, true, nil
		}
	}
	metrics.CacheOperations.WithLabelValues("intelligence", "miss").Inc()

	if err != nil {
		return nil, false, err
	}
	return report, false, nil
}

func (s *ProjectSession) cachedResearch(ctx context.Context, projectID string) (*models.ResearchReport, bool) {
	data, err := s.cache.Get(ctx, cache.ResearchKey(projectID))
	if err != nil {
		metrics.CacheOperations.WithLabelValues("research", "miss").Inc()
		return nil, false
	}

	var cached models.ResearchReport
	if err := json.Unmarshal(data, &cached); err != nil {
		metrics.CacheOperations.WithLabelValues("research", "miss").Inc()
		return nil, false
	}

	metrics.CacheOperations.WithLabelValues("research", "hit").Inc()
	return &cached, true
}

// cacheReport writes through on fresh success. Cache failures only
// lose fallback; they never fail the operation.
func (s *ProjectSession) cacheReport(ctx context.Context, kind, key string, report interface{}) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Put(ctx, key, data); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return
	}
	metrics.CacheOperations.WithLabelValues(kind, "write").Inc()
}
