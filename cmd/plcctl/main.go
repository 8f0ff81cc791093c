// cmd/plcctl/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/api"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/cache"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/config"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/observability"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/notify"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/session"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/store"
)

const usage = `plcctl - PLC AutoConfig client

Usage:
  plcctl projects list
  plcctl projects create -name NAME -customer CUSTOMER -product TYPE [-community-url URL]
  plcctl projects show -id ID
  plcctl projects delete -id ID
  plcctl upload -id ID FILE [FILE...]
  plcctl analyze -id ID
  plcctl status -id ID
  plcctl research -id ID [-start]
  plcctl scrape -id ID -agent AGENT
  plcctl ask -id ID -question TEXT
  plcctl intelligence -id ID
  plcctl config show -id ID
  plcctl config update-record-type -id ID -file FILE
  plcctl config update-department -id ID -file FILE
  plcctl config update-role -id ID -file FILE
  plcctl config deploy -id ID
  plcctl lms -id ID -type TYPE [-out DIR]
  plcctl watch -id ID
`

// app bundles the wired-up clients every command needs.
type app struct {
	cfg       *config.Config
	logger    logger.Logger
	client    *api.Client
	recoverer *session.Recoverer
	sess      *session.ProjectSession
	store     store.DescriptorStore
	cache     cache.Cache
	reporter  *commonerrors.Reporter
	obs       *observability.Observability
}

// retryWithBackoff attempts an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	a, cleanup, err := buildApp(cfg, log, zapLog, obs)
	if err != nil {
		zapLog.Fatal("initialization failed", zap.Error(err))
	}
	defer cleanup()

	ctx := context.Background()
	if err := a.dispatch(ctx, os.Args[1], os.Args[2:]); err != nil {
		stdErr := a.reporter.Report(os.Args[1], err)

		// Server rejections surface their detail message word for word.
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Detail)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(stdErr))
		}
		os.Exit(1)
	}
}

func buildApp(cfg *config.Config, log logger.Logger, zapLog *zap.Logger, obs *observability.Observability) (*app, func(), error) {
	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.GetTimeout(),
		log,
		api.WithRetries(cfg.API.MaxRetries, time.Duration(cfg.API.RetryDelay)*time.Millisecond),
	)

	recoverer := session.NewRecoverer(client, session.RecoveryConfig{
		MaxAttempts: cfg.Recovery.GetMaxAttempts(),
		BaseDelay:   cfg.Recovery.GetBaseDelay(),
	}, log)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var reportCache cache.Cache
	if cfg.Cache.Redis.Enabled {
		redisCache := cache.NewRedis(cfg.Cache.Redis, cfg.Cache.GetTTL())
		err := retryWithBackoff(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return redisCache.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
			reportCache = cache.NewMemory(cfg.Cache.GetTTL())
		} else {
			reportCache = redisCache
			cleanups = append(cleanups, func() { redisCache.Close() })
		}
	} else {
		reportCache = cache.NewMemory(cfg.Cache.GetTTL())
	}

	descStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open descriptor store: %w", err)
	}
	cleanups = append(cleanups, func() { descStore.Close() })

	var notifier notify.Notifier = notify.NewNoOp()
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsNotifier, err := notify.NewAWSNotifier(context.Background(), cfg.Notifications, log)
		if err != nil {
			zapLog.Warn("notifications disabled, AWS config unavailable", zap.Error(err))
		} else {
			notifier = awsNotifier
		}
	}

	pollCfg := session.PollConfig{
		Interval:    cfg.Polling.GetInterval(),
		MaxAttempts: cfg.Polling.GetMaxAttempts(),
	}

	a := &app{
		cfg:       cfg,
		logger:    log,
		client:    client,
		recoverer: recoverer,
		sess:      session.New(client, recoverer, pollCfg, reportCache, notifier, log),
		store:     descStore,
		cache:     reportCache,
		reporter:  commonerrors.NewReporter(log),
		obs:       obs,
	}
	return a, cleanup, nil
}

// userMessage keeps server detail messages verbatim and maps internal
// errors to a short actionable line.
func userMessage(stdErr *commonerrors.StandardError) string {
	switch stdErr.Code {
	case commonerrors.ErrCodeRecoveryFailed:
		return "Project could not be recovered. Refresh and retry."
	case commonerrors.ErrCodeAnalysisTimeout:
		return "Analysis is taking longer than expected. Check again with 'plcctl status'."
	case commonerrors.ErrCodeValidationFailed:
		return fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	default:
		return stdErr.Message
	}
}
