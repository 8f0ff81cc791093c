// Package cache holds the fallback store for expensive-to-regenerate
// server reports. It papers over backend statelessness: a report fetched
// once can still be rendered after a cold start loses it server-side.
// The cache is never a source of truth; a fresh success always
// overwrites it.
package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned when no entry exists for the key.
var ErrMiss = errors.New("cache: miss")

// Cache is the explicit interface the session layer consults. Keys are
// scoped per project and report kind.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, key string) error
}

// ResearchKey builds the cache key for a project's research report.
func ResearchKey(projectID string) string {
	return "plc:research:" + projectID
}

// IntelligenceKey builds the cache key for a project's intelligence
// report.
func IntelligenceKey(projectID string) string {
	return "plc:intelligence:" + projectID
}
