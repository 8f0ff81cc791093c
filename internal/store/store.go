// Package store persists project recovery descriptors locally. It is
// the CLI's equivalent of the browser's client-held creation state: the
// backend may lose a project to a cold start, and recovery replays the
// creation from the descriptor saved here.
package store

import (
	"context"
	"errors"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/session"
)

// ErrNotFound is returned when no descriptor exists for the project id.
var ErrNotFound = errors.New("store: descriptor not found")

// DescriptorStore is the persistence seam for recovery descriptors.
type DescriptorStore interface {
	Save(ctx context.Context, desc session.Descriptor) error
	Get(ctx context.Context, projectID string) (*session.Descriptor, error)
	List(ctx context.Context) ([]session.Descriptor, error)
	Delete(ctx context.Context, projectID string) error
}
