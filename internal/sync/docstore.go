// Package sync keeps the local anniversary document and a shared remote
// copy in agreement. The adapter mirrors the store's mutation surface,
// writing through to the remote document store when reachable and
// degrading to local-only persistence when it is not.
package sync

import (
	"context"

	"github.com/hungduong/loveanniversary/internal/models"
)

// DocumentStore is the remote backend holding one shared document per
// couple id.
type DocumentStore interface {
	// Fetch retrieves the remote document. A missing document reports a
	// REMOTE_NOT_FOUND error code.
	Fetch(ctx context.Context, coupleID string) (*models.Document, error)

	// Store writes the document to the remote backend.
	Store(ctx context.Context, coupleID string, doc *models.Document) error

	// Watch opens a live subscription streaming full document snapshots
	// whenever the remote copy changes.
	Watch(ctx context.Context, coupleID string) (Subscription, error)
}

// Subscription streams remote document snapshots until closed.
type Subscription interface {
	// Updates delivers document snapshots. The channel closes when the
	// subscription ends, whether by Close or by connection loss.
	Updates() <-chan *models.Document

	// Close tears the subscription down.
	Close() error
}
