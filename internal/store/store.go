// Package store provides the durable-state port of a bot and its SQLite,
// Redis and in-process implementations.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/biomebot/internal/model"
)

// ErrNotFound is returned by LoadState when a bot has no saved state.
var ErrNotFound = errors.New("state not found")

// StateStore persists the memory and current order of a bot. Every save is a
// full overwrite, so repeating one is harmless.
type StateStore interface {
	// SaveState overwrites the snapshot stored for botID.
	SaveState(ctx context.Context, botID string, snap model.Snapshot) error

	// LoadState returns the last snapshot for botID, or ErrNotFound.
	LoadState(ctx context.Context, botID string) (*model.Snapshot, error)

	// DeleteState removes the snapshot for botID. Missing state is not an error.
	DeleteState(ctx context.Context, botID string) error

	// Close closes the store.
	Close() error
}
