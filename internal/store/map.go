package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rcliao/biomebot/internal/model"
)

// MapStore keeps snapshots in process memory. State is lost on exit.
type MapStore struct {
	mu    sync.RWMutex
	state map[string]model.Snapshot
	saves int
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{state: make(map[string]model.Snapshot)}
}

func (s *MapStore) SaveState(ctx context.Context, botID string, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap.BotID = botID
	snap.CurrentOrder = append([]string(nil), snap.CurrentOrder...)
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[botID] = snap
	s.saves++
	return nil
}

func (s *MapStore) LoadState(ctx context.Context, botID string) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.state[botID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, botID)
	}
	snap.CurrentOrder = append([]string(nil), snap.CurrentOrder...)
	return &snap, nil
}

func (s *MapStore) DeleteState(ctx context.Context, botID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, botID)
	return nil
}

// Saves returns how many times SaveState succeeded.
func (s *MapStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MapStore) Close() error {
	return nil
}
