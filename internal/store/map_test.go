package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/biomebot/internal/model"
)

func TestMapStore(t *testing.T) {
	ctx := context.Background()
	s := NewMapStore()

	if _, err := s.LoadState(ctx, "bot"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	order := []string{"a", "b"}
	s.SaveState(ctx, "bot", model.Snapshot{Memory: "{}", CurrentOrder: order})
	order[0] = "mutated"

	got, err := s.LoadState(ctx, "bot")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentOrder[0] != "a" {
		t.Errorf("stored order should be a copy, got %v", got.CurrentOrder)
	}
	if got.BotID != "bot" {
		t.Errorf("expected bot id to be set, got %q", got.BotID)
	}
	if s.Saves() != 1 {
		t.Errorf("expected 1 save, got %d", s.Saves())
	}

	s.DeleteState(ctx, "bot")
	if _, err := s.LoadState(ctx, "bot"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMapStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMapStore().SaveState(ctx, "bot", model.Snapshot{}); err == nil {
		t.Error("expected error on canceled context")
	}
}
