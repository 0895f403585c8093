package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/rcliao/biomebot/internal/model"
)

func TestRedisStateKey(t *testing.T) {
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	defer s.Close()

	if got := s.StateKey("alice"); got != "biomebot:alice:state" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestSnapshotFromFields(t *testing.T) {
	snap, err := snapshotFromFields("bot", map[string]string{
		"memory":        `{"queue":[]}`,
		"current_order": `["a","b"]`,
		"revision":      "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"updated_at":    "2026-01-02T03:04:05Z",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.BotID != "bot" || len(snap.CurrentOrder) != 2 || snap.UpdatedAt.Year() != 2026 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if _, err := snapshotFromFields("bot", map[string]string{"current_order": "{"}); err == nil {
		t.Error("expected error for malformed order")
	}
}

// TestRedisStore_Live runs against a real server when BIOMEBOT_TEST_REDIS_ADDR is set.
func TestRedisStore_Live(t *testing.T) {
	addr := os.Getenv("BIOMEBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BIOMEBOT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, &redis.Options{Addr: addr}, "biomebot-test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	defer s.DeleteState(ctx, "live")

	if err := s.SaveState(ctx, "live", model.Snapshot{Memory: "{}", CurrentOrder: []string{"p"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadState(ctx, "live")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.CurrentOrder) != 1 || got.CurrentOrder[0] != "p" {
		t.Errorf("unexpected order %v", got.CurrentOrder)
	}

	s.DeleteState(ctx, "live")
	if _, err := s.LoadState(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
