package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rcliao/biomebot/internal/model"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "biomebot"

// RedisStore implements StateStore on a Redis hash per bot holding the memory
// and current order blobs side by side.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// StateKey returns the hash key holding a bot's state.
func (s *RedisStore) StateKey(botID string) string {
	return fmt.Sprintf("%s:%s:state", s.prefix, botID)
}

func (s *RedisStore) SaveState(ctx context.Context, botID string, snap model.Snapshot) error {
	order, err := json.Marshal(nonNil(snap.CurrentOrder))
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	now := snap.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	key := s.StateKey(botID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"memory", snap.Memory,
			"current_order", string(order),
			"revision", ulid.Make().String(),
			"updated_at", now.Format(time.RFC3339Nano),
		)
		pipe.HIncrBy(ctx, key, "turns", 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadState(ctx context.Context, botID string) (*model.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.StateKey(botID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, botID)
	}
	return snapshotFromFields(botID, fields)
}

func (s *RedisStore) DeleteState(ctx context.Context, botID string) error {
	return s.client.Del(ctx, s.StateKey(botID)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func snapshotFromFields(botID string, fields map[string]string) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		BotID:    botID,
		Memory:   fields["memory"],
		Revision: fields["revision"],
	}
	if raw := fields["current_order"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.CurrentOrder); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
	}
	snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return snap, nil
}
