package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/biomebot/internal/model"
)

// SQLiteStore implements StateStore using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) newRevision() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bot_state (
		bot_id        TEXT PRIMARY KEY,
		memory        TEXT NOT NULL,
		current_order TEXT NOT NULL,
		revision      TEXT NOT NULL,
		turns         INTEGER NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bot_state_updated ON bot_state(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveState(ctx context.Context, botID string, snap model.Snapshot) error {
	order, err := json.Marshal(nonNil(snap.CurrentOrder))
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	now := snap.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bot_state (bot_id, memory, current_order, revision, turns, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT(bot_id) DO UPDATE SET
		   memory = excluded.memory,
		   current_order = excluded.current_order,
		   revision = excluded.revision,
		   turns = bot_state.turns + 1,
		   updated_at = excluded.updated_at`,
		botID, snap.Memory, string(order), s.newRevision(), now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadState(ctx context.Context, botID string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT bot_id, memory, current_order, revision, updated_at
		 FROM bot_state WHERE bot_id = ?`, botID)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, botID)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) DeleteState(ctx context.Context, botID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bot_state WHERE bot_id = ?`, botID)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (model.Snapshot, error) {
	var snap model.Snapshot
	var order, updatedAt string

	err := row.Scan(&snap.BotID, &snap.Memory, &order, &snap.Revision, &updatedAt)
	if err != nil {
		return snap, err
	}

	if err := json.Unmarshal([]byte(order), &snap.CurrentOrder); err != nil {
		return snap, fmt.Errorf("decode order: %w", err)
	}
	snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return snap, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
