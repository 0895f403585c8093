package store

import (
	"context"

	"github.com/rcliao/biomebot/internal/model"
)

// ExportAll returns every saved snapshot, optionally limited to one bot.
func (s *SQLiteStore) ExportAll(ctx context.Context, botID string) ([]model.Snapshot, error) {
	query := `SELECT bot_id, memory, current_order, revision, updated_at FROM bot_state`
	args := []interface{}{}
	if botID != "" {
		query += ` WHERE bot_id = ?`
		args = append(args, botID)
	}
	query += ` ORDER BY bot_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Import saves each snapshot, overwriting existing state for the same bot.
func Import(ctx context.Context, st StateStore, snaps []model.Snapshot) (int, error) {
	imported := 0
	for _, snap := range snaps {
		if err := st.SaveState(ctx, snap.BotID, snap); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
