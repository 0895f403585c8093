package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	Bots        int        `json:"bots"`
	TotalTurns  int        `json:"total_turns"`
	PerBot      []BotStats `json:"per_bot"`
}

// BotStats holds per-bot counts.
type BotStats struct {
	BotID     string `json:"bot_id"`
	Turns     int    `json:"turns"`
	Revision  string `json:"revision"`
	UpdatedAt string `json:"updated_at"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(turns), 0) FROM bot_state`).
		Scan(&st.Bots, &st.TotalTurns)

	rows, err := s.db.QueryContext(ctx, `
		SELECT bot_id, turns, revision, updated_at
		FROM bot_state ORDER BY updated_at DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var b BotStats
		if err := rows.Scan(&b.BotID, &b.Turns, &b.Revision, &b.UpdatedAt); err != nil {
			return st, err
		}
		st.PerBot = append(st.PerBot, b)
	}

	return st, rows.Err()
}
