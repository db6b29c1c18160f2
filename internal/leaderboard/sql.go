package leaderboard

import (
	"context"
	"database/sql"
	"errors"
)

// SQLStore persists entries in the leaderboard table (see assets/sql).
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var e Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT name, score, timestamp FROM leaderboard WHERE player_key=?`, key,
	).Scan(&e.Name, &e.Score, &e.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard (player_key, name, score, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_key) DO UPDATE SET
			name=excluded.name, score=excluded.score, timestamp=excluded.timestamp`,
		key, e.Name, e.Score, e.Timestamp,
	)
	return err
}

func (s *SQLStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultSize
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, score, timestamp
		FROM leaderboard
		ORDER BY score DESC, timestamp ASC, name ASC
		LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, n)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Score, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
