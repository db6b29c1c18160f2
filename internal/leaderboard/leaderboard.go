// internal/leaderboard/leaderboard.go
//
// Best-score leaderboard over a small key-value store.
// Responsibilities:
//   - Store interface (get/set by key, top-N by score).
//   - Key normalization: one entry per case-insensitive player name.
//   - Submit: write only when the score beats the player's prior best.
//
// Backends: memory.go (map + manual sort/truncate) and sql.go (SQLite).

package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultSize is the number of rows shown on the leaderboard.
const DefaultSize = 5

// Entry is one player's best run.
type Entry struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Store is the key-value interface the leaderboard needs.
type Store interface {
	// Get returns the entry under key; ok is false if none exists.
	Get(ctx context.Context, key string) (e Entry, ok bool, err error)

	// Set writes e under key, replacing any previous entry.
	Set(ctx context.Context, key string, e Entry) error

	// Top returns at most n entries, highest score first.
	Top(ctx context.Context, n int) ([]Entry, error)
}

// Key maps a display name to its storage key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Submit records score for name if it beats the stored best.
// Returns true when a write happened.
func Submit(ctx context.Context, st Store, name string, score int, now time.Time) (bool, error) {
	key := Key(name)
	if key == "" {
		return false, fmt.Errorf("leaderboard: empty name")
	}
	prev, ok, err := st.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if ok && score <= prev.Score {
		return false, nil
	}
	e := Entry{Name: strings.TrimSpace(name), Score: score, Timestamp: now.UnixMilli()}
	if err := st.Set(ctx, key, e); err != nil {
		return false, fmt.Errorf("set %q: %w", key, err)
	}
	return true, nil
}

// sortEntries orders by score descending; earlier runs win ties.
func sortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].Score != es[j].Score {
			return es[i].Score > es[j].Score
		}
		if es[i].Timestamp != es[j].Timestamp {
			return es[i].Timestamp < es[j].Timestamp
		}
		return es[i].Name < es[j].Name
	})
}
