// Package ranking persists race results. The engine consumes exactly two
// operations: append a ranking entry and fetch the best entry for a player.
// Entries are append-only; nothing here updates or deletes.
package ranking

import (
	"context"
	"errors"
	"time"
)

// ErrNoEntry is returned by Best when a player has never finished the race.
var ErrNoEntry = errors.New("ranking: no entry")

// Entry is one persisted race result.
type Entry struct {
	RaceID         int32     `msgpack:"raceId"`
	PlayerID       string    `msgpack:"playerId"`
	RingCount      int       `msgpack:"ringCount"`
	Score          int       `msgpack:"score"`
	ElapsedSeconds int64     `msgpack:"elapsedSeconds"`
	RecordedAt     time.Time `msgpack:"recordedAt"`
}

// betterThan orders entries: higher score wins, ties go to the faster run,
// then to the earlier submission.
func (e Entry) betterThan(other Entry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	if e.ElapsedSeconds != other.ElapsedSeconds {
		return e.ElapsedSeconds < other.ElapsedSeconds
	}
	return e.RecordedAt.Before(other.RecordedAt)
}

// Store is the persistence boundary the session machine talks to.
type Store interface {
	// Record appends an entry. The entry the caller just recorded is
	// immediately visible to Best.
	Record(ctx context.Context, entry Entry) error

	// Best returns the best entry for (raceID, playerID), which may be the
	// entry recorded a moment earlier. Returns ErrNoEntry when the player
	// has no entries.
	Best(ctx context.Context, raceID int32, playerID string) (Entry, error)
}

// Leaderboard is an optional extension served by the diagnostics endpoint;
// the session machine itself never calls it.
type Leaderboard interface {
	// Top returns the best entry per player for a race, best first.
	Top(ctx context.Context, raceID int32, limit int) ([]Entry, error)
}
