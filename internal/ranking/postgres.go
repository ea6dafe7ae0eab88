package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ringrace/server/internal/ranking/migrations"
)

// PostgresStore persists entries in a race_rankings table. The schema is
// managed by the embedded migrations in the migrations subpackage.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, runs pending migrations, and returns the store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := migrations.Up(dsn); err != nil {
		return nil, fmt.Errorf("migrate rankings schema: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO race_rankings (race_id, player_id, ring_count, score, elapsed_seconds, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.RaceID, entry.PlayerID, entry.RingCount, entry.Score, entry.ElapsedSeconds, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("record ranking: %w", err)
	}
	return nil
}

func (s *PostgresStore) Best(ctx context.Context, raceID int32, playerID string) (Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT race_id, player_id, ring_count, score, elapsed_seconds, recorded_at
		 FROM race_rankings
		 WHERE race_id = $1 AND player_id = $2
		 ORDER BY score DESC, elapsed_seconds ASC, recorded_at ASC
		 LIMIT 1`,
		raceID, playerID)

	var entry Entry
	err := row.Scan(&entry.RaceID, &entry.PlayerID, &entry.RingCount, &entry.Score, &entry.ElapsedSeconds, &entry.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNoEntry
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query best ranking: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Top(ctx context.Context, raceID int32, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT race_id, player_id, ring_count, score, elapsed_seconds, recorded_at
		 FROM (
		   SELECT DISTINCT ON (player_id)
		       race_id, player_id, ring_count, score, elapsed_seconds, recorded_at
		   FROM race_rankings
		   WHERE race_id = $1
		   ORDER BY player_id, score DESC, elapsed_seconds ASC, recorded_at ASC
		 ) best
		 ORDER BY score DESC, elapsed_seconds ASC, recorded_at ASC
		 LIMIT $2`,
		raceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var top []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.RaceID, &entry.PlayerID, &entry.RingCount, &entry.Score, &entry.ElapsedSeconds, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		top = append(top, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard rows: %w", err)
	}
	return top, nil
}
