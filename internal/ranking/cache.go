package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// CachedStore layers a Redis best-entry cache over another store. Record
// refreshes the cached best synchronously before returning, so the finish
// sequence's record-then-query ordering still observes the run it just
// submitted. Cache faults degrade to the inner store and are logged, never
// surfaced.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedStore wraps inner with a Redis cache. A zero ttl keeps cached
// bests forever.
func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func bestKey(raceID int32, playerID string) string {
	return fmt.Sprintf("race:%d:best:%s", raceID, playerID)
}

func (s *CachedStore) Record(ctx context.Context, entry Entry) error {
	if err := s.inner.Record(ctx, entry); err != nil {
		return err
	}

	key := bestKey(entry.RaceID, entry.PlayerID)
	cached, err := s.cachedBest(ctx, key)
	if err == nil && cached.betterThan(entry) {
		return nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("key", key).Msg("ranking cache read failed during record")
	}

	buf, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached entry: %w", err)
	}
	if err := s.rdb.Set(ctx, key, buf, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("ranking cache write failed")
	}
	return nil
}

func (s *CachedStore) Best(ctx context.Context, raceID int32, playerID string) (Entry, error) {
	key := bestKey(raceID, playerID)
	cached, err := s.cachedBest(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("key", key).Msg("ranking cache read failed")
	}

	best, err := s.inner.Best(ctx, raceID, playerID)
	if err != nil {
		return Entry{}, err
	}

	if buf, merr := msgpack.Marshal(best); merr == nil {
		if serr := s.rdb.Set(ctx, key, buf, s.ttl).Err(); serr != nil {
			s.log.Warn().Err(serr).Str("key", key).Msg("ranking cache backfill failed")
		}
	}
	return best, nil
}

func (s *CachedStore) cachedBest(ctx context.Context, key string) (Entry, error) {
	buf, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := msgpack.Unmarshal(buf, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode cached entry: %w", err)
	}
	return entry, nil
}

// Top delegates to the inner store when it serves leaderboards.
func (s *CachedStore) Top(ctx context.Context, raceID int32, limit int) ([]Entry, error) {
	lb, ok := s.inner.(Leaderboard)
	if !ok {
		return nil, fmt.Errorf("ranking: inner store has no leaderboard")
	}
	return lb.Top(ctx, raceID, limit)
}
