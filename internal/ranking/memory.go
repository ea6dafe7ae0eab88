package ranking

import (
	"context"
	"sort"
	"sync"
)

type memoryKey struct {
	raceID   int32
	playerID string
}

// MemoryStore keeps entries in process memory. It backs tests and the
// default dev configuration.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[memoryKey][]Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memoryKey][]Entry)}
}

func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey{entry.RaceID, entry.PlayerID}
	s.entries[key] = append(s.entries[key], entry)
	return nil
}

func (s *MemoryStore) Best(_ context.Context, raceID int32, playerID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.entries[memoryKey{raceID, playerID}]
	if len(entries) == 0 {
		return Entry{}, ErrNoEntry
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.betterThan(best) {
			best = e
		}
	}
	return best, nil
}

func (s *MemoryStore) Top(_ context.Context, raceID int32, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := make(map[string]Entry)
	for key, entries := range s.entries {
		if key.raceID != raceID {
			continue
		}
		for _, e := range entries {
			current, ok := best[key.playerID]
			if !ok || e.betterThan(current) {
				best[key.playerID] = e
			}
		}
	}

	top := make([]Entry, 0, len(best))
	for _, e := range best {
		top = append(top, e)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].betterThan(top[j]) })
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
