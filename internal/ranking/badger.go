package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"
)

// BadgerStore keeps entries in an embedded Badger database for standalone
// deployments that have no Postgres. Keys are
// ranking/<raceID>/<playerID>/<ksuid>; the ksuid keeps appends unique and
// roughly time-ordered.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an open Badger handle. The caller owns the handle's
// lifecycle.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func playerPrefix(raceID int32, playerID string) []byte {
	return []byte(fmt.Sprintf("ranking/%d/%s/", raceID, playerID))
}

func racePrefix(raceID int32) []byte {
	return []byte(fmt.Sprintf("ranking/%d/", raceID))
}

func (s *BadgerStore) Record(_ context.Context, entry Entry) error {
	buf, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ranking entry: %w", err)
	}

	key := append(playerPrefix(entry.RaceID, entry.PlayerID), ksuid.New().String()...)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
	if err != nil {
		return fmt.Errorf("record ranking: %w", err)
	}
	return nil
}

func (s *BadgerStore) Best(_ context.Context, raceID int32, playerID string) (Entry, error) {
	var best Entry
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := playerPrefix(raceID, playerID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			if !found || entry.betterThan(best) {
				best = entry
				found = true
			}
		}
		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("scan rankings: %w", err)
	}
	if !found {
		return Entry{}, ErrNoEntry
	}
	return best, nil
}

func (s *BadgerStore) Top(_ context.Context, raceID int32, limit int) ([]Entry, error) {
	best := make(map[string]Entry)

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := racePrefix(raceID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			current, ok := best[entry.PlayerID]
			if !ok || entry.betterThan(current) {
				best[entry.PlayerID] = entry
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan rankings: %w", err)
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
