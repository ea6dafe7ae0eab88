// Package app assembles the server from its parts: catalog, ranking store,
// cache, event publisher, hub, and HTTP surface.
package app

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ringrace/server"
	"ringrace/server/internal/catalog"
	"ringrace/server/internal/events"
	ringnet "ringrace/server/internal/net"
	"ringrace/server/internal/ranking"
)

const shutdownTimeout = 10 * time.Second

// Run starts the server and blocks until ctx is cancelled or the listener
// fails.
func Run(ctx context.Context, cfg Config) error {
	log := newLogger(cfg)

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := events.Publisher(events.Nop{})
	if cfg.NATS.Enabled {
		nats, err := events.Connect(cfg.NATS.URL, log)
		if err != nil {
			return fmt.Errorf("connect event bus: %w", err)
		}
		defer nats.Close()
		publisher = nats
	}

	hubCfg := server.DefaultHubConfig()
	hubCfg.ScoreCapEnabled = cfg.Race.ScoreCapEnabled
	hubCfg.SessionExpiry = cfg.Race.SessionExpiry
	hubCfg.ExpiryGrace = cfg.Race.ExpiryGrace.Std()
	hub := server.NewHub(hubCfg, log, cat, store, publisher)

	sweepStop := make(chan struct{})
	go hub.RunExpirySweep(sweepStop)
	defer close(sweepStop)

	board, _ := store.(ranking.Leaderboard)
	srv := &nethttp.Server{
		Addr:    cfg.ListenAddr,
		Handler: ringnet.NewHTTPHandler(hub, board, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("store", cfg.Store.Backend).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildStore constructs the configured ranking store and, when caching is
// enabled, wraps it in the read-through cache.
func buildStore(ctx context.Context, cfg Config, log zerolog.Logger) (ranking.Store, func(), error) {
	var (
		store   ranking.Store
		cleanup func()
	)

	switch cfg.Store.Backend {
	case StoreMemory:
		store = ranking.NewMemoryStore()
		cleanup = func() {}
	case StoreBadger:
		db, err := badger.Open(badger.DefaultOptions(cfg.Store.BadgerDir).WithLogger(nil))
		if err != nil {
			return nil, nil, fmt.Errorf("open badger: %w", err)
		}
		store = ranking.NewBadgerStore(db)
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("badger close failed")
			}
		}
	case StorePostgres:
		pg, err := ranking.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store = pg
		cleanup = pg.Close
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		store = ranking.NewCachedStore(store, rdb, cfg.Cache.TTL.Std(), log)
		inner := cleanup
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
			inner()
		}
	}

	return store, cleanup, nil
}

func newLogger(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = zerolog.New(os.Stderr)
	if cfg.Log.Pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return out.Level(level).With().Timestamp().Logger()
}
