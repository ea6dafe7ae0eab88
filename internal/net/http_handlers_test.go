package net

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ringrace/server"
	"ringrace/server/internal/catalog"
	"ringrace/server/internal/ranking"
)

func emptyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	paths := catalog.Paths{
		Races:   filepath.Join(dir, "races.yaml"),
		Rewards: filepath.Join(dir, "rewards.yaml"),
		Items:   filepath.Join(dir, "items.yaml"),
	}
	for path, body := range map[string]string{
		paths.Races:   "zones: []\nagents: []\n",
		paths.Rewards: "rewards: []\n",
		paths.Items:   "items: []\nvendors: []\n",
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	cat, err := catalog.Load(paths)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat
}

func newTestHandler(t *testing.T, board ranking.Leaderboard) (nethttp.Handler, *server.Hub) {
	t.Helper()
	hub := server.NewHub(server.DefaultHubConfig(), zerolog.Nop(), emptyCatalog(t), ranking.NewMemoryStore(), nil)
	return NewHTTPHandler(hub, board, zerolog.Nop()), hub
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestJoinReturnsPlayerID(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodPost, "/join", nil))

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp joinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode join response: %v", err)
	}
	if resp.PlayerID == "" {
		t.Fatalf("expected a player id")
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	store := ranking.NewMemoryStore()
	now := time.Unix(1700000000, 0)
	for i, entry := range []ranking.Entry{
		{RaceID: 1, PlayerID: "p1", Score: 50, RingCount: 3, ElapsedSeconds: 40},
		{RaceID: 1, PlayerID: "p2", Score: 90, RingCount: 5, ElapsedSeconds: 30},
		{RaceID: 2, PlayerID: "p3", Score: 70, RingCount: 4, ElapsedSeconds: 35},
	} {
		entry.RecordedAt = now.Add(time.Duration(i) * time.Second)
		if err := store.Record(context.Background(), entry); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	handler, _ := newTestHandler(t, store)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/leaderboard/1", nil))

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []leaderboardRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for race 1, got %d", len(rows))
	}
	if rows[0].PlayerID != "p2" || rows[1].PlayerID != "p1" {
		t.Fatalf("expected score-descending order, got %+v", rows)
	}
}

func TestLeaderboardWithoutBackingStore(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/leaderboard/1", nil))
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("expected 404 without leaderboard support, got %d", rec.Code)
	}
}

func TestLeaderboardRejectsBadParams(t *testing.T) {
	handler, _ := newTestHandler(t, ranking.NewMemoryStore())
	for _, target := range []string{"/leaderboard/abc", "/leaderboard/1?limit=0", "/leaderboard/1?limit=x"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, target, nil))
		if rec.Code != nethttp.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", target, rec.Code)
		}
	}
}
