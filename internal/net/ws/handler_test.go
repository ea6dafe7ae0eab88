package ws

import (
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ringrace/server"
	"ringrace/server/internal/catalog"
	"ringrace/server/internal/ranking"
)

const testRaces = `
zones:
  - zone: 33
    raceId: 1
    podFactor: 1
    timeFactor: 1
    scaleFactor: 4
    maxPods: 5
    maxTime: 60
    maxScore: 100
agents:
  - id: 2803
    zone: 33
`

const testRewards = `
rewards:
  - raceId: 1
    tiers:
      - minScore: 0
        itemId: 0
`

func raceCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	paths := catalog.Paths{
		Races:   filepath.Join(dir, "races.yaml"),
		Rewards: filepath.Join(dir, "rewards.yaml"),
	}
	for path, body := range map[string]string{
		paths.Races:   testRaces,
		paths.Rewards: testRewards,
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

func newTestServer(t *testing.T) (*httptest.Server, *server.Hub) {
	t.Helper()
	hub := server.NewHub(server.DefaultHubConfig(), zerolog.Nop(), raceCatalog(t), ranking.NewMemoryStore(), nil)
	handler := NewHandler(hub, zerolog.Nop())
	srv := httptest.NewServer(nethttp.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHandleRequiresPlayerID(t *testing.T) {
	hub := server.NewHub(server.DefaultHubConfig(), zerolog.Nop(), raceCatalog(t), ranking.NewMemoryStore(), nil)
	handler := NewHandler(hub, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(nethttp.MethodGet, "/", nil))
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("expected 400 without an id, got %d", rec.Code)
	}
}

func TestHandleClosesUnknownPlayer(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "ghost")

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected a policy-violation close for an unknown player, got %v", err)
	}
}

func TestDispatchRoundTrip(t *testing.T) {
	srv, hub := newTestServer(t)
	playerID := hub.Join()
	conn := dial(t, srv, playerID)

	if err := conn.WriteJSON(map[string]any{"type": "race_start", "agentId": 2803}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var resp struct {
		Type      string `json:"type"`
		LimitTime int    `json:"limitTime"`
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.Type != "race_start_ok" || resp.LimitTime != 60 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestReconnectKeepsPlayerAndSession(t *testing.T) {
	srv, hub := newTestServer(t)
	playerID := hub.Join()

	first := dial(t, srv, playerID)
	if err := first.WriteJSON(map[string]any{"type": "race_start", "agentId": 2803}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	var ack struct {
		Type string `json:"type"`
	}
	if err := first.ReadJSON(&ack); err != nil || ack.Type != "race_start_ok" {
		t.Fatalf("start not acknowledged: %+v err %v", ack, err)
	}

	// A second connection for the same player replaces the first; the
	// server closes the old one and its read loop winds down.
	second := dial(t, srv, playerID)
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatalf("expected the replaced connection to be closed")
	}

	if !hub.GrantMoney(playerID, 1) {
		t.Fatalf("player must survive the reconnect")
	}

	// The in-progress session keeps working over the new connection.
	if err := second.WriteJSON(map[string]any{"type": "ring_collect", "ringId": 7}); err != nil {
		t.Fatalf("write collect: %v", err)
	}
	var ring struct {
		Type      string `json:"type"`
		RingCount int    `json:"ringCount"`
	}
	if err := second.ReadJSON(&ring); err != nil {
		t.Fatalf("read collect response: %v", err)
	}
	if ring.Type != "ring_ok" || ring.RingCount != 1 {
		t.Fatalf("unexpected collect response: %+v", ring)
	}
}
