package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ringrace/server/internal/catalog"
	"ringrace/server/internal/events"
	"ringrace/server/internal/items"
	"ringrace/server/internal/ranking"
)

const writeWait = 10 * time.Second

// Hub owns every mutable table in the engine: players, in-progress race
// sessions, and attached connections. All request processing is serialized
// behind its mutex, so handlers never observe a half-updated session.
type Hub struct {
	mu          sync.Mutex
	cfg         HubConfig
	log         zerolog.Logger
	catalog     *catalog.Catalog
	store       ranking.Store
	events      events.Publisher
	validator   RunValidator
	now         func() time.Time
	players     map[string]*playerState
	sessions    map[string]*raceSession
	subscribers map[string]*subscriber
}

// Conn is the transport surface the hub writes to. *websocket.Conn
// satisfies it; tests substitute a stub.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	conn Conn
	mu   sync.Mutex
}

// NewHub wires the engine together. store and cat are required; publisher
// and the validator fall back to no-ops when nil.
func NewHub(cfg HubConfig, log zerolog.Logger, cat *catalog.Catalog, store ranking.Store, publisher events.Publisher) *Hub {
	if publisher == nil {
		publisher = events.Nop{}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Hub{
		cfg:         cfg,
		log:         log,
		catalog:     cat,
		store:       store,
		events:      publisher,
		validator:   allowAll{},
		now:         now,
		players:     make(map[string]*playerState),
		sessions:    make(map[string]*raceSession),
		subscribers: make(map[string]*subscriber),
	}
}

// SetValidator installs an anti-cheat validator. Passing nil restores the
// allow-everything default.
func (h *Hub) SetValidator(v RunValidator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v == nil {
		v = allowAll{}
	}
	h.validator = v
}

// Join registers a new player and returns its id.
func (h *Hub) Join() string {
	id := uuid.NewString()
	h.mu.Lock()
	h.players[id] = &playerState{
		ID:        id,
		Inventory: items.NewInventory(),
	}
	h.mu.Unlock()
	h.log.Info().Str("player", id).Msg("player joined")
	return id
}

// Subscribe attaches a connection to a joined player, replacing and closing
// any previous connection.
func (h *Hub) Subscribe(playerID string, conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.players[playerID]; !ok {
		return false
	}
	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	h.subscribers[playerID] = &subscriber{conn: conn}
	return true
}

// Unsubscribe detaches one specific connection. Only the read loop that
// still owns the live subscriber tears the player down; a loop whose
// connection was already replaced by a reconnect closes its own conn and
// leaves the player and any in-progress session alone.
func (h *Hub) Unsubscribe(playerID string, conn Conn) {
	h.mu.Lock()
	sub, ok := h.subscribers[playerID]
	if !ok || sub.conn != conn {
		h.mu.Unlock()
		conn.Close()
		return
	}
	delete(h.subscribers, playerID)
	delete(h.sessions, playerID)
	delete(h.players, playerID)
	h.mu.Unlock()

	conn.Close()
	h.log.Info().Str("player", playerID).Msg("player left")
}

// Disconnect removes a player along with any in-progress session.
func (h *Hub) Disconnect(playerID string) {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	delete(h.subscribers, playerID)
	delete(h.sessions, playerID)
	delete(h.players, playerID)
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	h.log.Info().Str("player", playerID).Msg("player left")
}

// PlacePlayer moves a player to an authoritative position. The surrounding
// game server owns movement; the engine only needs placement for respawn
// handling.
func (h *Hub) PlacePlayer(playerID string, loc WarpLocation) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	plr, ok := h.players[playerID]
	if !ok {
		return false
	}
	plr.X, plr.Y, plr.Z, plr.Zone = loc.X, loc.Y, loc.Z, loc.Zone
	return true
}

// SetRespawn configures a player's respawn point.
func (h *Hub) SetRespawn(playerID string, loc WarpLocation) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	plr, ok := h.players[playerID]
	if !ok {
		return false
	}
	point := loc
	plr.respawn = &point
	return true
}

// GrantMoney credits a player's balance; vendor tests and the surrounding
// server use it to seed funds.
func (h *Hub) GrantMoney(playerID string, amount int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	plr, ok := h.players[playerID]
	if !ok {
		return false
	}
	plr.Money += amount
	return true
}

// GiveItem places an item into a specific inventory slot.
func (h *Hub) GiveItem(playerID string, slot int, item items.Item) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	plr, ok := h.players[playerID]
	if !ok {
		return false
	}
	return plr.Inventory.Set(slot, item) == nil
}

// Dispatch routes one client request and returns the responses to deliver,
// in order. An empty slice means the request was dropped.
func (h *Hub) Dispatch(playerID string, msg ClientMessage) []any {
	h.mu.Lock()
	defer h.mu.Unlock()

	plr, ok := h.players[playerID]
	if !ok {
		return nil
	}

	switch msg.Type {
	case MsgRaceStart:
		return h.raceStart(plr, msg)
	case MsgRingCollect:
		return h.ringCollect(plr, msg)
	case MsgRaceCancel:
		return h.raceCancel(plr)
	case MsgRaceFinish:
		return h.raceFinish(plr, msg)
	case MsgVendorStart:
		return h.vendorStart(msg)
	case MsgVendorTable:
		return h.vendorTable(msg)
	case MsgVendorBuy:
		return h.vendorBuy(plr, msg)
	case MsgVendorSell:
		return h.vendorSell(plr, msg)
	case MsgVendorBuyback:
		return h.vendorBuyback(plr, msg)
	case MsgVendorBattery:
		return h.vendorBattery(plr, msg)
	default:
		h.log.Debug().Str("player", playerID).Str("type", msg.Type).Msg("discarding unknown message type")
		return nil
	}
}

// Send delivers messages to a player's attached connection, if any. Writes
// are serialized per subscriber, so the request loop and the expiry sweep
// never interleave frames.
func (h *Hub) Send(playerID string, msgs ...any) {
	h.mu.Lock()
	sub, ok := h.subscribers[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	for _, msg := range msgs {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteJSON(msg); err != nil {
			h.log.Warn().Err(err).Str("player", playerID).Msg("failed to deliver message")
			return
		}
	}
}

// RunExpirySweep periodically force-cancels sessions past their time limit.
// It is a no-op loop unless SessionExpiry is configured.
func (h *Hub) RunExpirySweep(stop <-chan struct{}) {
	if !h.cfg.SessionExpiry {
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for playerID, msgs := range h.sweepExpired(h.now()) {
				h.Send(playerID, msgs...)
			}
		}
	}
}

// sweepExpired cancels every session whose run has exceeded the zone time
// limit plus the grace window, and returns the messages owed to each player.
// Expiry reuses the cancel transition, relocation included, so the client
// sees exactly what an explicit cancel produces.
func (h *Hub) sweepExpired(now time.Time) map[string][]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	var expired map[string][]any
	for playerID, session := range h.sessions {
		deadline := session.startTime.Add(time.Duration(session.limitTime)*time.Second + h.cfg.ExpiryGrace)
		if now.Before(deadline) {
			continue
		}
		plr, ok := h.players[playerID]
		if !ok {
			delete(h.sessions, playerID)
			continue
		}
		h.log.Info().Str("player", playerID).Msg("race session expired")
		if expired == nil {
			expired = make(map[string][]any)
		}
		expired[playerID] = h.raceCancel(plr)
	}
	return expired
}
