package server

import (
	"ringrace/server/internal/items"
)

// buybackLimit bounds the per-player recent-sales list; the oldest entry is
// forgotten when a sale pushes past it.
const buybackLimit = 5

// WarpLocation is a server-authoritative placement target.
type WarpLocation struct {
	X, Y, Z float64
	Zone    int32
}

// playerState is the per-connection player record the hub owns. Movement,
// missions, and the wider inventory logic live in the surrounding game
// server; the engine only touches the fields its own flows mutate.
type playerState struct {
	ID           string
	X, Y, Z      float64
	Zone         int32
	FusionMatter int
	Money        int
	BatteryW     int
	BatteryN     int
	Inventory    *items.Inventory
	buyback      []items.Item
	respawn      *WarpLocation
}

func (p *playerState) location() WarpLocation {
	return WarpLocation{X: p.X, Y: p.Y, Z: p.Z, Zone: p.Zone}
}

// respawnPoint returns the configured respawn target, falling back to the
// player's current position so a placement message can always be sent.
func (p *playerState) respawnPoint() WarpLocation {
	if p.respawn != nil {
		return *p.respawn
	}
	return p.location()
}

func (p *playerState) pushBuyback(item items.Item) {
	p.buyback = append(p.buyback, item)
	if len(p.buyback) > buybackLimit {
		p.buyback = p.buyback[1:]
	}
}

// removeBuyback drops the first entry identical to item. The client operates
// on the first identical entry too, so this keeps both sides in sync even
// when duplicates exist.
func (p *playerState) removeBuyback(item items.Item) {
	for i, candidate := range p.buyback {
		if candidate.ID == item.ID && candidate.Type == item.Type && candidate.Opt == item.Opt {
			p.buyback = append(p.buyback[:i], p.buyback[i+1:]...)
			return
		}
	}
}
