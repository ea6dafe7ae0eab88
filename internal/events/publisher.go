// Package events emits race lifecycle events for the rest of the game server
// (mission progress, telemetry, live leaderboards). The engine never waits
// on a subscriber; publishing is fire-and-forget.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectRaceFinished carries one RaceFinished event per completed run.
const SubjectRaceFinished = "race.finished"

// RaceFinished describes a completed run.
type RaceFinished struct {
	RaceID       int32     `json:"raceId"`
	PlayerID     string    `json:"playerId"`
	RingCount    int       `json:"ringCount"`
	Score        int       `json:"score"`
	Elapsed      int64     `json:"elapsedSeconds"`
	Rank         int       `json:"rank"`
	FusionMatter int       `json:"fusionMatter"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Publisher is the hub's outbound event boundary.
type Publisher interface {
	RaceFinished(event RaceFinished)
}

// Nop discards events; it is the default when NATS is not configured.
type Nop struct{}

func (Nop) RaceFinished(RaceFinished) {}

// NATSPublisher publishes events to a NATS connection.
type NATSPublisher struct {
	nc  *nats.Conn
	log zerolog.Logger
}

// Connect dials NATS and returns a publisher over the connection.
func Connect(url string, log zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{nc: nc, log: log}, nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("nats drain failed")
	}
}

func (p *NATSPublisher) RaceFinished(event RaceFinished) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("marshal race.finished event")
		return
	}
	if err := p.nc.Publish(SubjectRaceFinished, data); err != nil {
		p.log.Warn().Err(err).Str("player", event.PlayerID).Msg("publish race.finished failed")
	}
}
