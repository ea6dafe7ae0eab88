package server

import "time"

// HubConfig carries the tunables the hub is constructed with.
type HubConfig struct {
	// ScoreCapEnabled clamps run scores to the zone's maxScore. The cap is
	// a deployment switch, not a per-zone property.
	ScoreCapEnabled bool

	// SessionExpiry enables the server-side sweep that force-cancels runs
	// exceeding the zone time limit. Off by default: the client protocol
	// ends hung races with an explicit cancel, and the sweep is an opt-in
	// safety net on top of that.
	SessionExpiry bool

	// ExpiryGrace is added to the zone maxTime before the sweep fires, so
	// a legitimate client cancel always wins the race against the sweep.
	ExpiryGrace time.Duration

	// StoreTimeout bounds each ranking round trip during a finish.
	StoreTimeout time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// DefaultHubConfig returns the production defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		ScoreCapEnabled: true,
		SessionExpiry:   false,
		ExpiryGrace:     10 * time.Second,
		StoreTimeout:    5 * time.Second,
	}
}
