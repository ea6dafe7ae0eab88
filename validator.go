package server

// RunValidator is the anti-cheat extension point. The engine cannot verify
// client positions or timing on its own, so ring collection and race
// completion offer each request to a validator before honoring it. A
// rejected request is dropped silently, like any other malformed one.
type RunValidator interface {
	// AllowCollect is consulted before a ring is added. ringsCollected is
	// the count before this ring; elapsedSeconds is measured from the
	// session start.
	AllowCollect(playerID string, ringID int32, ringsCollected int, elapsedSeconds int64) bool

	// AllowFinish is consulted before a run is scored and persisted.
	AllowFinish(playerID string, podsCollected int, elapsedSeconds int64) bool
}

// allowAll honors every request. It is the default, matching the protocol's
// documented lack of an anti-cheat layer.
type allowAll struct{}

func (allowAll) AllowCollect(string, int32, int, int64) bool { return true }
func (allowAll) AllowFinish(string, int, int64) bool         { return true }

// PaceValidator rejects runs that collect rings faster than a human on the
// course plausibly could. It is a coarse replay-protection heuristic, not a
// proof of fairness.
type PaceValidator struct {
	// MinSecondsPerRing is the lower bound on average seconds per
	// collected ring.
	MinSecondsPerRing float64
}

func (v PaceValidator) AllowCollect(_ string, _ int32, ringsCollected int, elapsedSeconds int64) bool {
	required := v.MinSecondsPerRing * float64(ringsCollected+1)
	return float64(elapsedSeconds) >= required
}

func (v PaceValidator) AllowFinish(_ string, podsCollected int, elapsedSeconds int64) bool {
	if podsCollected == 0 {
		return true
	}
	return float64(elapsedSeconds) >= v.MinSecondsPerRing*float64(podsCollected)
}
