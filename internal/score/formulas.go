// Package score holds the closed-form race scoring math. Everything here is
// deterministic and free of I/O so the formulas can be pinned by tests.
package score

import "math"

// Params carries the per-zone scoring coefficients and normalization bounds.
// MaxPods and MaxTime must be positive; the catalog loader enforces that.
type Params struct {
	PodFactor   float64
	TimeFactor  float64
	ScaleFactor float64
	MaxPods     int
	MaxTime     int
	MaxScore    int
	Capped      bool
}

// truncate converts an exponential result to an integer. Large coefficients
// can push math.Exp past the integer range or to +Inf, and int(f) on such a
// value is implementation-defined, so clamp before converting.
func truncate(raw float64) int {
	if raw >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(raw)
}

// Run computes the score for a single run. Intermediate math stays in float64
// and the result is truncated to an integer only at the end.
func Run(p Params, podsCollected int, elapsedSeconds int64) int {
	raw := math.Exp(
		p.PodFactor*float64(podsCollected)/float64(p.MaxPods) -
			p.TimeFactor*float64(elapsedSeconds)/float64(p.MaxTime) +
			p.ScaleFactor)
	score := truncate(raw)
	if p.Capped && score > p.MaxScore {
		score = p.MaxScore
	}
	return score
}

// FusionMatter computes the currency reward for a run. Unlike Run it does not
// depend on elapsed time: a slow run with a full pod count still pays out.
func FusionMatter(p Params, podsCollected int) int {
	return truncate((1.0 + math.Exp(p.ScaleFactor-1.0)*p.PodFactor*float64(podsCollected)) / float64(p.MaxPods))
}

// Rank returns the 0-based reward tier for a score against a descending
// threshold list. Scores below every threshold land on the last tier rather
// than out of range.
func Rank(thresholds []int, score int) int {
	maxRank := len(thresholds) - 1
	rank := 0
	for rank < maxRank && thresholds[rank] > score {
		rank++
	}
	return rank
}
