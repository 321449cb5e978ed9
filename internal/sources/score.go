package sources

import "math"

const (
	// DefaultSmoothing is the EMA weight of the latest review outcome.
	DefaultSmoothing = 0.2

	// NeutralScore seeds sources with no prior signal.
	NeutralScore = 0.5
)

// UpdateScore moves score toward the latest outcome (1 approved, 0 rejected)
// by alpha. The result is clamped to [0,1]; alpha outside (0,1] falls back to
// DefaultSmoothing.
func UpdateScore(score float64, approved bool, alpha float64) float64 {
	if alpha <= 0 || alpha > 1 || math.IsNaN(alpha) {
		alpha = DefaultSmoothing
	}

	outcome := 0.0
	if approved {
		outcome = 1
	}

	return clamp((1-alpha)*clamp(score) + alpha*outcome)
}

// SeedScore is the initial reliability of a new source: the mean
// self-reported confidence of its first run, or NeutralScore without candidates.
func SeedScore(meanConfidence float64, candidates int) float64 {
	if candidates == 0 || math.IsNaN(meanConfidence) {
		return NeutralScore
	}
	return clamp(meanConfidence)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return NeutralScore
	}
	return max(0, min(1, v))
}
