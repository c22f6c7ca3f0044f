// internal/matching/specialization.go
package matching

import "math"

// Policy holds the scoring knobs that come from configuration.
type Policy struct {
	SpecialistBonus     float64
	GeneralistThreshold int
	GeneralistPenalty   float64
	ThresholdDecaySlope float64
}

func DefaultPolicy() Policy {
	return Policy{
		SpecialistBonus:     5,
		GeneralistThreshold: 3,
		GeneralistPenalty:   3,
		ThresholdDecaySlope: 3,
	}
}

// Adjust applies the specialist bonus or generalist penalty to a raw score,
// clamps to [0,100] and rounds to the nearest integer. Rounding happens once,
// after clamping.
func (p Policy) Adjust(rawScore float64, providerCategoryCount int) int {
	adjusted := rawScore
	switch {
	case providerCategoryCount == 1:
		adjusted += p.SpecialistBonus
	case providerCategoryCount > p.GeneralistThreshold:
		adjusted -= p.GeneralistPenalty
	}
	return int(math.Round(clampScore(adjusted)))
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
