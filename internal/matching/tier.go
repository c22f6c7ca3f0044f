// internal/matching/tier.go
package matching

import "matchmaking-workers/internal/models"

// Categorize maps a final score to its tier. Out-of-range scores fall into
// the nearest end tier, so every integer has exactly one tier.
func Categorize(score int) models.MatchCategory {
	switch {
	case score >= 90:
		return models.MatchPerfect
	case score >= 80:
		return models.MatchVeryHigh
	case score >= 70:
		return models.MatchHigh
	case score >= 50:
		return models.MatchMedium
	default:
		return models.MatchLow
	}
}
