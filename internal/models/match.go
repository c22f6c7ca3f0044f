// internal/models/match.go
package models

type ComparisonType string

const (
	ComparisonExact     ComparisonType = "exact"
	ComparisonContains  ComparisonType = "contains"
	ComparisonThreshold ComparisonType = "threshold"
	ComparisonRange     ComparisonType = "range"
)

// ThresholdDirection says whether the couple's number is a floor or a ceiling
// for the provider's number.
type ThresholdDirection string

const (
	ThresholdMin ThresholdDirection = "min"
	ThresholdMax ThresholdDirection = "max"
)

type MatchCriterion struct {
	ID                 string             `json:"id"`
	Category           string             `json:"category"`
	CoupleQuestionID   string             `json:"coupleQuestionId"`
	ProviderQuestionID string             `json:"providerQuestionId"`
	Comparison         ComparisonType     `json:"comparison"`
	Direction          ThresholdDirection `json:"direction,omitempty"`
	Weight             float64            `json:"weight"`
	Required           bool               `json:"required"`
}

type MatchDetail struct {
	CriterionID   string         `json:"criterionId"`
	Comparison    ComparisonType `json:"comparison"`
	CoupleValue   interface{}    `json:"coupleValue"`
	ProviderValue interface{}    `json:"providerValue"`
	Evaluated     bool           `json:"evaluated"`
	Fraction      float64        `json:"fraction"`
	Weight        float64        `json:"weight"`
	Contribution  float64        `json:"contribution"`
	Required      bool           `json:"required"`
}

type MatchCategory string

const (
	MatchPerfect  MatchCategory = "perfect"
	MatchVeryHigh MatchCategory = "very_high"
	MatchHigh     MatchCategory = "high"
	MatchMedium   MatchCategory = "medium"
	MatchLow      MatchCategory = "low"
)

type MatchResult struct {
	ProviderID       string        `json:"providerId"`
	Category         string        `json:"category"`
	RawScore         float64       `json:"rawScore"`
	Score            int           `json:"score"`
	Tier             MatchCategory `json:"tier"`
	RequiredCoverage float64       `json:"requiredCoverage"`
	Details          []MatchDetail `json:"details"`
}
