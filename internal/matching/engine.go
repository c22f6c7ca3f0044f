// internal/matching/engine.go
package matching

import (
	"fmt"
	"math"

	"matchmaking-workers/internal/models"
)

// Engine scores couple/provider questionnaire pairs. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	registry   *Registry
	comparator Comparator
	policy     Policy
}

func NewEngine(reg *Registry, policy Policy) *Engine {
	return &Engine{
		registry:   reg,
		comparator: Comparator{DecaySlope: policy.ThresholdDecaySlope},
		policy:     policy,
	}
}

func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) Policy() Policy { return e.policy }

// Score computes the unadjusted compatibility of one pair. The returned
// result carries Score and Tier for a provider with neutral specialization.
func (e *Engine) Score(category string, couple, provider models.SurveyResponses) (*models.MatchResult, error) {
	criteria, err := e.registry.Criteria(category)
	if err != nil {
		return nil, err
	}

	coupleQs, _ := e.registry.Questions(category, models.RoleCouple)
	providerQs, _ := e.registry.Questions(category, models.RoleProvider)
	couple = models.VisibleResponses(coupleQs, couple)
	provider = models.VisibleResponses(providerQs, provider)

	var (
		sumContribution float64
		sumWeight       float64
		requiredTotal   int
		requiredSeen    int
		details         = make([]models.MatchDetail, 0, len(criteria))
	)

	for _, c := range criteria {
		cv := couple[c.CoupleQuestionID]
		pv := provider[c.ProviderQuestionID]
		detail := models.MatchDetail{
			CriterionID:   c.ID,
			Comparison:    c.Comparison,
			CoupleValue:   cv,
			ProviderValue: pv,
			Weight:        c.Weight,
			Required:      c.Required,
		}
		if c.Required {
			requiredTotal++
		}

		fraction, ok := e.comparator.Compare(c, cv, pv)
		if ok {
			detail.Evaluated = true
			detail.Fraction = fraction
			detail.Contribution = fraction * c.Weight
			sumContribution += detail.Contribution
			sumWeight += c.Weight
			if c.Required {
				requiredSeen++
			}
		}
		details = append(details, detail)
	}

	if sumWeight == 0 {
		return nil, fmt.Errorf("%w: category %s", ErrIncompleteSurveyData, category)
	}

	coverage := 1.0
	if requiredTotal > 0 {
		coverage = float64(requiredSeen) / float64(requiredTotal)
	}

	raw := 100 * sumContribution / sumWeight
	score := int(math.Round(clampScore(raw)))
	return &models.MatchResult{
		Category:         category,
		RawScore:         raw,
		Score:            score,
		Tier:             Categorize(score),
		RequiredCoverage: coverage,
		Details:          details,
	}, nil
}

// ScoreCandidate scores a candidate and applies the specialization
// adjustment, producing the final ranked score and tier.
func (e *Engine) ScoreCandidate(category string, couple models.SurveyResponses, candidate models.Candidate) (*models.MatchResult, error) {
	result, err := e.Score(category, couple, candidate.Responses)
	if err != nil {
		return nil, err
	}
	result.ProviderID = candidate.ProviderID
	result.Score = e.policy.Adjust(result.RawScore, candidate.CategoryCount)
	result.Tier = Categorize(result.Score)
	return result, nil
}
