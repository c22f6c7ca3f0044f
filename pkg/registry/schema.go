// pkg/registry/schema.go
package registry

import "matchmaking-workers/internal/models"

type CategoryCatalog struct {
	Version     string               `json:"version"`
	LastUpdated string               `json:"lastUpdated"`
	Categories  []CategoryDefinition `json:"categories"`
}

type CategoryDefinition struct {
	ID          string                  `json:"id"`
	DisplayName string                  `json:"displayName"`
	Description string                  `json:"description"`
	Questions   []models.SurveyQuestion `json:"questions"`
	Criteria    []models.MatchCriterion `json:"criteria"`
}

// QuestionsFor returns the category questions answered by role, in file order.
func (d CategoryDefinition) QuestionsFor(role models.Role) []models.SurveyQuestion {
	out := make([]models.SurveyQuestion, 0, len(d.Questions))
	for _, q := range d.Questions {
		if q.Role == role {
			out = append(out, q)
		}
	}
	return out
}
