// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"matchmaking-workers/internal/models"
)

//go:embed categories.json
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid category catalog")

// LoadCatalog reads a catalog file. An empty path yields the embedded catalog.
func LoadCatalog(path string) (*CategoryCatalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Default() (*CategoryCatalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*CategoryCatalog, error) {
	var cat CategoryCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	for i := range cat.Categories {
		def := &cat.Categories[i]
		for j := range def.Questions {
			def.Questions[j].Category = def.ID
		}
		for j := range def.Criteria {
			def.Criteria[j].Category = def.ID
		}
	}
	if problems := Validate(&cat); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, problems[0])
	}
	return &cat, nil
}

// Validate returns every structural problem found in the catalog.
func Validate(cat *CategoryCatalog) []error {
	var problems []error
	seen := make(map[string]bool)
	for _, def := range cat.Categories {
		if def.ID == "" {
			problems = append(problems, errors.New("category with empty id"))
			continue
		}
		if seen[def.ID] {
			problems = append(problems, fmt.Errorf("duplicate category %q", def.ID))
		}
		seen[def.ID] = true

		couple := questionIndex(def.QuestionsFor(models.RoleCouple))
		provider := questionIndex(def.QuestionsFor(models.RoleProvider))

		for _, q := range def.Questions {
			if q.DependsOn == nil {
				continue
			}
			idx := couple
			if q.Role == models.RoleProvider {
				idx = provider
			}
			if _, ok := idx[q.DependsOn.QuestionID]; !ok {
				problems = append(problems, fmt.Errorf("%s/%s: dependsOn unknown question %q", def.ID, q.ID, q.DependsOn.QuestionID))
			}
		}

		if len(def.Criteria) == 0 {
			problems = append(problems, fmt.Errorf("%s: no criteria", def.ID))
		}
		for _, c := range def.Criteria {
			if c.Weight <= 0 {
				problems = append(problems, fmt.Errorf("%s/%s: weight must be positive", def.ID, c.ID))
			}
			if _, ok := couple[c.CoupleQuestionID]; !ok {
				problems = append(problems, fmt.Errorf("%s/%s: unknown couple question %q", def.ID, c.ID, c.CoupleQuestionID))
			}
			if _, ok := provider[c.ProviderQuestionID]; !ok {
				problems = append(problems, fmt.Errorf("%s/%s: unknown provider question %q", def.ID, c.ID, c.ProviderQuestionID))
			}
			switch c.Comparison {
			case models.ComparisonExact, models.ComparisonContains, models.ComparisonRange:
			case models.ComparisonThreshold:
				if c.Direction != models.ThresholdMin && c.Direction != models.ThresholdMax {
					problems = append(problems, fmt.Errorf("%s/%s: threshold needs direction min or max", def.ID, c.ID))
				}
			default:
				problems = append(problems, fmt.Errorf("%s/%s: unknown comparison %q", def.ID, c.ID, c.Comparison))
			}
		}
	}
	return problems
}

func questionIndex(qs []models.SurveyQuestion) map[string]models.SurveyQuestion {
	idx := make(map[string]models.SurveyQuestion, len(qs))
	for _, q := range qs {
		idx[q.ID] = q
	}
	return idx
}
