// internal/matching/registry.go
package matching

import (
	"fmt"
	"sort"

	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/registry"
)

type categoryEntry struct {
	criteria          []models.MatchCriterion
	coupleQuestions   []models.SurveyQuestion
	providerQuestions []models.SurveyQuestion
}

// Registry is the read-only criterion lookup shared by all requests.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	categories map[string]categoryEntry
}

func NewRegistry(cat *registry.CategoryCatalog) (*Registry, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", registry.ErrInvalidCatalog)
	}
	if problems := registry.Validate(cat); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %v", registry.ErrInvalidCatalog, problems[0])
	}
	return NewRegistryFromDefinitions(cat.Categories...), nil
}

// NewRegistryFromDefinitions builds a registry without catalog validation;
// tests use it for small fixture categories.
func NewRegistryFromDefinitions(defs ...registry.CategoryDefinition) *Registry {
	r := &Registry{categories: make(map[string]categoryEntry, len(defs))}
	for _, def := range defs {
		criteria := make([]models.MatchCriterion, len(def.Criteria))
		copy(criteria, def.Criteria)
		for i := range criteria {
			criteria[i].Category = def.ID
		}
		r.categories[def.ID] = categoryEntry{
			criteria:          criteria,
			coupleQuestions:   def.QuestionsFor(models.RoleCouple),
			providerQuestions: def.QuestionsFor(models.RoleProvider),
		}
	}
	return r
}

// Criteria returns a copy of the ordered criterion list for category.
func (r *Registry) Criteria(category string) ([]models.MatchCriterion, error) {
	entry, ok := r.categories[category]
	if !ok || len(entry.criteria) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	out := make([]models.MatchCriterion, len(entry.criteria))
	copy(out, entry.criteria)
	return out, nil
}

func (r *Registry) Questions(category string, role models.Role) ([]models.SurveyQuestion, error) {
	entry, ok := r.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if role == models.RoleProvider {
		return entry.providerQuestions, nil
	}
	return entry.coupleQuestions, nil
}

func (r *Registry) Has(category string) bool {
	_, ok := r.categories[category]
	return ok
}

func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for id := range r.categories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
