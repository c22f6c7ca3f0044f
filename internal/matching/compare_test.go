// internal/matching/compare_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matchmaking-workers/internal/models"
)

func criterion(cmp models.ComparisonType, dir models.ThresholdDirection) models.MatchCriterion {
	return models.MatchCriterion{ID: "c", Comparison: cmp, Direction: dir, Weight: 1}
}

func TestComparator_Exact(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}
	tests := []struct {
		name     string
		couple   interface{}
		provider interface{}
		want     float64
	}{
		{"trimmed case-insensitive strings", "Rustic ", "rustic", 1},
		{"different strings", "yes", "no", 0},
		{"numbers", 5, 5.0, 1},
		{"different numbers", 4.0, 5.0, 0},
		{"numeric string against number", "5", 5.0, 1},
		{"booleans equal", true, true, 1},
		{"booleans differ", true, false, 0},
		{"sets ignore order", []interface{}{"a", "b"}, []string{"B", "a"}, 1},
		{"sets differ in size", []interface{}{"a", "b"}, []string{"a"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cmp.Compare(criterion(models.ComparisonExact, ""), tt.couple, tt.provider)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparator_Contains(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}
	tests := []struct {
		name     string
		couple   interface{}
		provider interface{}
		want     float64
	}{
		{"half of wanted set offered", []interface{}{"rustic", "boho"}, []interface{}{"boho"}, 0.5},
		{"all wanted offered", []interface{}{"rustic", "boho"}, []interface{}{"BOHO", "rustic", "modern"}, 1},
		{"scalar member", "boho", []interface{}{"boho", "modern"}, 1},
		{"scalar not member", "classic", []interface{}{"boho", "modern"}, 0},
		{"scalar provider as singleton", []interface{}{"boho"}, "boho", 1},
		{"duplicates counted once", []interface{}{"boho", "boho", "rustic"}, []interface{}{"boho"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cmp.Compare(criterion(models.ComparisonContains, ""), tt.couple, tt.provider)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComparator_Threshold(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}
	tests := []struct {
		name      string
		direction models.ThresholdDirection
		couple    interface{}
		provider  interface{}
		want      float64
	}{
		{"min satisfied", models.ThresholdMin, 1000000.0, 1200000.0, 1},
		{"min exactly on boundary", models.ThresholdMin, 1000000.0, 1000000.0, 1},
		{"min partial credit", models.ThresholdMin, 1000000.0, 800000.0, 0.4},
		{"min floored at zero", models.ThresholdMin, 1000000.0, 500000.0, 0},
		{"max satisfied", models.ThresholdMax, 5000.0, 4500.0, 1},
		{"max partial credit", models.ThresholdMax, 5000.0, 6000.0, 0.4},
		{"max floored at zero", models.ThresholdMax, 5000.0, 7000.0, 0},
		{"zero boundary missed", models.ThresholdMax, 0.0, 1.0, 0},
		{"numeric strings", models.ThresholdMin, "100", "90", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cmp.Compare(criterion(models.ComparisonThreshold, tt.direction), tt.couple, tt.provider)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComparator_ThresholdSlopeIsConfigurable(t *testing.T) {
	c := criterion(models.ComparisonThreshold, models.ThresholdMin)

	gentle, _ := Comparator{DecaySlope: 1}.Compare(c, 100.0, 80.0)
	steep, _ := Comparator{DecaySlope: 5}.Compare(c, 100.0, 80.0)

	assert.InDelta(t, 0.8, gentle, 1e-9)
	assert.InDelta(t, 0.0, steep, 1e-9)
}

func TestComparator_Range(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}
	tests := []struct {
		name     string
		couple   interface{}
		provider interface{}
		want     float64
	}{
		{"half overlap", map[string]interface{}{"min": 6.0, "max": 10.0}, []interface{}{8.0, 12.0}, 0.5},
		{"fully covered", []interface{}{6.0, 8.0}, []interface{}{4.0, 12.0}, 1},
		{"disjoint", []interface{}{1.0, 2.0}, []interface{}{5.0, 6.0}, 0},
		{"reversed bounds", []interface{}{10.0, 6.0}, []interface{}{8.0, 12.0}, 0.5},
		{"degenerate inside", []interface{}{8.0, 8.0}, []interface{}{6.0, 10.0}, 1},
		{"degenerate outside", 11.0, []interface{}{6.0, 10.0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cmp.Compare(criterion(models.ComparisonRange, ""), tt.couple, tt.provider)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComparator_MissingValues(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}
	missing := []interface{}{nil, "", "   ", []interface{}{}, []string{}, map[string]interface{}{}}

	for _, m := range missing {
		for _, typ := range []models.ComparisonType{
			models.ComparisonExact, models.ComparisonContains, models.ComparisonThreshold, models.ComparisonRange,
		} {
			_, ok := cmp.Compare(criterion(typ, models.ThresholdMin), m, 5.0)
			assert.False(t, ok, "%s with couple value %#v", typ, m)
			_, ok = cmp.Compare(criterion(typ, models.ThresholdMin), 5.0, m)
			assert.False(t, ok, "%s with provider value %#v", typ, m)
		}
	}
}

func TestComparator_UnparseableValuesAreUndefined(t *testing.T) {
	cmp := Comparator{DecaySlope: 3}

	_, ok := cmp.Compare(criterion(models.ComparisonThreshold, models.ThresholdMin), "lots", 5.0)
	assert.False(t, ok)

	_, ok = cmp.Compare(criterion(models.ComparisonRange, ""), []interface{}{1.0}, []interface{}{1.0, 2.0})
	assert.False(t, ok)

	_, ok = cmp.Compare(criterion("fuzzy", ""), "a", "a")
	assert.False(t, ok)
}
