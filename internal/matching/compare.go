// internal/matching/compare.go
package matching

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"matchmaking-workers/internal/models"
)

const floatTolerance = 1e-9

// Comparator turns one couple answer and one provider answer into a match
// fraction in [0,1]. The boolean result is false when either side is missing,
// in which case the criterion must not be counted at all.
type Comparator struct {
	// DecaySlope controls threshold partial credit: a provider that misses the
	// boundary by a relative distance d earns max(0, 1 - DecaySlope*d).
	DecaySlope float64
}

func (c Comparator) Compare(criterion models.MatchCriterion, coupleValue, providerValue interface{}) (float64, bool) {
	if isMissing(coupleValue) || isMissing(providerValue) {
		return 0, false
	}

	switch criterion.Comparison {
	case models.ComparisonExact:
		return compareExact(coupleValue, providerValue)
	case models.ComparisonContains:
		return compareContains(coupleValue, providerValue)
	case models.ComparisonThreshold:
		return c.compareThreshold(criterion.Direction, coupleValue, providerValue)
	case models.ComparisonRange:
		return compareRange(coupleValue, providerValue)
	default:
		return 0, false
	}
}

func compareExact(coupleValue, providerValue interface{}) (float64, bool) {
	_, coupleIsText := coupleValue.(string)
	_, providerIsText := providerValue.(string)
	if !coupleIsText && !providerIsText {
		if a, ok := toNumber(coupleValue); ok {
			if b, ok := toNumber(providerValue); ok {
				if math.Abs(a-b) <= floatTolerance {
					return 1, true
				}
				return 0, true
			}
		}
	}

	a := toSet(coupleValue)
	b := toSet(providerValue)
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	if len(a) != len(b) {
		return 0, true
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return 0, true
		}
	}
	return 1, true
}

func compareContains(coupleValue, providerValue interface{}) (float64, bool) {
	wanted := toSet(coupleValue)
	offered := toSet(providerValue)
	if len(wanted) == 0 || len(offered) == 0 {
		return 0, false
	}
	hits := 0
	for k := range wanted {
		if _, ok := offered[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(wanted)), true
}

func (c Comparator) compareThreshold(direction models.ThresholdDirection, coupleValue, providerValue interface{}) (float64, bool) {
	boundary, ok := toNumber(coupleValue)
	if !ok {
		return 0, false
	}
	actual, ok := toNumber(providerValue)
	if !ok {
		return 0, false
	}

	var miss float64
	switch direction {
	case models.ThresholdMax:
		if actual <= boundary {
			return 1, true
		}
		miss = actual - boundary
	default:
		if actual >= boundary {
			return 1, true
		}
		miss = boundary - actual
	}

	if boundary == 0 {
		return 0, true
	}
	return clamp01(1 - c.DecaySlope*miss/math.Abs(boundary)), true
}

func compareRange(coupleValue, providerValue interface{}) (float64, bool) {
	wantLo, wantHi, ok := toRange(coupleValue)
	if !ok {
		return 0, false
	}
	haveLo, haveHi, ok := toRange(providerValue)
	if !ok {
		return 0, false
	}

	length := wantHi - wantLo
	if length <= floatTolerance {
		if wantLo >= haveLo && wantLo <= haveHi {
			return 1, true
		}
		return 0, true
	}
	overlap := math.Min(wantHi, haveHi) - math.Max(wantLo, haveLo)
	if overlap < 0 {
		overlap = 0
	}
	return clamp01(overlap / length), true
}

func isMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(v interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range models.AnswerStrings(v) {
		if n := normalize(s); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// toRange accepts {"min":a,"max":b}, [a,b] or a single number (a point).
func toRange(v interface{}) (float64, float64, bool) {
	var lo, hi float64
	switch r := v.(type) {
	case map[string]interface{}:
		a, okA := toNumber(r["min"])
		b, okB := toNumber(r["max"])
		if !okA || !okB {
			return 0, 0, false
		}
		lo, hi = a, b
	case []interface{}:
		if len(r) != 2 {
			return 0, 0, false
		}
		a, okA := toNumber(r[0])
		b, okB := toNumber(r[1])
		if !okA || !okB {
			return 0, 0, false
		}
		lo, hi = a, b
	case []float64:
		if len(r) != 2 {
			return 0, 0, false
		}
		lo, hi = r[0], r[1]
	default:
		n, ok := toNumber(v)
		if !ok {
			return 0, 0, false
		}
		lo, hi = n, n
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
