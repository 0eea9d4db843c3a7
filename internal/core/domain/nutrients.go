package domain

import (
	"math"
	"sort"
	"strings"
)

// Well-known nutrient keys. The vocabulary is open: any other key is accepted
// and aggregated the same way.
const (
	NutrientCalories = "calories"
	NutrientProtein  = "protein_g"
	NutrientCarbs    = "carbs_g"
	NutrientFat      = "fat_g"
	NutrientFiber    = "fiber_g"
	NutrientSugar    = "sugar_g"
	NutrientSodium   = "sodium_mg"
)

// WellKnownNutrients lists the documented nutrient keys in display order.
var WellKnownNutrients = []string{
	NutrientCalories,
	NutrientProtein,
	NutrientCarbs,
	NutrientFat,
	NutrientFiber,
	NutrientSugar,
	NutrientSodium,
}

// NutrientVector maps a nutrient name to a non-negative amount.
// Absent keys read as zero. Calories are never derived from macros.
type NutrientVector map[string]float64

// Get returns the amount for key, or zero when absent.
func (v NutrientVector) Get(key string) float64 {
	return v[key]
}

// Keys returns the vector's keys sorted with well-known nutrients first.
func (v NutrientVector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	SortNutrientKeys(keys)
	return keys
}

// Clone returns a copy of the vector. A nil vector clones to an empty one.
func (v NutrientVector) Clone() NutrientVector {
	out := make(NutrientVector, len(v))
	for k, amount := range v {
		out[k] = amount
	}
	return out
}

// Merge returns a copy of v with every key of other overriding v's value.
func (v NutrientVector) Merge(other NutrientVector) NutrientVector {
	out := v.Clone()
	for k, amount := range other {
		out[k] = amount
	}
	return out
}

// Validate checks every name and amount and returns a copy of the vector.
// Names are kept exactly as given; only empty or blank names are rejected.
// field prefixes the ValidationError field, e.g. "targets".
func (v NutrientVector) Validate(field string) (NutrientVector, error) {
	out := make(NutrientVector, len(v))
	for key, amount := range v {
		if strings.TrimSpace(key) == "" {
			return nil, NewValidationError(field, "nutrient name must not be empty")
		}
		name := field + "." + key
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, NewValidationError(name, "amount must be a finite number")
		}
		if amount < 0 {
			return nil, NewValidationError(name, "amount must not be negative")
		}
		out[key] = amount
	}
	return out, nil
}

// SumNutrients adds vectors nutrient by nutrient. The reduction is
// deterministic: for each nutrient the amounts are sorted before a
// compensated summation, so the result does not depend on argument order.
func SumNutrients(vectors ...NutrientVector) NutrientVector {
	amounts := make(map[string][]float64)
	for _, v := range vectors {
		for k, amount := range v {
			amounts[k] = append(amounts[k], amount)
		}
	}

	out := make(NutrientVector, len(amounts))
	for k, values := range amounts {
		sort.Float64s(values)
		out[k] = compensatedSum(values)
	}
	return out
}

// compensatedSum is Neumaier's variant of Kahan summation.
func compensatedSum(values []float64) float64 {
	var sum, c float64
	for _, x := range values {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - t) + sum
		}
		sum = t
	}
	return sum + c
}

// SortNutrientKeys orders keys with well-known nutrients first (in
// WellKnownNutrients order) and the rest alphabetically.
func SortNutrientKeys(keys []string) {
	rank := func(k string) int {
		for i, known := range WellKnownNutrients {
			if k == known {
				return i
			}
		}
		return len(WellKnownNutrients)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
}

// UnionKeys returns the sorted union of the keys of all vectors.
func UnionKeys(vectors ...NutrientVector) []string {
	seen := make(map[string]struct{})
	for _, v := range vectors {
		for k := range v {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	SortNutrientKeys(keys)
	return keys
}
