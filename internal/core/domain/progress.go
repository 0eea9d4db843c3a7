package domain

// IntakeSummary is the aggregated intake for one day window, independent of
// any goal.
type IntakeSummary struct {
	// UserID identifies whose ledger was aggregated.
	UserID string

	// Day is the calendar day that was aggregated.
	Day Date

	// Timezone is the IANA name of the location used for the day window.
	Timezone string

	// Window is the resolved [start, end) interval.
	Window DayWindow

	// Consumed is the nutrient-wise sum of all effective entries.
	Consumed NutrientVector

	// ByMeal breaks Consumed down by meal label. Unlabelled entries are
	// grouped under the empty label.
	ByMeal map[string]NutrientVector

	// EntryCount is the number of effective entries aggregated.
	EntryCount int
}

// ProgressSnapshot compares a day's intake against the goal that applied.
// It is derived on every query and never persisted or cached.
type ProgressSnapshot struct {
	IntakeSummary

	// Goal is the goal used for comparison. Nil only in history listings for
	// days without a goal.
	Goal *Goal

	// Remaining is max(0, target - consumed) per nutrient; never negative.
	Remaining NutrientVector

	// PercentOfGoal is consumed/target per nutrient with a positive target.
	// Nutrients whose target is zero or absent have no entry: the ratio is
	// undefined rather than a division error.
	PercentOfGoal map[string]float64
}

// Percent returns the consumed/target ratio for nutrient and whether it is
// defined.
func (s *ProgressSnapshot) Percent(nutrient string) (float64, bool) {
	p, ok := s.PercentOfGoal[nutrient]
	return p, ok
}

// Nutrients returns every nutrient present in the targets or the intake, in
// display order.
func (s *ProgressSnapshot) Nutrients() []string {
	if s.Goal == nil {
		return UnionKeys(s.Consumed)
	}
	return UnionKeys(s.Goal.Targets, s.Consumed)
}

// NutrientProgress is one row of a snapshot, convenient for rendering.
type NutrientProgress struct {
	Nutrient  string
	Target    float64
	HasTarget bool
	Consumed  float64
	Remaining float64
	Percent   float64
	// PercentDefined is false when the target is zero or absent.
	PercentDefined bool
}

// Rows flattens the snapshot into per-nutrient rows in display order.
func (s *ProgressSnapshot) Rows() []NutrientProgress {
	names := s.Nutrients()
	rows := make([]NutrientProgress, 0, len(names))
	for _, n := range names {
		row := NutrientProgress{
			Nutrient:  n,
			Consumed:  s.Consumed.Get(n),
			Remaining: s.Remaining.Get(n),
		}
		if s.Goal != nil {
			row.Target, row.HasTarget = s.Goal.Targets[n]
		}
		row.Percent, row.PercentDefined = s.Percent(n)
		rows = append(rows, row)
	}
	return rows
}

// TargetsMet counts the nutrients with a positive target and how many of
// them have been reached.
func (s *ProgressSnapshot) TargetsMet() (met, targeted int) {
	if s.Goal == nil {
		return 0, 0
	}
	for n, target := range s.Goal.Targets {
		if target <= 0 {
			continue
		}
		targeted++
		if s.Consumed.Get(n) >= target {
			met++
		}
	}
	return met, targeted
}
