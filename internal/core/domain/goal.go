package domain

import "time"

// Goal is a user's daily nutrition targets.
// Goals are immutable once created: setting a new goal supersedes the
// previous one rather than editing or deleting it, so past days can still be
// evaluated against the goal that applied at the time.
type Goal struct {
	// ID is the unique identifier for the goal.
	ID string

	// UserID owns the goal.
	UserID string

	// CreatedAt is when the goal took effect.
	CreatedAt time.Time

	// Targets are the daily target amounts.
	Targets NutrientVector

	// Active is true when no later goal exists for the user.
	// It is derived at read time and never stored.
	Active bool
}

// Target returns the target for a nutrient and whether one is set above zero.
func (g *Goal) Target(nutrient string) (float64, bool) {
	if g == nil {
		return 0, false
	}
	t, ok := g.Targets[nutrient]
	return t, ok && t > 0
}
