package domain

import (
	"strings"
	"time"
)

// EntryKind distinguishes consumed food from void markers in the ledger.
type EntryKind string

const (
	// EntryMeal records consumed nutrients.
	EntryMeal EntryKind = "meal"

	// EntryVoid withdraws the entry it supersedes and carries no nutrients.
	EntryVoid EntryKind = "void"
)

// Common meal labels. Any free-text label is accepted.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// FoodLogEntry is an immutable, timestamped record in the intake ledger.
//
// The ledger is append-only. A correction appends a replacement entry whose
// Supersedes names the corrected entry; a deletion appends an EntryVoid that
// supersedes it. Superseded entries remain for audit and are excluded from
// aggregation.
type FoodLogEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// UserID owns the entry.
	UserID string

	// LoggedAt is when the food was eaten. It decides the day window.
	LoggedAt time.Time

	// RecordedAt is when the entry was appended to the ledger.
	RecordedAt time.Time

	// Sequence is the ledger insertion order, used to break LoggedAt ties.
	// Assigned by the store.
	Sequence int64

	// MealLabel is an optional label such as "breakfast".
	MealLabel string

	// Nutrients are the consumed amounts.
	Nutrients NutrientVector

	// SourceDescription is the free text the user gave.
	SourceDescription string

	// Kind is EntryMeal or EntryVoid.
	Kind EntryKind

	// Supersedes is the ID of the entry this one corrects or voids.
	Supersedes string
}

// IsVoid reports whether the entry is a void marker.
func (e *FoodLogEntry) IsVoid() bool {
	return e.Kind == EntryVoid
}

// NormalizeMealLabel trims and lower-cases a meal label.
func NormalizeMealLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// EffectiveEntries drops void markers and any entry whose ID is in superseded.
// Order is preserved.
func EffectiveEntries(entries []FoodLogEntry, superseded map[string]string) []FoodLogEntry {
	out := make([]FoodLogEntry, 0, len(entries))
	for i := range entries {
		if entries[i].IsVoid() {
			continue
		}
		if _, gone := superseded[entries[i].ID]; gone {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}

// EntryIDs returns the IDs of entries in order.
func EntryIDs(entries []FoodLogEntry) []string {
	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
	}
	return ids
}
