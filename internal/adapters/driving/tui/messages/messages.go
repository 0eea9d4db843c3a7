// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// SnapshotLoaded carries the day's progress back to the model. Snapshot is
// nil when Err is set. NoGoal reports that the day had intake but no goal,
// in which case Summary holds the bare intake.
type SnapshotLoaded struct {
	Day      domain.Date
	Snapshot *domain.ProgressSnapshot
	Summary  *domain.IntakeSummary
	NoGoal   bool
	Err      error
}

// EntriesLoaded carries the raw ledger entries of the day.
type EntriesLoaded struct {
	Day     domain.Date
	Entries []domain.FoodLogEntry
	Err     error
}
