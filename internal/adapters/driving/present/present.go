// Package present converts domain values into the JSON shapes shared by the
// MCP, REST and CLI adapters, and resolves the timezone used for day windows.
package present

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// TimeFormat is the wire format for instants.
const TimeFormat = time.RFC3339

// Goal is the wire form of a goal.
type Goal struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	CreatedAt string             `json:"created_at"`
	Targets   map[string]float64 `json:"targets"`
	Active    bool               `json:"active"`
}

// Entry is the wire form of a ledger entry.
type Entry struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Kind              string             `json:"kind"`
	LoggedAt          string             `json:"logged_at"`
	RecordedAt        string             `json:"recorded_at"`
	Sequence          int64              `json:"sequence"`
	MealLabel         string             `json:"meal_label,omitempty"`
	Nutrients         map[string]float64 `json:"nutrients,omitempty"`
	SourceDescription string             `json:"source_description,omitempty"`
	Supersedes        string             `json:"supersedes,omitempty"`
}

// NutrientRow is one nutrient of a snapshot. Target and Percent are absent
// when undefined.
type NutrientRow struct {
	Nutrient  string   `json:"nutrient"`
	Target    *float64 `json:"target,omitempty"`
	Consumed  float64  `json:"consumed"`
	Remaining float64  `json:"remaining"`
	Percent   *float64 `json:"percent,omitempty"`
}

// Snapshot is the wire form of a progress snapshot or a bare intake summary.
type Snapshot struct {
	UserID        string                        `json:"user_id"`
	Date          string                        `json:"date"`
	Timezone      string                        `json:"timezone"`
	WindowStart   string                        `json:"window_start"`
	WindowEnd     string                        `json:"window_end"`
	GoalID        string                        `json:"goal_id,omitempty"`
	EntryCount    int                           `json:"entry_count"`
	Consumed      map[string]float64            `json:"consumed"`
	Remaining     map[string]float64            `json:"remaining,omitempty"`
	PercentOfGoal map[string]float64            `json:"percent_of_goal,omitempty"`
	ByMeal        map[string]map[string]float64 `json:"by_meal,omitempty"`
	Nutrients     []NutrientRow                 `json:"nutrients"`
}

// Profile is the wire form of a user profile.
type Profile struct {
	UserID             string  `json:"user_id"`
	Name               string  `json:"name,omitempty"`
	WeightKg           float64 `json:"weight_kg,omitempty"`
	HeightCm           float64 `json:"height_cm,omitempty"`
	Age                int     `json:"age,omitempty"`
	Sex                string  `json:"sex,omitempty"`
	ActivityLevel      string  `json:"activity_level,omitempty"`
	DietaryPreferences string  `json:"dietary_preferences,omitempty"`
	FoodAllergies      string  `json:"food_allergies,omitempty"`
	HealthConditions   string  `json:"health_conditions,omitempty"`
	Timezone           string  `json:"timezone,omitempty"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
}

// FromGoal converts a goal.
func FromGoal(g *domain.Goal) Goal {
	return Goal{
		ID:        g.ID,
		UserID:    g.UserID,
		CreatedAt: formatTime(g.CreatedAt),
		Targets:   plain(g.Targets),
		Active:    g.Active,
	}
}

// FromGoals converts goals in order.
func FromGoals(goals []domain.Goal) []Goal {
	out := make([]Goal, len(goals))
	for i := range goals {
		out[i] = FromGoal(&goals[i])
	}
	return out
}

// FromEntry converts a ledger entry.
func FromEntry(e *domain.FoodLogEntry) Entry {
	return Entry{
		ID:                e.ID,
		UserID:            e.UserID,
		Kind:              string(e.Kind),
		LoggedAt:          formatTime(e.LoggedAt),
		RecordedAt:        formatTime(e.RecordedAt),
		Sequence:          e.Sequence,
		MealLabel:         e.MealLabel,
		Nutrients:         plain(e.Nutrients),
		SourceDescription: e.SourceDescription,
		Supersedes:        e.Supersedes,
	}
}

// FromEntries converts ledger entries in order.
func FromEntries(entries []domain.FoodLogEntry) []Entry {
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = FromEntry(&entries[i])
	}
	return out
}

// FromSnapshot converts a progress snapshot.
func FromSnapshot(s *domain.ProgressSnapshot) Snapshot {
	out := FromSummary(&s.IntakeSummary)
	if s.Goal != nil {
		out.GoalID = s.Goal.ID
		out.Remaining = plain(s.Remaining)
		out.PercentOfGoal = s.PercentOfGoal
	}

	rows := s.Rows()
	out.Nutrients = make([]NutrientRow, len(rows))
	for i, r := range rows {
		row := NutrientRow{
			Nutrient:  r.Nutrient,
			Consumed:  r.Consumed,
			Remaining: r.Remaining,
		}
		if r.HasTarget {
			target := r.Target
			row.Target = &target
		}
		if r.PercentDefined {
			percent := r.Percent
			row.Percent = &percent
		}
		out.Nutrients[i] = row
	}
	return out
}

// FromSnapshots converts snapshots in order.
func FromSnapshots(snapshots []domain.ProgressSnapshot) []Snapshot {
	out := make([]Snapshot, len(snapshots))
	for i := range snapshots {
		out[i] = FromSnapshot(&snapshots[i])
	}
	return out
}

// FromSummary converts an intake summary. Every consumed nutrient gets a row
// without a target.
func FromSummary(s *domain.IntakeSummary) Snapshot {
	out := Snapshot{
		UserID:      s.UserID,
		Date:        s.Day.String(),
		Timezone:    s.Timezone,
		WindowStart: formatTime(s.Window.Start),
		WindowEnd:   formatTime(s.Window.End),
		EntryCount:  s.EntryCount,
		Consumed:    plain(s.Consumed),
	}
	if len(s.ByMeal) > 0 {
		out.ByMeal = make(map[string]map[string]float64, len(s.ByMeal))
		for label, v := range s.ByMeal {
			out.ByMeal[label] = plain(v)
		}
	}
	for _, n := range s.Consumed.Keys() {
		out.Nutrients = append(out.Nutrients, NutrientRow{Nutrient: n, Consumed: s.Consumed[n]})
	}
	if out.Nutrients == nil {
		out.Nutrients = []NutrientRow{}
	}
	return out
}

// FromProfile converts a profile.
func FromProfile(p *domain.UserProfile) Profile {
	out := Profile{
		UserID:             p.UserID,
		Name:               p.Name,
		WeightKg:           p.WeightKg,
		HeightCm:           p.HeightCm,
		Age:                p.Age,
		Sex:                p.Sex,
		ActivityLevel:      p.ActivityLevel,
		DietaryPreferences: p.DietaryPreferences,
		FoodAllergies:      p.FoodAllergies,
		HealthConditions:   p.HealthConditions,
		Timezone:           p.Timezone,
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = formatTime(p.UpdatedAt)
	}
	return out
}

// Domain converts the wire profile back, owned by userID.
func (p Profile) Domain(userID string) domain.UserProfile {
	return domain.UserProfile{
		UserID:             userID,
		Name:               p.Name,
		WeightKg:           p.WeightKg,
		HeightCm:           p.HeightCm,
		Age:                p.Age,
		Sex:                p.Sex,
		ActivityLevel:      p.ActivityLevel,
		DietaryPreferences: p.DietaryPreferences,
		FoodAllergies:      p.FoodAllergies,
		HealthConditions:   p.HealthConditions,
		Timezone:           p.Timezone,
	}
}

// ParseTime parses an RFC 3339 instant. An empty string yields the zero time.
func ParseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be an RFC 3339 timestamp")
	}
	return t, nil
}

// ParseDate parses an optional YYYY-MM-DD date. An empty string yields the
// current date in loc.
func ParseDate(s string, now time.Time, loc *time.Location) (domain.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DateOf(now.In(loc)), nil
	}
	return domain.ParseDate(s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeFormat)
}

func plain(v domain.NutrientVector) map[string]float64 {
	if v == nil {
		return map[string]float64{}
	}
	return map[string]float64(v)
}

// FormatAmount renders a nutrient amount for humans: whole numbers without
// decimals, anything else with one.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatPercent renders a consumed/target ratio as a whole percentage.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*100), 'f', 0, 64) + "%"
}
