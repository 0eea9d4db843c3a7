package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// GoalInput is the input schema for set_goal and update_goal.
type GoalInput struct {
	UserID  string             `json:"user_id" jsonschema:"the user the goal belongs to"`
	Targets map[string]float64 `json:"targets" jsonschema:"daily targets keyed by nutrient, e.g. calories or protein_g"`
}

// GetGoalInput is the input schema for get_goal.
type GetGoalInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose goal to read"`
	At     string `json:"at,omitempty" jsonschema:"RFC 3339 instant; defaults to now"`
}

// UserInput is the input schema for tools that only need a user.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"the user to read"`
}

// GoalOutput wraps a single goal.
type GoalOutput struct {
	Goal present.Goal `json:"goal"`
}

// GoalHistoryOutput lists goals oldest first.
type GoalHistoryOutput struct {
	Goals []present.Goal `json:"goals"`
	Count int            `json:"count"`
}

// LogFoodInput is the input schema for log_food.
type LogFoodInput struct {
	UserID            string             `json:"user_id" jsonschema:"the user who ate"`
	Nutrients         map[string]float64 `json:"nutrients" jsonschema:"consumed amounts keyed by nutrient"`
	MealLabel         string             `json:"meal_label,omitempty" jsonschema:"optional label such as breakfast"`
	LoggedAt          string             `json:"logged_at,omitempty" jsonschema:"RFC 3339 instant the food was eaten; defaults to now"`
	SourceDescription string             `json:"source_description,omitempty" jsonschema:"what the user said they ate"`
}

// CorrectFoodLogInput is the input schema for correct_food_log. Omitted
// fields keep the corrected entry's value.
type CorrectFoodLogInput struct {
	UserID            string             `json:"user_id" jsonschema:"the entry owner"`
	EntryID           string             `json:"entry_id" jsonschema:"the entry to correct"`
	Nutrients         map[string]float64 `json:"nutrients,omitempty" jsonschema:"replacement amounts"`
	MealLabel         *string            `json:"meal_label,omitempty" jsonschema:"replacement meal label"`
	LoggedAt          string             `json:"logged_at,omitempty" jsonschema:"replacement RFC 3339 instant"`
	SourceDescription *string            `json:"source_description,omitempty" jsonschema:"replacement description"`
}

// VoidFoodLogInput is the input schema for void_food_log.
type VoidFoodLogInput struct {
	UserID  string `json:"user_id" jsonschema:"the entry owner"`
	EntryID string `json:"entry_id" jsonschema:"the entry to withdraw"`
	Reason  string `json:"reason,omitempty" jsonschema:"why the entry is withdrawn"`
}

// ListFoodLogsInput is the input schema for list_food_logs. With both from
// and to the raw ledger in that range is returned; otherwise the most recent
// entries.
type ListFoodLogsInput struct {
	UserID string `json:"user_id" jsonschema:"the ledger owner"`
	From   string `json:"from,omitempty" jsonschema:"RFC 3339 range start, inclusive"`
	To     string `json:"to,omitempty" jsonschema:"RFC 3339 range end, exclusive"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum recent entries (default 50)"`
}

// EntryOutput wraps a single ledger entry.
type EntryOutput struct {
	Entry present.Entry `json:"entry"`
}

// EntriesOutput lists ledger entries.
type EntriesOutput struct {
	Entries []present.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// ProgressInput is the input schema for compute_progress.
type ProgressInput struct {
	UserID   string `json:"user_id" jsonschema:"the user to evaluate"`
	Date     string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; defaults to today in the resolved timezone"`
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA timezone; defaults to the profile or server timezone"`
}

// ProgressHistoryInput is the input schema for progress_history.
type ProgressHistoryInput struct {
	UserID   string `json:"user_id" jsonschema:"the user to evaluate"`
	From     string `json:"from" jsonschema:"first day, YYYY-MM-DD"`
	To       string `json:"to" jsonschema:"last day, YYYY-MM-DD, inclusive"`
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA timezone; defaults to the profile or server timezone"`
}

// SnapshotOutput wraps a progress snapshot.
type SnapshotOutput struct {
	Snapshot present.Snapshot `json:"snapshot"`
}

// ProgressHistoryOutput lists one snapshot per day.
type ProgressHistoryOutput struct {
	Days  []present.Snapshot `json:"days"`
	Count int                `json:"count"`
}

// UpdateProfileInput is the input schema for update_profile.
type UpdateProfileInput struct {
	UserID  string          `json:"user_id" jsonschema:"the profile owner"`
	Profile present.Profile `json:"profile" jsonschema:"the full profile; omitted fields are cleared"`
}

// ProfileOutput wraps a profile.
type ProfileOutput struct {
	Profile present.Profile `json:"profile"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_goal",
		Description: "Set a user's daily nutrition targets, superseding the previous goal",
	}, instrument(s, "set_goal", s.handleSetGoal))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_goal",
		Description: "Change some targets of the active goal, keeping the rest",
	}, instrument(s, "update_goal", s.handleUpdateGoal))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_goal",
		Description: "Get the goal that was active at an instant",
	}, instrument(s, "get_goal", s.handleGetGoal))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "goal_history",
		Description: "List every goal a user has set, oldest first",
	}, instrument(s, "goal_history", s.handleGoalHistory))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "log_food",
		Description: "Record consumed nutrients in the food ledger",
	}, instrument(s, "log_food", s.handleLogFood))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "correct_food_log",
		Description: "Replace a food log entry; the original is kept for audit",
	}, instrument(s, "correct_food_log", s.handleCorrectFoodLog))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "void_food_log",
		Description: "Withdraw a food log entry so it no longer counts",
	}, instrument(s, "void_food_log", s.handleVoidFoodLog))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_food_logs",
		Description: "List raw food ledger entries, recent or within a time range",
	}, instrument(s, "list_food_logs", s.handleListFoodLogs))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compute_progress",
		Description: "Compare a day's intake with the goal active at the start of that day",
	}, instrument(s, "compute_progress", s.handleComputeProgress))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "progress_history",
		Description: "Daily progress snapshots for a range of days",
	}, instrument(s, "progress_history", s.handleProgressHistory))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get a user's profile",
	}, instrument(s, "get_profile", s.handleGetProfile))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_profile",
		Description: "Replace a user's profile, including the default timezone",
	}, instrument(s, "update_profile", s.handleUpdateProfile))
}

func (s *Server) handleSetGoal(ctx context.Context, _ *mcp.CallToolRequest, in GoalInput) (*mcp.CallToolResult, GoalOutput, error) {
	goal, err := s.ports.Goal.SetGoal(ctx, in.UserID, in.Targets)
	if err != nil {
		return nil, GoalOutput{}, err
	}
	return nil, GoalOutput{Goal: present.FromGoal(goal)}, nil
}

func (s *Server) handleUpdateGoal(ctx context.Context, _ *mcp.CallToolRequest, in GoalInput) (*mcp.CallToolResult, GoalOutput, error) {
	goal, err := s.ports.Goal.UpdateGoal(ctx, in.UserID, in.Targets)
	if err != nil {
		return nil, GoalOutput{}, err
	}
	return nil, GoalOutput{Goal: present.FromGoal(goal)}, nil
}

func (s *Server) handleGetGoal(ctx context.Context, _ *mcp.CallToolRequest, in GetGoalInput) (*mcp.CallToolResult, GoalOutput, error) {
	at, err := present.ParseTime("at", in.At)
	if err != nil {
		return nil, GoalOutput{}, err
	}
	if at.IsZero() {
		at = s.now()
	}

	goal, err := s.ports.Goal.ActiveGoal(ctx, in.UserID, at)
	if err != nil {
		return nil, GoalOutput{}, err
	}
	return nil, GoalOutput{Goal: present.FromGoal(goal)}, nil
}

func (s *Server) handleGoalHistory(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, GoalHistoryOutput, error) {
	goals, err := s.ports.Goal.History(ctx, in.UserID)
	if err != nil {
		return nil, GoalHistoryOutput{}, err
	}
	return nil, GoalHistoryOutput{Goals: present.FromGoals(goals), Count: len(goals)}, nil
}

func (s *Server) handleLogFood(ctx context.Context, _ *mcp.CallToolRequest, in LogFoodInput) (*mcp.CallToolResult, EntryOutput, error) {
	loggedAt, err := present.ParseTime("logged_at", in.LoggedAt)
	if err != nil {
		return nil, EntryOutput{}, err
	}

	entry, err := s.ports.Intake.LogFood(ctx, driving.LogFoodRequest{
		UserID:            in.UserID,
		Nutrients:         in.Nutrients,
		MealLabel:         in.MealLabel,
		LoggedAt:          loggedAt,
		SourceDescription: in.SourceDescription,
	})
	if err != nil {
		return nil, EntryOutput{}, err
	}
	return nil, EntryOutput{Entry: present.FromEntry(entry)}, nil
}

func (s *Server) handleCorrectFoodLog(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in CorrectFoodLogInput,
) (*mcp.CallToolResult, EntryOutput, error) {
	loggedAt, err := present.ParseTime("logged_at", in.LoggedAt)
	if err != nil {
		return nil, EntryOutput{}, err
	}

	entry, err := s.ports.Intake.Correct(ctx, driving.CorrectionRequest{
		UserID:            in.UserID,
		EntryID:           in.EntryID,
		Nutrients:         in.Nutrients,
		MealLabel:         in.MealLabel,
		LoggedAt:          loggedAt,
		SourceDescription: in.SourceDescription,
	})
	if err != nil {
		return nil, EntryOutput{}, err
	}
	return nil, EntryOutput{Entry: present.FromEntry(entry)}, nil
}

func (s *Server) handleVoidFoodLog(ctx context.Context, _ *mcp.CallToolRequest, in VoidFoodLogInput) (*mcp.CallToolResult, EntryOutput, error) {
	entry, err := s.ports.Intake.Void(ctx, in.UserID, in.EntryID, in.Reason)
	if err != nil {
		return nil, EntryOutput{}, err
	}
	return nil, EntryOutput{Entry: present.FromEntry(entry)}, nil
}

func (s *Server) handleListFoodLogs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in ListFoodLogsInput,
) (*mcp.CallToolResult, EntriesOutput, error) {
	var (
		entries []domain.FoodLogEntry
		err     error
	)

	from, to := strings.TrimSpace(in.From), strings.TrimSpace(in.To)
	if from != "" || to != "" {
		var start, end time.Time
		if start, err = present.ParseTime("from", from); err != nil {
			return nil, EntriesOutput{}, err
		}
		if end, err = present.ParseTime("to", to); err != nil {
			return nil, EntriesOutput{}, err
		}
		if start.IsZero() || end.IsZero() {
			return nil, EntriesOutput{}, domain.NewValidationError("from", "from and to must be given together")
		}
		entries, err = s.ports.Intake.QueryRange(ctx, in.UserID, start, end)
	} else {
		entries, err = s.ports.Intake.Recent(ctx, in.UserID, in.Limit)
	}
	if err != nil {
		return nil, EntriesOutput{}, err
	}

	return nil, EntriesOutput{Entries: present.FromEntries(entries), Count: len(entries)}, nil
}

func (s *Server) handleComputeProgress(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in ProgressInput,
) (*mcp.CallToolResult, SnapshotOutput, error) {
	loc, err := s.locations.Resolve(ctx, in.UserID, in.Timezone)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	day, err := present.ParseDate(in.Date, s.now(), loc)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}

	snapshot, err := s.ports.Progress.ComputeProgress(ctx, in.UserID, day, loc)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	return nil, SnapshotOutput{Snapshot: present.FromSnapshot(snapshot)}, nil
}

func (s *Server) handleProgressHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in ProgressHistoryInput,
) (*mcp.CallToolResult, ProgressHistoryOutput, error) {
	loc, err := s.locations.Resolve(ctx, in.UserID, in.Timezone)
	if err != nil {
		return nil, ProgressHistoryOutput{}, err
	}
	from, err := domain.ParseDate(in.From)
	if err != nil {
		return nil, ProgressHistoryOutput{}, err
	}
	to, err := domain.ParseDate(in.To)
	if err != nil {
		return nil, ProgressHistoryOutput{}, err
	}

	days, err := s.ports.Progress.History(ctx, in.UserID, from, to, loc)
	if err != nil {
		return nil, ProgressHistoryOutput{}, err
	}
	return nil, ProgressHistoryOutput{Days: present.FromSnapshots(days), Count: len(days)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, ProfileOutput, error) {
	if s.ports.Profile == nil {
		return nil, ProfileOutput{}, ErrProfileUnavailable
	}
	profile, err := s.ports.Profile.Get(ctx, in.UserID)
	if err != nil {
		return nil, ProfileOutput{}, err
	}
	return nil, ProfileOutput{Profile: present.FromProfile(profile)}, nil
}

func (s *Server) handleUpdateProfile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in UpdateProfileInput,
) (*mcp.CallToolResult, ProfileOutput, error) {
	if s.ports.Profile == nil {
		return nil, ProfileOutput{}, ErrProfileUnavailable
	}
	profile, err := s.ports.Profile.Update(ctx, in.Profile.Domain(in.UserID))
	if err != nil {
		return nil, ProfileOutput{}, err
	}
	return nil, ProfileOutput{Profile: present.FromProfile(profile)}, nil
}
