package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// GoalRequest is the body of POST and PATCH /goals.
type GoalRequest struct {
	Targets map[string]float64 `json:"targets"`
}

// LogFoodRequest is the body of POST /logs.
type LogFoodRequest struct {
	Nutrients         map[string]float64 `json:"nutrients"`
	MealLabel         string             `json:"meal_label"`
	LoggedAt          string             `json:"logged_at"`
	SourceDescription string             `json:"source_description"`
}

// CorrectionRequest is the body of POST /logs/:entry/corrections. Omitted
// fields keep the corrected entry's value.
type CorrectionRequest struct {
	Nutrients         map[string]float64 `json:"nutrients"`
	MealLabel         *string            `json:"meal_label"`
	LoggedAt          string             `json:"logged_at"`
	SourceDescription *string            `json:"source_description"`
}

// EntriesResponse lists ledger entries.
type EntriesResponse struct {
	Entries []present.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// GoalsResponse lists goals oldest first.
type GoalsResponse struct {
	Goals []present.Goal `json:"goals"`
	Count int            `json:"count"`
}

// HistoryResponse lists one snapshot per day.
type HistoryResponse struct {
	Days  []present.Snapshot `json:"days"`
	Count int                `json:"count"`
}

// bind decodes the JSON body, reporting malformed input as a validation error.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return domain.NewValidationError("body", "malformed JSON body")
	}
	return nil
}

func (s *Server) handleSetGoal(c echo.Context) error {
	var req GoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	goal, err := s.ports.Goal.SetGoal(c.Request().Context(), c.Param("id"), req.Targets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, present.FromGoal(goal))
}

func (s *Server) handleUpdateGoal(c echo.Context) error {
	var req GoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	goal, err := s.ports.Goal.UpdateGoal(c.Request().Context(), c.Param("id"), req.Targets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromGoal(goal))
}

func (s *Server) handleActiveGoal(c echo.Context) error {
	at, err := present.ParseTime("at", c.QueryParam("at"))
	if err != nil {
		return err
	}
	if at.IsZero() {
		at = s.now()
	}
	goal, err := s.ports.Goal.ActiveGoal(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromGoal(goal))
}

func (s *Server) handleGoalHistory(c echo.Context) error {
	goals, err := s.ports.Goal.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, GoalsResponse{Goals: present.FromGoals(goals), Count: len(goals)})
}

func (s *Server) handleLogFood(c echo.Context) error {
	var req LogFoodRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loggedAt, err := present.ParseTime("logged_at", req.LoggedAt)
	if err != nil {
		return err
	}

	entry, err := s.ports.Intake.LogFood(c.Request().Context(), driving.LogFoodRequest{
		UserID:            c.Param("id"),
		Nutrients:         req.Nutrients,
		MealLabel:         req.MealLabel,
		LoggedAt:          loggedAt,
		SourceDescription: req.SourceDescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, present.FromEntry(entry))
}

func (s *Server) handleListLogs(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from != "" || to != "" {
		start, err := present.ParseTime("from", from)
		if err != nil {
			return err
		}
		end, err := present.ParseTime("to", to)
		if err != nil {
			return err
		}
		if start.IsZero() || end.IsZero() {
			return domain.NewValidationError("from", "from and to must be given together")
		}
		entries, err := s.ports.Intake.QueryRange(ctx, userID, start, end)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, EntriesResponse{Entries: present.FromEntries(entries), Count: len(entries)})
	}

	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.NewValidationError("limit", "must be a non-negative integer")
		}
		limit = n
	}
	entries, err := s.ports.Intake.Recent(ctx, userID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, EntriesResponse{Entries: present.FromEntries(entries), Count: len(entries)})
}

func (s *Server) handleCorrect(c echo.Context) error {
	var req CorrectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loggedAt, err := present.ParseTime("logged_at", req.LoggedAt)
	if err != nil {
		return err
	}

	entry, err := s.ports.Intake.Correct(c.Request().Context(), driving.CorrectionRequest{
		UserID:            c.Param("id"),
		EntryID:           c.Param("entry"),
		Nutrients:         req.Nutrients,
		MealLabel:         req.MealLabel,
		LoggedAt:          loggedAt,
		SourceDescription: req.SourceDescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, present.FromEntry(entry))
}

func (s *Server) handleVoid(c echo.Context) error {
	entry, err := s.ports.Intake.Void(c.Request().Context(), c.Param("id"), c.Param("entry"), c.QueryParam("reason"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromEntry(entry))
}

func (s *Server) handleProgress(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	loc, err := s.locations.Resolve(ctx, userID, c.QueryParam("tz"))
	if err != nil {
		return err
	}
	day, err := present.ParseDate(c.QueryParam("date"), s.now(), loc)
	if err != nil {
		return err
	}

	snapshot, err := s.ports.Progress.ComputeProgress(ctx, userID, day, loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromSnapshot(snapshot))
}

func (s *Server) handleProgressHistory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	loc, err := s.locations.Resolve(ctx, userID, c.QueryParam("tz"))
	if err != nil {
		return err
	}
	from, err := domain.ParseDate(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := present.ParseDate(c.QueryParam("to"), s.now(), loc)
	if err != nil {
		return err
	}

	days, err := s.ports.Progress.History(ctx, userID, from, to, loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, HistoryResponse{Days: present.FromSnapshots(days), Count: len(days)})
}

func (s *Server) handleGetProfile(c echo.Context) error {
	if s.ports.Profile == nil {
		return errProfileUnavailable
	}
	profile, err := s.ports.Profile.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromProfile(profile))
}

func (s *Server) handlePutProfile(c echo.Context) error {
	if s.ports.Profile == nil {
		return errProfileUnavailable
	}
	var req present.Profile
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := s.ports.Profile.Update(c.Request().Context(), req.Domain(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, present.FromProfile(profile))
}
