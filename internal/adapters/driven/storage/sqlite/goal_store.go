package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// goalStore implements driven.GoalStore.
type goalStore struct {
	store *Store
}

var _ driven.GoalStore = (*goalStore)(nil)

// goalColumns selects a goal and whether it is the user's latest.
const goalColumns = `
	g.id, g.user_id, g.created_at_ns, g.targets,
	g.seq = (
		SELECT l.seq FROM goals l WHERE l.user_id = g.user_id
		ORDER BY l.created_at_ns DESC, l.seq DESC LIMIT 1
	) AS active`

// Append stores a new goal.
func (s *goalStore) Append(ctx context.Context, goal domain.Goal) error {
	targets, err := json.Marshal(goal.Targets)
	if err != nil {
		return fmt.Errorf("encoding targets: %w", err)
	}

	createdAt, err := storedNanos("created_at", goal.CreatedAt)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, created_at_ns, targets)
		VALUES (?, ?, ?, ?)
	`, goal.ID, goal.UserID, createdAt, string(targets))
	if err != nil {
		return fmt.Errorf("saving goal: %w", err)
	}
	return nil
}

// ActiveAt returns the latest goal created at or before at.
func (s *goalStore) ActiveAt(ctx context.Context, userID string, at time.Time) (*domain.Goal, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals g
		WHERE g.user_id = ? AND g.created_at_ns <= ?
		ORDER BY g.created_at_ns DESC, g.seq DESC
		LIMIT 1
	`, userID, toNanos(at))
	return scanGoal(row)
}

// FirstIn returns the earliest goal created in [start, end).
func (s *goalStore) FirstIn(ctx context.Context, userID string, start, end time.Time) (*domain.Goal, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals g
		WHERE g.user_id = ? AND g.created_at_ns >= ? AND g.created_at_ns < ?
		ORDER BY g.created_at_ns ASC, g.seq ASC
		LIMIT 1
	`, userID, toNanos(start), toNanos(end))
	return scanGoal(row)
}

// List returns all goals for a user, oldest first.
func (s *goalStore) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals g
		WHERE g.user_id = ?
		ORDER BY g.created_at_ns ASC, g.seq ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	goals := make([]domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}
	return goals, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var (
		goal      domain.Goal
		createdNs int64
		targets   string
	)
	err := row.Scan(&goal.ID, &goal.UserID, &createdNs, &targets, &goal.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning goal: %w", err)
	}

	goal.CreatedAt = fromNanos(createdNs)
	if err := json.Unmarshal([]byte(targets), &goal.Targets); err != nil {
		return nil, fmt.Errorf("decoding targets: %w", err)
	}
	if goal.Targets == nil {
		goal.Targets = domain.NutrientVector{}
	}
	return &goal, nil
}
