package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// Ensure GoalStore implements the interface.
var _ driven.GoalStore = (*GoalStore)(nil)

// GoalStore is an in-memory implementation of driven.GoalStore.
// Goals are kept per user in append order.
type GoalStore struct {
	mu    sync.RWMutex
	goals map[string][]domain.Goal
}

// NewGoalStore creates a new in-memory goal store.
func NewGoalStore() *GoalStore {
	return &GoalStore{
		goals: make(map[string][]domain.Goal),
	}
}

// Append stores a new goal.
func (s *GoalStore) Append(_ context.Context, goal domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal.Targets = goal.Targets.Clone()
	goal.Active = false
	s.goals[goal.UserID] = append(s.goals[goal.UserID], goal)
	return nil
}

// ActiveAt returns the latest goal created at or before at.
func (s *GoalStore) ActiveAt(_ context.Context, userID string, at time.Time) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := s.goals[userID]
	i := latestAt(goals, at)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	return s.view(goals, i), nil
}

// FirstIn returns the earliest goal created in [start, end).
func (s *GoalStore) FirstIn(_ context.Context, userID string, start, end time.Time) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := s.goals[userID]
	first := -1
	for i := range goals {
		c := goals[i].CreatedAt
		if c.Before(start) || !c.Before(end) {
			continue
		}
		if first < 0 || c.Before(goals[first].CreatedAt) {
			first = i
		}
	}
	if first < 0 {
		return nil, domain.ErrNotFound
	}
	return s.view(goals, first), nil
}

// List returns all goals for a user, oldest first.
func (s *GoalStore) List(_ context.Context, userID string) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := s.goals[userID]
	result := make([]domain.Goal, 0, len(goals))
	for i := range goals {
		result = append(result, *s.view(goals, i))
	}
	sortGoals(result)
	return result, nil
}

// view copies goals[i] and derives its Active flag.
func (s *GoalStore) view(goals []domain.Goal, i int) *domain.Goal {
	g := goals[i]
	g.Targets = g.Targets.Clone()
	g.Active = i == latestAt(goals, time.Time{})
	return &g
}

// latestAt returns the index of the goal with the greatest CreatedAt not
// after at, preferring the later append on ties. A zero at means no bound.
func latestAt(goals []domain.Goal, at time.Time) int {
	best := -1
	for i := range goals {
		c := goals[i].CreatedAt
		if !at.IsZero() && c.After(at) {
			continue
		}
		if best < 0 || !c.Before(goals[best].CreatedAt) {
			best = i
		}
	}
	return best
}

// sortGoals orders by CreatedAt keeping append order for ties.
func sortGoals(goals []domain.Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})
}
