package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// Ensure FoodLogStore implements the interface.
var _ driven.FoodLogStore = (*FoodLogStore)(nil)

// FoodLogStore is an in-memory implementation of driven.FoodLogStore.
type FoodLogStore struct {
	mu         sync.RWMutex
	seq        int64
	entries    map[string][]domain.FoodLogEntry // by user, append order
	superseded map[string]string                // entry ID -> superseding entry ID
}

// NewFoodLogStore creates a new in-memory food log store.
func NewFoodLogStore() *FoodLogStore {
	return &FoodLogStore{
		entries:    make(map[string][]domain.FoodLogEntry),
		superseded: make(map[string]string),
	}
}

// Append stores a new entry and assigns its sequence number.
func (s *FoodLogStore) Append(_ context.Context, entry domain.FoodLogEntry) (*domain.FoodLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Supersedes != "" {
		if _, taken := s.superseded[entry.Supersedes]; taken {
			return nil, domain.ErrConflict
		}
		s.superseded[entry.Supersedes] = entry.ID
	}
	s.seq++
	entry.Sequence = s.seq
	entry.Nutrients = entry.Nutrients.Clone()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return copyEntry(entry), nil
}

// Get retrieves an entry by ID for a user.
func (s *FoodLogStore) Get(_ context.Context, userID, id string) (*domain.FoodLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries[userID] {
		if s.entries[userID][i].ID == id {
			return copyEntry(s.entries[userID][i]), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Range returns entries with LoggedAt in [start, end).
func (s *FoodLogStore) Range(_ context.Context, userID string, start, end time.Time) ([]domain.FoodLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.FoodLogEntry, 0)
	for _, e := range s.entries[userID] {
		if e.LoggedAt.Before(start) || !e.LoggedAt.Before(end) {
			continue
		}
		result = append(result, *copyEntry(e))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LoggedAt.Equal(result[j].LoggedAt) {
			return result[i].LoggedAt.Before(result[j].LoggedAt)
		}
		return result[i].Sequence < result[j].Sequence
	})
	return result, nil
}

// Recent returns up to limit entries, newest LoggedAt first.
func (s *FoodLogStore) Recent(_ context.Context, userID string, limit int) ([]domain.FoodLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.FoodLogEntry, 0, len(s.entries[userID]))
	for _, e := range s.entries[userID] {
		result = append(result, *copyEntry(e))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LoggedAt.Equal(result[j].LoggedAt) {
			return result[i].LoggedAt.After(result[j].LoggedAt)
		}
		return result[i].Sequence > result[j].Sequence
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Superseded reports which of ids have been superseded, and by what.
func (s *FoodLogStore) Superseded(_ context.Context, userID string, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := make(map[string]struct{}, len(s.entries[userID]))
	for _, e := range s.entries[userID] {
		owned[e.ID] = struct{}{}
	}
	result := make(map[string]string)
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			continue
		}
		if by, ok := s.superseded[id]; ok {
			result[id] = by
		}
	}
	return result, nil
}

// Len returns the total number of entries for a user, including
// corrections and void markers.
func (s *FoodLogStore) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[userID])
}

func copyEntry(e domain.FoodLogEntry) *domain.FoodLogEntry {
	e.Nutrients = e.Nutrients.Clone()
	return &e
}
