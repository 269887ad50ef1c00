package memstore

import (
	"context"
	"sync"

	"github.com/nutridiary/backend/internal/domain"
)

// GoalsStore keeps daily goals in memory
type GoalsStore struct {
	mu    sync.RWMutex
	goals map[string]domain.DailyGoals
}

// NewGoalsStore creates an empty goals store
func NewGoalsStore() *GoalsStore {
	return &GoalsStore{goals: make(map[string]domain.DailyGoals)}
}

// Get returns the owner's goals and whether they were ever saved
func (s *GoalsStore) Get(ctx context.Context, ownerID string) (domain.DailyGoals, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals, ok := s.goals[ownerID]
	return goals, ok, nil
}

// Save replaces the owner's goals
func (s *GoalsStore) Save(ctx context.Context, ownerID string, goals domain.DailyGoals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[ownerID] = goals
	return nil
}
