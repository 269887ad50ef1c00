package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/nutridiary/backend/internal/domain"
)

// DiaryStore keeps diary entries in memory
type DiaryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.DiaryEntry
}

// NewDiaryStore creates an empty diary
func NewDiaryStore() *DiaryStore {
	return &DiaryStore{entries: make(map[string]domain.DiaryEntry)}
}

// Add stores a new entry
func (s *DiaryStore) Add(ctx context.Context, entry domain.DiaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Update replaces an existing entry of the same owner
func (s *DiaryStore) Update(ctx context.Context, entry domain.DiaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[entry.ID]
	if !ok || current.OwnerID != entry.OwnerID {
		return domain.ErrEntryNotFound
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Get returns one of the owner's entries
func (s *DiaryStore) Get(ctx context.Context, ownerID, id string) (*domain.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return nil, domain.ErrEntryNotFound
	}
	entry = cloneEntry(entry)
	return &entry, nil
}

// Remove deletes one of the owner's entries
func (s *DiaryStore) Remove(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return domain.ErrEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

// ListDay returns the owner's entries of one date in creation order
func (s *DiaryStore) ListDay(ctx context.Context, ownerID, date string) ([]domain.DiaryEntry, error) {
	return s.ListRange(ctx, ownerID, date, date)
}

// ListRange returns the owner's entries with from <= date <= to, ordered by
// date then creation time
func (s *DiaryStore) ListRange(ctx context.Context, ownerID, from, to string) ([]domain.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DiaryEntry
	for _, e := range s.entries {
		if e.OwnerID == ownerID && e.Date >= from && e.Date <= to {
			out = append(out, cloneEntry(e))
		}
	}
	sortEntries(out)
	return out, nil
}

// ClearMeal deletes the owner's entries of one meal
func (s *DiaryStore) ClearMeal(ctx context.Context, ownerID, date string, slot domain.MealSlot) (int, error) {
	return s.removeWhere(func(e domain.DiaryEntry) bool {
		return e.OwnerID == ownerID && e.Date == date && e.MealSlot == slot
	}), nil
}

// ClearDay deletes the owner's entries of one date
func (s *DiaryStore) ClearDay(ctx context.Context, ownerID, date string) (int, error) {
	return s.removeWhere(func(e domain.DiaryEntry) bool {
		return e.OwnerID == ownerID && e.Date == date
	}), nil
}

func (s *DiaryStore) removeWhere(match func(domain.DiaryEntry) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if match(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func sortEntries(entries []domain.DiaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func cloneEntry(e domain.DiaryEntry) domain.DiaryEntry {
	e.Food = cloneFood(e.Food)
	return e
}
