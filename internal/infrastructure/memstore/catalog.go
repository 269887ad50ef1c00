package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/nutridiary/backend/internal/domain"
)

// CatalogStore keeps food items in memory
type CatalogStore struct {
	mu    sync.RWMutex
	foods map[string]domain.FoodItem
}

// NewCatalogStore creates an empty catalog, optionally seeded
func NewCatalogStore(seed ...domain.FoodItem) *CatalogStore {
	s := &CatalogStore{foods: make(map[string]domain.FoodItem, len(seed))}
	for _, f := range seed {
		s.foods[f.ID] = cloneFood(f)
	}
	return s
}

// Get returns a food by id
func (s *CatalogStore) Get(ctx context.Context, id string) (*domain.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	food, ok := s.foods[id]
	if !ok {
		return nil, domain.ErrFoodNotFound
	}
	food = cloneFood(food)
	return &food, nil
}

// GetByBarcode finds a food with barcode inside one owner scope
func (s *CatalogStore) GetByBarcode(ctx context.Context, ownerID, barcode string) (*domain.FoodItem, error) {
	if barcode == "" {
		return nil, domain.ErrFoodNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, food := range s.foods {
		if food.Barcode == barcode && food.OwnerID == ownerID {
			food = cloneFood(food)
			return &food, nil
		}
	}
	return nil, domain.ErrFoodNotFound
}

// Upsert inserts or replaces a food by id
func (s *CatalogStore) Upsert(ctx context.Context, food domain.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if food.Barcode != "" {
		for id, other := range s.foods {
			if id != food.ID && other.Barcode == food.Barcode && other.OwnerID == food.OwnerID {
				return domain.ErrDuplicateBarcode
			}
		}
	}
	s.foods[food.ID] = cloneFood(food)
	return nil
}

// Delete removes a food
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.foods[id]; !ok {
		return domain.ErrFoodNotFound
	}
	delete(s.foods, id)
	return nil
}

// QueryAll returns every food ordered by id
func (s *CatalogStore) QueryAll(ctx context.Context) ([]domain.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FoodItem, 0, len(s.foods))
	for _, food := range s.foods {
		out = append(out, cloneFood(food))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Len returns the number of stored foods
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.foods)
}

func cloneFood(f domain.FoodItem) domain.FoodItem {
	if f.Aliases != nil {
		f.Aliases = append([]string(nil), f.Aliases...)
	}
	return f
}
