package domain

import (
	"context"
	"time"
)

// CacheRepository stores encoded payloads with a TTL. Get returns
// ErrCacheMiss for absent or expired keys.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogStore persists food items. Barcodes are unique per owner scope
// (ownerID "" is the shared catalog).
type CatalogStore interface {
	Get(ctx context.Context, id string) (*FoodItem, error)
	GetByBarcode(ctx context.Context, ownerID, barcode string) (*FoodItem, error)
	Upsert(ctx context.Context, food FoodItem) error
	Delete(ctx context.Context, id string) error
	QueryAll(ctx context.Context) ([]FoodItem, error)
}

// ExternalFoodDatabase is a remote nutrition source. Implementations return
// (nil, nil) for a barcode miss.
type ExternalFoodDatabase interface {
	SearchByName(ctx context.Context, query string, limit int) ([]RawFood, error)
	GetByBarcode(ctx context.Context, barcode string) (*RawFood, error)
}

// Classifier recognizes food in an image
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
}

// DiaryStore persists diary entries keyed by owner, date and meal slot
type DiaryStore interface {
	Add(ctx context.Context, entry DiaryEntry) error
	Update(ctx context.Context, entry DiaryEntry) error
	Get(ctx context.Context, ownerID, id string) (*DiaryEntry, error)
	Remove(ctx context.Context, ownerID, id string) error
	ListDay(ctx context.Context, ownerID, date string) ([]DiaryEntry, error)
	ListRange(ctx context.Context, ownerID, from, to string) ([]DiaryEntry, error)
	ClearMeal(ctx context.Context, ownerID, date string, slot MealSlot) (int, error)
	ClearDay(ctx context.Context, ownerID, date string) (int, error)
}

// GoalsStore persists per-user daily goals. Get reports false when unset.
type GoalsStore interface {
	Get(ctx context.Context, ownerID string) (DailyGoals, bool, error)
	Save(ctx context.Context, ownerID string, goals DailyGoals) error
}
