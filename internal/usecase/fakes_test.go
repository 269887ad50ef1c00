package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/nutridiary/backend/internal/infrastructure/memstore"
)

// fakeExternal serves canned records and counts calls
type fakeExternal struct {
	mu            sync.Mutex
	search        map[string][]domain.RawFood
	barcodes      map[string]domain.RawFood
	searchErr     error
	barcodeErr    error
	barcodeDelay  time.Duration
	searchCalls   int
	barcodeCalls  int
	lastSearchQry string
}

func (f *fakeExternal) SearchByName(ctx context.Context, query string, limit int) ([]domain.RawFood, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastSearchQry = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[query], nil
}

func (f *fakeExternal) GetByBarcode(ctx context.Context, barcode string) (*domain.RawFood, error) {
	if f.barcodeDelay > 0 {
		time.Sleep(f.barcodeDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barcodeCalls++
	if f.barcodeErr != nil {
		return nil, f.barcodeErr
	}
	raw, ok := f.barcodes[barcode]
	if !ok {
		return nil, nil
	}
	return &raw, nil
}

func (f *fakeExternal) calls() (search, barcode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls, f.barcodeCalls
}

// countingCatalog records upserts on top of the in-memory catalog
type countingCatalog struct {
	*memstore.CatalogStore
	mu      sync.Mutex
	upserts int
}

func newCountingCatalog(seed ...domain.FoodItem) *countingCatalog {
	return &countingCatalog{CatalogStore: memstore.NewCatalogStore(seed...)}
}

func (c *countingCatalog) Upsert(ctx context.Context, food domain.FoodItem) error {
	c.mu.Lock()
	c.upserts++
	c.mu.Unlock()
	return c.CatalogStore.Upsert(ctx, food)
}

func (c *countingCatalog) upsertCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upserts
}

type fakeClassifier struct {
	predictions []domain.Prediction
	err         error
}

func (f *fakeClassifier) Classify(ctx context.Context, image []byte) ([]domain.Prediction, error) {
	return f.predictions, f.err
}

func catalogFood(id, name string, macros domain.Macros) domain.FoodItem {
	return domain.FoodItem{ID: id, Name: name, Macros: macros, Source: domain.SourceLocal}
}

func testCatalog() []domain.FoodItem {
	apple := catalogFood("apple", "Яблоко", domain.Macros{Calories: 52, Protein: 0.3, Fat: 0.2, Carbs: 14})
	apple.NameLocalized = "Apple"
	apple.Category = "fruits"

	pie := catalogFood("apple-pie", "Apple Pie", domain.Macros{Calories: 237, Protein: 2, Fat: 11, Carbs: 34})
	pie.Category = "desserts"

	pineapple := catalogFood("pineapple", "Pineapple", domain.Macros{Calories: 50, Protein: 0.5, Fat: 0.1, Carbs: 13})
	pineapple.Category = "fruits"

	oats := catalogFood("oats", "Овсяные хлопья", domain.Macros{Calories: 370, Protein: 13, Fat: 6.5, Carbs: 62})
	oats.NameLocalized = "Oat flakes"
	oats.Category = "grains"

	bread := catalogFood("bread", "Хлеб белый", domain.Macros{Calories: 265, Protein: 8, Fat: 3.2, Carbs: 49})
	bread.Category = "bakery"

	return []domain.FoodItem{apple, pie, pineapple, oats, bread}
}
