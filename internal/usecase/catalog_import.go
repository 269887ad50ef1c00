package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ImportReport counts the outcome of a catalog import
type ImportReport struct {
	Imported   int `json:"imported"`
	Rejected   int `json:"rejected"`
	Duplicates int `json:"duplicates"`
}

// ImportCatalog normalizes raws into the shared catalog as local foods.
// Records the normalizer rejects are skipped. A record whose barcode, or name
// and brand when it has no barcode, is already cataloged (or appeared earlier
// in raws) is a duplicate, so importing the same file twice adds nothing.
func (s *FoodService) ImportCatalog(ctx context.Context, raws []domain.RawFood) (ImportReport, error) {
	var report ImportReport

	pool, err := s.visiblePool(ctx, "")
	if err != nil {
		return report, err
	}
	byName := make(map[string]bool, len(pool))
	for i := range pool {
		if pool[i].Barcode == "" {
			byName[catalogKey(&pool[i])] = true
		}
	}
	barcodes := make(map[string]bool)

	for _, raw := range raws {
		food := NormalizeFood(raw, domain.SourceLocal, "")
		if food == nil {
			report.Rejected++
			continue
		}

		dup, err := s.isImported(ctx, food, byName, barcodes)
		if err != nil {
			return report, err
		}
		if dup {
			report.Duplicates++
			continue
		}

		if err := s.store.Upsert(ctx, *food); err != nil {
			return report, fmt.Errorf("import %q: %w", food.Name, err)
		}
		report.Imported++
	}

	log.Info().Str("component", "catalog").Int("imported", report.Imported).
		Int("rejected", report.Rejected).Int("duplicates", report.Duplicates).Msg("catalog import finished")
	return report, nil
}

// isImported reports whether food is already cataloged and records it as seen
func (s *FoodService) isImported(ctx context.Context, food *domain.FoodItem, byName, barcodes map[string]bool) (bool, error) {
	if food.Barcode == "" {
		key := catalogKey(food)
		if byName[key] {
			return true, nil
		}
		byName[key] = true
		return false, nil
	}

	if barcodes[food.Barcode] {
		return true, nil
	}
	barcodes[food.Barcode] = true

	_, err := s.store.GetByBarcode(ctx, "", food.Barcode)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrFoodNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("catalog barcode lookup: %w", err)
	}
}
