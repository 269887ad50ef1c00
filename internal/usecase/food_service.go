package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Search defaults
const (
	DefaultExternalThreshold = 10
	DefaultSearchLimit       = 20
	DefaultMaxSearchLimit    = 100
)

// FoodServiceConfig holds configuration for the food service
type FoodServiceConfig struct {
	ExternalThreshold  int
	DefaultLimit       int
	MaxLimit           int
	EnableAutoFill     bool
	EnableDebugLogging bool
}

// FoodService searches and maintains the food catalog
type FoodService struct {
	store             domain.CatalogStore
	external          domain.ExternalFoodDatabase
	autofiller        *AutoFiller
	matchingService   *MatchingService
	externalThreshold int
	defaultLimit      int
	maxLimit          int
	enableAutoFill    bool
	barcodeGroup      singleflight.Group
	labelGroup        singleflight.Group
}

// NewFoodService creates a new food service with dependencies. external and
// autofiller may be nil.
func NewFoodService(
	store domain.CatalogStore,
	external domain.ExternalFoodDatabase,
	autofiller *AutoFiller,
	config FoodServiceConfig,
) *FoodService {
	threshold := config.ExternalThreshold
	if threshold <= 0 {
		threshold = DefaultExternalThreshold
	}
	limit := config.DefaultLimit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	maxLimit := config.MaxLimit
	if maxLimit < limit {
		maxLimit = DefaultMaxSearchLimit
		if maxLimit < limit {
			maxLimit = limit
		}
	}

	return &FoodService{
		store:             store,
		external:          external,
		autofiller:        autofiller,
		matchingService:   NewMatchingService(MatchConfig{EnableDebugLogging: config.EnableDebugLogging}),
		externalThreshold: threshold,
		defaultLimit:      limit,
		maxLimit:          maxLimit,
		enableAutoFill:    config.EnableAutoFill && autofiller != nil,
	}
}

// Search finds foods matching query.
// Flow: rank local pool -> if too few, store external hits and re-rank the
// merged pool -> autofill -> return. Updated lists every catalog write.
func (s *FoodService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	limit := s.clampLimit(opts.Limit)

	pool, err := s.visiblePool(ctx, opts.OwnerID)
	if err != nil {
		return nil, err
	}

	if foldText(query) == "" {
		return &domain.SearchResult{Foods: truncate(SortByName(pool), limit)}, nil
	}

	results := s.matchingService.Rank(pool, query)
	result := &domain.SearchResult{}

	if len(results) < s.externalThreshold {
		external, written := s.searchExternal(ctx, query, limit, pool)
		if len(external) > 0 {
			results = s.matchingService.Rank(mergeByID(results, external), query)
		}
		result.Updated = append(result.Updated, written...)
	}

	results = truncate(results, limit)

	if s.enableAutoFill {
		for i, food := range results {
			filled, changed := s.autofiller.AutoFillNutrition(ctx, food)
			if changed {
				results[i] = filled
				result.Updated = append(result.Updated, filled)
			}
		}
	}

	result.Foods = results
	return result, nil
}

// SearchLocal ranks the shared catalog and the owner's custom foods without
// touching the external database or autofill
func (s *FoodService) SearchLocal(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.FoodItem, error) {
	pool, err := s.visiblePool(ctx, opts.OwnerID)
	if err != nil {
		return nil, err
	}
	return truncate(s.matchingService.Rank(pool, query), s.clampLimit(opts.Limit)), nil
}

// searchExternal queries the external database and stores the normalized
// hits that match query in the shared catalog. A hit whose barcode, or name
// and brand, is already cataloged resolves to the existing entry. It returns
// the resolved foods and the subset that was written.
func (s *FoodService) searchExternal(ctx context.Context, query string, limit int, pool []domain.FoodItem) (foods, written []domain.FoodItem) {
	if s.external == nil {
		return nil, nil
	}

	raws, err := s.external.SearchByName(ctx, query, limit)
	if err != nil {
		log.Warn().Err(err).Str("component", "food").Str("query", query).
			Msg("external search failed, using local results only")
		return nil, nil
	}

	cataloged := make(map[string]domain.FoodItem, len(pool))
	for _, f := range pool {
		if f.OwnerID == "" {
			cataloged[catalogKey(&f)] = f
		}
	}

	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		food := NormalizeFood(raw, domain.SourceExternal, "")
		if food == nil || s.matchingService.MatchFood(food, query) == MatchNone {
			continue
		}

		resolved, stored, err := s.resolveExternal(ctx, food, cataloged)
		if err != nil {
			log.Warn().Err(err).Str("component", "food").Str("food", food.Name).
				Msg("external food not stored")
			continue
		}
		if seen[resolved.ID] {
			continue
		}
		seen[resolved.ID] = true
		cataloged[catalogKey(&resolved)] = resolved

		foods = append(foods, resolved)
		if stored {
			written = append(written, resolved)
		}
	}

	if len(written) > 0 {
		log.Info().Str("component", "food").Str("query", query).Int("stored", len(written)).
			Msg("external foods cached in catalog")
	}
	return foods, written
}

// resolveExternal returns the cataloged entry for food, upserting food when
// there is none. Barcoded records go through the barcode group so a
// concurrent barcode lookup cannot insert the same code twice.
func (s *FoodService) resolveExternal(ctx context.Context, food *domain.FoodItem, cataloged map[string]domain.FoodItem) (domain.FoodItem, bool, error) {
	if food.Barcode == "" {
		if existing, ok := cataloged[catalogKey(food)]; ok {
			return existing, false, nil
		}
		if err := s.store.Upsert(ctx, *food); err != nil {
			return domain.FoodItem{}, false, err
		}
		return *food, true, nil
	}

	stored := false
	v, err, _ := s.barcodeGroup.Do(food.Barcode, func() (interface{}, error) {
		existing, err := s.store.GetByBarcode(ctx, "", food.Barcode)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrFoodNotFound) {
			return nil, err
		}
		if err := s.store.Upsert(ctx, *food); err != nil {
			return nil, err
		}
		stored = true
		return food, nil
	})
	if err != nil {
		return domain.FoodItem{}, false, err
	}
	return *v.(*domain.FoodItem), stored, nil
}

// catalogKey identifies a shared catalog record without a barcode
func catalogKey(food *domain.FoodItem) string {
	return foldText(food.Name) + "\x00" + foldText(food.Brand)
}

// FindByBarcode looks up the shared catalog, then the owner's custom foods,
// then the external database. External hits are stored in the shared catalog
// so repeated lookups never insert twice.
func (s *FoodService) FindByBarcode(ctx context.Context, barcode, ownerID string) (*domain.FoodItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	food, err := s.localByBarcode(ctx, barcode, ownerID)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, err
	}

	if s.external == nil {
		return nil, domain.ErrFoodNotFound
	}

	v, err, _ := s.barcodeGroup.Do(barcode, func() (interface{}, error) {
		return s.fetchBarcode(ctx, barcode)
	})
	if err != nil {
		return nil, err
	}
	food = v.(*domain.FoodItem)
	copied := *food
	return &copied, nil
}

func (s *FoodService) localByBarcode(ctx context.Context, barcode, ownerID string) (*domain.FoodItem, error) {
	food, err := s.store.GetByBarcode(ctx, "", barcode)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, fmt.Errorf("catalog barcode lookup: %w", err)
	}
	if ownerID == "" {
		return nil, domain.ErrFoodNotFound
	}

	food, err = s.store.GetByBarcode(ctx, ownerID, barcode)
	if err != nil && !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, fmt.Errorf("custom food barcode lookup: %w", err)
	}
	return food, err
}

func (s *FoodService) fetchBarcode(ctx context.Context, barcode string) (*domain.FoodItem, error) {
	// Another call may have stored it while we waited.
	if food, err := s.store.GetByBarcode(ctx, "", barcode); err == nil {
		return food, nil
	}

	raw, err := s.external.GetByBarcode(ctx, barcode)
	if err != nil {
		log.Warn().Err(err).Str("component", "food").Str("barcode", barcode).
			Msg("external barcode lookup failed")
		return nil, domain.ErrFoodNotFound
	}
	if raw == nil {
		return nil, domain.ErrFoodNotFound
	}

	raw.Barcode = barcode
	food := NormalizeFood(*raw, domain.SourceExternal, "")
	if food == nil {
		log.Info().Str("component", "food").Str("barcode", barcode).
			Msg("external record rejected by normalizer")
		return nil, domain.ErrFoodNotFound
	}

	if err := s.store.Upsert(ctx, *food); err != nil {
		return nil, fmt.Errorf("store external food: %w", err)
	}

	log.Info().Str("component", "food").Str("barcode", barcode).Str("food_id", food.ID).
		Msg("external food cached in catalog")
	return food, nil
}

// LabelFood returns the shared classifier-derived record named name, creating
// it when autofill can supply its nutrition. Without autofill, or when no
// nutrition is found, it returns ErrFoodNotFound and stores nothing.
func (s *FoodService) LabelFood(ctx context.Context, name string) (*domain.FoodItem, error) {
	name = strings.TrimSpace(name)
	if name == "" || s.autofiller == nil {
		return nil, domain.ErrFoodNotFound
	}

	v, err, _ := s.labelGroup.Do(foldText(name), func() (interface{}, error) {
		pool, err := s.visiblePool(ctx, "")
		if err != nil {
			return nil, err
		}
		for i := range pool {
			if pool[i].Source == domain.SourceClassifier && foldText(pool[i].Name) == foldText(name) {
				return &pool[i], nil
			}
		}

		now := time.Now()
		placeholder := domain.FoodItem{
			ID:        uuid.NewString(),
			Name:      name,
			Source:    domain.SourceClassifier,
			CreatedAt: now,
			UpdatedAt: now,
		}
		filled, stored := s.autofiller.AutoFillNutrition(ctx, placeholder)
		if !stored {
			return nil, domain.ErrFoodNotFound
		}
		log.Info().Str("component", "food").Str("food_id", filled.ID).Str("name", name).
			Msg("classifier food added to catalog")
		return &filled, nil
	})
	if err != nil {
		return nil, err
	}
	food := *v.(*domain.FoodItem)
	return &food, nil
}

// GetFood returns a food visible to ownerID
func (s *FoodService) GetFood(ctx context.Context, id, ownerID string) (*domain.FoodItem, error) {
	food, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !food.VisibleTo(ownerID) {
		return nil, domain.ErrFoodNotFound
	}
	return food, nil
}

// CreateCustomFood stores a user-authored food. Unlike NormalizeFood it
// accepts all-zero macros (water, diet soda).
func (s *FoodService) CreateCustomFood(ctx context.Context, ownerID string, input domain.CustomFoodInput) (*domain.FoodItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidRequest)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}

	barcode := strings.TrimSpace(input.Barcode)
	if err := s.ensureBarcodeFree(ctx, ownerID, barcode, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	food := domain.FoodItem{
		ID:            uuid.NewString(),
		Name:          name,
		NameLocalized: strings.TrimSpace(input.NameLocalized),
		Brand:         strings.TrimSpace(input.Brand),
		Barcode:       barcode,
		Category:      strings.TrimSpace(input.Category),
		Aliases:       cleanAliases(input.Aliases),
		Macros:        ClampMacros(input.Macros),
		Source:        domain.SourceCustom,
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Upsert(ctx, food); err != nil {
		return nil, fmt.Errorf("store custom food: %w", err)
	}
	return &food, nil
}

// UpdateCustomFood rewrites a custom food owned by ownerID
func (s *FoodService) UpdateCustomFood(ctx context.Context, ownerID, id string, input domain.CustomFoodInput) (*domain.FoodItem, error) {
	food, err := s.ownedFood(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}
	barcode := strings.TrimSpace(input.Barcode)
	if err := s.ensureBarcodeFree(ctx, ownerID, barcode, id); err != nil {
		return nil, err
	}

	food.Name = name
	food.NameLocalized = strings.TrimSpace(input.NameLocalized)
	food.Brand = strings.TrimSpace(input.Brand)
	food.Barcode = barcode
	food.Category = strings.TrimSpace(input.Category)
	food.Aliases = cleanAliases(input.Aliases)
	food.Macros = ClampMacros(input.Macros)
	food.AutoFilled = false
	food.UpdatedAt = time.Now()

	if err := s.store.Upsert(ctx, *food); err != nil {
		return nil, fmt.Errorf("store custom food: %w", err)
	}
	return food, nil
}

// DeleteCustomFood removes a custom food owned by ownerID
func (s *FoodService) DeleteCustomFood(ctx context.Context, ownerID, id string) error {
	if _, err := s.ownedFood(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *FoodService) ownedFood(ctx context.Context, ownerID, id string) (*domain.FoodItem, error) {
	if ownerID == "" {
		return nil, domain.ErrForbidden
	}
	food, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !food.VisibleTo(ownerID) {
		return nil, domain.ErrFoodNotFound
	}
	if food.Source != domain.SourceCustom || food.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return food, nil
}

func (s *FoodService) ensureBarcodeFree(ctx context.Context, ownerID, barcode, selfID string) error {
	if barcode == "" {
		return nil
	}
	existing, err := s.store.GetByBarcode(ctx, ownerID, barcode)
	if errors.Is(err, domain.ErrFoodNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return domain.ErrDuplicateBarcode
	}
	return nil
}

// visiblePool returns the shared catalog plus the owner's custom foods
func (s *FoodService) visiblePool(ctx context.Context, ownerID string) ([]domain.FoodItem, error) {
	all, err := s.store.QueryAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	var catalog, custom []domain.FoodItem
	for _, food := range all {
		switch {
		case food.OwnerID == "":
			catalog = append(catalog, food)
		case ownerID != "" && food.OwnerID == ownerID:
			custom = append(custom, food)
		}
	}
	return mergeByID(catalog, custom), nil
}

func (s *FoodService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// mergeByID concatenates lists, dropping repeated ids. An id keeps the
// position of its first occurrence and the value of its last.
func mergeByID(lists ...[]domain.FoodItem) []domain.FoodItem {
	index := make(map[string]int)
	var out []domain.FoodItem
	for _, list := range lists {
		for _, food := range list {
			if i, ok := index[food.ID]; ok {
				out[i] = food
				continue
			}
			index[food.ID] = len(out)
			out = append(out, food)
		}
	}
	return out
}

func truncate(foods []domain.FoodItem, limit int) []domain.FoodItem {
	if limit > 0 && len(foods) > limit {
		return foods[:limit]
	}
	return foods
}
