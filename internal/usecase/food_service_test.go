package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/nutridiary/backend/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFoodService(store domain.CatalogStore, external domain.ExternalFoodDatabase, autofill bool) *FoodService {
	var filler *AutoFiller
	if autofill {
		filler = NewAutoFiller(store, external, nil)
	}
	return NewFoodService(store, external, filler, FoodServiceConfig{EnableAutoFill: autofill})
}

func TestFoodService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks exact, prefix, then others", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), nil, false)

		result, err := svc.Search(ctx, "apple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Яблоко", "Apple Pie", "Pineapple"}, names(result.Foods))
		assert.Empty(t, result.Updated)
	})

	t.Run("empty query lists pool alphabetically without external call", func(t *testing.T) {
		external := &fakeExternal{}
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), external, false)

		result, err := svc.Search(ctx, "  ", domain.SearchOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple Pie", "Pineapple"}, names(result.Foods))
		search, _ := external.calls()
		assert.Zero(t, search)
	})

	t.Run("few local results are topped up from external", func(t *testing.T) {
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"pineapple": {
				{Name: "Pineapple juice", Barcode: "999", Per100: &domain.Macros{Calories: 53, Carbs: 13}},
				{Name: "Rejected"},
			},
		}}
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), external, false)

		result, err := svc.Search(ctx, "pineapple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pineapple", "Pineapple juice"}, names(result.Foods))
		assert.Equal(t, domain.SourceExternal, result.Foods[1].Source)
	})

	t.Run("external records with local barcodes are dropped", func(t *testing.T) {
		seed := testCatalog()
		seed[2].Barcode = "999"
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"pineapple": {{Name: "Pineapple (dup)", Barcode: "999", Per100: &domain.Macros{Calories: 50}}},
		}}
		svc := newTestFoodService(newCountingCatalog(seed...), external, false)

		result, err := svc.Search(ctx, "pineapple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pineapple"}, names(result.Foods))
	})

	t.Run("merged local and external results are ranked together", func(t *testing.T) {
		pineapple := catalogFood("pineapple", "Pineapple", domain.Macros{Calories: 50, Carbs: 13})
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"apple": {{Name: "Apple", Per100: &domain.Macros{Calories: 52, Carbs: 14}}},
		}}
		svc := newTestFoodService(newCountingCatalog(pineapple), external, false)

		result, err := svc.Search(ctx, "apple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple", "Pineapple"}, names(result.Foods))
	})

	t.Run("external records not matching the query are dropped", func(t *testing.T) {
		store := newCountingCatalog(testCatalog()...)
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"pineapple": {{Name: "Mango nectar", Per100: &domain.Macros{Calories: 60, Carbs: 15}}},
		}}
		svc := newTestFoodService(store, external, false)

		result, err := svc.Search(ctx, "pineapple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pineapple"}, names(result.Foods))
		assert.Zero(t, store.upsertCount())
	})

	t.Run("external hits are stored once and reported", func(t *testing.T) {
		store := newCountingCatalog(testCatalog()...)
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"kefir": {
				{Name: "Kefir 1%", Barcode: "4600", Per100: &domain.Macros{Calories: 40, Protein: 3, Fat: 1, Carbs: 4}},
				{Name: "Kefir", Brand: "Farm", Per100: &domain.Macros{Calories: 56, Protein: 3, Fat: 3.2, Carbs: 4}},
			},
		}}
		svc := newTestFoodService(store, external, false)

		first, err := svc.Search(ctx, "kefir", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Kefir", "Kefir 1%"}, names(first.Foods))
		assert.ElementsMatch(t, []string{"Kefir", "Kefir 1%"}, names(first.Updated))
		assert.Equal(t, 2, store.upsertCount())

		second, err := svc.Search(ctx, "kefir", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, names(first.Foods), names(second.Foods))
		assert.Equal(t, first.Foods[0].ID, second.Foods[0].ID)
		assert.Empty(t, second.Updated)
		assert.Equal(t, 2, store.upsertCount())

		byCode, err := svc.FindByBarcode(ctx, "4600", "")
		require.NoError(t, err)
		assert.Equal(t, "Kefir 1%", byCode.Name)
		_, barcodeCalls := external.calls()
		assert.Zero(t, barcodeCalls)
	})

	t.Run("external hit can be logged to the diary", func(t *testing.T) {
		catalog := memstore.NewCatalogStore(testCatalog()...)
		external := &fakeExternal{search: map[string][]domain.RawFood{
			"kefir": {{Name: "Kefir", Per100: &domain.Macros{Calories: 56, Protein: 3, Fat: 3.2, Carbs: 4}}},
		}}
		foods := newTestFoodService(catalog, external, false)
		diary := NewDiaryService(memstore.NewDiaryStore(), foods, nil)

		result, err := foods.Search(ctx, "kefir", domain.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, result.Foods, 1)

		got, err := foods.GetFood(ctx, result.Foods[0].ID, "")
		require.NoError(t, err)
		assert.Equal(t, "Kefir", got.Name)

		entry, err := diary.AddEntry(ctx, "alice", "2025-03-01", domain.EntryInput{
			MealSlot: domain.MealBreakfast,
			FoodID:   result.Foods[0].ID,
			Amount:   200,
			Unit:     "g",
		})
		require.NoError(t, err)
		assert.Equal(t, 112.0, entry.Macros.Calories)
	})

	t.Run("external failure degrades to local results", func(t *testing.T) {
		external := &fakeExternal{searchErr: domain.ErrExternalUnavailable}
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), external, false)

		result, err := svc.Search(ctx, "apple", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Len(t, result.Foods, 3)
	})

	t.Run("custom foods visible only to owner", func(t *testing.T) {
		seed := testCatalog()
		custom := catalogFood("mine", "Apple crumble", domain.Macros{Calories: 200})
		custom.Source = domain.SourceCustom
		custom.OwnerID = "alice"
		svc := newTestFoodService(newCountingCatalog(append(seed, custom)...), nil, false)

		alice, err := svc.Search(ctx, "apple", domain.SearchOptions{OwnerID: "alice"})
		require.NoError(t, err)
		assert.Contains(t, names(alice.Foods), "Apple crumble")

		bob, err := svc.Search(ctx, "apple", domain.SearchOptions{OwnerID: "bob"})
		require.NoError(t, err)
		assert.NotContains(t, names(bob.Foods), "Apple crumble")
	})

	t.Run("limit is applied", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), nil, false)
		result, err := svc.Search(ctx, "apple", domain.SearchOptions{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"Яблоко"}, names(result.Foods))
	})

	t.Run("autofill rewrites placeholders and reports them", func(t *testing.T) {
		placeholder := catalogFood("ph", "Apple sauce", domain.Macros{})
		placeholder.Category = "fruits"
		store := newCountingCatalog(append(testCatalog(), placeholder)...)
		svc := newTestFoodService(store, nil, true)

		result, err := svc.Search(ctx, "apple", domain.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, result.Updated, 1)
		assert.Equal(t, "ph", result.Updated[0].ID)
		assert.True(t, result.Updated[0].AutoFilled)

		var inResults *domain.FoodItem
		for i := range result.Foods {
			if result.Foods[i].ID == "ph" {
				inResults = &result.Foods[i]
			}
		}
		require.NotNil(t, inResults)
		assert.Equal(t, GetCategoryDefaults("fruits"), inResults.Macros)

		stored, err := store.Get(ctx, "ph")
		require.NoError(t, err)
		assert.True(t, stored.AutoFilled)
	})
}

func TestFoodService_FindByBarcode(t *testing.T) {
	ctx := context.Background()
	yogurt := domain.RawFood{Name: "Greek Yogurt", Per100: &domain.Macros{Calories: 59, Protein: 10, Fat: 0.4, Carbs: 3.6}}

	t.Run("external hit is stored once", func(t *testing.T) {
		store := newCountingCatalog(testCatalog()...)
		external := &fakeExternal{barcodes: map[string]domain.RawFood{"4601": yogurt}}
		svc := newTestFoodService(store, external, false)

		first, err := svc.FindByBarcode(ctx, "4601", "")
		require.NoError(t, err)
		second, err := svc.FindByBarcode(ctx, " 4601 ", "alice")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "4601", first.Barcode)
		assert.Equal(t, 1, store.upsertCount())
		_, barcodeCalls := external.calls()
		assert.Equal(t, 1, barcodeCalls)
	})

	t.Run("concurrent lookups insert once", func(t *testing.T) {
		store := newCountingCatalog()
		external := &fakeExternal{barcodes: map[string]domain.RawFood{"4601": yogurt}, barcodeDelay: 20 * time.Millisecond}
		svc := newTestFoodService(store, external, false)

		var wg sync.WaitGroup
		ids := make([]string, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				food, err := svc.FindByBarcode(ctx, "4601", "")
				if err == nil {
					ids[i] = food.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		assert.NotEmpty(t, ids[0])
		assert.Equal(t, 1, store.upsertCount())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("owner's custom barcode is found", func(t *testing.T) {
		custom := catalogFood("c1", "My granola", domain.Macros{Calories: 450})
		custom.Source = domain.SourceCustom
		custom.OwnerID = "alice"
		custom.Barcode = "777"
		svc := newTestFoodService(newCountingCatalog(custom), nil, false)

		got, err := svc.FindByBarcode(ctx, "777", "alice")
		require.NoError(t, err)
		assert.Equal(t, "c1", got.ID)

		_, err = svc.FindByBarcode(ctx, "777", "bob")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
	})

	t.Run("misses and failures", func(t *testing.T) {
		tests := []struct {
			name     string
			barcode  string
			external *fakeExternal
			wantErr  error
		}{
			{name: "empty barcode", barcode: " ", external: &fakeExternal{}, wantErr: domain.ErrInvalidRequest},
			{name: "external miss", barcode: "1", external: &fakeExternal{}, wantErr: domain.ErrFoodNotFound},
			{name: "external error", barcode: "1", external: &fakeExternal{barcodeErr: errors.New("503")}, wantErr: domain.ErrFoodNotFound},
			{
				name:     "record without macros",
				barcode:  "1",
				external: &fakeExternal{barcodes: map[string]domain.RawFood{"1": {Name: "Empty"}}},
				wantErr:  domain.ErrFoodNotFound,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newCountingCatalog()
				svc := newTestFoodService(store, tt.external, false)
				_, err := svc.FindByBarcode(ctx, tt.barcode, "")
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, store.upsertCount())
			})
		}
	})

	t.Run("no external database", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(), nil, false)
		_, err := svc.FindByBarcode(ctx, "1", "")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
	})
}

func TestFoodService_CustomFoods(t *testing.T) {
	ctx := context.Background()
	input := domain.CustomFoodInput{
		Name:    " Grandma's pie ",
		Barcode: "555",
		Aliases: []string{"pie", "PIE"},
		Macros:  domain.Macros{Calories: 1200, Protein: 5, Fat: 15, Carbs: 40},
	}

	t.Run("create clamps and scopes to owner", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(), nil, false)

		food, err := svc.CreateCustomFood(ctx, "alice", input)
		require.NoError(t, err)
		assert.Equal(t, "Grandma's pie", food.Name)
		assert.Equal(t, domain.SourceCustom, food.Source)
		assert.Equal(t, "alice", food.OwnerID)
		assert.InDelta(t, 1000, food.Macros.Calories, 1e-9)
		assert.Equal(t, []string{"pie"}, food.Aliases)
	})

	t.Run("zero macros are accepted", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(), nil, false)
		food, err := svc.CreateCustomFood(ctx, "alice", domain.CustomFoodInput{Name: "Water"})
		require.NoError(t, err)
		assert.True(t, food.Macros.IsZero())
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(), nil, false)
		_, err := svc.CreateCustomFood(ctx, "", input)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		_, err = svc.CreateCustomFood(ctx, "alice", domain.CustomFoodInput{Name: " "})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("barcode unique per owner", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(), nil, false)
		_, err := svc.CreateCustomFood(ctx, "alice", input)
		require.NoError(t, err)

		_, err = svc.CreateCustomFood(ctx, "alice", input)
		assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)

		_, err = svc.CreateCustomFood(ctx, "bob", input)
		assert.NoError(t, err)
	})

	t.Run("update and delete only by owner", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), nil, false)
		food, err := svc.CreateCustomFood(ctx, "alice", input)
		require.NoError(t, err)

		changed := input
		changed.Name = "Grandma's apple pie"
		changed.Macros = domain.Macros{Calories: 250}
		updated, err := svc.UpdateCustomFood(ctx, "alice", food.ID, changed)
		require.NoError(t, err)
		assert.Equal(t, "Grandma's apple pie", updated.Name)
		assert.InDelta(t, 250, updated.Macros.Calories, 1e-9)

		_, err = svc.UpdateCustomFood(ctx, "bob", food.ID, changed)
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
		_, err = svc.UpdateCustomFood(ctx, "", food.ID, changed)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		assert.ErrorIs(t, svc.DeleteCustomFood(ctx, "bob", food.ID), domain.ErrFoodNotFound)
		require.NoError(t, svc.DeleteCustomFood(ctx, "alice", food.ID))
		_, err = svc.GetFood(ctx, food.ID, "alice")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
	})

	t.Run("catalog foods are read-only", func(t *testing.T) {
		svc := newTestFoodService(newCountingCatalog(testCatalog()...), nil, false)
		_, err := svc.UpdateCustomFood(ctx, "alice", "apple", input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.ErrorIs(t, svc.DeleteCustomFood(ctx, "alice", "apple"), domain.ErrForbidden)
	})
}
