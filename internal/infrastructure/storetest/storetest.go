// Package storetest holds behaviour tests shared by every store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func food(id, owner, name, barcode string) domain.FoodItem {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.FoodItem{
		ID:        id,
		Name:      name,
		Barcode:   barcode,
		Category:  "fruits",
		Aliases:   []string{name + " alias"},
		Macros:    domain.Macros{Calories: 52, Protein: 0.3, Fat: 0.2, Carbs: 14},
		Source:    domain.SourceLocal,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CatalogStore runs the catalog contract against stores made by newStore
func CatalogStore(t *testing.T, newStore func(t *testing.T) domain.CatalogStore) {
	ctx := context.Background()

	t.Run("upsert and get", func(t *testing.T) {
		s := newStore(t)
		apple := food("a", "", "Apple", "111")
		require.NoError(t, s.Upsert(ctx, apple))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Apple", got.Name)
		assert.Equal(t, []string{"Apple alias"}, got.Aliases)
		assert.Equal(t, apple.Macros, got.Macros)
		assert.True(t, apple.CreatedAt.Equal(got.CreatedAt))

		apple.Macros.Calories = 60
		require.NoError(t, s.Upsert(ctx, apple))
		got, err = s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 60.0, got.Macros.Calories)
	})

	t.Run("missing food", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
		_, err = s.GetByBarcode(ctx, "", "nope")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "nope"), domain.ErrFoodNotFound)
	})

	t.Run("barcodes are scoped by owner", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, food("shared", "", "Milk", "222")))
		require.NoError(t, s.Upsert(ctx, food("mine", "u1", "My milk", "222")))

		got, err := s.GetByBarcode(ctx, "", "222")
		require.NoError(t, err)
		assert.Equal(t, "shared", got.ID)

		got, err = s.GetByBarcode(ctx, "u1", "222")
		require.NoError(t, err)
		assert.Equal(t, "mine", got.ID)

		_, err = s.GetByBarcode(ctx, "u2", "222")
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)

		err = s.Upsert(ctx, food("dup", "", "Other", "222"))
		assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)
	})

	t.Run("query all and delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, food("b", "", "Banana", "")))
		require.NoError(t, s.Upsert(ctx, food("a", "", "Apple", "")))
		require.NoError(t, s.Upsert(ctx, food("c", "", "Cherry", "")))

		all, err := s.QueryAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].ID)

		require.NoError(t, s.Delete(ctx, "b"))
		all, err = s.QueryAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func entry(id, owner, date string, slot domain.MealSlot, calories float64, created time.Time) domain.DiaryEntry {
	return domain.DiaryEntry{
		ID:          id,
		OwnerID:     owner,
		Date:        date,
		MealSlot:    slot,
		FoodID:      "apple",
		Food:        food("apple", "", "Apple", ""),
		Amount:      1,
		Unit:        "pcs",
		WeightGrams: 150,
		Macros:      domain.Macros{Calories: calories},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// DiaryStore runs the diary contract against stores made by newStore
func DiaryStore(t *testing.T, newStore func(t *testing.T) domain.DiaryStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, s domain.DiaryStore) {
		entries := []domain.DiaryEntry{
			entry("e1", "u1", "2026-03-01", domain.MealBreakfast, 100, base),
			entry("e2", "u1", "2026-03-01", domain.MealLunch, 200, base.Add(time.Hour)),
			entry("e3", "u1", "2026-03-01", domain.MealLunch, 300, base.Add(2*time.Hour)),
			entry("e4", "u1", "2026-03-02", domain.MealDinner, 400, base.Add(24*time.Hour)),
			entry("e5", "u2", "2026-03-01", domain.MealLunch, 500, base),
		}
		for _, e := range entries {
			require.NoError(t, s.Add(ctx, e))
		}
	}

	t.Run("get keeps the snapshot", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, err := s.Get(ctx, "u1", "e1")
		require.NoError(t, err)
		assert.Equal(t, "Apple", got.Food.Name)
		assert.Equal(t, 52.0, got.Food.Macros.Calories)
		assert.Equal(t, 150.0, got.WeightGrams)
		assert.Equal(t, domain.MealBreakfast, got.MealSlot)

		_, err = s.Get(ctx, "u2", "e1")
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	})

	t.Run("list day and range", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		day, err := s.ListDay(ctx, "u1", "2026-03-01")
		require.NoError(t, err)
		require.Len(t, day, 3)
		assert.Equal(t, []string{"e1", "e2", "e3"}, []string{day[0].ID, day[1].ID, day[2].ID})

		rng, err := s.ListRange(ctx, "u1", "2026-03-01", "2026-03-02")
		require.NoError(t, err)
		assert.Len(t, rng, 4)
		assert.Equal(t, "e4", rng[3].ID)

		empty, err := s.ListDay(ctx, "u3", "2026-03-01")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("update and remove", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		e, err := s.Get(ctx, "u1", "e2")
		require.NoError(t, err)
		e.Note = "with tea"
		e.Macros.Calories = 250
		require.NoError(t, s.Update(ctx, *e))

		got, err := s.Get(ctx, "u1", "e2")
		require.NoError(t, err)
		assert.Equal(t, "with tea", got.Note)
		assert.Equal(t, 250.0, got.Macros.Calories)

		require.NoError(t, s.Remove(ctx, "u1", "e2"))
		assert.ErrorIs(t, s.Remove(ctx, "u1", "e2"), domain.ErrEntryNotFound)
		assert.ErrorIs(t, s.Remove(ctx, "u1", "e5"), domain.ErrEntryNotFound)

		missing := entry("zzz", "u1", "2026-03-01", domain.MealSnack, 1, base)
		assert.ErrorIs(t, s.Update(ctx, missing), domain.ErrEntryNotFound)
	})

	t.Run("clear meal and day", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		n, err := s.ClearMeal(ctx, "u1", "2026-03-01", domain.MealLunch)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.ClearDay(ctx, "u1", "2026-03-01")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		other, err := s.ListDay(ctx, "u2", "2026-03-01")
		require.NoError(t, err)
		assert.Len(t, other, 1)

		next, err := s.ListDay(ctx, "u1", "2026-03-02")
		require.NoError(t, err)
		assert.Len(t, next, 1)
	})
}

// GoalsStore runs the goals contract against stores made by newStore
func GoalsStore(t *testing.T, newStore func(t *testing.T) domain.GoalsStore) {
	ctx := context.Background()
	s := newStore(t)

	_, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	goals := domain.DailyGoals{Calories: 1800, Protein: 120, Fat: 60, Carbs: 180}
	require.NoError(t, s.Save(ctx, "u1", goals))
	require.NoError(t, s.Save(ctx, "u1", goals))

	got, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, goals, got)

	zero := domain.DailyGoals{}
	require.NoError(t, s.Save(ctx, "u2", zero))
	got, ok, err = s.Get(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, zero, got)
}
