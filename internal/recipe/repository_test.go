package recipe

import (
	"context"
	"errors"
	"testing"

	"meal-planner/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(id int64, title string) Recipe {
	return Recipe{ID: id, Title: title, Image: "https://img.test/" + title + ".jpg", ReadyInMinutes: 20, Servings: 2}
}

func detailed(id int64, title string) Recipe {
	rec := summary(id, title)
	rec.ExtendedIngredients = []Ingredient{{Name: "eggs", Amount: 2}}
	return rec
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveIsIdempotent", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())

		saved, err := repo.Save(ctx, summary(1, "Pancakes"))
		require.NoError(t, err)
		assert.True(t, saved)

		saved, err = repo.Save(ctx, summary(1, "Pancakes"))
		require.NoError(t, err)
		assert.False(t, saved)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("IsSavedTracksSavedSet", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		for _, id := range []int64{1, 2, 3} {
			_, err := repo.Save(ctx, summary(id, "r"))
			require.NoError(t, err)
		}
		require.NoError(t, repo.Remove(ctx, 2))

		for id, want := range map[int64]bool{1: true, 2: false, 3: true, 4: false} {
			got, err := repo.IsSaved(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, got, "id %d", id)
		}

		ids, err := repo.SavedIDs(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})

	t.Run("PreservesSaveOrder", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		for _, id := range []int64{30, 10, 20} {
			_, err := repo.Save(ctx, summary(id, "r"))
			require.NoError(t, err)
		}
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{30, 10, 20}, []int64{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("UpgradeSummaryWithDetails", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		_, err := repo.Save(ctx, summary(7, "Soup"))
		require.NoError(t, err)

		saved, err := repo.Save(ctx, detailed(7, "Soup"))
		require.NoError(t, err)
		assert.False(t, saved)

		got, err := repo.Get(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.HasIngredients())
	})

	t.Run("DetailsAreNeverDowngraded", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		_, err := repo.Save(ctx, detailed(8, "Stew"))
		require.NoError(t, err)
		_, err = repo.Save(ctx, summary(8, "Stew"))
		require.NoError(t, err)

		got, err := repo.Get(ctx, 8)
		require.NoError(t, err)
		assert.True(t, got.HasIngredients())
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		got, err := repo.Get(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RemoveUnsavedIsNoop", func(t *testing.T) {
		kv := store.NewMemory()
		repo := NewRepository(kv)
		require.NoError(t, repo.Remove(ctx, 5))
		assert.Equal(t, 0, kv.Writes())
	})

	t.Run("RejectsZeroID", func(t *testing.T) {
		repo := NewRepository(store.NewMemory())
		_, err := repo.Save(ctx, Recipe{Title: "nameless"})
		assert.True(t, errors.Is(err, ErrMissingID))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestRecipeHelpers(t *testing.T) {
	rec := Recipe{
		AnalyzedInstructions: []Instruction{{Steps: []Step{{Number: 1, Step: "Boil water."}, {Number: 2, Step: "Add pasta."}}}},
		Nutrition: &Nutrition{Nutrients: []Nutrient{
			{Name: "Protein", Amount: 12, Unit: "g"},
			{Name: "Sugar", Amount: 3, Unit: "g"},
			{Name: "Calories", Amount: 420, Unit: "kcal"},
		}},
	}

	assert.Len(t, rec.Steps(), 2)
	assert.False(t, rec.HasIngredients())

	key := rec.KeyNutrients()
	require.Len(t, key, 2)
	assert.Equal(t, "Calories", key[0].Name)
	assert.Equal(t, "Protein", key[1].Name)

	assert.Nil(t, Recipe{}.Steps())
	assert.Nil(t, Recipe{}.KeyNutrients())
}
