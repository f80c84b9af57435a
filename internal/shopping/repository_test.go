package shopping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"meal-planner/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository() (*Repository, *store.Memory) {
	kv := store.NewMemory()
	r := NewRepository(kv)

	clock := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	seq := 0
	r.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return r, kv
}

func ptr(f float64) *float64 { return &f }

func TestRepositoryLists(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateGetDelete", func(t *testing.T) {
		r, _ := newTestRepository()

		created, err := r.CreateList(ctx, "  Party  ", "")
		require.NoError(t, err)
		assert.Equal(t, "Party", created.Name)
		assert.Empty(t, created.Items)

		got, err := r.GetList(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		require.NoError(t, r.DeleteList(ctx, created.ID))
		_, err = r.GetList(ctx, created.ID)
		assert.True(t, errors.Is(err, ErrListNotFound))
		assert.True(t, errors.Is(r.DeleteList(ctx, created.ID), ErrListNotFound))
	})

	t.Run("ListsOldestFirst", func(t *testing.T) {
		r, _ := newTestRepository()
		first, err := r.CreateList(ctx, "a", "")
		require.NoError(t, err)
		second, err := r.CreateList(ctx, "", "2026-W42")
		require.NoError(t, err)
		assert.Equal(t, "Grocery list", second.Name)

		lists, err := r.Lists(ctx)
		require.NoError(t, err)
		require.Len(t, lists, 2)
		assert.Equal(t, first.ID, lists[0].ID)
		assert.Equal(t, second.ID, lists[1].ID)

		found, ok, err := r.ListForPeriod(ctx, "2026-W42")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second.ID, found.ID)

		_, ok, err = r.ListForPeriod(ctx, "2026-W43")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepositoryItems(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Repository, *GroceryList) {
		r, _ := newTestRepository()
		list, err := r.CreateList(ctx, "weekly", "")
		require.NoError(t, err)
		return r, list
	}

	t.Run("AddManualItem", func(t *testing.T) {
		r, list := setup(t)

		item, err := r.AddManualItem(ctx, list.ID, ManualItem{Name: " Paper Towels ", Quantity: ptr(2), Notes: "big pack"})
		require.NoError(t, err)
		assert.Equal(t, "paper towels", item.Name)
		assert.False(t, item.Checked)

		// Manual items never merge.
		_, err = r.AddManualItem(ctx, list.ID, ManualItem{Name: "paper towels"})
		require.NoError(t, err)

		got, err := r.GetList(ctx, list.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, 2.0, *got.Items[0].Quantity)
		assert.Nil(t, got.Items[1].Quantity)
	})

	t.Run("AddManualItemValidation", func(t *testing.T) {
		r, list := setup(t)

		_, err := r.AddManualItem(ctx, list.ID, ManualItem{Name: "   "})
		assert.True(t, errors.Is(err, ErrInvalidItem))

		_, err = r.AddManualItem(ctx, "missing", ManualItem{Name: "bread"})
		assert.True(t, errors.Is(err, ErrListNotFound))
	})

	t.Run("ToggleAndUncheckAll", func(t *testing.T) {
		r, list := setup(t)
		a, err := r.AddManualItem(ctx, list.ID, ManualItem{Name: "apples"})
		require.NoError(t, err)
		b, err := r.AddManualItem(ctx, list.ID, ManualItem{Name: "bananas"})
		require.NoError(t, err)

		checked, err := r.ToggleChecked(ctx, list.ID, a.ID)
		require.NoError(t, err)
		assert.True(t, checked)
		_, err = r.ToggleChecked(ctx, list.ID, b.ID)
		require.NoError(t, err)

		got, err := r.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Remaining())

		checked, err = r.ToggleChecked(ctx, list.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, checked)

		require.NoError(t, r.UncheckAll(ctx, list.ID))
		got, err = r.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Remaining())

		_, err = r.ToggleChecked(ctx, list.ID, "nope")
		assert.True(t, errors.Is(err, ErrItemNotFound))
	})

	t.Run("RemoveAndClear", func(t *testing.T) {
		r, list := setup(t)
		a, err := r.AddManualItem(ctx, list.ID, ManualItem{Name: "apples"})
		require.NoError(t, err)
		_, err = r.AddManualItem(ctx, list.ID, ManualItem{Name: "bananas"})
		require.NoError(t, err)

		require.NoError(t, r.RemoveItem(ctx, list.ID, a.ID))
		got, err := r.GetList(ctx, list.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "bananas", got.Items[0].Name)

		assert.True(t, errors.Is(r.RemoveItem(ctx, list.ID, a.ID), ErrItemNotFound))

		require.NoError(t, r.ClearList(ctx, list.ID))
		got, err = r.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.Equal(t, "weekly", got.Name)
	})
}
