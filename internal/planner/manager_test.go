package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC) // Wednesday of 2026-W42

func newTestManager() (*Manager, *store.Memory) {
	kv := store.NewMemory()
	return NewManager(kv, func() time.Time { return fixedNow }), kv
}

func TestCurrentPeriodID(t *testing.T) {
	m, _ := newTestManager()
	assert.Equal(t, "2026-W42", m.CurrentPeriodID())
}

func TestGetOrCreatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesFullGrid", func(t *testing.T) {
		m, kv := newTestManager()

		plan, err := m.GetOrCreatePlan(ctx, "2026-W42")
		require.NoError(t, err)
		assert.Equal(t, "2026-W42", plan.PeriodID)
		require.Len(t, plan.Meals, 7)
		for _, day := range Days {
			require.Len(t, plan.Meals[day], 3, "day %s", day)
			for _, meal := range MealTypes {
				slot, err := plan.Slot(day, meal)
				require.NoError(t, err)
				assert.Nil(t, slot)
			}
		}
		assert.True(t, plan.IsEmpty())
		assert.Equal(t, 1, kv.Writes())
	})

	t.Run("IdempotentRead", func(t *testing.T) {
		m, kv := newTestManager()

		first, err := m.GetOrCreatePlan(ctx, "2026-W42")
		require.NoError(t, err)
		second, err := m.GetOrCreatePlan(ctx, "2026-W42")
		require.NoError(t, err)

		assert.Equal(t, first.Meals, second.Meals)
		assert.Equal(t, 1, kv.Writes(), "second read must not rewrite the plan")
	})

	t.Run("RejectsBadPeriod", func(t *testing.T) {
		m, _ := newTestManager()
		_, err := m.GetOrCreatePlan(ctx, "2026-10")
		assert.True(t, errors.Is(err, ErrInvalidPeriod))
	})
}

func TestPeekPlan(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager()

	plan, ok, err := m.PeekPlan(ctx, "2026-W42")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, plan)
	assert.Equal(t, 0, kv.Writes())

	require.NoError(t, m.Assign(ctx, "2026-W42", Friday, Lunch, 9, 0))
	plan, ok, err = m.PeekPlan(ctx, "2026-W42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{9}, plan.RecipeIDs())
}

func TestAssignUnassign(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		m, _ := newTestManager()

		require.NoError(t, m.Assign(ctx, "2026-W42", Monday, Breakfast, 101, 4))
		plan, err := m.GetOrCreatePlan(ctx, "2026-W42")
		require.NoError(t, err)
		slot, err := plan.Slot(Monday, Breakfast)
		require.NoError(t, err)
		require.NotNil(t, slot)
		assert.Equal(t, MealAssignment{RecipeID: 101, Servings: 4}, *slot)

		require.NoError(t, m.Unassign(ctx, "2026-W42", Monday, Breakfast))
		plan, err = m.GetOrCreatePlan(ctx, "2026-W42")
		require.NoError(t, err)
		slot, err = plan.Slot(Monday, Breakfast)
		require.NoError(t, err)
		assert.Nil(t, slot)
		assert.True(t, plan.IsEmpty())
	})

	t.Run("Overwrites", func(t *testing.T) {
		m, _ := newTestManager()
		require.NoError(t, m.Assign(ctx, "2026-W42", Sunday, Dinner, 1, 0))
		require.NoError(t, m.Assign(ctx, "2026-W42", Sunday, Dinner, 2, 0))

		plan, _, err := m.PeekPlan(ctx, "2026-W42")
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, plan.RecipeIDs())
	})

	t.Run("InvalidSlotsAreRejected", func(t *testing.T) {
		m, kv := newTestManager()

		assert.ErrorIs(t, m.Assign(ctx, "2026-W42", Day("funday"), Lunch, 1, 0), ErrInvalidSlot)
		assert.ErrorIs(t, m.Assign(ctx, "2026-W42", Monday, MealType("brunch"), 1, 0), ErrInvalidSlot)
		assert.ErrorIs(t, m.Assign(ctx, "2026-W42", Monday, Lunch, 0, 0), ErrInvalidSlot)
		assert.ErrorIs(t, m.Assign(ctx, "2026-W42", Monday, Lunch, 1, -2), ErrInvalidSlot)
		assert.ErrorIs(t, m.Unassign(ctx, "2026-W42", Day("Monday"), Lunch), ErrInvalidSlot)
		assert.Equal(t, 0, kv.Writes())
	})

	t.Run("PeriodsAreIndependent", func(t *testing.T) {
		m, _ := newTestManager()
		require.NoError(t, m.Assign(ctx, "2026-W42", Tuesday, Lunch, 5, 0))
		require.NoError(t, m.Assign(ctx, "2026-W43", Tuesday, Lunch, 6, 0))

		periods, err := m.Periods(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2026-W42", "2026-W43"}, periods)

		plan, _, err := m.PeekPlan(ctx, "2026-W42")
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, plan.RecipeIDs())
	})
}

func TestClearPeriod(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	require.NoError(t, m.Assign(ctx, "2026-W42", Wednesday, Dinner, 7, 0))
	require.NoError(t, m.ClearPeriod(ctx, "2026-W42"))

	_, ok, err := m.PeekPlan(ctx, "2026-W42")
	require.NoError(t, err)
	assert.False(t, ok, "cleared period must be removed, not emptied")

	plan, err := m.GetOrCreatePlan(ctx, "2026-W42")
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())

	require.NoError(t, m.ClearPeriod(ctx, "2030-W01"), "clearing an absent period is a no-op")
}

func TestWeeklyPlanRecipeIDs(t *testing.T) {
	plan := NewWeeklyPlan("2026-W42", fixedNow)
	plan.Meals[Friday][Lunch] = &MealAssignment{RecipeID: 2}
	plan.Meals[Monday][Breakfast] = &MealAssignment{RecipeID: 1}
	plan.Meals[Wednesday][Dinner] = &MealAssignment{RecipeID: 1}

	assert.Equal(t, []int64{1, 2}, plan.RecipeIDs())
	assert.Len(t, plan.Assignments(), 3)
}

func TestPeriodID(t *testing.T) {
	cases := map[string]time.Time{
		"2026-W42": fixedNow,
		"2026-W01": time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		"2026-W53": time.Date(2027, 1, 3, 12, 0, 0, 0, time.UTC),
		"2020-W53": time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for want, at := range cases {
		assert.Equal(t, want, PeriodID(at), "for %s", at)
	}

	year, week, err := ParsePeriodID("2026-W42")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 42, week)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), WeekStart(2026, 42))

	for _, bad := range []string{"", "2026-10", "2026-W00", "2025-W53", "2026-W4x", "26-W42"} {
		_, _, err := ParsePeriodID(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "for %q", bad)
	}
}
