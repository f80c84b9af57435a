package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"meal-planner/internal/store"
)

// Manager edits week-keyed meal plans stored in the meal plan collection.
type Manager struct {
	plans *store.Collection[map[string]WeeklyPlan]
	now   func() time.Time
}

// NewManager creates a Manager. now defaults to time.Now.
func NewManager(kv store.KV, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		plans: store.NewCollection(kv, store.MealPlansKey, func() map[string]WeeklyPlan { return map[string]WeeklyPlan{} }),
		now:   now,
	}
}

// CurrentPeriodID returns the key of the current week.
func (m *Manager) CurrentPeriodID() string {
	return PeriodID(m.now())
}

// PeekPlan returns the stored plan for periodID without creating it.
func (m *Manager) PeekPlan(ctx context.Context, periodID string) (*WeeklyPlan, bool, error) {
	if _, _, err := ParsePeriodID(periodID); err != nil {
		return nil, false, err
	}
	plans, err := m.plans.ReadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	plan, ok := plans[periodID]
	if !ok {
		return nil, false, nil
	}
	plan.normalize()
	return &plan, true, nil
}

// GetOrCreatePlan returns the plan for periodID, first persisting an empty
// 7x3 grid if the period has none.
func (m *Manager) GetOrCreatePlan(ctx context.Context, periodID string) (*WeeklyPlan, error) {
	plans, plan, err := m.load(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if _, ok := plans[periodID]; !ok {
		plans[periodID] = plan
		if err := m.plans.WriteAll(ctx, plans); err != nil {
			return nil, fmt.Errorf("failed to create plan %s: %w", periodID, err)
		}
	}
	return &plan, nil
}

// Assign puts recipeID in the (day, meal) slot, replacing whatever was there.
func (m *Manager) Assign(ctx context.Context, periodID string, day Day, meal MealType, recipeID int64, servings int) error {
	if err := validateSlot(day, meal); err != nil {
		return err
	}
	if recipeID <= 0 {
		return fmt.Errorf("%w: recipe id %d", ErrInvalidSlot, recipeID)
	}
	if servings < 0 {
		return fmt.Errorf("%w: servings %d", ErrInvalidSlot, servings)
	}
	return m.setSlot(ctx, periodID, day, meal, &MealAssignment{RecipeID: recipeID, Servings: servings})
}

// Unassign empties the (day, meal) slot.
func (m *Manager) Unassign(ctx context.Context, periodID string, day Day, meal MealType) error {
	if err := validateSlot(day, meal); err != nil {
		return err
	}
	return m.setSlot(ctx, periodID, day, meal, nil)
}

// ClearPeriod removes the whole period; the next GetOrCreatePlan starts fresh.
func (m *Manager) ClearPeriod(ctx context.Context, periodID string) error {
	if _, _, err := ParsePeriodID(periodID); err != nil {
		return err
	}
	plans, err := m.plans.ReadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := plans[periodID]; !ok {
		return nil
	}
	delete(plans, periodID)
	return m.plans.WriteAll(ctx, plans)
}

// Periods returns the keys of every stored plan, oldest first.
func (m *Manager) Periods(ctx context.Context) ([]string, error) {
	plans, err := m.plans.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(plans))
	for id := range plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Manager) setSlot(ctx context.Context, periodID string, day Day, meal MealType, a *MealAssignment) error {
	plans, plan, err := m.load(ctx, periodID)
	if err != nil {
		return err
	}
	plan.Meals[day][meal] = a
	plans[periodID] = plan
	return m.plans.WriteAll(ctx, plans)
}

// load reads every plan and returns the one for periodID, or a fresh grid.
func (m *Manager) load(ctx context.Context, periodID string) (map[string]WeeklyPlan, WeeklyPlan, error) {
	if _, _, err := ParsePeriodID(periodID); err != nil {
		return nil, WeeklyPlan{}, err
	}
	plans, err := m.plans.ReadAll(ctx)
	if err != nil {
		return nil, WeeklyPlan{}, err
	}
	plan, ok := plans[periodID]
	if !ok {
		return plans, NewWeeklyPlan(periodID, m.now().UTC()), nil
	}
	plan.normalize()
	return plans, plan, nil
}
