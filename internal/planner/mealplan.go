package planner

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSlot is returned for a day or meal type outside the fixed grid.
var ErrInvalidSlot = errors.New("invalid meal slot")

// Day is one of the seven days of a plan.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists the plan days in display order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// MealType is one of the three daily slots.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the slots of a day in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Valid reports whether d is one of Days.
func (d Day) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// Valid reports whether m is one of MealTypes.
func (m MealType) Valid() bool {
	for _, meal := range MealTypes {
		if m == meal {
			return true
		}
	}
	return false
}

// MealAssignment puts a recipe in a slot. Servings 0 keeps the recipe's own count.
type MealAssignment struct {
	RecipeID int64 `json:"recipe_id"`
	Servings int   `json:"servings,omitempty"`
}

// WeeklyPlan is the 7x3 grid of one period. An empty slot holds nil.
type WeeklyPlan struct {
	PeriodID  string                               `json:"period_id"`
	CreatedAt time.Time                            `json:"created_at"`
	Meals     map[Day]map[MealType]*MealAssignment `json:"meals"`
}

// SlotAssignment is a filled slot together with its position.
type SlotAssignment struct {
	Day        Day
	Meal       MealType
	Assignment MealAssignment
}

// NewWeeklyPlan returns a plan with all 21 slots present and empty.
func NewWeeklyPlan(periodID string, createdAt time.Time) WeeklyPlan {
	meals := make(map[Day]map[MealType]*MealAssignment, len(Days))
	for _, day := range Days {
		slots := make(map[MealType]*MealAssignment, len(MealTypes))
		for _, meal := range MealTypes {
			slots[meal] = nil
		}
		meals[day] = slots
	}
	return WeeklyPlan{PeriodID: periodID, CreatedAt: createdAt, Meals: meals}
}

func validateSlot(day Day, meal MealType) error {
	if !day.Valid() {
		return fmt.Errorf("%w: unknown day %q", ErrInvalidSlot, day)
	}
	if !meal.Valid() {
		return fmt.Errorf("%w: unknown meal type %q", ErrInvalidSlot, meal)
	}
	return nil
}

// Slot returns the assignment at (day, meal), or nil when the slot is empty.
func (p WeeklyPlan) Slot(day Day, meal MealType) (*MealAssignment, error) {
	if err := validateSlot(day, meal); err != nil {
		return nil, err
	}
	return p.Meals[day][meal], nil
}

// Assignments returns every filled slot in grid order.
func (p WeeklyPlan) Assignments() []SlotAssignment {
	var out []SlotAssignment
	for _, day := range Days {
		for _, meal := range MealTypes {
			if a := p.Meals[day][meal]; a != nil && a.RecipeID != 0 {
				out = append(out, SlotAssignment{Day: day, Meal: meal, Assignment: *a})
			}
		}
	}
	return out
}

// RecipeIDs returns the distinct recipe ids referenced by the plan, in the
// order they first appear in the grid.
func (p WeeklyPlan) RecipeIDs() []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, s := range p.Assignments() {
		if _, ok := seen[s.Assignment.RecipeID]; ok {
			continue
		}
		seen[s.Assignment.RecipeID] = struct{}{}
		ids = append(ids, s.Assignment.RecipeID)
	}
	return ids
}

// IsEmpty reports whether no slot holds a recipe.
func (p WeeklyPlan) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// normalize restores any slot missing from a decoded plan.
func (p *WeeklyPlan) normalize() {
	if p.Meals == nil {
		p.Meals = make(map[Day]map[MealType]*MealAssignment, len(Days))
	}
	for _, day := range Days {
		if p.Meals[day] == nil {
			p.Meals[day] = make(map[MealType]*MealAssignment, len(MealTypes))
		}
		for _, meal := range MealTypes {
			if _, ok := p.Meals[day][meal]; !ok {
				p.Meals[day][meal] = nil
			}
		}
	}
}
