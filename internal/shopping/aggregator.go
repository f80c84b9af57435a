package shopping

import (
	"context"
	"errors"
	"fmt"
	"log"

	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

var (
	// ErrEmptyPlan is returned when the period has no assigned meals.
	ErrEmptyPlan = errors.New("meal plan has no assigned meals")
	// ErrResolution matches any ResolutionError.
	ErrResolution = errors.New("failed to resolve recipe")
)

// ResolutionError reports a planned recipe that could be loaded neither
// from the saved collection nor from the catalog.
type ResolutionError struct {
	RecipeID int64
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve recipe %d: %v", e.RecipeID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// PlanReader reads a plan without creating it.
type PlanReader interface {
	PeekPlan(ctx context.Context, periodID string) (*planner.WeeklyPlan, bool, error)
}

// SavedRecipes looks up locally saved recipes.
type SavedRecipes interface {
	Get(ctx context.Context, id int64) (*recipe.Recipe, error)
}

// RecipeDetails fetches full recipe details from the catalog.
type RecipeDetails interface {
	Details(ctx context.Context, id int64) (*recipe.Recipe, error)
}

// Aggregator turns a period's meal plan into a grocery list.
type Aggregator struct {
	plans   PlanReader
	saved   SavedRecipes
	catalog RecipeDetails
	lists   *Repository
}

// NewAggregator creates a new grocery aggregator.
func NewAggregator(plans PlanReader, saved SavedRecipes, catalog RecipeDetails, lists *Repository) *Aggregator {
	return &Aggregator{plans: plans, saved: saved, catalog: catalog, lists: lists}
}

// Generate rebuilds the grocery list of periodID from the recipes assigned in
// that period's plan. Every recipe is resolved before anything is written, so
// a failure leaves the stored lists untouched.
func (a *Aggregator) Generate(ctx context.Context, periodID string) (*GroceryList, error) {
	plan, ok, err := a.plans.PeekPlan(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if !ok || plan.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPlan, periodID)
	}

	ids := plan.RecipeIDs()
	recipes := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := a.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}

	merged := Merge(recipes)
	list, err := a.lists.replacePeriodItems(ctx, periodID, merged)
	if err != nil {
		return nil, err
	}
	log.Printf("generated grocery list %s for %s: %d recipes, %d items", list.ID, periodID, len(recipes), len(list.Items))
	return list, nil
}

// resolve prefers a saved copy with ingredients and falls back to the catalog.
func (a *Aggregator) resolve(ctx context.Context, id int64) (*recipe.Recipe, error) {
	saved, err := a.saved.Get(ctx, id)
	if err != nil {
		return nil, &ResolutionError{RecipeID: id, Err: err}
	}
	if saved != nil && saved.HasIngredients() {
		log.Printf("recipe %d resolved from saved recipes", id)
		return saved, nil
	}

	rec, err := a.catalog.Details(ctx, id)
	if err != nil {
		return nil, &ResolutionError{RecipeID: id, Err: err}
	}
	return rec, nil
}
