package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-planner/internal/catalog"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/foodfacts"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/storage"
	"meal-planner/internal/store"
	"meal-planner/internal/throttle"
)

// ErrMetricsUnavailable is returned by metrics operations when the store has
// no SQL database behind it.
var ErrMetricsUnavailable = errors.New("metrics require a sql store driver")

// NotFoundTitle is shown for plan slots whose recipe is not saved.
const NotFoundTitle = "Recipe not found"

// App holds the application's dependencies.
type App struct {
	cfg       *config.Config
	db        *database.DB
	catalog   *catalog.Client
	recipes   *recipe.Repository
	plans     *planner.Manager
	lists     *shopping.Repository
	groceries *shopping.Aggregator
	foodFacts *foodfacts.Client
	metrics   *metrics.Store
}

// Deps are the injectable collaborators of an App. Zero fields get
// production defaults, except KV which is required.
type Deps struct {
	KV       store.KV
	Fetcher  throttle.Doer
	Metrics  *metrics.Store
	FoodHTTP *http.Client
	Now      func() time.Time
}

// New opens the store selected by cfg and wires the application.
func New(cfg *config.Config) (*App, error) {
	deps := Deps{}

	var db *database.DB
	switch cfg.StoreDriver {
	case config.StoreSQLite, config.StorePostgres:
		dsn := cfg.DatabasePath
		if cfg.StoreDriver == config.StorePostgres {
			dsn = cfg.DatabaseURL
		}
		var err error
		db, err = database.NewDB(cfg.StoreDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.KV = database.NewKV(db)
		deps.Metrics = metrics.NewStore(db.SQL)
	case config.StoreFile:
		kv, err := storage.NewFileKV(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		deps.KV = kv
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.StoreDriver)
	}

	a := NewApp(cfg, deps)
	a.db = db
	return a, nil
}

// NewApp wires an App around already constructed dependencies.
func NewApp(cfg *config.Config, deps Deps) *App {
	if deps.Fetcher == nil {
		deps.Fetcher = throttle.NewFetcher(throttle.New(cfg.RateLimit, throttle.RealClock{}), nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	var recorder catalog.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}

	a := &App{
		cfg:       cfg,
		catalog:   catalog.NewClient(cfg, deps.Fetcher, recorder),
		recipes:   recipe.NewRepository(deps.KV),
		plans:     planner.NewManager(deps.KV, deps.Now),
		lists:     shopping.NewRepository(deps.KV),
		foodFacts: foodfacts.NewClient(cfg, deps.FoodHTTP),
		metrics:   deps.Metrics,
	}
	a.groceries = shopping.NewAggregator(a.plans, a.recipes, a.catalog, a.lists)
	return a
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RecipeCard is a catalog result annotated with its saved state.
type RecipeCard struct {
	recipe.Recipe
	Saved bool
}

// SearchRecipes searches the catalog.
func (a *App) SearchRecipes(ctx context.Context, query string, filters catalog.Filters) ([]RecipeCard, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, errors.New("search query is required")
	}
	list, err := a.catalog.Search(ctx, query, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search recipes: %w", err)
	}
	cards, err := a.cards(ctx, list)
	return cards, list.TotalResults, err
}

// RandomRecipes returns count random catalog recipes.
func (a *App) RandomRecipes(ctx context.Context, count int) ([]RecipeCard, error) {
	list, err := a.catalog.Random(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch random recipes: %w", err)
	}
	return a.cards(ctx, list)
}

func (a *App) cards(ctx context.Context, list recipe.List) ([]RecipeCard, error) {
	saved, err := a.recipes.SavedIDs(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]RecipeCard, 0, len(list.Recipes))
	for _, r := range list.Recipes {
		_, ok := saved[r.ID]
		cards = append(cards, RecipeCard{Recipe: r, Saved: ok})
	}
	return cards, nil
}

// RecipeDetails returns the full recipe, from the saved copy when it already
// has ingredients and from the catalog otherwise.
func (a *App) RecipeDetails(ctx context.Context, id int64) (*recipe.Recipe, error) {
	saved, err := a.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved != nil && saved.HasIngredients() {
		return saved, nil
	}
	rec, err := a.catalog.Details(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe %d: %w", id, err)
	}
	return rec, nil
}

// SaveRecipe stores the full details of a catalog recipe. It reports false
// when the recipe was already saved.
func (a *App) SaveRecipe(ctx context.Context, id int64) (bool, error) {
	rec, err := a.RecipeDetails(ctx, id)
	if err != nil {
		return false, err
	}
	return a.recipes.Save(ctx, *rec)
}

// RemoveRecipe deletes a saved recipe. Plan slots that reference it are kept.
func (a *App) RemoveRecipe(ctx context.Context, id int64) error {
	return a.recipes.Remove(ctx, id)
}

// SavedRecipes lists saved recipes in save order.
func (a *App) SavedRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return a.recipes.List(ctx)
}

// PlanEntry is one filled slot of a plan view.
type PlanEntry struct {
	Day      planner.Day
	Meal     planner.MealType
	RecipeID int64
	Title    string
	Servings int
	Missing  bool
}

// PlanView is a plan with recipe titles resolved.
type PlanView struct {
	PeriodID string
	Entries  []PlanEntry
}

// Plan returns the plan of periodID, creating it if needed. An empty
// periodID means the current week.
func (a *App) Plan(ctx context.Context, periodID string) (*PlanView, error) {
	periodID = a.period(periodID)
	plan, err := a.plans.GetOrCreatePlan(ctx, periodID)
	if err != nil {
		return nil, err
	}

	saved, err := a.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(saved))
	for _, r := range saved {
		titles[r.ID] = r.Title
	}

	view := &PlanView{PeriodID: periodID, Entries: []PlanEntry{}}
	for _, slot := range plan.Assignments() {
		id := slot.Assignment.RecipeID
		entry := PlanEntry{
			Day:      slot.Day,
			Meal:     slot.Meal,
			RecipeID: id,
			Servings: slot.Assignment.Servings,
		}
		// Titles come from saved recipes only; a removed recipe leaves a
		// dangling slot.
		if title, ok := titles[id]; ok {
			entry.Title = title
		} else {
			entry.Title = NotFoundTitle
			entry.Missing = true
		}
		view.Entries = append(view.Entries, entry)
	}
	return view, nil
}

// AssignMeal puts a recipe in a plan slot.
func (a *App) AssignMeal(ctx context.Context, periodID string, day planner.Day, meal planner.MealType, recipeID int64, servings int) error {
	return a.plans.Assign(ctx, a.period(periodID), day, meal, recipeID, servings)
}

// UnassignMeal empties a plan slot.
func (a *App) UnassignMeal(ctx context.Context, periodID string, day planner.Day, meal planner.MealType) error {
	return a.plans.Unassign(ctx, a.period(periodID), day, meal)
}

// ClearPlan empties every slot of a period.
func (a *App) ClearPlan(ctx context.Context, periodID string) error {
	return a.plans.ClearPeriod(ctx, a.period(periodID))
}

// PlanPeriods lists the periods that have a stored plan.
func (a *App) PlanPeriods(ctx context.Context) ([]string, error) {
	return a.plans.Periods(ctx)
}

// GenerateGroceryList rebuilds the grocery list of a period from its plan.
func (a *App) GenerateGroceryList(ctx context.Context, periodID string) (*shopping.GroceryList, error) {
	return a.groceries.Generate(ctx, a.period(periodID))
}

// GroceryLists returns every grocery list.
func (a *App) GroceryLists(ctx context.Context) ([]shopping.GroceryList, error) {
	return a.lists.Lists(ctx)
}

// GroceryList returns one list by id.
func (a *App) GroceryList(ctx context.Context, listID string) (*shopping.GroceryList, error) {
	return a.lists.GetList(ctx, listID)
}

// CreateGroceryList creates an empty list not tied to any plan.
func (a *App) CreateGroceryList(ctx context.Context, name string) (*shopping.GroceryList, error) {
	return a.lists.CreateList(ctx, name, "")
}

// DeleteGroceryList removes a list.
func (a *App) DeleteGroceryList(ctx context.Context, listID string) error {
	return a.lists.DeleteList(ctx, listID)
}

// AddGroceryItem appends a manual item to a list.
func (a *App) AddGroceryItem(ctx context.Context, listID string, item shopping.ManualItem) (*shopping.GroceryItem, error) {
	return a.lists.AddManualItem(ctx, listID, item)
}

// ToggleGroceryItem flips an item's checked flag.
func (a *App) ToggleGroceryItem(ctx context.Context, listID, itemID string) (bool, error) {
	return a.lists.ToggleChecked(ctx, listID, itemID)
}

// RemoveGroceryItem deletes an item from a list.
func (a *App) RemoveGroceryItem(ctx context.Context, listID, itemID string) error {
	return a.lists.RemoveItem(ctx, listID, itemID)
}

// ClearGroceryList removes every item of a list.
func (a *App) ClearGroceryList(ctx context.Context, listID string) error {
	return a.lists.ClearList(ctx, listID)
}

// UncheckAllGroceryItems resets every item of a list to unchecked.
func (a *App) UncheckAllGroceryItems(ctx context.Context, listID string) error {
	return a.lists.UncheckAll(ctx, listID)
}

// LookupFood searches Open Food Facts for a product.
func (a *App) LookupFood(ctx context.Context, name string) (*foodfacts.Product, error) {
	return a.foodFacts.Lookup(ctx, name)
}

// APIUsage returns per-day catalog call counts for the last days.
func (a *App) APIUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.metrics == nil {
		return nil, ErrMetricsUnavailable
	}
	return a.metrics.GetDailyUsage(ctx, days)
}

// CleanupMetrics removes call records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if a.metrics == nil {
		return 0, ErrMetricsUnavailable
	}
	return a.metrics.Cleanup(ctx, days)
}

func (a *App) period(periodID string) string {
	if periodID == "" {
		return a.plans.CurrentPeriodID()
	}
	return periodID
}
