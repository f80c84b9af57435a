package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"meal-planner/internal/app"
	"meal-planner/internal/catalog"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app.App, args []string) error
}

var commandOrder = []string{
	"search", "random", "details", "save", "remove", "saved",
	"plan", "assign", "unassign", "clear-plan", "generate",
	"lists", "list", "new-list", "delete-list", "add-item", "toggle", "remove-item", "clear-list", "uncheck-all",
	"lookup", "metrics", "metrics-cleanup",
}

var commands = map[string]command{
	"search":          {"Search recipes: [-diet D] [-cuisine C] [-max-time M] <query>", runSearch},
	"random":          {"Show random recipes: [-n 3]", runRandom},
	"details":         {"Show a recipe: <recipe-id>", runDetails},
	"save":            {"Save a recipe: <recipe-id>", runSave},
	"remove":          {"Remove a saved recipe: <recipe-id>", runRemove},
	"saved":           {"List saved recipes", runSaved},
	"plan":            {"Show a weekly plan: [-week YYYY-Www]", runPlan},
	"assign":          {"Assign a meal: [-week W] [-servings N] <day> <meal> <recipe-id>", runAssign},
	"unassign":        {"Empty a meal slot: [-week W] <day> <meal>", runUnassign},
	"clear-plan":      {"Empty every slot of a week: [-week W]", runClearPlan},
	"generate":        {"Build the grocery list of a week: [-week W]", runGenerate},
	"lists":           {"List grocery lists", runLists},
	"list":            {"Show a grocery list: <list-id>", runList},
	"new-list":        {"Create an empty grocery list: <name>", runNewList},
	"delete-list":     {"Delete a grocery list: <list-id>", runDeleteList},
	"add-item":        {"Add an item: [-qty Q] [-unit U] [-category C] [-notes N] <list-id> <name>", runAddItem},
	"toggle":          {"Check or uncheck an item: <list-id> <item-id>", runToggle},
	"remove-item":     {"Remove an item: <list-id> <item-id>", runRemoveItem},
	"clear-list":      {"Remove every item of a list: <list-id>", runClearList},
	"uncheck-all":     {"Uncheck every item of a list: <list-id>", runUncheckAll},
	"lookup":          {"Look up a product on Open Food Facts: <name>", runLookup},
	"metrics":         {"Show catalog API usage: [-days 7]", runMetrics},
	"metrics-cleanup": {"Remove old API usage records: [-days 30]", runMetricsCleanup},
}

func needArgs(fs *flag.FlagSet, n int) ([]string, error) {
	if fs.NArg() < n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, fs.NArg())
	}
	return fs.Args(), nil
}

func parseRecipeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id: %q", s)
	}
	return id, nil
}

func runSearch(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	diet := fs.String("diet", "", "Diet filter, e.g. vegetarian")
	cuisine := fs.String("cuisine", "", "Cuisine filter, e.g. italian")
	maxTime := fs.Int("max-time", 0, "Maximum ready time in minutes")
	fs.Parse(args)

	cards, total, err := a.SearchRecipes(ctx, strings.Join(fs.Args(), " "), catalog.Filters{
		Diet:         *diet,
		Cuisine:      *cuisine,
		MaxReadyTime: *maxTime,
	})
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Println("No recipes found.")
		return nil
	}
	fmt.Printf("Showing %d of %d results:\n", len(cards), total)
	printCards(cards)
	return nil
}

func runRandom(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("random", flag.ExitOnError)
	n := fs.Int("n", 3, "Number of recipes")
	fs.Parse(args)

	cards, err := a.RandomRecipes(ctx, *n)
	if err != nil {
		return err
	}
	printCards(cards)
	return nil
}

func printCards(cards []app.RecipeCard) {
	for _, c := range cards {
		mark := " "
		if c.Saved {
			mark = "*"
		}
		fmt.Printf("%s %-8d %s", mark, c.ID, c.Title)
		if c.ReadyInMinutes > 0 {
			fmt.Printf(" (%d min)", c.ReadyInMinutes)
		}
		fmt.Println()
	}
}

func runDetails(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("details", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	id, err := parseRecipeID(rest[0])
	if err != nil {
		return err
	}

	rec, err := a.RecipeDetails(ctx, id)
	if err != nil {
		return err
	}
	printRecipe(rec)
	return nil
}

func printRecipe(rec *recipe.Recipe) {
	fmt.Printf("%s (#%d)\n", rec.Title, rec.ID)
	fmt.Printf("Ready in %d min, serves %d\n", rec.ReadyInMinutes, rec.Servings)
	if rec.Summary != "" {
		fmt.Printf("\n%s\n", rec.Summary)
	}

	fmt.Println("\nIngredients:")
	for _, ing := range rec.ExtendedIngredients {
		if ing.Original != "" {
			fmt.Printf("- %s\n", ing.Original)
			continue
		}
		fmt.Printf("- %s %s %s\n", formatQuantity(ing.Amount), ing.Unit, ing.Name)
	}

	if steps := rec.Steps(); len(steps) > 0 {
		fmt.Println("\nInstructions:")
		for _, s := range steps {
			fmt.Printf("%d. %s\n", s.Number, s.Step)
		}
	}

	if nutrients := rec.KeyNutrients(); len(nutrients) > 0 {
		fmt.Println("\nNutrition per serving:")
		for _, n := range nutrients {
			fmt.Printf("- %s: %s %s\n", n.Name, formatQuantity(n.Amount), n.Unit)
		}
	}
}

func runSave(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	id, err := parseRecipeID(rest[0])
	if err != nil {
		return err
	}

	saved, err := a.SaveRecipe(ctx, id)
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("Saved recipe %d.\n", id)
	} else {
		fmt.Printf("Recipe %d was already saved.\n", id)
	}
	return nil
}

func runRemove(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	id, err := parseRecipeID(rest[0])
	if err != nil {
		return err
	}
	if err := a.RemoveRecipe(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Removed recipe %d.\n", id)
	return nil
}

func runSaved(ctx context.Context, a *app.App, args []string) error {
	recipes, err := a.SavedRecipes(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Println("No saved recipes.")
		return nil
	}
	for _, r := range recipes {
		fmt.Printf("%-8d %s\n", r.ID, r.Title)
	}
	return nil
}

func weekFlag(fs *flag.FlagSet) *string {
	return fs.String("week", "", "Week as YYYY-Www (default: current week)")
}

func parseSlot(day, meal string) (planner.Day, planner.MealType) {
	return planner.Day(strings.ToLower(day)), planner.MealType(strings.ToLower(meal))
}

func runPlan(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	week := weekFlag(fs)
	fs.Parse(args)

	view, err := a.Plan(ctx, *week)
	if err != nil {
		return err
	}

	fmt.Printf("=== MEAL PLAN %s ===\n", view.PeriodID)
	if len(view.Entries) == 0 {
		fmt.Println("No meals assigned.")
		return nil
	}
	for _, e := range view.Entries {
		fmt.Printf("%-10s %-10s %s", e.Day, e.Meal, e.Title)
		if !e.Missing {
			fmt.Printf(" (#%d)", e.RecipeID)
		}
		if e.Servings > 0 {
			fmt.Printf(", %d servings", e.Servings)
		}
		fmt.Println()
	}
	return nil
}

func runAssign(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	week := weekFlag(fs)
	servings := fs.Int("servings", 0, "Servings (0 keeps the recipe default)")
	fs.Parse(args)
	rest, err := needArgs(fs, 3)
	if err != nil {
		return err
	}
	id, err := parseRecipeID(rest[2])
	if err != nil {
		return err
	}

	day, meal := parseSlot(rest[0], rest[1])
	if err := a.AssignMeal(ctx, *week, day, meal, id, *servings); err != nil {
		return err
	}
	fmt.Printf("Assigned recipe %d to %s %s.\n", id, day, meal)
	return nil
}

func runUnassign(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("unassign", flag.ExitOnError)
	week := weekFlag(fs)
	fs.Parse(args)
	rest, err := needArgs(fs, 2)
	if err != nil {
		return err
	}

	day, meal := parseSlot(rest[0], rest[1])
	return a.UnassignMeal(ctx, *week, day, meal)
}

func runClearPlan(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("clear-plan", flag.ExitOnError)
	week := weekFlag(fs)
	fs.Parse(args)
	return a.ClearPlan(ctx, *week)
}

func runGenerate(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	week := weekFlag(fs)
	fs.Parse(args)

	list, err := a.GenerateGroceryList(ctx, *week)
	if errors.Is(err, shopping.ErrEmptyPlan) {
		fmt.Println("Nothing to shop for: the plan has no meals.")
		return nil
	}
	if err != nil {
		return err
	}
	printList(list)
	return nil
}

func runLists(ctx context.Context, a *app.App, args []string) error {
	lists, err := a.GroceryLists(ctx)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		fmt.Println("No grocery lists.")
		return nil
	}
	for _, l := range lists {
		fmt.Printf("%s  %-24s %d/%d remaining\n", l.ID, l.Name, l.Remaining(), len(l.Items))
	}
	return nil
}

func runList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}

	list, err := a.GroceryList(ctx, rest[0])
	if err != nil {
		return err
	}
	printList(list)
	return nil
}

func printList(list *shopping.GroceryList) {
	fmt.Printf("=== %s (%s) ===\n", list.Name, list.ID)
	if len(list.Items) == 0 {
		fmt.Println("No items.")
		return
	}

	// Items grouped by category, categories in first-seen order.
	var categories []string
	byCategory := map[string][]shopping.GroceryItem{}
	for _, item := range list.Items {
		c := item.Category
		if c == "" {
			c = "Other"
		}
		if _, ok := byCategory[c]; !ok {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], item)
	}

	for _, c := range categories {
		fmt.Printf("\n%s\n", c)
		for _, item := range byCategory[c] {
			box := "[ ]"
			if item.Checked {
				box = "[x]"
			}
			line := item.Name
			if item.Quantity != nil {
				line = strings.TrimSpace(fmt.Sprintf("%s %s", formatQuantity(*item.Quantity), item.Unit)) + " " + item.Name
			}
			if item.Notes != "" {
				line += " (" + item.Notes + ")"
			}
			fmt.Printf("%s %s  %s\n", box, line, item.ID)
		}
	}
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}

func runNewList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("new-list", flag.ExitOnError)
	fs.Parse(args)

	list, err := a.CreateGroceryList(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	fmt.Printf("Created list %s (%s).\n", list.Name, list.ID)
	return nil
}

func runDeleteList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("delete-list", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	return a.DeleteGroceryList(ctx, rest[0])
}

func runAddItem(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-item", flag.ExitOnError)
	qty := fs.Float64("qty", 0, "Quantity (0 leaves it unspecified)")
	unit := fs.String("unit", "", "Unit")
	category := fs.String("category", "", "Category")
	notes := fs.String("notes", "", "Notes")
	fs.Parse(args)
	rest, err := needArgs(fs, 2)
	if err != nil {
		return err
	}

	in := shopping.ManualItem{
		Name:     strings.Join(rest[1:], " "),
		Unit:     *unit,
		Category: *category,
		Notes:    *notes,
	}
	if *qty > 0 {
		in.Quantity = qty
	}
	item, err := a.AddGroceryItem(ctx, rest[0], in)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s).\n", item.Name, item.ID)
	return nil
}

func runToggle(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 2)
	if err != nil {
		return err
	}

	checked, err := a.ToggleGroceryItem(ctx, rest[0], rest[1])
	if err != nil {
		return err
	}
	if checked {
		fmt.Println("Checked.")
	} else {
		fmt.Println("Unchecked.")
	}
	return nil
}

func runRemoveItem(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("remove-item", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 2)
	if err != nil {
		return err
	}
	return a.RemoveGroceryItem(ctx, rest[0], rest[1])
}

func runClearList(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("clear-list", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	return a.ClearGroceryList(ctx, rest[0])
}

func runUncheckAll(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("uncheck-all", flag.ExitOnError)
	fs.Parse(args)
	rest, err := needArgs(fs, 1)
	if err != nil {
		return err
	}
	return a.UncheckAllGroceryItems(ctx, rest[0])
}

func runLookup(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	fs.Parse(args)

	p, err := a.LookupFood(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	fmt.Printf("%s", p.Name)
	if p.Brands != "" {
		fmt.Printf(" by %s", p.Brands)
	}
	fmt.Println()
	if p.KcalPer100g != nil {
		fmt.Printf("Energy: %s kcal/100g\n", formatQuantity(*p.KcalPer100g))
	}
	if p.NutritionGrade != "" {
		fmt.Printf("Nutri-Score: %s\n", strings.ToUpper(p.NutritionGrade))
	}
	return nil
}

func runMetrics(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	days := fs.Int("days", 7, "Show the last N days")
	fs.Parse(args)

	usage, err := a.APIUsage(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Println("Date        Calls  Failures  Avg latency")
	for _, u := range usage {
		fmt.Printf("%s  %5d  %8d  %8d ms\n", u.Date, u.Calls, u.Failures, u.AvgLatencyMS)
	}
	return nil
}

func runMetricsCleanup(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	fs.Parse(args)

	affected, err := a.CleanupMetrics(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}
