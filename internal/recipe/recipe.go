package recipe

import "strings"

// Recipe is a catalog recipe. Summary cards carry only the first block of
// fields; detail payloads also carry ingredients, instructions and nutrition.
type Recipe struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Image          string   `json:"image,omitempty"`
	ReadyInMinutes int      `json:"readyInMinutes,omitempty"`
	Servings       int      `json:"servings,omitempty"`
	SourceURL      string   `json:"sourceUrl,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Diets          []string `json:"diets,omitempty"`
	Cuisines       []string `json:"cuisines,omitempty"`
	DishTypes      []string `json:"dishTypes,omitempty"`

	ExtendedIngredients  []Ingredient  `json:"extendedIngredients,omitempty"`
	AnalyzedInstructions []Instruction `json:"analyzedInstructions,omitempty"`
	Nutrition            *Nutrition    `json:"nutrition,omitempty"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	NameClean string    `json:"nameClean,omitempty"`
	Original  string    `json:"original,omitempty"`
	Aisle     string    `json:"aisle,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Measures  *Measures `json:"measures,omitempty"`
}

// Measures holds the same quantity expressed in two unit systems.
type Measures struct {
	US     *Measure `json:"us,omitempty"`
	Metric *Measure `json:"metric,omitempty"`
}

// Measure is an amount in a specific unit system.
type Measure struct {
	Amount    float64 `json:"amount"`
	UnitShort string  `json:"unitShort"`
	UnitLong  string  `json:"unitLong,omitempty"`
}

// Instruction is a named group of steps.
type Instruction struct {
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`
}

// Step is a single preparation step.
type Step struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// Nutrition is the per-serving nutrient breakdown.
type Nutrition struct {
	Nutrients []Nutrient `json:"nutrients"`
}

// Nutrient is one nutrient amount.
type Nutrient struct {
	Name                string  `json:"name"`
	Amount              float64 `json:"amount"`
	Unit                string  `json:"unit"`
	PercentOfDailyNeeds float64 `json:"percentOfDailyNeeds,omitempty"`
}

// List is the uniform result of every catalog listing operation.
type List struct {
	Recipes      []Recipe `json:"recipes"`
	TotalResults int      `json:"totalResults"`
}

// HasIngredients reports whether r carries full ingredient data.
func (r Recipe) HasIngredients() bool {
	return len(r.ExtendedIngredients) > 0
}

// Steps returns the steps of the first instruction group.
func (r Recipe) Steps() []Step {
	if len(r.AnalyzedInstructions) == 0 {
		return nil
	}
	return r.AnalyzedInstructions[0].Steps
}

var keyNutrients = []string{"Calories", "Fat", "Carbohydrates", "Protein"}

// KeyNutrients returns calories, fat, carbohydrates and protein, in that order,
// skipping any the payload lacks.
func (r Recipe) KeyNutrients() []Nutrient {
	if r.Nutrition == nil {
		return nil
	}
	var out []Nutrient
	for _, name := range keyNutrients {
		for _, n := range r.Nutrition.Nutrients {
			if strings.EqualFold(n.Name, name) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
