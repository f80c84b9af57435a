package shopping

import (
	"strings"

	"meal-planner/internal/recipe"
)

// MergedItem is one aggregated grocery line before it gets an item id.
type MergedItem struct {
	Name   string
	Unit   string
	Amount float64
	Aisle  string
}

type unitExtractor func(recipe.Ingredient) (string, bool)

type amountExtractor func(recipe.Ingredient) (float64, bool)

// Extractors are tried in order; the first one that yields a value wins.
var (
	unitExtractors   = []unitExtractor{usMeasureUnit, plainUnit}
	amountExtractors = []amountExtractor{usMeasureAmount, plainAmount}
)

func usMeasureUnit(ing recipe.Ingredient) (string, bool) {
	if ing.Measures == nil || ing.Measures.US == nil {
		return "", false
	}
	u := strings.TrimSpace(ing.Measures.US.UnitShort)
	return u, u != ""
}

func plainUnit(ing recipe.Ingredient) (string, bool) {
	u := strings.TrimSpace(ing.Unit)
	return u, u != ""
}

func usMeasureAmount(ing recipe.Ingredient) (float64, bool) {
	if ing.Measures == nil || ing.Measures.US == nil {
		return 0, false
	}
	return ing.Measures.US.Amount, ing.Measures.US.Amount > 0
}

func plainAmount(ing recipe.Ingredient) (float64, bool) {
	return ing.Amount, ing.Amount > 0
}

func resolveUnit(ing recipe.Ingredient) string {
	for _, extract := range unitExtractors {
		if u, ok := extract(ing); ok {
			return strings.ToLower(u)
		}
	}
	return ""
}

func resolveAmount(ing recipe.Ingredient) float64 {
	for _, extract := range amountExtractors {
		if a, ok := extract(ing); ok {
			return a
		}
	}
	return 1
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type mergeKey struct {
	name string
	unit string
}

// Merge combines the ingredients of recipes into grocery lines. Lines with
// the same normalized name and unit are summed; different units stay
// separate. Output keeps first-seen order.
func Merge(recipes []recipe.Recipe) []MergedItem {
	index := make(map[mergeKey]int)
	var out []MergedItem

	for _, rec := range recipes {
		for _, ing := range rec.ExtendedIngredients {
			name := normalizeName(ing.Name)
			if name == "" {
				continue
			}
			key := mergeKey{name: name, unit: resolveUnit(ing)}
			amount := resolveAmount(ing)
			aisle := strings.TrimSpace(ing.Aisle)
			if aisle == "?" {
				aisle = ""
			}

			if i, ok := index[key]; ok {
				out[i].Amount += amount
				if out[i].Aisle == "" {
					out[i].Aisle = aisle
				}
				continue
			}
			index[key] = len(out)
			out = append(out, MergedItem{Name: key.name, Unit: key.unit, Amount: amount, Aisle: aisle})
		}
	}
	return out
}
