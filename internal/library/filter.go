// Package library implements the pure derivation pipelines over the
// recipe collection: free-text search, categorical filtering, sorting
// and grouping. Every function returns a fresh slice and never mutates
// its input, so the same input tuple always yields the same output.
package library

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"chefboard/internal/recipe"
)

// View selects which slice of the collection the pipeline operates on.
type View string

const (
	ViewLibrary View = "library"
	ViewWeek    View = "week"
)

// Sort is a sort key for the filtered collection.
type Sort string

const (
	SortProtein  Sort = "protein"
	SortAlpha    Sort = "alpha"
	SortRecent   Sort = "recent"
	SortTime     Sort = "time"
	SortRating   Sort = "rating"
	SortMealType Sort = "mealType"
	SortDishType Sort = "dishType"
	SortCostLow  Sort = "cost-low"
	SortCostHigh Sort = "cost-high"
)

// Filters holds the categorical allow-lists. An empty slice means "no
// constraint on this field".
type Filters struct {
	Protein       []string
	MealType      []string
	DishType      []string
	Difficulty    []string
	Cuisine       []string
	Dietary       []string
	Equipment     []string
	Occasion      []string
	OnlyFavorites bool
}

// Query is the full input tuple of the filter/sort pipeline.
type Query struct {
	View    View
	Search  string
	Filters Filters
	Sort    Sort
}

// Apply runs the filter/sort pipeline: view restriction, free-text
// search, categorical filters, then sort. Empty input yields empty
// output.
func Apply(recipes []recipe.Recipe, q Query) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(recipes))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, r := range recipes {
		if q.View == ViewWeek && !r.ThisWeek {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if !matchesFilters(r, q.Filters) {
			continue
		}
		out = append(out, r)
	}

	sortRecipes(out, q.Sort)
	return out
}

// matchesSearch reports whether the lowercased needle occurs in the
// title or in any ingredient name.
func matchesSearch(r recipe.Recipe, needle string) bool {
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			return true
		}
	}
	return false
}

func matchesFilters(r recipe.Recipe, f Filters) bool {
	if f.OnlyFavorites && !r.IsFavorite {
		return false
	}
	if !allows(f.Protein, r.Protein) {
		return false
	}
	if !allows(f.MealType, r.MealType) {
		return false
	}
	if !allows(f.DishType, r.DishType) {
		return false
	}
	if !allows(f.Difficulty, string(r.Difficulty)) {
		return false
	}
	if !allows(f.Cuisine, r.Cuisine) {
		return false
	}
	if !intersects(f.Dietary, r.Dietary) {
		return false
	}
	if !intersects(f.Equipment, r.Equipment) {
		return false
	}
	if !intersects(f.Occasion, r.Occasion) {
		return false
	}
	return true
}

// allows is the allow-list predicate for scalar fields.
func allows(accepted []string, value string) bool {
	if len(accepted) == 0 {
		return true
	}
	return slices.Contains(accepted, value)
}

// intersects is the allow-list predicate for tag-set fields: at least
// one of the recipe's tags must be in the accepted set.
func intersects(accepted, values []string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, v := range values {
		if slices.Contains(accepted, v) {
			return true
		}
	}
	return false
}

func sortRecipes(recipes []recipe.Recipe, key Sort) {
	coll := collate.New(language.English)
	byTitle := func(a, b recipe.Recipe) int {
		return coll.CompareString(a.Title, b.Title)
	}

	switch key {
	case SortProtein:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := coll.CompareString(a.Protein, b.Protein); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortMealType:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := coll.CompareString(a.MealType, b.MealType); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortDishType:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := coll.CompareString(a.DishType, b.DishType); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortRecent:
		// Newest first. Creation timestamps are RFC 3339 strings, so
		// plain string comparison orders them chronologically; the id
		// breaks ties for recipes created in the same instant.
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := strings.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(b.ID, a.ID)
		})
	case SortTime:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := a.TotalTime() - b.TotalTime(); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortRating:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := b.Rating - a.Rating; c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortCostLow:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := compareCost(a, b); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	case SortCostHigh:
		slices.SortStableFunc(recipes, func(a, b recipe.Recipe) int {
			if c := compareCostDesc(a, b); c != 0 {
				return c
			}
			return byTitle(a, b)
		})
	default: // SortAlpha and anything unrecognized
		slices.SortStableFunc(recipes, byTitle)
	}
}

// compareCost orders by estimated cost ascending; recipes without an
// estimate sort after everything that has one.
func compareCost(a, b recipe.Recipe) int {
	switch {
	case a.EstimatedCost == nil && b.EstimatedCost == nil:
		return 0
	case a.EstimatedCost == nil:
		return 1
	case b.EstimatedCost == nil:
		return -1
	case *a.EstimatedCost < *b.EstimatedCost:
		return -1
	case *a.EstimatedCost > *b.EstimatedCost:
		return 1
	}
	return 0
}

// compareCostDesc orders by estimated cost descending, still keeping
// recipes without an estimate last.
func compareCostDesc(a, b recipe.Recipe) int {
	switch {
	case a.EstimatedCost == nil && b.EstimatedCost == nil:
		return 0
	case a.EstimatedCost == nil:
		return 1
	case b.EstimatedCost == nil:
		return -1
	}
	return compareCost(b, a)
}
