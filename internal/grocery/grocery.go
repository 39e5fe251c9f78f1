// Package grocery builds consolidated shopping lists from recipes.
package grocery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"

	"chefboard/internal/llm"
	"chefboard/internal/recipe"
)

// categoryOrder is the store-aisle presentation order of the list.
var categoryOrder = []string{"Produce", "Meat & Seafood", "Dairy", "Bakery", "Pantry", "Frozen", "Other"}

// Generator produces grocery lists. The LLM is only consulted for
// recipes that have no cached shoppable-unit breakdown.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a Generator. textGen may be nil, in which case
// recipes without structured ingredients contribute name-only items.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate aggregates the shoppable ingredients of the given recipes
// into a single consolidated list.
func (g *Generator) Generate(ctx context.Context, recipes []recipe.Recipe) ([]recipe.StructuredIngredient, error) {
	var items []recipe.StructuredIngredient
	for _, rec := range recipes {
		if len(rec.StructuredIngredients) > 0 {
			items = append(items, rec.StructuredIngredients...)
			continue
		}
		structured, err := g.structure(ctx, rec)
		if err != nil {
			log.Printf("Warning: failed to structure ingredients for '%s': %v", rec.Title, err)
			structured = fallbackItems(rec)
		}
		items = append(items, structured...)
	}
	return Merge(items), nil
}

// Merge combines items with the same name and unit, summing their
// quantities, and orders the result by store category then name.
func Merge(items []recipe.StructuredIngredient) []recipe.StructuredIngredient {
	type key struct{ name, unit string }
	merged := make(map[key]recipe.StructuredIngredient)
	var order []key

	for _, item := range items {
		k := key{name: strings.ToLower(strings.TrimSpace(item.Name)), unit: strings.ToLower(item.Unit)}
		if existing, ok := merged[k]; ok {
			existing.Quantity += item.Quantity
			if existing.Category == "" {
				existing.Category = item.Category
			}
			merged[k] = existing
			continue
		}
		order = append(order, k)
		merged[k] = item
	}

	out := make([]recipe.StructuredIngredient, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}

	slices.SortStableFunc(out, func(a, b recipe.StructuredIngredient) int {
		if c := categoryRank(a.Category) - categoryRank(b.Category); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

func categoryRank(category string) int {
	if i := slices.Index(categoryOrder, category); i >= 0 {
		return i
	}
	return len(categoryOrder)
}

// structure asks the LLM to break raw ingredient lines into shoppable
// units.
func (g *Generator) structure(ctx context.Context, rec recipe.Recipe) ([]recipe.StructuredIngredient, error) {
	if g.textGen == nil {
		return fallbackItems(rec), nil
	}

	var lines strings.Builder
	for _, ing := range rec.Ingredients {
		fmt.Fprintf(&lines, "- %s %s\n", ing.Amount, ing.Name)
	}

	prompt := fmt.Sprintf(`
You are a grocery planning assistant. Convert the ingredient lines below
into shoppable units. Return strictly a JSON array with this structure:
[{"name": "flour", "quantity": 2, "unit": "cup", "category": "Pantry"}, ...]

category must be one of: %s.
Ensure the output is valid JSON. Do not include any other text in your
response and do not wrap it in markdown code blocks.

Ingredients for "%s":
%s`, strings.Join(categoryOrder, ", "), rec.Title, lines.String())

	raw, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai consolidation failed: %w", err)
	}

	var items []recipe.StructuredIngredient
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return items, nil
}

// fallbackItems degrades to name-only items so a list can still be
// produced without the LLM.
func fallbackItems(rec recipe.Recipe) []recipe.StructuredIngredient {
	items := make([]recipe.StructuredIngredient, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		items = append(items, recipe.StructuredIngredient{
			Name:     ing.Name,
			Quantity: 1,
			Category: "Other",
		})
	}
	return items
}
