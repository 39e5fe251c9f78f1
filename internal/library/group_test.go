package library

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"chefboard/internal/recipe"
)

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestGroupRecipes_Partition(t *testing.T) {
	recipes := []recipe.Recipe{
		{ID: "r1", Title: "Beef Stew", Protein: "Beef"},
		{ID: "r2", Title: "Roast Chicken", Protein: "Chicken"},
		{ID: "r3", Title: "Lentil Dal", Protein: "Vegetarian"},
		{ID: "r4", Title: "Steak Tacos", Protein: "Beef"},
		{ID: "r5", Title: "Mystery Pie"},
	}

	groups := GroupRecipes(recipes, GroupProtein, WeekWindow{})

	t.Run("EveryRecipeLandsInExactlyOneBucket", func(t *testing.T) {
		seen := map[string]int{}
		total := 0
		for _, g := range groups {
			for _, r := range g.Recipes {
				seen[r.ID]++
				total++
			}
		}
		if total != len(recipes) {
			t.Errorf("Expected %d recipes across buckets, got %d", len(recipes), total)
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("Recipe %s appears %d times", id, n)
			}
		}
	})

	t.Run("CanonicalProteinOrder", func(t *testing.T) {
		want := []string{"Chicken", "Beef", "Vegetarian", "Other"}
		if diff := cmp.Diff(want, keys(groups)); diff != "" {
			t.Errorf("Unexpected bucket order (-want +got):\n%s", diff)
		}
	})

	t.Run("BucketsPreserveInputOrder", func(t *testing.T) {
		var beef []string
		for _, g := range groups {
			if g.Key == "Beef" {
				beef = titles(g.Recipes)
			}
		}
		want := []string{"Beef Stew", "Steak Tacos"}
		if diff := cmp.Diff(want, beef); diff != "" {
			t.Errorf("Unexpected beef bucket (-want +got):\n%s", diff)
		}
	})
}

func TestGroupRecipes_Alpha(t *testing.T) {
	recipes := []recipe.Recipe{
		{Title: "apple crumble"},
		{Title: "Ziti Bake"},
		{Title: "Avocado Toast"},
		{Title: "12-hour Brisket"},
	}
	groups := GroupRecipes(recipes, GroupAlpha, WeekWindow{})
	want := []string{"#", "A", "Z"}
	if diff := cmp.Diff(want, keys(groups)); diff != "" {
		t.Errorf("Unexpected letter buckets (-want +got):\n%s", diff)
	}
}

func TestGroupRecipes_Recent(t *testing.T) {
	recipes := []recipe.Recipe{{Title: "A"}, {Title: "B"}}
	groups := GroupRecipes(recipes, GroupRecent, WeekWindow{})
	if len(groups) != 1 || groups[0].Key != "All Recipes" {
		t.Fatalf("Expected a single 'All Recipes' bucket, got %v", keys(groups))
	}
	if len(groups[0].Recipes) != 2 {
		t.Errorf("Expected 2 recipes in the bucket, got %d", len(groups[0].Recipes))
	}
}

func TestGroupRecipes_TimeBrackets(t *testing.T) {
	recipes := []recipe.Recipe{
		{Title: "Marathon", PrepTime: 60, CookTime: 120},
		{Title: "Snack", PrepTime: 5, CookTime: 10},
		{Title: "Hour", PrepTime: 20, CookTime: 40},
		{Title: "Braise", PrepTime: 30, CookTime: 60},
	}
	groups := GroupRecipes(recipes, GroupTime, WeekWindow{})
	want := []string{"Under 30 min", "30-60 min", "1-2 hours", "Over 2 hours"}
	if diff := cmp.Diff(want, keys(groups)); diff != "" {
		t.Errorf("Unexpected time buckets (-want +got):\n%s", diff)
	}
}

func TestGroupRecipes_CostBrackets(t *testing.T) {
	recipes := []recipe.Recipe{
		{Title: "Free"},
		{Title: "Budget", EstimatedCost: cost(7.5)},
		{Title: "Splurge", EstimatedCost: cost(60)},
	}
	groups := GroupRecipes(recipes, GroupCostLow, WeekWindow{})
	want := []string{"Under $10", "Over $35", "No estimate"}
	if diff := cmp.Diff(want, keys(groups)); diff != "" {
		t.Errorf("Unexpected cost buckets (-want +got):\n%s", diff)
	}
}

func TestGroupRecipes_WeekDay(t *testing.T) {
	// A Wednesday; its week runs Monday 2025-06-09 through Sunday 2025-06-15.
	week := WeekOf(time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC))

	t.Run("WeekStartsMonday", func(t *testing.T) {
		if got := week.Start.Format("2006-01-02"); got != "2025-06-09" {
			t.Errorf("Expected week start 2025-06-09, got %s", got)
		}
	})

	t.Run("EmptyInputStillYieldsAllEightBuckets", func(t *testing.T) {
		groups := GroupRecipes(nil, GroupWeekDay, week)
		if len(groups) != 8 {
			t.Fatalf("Expected 8 buckets, got %d", len(groups))
		}
		if groups[0].Key != UnassignedKey {
			t.Errorf("Expected %q first, got %q", UnassignedKey, groups[0].Key)
		}
		if groups[1].Key != "2025-06-09" || groups[7].Key != "2025-06-15" {
			t.Errorf("Unexpected day buckets: %v", keys(groups))
		}
	})

	t.Run("OutOfWindowDatesLandInUnassigned", func(t *testing.T) {
		recipes := []recipe.Recipe{
			{ID: "r1", Title: "Tuesday Tacos", AssignedDate: "2025-06-10"},
			{ID: "r2", Title: "Last Month", AssignedDate: "2025-05-01"},
			{ID: "r3", Title: "Floating"},
		}
		groups := GroupRecipes(recipes, GroupWeekDay, week)
		if got := titles(groups[0].Recipes); len(got) != 2 {
			t.Errorf("Expected 2 unassigned recipes, got %v", got)
		}
		for _, g := range groups {
			if g.Key == "2025-06-10" && (len(g.Recipes) != 1 || g.Recipes[0].ID != "r1") {
				t.Errorf("Expected only r1 on 2025-06-10, got %v", titles(g.Recipes))
			}
		}
	})
}

func TestGroupRecipes_Rating(t *testing.T) {
	recipes := []recipe.Recipe{
		{Title: "Meh", Rating: 2},
		{Title: "Perfect", Rating: 5},
		{Title: "New"},
	}
	groups := GroupRecipes(recipes, GroupRating, WeekWindow{})
	want := []string{"5 stars", "2 stars", "Unrated"}
	if diff := cmp.Diff(want, keys(groups)); diff != "" {
		t.Errorf("Unexpected rating buckets (-want +got):\n%s", diff)
	}
}
