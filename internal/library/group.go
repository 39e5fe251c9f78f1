package library

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"chefboard/internal/recipe"
)

// Grouping shares the sort vocabulary plus the calendar strategy.
type Grouping string

const (
	GroupProtein  Grouping = Grouping(SortProtein)
	GroupAlpha    Grouping = Grouping(SortAlpha)
	GroupRecent   Grouping = Grouping(SortRecent)
	GroupTime     Grouping = Grouping(SortTime)
	GroupRating   Grouping = Grouping(SortRating)
	GroupMealType Grouping = Grouping(SortMealType)
	GroupDishType Grouping = Grouping(SortDishType)
	GroupCostLow  Grouping = Grouping(SortCostLow)
	GroupCostHigh Grouping = Grouping(SortCostHigh)
	GroupWeekDay  Grouping = "week-day"
)

// UnassignedKey labels week-day recipes without a calendar date. It is
// always the first bucket in week-day mode.
const UnassignedKey = "Unassigned"

// Group is one named bucket of the partition, recipes in pipeline order.
type Group struct {
	Key     string
	Recipes []recipe.Recipe
}

// WeekWindow is the 7-day calendar window used by week-day grouping.
type WeekWindow struct {
	Start time.Time
}

// WeekOf returns the window of the week containing t, starting Monday.
func WeekOf(t time.Time) WeekWindow {
	days := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -days)
	return WeekWindow{Start: start}
}

// Days returns the 7 ISO dates the window spans.
func (w WeekWindow) Days() []string {
	days := make([]string, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return days
}

// Canonical bucket orders. Keys not listed fall back to alphabetical
// order after the listed ones.
var (
	proteinOrder = []string{"Chicken", "Beef", "Pork", "Fish", "Seafood", "Vegetarian", "Vegan", "Other"}
	mealOrder    = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Dessert", "Other"}
	dishOrder    = []string{"Appetizer", "Main Course", "Side Dish", "Soup", "Salad", "Sandwich", "Pasta", "Baked Goods", "Dessert", "Other"}
	timeOrder    = []string{"Under 30 min", "30-60 min", "1-2 hours", "Over 2 hours"}
	costOrder    = []string{"Under $10", "$10-$20", "$20-$35", "Over $35", "No estimate"}
	ratingOrder  = []string{"5 stars", "4 stars", "3 stars", "2 stars", "1 star", "Unrated"}
)

// GroupRecipes partitions an already filtered and sorted slice into
// named buckets. Every input recipe lands in exactly one bucket and
// buckets preserve input order. Only observed keys produce buckets,
// except week-day mode which pre-seeds all 7 dates plus Unassigned
// even when empty.
func GroupRecipes(recipes []recipe.Recipe, g Grouping, week WeekWindow) []Group {
	buckets := make(map[string][]recipe.Recipe)
	var seen []string

	add := func(key string, r recipe.Recipe) {
		if _, ok := buckets[key]; !ok {
			seen = append(seen, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	if g == GroupWeekDay {
		seen = append(seen, UnassignedKey)
		buckets[UnassignedKey] = nil
		for _, day := range week.Days() {
			seen = append(seen, day)
			buckets[day] = nil
		}
	}

	for _, r := range recipes {
		add(groupKey(r, g, week), r)
	}

	orderKeys(seen, g)

	groups := make([]Group, 0, len(seen))
	for _, key := range seen {
		groups = append(groups, Group{Key: key, Recipes: buckets[key]})
	}
	return groups
}

// groupKey resolves the bucket a recipe belongs to under a strategy.
func groupKey(r recipe.Recipe, g Grouping, week WeekWindow) string {
	switch g {
	case GroupProtein:
		return orDefault(r.Protein, "Other")
	case GroupMealType:
		return orDefault(r.MealType, "Other")
	case GroupDishType:
		return orDefault(r.DishType, "Other")
	case GroupAlpha:
		return firstLetter(r.Title)
	case GroupTime:
		return timeBracket(r.TotalTime())
	case GroupCostLow, GroupCostHigh:
		return costBracket(r.EstimatedCost)
	case GroupRating:
		return ratingBucket(r.Rating)
	case GroupWeekDay:
		if r.AssignedDate != "" && slices.Contains(week.Days(), r.AssignedDate) {
			return r.AssignedDate
		}
		return UnassignedKey
	default: // recent and anything unrecognized: a single bucket
		return "All Recipes"
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func firstLetter(title string) string {
	for _, r := range title {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "#"
}

func timeBracket(minutes int) string {
	switch {
	case minutes < 30:
		return timeOrder[0]
	case minutes <= 60:
		return timeOrder[1]
	case minutes <= 120:
		return timeOrder[2]
	}
	return timeOrder[3]
}

func costBracket(cost *float64) string {
	if cost == nil {
		return costOrder[4]
	}
	switch {
	case *cost < 10:
		return costOrder[0]
	case *cost < 20:
		return costOrder[1]
	case *cost <= 35:
		return costOrder[2]
	}
	return costOrder[3]
}

func ratingBucket(rating int) string {
	if rating <= 0 || rating > 5 {
		return "Unrated"
	}
	if rating == 1 {
		return "1 star"
	}
	return fmt.Sprintf("%d stars", rating)
}

// orderKeys sorts bucket keys into their stable presentation order:
// canonical list order where one exists, alphabetical fallback for
// unlisted keys, Unassigned forced first for week-day mode.
func orderKeys(keys []string, g Grouping) {
	canonical := canonicalOrder(g)
	if g == GroupWeekDay {
		slices.SortStableFunc(keys, func(a, b string) int {
			if a == UnassignedKey {
				return -1
			}
			if b == UnassignedKey {
				return 1
			}
			return strings.Compare(a, b)
		})
		return
	}

	index := make(map[string]int, len(canonical))
	for i, key := range canonical {
		index[key] = i
	}

	coll := collate.New(language.English)
	slices.SortStableFunc(keys, func(a, b string) int {
		ai, aok := index[a]
		bi, bok := index[b]
		switch {
		case aok && bok:
			return ai - bi
		case aok:
			return -1
		case bok:
			return 1
		}
		return coll.CompareString(a, b)
	})
}

func canonicalOrder(g Grouping) []string {
	switch g {
	case GroupProtein:
		return proteinOrder
	case GroupMealType:
		return mealOrder
	case GroupDishType:
		return dishOrder
	case GroupTime:
		return timeOrder
	case GroupCostLow, GroupCostHigh:
		return costOrder
	case GroupRating:
		return ratingOrder
	}
	return nil
}
