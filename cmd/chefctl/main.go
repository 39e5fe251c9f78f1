package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"chefboard/internal/config"
	"chefboard/internal/library"
	"chefboard/internal/recipe"
	"chefboard/internal/store"
	"chefboard/internal/viewport"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	st, err := newStore()
	if err != nil {
		log.Fatalf("Failed to configure client: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "list":
		if err := runList(ctx, st, os.Args[2:]); err != nil {
			log.Fatalf("list failed: %v", err)
		}
	case "show":
		if len(os.Args) < 3 {
			log.Fatal("Usage: chefctl show <recipe-id>")
		}
		if err := runShow(ctx, st, os.Args[2]); err != nil {
			log.Fatalf("show failed: %v", err)
		}
	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: chefctl import <url>")
		}
		if err := runImport(ctx, st, os.Args[2]); err != nil {
			log.Fatalf("import failed: %v", err)
		}
	case "grocery":
		if err := runGrocery(ctx, st); err != nil {
			log.Fatalf("grocery failed: %v", err)
		}
	case "favorite":
		if len(os.Args) < 3 {
			log.Fatal("Usage: chefctl favorite <recipe-id>")
		}
		if err := runFavorite(ctx, st, os.Args[2]); err != nil {
			log.Fatalf("favorite failed: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newStore() (*store.Store, error) {
	serverURL := os.Getenv("CHEFBOARD_URL")
	if serverURL == "" {
		cfg, err := config.LoadClient(config.DefaultClientConfigPath())
		if err != nil {
			return nil, err
		}
		serverURL = cfg.ServerURL
	}
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	return store.New(serverURL, nil), nil
}

func runList(ctx context.Context, st *store.Store, args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ExitOnError)
	view := flags.String("view", "library", "library or week")
	search := flags.String("q", "", "search query over titles and ingredients")
	sortKey := flags.String("sort", "alpha", "sort key")
	groupKey := flags.String("group", "", "grouping strategy (defaults to the sort key)")
	proteins := flags.StringSlice("protein", nil, "filter by protein")
	mealTypes := flags.StringSlice("meal", nil, "filter by meal type")
	dietary := flags.StringSlice("dietary", nil, "filter by dietary tag")
	favorites := flags.Bool("favorites", false, "only favorites")
	width := flags.Int("width", 1024, "simulated viewport width in px")
	scroll := flags.Int("scroll", 0, "scroll offset in px")
	height := flags.Int("height", 2000, "viewport height in px")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := st.Refresh(ctx); err != nil {
		return err
	}

	q := library.Query{
		View:   library.View(*view),
		Search: *search,
		Sort:   library.Sort(*sortKey),
		Filters: library.Filters{
			Protein:       *proteins,
			MealType:      *mealTypes,
			Dietary:       *dietary,
			OnlyFavorites: *favorites,
		},
	}
	filtered := library.Apply(st.Recipes(), q)

	grouping := library.Grouping(*groupKey)
	if *groupKey == "" {
		grouping = library.Grouping(*sortKey)
	}
	groups := library.GroupRecipes(filtered, grouping, library.WeekOf(time.Now()))

	columns := viewport.ColumnsForWidth(*width)
	flat := viewport.Flatten(groups, nil, columns)
	window := flat.Window(*scroll, *height, viewport.GridRowHeight)

	for _, item := range window {
		switch item.Kind {
		case viewport.ItemHeader:
			fmt.Printf("\n== %s ==\n", item.GroupKey)
		case viewport.ItemRow:
			for _, rec := range item.Recipes {
				printRow(rec)
			}
		}
	}
	fmt.Printf("\n%d recipes, %d px total\n", len(filtered), flat.TotalHeight)
	return nil
}

func printRow(rec recipe.Recipe) {
	marker := " "
	if rec.IsFavorite {
		marker = "*"
	}
	fmt.Printf("%s %-36s  %-12s %3d min  [%s]\n", marker, rec.Title, rec.Protein, rec.TotalTime(), rec.ID)
}

func runShow(ctx context.Context, st *store.Store, id string) error {
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	rec, ok := st.Get(id)
	if !ok {
		return fmt.Errorf("recipe %s not found", id)
	}

	fmt.Printf("%s\n%s\n", rec.Title, strings.Repeat("=", len(rec.Title)))
	if rec.Protein != "" {
		fmt.Printf("Protein: %s  Meal: %s  Difficulty: %s\n", rec.Protein, rec.MealType, rec.Difficulty)
	}
	fmt.Printf("Prep %d min, cook %d min, serves %d\n\n", rec.PrepTime, rec.CookTime, rec.Servings)

	fmt.Println("Ingredients:")
	for _, ing := range rec.Ingredients {
		line := fmt.Sprintf("- %s %s", ing.Amount, ing.Name)
		if ing.Prep != "" {
			line += ", " + ing.Prep
		}
		fmt.Println(line)
	}

	fmt.Println("\nSteps:")
	for i, step := range rec.Steps {
		fmt.Printf("%d. %s\n", i+1, step)
	}
	return nil
}

func runImport(ctx context.Context, st *store.Store, url string) error {
	rec, err := st.ImportFromURL(ctx, url, func(stage string) {
		fmt.Printf("... %s\n", stage)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Imported \"%s\" (id %s)\n", rec.Title, rec.ID)
	return nil
}

func runGrocery(ctx context.Context, st *store.Store) error {
	if err := st.Refresh(ctx); err != nil {
		return err
	}

	var week []recipe.Recipe
	for _, rec := range st.Recipes() {
		if rec.ThisWeek {
			week = append(week, rec)
		}
	}
	if len(week) == 0 {
		return fmt.Errorf("no recipes planned for this week")
	}

	items, err := st.GenerateGroceryList(ctx, week)
	if err != nil {
		return err
	}

	lastCategory := ""
	for _, item := range items {
		if item.Category != lastCategory {
			fmt.Printf("\n%s\n", item.Category)
			lastCategory = item.Category
		}
		if item.Quantity > 0 && item.Unit != "" {
			fmt.Printf("- %g %s %s\n", item.Quantity, item.Unit, item.Name)
		} else {
			fmt.Printf("- %s\n", item.Name)
		}
	}
	return nil
}

func runFavorite(ctx context.Context, st *store.Store, id string) error {
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	isFavorite, err := st.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	if isFavorite {
		fmt.Println("Marked as favorite")
	} else {
		fmt.Println("Removed from favorites")
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: chefctl <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  list       List recipes with filtering, sorting and grouping")
	fmt.Println("  show       Show a single recipe")
	fmt.Println("  import     Capture a recipe from a URL")
	fmt.Println("  grocery    Generate a grocery list for this week's recipes")
	fmt.Println("  favorite   Toggle a recipe's favorite flag")
}
