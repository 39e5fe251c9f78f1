package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the subjective effort level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// CreationMethod records how a recipe entered the collection.
type CreationMethod string

const (
	CreationAIParse CreationMethod = "ai-parse"
	CreationAIInfer CreationMethod = "ai-infer"
	CreationManual  CreationMethod = "manual"
)

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Amount string `json:"amount"`
	Name   string `json:"name"`
	Prep   string `json:"prep,omitempty"`
}

// StructuredIngredient is a shoppable-unit breakdown of an ingredient,
// suitable for grocery list aggregation.
type StructuredIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category,omitempty"`
}

// VersionEntry is one append-only history record for a recipe.
type VersionEntry struct {
	Date       string `json:"date"`
	ChangeType string `json:"changeType"`
}

// Recipe is the central entity of the collection. An empty ID denotes
// an unsaved recipe; clients mint a temporary identity with NewTempID
// and the server replaces it on first save.
type Recipe struct {
	ID string `json:"id,omitempty"`

	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []string     `json:"steps,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Protein     string       `json:"protein,omitempty"`
	MealType    string       `json:"mealType,omitempty"`
	DishType    string       `json:"dishType,omitempty"`
	Cuisine     string       `json:"cuisine,omitempty"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Dietary     []string     `json:"dietary,omitempty"`
	Equipment   []string     `json:"equipment,omitempty"`
	Occasion    []string     `json:"occasion,omitempty"`
	Servings    int          `json:"servings,omitempty"`
	PrepTime    int          `json:"prepTime,omitempty"`
	CookTime    int          `json:"cookTime,omitempty"`

	ThisWeek      bool     `json:"thisWeek,omitempty"`
	AssignedDate  string   `json:"assignedDate,omitempty"`
	EstimatedCost *float64 `json:"estimatedCost,omitempty"`

	IsFavorite     bool   `json:"isFavorite,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	UserNotes      string `json:"userNotes,omitempty"`
	WouldMakeAgain bool   `json:"wouldMakeAgain,omitempty"`
	FinishedImage  string `json:"finishedImage,omitempty"`
	LastCooked     string `json:"lastCooked,omitempty"`

	SourceURL             string                 `json:"sourceUrl,omitempty"`
	SourceImage           string                 `json:"sourceImage,omitempty"`
	CreationMethod        CreationMethod         `json:"creationMethod,omitempty"`
	StructuredIngredients []StructuredIngredient `json:"structuredIngredients,omitempty"`
	VersionHistory        []VersionEntry         `json:"versionHistory,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

const tempIDPrefix = "tmp-"

// NewTempID mints a client-side identity for a recipe that has not been
// saved yet.
func NewTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was minted by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// TotalTime returns prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Touch updates the modification timestamp, setting the creation
// timestamp too if this is the first save.
func (r *Recipe) Touch(now time.Time) {
	ts := now.UTC().Format(time.RFC3339)
	if r.CreatedAt == "" {
		r.CreatedAt = ts
	}
	r.UpdatedAt = ts
}

// AppendVersion records a change in the recipe's append-only history.
func (r *Recipe) AppendVersion(changeType string, now time.Time) {
	r.VersionHistory = append(r.VersionHistory, VersionEntry{
		Date:       now.UTC().Format(time.RFC3339),
		ChangeType: changeType,
	})
}

// ApplyPatch overlays a partial JSON object onto a recipe and returns
// the merged result. The id, creation timestamp and version history
// are never patchable.
func ApplyPatch(rec Recipe, patch map[string]json.RawMessage) (Recipe, error) {
	base, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal recipe: %w", err)
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return rec, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}

	for key, value := range patch {
		if key == "id" || key == "createdAt" || key == "versionHistory" {
			continue
		}
		merged[key] = value
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal patched recipe: %w", err)
	}

	var patched Recipe
	if err := json.Unmarshal(out, &patched); err != nil {
		return rec, fmt.Errorf("invalid patch value: %w", err)
	}
	patched.ID = rec.ID
	patched.CreatedAt = rec.CreatedAt
	patched.VersionHistory = rec.VersionHistory
	return patched, nil
}
