package grocery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chefboard/internal/recipe"
)

// List is a persisted grocery list together with the recipes it was
// generated from.
type List struct {
	ID        int64                         `json:"id"`
	RecipeIDs []string                      `json:"recipeIds"`
	Items     []recipe.StructuredIngredient `json:"items"`
	CreatedAt time.Time                     `json:"createdAt"`
}

// Repository handles persistence of generated grocery lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new grocery list repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save stores a generated list and returns its id.
func (r *Repository) Save(ctx context.Context, recipeIDs []string, items []recipe.StructuredIngredient) (int64, error) {
	idsJSON, err := json.Marshal(recipeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recipe ids: %w", err)
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal grocery items: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO grocery_lists (recipe_ids, items, created_at) VALUES (?, ?, ?)`,
		string(idsJSON), string(itemsJSON), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert grocery list: %w", err)
	}
	return res.LastInsertId()
}

// Latest returns the most recently generated list, or (nil, nil) when
// none exists.
func (r *Repository) Latest(ctx context.Context) (*List, error) {
	var (
		list               List
		idsJSON, itemsJSON string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, recipe_ids, items, created_at FROM grocery_lists
		ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&list.ID, &idsJSON, &itemsJSON, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest grocery list: %w", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &list.RecipeIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe ids: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grocery items: %w", err)
	}
	return &list, nil
}
