package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Repository is a database-backed store for recipes. Recipes are kept
// as JSON blobs keyed by id so the schema does not have to chase the
// model.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts or updates a recipe.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	if rec.ID == "" {
		return fmt.Errorf("cannot save recipe without an id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now().UTC()
	if rec.UpdatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt); err == nil {
			updatedAt = parsed
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, string(data), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// Get retrieves a recipe by its id. A missing recipe returns (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// List retrieves all recipes ordered by last update, newest first.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM recipes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Printf("Warning: failed to unmarshal recipe JSON for ID %s: %v", id, err)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// Delete removes a recipe by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// BulkDelete removes all recipes with the given ids.
func (r *Repository) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM recipes WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to bulk delete recipes: %w", err)
	}
	return nil
}

// BulkUpdate applies a partial JSON patch to every recipe in ids. Ids
// that do not resolve are skipped; the updated recipes are returned.
func (r *Repository) BulkUpdate(ctx context.Context, ids []string, patch map[string]json.RawMessage) ([]Recipe, error) {
	var updated []Recipe
	now := time.Now()
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return updated, err
		}
		if rec == nil {
			continue
		}
		patched, err := ApplyPatch(*rec, patch)
		if err != nil {
			return updated, fmt.Errorf("failed to patch recipe %s: %w", id, err)
		}
		patched.Touch(now)
		patched.AppendVersion("bulk-update", now)
		if err := r.Save(ctx, patched); err != nil {
			return updated, err
		}
		updated = append(updated, patched)
	}
	return updated, nil
}

// ToggleFavorite flips the favorite flag on a recipe and returns the
// new state. A missing recipe returns an error.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, fmt.Errorf("recipe %s not found", id)
	}
	rec.IsFavorite = !rec.IsFavorite
	rec.Touch(time.Now())
	if err := r.Save(ctx, *rec); err != nil {
		return false, err
	}
	return rec.IsFavorite, nil
}

// Count returns the number of recipes in the collection.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
