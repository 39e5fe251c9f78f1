// Package feedback stores user feedback submissions backing the
// feedback dashboard.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Feedback is one submitted piece of user feedback.
type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Category  string    `json:"category,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields a submission must carry.
func (f Feedback) Validate() error {
	if strings.TrimSpace(f.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if f.Rating < 0 || f.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return nil
}

// Repository handles feedback persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new feedback repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a submission and returns its id.
func (r *Repository) Insert(ctx context.Context, f Feedback) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (name, email, category, rating, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Email, f.Category, f.Rating, f.Message, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return res.LastInsertId()
}

// List returns all feedback, newest first.
func (r *Repository) List(ctx context.Context) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, category, rating, message, created_at
		FROM feedback ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Category, &f.Rating, &f.Message, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Count returns the number of stored submissions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}
