// Package family implements shared recipe collections: family records,
// membership and signed invite tokens.
package family

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Family is a shared collection of household members.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is one user's membership in a family.
type Member struct {
	FamilyID string    `json:"familyId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Repository handles family persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new family repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new family with its owner as the first member.
func (r *Repository) Create(ctx context.Context, name, ownerID string) (*Family, error) {
	fam := &Family{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO families (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)`,
		fam.ID, fam.Name, fam.OwnerID, fam.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert family: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		fam.ID, ownerID, RoleOwner, fam.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert owner membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return fam, nil
}

// Get returns a family by id, or (nil, nil) when missing.
func (r *Repository) Get(ctx context.Context, id string) (*Family, error) {
	var fam Family
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at FROM families WHERE id = ?`, id).
		Scan(&fam.ID, &fam.Name, &fam.OwnerID, &fam.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &fam, nil
}

// AddMember records a user joining a family. Joining twice is a no-op.
func (r *Repository) AddMember(ctx context.Context, familyID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(family_id, user_id) DO NOTHING`,
		familyID, userID, RoleMember, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// Members lists the members of a family, owner first.
func (r *Repository) Members(ctx context.Context, familyID string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT family_id, user_id, role, joined_at FROM family_members
		WHERE family_id = ? ORDER BY joined_at ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.FamilyID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Delete removes a family and its memberships.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM family_members WHERE family_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM families WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return tx.Commit()
}
