package repo

import (
	"context"
	"database/sql"

	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/google/uuid"
)

// ==========================
// CommentRepo
// ==========================
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentColumns = `id, capsule_id, owner_id, body, created_at, updated_at`

// ==========================
// Create Comment
// ==========================
func (r *CommentRepo) Create(ctx context.Context, capsuleID, ownerID, body string) (*models.Comment, error) {
	query := `
		INSERT INTO comments (id, capsule_id, owner_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + commentColumns

	c := &models.Comment{}

	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), capsuleID, ownerID, body).
		Scan(&c.ID, &c.CapsuleID, &c.OwnerID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return c, nil
}

// ==========================
// Get By ID
// ==========================
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	c := &models.Comment{}

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.CapsuleID, &c.OwnerID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return c, nil
}

// ==========================
// List By Capsule
// ==========================
func (r *CommentRepo) ListByCapsule(ctx context.Context, capsuleID string, limit, offset int) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE capsule_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, capsuleID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.CapsuleID, &c.OwnerID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// ==========================
// Update Comment
// ==========================

// Update rewrites the body only; capsule_id and owner_id never change.
func (r *CommentRepo) Update(ctx context.Context, id, body string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET body = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + commentColumns

	c := &models.Comment{}

	err := r.db.QueryRowContext(ctx, query, body, id).
		Scan(&c.ID, &c.CapsuleID, &c.OwnerID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return c, nil
}

// ==========================
// Delete Comment
// ==========================
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
