package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ==========================
// CapsuleRepo
// ==========================
type CapsuleRepo struct {
	db *sql.DB
}

func NewCapsuleRepo(db *sql.DB) *CapsuleRepo {
	return &CapsuleRepo{db: db}
}

const capsuleColumns = `id, owner_id, title, message, visibility, recipients, open_at, created_at, updated_at`

func scanCapsule(row interface{ Scan(...interface{}) error }) (*models.TimeCapsule, error) {
	c := &models.TimeCapsule{}
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Message, &c.Visibility,
		pq.Array(&c.Recipients), &c.OpenAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ==========================
// Create Capsule
// ==========================

// Create inserts a capsule owned by ownerID. The owner is fixed here for the
// lifetime of the row: no repo method ever updates owner_id.
func (r *CapsuleRepo) Create(ctx context.Context, ownerID, title, message, visibility string, recipients []string, openAt *time.Time) (*models.TimeCapsule, error) {
	query := `
		INSERT INTO time_capsules (id, owner_id, title, message, visibility, recipients, open_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + capsuleColumns

	if recipients == nil {
		recipients = []string{}
	}

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), ownerID, title, message, visibility, pq.Array(recipients), openAt)
	return scanCapsule(row)
}

// ==========================
// Get By ID
// ==========================
func (r *CapsuleRepo) GetByID(ctx context.Context, id string) (*models.TimeCapsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM time_capsules WHERE id = $1`
	return scanCapsule(r.db.QueryRowContext(ctx, query, id))
}

// ==========================
// List Visible
// ==========================

// ListVisible returns capsules readable by viewerID: public ones plus, when
// viewerID is non-empty, those the viewer owns or is a recipient of.
func (r *CapsuleRepo) ListVisible(ctx context.Context, viewerID string, limit, offset int) ([]models.TimeCapsule, error) {
	query := `
		SELECT ` + capsuleColumns + `
		FROM time_capsules
		WHERE visibility = 'public'
		   OR ($1 <> '' AND (owner_id = $1 OR $1 = ANY(recipients)))
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var capsules []models.TimeCapsule
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, *c)
	}

	return capsules, rows.Err()
}

// ==========================
// Count Openable
// ==========================

// CountOpenable returns how many capsules are past their open_at date.
func (r *CapsuleRepo) CountOpenable(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_capsules WHERE open_at IS NOT NULL AND open_at <= now()`).Scan(&n)
	return n, err
}

// ==========================
// Update Capsule
// ==========================

// Update rewrites the mutable fields of a capsule. owner_id is deliberately
// absent from the SET list.
func (r *CapsuleRepo) Update(ctx context.Context, id, title, message, visibility string, recipients []string, openAt *time.Time) (*models.TimeCapsule, error) {
	query := `
		UPDATE time_capsules
		SET title = $1, message = $2, visibility = $3, recipients = $4, open_at = $5, updated_at = now()
		WHERE id = $6
		RETURNING ` + capsuleColumns

	if recipients == nil {
		recipients = []string{}
	}

	row := r.db.QueryRowContext(ctx, query,
		title, message, visibility, pq.Array(recipients), openAt, id)
	return scanCapsule(row)
}

// ==========================
// Delete Capsule
// ==========================
func (r *CapsuleRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_capsules WHERE id = $1`, id)
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
