package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// PupilRepository stores pupil records.
type PupilRepository struct {
	db *sqlx.DB
}

// NewPupilRepository creates a new pupil repository.
func NewPupilRepository(db *sqlx.DB) *PupilRepository {
	return &PupilRepository{db: db}
}

// Create inserts a pupil and fills in its id.
func (r *PupilRepository) Create(ctx context.Context, pupil *models.Pupil) error {
	const query = `
        INSERT INTO pupils (first_name, last_name, class_id, stream_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		pupil.FirstName, pupil.LastName, pupil.ClassID, pupil.StreamID,
	).Scan(&pupil.ID, &pupil.CreatedAt)
}

// FindByID returns one pupil.
func (r *PupilRepository) FindByID(ctx context.Context, id int64) (*models.Pupil, error) {
	var pupil models.Pupil
	if err := r.db.GetContext(ctx, &pupil, `SELECT * FROM pupils WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &pupil, nil
}

// ListByClass returns a class's pupils ordered by id.
func (r *PupilRepository) ListByClass(ctx context.Context, classID int64) ([]models.Pupil, error) {
	var pupils []models.Pupil
	const query = `SELECT * FROM pupils WHERE class_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &pupils, query, classID); err != nil {
		return nil, err
	}
	return pupils, nil
}

// List returns a page of pupils plus the total count.
func (r *PupilRepository) List(ctx context.Context, page, perPage int) ([]models.Pupil, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM pupils`); err != nil {
		return nil, 0, err
	}
	var pupils []models.Pupil
	const query = `SELECT * FROM pupils ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &pupils, query, perPage, (page-1)*perPage); err != nil {
		return nil, 0, err
	}
	return pupils, total, nil
}

// Update rewrites a pupil's editable fields.
func (r *PupilRepository) Update(ctx context.Context, pupil *models.Pupil) error {
	const query = `
        UPDATE pupils SET first_name = $1, last_name = $2, class_id = $3, stream_id = $4
        WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query,
		pupil.FirstName, pupil.LastName, pupil.ClassID, pupil.StreamID, pupil.ID)
	return err
}

// Delete removes a pupil; marks and reports cascade at the schema level.
func (r *PupilRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pupils WHERE id = $1`, id)
	return err
}
