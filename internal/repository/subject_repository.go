package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// SubjectRepository stores the subject catalog.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject and fills in its id.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name) VALUES ($1) RETURNING id`
	return r.db.GetContext(ctx, &subject.ID, query, subject.Name)
}

// List returns all subjects ordered by id.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, `SELECT id, name FROM subjects ORDER BY id`); err != nil {
		return nil, err
	}
	return subjects, nil
}

// Count returns the school-wide subject count. The combined average always
// divides by this number, regardless of how many subjects a pupil sat.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects`); err != nil {
		return 0, err
	}
	return count, nil
}

// CountByIDs returns how many of the given ids exist, for referential
// checks on mark submissions.
func (r *SubjectRepository) CountByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM subjects WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	query = r.db.Rebind(query)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}
