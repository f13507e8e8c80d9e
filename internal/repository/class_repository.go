package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// ClassRepository stores classes and their streams.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// CreateClass inserts a class and fills in its id.
func (r *ClassRepository) CreateClass(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (name) VALUES ($1) RETURNING id`
	return r.db.GetContext(ctx, &class.ID, query, class.Name)
}

// FindClassByID returns one class.
func (r *ClassRepository) FindClassByID(ctx context.Context, id int64) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, `SELECT id, name FROM classes WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListClasses returns all classes ordered by id.
func (r *ClassRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, `SELECT id, name FROM classes ORDER BY id`); err != nil {
		return nil, err
	}
	return classes, nil
}

// CreateStream inserts a stream under a class and fills in its id.
func (r *ClassRepository) CreateStream(ctx context.Context, stream *models.Stream) error {
	const query = `INSERT INTO streams (class_id, name) VALUES ($1, $2) RETURNING id`
	return r.db.GetContext(ctx, &stream.ID, query, stream.ClassID, stream.Name)
}

// FindStreamByID returns one stream.
func (r *ClassRepository) FindStreamByID(ctx context.Context, id int64) (*models.Stream, error) {
	var stream models.Stream
	const query = `SELECT id, class_id, name FROM streams WHERE id = $1`
	if err := r.db.GetContext(ctx, &stream, query, id); err != nil {
		return nil, err
	}
	return &stream, nil
}

// ListStreamsByClass returns a class's streams ordered by id.
func (r *ClassRepository) ListStreamsByClass(ctx context.Context, classID int64) ([]models.Stream, error) {
	var streams []models.Stream
	const query = `SELECT id, class_id, name FROM streams WHERE class_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &streams, query, classID); err != nil {
		return nil, err
	}
	return streams, nil
}

// ListAllStreams returns every stream in the school ordered by class then
// stream; the bulk timetable run walks this list.
func (r *ClassRepository) ListAllStreams(ctx context.Context) ([]models.Stream, error) {
	var streams []models.Stream
	const query = `SELECT id, class_id, name FROM streams ORDER BY class_id, id`
	if err := r.db.SelectContext(ctx, &streams, query); err != nil {
		return nil, err
	}
	return streams, nil
}
