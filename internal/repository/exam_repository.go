package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// CanonicalExamName folds the legacy name variants ("End_term", "End Term")
// into one stored form: underscores become spaces and runs of whitespace
// collapse. Case is preserved as submitted; lookups compare lowercase.
func CanonicalExamName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}

// ExamRepository catalogs exam instances keyed by (name, term, year).
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByDescriptor looks up an exam case-insensitively by canonical name.
func (r *ExamRepository) FindByDescriptor(ctx context.Context, exec sqlx.ExtContext, name string, term, year int) (*models.Exam, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `SELECT id, name, term, year FROM exams
        WHERE LOWER(name) = LOWER($1) AND term = $2 AND year = $3`
	var exam models.Exam
	if err := sqlx.GetContext(ctx, exec, &exam, query, CanonicalExamName(name), term, year); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts an exam, storing the canonical name.
func (r *ExamRepository) Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	if exec == nil {
		exec = r.db
	}
	exam.Name = CanonicalExamName(exam.Name)
	const query = `INSERT INTO exams (name, term, year) VALUES ($1, $2, $3) RETURNING id`
	return sqlx.GetContext(ctx, exec, &exam.ID, query, exam.Name, exam.Term, exam.Year)
}

// FindByID returns one exam.
func (r *ExamRepository) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, `SELECT id, name, term, year FROM exams WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByTermYear returns all exams in a (term, year) ordered by id.
func (r *ExamRepository) ListByTermYear(ctx context.Context, term, year int) ([]models.Exam, error) {
	var exams []models.Exam
	const query = `SELECT id, name, term, year FROM exams WHERE term = $1 AND year = $2 ORDER BY id`
	if err := r.db.SelectContext(ctx, &exams, query, term, year); err != nil {
		return nil, err
	}
	return exams, nil
}

// ListOptionsForPupil returns the distinct exams a pupil holds marks for,
// newest year first. Feeds the report-selection dropdowns.
func (r *ExamRepository) ListOptionsForPupil(ctx context.Context, pupilID int64) ([]models.ExamOption, error) {
	const query = `
        SELECT DISTINCT e.id AS exam_id, e.name, e.term, e.year
        FROM exams e
        JOIN marks m ON m.exam_id = e.id
        WHERE m.pupil_id = $1
        ORDER BY e.year DESC, e.term, e.id`
	var options []models.ExamOption
	if err := r.db.SelectContext(ctx, &options, query, pupilID); err != nil {
		return nil, err
	}
	return options, nil
}

// Delete removes an exam; marks and reports cascade at the schema level.
func (r *ExamRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}
