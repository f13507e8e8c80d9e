package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// MarkRepository stores per-(pupil, subject, exam) scores.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new mark repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// ExistsForPupilExam reports whether any mark exists for the pair. Callers
// run it inside the same transaction as the subsequent writes so the
// duplicate check and the insert see one snapshot.
func (r *MarkRepository) ExistsForPupilExam(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) (bool, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `SELECT EXISTS (SELECT 1 FROM marks WHERE pupil_id = $1 AND exam_id = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, query, pupilID, examID); err != nil {
		return false, err
	}
	return exists, nil
}

// Upsert inserts a mark or overwrites the score for an existing
// (pupil, subject, exam) row.
func (r *MarkRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, mark *models.Mark) error {
	if exec == nil {
		exec = r.db
	}
	const query = `
        INSERT INTO marks (pupil_id, subject_id, exam_id, score)
        VALUES (:pupil_id, :subject_id, :exam_id, :score)
        ON CONFLICT (pupil_id, subject_id, exam_id)
        DO UPDATE SET score = EXCLUDED.score`
	_, err := sqlx.NamedExecContext(ctx, exec, query, mark)
	return err
}

// Delete removes one mark row.
func (r *MarkRepository) Delete(ctx context.Context, exec sqlx.ExtContext, pupilID, subjectID, examID int64) error {
	if exec == nil {
		exec = r.db
	}
	const query = `DELETE FROM marks WHERE pupil_id = $1 AND subject_id = $2 AND exam_id = $3`
	_, err := exec.ExecContext(ctx, query, pupilID, subjectID, examID)
	return err
}

// ListByPupilExam returns a pupil's marks for one exam ordered by subject.
func (r *MarkRepository) ListByPupilExam(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) ([]models.Mark, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `
        SELECT id, pupil_id, subject_id, exam_id, score
        FROM marks
        WHERE pupil_id = $1 AND exam_id = $2
        ORDER BY subject_id`
	var marks []models.Mark
	if err := sqlx.SelectContext(ctx, exec, &marks, query, pupilID, examID); err != nil {
		return nil, err
	}
	return marks, nil
}

// ListByPupil returns every mark a pupil holds, newest exam first.
func (r *MarkRepository) ListByPupil(ctx context.Context, pupilID int64) ([]models.Mark, error) {
	const query = `
        SELECT id, pupil_id, subject_id, exam_id, score
        FROM marks
        WHERE pupil_id = $1
        ORDER BY exam_id DESC, subject_id`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, pupilID); err != nil {
		return nil, err
	}
	return marks, nil
}
