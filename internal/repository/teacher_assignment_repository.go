package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// TeacherAssignmentRepository stores class-teacher designations.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository creates a new teacher assignment repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// Upsert designates a teacher for a (class, stream), replacing any prior
// designation for the pair.
func (r *TeacherAssignmentRepository) Upsert(ctx context.Context, a *models.TeacherAssignment) error {
	const query = `
        INSERT INTO teacher_assignments (teacher_id, class_id, stream_id)
        VALUES (:teacher_id, :class_id, :stream_id)
        ON CONFLICT (class_id, stream_id)
        DO UPDATE SET teacher_id = EXCLUDED.teacher_id`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

// FindByClassStream returns the designation for a pair.
func (r *TeacherAssignmentRepository) FindByClassStream(ctx context.Context, classID, streamID int64) (*models.TeacherAssignment, error) {
	var a models.TeacherAssignment
	const query = `SELECT * FROM teacher_assignments WHERE class_id = $1 AND stream_id = $2`
	if err := r.db.GetContext(ctx, &a, query, classID, streamID); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByTeacher returns a teacher's designations ordered by class.
func (r *TeacherAssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignment, error) {
	var out []models.TeacherAssignment
	const query = `SELECT * FROM teacher_assignments WHERE teacher_id = $1 ORDER BY class_id, stream_id`
	if err := r.db.SelectContext(ctx, &out, query, teacherID); err != nil {
		return nil, err
	}
	return out, nil
}
