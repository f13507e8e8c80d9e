package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// ReportRepository stores the derived per-(pupil, exam) summaries.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert writes the per-exam fields of a report. Combined fields and
// positions are owned by UpdateDerived and left untouched here so a mark
// edit does not wipe an earlier term snapshot.
func (r *ReportRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, report *models.Report) error {
	if exec == nil {
		exec = r.db
	}
	const query = `
        INSERT INTO reports (pupil_id, exam_id, total_score, average_score, grade, remarks)
        VALUES (:pupil_id, :exam_id, :total_score, :average_score, :grade, :remarks)
        ON CONFLICT (pupil_id, exam_id)
        DO UPDATE SET
            total_score = EXCLUDED.total_score,
            average_score = EXCLUDED.average_score,
            grade = EXCLUDED.grade,
            remarks = EXCLUDED.remarks,
            updated_at = NOW()`
	_, err := sqlx.NamedExecContext(ctx, exec, query, report)
	return err
}

// Delete removes the report for a (pupil, exam); used when the last mark
// for the pair is deleted.
func (r *ReportRepository) Delete(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) error {
	if exec == nil {
		exec = r.db
	}
	const query = `DELETE FROM reports WHERE pupil_id = $1 AND exam_id = $2`
	_, err := exec.ExecContext(ctx, query, pupilID, examID)
	return err
}

// FindByPupilExam returns the report for a (pupil, exam) pair.
func (r *ReportRepository) FindByPupilExam(ctx context.Context, pupilID, examID int64) (*models.Report, error) {
	const query = `SELECT * FROM reports WHERE pupil_id = $1 AND exam_id = $2`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, pupilID, examID); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByPupil returns all of a pupil's reports ordered by exam.
func (r *ReportRepository) ListByPupil(ctx context.Context, pupilID int64) ([]models.Report, error) {
	const query = `SELECT * FROM reports WHERE pupil_id = $1 ORDER BY exam_id`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, pupilID); err != nil {
		return nil, err
	}
	return reports, nil
}

// ListByPupilsAndExams returns reports for any of the given pupils in any
// of the given exams, ordered by pupil id so rank assignment over equal
// scores is deterministic.
func (r *ReportRepository) ListByPupilsAndExams(ctx context.Context, pupilIDs, examIDs []int64) ([]models.Report, error) {
	if len(pupilIDs) == 0 || len(examIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
        SELECT * FROM reports
        WHERE pupil_id IN (?) AND exam_id IN (?)
        ORDER BY pupil_id, exam_id`, pupilIDs, examIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateDerived writes the term-aggregation outputs onto an existing
// report row: combined snapshot fields plus per-exam and combined
// positions.
func (r *ReportRepository) UpdateDerived(ctx context.Context, exec sqlx.ExtContext, report *models.Report) error {
	if exec == nil {
		exec = r.db
	}
	const query = `
        UPDATE reports SET
            class_position = :class_position,
            stream_position = :stream_position,
            combined_total = :combined_total,
            combined_average = :combined_average,
            combined_grade = :combined_grade,
            general_remark = :general_remark,
            combined_position = :combined_position,
            stream_combined_position = :stream_combined_position,
            updated_at = NOW()
        WHERE id = :id`
	_, err := sqlx.NamedExecContext(ctx, exec, query, report)
	return err
}
