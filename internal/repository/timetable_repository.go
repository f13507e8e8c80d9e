package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// TimetableRepository stores generated timetable slots and answers teacher
// availability queries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// HasOverlap reports whether the teacher already holds a slot on the given
// day whose half-open [start, end) window intersects the candidate window.
// Slots belonging to the (class, stream) being regenerated are excluded;
// they are about to be replaced.
//
// Intervals are compared as "HH:MM" strings, which order the same as the
// minutes they encode. Touching boundaries (existing end == candidate
// start) do not conflict.
func (r *TimetableRepository) HasOverlap(ctx context.Context, teacherID int64, day, start, end string, excludeClassID, excludeStreamID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM timetable_slots
            WHERE teacher_id = $1
              AND day_of_week = $2
              AND start_time < $3
              AND end_time > $4
              AND NOT (class_id = $5 AND stream_id = $6)
        )`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, teacherID, day, end, start, excludeClassID, excludeStreamID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteByClassStream clears a pair's slots ahead of a replacement insert.
func (r *TimetableRepository) DeleteByClassStream(ctx context.Context, exec sqlx.ExtContext, classID, streamID int64) error {
	if exec == nil {
		exec = r.db
	}
	const query = `DELETE FROM timetable_slots WHERE class_id = $1 AND stream_id = $2`
	_, err := exec.ExecContext(ctx, query, classID, streamID)
	return err
}

// InsertBatch writes a generated set of slots.
func (r *TimetableRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if exec == nil {
		exec = r.db
	}
	const query = `
        INSERT INTO timetable_slots
            (teacher_id, class_id, stream_id, subject_id, day_of_week, start_time, end_time)
        VALUES
            (:teacher_id, :class_id, :stream_id, :subject_id, :day_of_week, :start_time, :end_time)`
	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, exec, query, &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListByClassStream returns a pair's slots in display order.
func (r *TimetableRepository) ListByClassStream(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, error) {
	const query = `
        SELECT * FROM timetable_slots
        WHERE class_id = $1 AND stream_id = $2
        ORDER BY CASE day_of_week
            WHEN 'Monday' THEN 1
            WHEN 'Tuesday' THEN 2
            WHEN 'Wednesday' THEN 3
            WHEN 'Thursday' THEN 4
            WHEN 'Friday' THEN 5
            WHEN 'Saturday' THEN 6
        END, start_time`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID, streamID); err != nil {
		return nil, err
	}
	return slots, nil
}

// ListByTeacher returns all slots a teacher holds, for workload views.
func (r *TimetableRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TimetableSlot, error) {
	const query = `
        SELECT * FROM timetable_slots
        WHERE teacher_id = $1
        ORDER BY CASE day_of_week
            WHEN 'Monday' THEN 1
            WHEN 'Tuesday' THEN 2
            WHEN 'Wednesday' THEN 3
            WHEN 'Thursday' THEN 4
            WHEN 'Friday' THEN 5
            WHEN 'Saturday' THEN 6
        END, start_time`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID); err != nil {
		return nil, err
	}
	return slots, nil
}
