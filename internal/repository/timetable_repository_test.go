package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssekandi/psms-api/internal/models"
)

const overlapQuery = `
        SELECT EXISTS (
            SELECT 1 FROM timetable_slots
            WHERE teacher_id = $1
              AND day_of_week = $2
              AND start_time < $3
              AND end_time > $4
              AND NOT (class_id = $5 AND stream_id = $6)
        )`

func TestTimetableRepositoryHasOverlapBindsWindowHalfOpen(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewTimetableRepository(db)

	// Candidate [08:40, 09:20): the existing slot must start before the
	// candidate's end and end after its start.
	mock.ExpectQuery(regexp.QuoteMeta(overlapQuery)).
		WithArgs(int64(5), "Monday", "09:20", "08:40", int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	busy, err := repo.HasOverlap(context.Background(), 5, "Monday", "08:40", "09:20", 1, 2)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryHasOverlapFree(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(overlapQuery)).
		WithArgs(int64(5), "Tuesday", "10:20", "09:20", int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	busy, err := repo.HasOverlap(context.Background(), 5, "Tuesday", "09:20", "10:20", 1, 2)
	require.NoError(t, err)
	assert.False(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceRunsDeleteThenInsert(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM timetable_slots WHERE class_id = $1 AND stream_id = $2`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta(`
        INSERT INTO timetable_slots
            (teacher_id, class_id, stream_id, subject_id, day_of_week, start_time, end_time)
        VALUES
            (?, ?, ?, ?, ?, ?, ?)`)).
		WithArgs(int64(5), int64(1), int64(2), int64(3), "Monday", "08:00", "08:40").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByClassStream(context.Background(), tx, 1, 2))
	slots := []models.TimetableSlot{{
		TeacherID: 5, ClassID: 1, StreamID: 2, SubjectID: 3,
		DayOfWeek: "Monday", StartTime: "08:00", EndTime: "08:40",
	}}
	require.NoError(t, repo.InsertBatch(context.Background(), tx, slots))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
