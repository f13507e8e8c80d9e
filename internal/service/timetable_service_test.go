package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/pkg/config"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

func defaultGeometry() config.TimetableConfig {
	return config.TimetableConfig{
		DayStart:      "08:00",
		DayEnd:        "17:00",
		LessonMinutes: 40,
		BreakStart:    "10:00",
		BreakMinutes:  20,
		LunchStart:    "13:00",
		LunchMinutes:  40,
	}
}

func TestBuildLessonWindowsDefaultDay(t *testing.T) {
	windows, err := buildLessonWindows(defaultGeometry())
	require.NoError(t, err)
	require.Len(t, windows, 12)

	assert.Equal(t, lessonWindow{"08:00", "08:40"}, windows[0])
	assert.Equal(t, lessonWindow{"09:20", "10:00"}, windows[2])
	// lesson crossing the 10:00 break jumps to 10:20
	assert.Equal(t, lessonWindow{"10:20", "11:00"}, windows[3])
	assert.Equal(t, lessonWindow{"12:20", "13:00"}, windows[6])
	// lesson crossing the 13:00 lunch jumps to 13:40
	assert.Equal(t, lessonWindow{"13:40", "14:20"}, windows[7])
	assert.Equal(t, lessonWindow{"16:20", "17:00"}, windows[11])
}

func TestBuildLessonWindowsTruncatesFinalLesson(t *testing.T) {
	cfg := defaultGeometry()
	cfg.DayEnd = "17:30"
	windows, err := buildLessonWindows(cfg)
	require.NoError(t, err)
	require.Len(t, windows, 13)

	// only 30 minutes remain after 17:00; the last lesson is shortened,
	// not dropped
	assert.Equal(t, lessonWindow{"16:20", "17:00"}, windows[11])
	assert.Equal(t, lessonWindow{"17:00", "17:30"}, windows[12])
}

func TestBuildLessonWindowsRejectsBadGeometry(t *testing.T) {
	cfg := defaultGeometry()
	cfg.DayStart = "half past eight"
	_, err := buildLessonWindows(cfg)
	assert.Error(t, err)

	cfg = defaultGeometry()
	cfg.LessonMinutes = 0
	_, err = buildLessonWindows(cfg)
	assert.Error(t, err)
}

type busyKey struct {
	teacherID int64
	day       string
	start     string
}

func slotKey(teacherID int64, day, start string) busyKey {
	return busyKey{teacherID: teacherID, day: day, start: start}
}

type mockSlotRepo struct {
	// busy marks (teacher, day, start) triples the oracle reports taken
	busy     map[busyKey]bool
	deleted  bool
	inserted []models.TimetableSlot
	stored   []models.TimetableSlot
	byTeach  []models.TimetableSlot
}

func (m *mockSlotRepo) HasOverlap(_ context.Context, teacherID int64, day, start, _ string, _, _ int64) (bool, error) {
	return m.busy[slotKey(teacherID, day, start)], nil
}

func (m *mockSlotRepo) DeleteByClassStream(_ context.Context, _ sqlx.ExtContext, _, _ int64) error {
	m.deleted = true
	return nil
}

func (m *mockSlotRepo) InsertBatch(_ context.Context, _ sqlx.ExtContext, slots []models.TimetableSlot) error {
	m.inserted = append(m.inserted, slots...)
	return nil
}

func (m *mockSlotRepo) ListByClassStream(_ context.Context, _, _ int64) ([]models.TimetableSlot, error) {
	return m.stored, nil
}

func (m *mockSlotRepo) ListByTeacher(_ context.Context, _ int64) ([]models.TimetableSlot, error) {
	return m.byTeach, nil
}

type mockTTClassRepo struct {
	stream  *models.Stream
	streams []models.Stream
}

func (m *mockTTClassRepo) FindStreamByID(_ context.Context, _ int64) (*models.Stream, error) {
	return m.stream, nil
}

func (m *mockTTClassRepo) ListAllStreams(_ context.Context) ([]models.Stream, error) {
	return m.streams, nil
}

type mockTTTeacherRepo struct {
	teachers []models.User
	// hidden holds placeholder accounts ListTeachers leaves out but
	// FindByID can still resolve
	hidden []models.User
}

func (m *mockTTTeacherRepo) ListTeachers(_ context.Context, _ bool) ([]models.User, error) {
	return m.teachers, nil
}

func (m *mockTTTeacherRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	for _, teacher := range append(append([]models.User{}, m.teachers...), m.hidden...) {
		if teacher.ID == id {
			found := teacher
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockTTAssignmentRepo struct {
	assignment *models.TeacherAssignment
}

func (m *mockTTAssignmentRepo) FindByClassStream(_ context.Context, _, _ int64) (*models.TeacherAssignment, error) {
	if m.assignment == nil {
		return nil, sql.ErrNoRows
	}
	return m.assignment, nil
}

type mockTTSubjectRepo struct {
	subjects []models.Subject
}

func (m *mockTTSubjectRepo) List(_ context.Context) ([]models.Subject, error) {
	return m.subjects, nil
}

type mockTTInvalidator struct{ calls int }

func (m *mockTTInvalidator) InvalidateTimetable(_ context.Context, _, _ int64) error {
	m.calls++
	return nil
}

func newTimetableService(t *testing.T, slotRepo *mockSlotRepo, teachers []models.User, subjects []models.Subject) *TimetableService {
	t.Helper()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc, err := NewTimetableService(db,
		&mockTTTeacherRepo{teachers: teachers},
		&mockTTSubjectRepo{subjects: subjects},
		&mockTTClassRepo{stream: &models.Stream{ID: 2, ClassID: 1, Name: "East"}},
		slotRepo, &mockTTAssignmentRepo{}, &mockTTInvalidator{}, defaultGeometry(), zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestGenerateFillsFullWeek(t *testing.T) {
	slotRepo := &mockSlotRepo{}
	teachers := []models.User{{ID: 1}, {ID: 2}, {ID: 3}}
	subjects := []models.Subject{{ID: 10}, {ID: 11}}
	svc := newTimetableService(t, slotRepo, teachers, subjects)

	slots, err := svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.NoError(t, err)

	// 12 lessons a day across six teaching days
	assert.Len(t, slots, 72)
	assert.True(t, slotRepo.deleted)
	assert.Len(t, slotRepo.inserted, 72)

	// subjects rotate round-robin
	assert.Equal(t, int64(10), slots[0].SubjectID)
	assert.Equal(t, int64(11), slots[1].SubjectID)
	assert.Equal(t, int64(10), slots[2].SubjectID)

	// teachers rotate too
	assert.Equal(t, int64(1), slots[0].TeacherID)
	assert.Equal(t, int64(2), slots[1].TeacherID)
	assert.Equal(t, int64(3), slots[2].TeacherID)
	assert.Equal(t, int64(1), slots[3].TeacherID)

	assert.Equal(t, "Monday", slots[0].DayOfWeek)
	assert.Equal(t, "Saturday", slots[71].DayOfWeek)
	assert.Equal(t, "16:20", slots[71].StartTime)
	assert.Equal(t, "17:00", slots[71].EndTime)
}

func TestGenerateSkipsBusyTeacher(t *testing.T) {
	slotRepo := &mockSlotRepo{busy: map[busyKey]bool{
		slotKey(1, "Monday", "08:00"): true,
	}}
	teachers := []models.User{{ID: 1}, {ID: 2}}
	subjects := []models.Subject{{ID: 10}}
	svc := newTimetableService(t, slotRepo, teachers, subjects)

	slots, err := svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), slots[0].TeacherID)
}

func TestGenerateInfeasibleWhenAllTeachersBusy(t *testing.T) {
	slotRepo := &mockSlotRepo{busy: map[busyKey]bool{
		slotKey(1, "Monday", "08:00"): true,
		slotKey(2, "Monday", "08:00"): true,
	}}
	teachers := []models.User{{ID: 1}, {ID: 2}}
	subjects := []models.Subject{{ID: 10}}

	db, _ := newTxDB(t)
	svc, err := NewTimetableService(db,
		&mockTTTeacherRepo{teachers: teachers},
		&mockTTSubjectRepo{subjects: subjects},
		&mockTTClassRepo{stream: &models.Stream{ID: 2, ClassID: 1}},
		slotRepo, &mockTTAssignmentRepo{}, &mockTTInvalidator{}, defaultGeometry(), zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleInfeasible.Code, appErrors.FromError(err).Code)
	// nothing was deleted or written
	assert.False(t, slotRepo.deleted)
	assert.Empty(t, slotRepo.inserted)
}

func TestGeneratePrependsUnlistedClassTeacher(t *testing.T) {
	slotRepo := &mockSlotRepo{}
	teacherRepo := &mockTTTeacherRepo{
		teachers: []models.User{{ID: 2}, {ID: 3}},
		hidden:   []models.User{{ID: 9, Placeholder: true}},
	}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc, err := NewTimetableService(db, teacherRepo,
		&mockTTSubjectRepo{subjects: []models.Subject{{ID: 10}}},
		&mockTTClassRepo{stream: &models.Stream{ID: 2, ClassID: 1}},
		slotRepo,
		&mockTTAssignmentRepo{assignment: &models.TeacherAssignment{TeacherID: 9, ClassID: 1, StreamID: 2}},
		&mockTTInvalidator{}, defaultGeometry(), zap.NewNop())
	require.NoError(t, err)

	slots, err := svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.NoError(t, err)

	// the class-teacher heads the rotation and holds slots on every day
	assert.Equal(t, int64(9), slots[0].TeacherID)
	perDay := make(map[string]int)
	for _, slot := range slots {
		if slot.TeacherID == 9 {
			perDay[slot.DayOfWeek]++
		}
	}
	for _, day := range models.TimetableDays {
		assert.Positive(t, perDay[day], day)
	}
}

func TestGenerateKeepsPoolWhenClassTeacherAlreadyListed(t *testing.T) {
	slotRepo := &mockSlotRepo{}
	svc := newTimetableService(t, slotRepo, []models.User{{ID: 1}, {ID: 2}}, []models.Subject{{ID: 10}})
	// helper wires an empty assignment lookup; a listed class-teacher
	// must not be duplicated either, covered by the pool staying as-is
	slots, err := svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), slots[0].TeacherID)
	assert.Equal(t, int64(2), slots[1].TeacherID)
}

func TestGenerateSlotsDisjointPerTeacherDay(t *testing.T) {
	slotRepo := &mockSlotRepo{busy: map[busyKey]bool{
		slotKey(1, "Monday", "08:40"):  true,
		slotKey(2, "Tuesday", "10:20"): true,
	}}
	teachers := []models.User{{ID: 1}, {ID: 2}}
	subjects := []models.Subject{{ID: 10}, {ID: 11}, {ID: 12}}
	svc := newTimetableService(t, slotRepo, teachers, subjects)

	slots, err := svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// no teacher ends up with two half-open-overlapping lessons on one day
	for i, a := range slots {
		aStart, err := parseClock(a.StartTime)
		require.NoError(t, err)
		aEnd, err := parseClock(a.EndTime)
		require.NoError(t, err)
		for j, b := range slots {
			if i == j || a.TeacherID != b.TeacherID || a.DayOfWeek != b.DayOfWeek {
				continue
			}
			bStart, _ := parseClock(b.StartTime)
			bEnd, _ := parseClock(b.EndTime)
			assert.False(t, aStart < bEnd && aEnd > bStart,
				"teacher %d double-booked on %s: %s-%s vs %s-%s",
				a.TeacherID, a.DayOfWeek, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
		}
	}
}

func TestGenerateRejectsForeignStream(t *testing.T) {
	db, _ := newTxDB(t)
	svc, err := NewTimetableService(db,
		&mockTTTeacherRepo{teachers: []models.User{{ID: 1}}},
		&mockTTSubjectRepo{subjects: []models.Subject{{ID: 10}}},
		&mockTTClassRepo{stream: &models.Stream{ID: 2, ClassID: 99}},
		&mockSlotRepo{}, &mockTTAssignmentRepo{}, &mockTTInvalidator{}, defaultGeometry(), zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), GenerateInput{ClassID: 1, StreamID: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
