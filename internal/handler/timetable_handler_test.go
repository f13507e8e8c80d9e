package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type timetablePlannerMock struct {
	captured    service.GenerateInput
	generateErr error
	readPair    [2]int64
}

func (m *timetablePlannerMock) Generate(ctx context.Context, input service.GenerateInput) ([]models.TimetableSlot, error) {
	m.captured = input
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return []models.TimetableSlot{
		{ID: 1, TeacherID: 5, ClassID: input.ClassID, StreamID: input.StreamID, SubjectID: 2, DayOfWeek: "Monday", StartTime: "08:00", EndTime: "08:40"},
	}, nil
}

func (m *timetablePlannerMock) GenerateAll(ctx context.Context) ([]service.PairResult, error) {
	return []service.PairResult{
		{ClassID: 1, StreamID: 2, Slots: 72},
		{ClassID: 1, StreamID: 3, Error: "no available teacher for Monday 08:00-08:40"},
	}, nil
}

func (m *timetablePlannerMock) Timetable(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, error) {
	m.readPair = [2]int64{classID, streamID}
	return []models.TimetableSlot{{ID: 1, ClassID: classID, StreamID: streamID, DayOfWeek: "Monday"}}, nil
}

func (m *timetablePlannerMock) TeacherTimetable(ctx context.Context, teacherID int64) ([]models.TimetableSlot, error) {
	return []models.TimetableSlot{{ID: 1, TeacherID: teacherID, DayOfWeek: "Tuesday"}}, nil
}

func TestTimetableGenerateCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetablePlannerMock{}
	h := NewTimetableHandler(mockSvc, nil, nil)

	body := []byte(`{"class_id":1,"stream_id":2}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int64(1), mockSvc.captured.ClassID)
	require.Equal(t, int64(2), mockSvc.captured.StreamID)
	require.Contains(t, w.Body.String(), `"day_of_week":"Monday"`)
}

func TestTimetableGenerateInfeasibleKeepsConflictStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetablePlannerMock{
		generateErr: appErrors.ErrScheduleInfeasible.Clone("no available teacher for Monday 08:00-08:40"),
	}
	h := NewTimetableHandler(mockSvc, nil, nil)

	body := []byte(`{"class_id":1,"stream_id":2}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), `"code":"SCHEDULE_INFEASIBLE"`)
}

func TestTimetableGenerateAllReportsPerPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(&timetablePlannerMock{}, nil, nil)

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate-all", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.GenerateAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"slots":72`)
	require.Contains(t, w.Body.String(), "no available teacher")
}

func TestTimetableReadRequiresPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(&timetablePlannerMock{}, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/timetables?class_id=1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Timetable(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "stream_id")
}

func TestTimetableReadOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetablePlannerMock{}
	h := NewTimetableHandler(mockSvc, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/timetables?class_id=1&stream_id=2", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Timetable(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, [2]int64{1, 2}, mockSvc.readPair)
}

func TestTeacherTimetableOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(&timetablePlannerMock{}, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/teachers/5/timetable", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.TeacherTimetable(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"teacher_id":5`)
}
