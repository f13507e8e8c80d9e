package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ssekandi/psms-api/internal/middleware"
	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type marksWriterMock struct {
	captured  service.SubmitMarksInput
	submitErr error
	deleted   [3]int64
}

func (m *marksWriterMock) SubmitMarks(ctx context.Context, input service.SubmitMarksInput) (*service.SubmitMarksResult, error) {
	m.captured = input
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &service.SubmitMarksResult{
		Exam:   &models.Exam{ID: 7, Name: "End term", Term: input.Term, Year: input.Year},
		Report: &models.Report{ID: 1, PupilID: input.PupilID, ExamID: 7, Grade: "B"},
	}, nil
}

func (m *marksWriterMock) UpdateMark(ctx context.Context, input service.UpdateMarkInput) (*models.Report, error) {
	return &models.Report{ID: 1, PupilID: input.PupilID, ExamID: input.ExamID, Grade: "A"}, nil
}

func (m *marksWriterMock) DeleteMark(ctx context.Context, pupilID, subjectID, examID int64) error {
	m.deleted = [3]int64{pupilID, subjectID, examID}
	return nil
}

func validMarksPayload() []byte {
	return []byte(`{"pupil_id":3,"exam_name":"End_term","term":2,"year":2025,"marks":[{"subject_id":1,"score":88},{"subject_id":2,"score":64}]}`)
}

func TestMarksSubmitCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &marksWriterMock{}
	h := NewMarksHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodPost, "/marks", bytes.NewReader(validMarksPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int64(3), mockSvc.captured.PupilID)
	require.Equal(t, "End_term", mockSvc.captured.ExamName)
	require.Len(t, mockSvc.captured.Marks, 2)
	require.Contains(t, w.Body.String(), `"grade":"B"`)
}

func TestMarksSubmitDuplicateEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &marksWriterMock{submitErr: appErrors.ErrDuplicateEntry}
	h := NewMarksHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodPost, "/marks", bytes.NewReader(validMarksPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"code":"DUPLICATE_ENTRY"`)
	require.Contains(t, w.Body.String(), "Use edit if you want to update")
}

func TestMarksSubmitMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMarksHandler(&marksWriterMock{}, nil)

	req, _ := http.NewRequest(http.MethodPost, "/marks", bytes.NewReader([]byte(`{"pupil_id":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"code":"VALIDATION_ERROR"`)
}

func TestMarksDeleteNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &marksWriterMock{}
	h := NewMarksHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodDelete, "/marks?pupil_id=3&subject_id=2&exam_id=7", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, [3]int64{3, 2, 7}, mockSvc.deleted)
}

func TestMarksDeleteMissingParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMarksHandler(&marksWriterMock{}, nil)

	req, _ := http.NewRequest(http.MethodDelete, "/marks?pupil_id=3&subject_id=2", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Delete(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "exam_id")
}

func TestMarksSubmitForbiddenForBursar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMarksHandler(&marksWriterMock{}, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(9))
		c.Set(middleware.ContextRole, models.RoleBursar)
		c.Next()
	})
	router.POST("/marks", middleware.RequireRoles(models.RoleAdmin, models.RoleHeadteacher, models.RoleTeacher), h.Submit)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/marks", bytes.NewReader(validMarksPayload()))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
