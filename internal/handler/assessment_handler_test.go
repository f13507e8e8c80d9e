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

type assessmentQueriesMock struct {
	reportErr   error
	summaryTerm int
	summaryYear int
}

func (m *assessmentQueriesMock) ReportFor(ctx context.Context, pupilID, examID int64) (*service.ReportView, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return &service.ReportView{
		Pupil:  &models.Pupil{ID: pupilID, FirstName: "Asha", LastName: "Nankya", ClassID: 1},
		Exam:   &models.Exam{ID: examID, Name: "End term", Term: 2, Year: 2025},
		Report: &models.Report{ID: 1, PupilID: pupilID, ExamID: examID, Grade: "A"},
	}, nil
}

func (m *assessmentQueriesMock) PupilReports(ctx context.Context, pupilID int64) ([]models.Report, error) {
	return []models.Report{{ID: 1, PupilID: pupilID, ExamID: 7}}, nil
}

func (m *assessmentQueriesMock) PupilMarks(ctx context.Context, pupilID int64) ([]models.Mark, error) {
	return []models.Mark{{ID: 1, PupilID: pupilID, SubjectID: 2, ExamID: 7, Score: 88}}, nil
}

func (m *assessmentQueriesMock) ExamOptions(ctx context.Context, pupilID int64) ([]models.ExamOption, error) {
	return []models.ExamOption{{ExamID: 7, Name: "End term", Term: 2, Year: 2025}}, nil
}

func (m *assessmentQueriesMock) TermSummary(ctx context.Context, pupilID int64, term, year int) (*service.TermSummaryView, error) {
	m.summaryTerm = term
	m.summaryYear = year
	return &service.TermSummaryView{Pupil: &models.Pupil{ID: pupilID}}, nil
}

type termRecomputerMock struct {
	captured service.RecomputeTermInput
	err      error
}

func (m *termRecomputerMock) RecomputeTerm(ctx context.Context, input service.RecomputeTermInput) ([]service.TermStanding, error) {
	m.captured = input
	if m.err != nil {
		return nil, m.err
	}
	return []service.TermStanding{{PupilID: 3, CombinedAvg: 76, CombinedGrade: "B", ClassPosition: 1}}, nil
}

func TestAssessmentReportOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssessmentHandler(&assessmentQueriesMock{}, &termRecomputerMock{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pupils/3/reports/7", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}, {Key: "examID", Value: "7"}}

	h.Report(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"grade":"A"`)
	require.Contains(t, w.Body.String(), "Nankya")
}

func TestAssessmentReportNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queries := &assessmentQueriesMock{reportErr: appErrors.ErrNotFound.Clone("No report for this pupil and exam")}
	h := NewAssessmentHandler(queries, &termRecomputerMock{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pupils/3/reports/7", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}, {Key: "examID", Value: "7"}}

	h.Report(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestAssessmentReportBadPupilID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssessmentHandler(&assessmentQueriesMock{}, &termRecomputerMock{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pupils/zero/reports/7", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "zero"}, {Key: "examID", Value: "7"}}

	h.Report(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssessmentTermSummaryParsesScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queries := &assessmentQueriesMock{}
	h := NewAssessmentHandler(queries, &termRecomputerMock{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pupils/3/terms/2/summary?year=2024", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}, {Key: "term", Value: "2"}}

	h.TermSummary(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, queries.summaryTerm)
	require.Equal(t, 2024, queries.summaryYear)
}

func TestAssessmentTermSummaryRejectsTermFour(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssessmentHandler(&assessmentQueriesMock{}, &termRecomputerMock{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pupils/3/terms/4/summary", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}, {Key: "term", Value: "4"}}

	h.TermSummary(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid term")
}

func TestAssessmentRecomputeOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	terms := &termRecomputerMock{}
	h := NewAssessmentHandler(&assessmentQueriesMock{}, terms, nil)

	body := []byte(`{"class_id":1,"term":2,"year":2025}`)
	req, _ := http.NewRequest(http.MethodPost, "/terms/recompute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Recompute(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), terms.captured.ClassID)
	require.Equal(t, 2, terms.captured.Term)
	require.Contains(t, w.Body.String(), `"combined_grade":"B"`)
}
