package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

type assessmentQueries interface {
	ReportFor(ctx context.Context, pupilID, examID int64) (*service.ReportView, error)
	PupilReports(ctx context.Context, pupilID int64) ([]models.Report, error)
	PupilMarks(ctx context.Context, pupilID int64) ([]models.Mark, error)
	ExamOptions(ctx context.Context, pupilID int64) ([]models.ExamOption, error)
	TermSummary(ctx context.Context, pupilID int64, term, year int) (*service.TermSummaryView, error)
}

type termRecomputer interface {
	RecomputeTerm(ctx context.Context, input service.RecomputeTermInput) ([]service.TermStanding, error)
}

// AssessmentHandler serves report reads and term recomputation.
type AssessmentHandler struct {
	queries assessmentQueries
	terms   termRecomputer
	metrics *service.MetricsService
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(queries assessmentQueries, terms termRecomputer, metrics *service.MetricsService) *AssessmentHandler {
	return &AssessmentHandler{queries: queries, terms: terms, metrics: metrics}
}

// Report godoc
// @Summary Stored report for one pupil and exam
// @Description Returns the persisted projection together with the marks behind it. Nothing is recomputed on read.
// @Tags reports
// @Produce json
// @Param id path int true "Pupil id"
// @Param examID path int true "Exam id"
// @Success 200 {object} response.Envelope{data=service.ReportView}
// @Failure 404 {object} response.Envelope
// @Router /pupils/{id}/reports/{examID} [get]
func (h *AssessmentHandler) Report(c *gin.Context) {
	pupilID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	examID, err := pathID(c, "examID")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.queries.ReportFor(c.Request.Context(), pupilID, examID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Reports godoc
// @Summary All stored reports for a pupil
// @Tags reports
// @Produce json
// @Param id path int true "Pupil id"
// @Success 200 {object} response.Envelope{data=[]models.Report}
// @Router /pupils/{id}/reports [get]
func (h *AssessmentHandler) Reports(c *gin.Context) {
	pupilID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	reports, err := h.queries.PupilReports(c.Request.Context(), pupilID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Marks godoc
// @Summary All raw marks for a pupil
// @Tags reports
// @Produce json
// @Param id path int true "Pupil id"
// @Success 200 {object} response.Envelope{data=[]models.Mark}
// @Router /pupils/{id}/marks [get]
func (h *AssessmentHandler) Marks(c *gin.Context) {
	pupilID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.queries.PupilMarks(c.Request.Context(), pupilID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ExamOptions godoc
// @Summary Exams a pupil has marks for
// @Tags reports
// @Produce json
// @Param id path int true "Pupil id"
// @Success 200 {object} response.Envelope{data=[]models.ExamOption}
// @Router /pupils/{id}/exam-options [get]
func (h *AssessmentHandler) ExamOptions(c *gin.Context) {
	pupilID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	options, err := h.queries.ExamOptions(c.Request.Context(), pupilID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// TermSummary godoc
// @Summary Stored term snapshot for one pupil
// @Tags reports
// @Produce json
// @Param id path int true "Pupil id"
// @Param term path int true "Term (1-3)"
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} response.Envelope{data=service.TermSummaryView}
// @Router /pupils/{id}/terms/{term}/summary [get]
func (h *AssessmentHandler) TermSummary(c *gin.Context) {
	pupilID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	termPath, err := pathID(c, "term")
	if err != nil || termPath < 1 || termPath > 3 {
		response.Error(c, appErrors.ErrValidation.Clone("Invalid term"))
		return
	}
	term := int(termPath)
	year := queryInt(c, "year", time.Now().Year())
	view, err := h.queries.TermSummary(c.Request.Context(), pupilID, term, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Recompute godoc
// @Summary Recompute a class's term aggregates and positions
// @Description Rebuilds combined totals, grades, remarks and all positions for a class in one (term, year) and snapshots them on the report rows.
// @Tags reports
// @Accept json
// @Produce json
// @Param payload body service.RecomputeTermInput true "Scope"
// @Success 200 {object} response.Envelope{data=[]service.TermStanding}
// @Failure 400 {object} response.Envelope
// @Router /terms/recompute [post]
func (h *AssessmentHandler) Recompute(c *gin.Context) {
	var input service.RecomputeTermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	standings, err := h.terms.RecomputeTerm(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.TermRecompute()
	}
	response.JSON(c, http.StatusOK, standings, nil)
}
