package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

type marksWriter interface {
	SubmitMarks(ctx context.Context, input service.SubmitMarksInput) (*service.SubmitMarksResult, error)
	UpdateMark(ctx context.Context, input service.UpdateMarkInput) (*models.Report, error)
	DeleteMark(ctx context.Context, pupilID, subjectID, examID int64) error
}

// MarksHandler serves mark submission and editing.
type MarksHandler struct {
	marks   marksWriter
	metrics *service.MetricsService
}

// NewMarksHandler creates a new marks handler.
func NewMarksHandler(marks marksWriter, metrics *service.MetricsService) *MarksHandler {
	return &MarksHandler{marks: marks, metrics: metrics}
}

// Submit godoc
// @Summary Submit a pupil's marks for an exam
// @Description Records all subject scores for a (pupil, exam) in one shot and builds the report. Re-submitting the same pair is rejected; use the update endpoint instead.
// @Tags marks
// @Accept json
// @Produce json
// @Param payload body service.SubmitMarksInput true "Marks submission"
// @Success 201 {object} response.Envelope{data=service.SubmitMarksResult}
// @Failure 400 {object} response.Envelope
// @Router /marks [post]
func (h *MarksHandler) Submit(c *gin.Context) {
	var input service.SubmitMarksInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	result, err := h.marks.SubmitMarks(c.Request.Context(), input)
	if err != nil {
		h.countSubmission(err)
		response.Error(c, err)
		return
	}
	h.countSubmission(nil)
	response.Created(c, result)
}

func (h *MarksHandler) countSubmission(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.MarkSubmission(service.OutcomeOK)
	case appErrors.FromError(err).Code == appErrors.ErrDuplicateEntry.Code:
		h.metrics.MarkSubmission(service.OutcomeDuplicate)
	default:
		h.metrics.MarkSubmission(service.OutcomeError)
	}
}

// Update godoc
// @Summary Edit one subject's score
// @Tags marks
// @Accept json
// @Produce json
// @Param payload body service.UpdateMarkInput true "Score update"
// @Success 200 {object} response.Envelope{data=models.Report}
// @Failure 400 {object} response.Envelope
// @Router /marks [put]
func (h *MarksHandler) Update(c *gin.Context) {
	var input service.UpdateMarkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	report, err := h.marks.UpdateMark(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Delete one subject's score
// @Tags marks
// @Produce json
// @Param pupil_id query int true "Pupil id"
// @Param subject_id query int true "Subject id"
// @Param exam_id query int true "Exam id"
// @Success 204
// @Router /marks [delete]
func (h *MarksHandler) Delete(c *gin.Context) {
	pupilID, err := queryInt64(c, "pupil_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	subjectID, err := queryInt64(c, "subject_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	examID, err := queryInt64(c, "exam_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.marks.DeleteMark(c.Request.Context(), pupilID, subjectID, examID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
