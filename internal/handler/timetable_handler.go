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

type timetablePlanner interface {
	Generate(ctx context.Context, input service.GenerateInput) ([]models.TimetableSlot, error)
	GenerateAll(ctx context.Context) ([]service.PairResult, error)
	Timetable(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, error)
	TeacherTimetable(ctx context.Context, teacherID int64) ([]models.TimetableSlot, error)
}

// TimetableHandler serves timetable generation and reads.
type TimetableHandler struct {
	timetables timetablePlanner
	cache      *service.CacheService
	metrics    *service.MetricsService
}

// NewTimetableHandler creates a new timetable handler.
func NewTimetableHandler(timetables timetablePlanner, cache *service.CacheService, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, cache: cache, metrics: metrics}
}

// Generate godoc
// @Summary Regenerate the weekly timetable for one class and stream
// @Description Plans the full week in memory against teacher availability, then atomically replaces the pair's slots. On infeasibility the previous timetable is kept.
// @Tags timetables
// @Accept json
// @Produce json
// @Param payload body service.GenerateInput true "Pair"
// @Success 201 {object} response.Envelope{data=[]models.TimetableSlot}
// @Failure 409 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var input service.GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	slots, err := h.timetables.Generate(c.Request.Context(), input)
	if err != nil {
		h.countRun(err)
		response.Error(c, err)
		return
	}
	h.countRun(nil)
	response.Created(c, slots)
}

func (h *TimetableHandler) countRun(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.TimetableRun(service.OutcomeOK)
	case appErrors.FromError(err).Code == appErrors.ErrScheduleInfeasible.Code:
		h.metrics.TimetableRun(service.OutcomeInfeasible)
	default:
		h.metrics.TimetableRun(service.OutcomeError)
	}
}

// GenerateAll godoc
// @Summary Regenerate timetables for every stream in the school
// @Tags timetables
// @Produce json
// @Success 200 {object} response.Envelope{data=[]service.PairResult}
// @Router /timetables/generate-all [post]
func (h *TimetableHandler) GenerateAll(c *gin.Context) {
	results, err := h.timetables.GenerateAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Timetable godoc
// @Summary Weekly timetable for one class and stream
// @Tags timetables
// @Produce json
// @Param class_id query int true "Class id"
// @Param stream_id query int true "Stream id"
// @Success 200 {object} response.Envelope{data=[]models.TimetableSlot}
// @Router /timetables [get]
func (h *TimetableHandler) Timetable(c *gin.Context) {
	classID, err := queryInt64(c, "class_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	streamID, err := queryInt64(c, "stream_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cache != nil {
		if slots, ok := h.cache.Timetable(c.Request.Context(), classID, streamID); ok {
			response.JSON(c, http.StatusOK, slots, nil, map[string]interface{}{"cached": true})
			return
		}
	}
	slots, err := h.timetables.Timetable(c.Request.Context(), classID, streamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cache != nil {
		h.cache.StoreTimetable(c.Request.Context(), classID, streamID, slots)
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// TeacherTimetable godoc
// @Summary All slots one teacher holds across the school
// @Tags timetables
// @Produce json
// @Param id path int true "Teacher id"
// @Success 200 {object} response.Envelope{data=[]models.TimetableSlot}
// @Router /teachers/{id}/timetable [get]
func (h *TimetableHandler) TeacherTimetable(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.timetables.TeacherTimetable(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
