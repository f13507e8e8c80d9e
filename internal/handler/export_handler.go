package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/service"
	"github.com/ssekandi/psms-api/pkg/response"
)

// ExportHandler serves printable documents.
type ExportHandler struct {
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exports *service.ExportService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// ReportCard godoc
// @Summary Download a pupil's report card as PDF
// @Tags exports
// @Produce application/pdf
// @Param id path int true "Pupil id"
// @Param examID path int true "Exam id"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /pupils/{id}/reports/{examID}/pdf [get]
func (h *ExportHandler) ReportCard(c *gin.Context) {
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
	pdf, err := h.exports.ReportCard(c.Request.Context(), pupilID, examID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ReportExport()
	}
	filename := fmt.Sprintf("report-card-%d-%d.pdf", pupilID, examID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
