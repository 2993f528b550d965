package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles the admin dashboard reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the report routes on the admin group
func registerReportingRoutes(admin *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)
	admin.GET("/stats", h.getPlatformStats)
}

// getPlatformStats godoc
// @Summary Platform statistics
// @Description Deals by status, users by role, funded and released totals, commission earned and a monthly funded-amount series
// @Tags admin
// @Produce json
// @Param months query int false "Length of the monthly series" default(12)
// @Success 200 {object} domain.PlatformStats
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *reportingHandler) getPlatformStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.PlatformStatsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	logger.Info("Received request for platform stats", slog.Int("months", params.Months))

	stats, err := h.reportingService.GetPlatformStats(c.Request.Context(), params.Months)
	if err != nil {
		respondWithError(c, err, "Failed to generate report")
		return
	}

	c.JSON(http.StatusOK, stats)
}
