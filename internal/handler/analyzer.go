package handler

import (
	"net/http"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/worker"

	"github.com/gin-gonic/gin"
)

type AnalyzerHandler struct{ analyzer worker.AnalyzerRunner }

func NewAnalyzerHandler(a worker.AnalyzerRunner) *AnalyzerHandler {
	return &AnalyzerHandler{analyzer: a}
}

// Run godoc
// @Summary      Run the menu analyzer now
// @Description  Same scan as the hourly job; the one-brief-per-day guard still applies.
// @Tags         analyzer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.AnalyzerRunResponse
// @Router       /v1/analyzer/run [post]
func (h *AnalyzerHandler) Run(c *gin.Context) {
	report, err := h.analyzer.RunOnce(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp := dto.AnalyzerRunResponse{
		Outcome:    string(report.Outcome),
		CannotMake: len(report.CannotMake),
		LowStock:   len(report.LowStock),
		Expiring:   len(report.Expiring),
		Surplus:    len(report.Surplus),
	}
	if report.Notification != nil {
		resp.NotificationID = report.Notification.ID.String()
	}
	c.JSON(http.StatusOK, resp)
}
