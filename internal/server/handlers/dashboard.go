package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/service/reporting"
)

// DashboardHandler serves /api/dashboard.
type DashboardHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get returns today, week and month summaries with the latest sales.
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Trend returns the chart series for ?period=day|week|month (default week).
func (h *DashboardHandler) Trend(c *gin.Context) {
	period := reporting.Period(c.DefaultQuery("period", string(reporting.PeriodWeek)))
	points, err := h.svc.Trend(c.Request.Context(), period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "points": points})
}
