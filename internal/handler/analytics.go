package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GET /admin/analytics/summary?hours=24
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	hours := intQuery(c, "hours", 24)
	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	summary, err := h.service.GetSummary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// POST /admin/analytics/cleanup?retention_days=90
func (h *AnalyticsHandler) Cleanup(c *gin.Context) {
	retentionDays := intQuery(c, "retention_days", 90)

	removed, err := h.service.Cleanup(c.Request.Context(), retentionDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
