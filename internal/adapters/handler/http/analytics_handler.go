package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthup/insight-engine/internal/adapters/handler/http/middleware"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
)

type AnalyticsHandler struct {
	svc *services.ReportService
}

func NewAnalyticsHandler(svc *services.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc: svc,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics")
	{
		analytics.GET("/diversity", h.Diversity)
		analytics.GET("/trends", h.Trends)
		analytics.GET("/preferences", h.Preferences)
		analytics.GET("/forecast", h.Forecast)
	}
}

func (h *AnalyticsHandler) Diversity(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	scores, err := h.svc.Diversity(c.Request.Context(), userUUID)
	if err != nil {
		h.writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, scores)
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	analysis, err := h.svc.Trends(c.Request.Context(), userUUID)
	if err != nil {
		h.writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *AnalyticsHandler) Preferences(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	analysis, err := h.svc.Preferences(c.Request.Context(), userUUID)
	if err != nil {
		h.writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	targetDate := time.Now().UTC().AddDate(0, 0, domain.DaysPerWeek)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		targetDate = parsed
	}

	forecast, err := h.svc.Forecast(c.Request.Context(), userUUID, targetDate)
	if err != nil {
		h.writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

func (h *AnalyticsHandler) writeAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed report yet"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
