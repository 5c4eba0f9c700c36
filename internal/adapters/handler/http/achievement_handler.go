package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthup/insight-engine/internal/adapters/handler/http/middleware"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
)

type AchievementHandler struct {
	reports      *services.ReportService
	achievements *services.AchievementService
}

func NewAchievementHandler(reports *services.ReportService, achievements *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		reports:      reports,
		achievements: achievements,
	}
}

func (h *AchievementHandler) RegisterRoutes(router *gin.RouterGroup) {
	achievements := router.Group("/achievements")
	{
		achievements.GET("", h.List)
		achievements.GET("/progress", h.Progress)
	}
}

func (h *AchievementHandler) List(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	current, history, err := h.reports.Current(c.Request.Context(), userUUID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	unlocked, err := h.achievements.Detect(current, history)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start":   current.WeekStartDate.Format("2006-01-02"),
		"achievements": unlocked,
	})
}

func (h *AchievementHandler) Progress(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	current, history, err := h.reports.Current(c.Request.Context(), userUUID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	progress, err := h.achievements.Progress(current, history)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": current.WeekStartDate.Format("2006-01-02"),
		"progress":   progress,
	})
}

func (h *AchievementHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed report yet"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
