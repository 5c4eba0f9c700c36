package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthup/insight-engine/internal/adapters/handler/http/middleware"
	"github.com/healthup/insight-engine/internal/core/domain"
	"github.com/healthup/insight-engine/internal/core/services"
	"github.com/healthup/insight-engine/internal/core/workers"
)

type ReportHandler struct {
	svc    *services.ReportService
	worker *workers.ReportWorker
}

func NewReportHandler(svc *services.ReportService, worker *workers.ReportWorker) *ReportHandler {
	return &ReportHandler{
		svc:    svc,
		worker: worker,
	}
}

type generateReportRequest struct {
	WeekStart string             `json:"week_start" binding:"required"`
	Stats     domain.WeeklyStats `json:"stats"`
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("", h.List)
		reports.GET("/current", h.Current)
		reports.POST("/generate", h.Generate)
	}
}

func (h *ReportHandler) List(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	reports, err := h.svc.List(c.Request.Context(), userUUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *ReportHandler) Current(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	current, history, err := h.svc.Current(c.Request.Context(), userUUID)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no completed report yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":        current,
		"history_weeks": len(history),
	})
}

func (h *ReportHandler) Generate(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week_start format, use YYYY-MM-DD"})
		return
	}

	job := workers.GenerateJob{
		UserUUID:  userUUID,
		WeekStart: weekStart,
		Stats:     req.Stats,
	}

	if !h.worker.Enqueue(job) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report queue is full, try again later"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":     "queued",
		"week_start": weekStart.Format("2006-01-02"),
	})
}
