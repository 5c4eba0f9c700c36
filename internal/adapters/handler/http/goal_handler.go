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

// GoalHandler exposes goal generation and tracking. Goals are derived
// from report data on demand and owned by the caller, so progress and
// summary take the goal state in the request body.
type GoalHandler struct {
	reports *services.ReportService
	goals   *services.GoalService
}

func NewGoalHandler(reports *services.ReportService, goals *services.GoalService) *GoalHandler {
	return &GoalHandler{
		reports: reports,
		goals:   goals,
	}
}

type goalProgressRequest struct {
	Goal domain.CategoryGoal `json:"goal" binding:"required"`
}

type goalSummaryRequest struct {
	Goals []*domain.CategoryGoal `json:"goals" binding:"required"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("/generate", h.Generate)
		goals.POST("/progress", h.Progress)
		goals.POST("/summary", h.Summary)
	}
}

func (h *GoalHandler) Generate(c *gin.Context) {
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

	goals, err := h.goals.GenerateDynamicGoals(current, history, time.Now().UTC())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": current.WeekStartDate.Format("2006-01-02"),
		"goals":      goals,
	})
}

func (h *GoalHandler) Progress(c *gin.Context) {
	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req goalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, _, err := h.reports.Current(c.Request.Context(), userUUID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	goal := req.Goal
	if err := h.goals.UpdateGoalProgress(&goal, current); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Summary(c *gin.Context) {
	var req goalSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary := h.goals.Summary(req.Goals, time.Now().UTC())

	c.JSON(http.StatusOK, summary)
}

func (h *GoalHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed report yet"})
	case errors.Is(err, domain.ErrNilGoal), errors.Is(err, domain.ErrNilReport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
