package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daydif/daydif-backend/internal/http/response"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
	"github.com/daydif/daydif-backend/internal/services"
)

type PlanHandler struct {
	log      *logger.Logger
	plans    services.PlanService
	lessons  services.LessonService
	progress services.ProgressService
	retry    services.RetryService
}

func NewPlanHandler(
	log *logger.Logger,
	plans services.PlanService,
	lessons services.LessonService,
	progress services.ProgressService,
	retry services.RetryService,
) *PlanHandler {
	return &PlanHandler{
		log:      log.With("handler", "PlanHandler"),
		plans:    plans,
		lessons:  lessons,
		progress: progress,
		retry:    retry,
	}
}

// POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var in services.CreatePlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err), false)
		return
	}
	result, err := h.plans.CreatePlan(dbctx.Context{Ctx: c.Request.Context()}, in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"plan": result})
}

// GET /api/plans/:id/progress
func (h *PlanHandler) GetProgress(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid plan id"), false)
		return
	}
	snapshot, err := h.progress.GetPlanProgress(dbctx.Context{Ctx: c.Request.Context()}, planID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"progress": snapshot})
}

// GET /api/plans/:id/lessons
func (h *PlanHandler) ListLessons(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid plan id"), false)
		return
	}
	if _, err := h.plans.GetPlan(dbctx.Context{Ctx: c.Request.Context()}, planID); err != nil {
		response.FromError(c, err)
		return
	}
	lessons, err := h.lessons.ListPlanLessons(dbctx.Context{Ctx: c.Request.Context()}, planID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"lessons": lessons})
}

// POST /api/plans/:id/retry-all-failed
func (h *PlanHandler) RetryAllFailed(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid plan id"), false)
		return
	}
	result, err := h.retry.RetryAllFailed(dbctx.Context{Ctx: c.Request.Context()}, planID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"retriedCount": result.RetriedCount})
}
