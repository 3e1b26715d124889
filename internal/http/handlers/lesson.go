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

type LessonHandler struct {
	log     *logger.Logger
	lessons services.LessonService
	gen     services.LessonGenerationService
	retry   services.RetryService
	jobs    services.JobService
}

func NewLessonHandler(
	log *logger.Logger,
	lessons services.LessonService,
	gen services.LessonGenerationService,
	retry services.RetryService,
	jobs services.JobService,
) *LessonHandler {
	return &LessonHandler{
		log:     log.With("handler", "LessonHandler"),
		lessons: lessons,
		gen:     gen,
		retry:   retry,
		jobs:    jobs,
	}
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid lesson id"), false)
		return
	}
	lesson, episodes, err := h.lessons.GetLessonByID(dbctx.Context{Ctx: c.Request.Context()}, lessonID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"lesson": lesson, "episodes": episodes})
}

// POST /api/lessons/:id/generate
//
// Runs generation on the request goroutine. A failure here is reported
// with retryable=true since the lesson ends up skipped and a retry call
// can pick it back up.
func (h *LessonHandler) Generate(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid lesson id"), false)
		return
	}
	result, err := h.gen.GenerateNow(dbctx.Context{Ctx: c.Request.Context()}, lessonID)
	if err != nil {
		if status := response.StatusFor(err); status != http.StatusInternalServerError {
			response.FromError(c, err)
			return
		}
		response.Fail(c, http.StatusInternalServerError, err, true)
		return
	}
	response.OK(c, gin.H{"result": result})
}

// POST /api/lessons/:id/retry
func (h *LessonHandler) Retry(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid lesson id"), false)
		return
	}
	if err := h.retry.RetryLesson(dbctx.Context{Ctx: c.Request.Context()}, lessonID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"lessonId": lessonID, "status": "pending"})
}

// GET /api/lessons/:id/jobs
func (h *LessonHandler) ListJobs(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid lesson id"), false)
		return
	}
	jobs, err := h.jobs.ListForLesson(dbctx.Context{Ctx: c.Request.Context()}, lessonID, c.Query("status"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"jobs": jobs})
}
