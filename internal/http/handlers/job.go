package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daydif/daydif-backend/internal/http/response"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
	"github.com/daydif/daydif-backend/internal/services"
)

type JobHandler struct {
	log  *logger.Logger
	jobs services.JobService
}

func NewJobHandler(log *logger.Logger, jobs services.JobService) *JobHandler {
	return &JobHandler{
		log:  log.With("handler", "JobHandler"),
		jobs: jobs,
	}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid job id"), false)
		return
	}
	job, err := h.jobs.GetByID(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if job == nil {
		response.FromError(c, fmt.Errorf("job %s: %w", jobID, apperr.ErrNotFound))
		return
	}
	response.OK(c, gin.H{"job": job})
}
