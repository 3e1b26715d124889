package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/daydif/daydif-backend/internal/http/handlers"
	httpMW "github.com/daydif/daydif-backend/internal/http/middleware"
)

type RouterConfig struct {
	PlanHandler   *httpH.PlanHandler
	LessonHandler *httpH.LessonHandler
	JobHandler    *httpH.JobHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Plans
		if cfg.PlanHandler != nil {
			api.POST("/plans", cfg.PlanHandler.CreatePlan)
			api.GET("/plans/:id/progress", cfg.PlanHandler.GetProgress)
			api.GET("/plans/:id/lessons", cfg.PlanHandler.ListLessons)
			api.POST("/plans/:id/retry-all-failed", cfg.PlanHandler.RetryAllFailed)
		}

		// Lessons
		if cfg.LessonHandler != nil {
			api.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
			api.GET("/lessons/:id/jobs", cfg.LessonHandler.ListJobs)
			api.POST("/lessons/:id/generate", cfg.LessonHandler.Generate)
			api.POST("/lessons/:id/retry", cfg.LessonHandler.Retry)
		}

		// Jobs
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	return r
}
