package app

import (
	"gorm.io/gorm"

	httpH "github.com/daydif/daydif-backend/internal/http/handlers"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type Handlers struct {
	Plan   *httpH.PlanHandler
	Lesson *httpH.LessonHandler
	Job    *httpH.JobHandler
	Health *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Plan:   httpH.NewPlanHandler(log, serviceset.Plan, serviceset.Lesson, serviceset.Progress, serviceset.Retry),
		Lesson: httpH.NewLessonHandler(log, serviceset.Lesson, serviceset.Gen, serviceset.Retry, serviceset.Job),
		Job:    httpH.NewJobHandler(log, serviceset.Job),
		Health: httpH.NewHealthHandler(db),
	}
}
