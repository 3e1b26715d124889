package app

import (
	apihttp "github.com/daydif/daydif-backend/internal/http"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, handlerset Handlers) *apihttp.Server {
	return apihttp.NewServer(apihttp.RouterConfig{
		PlanHandler:   handlerset.Plan,
		LessonHandler: handlerset.Lesson,
		JobHandler:    handlerset.Job,
		HealthHandler: handlerset.Health,
	}, log)
}
