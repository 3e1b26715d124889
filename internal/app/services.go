package app

import (
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/jobs"
	"github.com/daydif/daydif-backend/internal/platform/logger"
	"github.com/daydif/daydif-backend/internal/services"
)

type Services struct {
	Job      services.JobService
	Plan     services.PlanService
	Lesson   services.LessonService
	Gen      services.LessonGenerationService
	Progress services.ProgressService
	Retry    services.RetryService

	JobPool *jobs.Pool
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clientset Clients) Services {
	log.Info("Wiring services...")
	jobSvc := services.NewJobService(db, log, reposet.AIJob)
	genSvc := services.NewLessonGenerationService(
		db, log,
		reposet.Plan, reposet.PlanLesson, reposet.Episode, reposet.AIJob,
		jobSvc,
		clientset.Content, clientset.TTS,
	)

	registry := jobs.NewRegistry()
	jobs.RegisterAll(registry, genSvc)
	pool := jobs.NewPool(db, log, reposet.AIJob, reposet.PlanLesson, registry, jobs.PoolOptions{
		Concurrency:       cfg.WorkerConcurrency,
		ClaimInterval:     cfg.ClaimInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		StaleProcessing:   cfg.StaleProcessing,
	})

	return Services{
		Job:      jobSvc,
		Plan:     services.NewPlanService(db, log, reposet.Plan, reposet.PlanLesson, jobSvc),
		Lesson:   services.NewLessonService(db, log, reposet.PlanLesson, reposet.Episode),
		Gen:      genSvc,
		Progress: services.NewProgressService(db, log, reposet.Plan, reposet.PlanLesson),
		Retry:    services.NewRetryService(db, log, reposet.Plan, reposet.PlanLesson, reposet.AIJob, jobSvc),
		JobPool:  pool,
	}
}
