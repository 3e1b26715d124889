package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/data/repos/jobs"
	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type RetryAllResult struct {
	RetriedCount int `json:"retriedCount"`
}

// RetryService resets failed lessons to pending and enqueues a fresh
// generation job for each. Only skipped lessons are retryable; the old
// job rows stay in the ledger untouched.
type RetryService interface {
	RetryLesson(dbc dbctx.Context, lessonID uuid.UUID) error
	RetryAllFailed(dbc dbctx.Context, planID uuid.UUID) (*RetryAllResult, error)
}

type retryService struct {
	db         *gorm.DB
	log        *logger.Logger
	planRepo   plans.PlanRepo
	lessonRepo plans.PlanLessonRepo
	jobRepo    jobs.AIJobRepo
	jobs       JobService
}

func NewRetryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo plans.PlanRepo,
	lessonRepo plans.PlanLessonRepo,
	jobRepo jobs.AIJobRepo,
	jobSvc JobService,
) RetryService {
	return &retryService{
		db:         db,
		log:        baseLog.With("service", "RetryService"),
		planRepo:   planRepo,
		lessonRepo: lessonRepo,
		jobRepo:    jobRepo,
		jobs:       jobSvc,
	}
}

func (s *retryService) RetryLesson(dbc dbctx.Context, lessonID uuid.UUID) error {
	lesson, err := s.lessonRepo.GetByID(dbc, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return fmt.Errorf("lesson %s: %w", lessonID, apperr.ErrNotFound)
	}
	if lesson.Status != domain.LessonStatusSkipped {
		return fmt.Errorf("lesson %s has status %q, only skipped lessons are retryable: %w",
			lessonID, lesson.Status, apperr.ErrInvalidState)
	}

	// A runnable job means someone already retried; resetting again would
	// double-dispatch.
	hasRunnable, err := s.jobRepo.HasRunnableForLesson(dbc, lessonID)
	if err != nil {
		return err
	}
	if hasRunnable {
		return fmt.Errorf("lesson %s already has a generation job in flight: %w",
			lessonID, apperr.ErrInvalidState)
	}

	spec, err := buildLessonSpec(dbc, s.planRepo, lesson)
	if err != nil {
		return err
	}

	if err := s.lessonRepo.UpdateFields(dbc, lessonID, map[string]interface{}{
		"status":      domain.LessonStatusPending,
		"description": "Generating...",
	}); err != nil {
		return fmt.Errorf("reset lesson: %w", err)
	}

	if _, err := s.jobs.Enqueue(dbc, spec); err != nil {
		return fmt.Errorf("enqueue retry job: %w", err)
	}

	s.log.Info("Lesson queued for retry", "lesson_id", lessonID, "plan_id", lesson.PlanID)
	return nil
}

func (s *retryService) RetryAllFailed(dbc dbctx.Context, planID uuid.UUID) (*RetryAllResult, error) {
	plan, err := s.planRepo.GetByID(dbc, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}

	failed, err := s.lessonRepo.ListByPlanAndStatus(dbc, planID, domain.LessonStatusSkipped)
	if err != nil {
		return nil, err
	}

	// Best-effort: one bad lesson must not block the rest of the plan.
	retried := 0
	for _, lesson := range failed {
		if err := s.RetryLesson(dbc, lesson.ID); err != nil {
			s.log.Warn("Failed to retry lesson", "lesson_id", lesson.ID, "error", err)
			continue
		}
		retried++
	}
	return &RetryAllResult{RetriedCount: retried}, nil
}
