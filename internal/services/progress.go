package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

// ProgressSnapshot is derived on demand from the plan's lesson rows. It
// is never cached or persisted, so a poll always sees current state.
type ProgressSnapshot struct {
	Total              int     `json:"total"`
	Completed          int     `json:"completed"`
	InProgress         int     `json:"inProgress"`
	Pending            int     `json:"pending"`
	Failed             int     `json:"failed"`
	Percentage         int     `json:"percentage"`
	CurrentLessonTitle *string `json:"currentLessonTitle"`
}

type ProgressService interface {
	GetPlanProgress(dbc dbctx.Context, planID uuid.UUID) (*ProgressSnapshot, error)
}

type progressService struct {
	db         *gorm.DB
	log        *logger.Logger
	planRepo   plans.PlanRepo
	lessonRepo plans.PlanLessonRepo
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, planRepo plans.PlanRepo, lessonRepo plans.PlanLessonRepo) ProgressService {
	return &progressService{
		db:         db,
		log:        baseLog.With("service", "ProgressService"),
		planRepo:   planRepo,
		lessonRepo: lessonRepo,
	}
}

func (s *progressService) GetPlanProgress(dbc dbctx.Context, planID uuid.UUID) (*ProgressSnapshot, error) {
	plan, err := s.planRepo.GetByID(dbc, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}
	lessons, err := s.lessonRepo.ListByPlan(dbc, planID)
	if err != nil {
		return nil, err
	}
	snapshot := ComputeSnapshot(lessons)
	return &snapshot, nil
}

// ComputeSnapshot aggregates lesson statuses. Lessons must be ordered by
// day_index so currentLessonTitle picks the earliest in-progress lesson.
func ComputeSnapshot(lessons []*domain.PlanLesson) ProgressSnapshot {
	snapshot := ProgressSnapshot{Total: len(lessons)}
	for _, lesson := range lessons {
		switch lesson.Status {
		case domain.LessonStatusCompleted:
			snapshot.Completed++
		case domain.LessonStatusSkipped:
			snapshot.Failed++
		case domain.LessonStatusInProgress:
			snapshot.InProgress++
			if snapshot.CurrentLessonTitle == nil {
				title := lesson.Title
				snapshot.CurrentLessonTitle = &title
			}
		}
	}
	snapshot.Pending = snapshot.Total - snapshot.Completed - snapshot.Failed - snapshot.InProgress
	if snapshot.Total > 0 {
		snapshot.Percentage = int(math.Round(100 * float64(snapshot.Completed) / float64(snapshot.Total)))
	}
	return snapshot
}
