package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/data/repos/jobs"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

// JobService owns the ai_job ledger. Enqueue inserts a pending row for the
// worker pool to claim; Start inserts an already-processing row for the
// synchronous generate endpoint.
type JobService interface {
	Enqueue(dbc dbctx.Context, spec domain.LessonSpec) (*domain.AIJob, error)
	Start(dbc dbctx.Context, spec domain.LessonSpec) (*domain.AIJob, error)
	GetByID(dbc dbctx.Context, jobID uuid.UUID) (*domain.AIJob, error)
	ListForLesson(dbc dbctx.Context, lessonID uuid.UUID, status string) ([]*domain.AIJob, error)
}

type jobService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo jobs.AIJobRepo
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo jobs.AIJobRepo) JobService {
	return &jobService{
		db:   db,
		log:  baseLog.With("service", "JobService"),
		repo: repo,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, spec domain.LessonSpec) (*domain.AIJob, error) {
	return s.create(dbc, spec, domain.JobStatusPending)
}

func (s *jobService) Start(dbc dbctx.Context, spec domain.LessonSpec) (*domain.AIJob, error) {
	job, err := s.create(dbc, spec, domain.JobStatusProcessing)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) create(dbc dbctx.Context, spec domain.LessonSpec, status string) (*domain.AIJob, error) {
	userID, err := uuid.Parse(spec.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", spec.UserID, err)
	}
	planID, err := uuid.Parse(spec.PlanID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id %q: %w", spec.PlanID, err)
	}
	lessonID, err := uuid.Parse(spec.LessonID)
	if err != nil {
		return nil, fmt.Errorf("invalid lesson id %q: %w", spec.LessonID, err)
	}

	input, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal lesson spec: %w", err)
	}

	now := time.Now()
	job := &domain.AIJob{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    planID,
		LessonID:  lessonID,
		Type:      domain.JobTypeLessonContent,
		Status:    status,
		Input:     datatypes.JSON(input),
		Output:    datatypes.JSON([]byte(`{}`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == domain.JobStatusProcessing {
		job.Attempts = 1
		job.LockedAt = &now
		job.HeartbeatAt = &now
	}
	if _, err := s.repo.Create(dbc, []*domain.AIJob{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *jobService) GetByID(dbc dbctx.Context, jobID uuid.UUID) (*domain.AIJob, error) {
	return s.repo.GetByID(dbc, jobID)
}

func (s *jobService) ListForLesson(dbc dbctx.Context, lessonID uuid.UUID, status string) ([]*domain.AIJob, error) {
	if status == domain.JobStatusFailed {
		return s.repo.ListFailedByLesson(dbc, lessonID)
	}
	if status == "" {
		return s.repo.ListByLesson(dbc, lessonID)
	}
	all, err := s.repo.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AIJob, 0, len(all))
	for _, j := range all {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}
