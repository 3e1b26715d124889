package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type LessonService interface {
	GetLessonByID(dbc dbctx.Context, lessonID uuid.UUID) (*domain.PlanLesson, []*domain.Episode, error)
	ListPlanLessons(dbc dbctx.Context, planID uuid.UUID) ([]*domain.PlanLesson, error)
}

type lessonService struct {
	db          *gorm.DB
	log         *logger.Logger
	lessonRepo  plans.PlanLessonRepo
	episodeRepo plans.EpisodeRepo
}

func NewLessonService(db *gorm.DB, baseLog *logger.Logger, lessonRepo plans.PlanLessonRepo, episodeRepo plans.EpisodeRepo) LessonService {
	return &lessonService{
		db:          db,
		log:         baseLog.With("service", "LessonService"),
		lessonRepo:  lessonRepo,
		episodeRepo: episodeRepo,
	}
}

func (s *lessonService) GetLessonByID(dbc dbctx.Context, lessonID uuid.UUID) (*domain.PlanLesson, []*domain.Episode, error) {
	lesson, err := s.lessonRepo.GetByID(dbc, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if lesson == nil {
		return nil, nil, fmt.Errorf("lesson %s: %w", lessonID, apperr.ErrNotFound)
	}
	episodes, err := s.episodeRepo.ListByLesson(dbc, lessonID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, episodes, nil
}

func (s *lessonService) ListPlanLessons(dbc dbctx.Context, planID uuid.UUID) ([]*domain.PlanLesson, error) {
	return s.lessonRepo.ListByPlan(dbc, planID)
}
