package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

const (
	minLessonCount     = 1
	maxLessonCount     = 20
	minDurationMinutes = 5
	maxDurationMinutes = 30
	defaultDuration    = 10
)

// lessonDurationMap maps the UI duration-range option to its upper bound
// in minutes.
var lessonDurationMap = map[string]int{
	"5":     5,
	"8-10":  10,
	"10-15": 15,
	"15-20": 20,
}

type CreatePlanInput struct {
	Topic           string `json:"topic"`
	NumberOfLessons int    `json:"numberOfLessons"`
	DurationMinutes int    `json:"durationMinutes"`
	UserLevel       string `json:"userLevel"`
	UserID          string `json:"userId"`

	// Fallback fields from older clients.
	DaysPerWeek    int    `json:"daysPerWeek"`
	LessonDuration string `json:"lessonDuration"`
}

type PlanLessonSummary struct {
	ID       uuid.UUID `json:"id"`
	DayIndex int       `json:"dayIndex"`
	Title    string    `json:"title"`
}

type CreatePlanResult struct {
	PlanID          uuid.UUID           `json:"planId"`
	LessonCount     int                 `json:"lessonCount"`
	DurationMinutes int                 `json:"durationMinutes"`
	Lessons         []PlanLessonSummary `json:"lessons"`
}

// PlanService is the Plan Creator: it validates the request, persists the
// plan and its lesson placeholders atomically, then fans out one
// generation job per lesson without waiting on any of them.
type PlanService interface {
	CreatePlan(dbc dbctx.Context, in CreatePlanInput) (*CreatePlanResult, error)
	GetPlan(dbc dbctx.Context, planID uuid.UUID) (*domain.Plan, error)
}

type planService struct {
	db         *gorm.DB
	log        *logger.Logger
	planRepo   plans.PlanRepo
	lessonRepo plans.PlanLessonRepo
	jobs       JobService
}

func NewPlanService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo plans.PlanRepo,
	lessonRepo plans.PlanLessonRepo,
	jobSvc JobService,
) PlanService {
	return &planService{
		db:         db,
		log:        baseLog.With("service", "PlanService"),
		planRepo:   planRepo,
		lessonRepo: lessonRepo,
		jobs:       jobSvc,
	}
}

func (s *planService) CreatePlan(dbc dbctx.Context, in CreatePlanInput) (*CreatePlanResult, error) {
	if in.Topic == "" {
		return nil, fmt.Errorf("topic is required: %w", apperr.ErrValidation)
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("userId is required: %w", apperr.ErrValidation)
	}

	lessonCount, countDefaulted := resolveLessonCount(in.NumberOfLessons, in.DaysPerWeek)
	durationMinutes, durationDefaulted := resolveDurationMinutes(in.DurationMinutes, in.LessonDuration)
	if countDefaulted && durationDefaulted {
		return nil, fmt.Errorf(
			"numberOfLessons (%d) and durationMinutes (%d) must be valid positive numbers: %w",
			in.NumberOfLessons, in.DurationMinutes, apperr.ErrValidation)
	}
	if countDefaulted {
		s.log.Warn("numberOfLessons invalid, computed from daysPerWeek failed too, using minimum",
			"numberOfLessons", in.NumberOfLessons, "daysPerWeek", in.DaysPerWeek)
	}
	if durationDefaulted {
		s.log.Warn("durationMinutes invalid, using default",
			"durationMinutes", in.DurationMinutes, "lessonDuration", in.LessonDuration)
	}

	meta, _ := json.Marshal(map[string]any{
		"topic":          in.Topic,
		"lessonDuration": durationMinutes,
		"lessonCount":    lessonCount,
		"daysPerWeek":    in.DaysPerWeek,
		"userLevel":      in.UserLevel,
	})

	today := time.Now().Truncate(24 * time.Hour)
	plan := &domain.Plan{
		UserID:      userID,
		StartDate:   today,
		EndDate:     today.AddDate(0, 0, lessonCount),
		LessonsGoal: lessonCount,
		MinutesGoal: lessonCount * durationMinutes,
		Status:      domain.PlanStatusActive,
		Source:      "ai_generated",
		Meta:        datatypes.JSON(meta),
	}

	lessonMeta, _ := json.Marshal(map[string]any{
		"duration_minutes": durationMinutes,
	})

	var lessons []*domain.PlanLesson
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.planRepo.Create(txc, plan); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		lessons = make([]*domain.PlanLesson, 0, lessonCount)
		for i := 0; i < lessonCount; i++ {
			lessons = append(lessons, &domain.PlanLesson{
				PlanID:       plan.ID,
				UserID:       userID,
				DayIndex:     i,
				Date:         today.AddDate(0, 0, i),
				Title:        fmt.Sprintf("%s - Part %d", in.Topic, i+1),
				Description:  "Generating...",
				PrimaryTopic: in.Topic,
				Status:       domain.LessonStatusPending,
				Meta:         datatypes.JSON(lessonMeta),
			})
		}
		if _, err := s.lessonRepo.Create(txc, lessons); err != nil {
			return fmt.Errorf("create lessons: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fan-out after commit. A failed enqueue leaves the lesson pending and
	// reachable through retry, so it never fails plan creation.
	for _, lesson := range lessons {
		spec := domain.LessonSpec{
			PlanID:          plan.ID.String(),
			LessonID:        lesson.ID.String(),
			Topic:           in.Topic,
			LessonNumber:    lesson.DayIndex + 1,
			TotalLessons:    lessonCount,
			UserLevel:       in.UserLevel,
			DurationMinutes: durationMinutes,
			UserID:          userID.String(),
		}
		if _, err := s.jobs.Enqueue(dbctx.Context{Ctx: dbc.Ctx}, spec); err != nil {
			s.log.Error("Failed to enqueue lesson generation job",
				"plan_id", plan.ID, "lesson_id", lesson.ID, "error", err)
		}
	}

	result := &CreatePlanResult{
		PlanID:          plan.ID,
		LessonCount:     len(lessons),
		DurationMinutes: durationMinutes,
		Lessons:         make([]PlanLessonSummary, 0, len(lessons)),
	}
	for _, lesson := range lessons {
		result.Lessons = append(result.Lessons, PlanLessonSummary{
			ID:       lesson.ID,
			DayIndex: lesson.DayIndex,
			Title:    lesson.Title,
		})
	}
	s.log.Info("Plan created", "plan_id", plan.ID, "lesson_count", len(lessons))
	return result, nil
}

func (s *planService) GetPlan(dbc dbctx.Context, planID uuid.UUID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(dbc, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}
	return plan, nil
}

// resolveLessonCount prefers numberOfLessons, falls back to a count
// derived from daysPerWeek, and reports true when both were unusable.
func resolveLessonCount(numberOfLessons, daysPerWeek int) (int, bool) {
	if numberOfLessons > 0 {
		if numberOfLessons > maxLessonCount {
			return maxLessonCount, false
		}
		return numberOfLessons, false
	}
	if daysPerWeek > 0 {
		lessons := daysPerWeek * 2
		if daysPerWeek == 1 {
			lessons = 1
		}
		if lessons > maxLessonCount {
			lessons = maxLessonCount
		}
		return lessons, false
	}
	return minLessonCount, true
}

// resolveDurationMinutes prefers durationMinutes, falls back to the
// duration-range option string, and reports true when both were unusable.
func resolveDurationMinutes(durationMinutes int, lessonDuration string) (int, bool) {
	if durationMinutes > 0 {
		if durationMinutes < minDurationMinutes {
			return minDurationMinutes, false
		}
		if durationMinutes > maxDurationMinutes {
			return maxDurationMinutes, false
		}
		return durationMinutes, false
	}
	if mapped, ok := lessonDurationMap[lessonDuration]; ok {
		return mapped, false
	}
	return defaultDuration, true
}
