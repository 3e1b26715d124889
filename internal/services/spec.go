package services

import (
	"encoding/json"
	"fmt"

	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
)

// buildLessonSpec reconstructs the generation input for a lesson from
// the lesson row and its plan's meta. Used whenever a job is created for
// an existing lesson rather than at plan creation.
func buildLessonSpec(dbc dbctx.Context, planRepo plans.PlanRepo, lesson *domain.PlanLesson) (domain.LessonSpec, error) {
	plan, err := planRepo.GetByID(dbc, lesson.PlanID)
	if err != nil {
		return domain.LessonSpec{}, err
	}
	if plan == nil {
		return domain.LessonSpec{}, fmt.Errorf("plan %s: %w", lesson.PlanID, apperr.ErrNotFound)
	}

	var meta struct {
		Topic          string `json:"topic"`
		UserLevel      string `json:"userLevel"`
		LessonDuration int    `json:"lessonDuration"`
	}
	if len(plan.Meta) > 0 {
		_ = json.Unmarshal(plan.Meta, &meta)
	}
	topic := meta.Topic
	if topic == "" {
		topic = lesson.PrimaryTopic
	}
	durationMinutes := meta.LessonDuration
	if durationMinutes <= 0 && plan.LessonsGoal > 0 {
		durationMinutes = plan.MinutesGoal / plan.LessonsGoal
	}

	return domain.LessonSpec{
		PlanID:          plan.ID.String(),
		LessonID:        lesson.ID.String(),
		Topic:           topic,
		LessonNumber:    lesson.DayIndex + 1,
		TotalLessons:    plan.LessonsGoal,
		UserLevel:       meta.UserLevel,
		DurationMinutes: durationMinutes,
		UserID:          lesson.UserID.String(),
	}, nil
}
