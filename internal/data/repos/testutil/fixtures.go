package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:    uuid.New(),
		Email: email,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, lessonsGoal int) *domain.Plan {
	tb.Helper()
	today := time.Now().Truncate(24 * time.Hour)
	p := &domain.Plan{
		ID:          uuid.New(),
		UserID:      userID,
		StartDate:   today,
		EndDate:     today.AddDate(0, 0, lessonsGoal),
		LessonsGoal: lessonsGoal,
		MinutesGoal: lessonsGoal * 10,
		Status:      domain.PlanStatusActive,
		Source:      "ai_generated",
		Meta:        datatypes.JSON([]byte(`{"topic":"Spanish basics","lessonDuration":10}`)),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, plan *domain.Plan, dayIndex int, status string) *domain.PlanLesson {
	tb.Helper()
	l := &domain.PlanLesson{
		ID:           uuid.New(),
		PlanID:       plan.ID,
		UserID:       plan.UserID,
		DayIndex:     dayIndex,
		Date:         plan.StartDate.AddDate(0, 0, dayIndex),
		Title:        "lesson",
		Description:  "Generating...",
		PrimaryTopic: "Spanish basics",
		Status:       status,
		Meta:         datatypes.JSON([]byte(`{}`)),
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, lesson *domain.PlanLesson, status string) *domain.AIJob {
	tb.Helper()
	j := &domain.AIJob{
		ID:       uuid.New(),
		UserID:   lesson.UserID,
		PlanID:   lesson.PlanID,
		LessonID: lesson.ID,
		Type:     domain.JobTypeLessonContent,
		Status:   status,
		Input:    datatypes.JSON([]byte(`{}`)),
		Output:   datatypes.JSON([]byte(`{}`)),
	}
	if status == domain.JobStatusProcessing {
		now := time.Now()
		j.Attempts = 1
		j.LockedAt = &now
		j.HeartbeatAt = &now
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func PtrTime(v time.Time) *time.Time { return &v }
