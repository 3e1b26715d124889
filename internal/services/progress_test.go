package services

import (
	"testing"

	"github.com/daydif/daydif-backend/internal/domain"
)

func lessonWithStatus(dayIndex int, title, status string) *domain.PlanLesson {
	return &domain.PlanLesson{DayIndex: dayIndex, Title: title, Status: status}
}

func TestComputeSnapshot_Empty(t *testing.T) {
	snap := ComputeSnapshot(nil)
	if snap.Total != 0 || snap.Percentage != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
	if snap.CurrentLessonTitle != nil {
		t.Fatal("expected nil current lesson title")
	}
}

func TestComputeSnapshot_Mixed(t *testing.T) {
	lessons := []*domain.PlanLesson{
		lessonWithStatus(0, "one", domain.LessonStatusCompleted),
		lessonWithStatus(1, "two", domain.LessonStatusCompleted),
		lessonWithStatus(2, "three", domain.LessonStatusInProgress),
		lessonWithStatus(3, "four", domain.LessonStatusSkipped),
		lessonWithStatus(4, "five", domain.LessonStatusPending),
		lessonWithStatus(5, "six", domain.LessonStatusPending),
	}
	snap := ComputeSnapshot(lessons)
	if snap.Total != 6 || snap.Completed != 2 || snap.InProgress != 1 || snap.Failed != 1 || snap.Pending != 2 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	// 2/6 rounds to 33
	if snap.Percentage != 33 {
		t.Fatalf("expected 33%%, got %d", snap.Percentage)
	}
	if snap.CurrentLessonTitle == nil || *snap.CurrentLessonTitle != "three" {
		t.Fatalf("expected current lesson %q, got %v", "three", snap.CurrentLessonTitle)
	}
}

func TestComputeSnapshot_FirstInProgressWins(t *testing.T) {
	lessons := []*domain.PlanLesson{
		lessonWithStatus(0, "a", domain.LessonStatusCompleted),
		lessonWithStatus(1, "b", domain.LessonStatusInProgress),
		lessonWithStatus(2, "c", domain.LessonStatusInProgress),
	}
	snap := ComputeSnapshot(lessons)
	if snap.CurrentLessonTitle == nil || *snap.CurrentLessonTitle != "b" {
		t.Fatalf("expected earliest in-progress lesson, got %v", snap.CurrentLessonTitle)
	}
}

func TestComputeSnapshot_PercentageRounds(t *testing.T) {
	cases := []struct {
		completed int
		total     int
		want      int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
	}
	for _, tc := range cases {
		var lessons []*domain.PlanLesson
		for i := 0; i < tc.completed; i++ {
			lessons = append(lessons, lessonWithStatus(i, "x", domain.LessonStatusCompleted))
		}
		for i := tc.completed; i < tc.total; i++ {
			lessons = append(lessons, lessonWithStatus(i, "x", domain.LessonStatusPending))
		}
		snap := ComputeSnapshot(lessons)
		if snap.Percentage != tc.want {
			t.Fatalf("%d/%d: expected %d%%, got %d%%", tc.completed, tc.total, tc.want, snap.Percentage)
		}
	}
}
