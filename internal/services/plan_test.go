package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
)

func TestResolveLessonCount(t *testing.T) {
	cases := []struct {
		name            string
		numberOfLessons int
		daysPerWeek     int
		want            int
		wantDefaulted   bool
	}{
		{"explicit", 7, 0, 7, false},
		{"clamped to max", 50, 0, 20, false},
		{"fallback from daysPerWeek", 0, 3, 6, false},
		{"daysPerWeek of one", 0, 1, 1, false},
		{"fallback clamped", 0, 14, 20, false},
		{"both unusable", 0, 0, 1, true},
		{"negative treated as unset", -3, 0, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, defaulted := resolveLessonCount(tc.numberOfLessons, tc.daysPerWeek)
			if got != tc.want || defaulted != tc.wantDefaulted {
				t.Fatalf("got (%d, %v), want (%d, %v)", got, defaulted, tc.want, tc.wantDefaulted)
			}
		})
	}
}

func TestResolveDurationMinutes(t *testing.T) {
	cases := []struct {
		name            string
		durationMinutes int
		lessonDuration  string
		want            int
		wantDefaulted   bool
	}{
		{"explicit", 15, "", 15, false},
		{"clamped low", 2, "", 5, false},
		{"clamped high", 90, "", 30, false},
		{"range 5", 0, "5", 5, false},
		{"range 8-10", 0, "8-10", 10, false},
		{"range 10-15", 0, "10-15", 15, false},
		{"range 15-20", 0, "15-20", 20, false},
		{"unknown range", 0, "45-60", 10, true},
		{"both unusable", 0, "", 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, defaulted := resolveDurationMinutes(tc.durationMinutes, tc.lessonDuration)
			if got != tc.want || defaulted != tc.wantDefaulted {
				t.Fatalf("got (%d, %v), want (%d, %v)", got, defaulted, tc.want, tc.wantDefaulted)
			}
		})
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	log := newTestLogger(t)
	jobRepo := newFakeJobRepo()
	jobSvc := NewJobService(nil, log, jobRepo)
	svc := NewPlanService(nil, log, newFakePlanRepo(), newFakeLessonRepo(), jobSvc)
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.CreatePlan(dbc, CreatePlanInput{UserID: uuid.NewString()})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing topic: expected validation error, got %v", err)
	}

	_, err = svc.CreatePlan(dbc, CreatePlanInput{Topic: "Spanish", UserID: "not-a-uuid"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad user id: expected validation error, got %v", err)
	}

	_, err = svc.CreatePlan(dbc, CreatePlanInput{Topic: "Spanish", UserID: uuid.NewString()})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("both count and duration unusable: expected validation error, got %v", err)
	}
}
