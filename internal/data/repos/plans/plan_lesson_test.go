package plans

import (
	"context"
	"testing"

	"github.com/daydif/daydif-backend/internal/data/repos/testutil"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
)

func TestListByPlan_OrdersByDayIndex(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPlanLessonRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "lesson-order@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 3)
	testutil.SeedLesson(t, ctx, tx, plan, 2, domain.LessonStatusPending)
	testutil.SeedLesson(t, ctx, tx, plan, 0, domain.LessonStatusPending)
	testutil.SeedLesson(t, ctx, tx, plan, 1, domain.LessonStatusPending)

	lessons, err := repo.ListByPlan(dbc, plan.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}
	for i, lesson := range lessons {
		if lesson.DayIndex != i {
			t.Fatalf("position %d holds day_index %d", i, lesson.DayIndex)
		}
	}
}

func TestListByPlanAndStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPlanLessonRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "lesson-status@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 3)
	testutil.SeedLesson(t, ctx, tx, plan, 0, domain.LessonStatusCompleted)
	testutil.SeedLesson(t, ctx, tx, plan, 1, domain.LessonStatusSkipped)
	testutil.SeedLesson(t, ctx, tx, plan, 2, domain.LessonStatusSkipped)

	skipped, err := repo.ListByPlanAndStatus(dbc, plan.ID, domain.LessonStatusSkipped)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped lessons, got %d", len(skipped))
	}
}

func TestUpdateFields_SetsStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPlanLessonRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "lesson-update@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, tx, plan, 0, domain.LessonStatusPending)

	err := repo.UpdateFields(dbc, lesson.ID, map[string]interface{}{
		"status":      domain.LessonStatusInProgress,
		"title":       "Spanish greetings",
		"description": "Common greetings and introductions",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := repo.GetByID(dbc, lesson.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != domain.LessonStatusInProgress {
		t.Fatalf("expected in_progress, got %s", reloaded.Status)
	}
	if reloaded.Title != "Spanish greetings" {
		t.Fatalf("unexpected title %q", reloaded.Title)
	}
}

func TestPlanGetByID_MissingReturnsNil(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPlanRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "plan-missing@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 1)

	got, err := repo.GetByID(dbc, plan.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ID != plan.ID {
		t.Fatal("expected the seeded plan back")
	}

	missing, err := repo.GetByID(dbc, user.ID)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown id")
	}
}
