package plans

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/daydif/daydif-backend/internal/data/repos/testutil"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
)

func TestEpisodeListByLesson_OrdersByOrderIndex(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEpisodeRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "episode-order@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, tx, plan, 0, domain.LessonStatusInProgress)

	for _, idx := range []int{2, 0, 1} {
		_, err := repo.Create(dbc, &domain.Episode{
			LessonID:   lesson.ID,
			UserID:     user.ID,
			OrderIndex: idx,
			Type:       "intro",
			Title:      "part",
			Body:       "text",
			Meta:       datatypes.JSON([]byte(`{}`)),
		})
		if err != nil {
			t.Fatalf("create episode %d: %v", idx, err)
		}
	}

	episodes, err := repo.ListByLesson(dbc, lesson.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(episodes))
	}
	for i, ep := range episodes {
		if ep.OrderIndex != i {
			t.Fatalf("position %d holds order_index %d", i, ep.OrderIndex)
		}
	}
}

func TestEpisodeUpdateFields_SetsAudioRef(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEpisodeRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "episode-audio@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, user.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, tx, plan, 0, domain.LessonStatusInProgress)

	ep, err := repo.Create(dbc, &domain.Episode{
		LessonID:   lesson.ID,
		UserID:     user.ID,
		OrderIndex: 0,
		Title:      "part",
		Meta:       datatypes.JSON([]byte(`{}`)),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ep.AudioRef != nil {
		t.Fatal("audio_ref must start unset")
	}

	if err := repo.UpdateFields(dbc, ep.ID, map[string]interface{}{
		"audio_ref": "https://cdn.example.com/audio/abc.wav",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	episodes, err := repo.ListByLesson(dbc, lesson.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if episodes[0].AudioRef == nil || *episodes[0].AudioRef != "https://cdn.example.com/audio/abc.wav" {
		t.Fatal("expected audio_ref to be stored")
	}
}
