package plans

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type EpisodeRepo interface {
	Create(dbc dbctx.Context, episode *domain.Episode) (*domain.Episode, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.Episode, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	return &episodeRepo{
		db:  db,
		log: baseLog.With("repo", "EpisodeRepo"),
	}
}

func (r *episodeRepo) Create(dbc dbctx.Context, episode *domain.Episode) (*domain.Episode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if episode == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(episode).Error; err != nil {
		return nil, err
	}
	return episode, nil
}

func (r *episodeRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.Episode, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Episode
	if lessonID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("lesson_id = ?", lessonID).
		Order("order_index ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *episodeRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.Episode{}).
		Where("id = ?", id).
		Updates(updates).Error
}
