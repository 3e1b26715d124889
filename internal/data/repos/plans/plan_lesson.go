package plans

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type PlanLessonRepo interface {
	Create(dbc dbctx.Context, lessons []*domain.PlanLesson) ([]*domain.PlanLesson, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PlanLesson, error)
	ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*domain.PlanLesson, error)
	ListByPlanAndStatus(dbc dbctx.Context, planID uuid.UUID, status string) ([]*domain.PlanLesson, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type planLessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanLessonRepo(db *gorm.DB, baseLog *logger.Logger) PlanLessonRepo {
	return &planLessonRepo{
		db:  db,
		log: baseLog.With("repo", "PlanLessonRepo"),
	}
}

func (r *planLessonRepo) Create(dbc dbctx.Context, lessons []*domain.PlanLesson) ([]*domain.PlanLesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(lessons) == 0 {
		return []*domain.PlanLesson{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *planLessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PlanLesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var lesson domain.PlanLesson
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *planLessonRepo) ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*domain.PlanLesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.PlanLesson
	if planID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("plan_id = ?", planID).
		Order("day_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planLessonRepo) ListByPlanAndStatus(dbc dbctx.Context, planID uuid.UUID, status string) ([]*domain.PlanLesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.PlanLesson
	if planID == uuid.Nil || status == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("plan_id = ? AND status = ?", planID, status).
		Order("day_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planLessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&domain.PlanLesson{}).
		Where("id = ?", id).
		Updates(updates).Error
}
