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

type PlanRepo interface {
	Create(dbc dbctx.Context, plan *domain.Plan) (*domain.Plan, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Plan, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Plan, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{
		db:  db,
		log: baseLog.With("repo", "PlanRepo"),
	}
}

func (r *planRepo) Create(dbc dbctx.Context, plan *domain.Plan) (*domain.Plan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if plan == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Plan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var plan domain.Plan
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Plan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Plan
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&domain.Plan{}).
		Where("id = ?", id).
		Updates(updates).Error
}
