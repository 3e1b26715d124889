package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

// AIJobRepo is the ledger and the durable queue in one. Rows are never
// deleted; a retry inserts a fresh row instead of resetting an old one.
type AIJobRepo interface {
	Create(dbc dbctx.Context, jobs []*domain.AIJob) ([]*domain.AIJob, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.AIJob, error)
	ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error)
	ListFailedByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error)
	ClaimNextRunnable(dbc dbctx.Context, staleProcessing time.Duration) (*domain.AIJob, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	HasRunnableForLesson(dbc dbctx.Context, lessonID uuid.UUID) (bool, error)
}

type aiJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIJobRepo(db *gorm.DB, baseLog *logger.Logger) AIJobRepo {
	return &aiJobRepo{
		db:  db,
		log: baseLog.With("repo", "AIJobRepo"),
	}
}

func (r *aiJobRepo) Create(dbc dbctx.Context, jobs []*domain.AIJob) ([]*domain.AIJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(jobs) == 0 {
		return []*domain.AIJob{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *aiJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.AIJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var job domain.AIJob
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *aiJobRepo) ListByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error) {
	return r.listByLesson(dbc, lessonID, "")
}

func (r *aiJobRepo) ListFailedByLesson(dbc dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error) {
	return r.listByLesson(dbc, lessonID, domain.JobStatusFailed)
}

func (r *aiJobRepo) listByLesson(dbc dbctx.Context, lessonID uuid.UUID, status string) ([]*domain.AIJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.AIJob
	if lessonID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("lesson_id = ?", lessonID).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextRunnable picks one pending job (or a processing job whose
// heartbeat went stale, so a crashed worker's claim is recovered) and
// marks it processing. SKIP LOCKED keeps concurrent workers from racing
// on the same row. Failed rows are not reclaimed here: retry is an
// explicit coordinator action that enqueues a fresh row.
func (r *aiJobRepo) ClaimNextRunnable(dbc dbctx.Context, staleProcessing time.Duration) (*domain.AIJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	staleCutoff := now.Add(-staleProcessing)
	var claimed *domain.AIJob
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var job domain.AIJob
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, domain.JobStatusPending, domain.JobStatusProcessing, staleCutoff).
			Order("created_at ASC")
		qErr := q.First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&domain.AIJob{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":       domain.JobStatusProcessing,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		// The caller gets the post-claim view of the row, not the snapshot
		// the SELECT read.
		job.Status = domain.JobStatusProcessing
		job.Attempts++
		job.LockedAt = &now
		job.HeartbeatAt = &now
		job.UpdatedAt = now
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *aiJobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&domain.AIJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *aiJobRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.AIJob{}).
		Where("id = ? AND status = ?", id, domain.JobStatusProcessing).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

// HasRunnableForLesson reports whether a pending or processing job already
// exists for the lesson, so retry never double-dispatches.
func (r *aiJobRepo) HasRunnableForLesson(dbc dbctx.Context, lessonID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if lessonID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.AIJob{}).
		Where("lesson_id = ? AND status IN ?", lessonID,
			[]string{domain.JobStatusPending, domain.JobStatusProcessing}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
