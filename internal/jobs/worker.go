package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	jobrepo "github.com/daydif/daydif-backend/internal/data/repos/jobs"
	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type PoolOptions struct {
	// Concurrency is the number of claim loops. Each loop runs at most one
	// job at a time, so this bounds in-flight generations per process.
	Concurrency int
	// ClaimInterval is how long an idle loop sleeps between claim attempts.
	ClaimInterval time.Duration
	// HeartbeatInterval is how often a running job refreshes heartbeat_at.
	HeartbeatInterval time.Duration
	// StaleProcessing is how long a processing job may go without a
	// heartbeat before another worker may reclaim it.
	StaleProcessing time.Duration
}

func (o *PoolOptions) defaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ClaimInterval <= 0 {
		o.ClaimInterval = 2 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
	if o.StaleProcessing <= 0 {
		o.StaleProcessing = 5 * time.Minute
	}
}

// Pool drains the ai_job queue with a fixed number of workers. Dispatch
// is pull-based: workers claim rows, nothing pushes work at them, so a
// burst of plan creations queues up instead of spawning unbounded calls
// to the generation services.
type Pool struct {
	db         *gorm.DB
	log        *logger.Logger
	jobRepo    jobrepo.AIJobRepo
	lessonRepo plans.PlanLessonRepo
	registry   *Registry
	opts       PoolOptions

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPool(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRepo jobrepo.AIJobRepo,
	lessonRepo plans.PlanLessonRepo,
	registry *Registry,
	opts PoolOptions,
) *Pool {
	opts.defaults()
	return &Pool{
		db:         db,
		log:        baseLog.With("component", "JobPool"),
		jobRepo:    jobRepo,
		lessonRepo: lessonRepo,
		registry:   registry,
		opts:       opts,
	}
}

// Start launches the claim loops. It returns immediately; call Stop to
// drain and wait.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < p.opts.Concurrency; i++ {
		workerID := i
		g.Go(func() error {
			p.claimLoop(gctx, workerID)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(p.done)
	}()
	p.log.Info("Job pool started",
		"concurrency", p.opts.Concurrency,
		"claim_interval", p.opts.ClaimInterval,
		"stale_processing", p.opts.StaleProcessing)
}

// Stop cancels the claim loops and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.log.Info("Job pool stopped")
}

func (p *Pool) claimLoop(ctx context.Context, workerID int) {
	log := p.log.With("worker", workerID)
	ticker := time.NewTicker(p.opts.ClaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// Drain until empty before going back to sleep.
		for {
			job, err := p.jobRepo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, p.opts.StaleProcessing)
			if err != nil {
				log.Error("Failed to claim job", "error", err)
				break
			}
			if job == nil {
				break
			}
			p.runJob(ctx, log, job)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (p *Pool) runJob(ctx context.Context, log *logger.Logger, job *domain.AIJob) {
	log = log.With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts)
	log.Info("Job claimed")

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go p.heartbeatLoop(hbCtx, job.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Job handler panicked", "panic", r)
			p.failPanicked(ctx, job, fmt.Errorf("handler panicked: %v", r))
		}
	}()

	handler, err := p.registry.Resolve(job.Type)
	if err != nil {
		log.Error("Unroutable job", "error", err)
		p.failPanicked(ctx, job, err)
		return
	}

	if err := handler.Handle(dbctx.Context{Ctx: ctx}, job); err != nil {
		// The handler already recorded the failure; this is just the worker's
		// view for the logs.
		log.Warn("Job finished with error", "error", err)
		return
	}
	log.Info("Job finished")
}

func (p *Pool) heartbeatLoop(ctx context.Context, jobID uuid.UUID) {
	ticker := time.NewTicker(p.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := p.jobRepo.Heartbeat(dbctx.Context{Ctx: ctx}, jobID); err != nil {
			p.log.Warn("Heartbeat failed", "job_id", jobID, "error", err)
		}
	}
}

// failPanicked covers the one case the handler cannot: marking state
// after its own goroutine blew up. Uses a fresh context so shutdown
// cancellation does not lose the writes.
func (p *Pool) failPanicked(ctx context.Context, job *domain.AIJob, cause error) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	dbc := dbctx.Context{Ctx: writeCtx}

	now := time.Now()
	if err := p.jobRepo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status":        domain.JobStatusFailed,
		"error":         cause.Error(),
		"last_error_at": now,
	}); err != nil {
		p.log.Error("Failed to mark panicked job failed", "job_id", job.ID, "error", err)
	}
	if err := p.lessonRepo.UpdateFields(dbc, job.LessonID, map[string]interface{}{
		"status":      domain.LessonStatusSkipped,
		"description": fmt.Sprintf("Generation failed: %s", cause.Error()),
	}); err != nil {
		p.log.Error("Failed to mark lesson skipped after panic", "lesson_id", job.LessonID, "error", err)
	}
}
