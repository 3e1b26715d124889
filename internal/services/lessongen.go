package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/daydif/daydif-backend/internal/clients/content"
	"github.com/daydif/daydif-backend/internal/clients/tts"
	"github.com/daydif/daydif-backend/internal/data/repos/jobs"
	"github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type GenerateResult struct {
	LessonID     uuid.UUID `json:"lessonId"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	EpisodeCount int       `json:"episodeCount"`
	KeyTakeaways []string  `json:"keyTakeaways"`
}

// LessonGenerationService drives one lesson through its generation state
// machine: one content call, then one TTS call per segment, strictly in
// order. Content failure is terminal for the lesson (skipped); a TTS
// failure only leaves that segment's episode without audio.
type LessonGenerationService interface {
	Run(dbc dbctx.Context, job *domain.AIJob) (*GenerateResult, error)
	GenerateNow(dbc dbctx.Context, lessonID uuid.UUID) (*GenerateResult, error)
}

type lessonGenerationService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    plans.PlanRepo
	lessonRepo  plans.PlanLessonRepo
	episodeRepo plans.EpisodeRepo
	jobRepo     jobs.AIJobRepo
	jobs        JobService
	content     content.Client
	tts         tts.Client
}

func NewLessonGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo plans.PlanRepo,
	lessonRepo plans.PlanLessonRepo,
	episodeRepo plans.EpisodeRepo,
	jobRepo jobs.AIJobRepo,
	jobSvc JobService,
	contentClient content.Client,
	ttsClient tts.Client,
) LessonGenerationService {
	return &lessonGenerationService{
		db:          db,
		log:         baseLog.With("service", "LessonGenerationService"),
		planRepo:    planRepo,
		lessonRepo:  lessonRepo,
		episodeRepo: episodeRepo,
		jobRepo:     jobRepo,
		jobs:        jobSvc,
		content:     contentClient,
		tts:         ttsClient,
	}
}

// GenerateNow runs generation for a lesson synchronously on the caller's
// goroutine. It records a processing job row first so the run is visible
// in the ledger and invisible to the worker pool's claim query.
func (s *lessonGenerationService) GenerateNow(dbc dbctx.Context, lessonID uuid.UUID) (*GenerateResult, error) {
	lesson, err := s.lessonRepo.GetByID(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, apperr.ErrNotFound)
	}
	if lesson.Status == domain.LessonStatusCompleted {
		return nil, fmt.Errorf("lesson %s is already completed: %w", lessonID, apperr.ErrInvalidState)
	}

	// A runnable job means the worker pool will drive this lesson; running
	// here too would generate it twice.
	hasRunnable, err := s.jobRepo.HasRunnableForLesson(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if hasRunnable {
		return nil, fmt.Errorf("lesson %s already has a generation job in flight: %w",
			lessonID, apperr.ErrInvalidState)
	}

	spec, err := buildLessonSpec(dbc, s.planRepo, lesson)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.Start(dbc, spec)
	if err != nil {
		return nil, err
	}
	return s.Run(dbc, job)
}

func (s *lessonGenerationService) Run(dbc dbctx.Context, job *domain.AIJob) (*GenerateResult, error) {
	log := s.log.With("job_id", job.ID, "lesson_id", job.LessonID)

	var spec domain.LessonSpec
	if err := json.Unmarshal(job.Input, &spec); err != nil {
		err = fmt.Errorf("decode lesson spec: %w", err)
		s.fail(dbc, job, err)
		return nil, err
	}

	log.Info("Generating lesson", "lesson_number", spec.LessonNumber, "total_lessons", spec.TotalLessons, "topic", spec.Topic)

	lesson, err := s.content.GenerateLesson(dbc.Ctx, content.GenerateRequest{
		Topic:           spec.Topic,
		LessonNumber:    spec.LessonNumber,
		TotalLessons:    spec.TotalLessons,
		UserLevel:       spec.UserLevel,
		DurationMinutes: spec.DurationMinutes,
		SourceURLs:      spec.SourceURLs,
	})
	if err != nil {
		log.Error("Content generation failed", "error", err)
		s.fail(dbc, job, err)
		return nil, err
	}

	log.Info("Content generated", "title", lesson.Title, "segments", len(lesson.Segments))

	if err := s.lessonRepo.UpdateFields(dbc, job.LessonID, map[string]interface{}{
		"title":       lesson.Title,
		"description": lesson.Summary,
		"status":      domain.LessonStatusInProgress,
	}); err != nil {
		log.Error("Failed to update lesson with generated content", "error", err)
		s.fail(dbc, job, fmt.Errorf("update lesson: %w", err))
		return nil, err
	}

	// Segments are processed one at a time so a plan of many lessons never
	// floods the TTS service. Episode insert happens before the TTS call so
	// the transcript exists even when audio fails.
	episodeCount := 0
	for i, segment := range lesson.Segments {
		episode, err := s.createEpisode(dbc, job, segment, i)
		if err != nil {
			log.Error("Failed to create episode", "order_index", i, "error", err)
			continue
		}
		episodeCount++

		audioRef, err := s.synthesize(dbc, spec, episode.ID, segment)
		if err != nil {
			log.Warn("TTS failed for segment, continuing without audio",
				"order_index", i, "episode_id", episode.ID, "error", err)
			continue
		}
		// The orchestrator is the single writer of audio_ref; re-writing the
		// same URL is harmless.
		if err := s.episodeRepo.UpdateFields(dbc, episode.ID, map[string]interface{}{
			"audio_ref": audioRef,
		}); err != nil {
			log.Warn("Failed to store audio reference", "episode_id", episode.ID, "error", err)
		}
	}

	tags, _ := json.Marshal(lesson.KeyTakeaways)
	if err := s.lessonRepo.UpdateFields(dbc, job.LessonID, map[string]interface{}{
		"status": domain.LessonStatusCompleted,
		"tags":   datatypes.JSON(tags),
	}); err != nil {
		log.Error("Failed to mark lesson completed", "error", err)
		s.fail(dbc, job, fmt.Errorf("complete lesson: %w", err))
		return nil, err
	}

	output, _ := json.Marshal(map[string]any{
		"lesson":       lesson,
		"episodeCount": episodeCount,
	})
	now := time.Now()
	if err := s.jobRepo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status":       domain.JobStatusCompleted,
		"output":       datatypes.JSON(output),
		"completed_at": now,
	}); err != nil {
		log.Error("Failed to mark job completed", "error", err)
	}

	log.Info("Lesson generation complete", "title", lesson.Title, "episodes", episodeCount)

	return &GenerateResult{
		LessonID:     job.LessonID,
		Title:        lesson.Title,
		Summary:      lesson.Summary,
		EpisodeCount: episodeCount,
		KeyTakeaways: lesson.KeyTakeaways,
	}, nil
}

func (s *lessonGenerationService) createEpisode(dbc dbctx.Context, job *domain.AIJob, segment domain.Segment, orderIndex int) (*domain.Episode, error) {
	meta := map[string]any{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if len(segment.Transcript) > 0 {
		speakers := map[string]struct{}{}
		for _, turn := range segment.Transcript {
			speakers[turn.Speaker] = struct{}{}
		}
		meta["transcript"] = segment.Transcript
		meta["has_dialogue"] = true
		meta["speaker_count"] = len(speakers)
	}
	metaJSON, _ := json.Marshal(meta)

	title := segment.Title
	if title == "" {
		title = fmt.Sprintf("Part %d", orderIndex+1)
	}
	duration := segment.DurationEstimate

	episode := &domain.Episode{
		LessonID:        job.LessonID,
		UserID:          job.UserID,
		OrderIndex:      orderIndex,
		Type:            segment.Type,
		Title:           title,
		Body:            segment.Text,
		DurationSeconds: &duration,
		Meta:            datatypes.JSON(metaJSON),
	}
	return s.episodeRepo.Create(dbc, episode)
}

func (s *lessonGenerationService) synthesize(dbc dbctx.Context, spec domain.LessonSpec, episodeID uuid.UUID, segment domain.Segment) (string, error) {
	var result *tts.Result
	var err error
	if len(segment.Transcript) > 0 {
		result, err = s.tts.SynthesizeDialogue(dbc.Ctx, tts.DialogueRequest{
			Transcript: segment.Transcript,
			UserID:     spec.UserID,
			EpisodeID:  episodeID.String(),
		})
	} else {
		result, err = s.tts.SynthesizeText(dbc.Ctx, tts.TextRequest{
			Text:      segment.Text,
			Speaker:   tts.DefaultVoice,
			UserID:    spec.UserID,
			EpisodeID: episodeID.String(),
		})
	}
	if err != nil {
		return "", err
	}
	if result.AudioURL != "" {
		return result.AudioURL, nil
	}
	// Service returned raw audio instead of uploading it.
	return "data:audio/wav;base64," + result.AudioBase64, nil
}

// fail marks the lesson skipped and the job failed. Both writes are
// best-effort: the job is already lost, the point is leaving the lesson
// in a retryable state with the error visible in the ledger.
func (s *lessonGenerationService) fail(dbc dbctx.Context, job *domain.AIJob, cause error) {
	if err := s.lessonRepo.UpdateFields(dbc, job.LessonID, map[string]interface{}{
		"status":      domain.LessonStatusSkipped,
		"description": fmt.Sprintf("Generation failed: %s", cause.Error()),
	}); err != nil {
		s.log.Error("Failed to mark lesson skipped", "lesson_id", job.LessonID, "error", err)
	}
	now := time.Now()
	if err := s.jobRepo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status":        domain.JobStatusFailed,
		"error":         cause.Error(),
		"last_error_at": now,
	}); err != nil {
		s.log.Error("Failed to mark job failed", "job_id", job.ID, "error", err)
	}
}
