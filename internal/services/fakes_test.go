package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/daydif/daydif-backend/internal/clients/content"
	"github.com/daydif/daydif-backend/internal/clients/tts"
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*domain.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[uuid.UUID]*domain.Plan{}}
}

func (r *fakePlanRepo) Create(_ dbctx.Context, plan *domain.Plan) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	r.plans[plan.ID] = plan
	return plan, nil
}

func (r *fakePlanRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plans[id], nil
}

func (r *fakePlanRepo) ListByUser(_ dbctx.Context, userID uuid.UUID) ([]*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Plan
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.plans[id]
	if p == nil {
		return nil
	}
	if v, ok := updates["status"].(string); ok {
		p.Status = v
	}
	return nil
}

type fakeLessonRepo struct {
	mu      sync.Mutex
	lessons map[uuid.UUID]*domain.PlanLesson
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: map[uuid.UUID]*domain.PlanLesson{}}
}

func (r *fakeLessonRepo) Create(_ dbctx.Context, lessons []*domain.PlanLesson) ([]*domain.PlanLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lessons {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		r.lessons[l.ID] = l
	}
	return lessons, nil
}

func (r *fakeLessonRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.PlanLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lessons[id], nil
}

func (r *fakeLessonRepo) ListByPlan(_ dbctx.Context, planID uuid.UUID) ([]*domain.PlanLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PlanLesson
	for _, l := range r.lessons {
		if l.PlanID == planID {
			out = append(out, l)
		}
	}
	sortLessons(out)
	return out, nil
}

func (r *fakeLessonRepo) ListByPlanAndStatus(_ dbctx.Context, planID uuid.UUID, status string) ([]*domain.PlanLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PlanLesson
	for _, l := range r.lessons {
		if l.PlanID == planID && l.Status == status {
			out = append(out, l)
		}
	}
	sortLessons(out)
	return out, nil
}

func (r *fakeLessonRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.lessons[id]
	if l == nil {
		return nil
	}
	if v, ok := updates["status"].(string); ok {
		l.Status = v
	}
	if v, ok := updates["title"].(string); ok {
		l.Title = v
	}
	if v, ok := updates["description"].(string); ok {
		l.Description = v
	}
	if v, ok := updates["tags"].(datatypes.JSON); ok {
		l.Tags = v
	}
	return nil
}

func sortLessons(lessons []*domain.PlanLesson) {
	for i := 1; i < len(lessons); i++ {
		for j := i; j > 0 && lessons[j-1].DayIndex > lessons[j].DayIndex; j-- {
			lessons[j-1], lessons[j] = lessons[j], lessons[j-1]
		}
	}
}

type fakeEpisodeRepo struct {
	mu       sync.Mutex
	episodes []*domain.Episode
}

func newFakeEpisodeRepo() *fakeEpisodeRepo {
	return &fakeEpisodeRepo{}
}

func (r *fakeEpisodeRepo) Create(_ dbctx.Context, episode *domain.Episode) (*domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if episode.ID == uuid.Nil {
		episode.ID = uuid.New()
	}
	r.episodes = append(r.episodes, episode)
	return episode, nil
}

func (r *fakeEpisodeRepo) ListByLesson(_ dbctx.Context, lessonID uuid.UUID) ([]*domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Episode
	for _, ep := range r.episodes {
		if ep.LessonID == lessonID {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (r *fakeEpisodeRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ep := range r.episodes {
		if ep.ID != id {
			continue
		}
		if v, ok := updates["audio_ref"].(string); ok {
			ref := v
			ep.AudioRef = &ref
		}
	}
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.AIJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]*domain.AIJob{}}
}

func (r *fakeJobRepo) Create(_ dbctx.Context, jobs []*domain.AIJob) ([]*domain.AIJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range jobs {
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		r.jobs[j.ID] = j
	}
	return jobs, nil
}

func (r *fakeJobRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.AIJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id], nil
}

func (r *fakeJobRepo) ListByLesson(_ dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error) {
	return r.listByLesson(lessonID, "")
}

func (r *fakeJobRepo) ListFailedByLesson(_ dbctx.Context, lessonID uuid.UUID) ([]*domain.AIJob, error) {
	return r.listByLesson(lessonID, domain.JobStatusFailed)
}

func (r *fakeJobRepo) listByLesson(lessonID uuid.UUID, status string) ([]*domain.AIJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AIJob
	for _, j := range r.jobs {
		if j.LessonID != lessonID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *fakeJobRepo) ClaimNextRunnable(_ dbctx.Context, _ time.Duration) (*domain.AIJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Status == domain.JobStatusPending {
			now := time.Now()
			j.Status = domain.JobStatusProcessing
			j.Attempts++
			j.LockedAt = &now
			j.HeartbeatAt = &now
			return j, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.jobs[id]
	if j == nil {
		return nil
	}
	if v, ok := updates["status"].(string); ok {
		j.Status = v
	}
	if v, ok := updates["error"].(string); ok {
		j.Error = v
	}
	if v, ok := updates["output"].(datatypes.JSON); ok {
		j.Output = v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		j.CompletedAt = &v
	}
	if v, ok := updates["last_error_at"].(time.Time); ok {
		j.LastErrorAt = &v
	}
	return nil
}

func (r *fakeJobRepo) Heartbeat(_ dbctx.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.jobs[id]
	if j != nil && j.Status == domain.JobStatusProcessing {
		now := time.Now()
		j.HeartbeatAt = &now
	}
	return nil
}

func (r *fakeJobRepo) HasRunnableForLesson(_ dbctx.Context, lessonID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.LessonID == lessonID &&
			(j.Status == domain.JobStatusPending || j.Status == domain.JobStatusProcessing) {
			return true, nil
		}
	}
	return false, nil
}

type fakeContentClient struct {
	lesson *domain.LessonContent
	err    error
	calls  int
}

func (c *fakeContentClient) GenerateLesson(_ context.Context, _ content.GenerateRequest) (*domain.LessonContent, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.lesson, nil
}

// fakeTTSClient fails any episode whose text appears in failTexts and
// returns a URL otherwise. With base64Only set it returns raw audio.
type fakeTTSClient struct {
	failTexts  map[string]error
	base64Only bool

	textCalls     int
	dialogueCalls int
}

func (c *fakeTTSClient) SynthesizeText(_ context.Context, req tts.TextRequest) (*tts.Result, error) {
	c.textCalls++
	if err, ok := c.failTexts[req.Text]; ok {
		return nil, err
	}
	if c.base64Only {
		return &tts.Result{AudioBase64: "UklGRg==", Mode: "simple"}, nil
	}
	return &tts.Result{AudioURL: "https://cdn.example.com/audio/" + req.EpisodeID + ".wav", Mode: "simple"}, nil
}

func (c *fakeTTSClient) SynthesizeDialogue(_ context.Context, req tts.DialogueRequest) (*tts.Result, error) {
	c.dialogueCalls++
	return &tts.Result{AudioURL: "https://cdn.example.com/audio/" + req.EpisodeID + ".wav", Mode: "dialogue"}, nil
}
