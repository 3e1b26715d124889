package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/apperr"
	"github.com/daydif/daydif-backend/internal/platform/ctxutil"
	"github.com/daydif/daydif-backend/internal/platform/httpx"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

// Client calls the external lesson-content generation service. The
// service is an opaque HTTP endpoint returning a fully structured lesson.
type Client interface {
	GenerateLesson(ctx context.Context, req GenerateRequest) (*domain.LessonContent, error)
}

type GenerateRequest struct {
	Topic           string   `json:"topic"`
	LessonNumber    int      `json:"lesson_number"`
	TotalLessons    int      `json:"total_lessons"`
	UserLevel       string   `json:"user_level"`
	DurationMinutes int      `json:"duration_minutes"`
	SourceURLs      []string `json:"source_urls"`
	Style           string   `json:"style"`
}

type generateResponse struct {
	Success bool                  `json:"success"`
	Lesson  *domain.LessonContent `json:"lesson"`
	Error   string                `json:"error"`
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries uint
}

func NewClient(baseURL string, log *logger.Logger) (Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("missing CONTENT_SERVICE_URL")
	}
	return &client{
		log:        log.With("client", "ContentClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		maxRetries: 3,
	}, nil
}

func (c *client) GenerateLesson(ctx context.Context, req GenerateRequest) (*domain.LessonContent, error) {
	ctx = ctxutil.Default(ctx)
	if req.Style == "" {
		req.Style = "conversational"
	}
	if req.SourceURLs == nil {
		req.SourceURLs = []string{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal content request: %w", err)
	}

	var out generateResponse
	err = retry.Do(
		func() error {
			return c.post(ctx, body, &out)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
	if err != nil {
		return nil, err
	}

	if !out.Success {
		return nil, apperr.Upstream("content", 0, out.Error)
	}
	if out.Lesson == nil || len(out.Lesson.Segments) == 0 {
		return nil, apperr.Upstream("content", 0, "empty lesson in response")
	}
	return out.Lesson, nil
}

func (c *client) post(ctx context.Context, body []byte, out *generateResponse) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build content request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperr.Upstream("content", 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return apperr.Upstream("content", resp.StatusCode, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return apperr.Upstream("content", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Upstream("content", resp.StatusCode, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

func isRetryable(err error) bool {
	var ue *apperr.UpstreamError
	if errors.As(err, &ue) {
		if ue.Status > 0 {
			return httpx.IsRetryableHTTPStatus(ue.Status)
		}
		return true
	}
	return httpx.IsRetryableError(err)
}
