package tts

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

// DefaultVoice is the single-speaker voice used when a segment has no
// dialogue transcript.
const DefaultVoice = "p225"

// Client calls the external text-to-speech service. Two modes: plain text
// with one voice, or a multi-turn transcript rendered with one voice per
// speaker. The orchestrator owns the audio_ref write; this client only
// returns the reference.
type Client interface {
	SynthesizeText(ctx context.Context, req TextRequest) (*Result, error)
	SynthesizeDialogue(ctx context.Context, req DialogueRequest) (*Result, error)
}

type TextRequest struct {
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	UserID    string `json:"user_id"`
	EpisodeID string `json:"episode_id"`
}

type DialogueRequest struct {
	Transcript []domain.DialogueTurn `json:"transcript"`
	UserID     string                `json:"user_id"`
	EpisodeID  string                `json:"episode_id"`
}

// Result carries the audio reference: a URL when the service uploaded the
// file, or raw base64 bytes when it did not.
type Result struct {
	AudioURL    string `json:"audio_url"`
	AudioBase64 string `json:"audio_base64"`
	Mode        string `json:"mode"` // simple|dialogue
}

type synthesizeResponse struct {
	Success     bool   `json:"success"`
	AudioURL    string `json:"audio_url"`
	AudioBase64 string `json:"audio_base64"`
	Mode        string `json:"mode"`
	Error       string `json:"error"`
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
		return nil, fmt.Errorf("missing TTS_SERVICE_URL")
	}
	return &client{
		log:        log.With("client", "TTSClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		maxRetries: 2,
	}, nil
}

func (c *client) SynthesizeText(ctx context.Context, req TextRequest) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Upstream("tts", 0, "no text provided")
	}
	if req.Speaker == "" {
		req.Speaker = DefaultVoice
	}
	return c.synthesize(ctx, req)
}

func (c *client) SynthesizeDialogue(ctx context.Context, req DialogueRequest) (*Result, error) {
	if len(req.Transcript) == 0 {
		return nil, apperr.Upstream("tts", 0, "no transcript provided")
	}
	return c.synthesize(ctx, req)
}

func (c *client) synthesize(ctx context.Context, payload any) (*Result, error) {
	ctx = ctxutil.Default(ctx)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	var out synthesizeResponse
	err = retry.Do(
		func() error {
			return c.post(ctx, body, &out)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
	if err != nil {
		return nil, err
	}

	if !out.Success {
		return nil, apperr.Upstream("tts", 0, out.Error)
	}
	if out.AudioURL == "" && out.AudioBase64 == "" {
		return nil, apperr.Upstream("tts", 0, "no audio reference in response")
	}
	return &Result{
		AudioURL:    out.AudioURL,
		AudioBase64: out.AudioBase64,
		Mode:        out.Mode,
	}, nil
}

func (c *client) post(ctx context.Context, body []byte, out *synthesizeResponse) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperr.Upstream("tts", 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return apperr.Upstream("tts", resp.StatusCode, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return apperr.Upstream("tts", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Upstream("tts", resp.StatusCode, fmt.Sprintf("decode response: %v", err))
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
