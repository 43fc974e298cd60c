// Package openai talks to OpenAI-compatible transcription, moderation and
// chat completion endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/vidlyze/internal/metrics"
)

const (
	DefaultTranscribeModel = "whisper-1"
	DefaultModerationModel = "omni-moderation-latest"
	DefaultChatModel       = "gpt-3.5-turbo"

	defaultRequestTimeout = 90 * time.Second

	endpointTranscriptions = "/audio/transcriptions"
	endpointModerations    = "/moderations"
	endpointCompletions    = "/chat/completions"
)

var ErrEmptyBody = errors.New("empty response body")

type Config struct {
	APIKey  string
	BaseURL string

	TranscribeModel string
	ModerationModel string
	ChatModel       string

	// RequestTimeout bounds each call; zero means 90s.
	RequestTimeout time.Duration

	HTTPClient *http.Client
	Logger     *logrus.Logger
	Metrics    *metrics.Metrics
}

type Adapter struct {
	key     string
	baseURL string
	timeout time.Duration

	transcribeModel string
	moderationModel string
	chatModel       string

	client  *http.Client
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func New(cfg Config) *Adapter {
	a := &Adapter{
		key:             cfg.APIKey,
		baseURL:         normalizeBaseURL(cfg.BaseURL),
		timeout:         cfg.RequestTimeout,
		transcribeModel: orDefault(cfg.TranscribeModel, DefaultTranscribeModel),
		moderationModel: orDefault(cfg.ModerationModel, DefaultModerationModel),
		chatModel:       orDefault(cfg.ChatModel, DefaultChatModel),
		client:          cfg.HTTPClient,
		log:             cfg.Logger,
		metrics:         cfg.Metrics,
	}
	if a.timeout <= 0 {
		a.timeout = defaultRequestTimeout
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: 5 * time.Minute}
	}
	if a.log == nil {
		a.log = logrus.New()
		a.log.SetOutput(io.Discard)
	}
	return a
}

// newRequest builds the request for one endpoint; called with the per-call context.
type newRequest func(ctx context.Context, url string) (*http.Request, error)

// call sends one request and decodes a JSON response into out.
func (a *Adapter) call(ctx context.Context, endpoint string, build newRequest, out any) (err error) {
	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		a.metrics.ObserveRequest(strings.TrimPrefix(endpoint, "/"), outcome, time.Since(started))
	}()

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := build(reqCtx, a.baseURL+endpoint)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Accept", "application/json")

	a.log.WithFields(logrus.Fields{"endpoint": endpoint}).Debug("openai request")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return &TimeoutError{Endpoint: endpoint, After: a.timeout}
		}
		return fmt.Errorf("openai %s: %s", endpoint, redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Body:     truncate(redactSecrets(strings.TrimSpace(string(rb)), a.key), 400),
		}
	}
	if len(bytes.TrimSpace(rb)) == 0 {
		return fmt.Errorf("openai %s: %w", endpoint, ErrEmptyBody)
	}
	if err := json.Unmarshal(rb, out); err != nil {
		return fmt.Errorf("openai %s: decode response: %w", endpoint, err)
	}

	a.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"took":     time.Since(started).Round(time.Millisecond).String(),
	}).Debug("openai response")
	return nil
}

func (a *Adapter) jsonRequest(payload any) newRequest {
	return func(ctx context.Context, url string) (*http.Request, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
}

// StatusError is a non-2xx answer. 429 and 5xx are worth retrying later.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai %s status %d: %s", e.Endpoint, e.Code, e.Body)
}

func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// TimeoutError is a per-call deadline hit while the caller's context was still alive.
type TimeoutError struct {
	Endpoint string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("openai %s timeout after %s", e.Endpoint, e.After)
}

func (e *TimeoutError) Temporary() bool { return true }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
	openAIKeyRE   = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = openAIKeyRE.ReplaceAllString(out, "[REDACTED]")
	return out
}
