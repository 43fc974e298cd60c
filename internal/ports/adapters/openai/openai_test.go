package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/vidlyze/internal/metrics"
)

const testKey = "sk-test-0123456789abcdef"

func newTestAdapter(t *testing.T, h http.HandlerFunc) (*Adapter, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := metrics.New()
	return New(Config{
		APIKey:         testKey,
		BaseURL:        srv.URL + "/v1/",
		RequestTimeout: 2 * time.Second,
		HTTPClient:     srv.Client(),
		Metrics:        m,
	}), m
}

func TestTranscribe_MultipartRequest(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "clip.m4a")
	require.NoError(t, os.WriteFile(audio, []byte("fake-audio"), 0o644))

	a, m := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, DefaultTranscribeModel, r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "word", r.FormValue("timestamp_granularities[]"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.m4a", hdr.Filename)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "fake-audio", string(b))

		_, _ = io.WriteString(w, `{"task":"transcribe","text":" hello there ","language":"english","duration":2.5,
			"words":[{"word":" hello","start":0.1,"end":0.5},{"word":"there","start":0.6,"end":1.0}]}`)
	})

	tr, err := a.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "hello there", tr.Text)
	assert.Equal(t, "english", tr.Language)
	require.NotNil(t, tr.Duration)
	assert.Equal(t, 2.5, *tr.Duration)
	require.Len(t, tr.Words, 2)
	assert.Equal(t, "hello", tr.Words[0].Word)

	n, err := testutil.GatherAndCount(m.Gatherer(), "vidlyze_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTranscribe_MissingFile(t *testing.T) {
	a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := a.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.m4a"))
	require.Error(t, err)
}

func TestModerate_WireNames(t *testing.T) {
	a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/moderations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModerationModel, body["model"])
		assert.Equal(t, "some text", body["input"])

		_, _ = io.WriteString(w, `{"id":"modr-1","results":[{"flagged":true,
			"categories":{"sexual":false,"hate":false,"harassment":true,"self-harm":true,"violence":false,
				"illicit":false,"harassment/threatening":true,"hate/threatening":false,"illicit/violent":true,
				"violence/graphic":true,"sexual/minors":false,"self-harm/intent":true,"self-harm/instructions":true},
			"category_scores":{"harassment":0.91,"self-harm/intent":0.42}}]}`)
	})

	resp, err := a.Moderate(context.Background(), "some text")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	r := resp.Results[0]
	assert.True(t, r.Flagged)
	assert.True(t, r.Categories.Harassment)
	assert.True(t, r.Categories.SelfHarm)
	assert.True(t, r.Categories.HarassmentThreatening)
	assert.True(t, r.Categories.IllicitViolent)
	assert.True(t, r.Categories.ViolenceGraphic)
	assert.True(t, r.Categories.SelfHarmIntent)
	assert.True(t, r.Categories.SelfHarmInstructions)
	assert.False(t, r.Categories.Hate)
	assert.True(t, r.Categories.Flag("self-harm/intent"))
	assert.Equal(t, 0.91, r.CategoryScores.Harassment)
	assert.Equal(t, 0.42, r.CategoryScores.SelfHarmIntent)
}

func TestClassify_Request(t *testing.T) {
	a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var body struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultChatModel, body.Model)
		assert.Equal(t, sentimentMaxTokens, body.MaxTokens)
		assert.Zero(t, body.Temperature)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Contains(t, body.Messages[1].Content, `"what a day"`)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Positive\n"}}]}`)
	})

	label, err := a.Classify(context.Background(), "what a day")
	require.NoError(t, err)
	assert.Equal(t, "Positive", label)
}

func TestClassify_Responses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"no choices", `{"choices":[]}`, "Neutral", false},
		{"nonstandard label", `{"choices":[{"message":{"role":"assistant","content":"Mostly upbeat"}}]}`, "Mostly upbeat", false},
		{"content parts", `{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"Negative"}]}}]}`, "Negative", false},
		{"malformed", `{"choices":`, "", true},
		{"wrong schema", `{"choices":{"x":1}}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := a.Classify(context.Background(), "x")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCall_EmptyBody(t *testing.T) {
	a, m := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, err := a.Moderate(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyBody))

	out, gerr := testutil.GatherAndCount(m.Gatherer(), "vidlyze_api_request_duration_seconds")
	require.NoError(t, gerr)
	assert.Equal(t, 1, out)
}

func TestCall_StatusErrorIsRedacted(t *testing.T) {
	a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"rate limited for key `+testKey+`"}`)
	})
	_, err := a.Moderate(context.Background(), "x")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, se.Temporary())
	assert.NotContains(t, err.Error(), testKey)
	assert.Contains(t, err.Error(), "[REDACTED]")
}

func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	a := New(Config{APIKey: testKey, BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond})
	_, err := a.Moderate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout after")
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Temporary())
}

func TestCall_CallerCancellation(t *testing.T) {
	a, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Moderate(ctx, "x")
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "timeout after"))
}

func TestRedactSecrets(t *testing.T) {
	in := `status 401; Authorization: Bearer ` + testKey + `; api_key=` + testKey
	got := redactSecrets(in, testKey)
	assert.NotContains(t, got, testKey)
	assert.Contains(t, got, "Authorization: [REDACTED]")
	assert.Contains(t, got, "api_key=[REDACTED]")

	assert.Equal(t, "key [REDACTED] leaked", redactSecrets("key sk-abcdefghijkl leaked", ""))
}
