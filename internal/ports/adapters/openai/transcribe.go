package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/vidlyze/internal/types"
)

// Transcribe uploads the audio file and asks for word-level timestamps.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcription, error) {
	build := func(ctx context.Context, url string) (*http.Request, error) {
		f, err := os.Open(audioPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			return nil, fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(fw, f); err != nil {
			return nil, fmt.Errorf("copy audio: %w", err)
		}
		fields := [][2]string{
			{"model", a.transcribeModel},
			{"response_format", "verbose_json"},
			{"timestamp_granularities[]", "word"},
		}
		for _, kv := range fields {
			if err := w.WriteField(kv[0], kv[1]); err != nil {
				return nil, fmt.Errorf("write %s: %w", kv[0], err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finalize multipart: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	}

	var tr types.Transcription
	if err := a.call(ctx, endpointTranscriptions, build, &tr); err != nil {
		return types.Transcription{}, err
	}
	tr.Text = strings.TrimSpace(tr.Text)
	for i := range tr.Words {
		tr.Words[i].Word = strings.TrimSpace(tr.Words[i].Word)
	}
	return tr, nil
}
