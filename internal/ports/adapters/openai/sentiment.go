package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/vidlyze/internal/domain/sentiment"
)

const (
	sentimentMaxTokens = 10
	sentimentSystem    = "You are a helpful assistant for sentiment analysis."
)

// Classify asks the chat model for a one-word sentiment label. The reply is
// returned trimmed but otherwise unvalidated.
func (a *Adapter) Classify(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"model": a.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": sentimentSystem},
			{"role": "user", "content": buildSentimentPrompt(text)},
		},
		"max_tokens":  sentimentMaxTokens,
		"temperature": 0,
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := a.call(ctx, endpointCompletions, a.jsonRequest(payload), &raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return sentiment.Neutral, nil
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func buildSentimentPrompt(text string) string {
	return "Analyze the sentiment of the following text and categorize it as Positive, Negative, or Neutral." +
		"\n\nText:\n\"" + text + "\""
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case nil:
		return "", nil
	case []any:
		// Some compatible servers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openai: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openai: unexpected content type %T", v)
	}
}
