package openai

import (
	"context"

	"github.com/forPelevin/vidlyze/internal/types"
)

func (a *Adapter) Moderate(ctx context.Context, text string) (types.ModerationResponse, error) {
	payload := map[string]any{
		"model": a.moderationModel,
		"input": text,
	}
	var out types.ModerationResponse
	if err := a.call(ctx, endpointModerations, a.jsonRequest(payload), &out); err != nil {
		return types.ModerationResponse{}, err
	}
	return out, nil
}
