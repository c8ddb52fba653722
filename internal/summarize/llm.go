// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

const rephraseInstructions = `You rephrase JSON summary bullets for readability.

CRITICAL RULES:
1. NEVER invent fields, values, or entities that are not in the input bullets.
2. ALWAYS preserve exact numbers, names, and values.
3. Return exactly one rephrased line per input bullet, in the same order.
4. Rephrase for clarity only; never add new facts.`

// rephraseSchema constrains the model to a bullets-only JSON object so
// a response can be mapped one-to-one back onto the deterministic
// bullets.
var rephraseSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"bullets"},
	"properties": map[string]any{
		"bullets": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

type rephraseResponse struct {
	Bullets []string `json:"bullets"`
}

// LLM wraps the deterministic engine and rephrases its bullet texts
// with a language model. Citations and evidence are never touched, so
// every claim stays backed by the deterministic extraction. Any
// provider failure falls back to the unmodified deterministic bundle.
type LLM struct {
	base Deterministic
}

func (LLM) Name() string { return types.EngineLLM }

func (e LLM) Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error) {
	bundle, err := e.base.Summarize(ctx, req, cfg)
	if err != nil {
		return bundle, err
	}
	return rephraseBundle(ctx, bundle, cfg, types.EngineLLM)
}

// Hybrid behaves like LLM but advertises itself separately so request
// routing can distinguish "always rephrase" deployments from ones that
// opted in per request.
type Hybrid struct {
	base Deterministic
}

func (Hybrid) Name() string { return types.EngineHybrid }

func (e Hybrid) Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error) {
	bundle, err := e.base.Summarize(ctx, req, cfg)
	if err != nil {
		return bundle, err
	}
	return rephraseBundle(ctx, bundle, cfg, types.EngineHybrid)
}

func rephraseBundle(ctx context.Context, bundle types.EvidenceBundle, cfg types.Config, engineName string) (types.EvidenceBundle, error) {
	texts, err := rephraseTexts(ctx, bundle, cfg.LLM)
	if err != nil {
		if !cfg.LLM.FallbackToDeterministic {
			return types.EvidenceBundle{}, fmt.Errorf("llm rephrase: %w", err)
		}
		bundle.Metadata["llm_fallback"] = err.Error()
		return bundle, nil
	}
	for i := range bundle.Bullets {
		bundle.Bullets[i].Evidence["deterministic_text"] = bundle.Bullets[i].Text
		bundle.Bullets[i].Text = texts[i]
	}
	bundle.Engine = engineName
	return bundle, nil
}

func rephraseTexts(ctx context.Context, bundle types.EvidenceBundle, cfg types.LLMConfig) ([]string, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return nil, errors.New("no llm provider configured")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key not configured")
	}
	if len(bundle.Bullets) == 0 {
		return nil, errors.New("no bullets to rephrase")
	}

	var input strings.Builder
	fmt.Fprintf(&input, "Focus: %s\n\nBullets:\n", focusLabel(bundle.Focus))
	for i, bullet := range bundle.Bullets {
		fmt.Fprintf(&input, "%d. %s\n", i+1, bullet.Text)
	}

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	params := responses.ResponseNewParams{
		Model:           cfg.Model,
		MaxOutputTokens: openai.Int(cfg.MaxTokens),
		Temperature:     openai.Float(cfg.Temperature),
		Instructions:    openai.String(rephraseInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input.String(), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   "RephrasedBullets",
					Schema: rephraseSchema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := callWithRetry(ctx, &client, params)
	if err != nil {
		return nil, err
	}

	var out rephraseResponse
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return nil, fmt.Errorf("decode rephrase response: %w", err)
	}
	if len(out.Bullets) != len(bundle.Bullets) {
		return nil, fmt.Errorf("rephrase returned %d bullets, want %d", len(out.Bullets), len(bundle.Bullets))
	}
	for i := range out.Bullets {
		out.Bullets[i] = strings.TrimSpace(out.Bullets[i])
		if out.Bullets[i] == "" {
			return nil, fmt.Errorf("rephrase returned empty bullet %d", i+1)
		}
	}
	return out.Bullets, nil
}

func focusLabel(focus []string) string {
	if len(focus) == 0 {
		return "general overview"
	}
	return strings.Join(focus, ", ")
}

func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	waits := []time.Duration{2 * time.Second, 10 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			if attempt < maxRetries-1 && isRetryableLLMError(err) {
				select {
				case <-time.After(waits[attempt]):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("llm request failed after %d attempts", maxRetries)
}

func isRetryableLLMError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "internal server error")
}
