// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/redact"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Deterministic is the rule-based engine. Its output is a pure function
// of the request and configuration.
type Deterministic struct{}

func (Deterministic) Name() string { return types.EngineDeterministic }

func (Deterministic) Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error) {
	redactor, err := redact.New(cfg.Redaction)
	if err != nil {
		return types.EvidenceBundle{}, fmt.Errorf("build redactor: %w", err)
	}

	sanitized, redactionsApplied, redactedPaths := redactor.Redact(req.Payload)

	var baseline any
	if req.BaselinePayload != nil {
		sanitizedBaseline, baselineApplied, baselinePaths := redactor.Redact(req.BaselinePayload)
		baseline = sanitizedBaseline
		redactionsApplied = redactionsApplied || baselineApplied
		redactedPaths = append(redactedPaths, baselinePaths...)
	}

	focusTokens := normalizeFocus(req.Focus)
	walker := newTreeWalker(cfg.Summarizer.TopK, req.Length, focusTokens, req.IncludeRootSummary)
	walker.walk(sanitized, "$", "")
	bullets := walker.render()

	if req.BaselinePayload != nil {
		delta := deltaSummarizer{topK: cfg.Summarizer.TopK}
		if bullet, ok := delta.summarize(baseline, sanitized); ok {
			bullets = append(bullets, bullet)
		}
	}

	if redactionsApplied {
		bullets = append(bullets, redactionNotice(redactedPaths, cfg.Redaction.Token))
	}

	payloads := []any{sanitized}
	if baseline != nil {
		payloads = append(payloads, baseline)
	}
	attachCitationPreviews(bullets, payloads)

	return types.EvidenceBundle{
		Bullets:           bullets,
		Engine:            types.EngineDeterministic,
		Focus:             req.Focus,
		RedactionsApplied: redactionsApplied,
		Metadata: map[string]any{
			"payload":  sanitized,
			"baseline": baseline,
		},
	}, nil
}

// redactionNotice reports how many values were removed. Citations cover
// the first three distinct redacted paths; their previews are the
// redaction token itself since the original values are gone.
func redactionNotice(redactedPaths []string, token string) types.SummaryBullet {
	var unique []string
	seen := make(map[string]struct{})
	for _, path := range redactedPaths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		unique = append(unique, path)
	}
	if len(unique) > 3 {
		unique = unique[:3]
	}
	citations := make([]types.Citation, 0, len(unique))
	for _, path := range unique {
		citations = append(citations, types.Citation{Path: path, ValuePreview: []any{token}})
	}
	return types.SummaryBullet{
		Text:      fmt.Sprintf("%d sensitive value(s) redacted prior to summarization.", len(redactedPaths)),
		Citations: citations,
		Evidence:  map[string]any{"redacted_paths": redactedPaths},
	}
}
