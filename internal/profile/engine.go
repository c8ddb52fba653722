// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/redact"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Engine wraps a base engine with one profile: extractor bullets run
// first, then the base engine's bullets follow as backfill. The profile
// may also tighten redaction and override defaults and limits.
type Engine struct {
	Profile *types.Profile
	Base    summarize.Engine
	Logger  *zap.Logger
}

// ForRequest wraps base with the requested profile, or returns base
// unchanged when no profile applies.
func ForRequest(registry *Registry, profileID string, base summarize.Engine, logger *zap.Logger) (summarize.Engine, bool) {
	if profileID == "" {
		return base, true
	}
	prof, ok := registry.Get(profileID)
	if !ok {
		return nil, false
	}
	return Engine{Profile: prof, Base: base, Logger: logger}, true
}

func (e Engine) Name() string { return "profile:" + e.Profile.ID }

func (e Engine) Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error) {
	ApplyDefaults(e.Profile, &req)
	cfg.Redaction = MergeRedaction(cfg.Redaction, e.Profile)
	cfg.Summarizer = Limits(e.Profile, cfg.Summarizer)

	// Extractors see the sanitized payload so profile bullets can never
	// leak values the merged policy redacts.
	redactor, err := redact.New(cfg.Redaction)
	if err != nil {
		return types.EvidenceBundle{}, fmt.Errorf("build redactor: %w", err)
	}
	sanitized, _, _ := redactor.Redact(req.Payload)
	var sanitizedBaseline any
	if req.BaselinePayload != nil {
		sanitizedBaseline, _, _ = redactor.Redact(req.BaselinePayload)
	}

	profileBullets := Extract(e.Profile, sanitized, sanitizedBaseline, e.Logger)

	bundle, err := e.Base.Summarize(ctx, req, cfg)
	if err != nil {
		return types.EvidenceBundle{}, err
	}

	bundle.Bullets = append(profileBullets, bundle.Bullets...)
	bundle.Engine = e.Name()
	if bundle.Metadata == nil {
		bundle.Metadata = make(map[string]any)
	}
	bundle.Metadata["profile"] = e.Profile.ID
	bundle.Metadata["profile_bullets"] = len(profileBullets)
	return bundle, nil
}
