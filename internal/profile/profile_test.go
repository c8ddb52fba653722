// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

const logsProfileYAML = `id: logs
version: 1.0.0
title: Log Analysis
description: Summarize structured log batches.
defaults:
  focus: [level, service]
  length: medium
extractors:
  - categorical:level
  - numeric:latency_ms
  - timebucket:ts:minute
  - diff
redaction:
  deny_paths:
    - "$.*session"
  allow_paths:
    - "$.access_token"
limits:
  topk: 5
`

func writeProfiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func loadRegistry(t *testing.T, files map[string]string) *Registry {
	t.Helper()
	registry := NewRegistry(zap.NewNop())
	require.NoError(t, registry.LoadDirectory(writeProfiles(t, files)))
	return registry
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	payload, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return payload
}

func TestRegistryLoadDirectory(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	require.True(t, registry.Loaded())
	require.Equal(t, []string{"logs"}, registry.IDs())

	prof, ok := registry.Get("logs")
	require.True(t, ok)
	require.Equal(t, "1.0.0", prof.Version)
	require.Len(t, prof.Extractors, 4)

	summaries := registry.List()
	require.Len(t, summaries, 1)
	require.Equal(t, "Log Analysis", summaries[0].Title)
}

func TestRegistryRejectsInvalidProfile(t *testing.T) {
	registry := NewRegistry(nil)
	dir := writeProfiles(t, map[string]string{
		"bad.yaml": "id: bad\ntitle: Bad\nextractors: [bogus:x]\n",
	})
	require.Error(t, registry.LoadDirectory(dir))
}

func TestRegistryMissingDirectoryIsNotFatal(t *testing.T) {
	registry := NewRegistry(nil)
	require.NoError(t, registry.LoadDirectory(filepath.Join(t.TempDir(), "absent")))
	require.Empty(t, registry.IDs())
}

func TestMergeRedactionPrecedence(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	prof, _ := registry.Get("logs")

	global := types.DefaultConfig().Redaction
	merged := MergeRedaction(global, prof)

	require.Contains(t, merged.DenyPaths, "$.*session")
	require.NotContains(t, merged.DenyPaths, "$.access_token", "allow must remove the global deny")
	require.Contains(t, merged.DenyPaths, "$..password")
}

func TestApplyDefaultsFocusOnlyWhenUnset(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	prof, _ := registry.Get("logs")

	req := types.SummarizationRequest{}
	ApplyDefaults(prof, &req)
	require.Equal(t, []string{"level", "service"}, req.Focus)
	require.Equal(t, types.LengthMedium, req.Length)

	explicit := types.SummarizationRequest{Focus: []string{"errors"}, Length: types.LengthShort}
	ApplyDefaults(prof, &explicit)
	require.Equal(t, []string{"errors"}, explicit.Focus)
	require.Equal(t, types.LengthShort, explicit.Length)
}

func TestLimitsOverride(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	prof, _ := registry.Get("logs")

	limits := Limits(prof, types.DefaultConfig().Summarizer)
	require.Equal(t, 5, limits.TopK)
}

const logBatch = `{
	"entries": [
		{"level": "error", "service": "api", "latency_ms": 120, "ts": "2026-08-30T10:00:10Z"},
		{"level": "error", "service": "api", "latency_ms": 80, "ts": "2026-08-30T10:00:40Z"},
		{"level": "info", "service": "worker", "latency_ms": 40, "ts": "2026-08-30T10:01:05Z"}
	]
}`

func TestExtractCategorical(t *testing.T) {
	bullets := extractCategorical("level", decode(t, logBatch))
	require.Len(t, bullets, 1)
	require.Equal(t, `level: "error" (2), "info" (1) | total: 3`, bullets[0].Text)
	require.NotEmpty(t, bullets[0].Citations)
	require.Equal(t, 3, bullets[0].Evidence["total_count"])
}

func TestExtractCategoricalSuppressesSingletons(t *testing.T) {
	bullets := extractCategorical("service", decode(t, `{"xs":[{"service":"a"},{"service":"b"}]}`))
	require.Empty(t, bullets)
}

func TestExtractNumeric(t *testing.T) {
	bullets := extractNumeric("latency_ms", decode(t, logBatch))
	require.Len(t, bullets, 1)
	require.Equal(t, "latency_ms: count=3, mean=80.00, min=40.00, max=120.00, sum=240.00", bullets[0].Text)
}

func TestExtractNumericSkipsMixedField(t *testing.T) {
	payload := decode(t, `{"xs":[{"v":1},{"v":"two"},{"v":"three"}]}`)
	require.Empty(t, extractNumeric("v", payload))
}

func TestExtractTimebucket(t *testing.T) {
	bullets := extractTimebucket("ts", "minute", decode(t, logBatch))
	require.Len(t, bullets, 1)
	require.Equal(t,
		"ts (minute buckets): 2026-08-30 10:00 (2), 2026-08-30 10:01 (1) | total events: 3",
		bullets[0].Text)
	require.Equal(t, 2, bullets[0].Evidence["unique_buckets"])
}

func TestExtractDiff(t *testing.T) {
	payload := decode(t, `{"a": 1, "b": 2}`)
	baseline := decode(t, `{"a": 1, "c": 3}`)
	bullets := extractDiff(payload, baseline)
	require.Len(t, bullets, 1)
	require.Equal(t, "Baseline diff: added 1 paths (e.g., $.b); removed 1 paths (e.g., $.c)", bullets[0].Text)
}

func TestExtractDiffNoChanges(t *testing.T) {
	payload := decode(t, `{"a": 1}`)
	bullets := extractDiff(payload, decode(t, `{"a": 1}`))
	require.Len(t, bullets, 1)
	require.Equal(t, "No changes detected from baseline", bullets[0].Text)
}

func TestProfileEngineBulletsComeFirst(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	engine, ok := ForRequest(registry, "logs", summarize.Deterministic{}, zap.NewNop())
	require.True(t, ok)
	require.Equal(t, "profile:logs", engine.Name())

	bundle, err := engine.Summarize(context.Background(), types.SummarizationRequest{
		Payload: decode(t, logBatch),
	}, types.DefaultConfig())
	require.NoError(t, err)

	require.Equal(t, "profile:logs", bundle.Engine)
	require.Equal(t, "logs", bundle.Metadata["profile"])
	require.Equal(t, 3, bundle.Metadata["profile_bullets"])
	require.True(t, strings.HasPrefix(bundle.Bullets[0].Text, "level:"),
		"profile bullets must precede deterministic backfill, got %q", bundle.Bullets[0].Text)
	require.Contains(t, bundle.Metadata, "payload")
}

func TestForRequestUnknownProfile(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	_, ok := ForRequest(registry, "nope", summarize.Deterministic{}, nil)
	require.False(t, ok)
}

func TestProfileEngineRedactionMergeApplies(t *testing.T) {
	registry := loadRegistry(t, map[string]string{"logs.yaml": logsProfileYAML})
	engine, ok := ForRequest(registry, "logs", summarize.Deterministic{}, zap.NewNop())
	require.True(t, ok)

	bundle, err := engine.Summarize(context.Background(), types.SummarizationRequest{
		Payload: decode(t, `{"user_session": "abc123securetoken"}`),
	}, types.DefaultConfig())
	require.NoError(t, err)
	require.True(t, bundle.RedactionsApplied)
	for _, bullet := range bundle.Bullets {
		require.NotContains(t, bullet.Text, "abc123securetoken")
	}
}
