// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	payload, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return payload
}

func summarizePayload(t *testing.T, raw string, mutate func(*types.SummarizationRequest)) types.EvidenceBundle {
	t.Helper()
	req := types.SummarizationRequest{
		Payload: decodeJSON(t, raw),
		Engine:  types.EngineDeterministic,
		Length:  types.LengthMedium,
	}
	if mutate != nil {
		mutate(&req)
	}
	bundle, err := Deterministic{}.Summarize(context.Background(), req, types.DefaultConfig())
	require.NoError(t, err)
	return bundle
}

const ordersPayload = `{
	"orders": [
		{"id": 1, "total": 10, "status": "paid"},
		{"id": 2, "total": 20.5, "status": "paid"},
		{"id": 3, "total": 96.5, "status": "failed"}
	]
}`

func TestDeterministicOrdersAggregate(t *testing.T) {
	bundle := summarizePayload(t, ordersPayload, nil)
	require.Len(t, bundle.Bullets, 1)

	bullet := bundle.Bullets[0]
	require.Equal(t,
		`orders: 3 records; id: sum 6, avg 2.00, min 1, max 3; `+
			`status: "paid" (2), "failed" (1); `+
			`total: sum 127, avg 42.33, min 10, max 96.5`,
		bullet.Text)

	var paths []string
	for _, citation := range bullet.Citations {
		paths = append(paths, citation.Path)
	}
	require.Equal(t, []string{
		"$.orders[*]",
		"$.orders[*].id",
		"$.orders[*].status",
		"$.orders[*].total",
	}, paths)

	require.Equal(t, 3, bullet.Evidence["records"])
}

func TestDeterministicOutputIsStable(t *testing.T) {
	first := summarizePayload(t, ordersPayload, nil)
	second := summarizePayload(t, ordersPayload, nil)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestDeterministicCitationsUniqueAndPreviewed(t *testing.T) {
	bundle := summarizePayload(t, ordersPayload, nil)
	for _, bullet := range bundle.Bullets {
		seen := make(map[string]bool)
		for _, citation := range bullet.Citations {
			require.False(t, seen[citation.Path], "duplicate citation path %s", citation.Path)
			seen[citation.Path] = true
			require.NotEmpty(t, citation.ValuePreview, "missing preview for %s", citation.Path)
			require.NotEmpty(t, citation.ValuePreviewTyped, "missing typed preview for %s", citation.Path)
		}
	}
}

func TestDeterministicRootSummaryToggle(t *testing.T) {
	suppressed := summarizePayload(t, `{"a": 1}`, nil)
	for _, bullet := range suppressed.Bullets {
		require.NotContains(t, bullet.Text, "Root object")
	}

	included := summarizePayload(t, `{"a": 1}`, func(req *types.SummarizationRequest) {
		req.IncludeRootSummary = true
	})
	var found bool
	for _, bullet := range included.Bullets {
		if strings.HasPrefix(bullet.Text, "Root object: object with 1 keys") {
			found = true
		}
	}
	require.True(t, found, "root summary bullet not emitted when requested")
}

func TestDeterministicFocusReordersBullets(t *testing.T) {
	payload := `{
		"meta": {"region": "eu", "tier": "gold"},
		"orders": [{"id": 1, "total": 10}]
	}`
	unfocused := summarizePayload(t, payload, nil)
	focused := summarizePayload(t, payload, func(req *types.SummarizationRequest) {
		req.Focus = []string{"orders"}
	})

	require.Equal(t, []string{"orders"}, focused.Focus)
	require.True(t, strings.HasPrefix(focused.Bullets[0].Text, "orders:"),
		"focused bullet should sort first, got %q", focused.Bullets[0].Text)
	require.False(t, strings.HasPrefix(unfocused.Bullets[0].Text, "orders:"),
		"without focus the shorter scalar bullets sort first, got %q", unfocused.Bullets[0].Text)
}

func TestDeterministicLengthCapsBullets(t *testing.T) {
	payload := `{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6,"g":7,"h":8,"i":9,"j":10}`
	tests := []struct {
		length string
		want   int
	}{
		{types.LengthShort, 4},
		{types.LengthMedium, 8},
		{"unknown", 8},
	}
	for _, tt := range tests {
		bundle := summarizePayload(t, payload, func(req *types.SummarizationRequest) {
			req.Length = tt.length
		})
		require.Len(t, bundle.Bullets, tt.want, "length %q", tt.length)
	}
}

func TestDeterministicEmptyArray(t *testing.T) {
	bundle := summarizePayload(t, `{"items": []}`, nil)
	require.Len(t, bundle.Bullets, 1)
	require.Equal(t, "items: array with 0 items", bundle.Bullets[0].Text)
}

func TestDeterministicHeterogeneousArraySamples(t *testing.T) {
	bundle := summarizePayload(t, `{"xs": [1, "two", true, 4]}`, nil)

	var arrayBullet *types.SummaryBullet
	for i := range bundle.Bullets {
		if strings.HasPrefix(bundle.Bullets[i].Text, "xs: array with 4 items") {
			arrayBullet = &bundle.Bullets[i]
		}
	}
	require.NotNil(t, arrayBullet)
	require.Contains(t, arrayBullet.Text, `(sample: 1, "two", true, ...)`)

	var sawElement bool
	for _, bullet := range bundle.Bullets {
		if strings.HasPrefix(bullet.Text, "xs[1]:") {
			sawElement = true
		}
	}
	require.True(t, sawElement, "per-element bullets expected for heterogeneous arrays")
}

func TestDeterministicMixedTypeFieldEvidence(t *testing.T) {
	bundle := summarizePayload(t, `{"items":[{"v":1},{"v":"1"},{"v":true},{"v":2}]}`, nil)
	require.Len(t, bundle.Bullets, 1)
	bullet := bundle.Bullets[0]

	fieldEvidence, ok := bullet.Evidence["v"].(map[string]any)
	require.True(t, ok, "evidence for field v missing: %v", bullet.Evidence)

	typeCounts, ok := fieldEvidence["type_counts"].(*jsontree.Object)
	require.True(t, ok)
	raw, err := json.Marshal(typeCounts)
	require.NoError(t, err)
	require.JSONEq(t, `{"number":2,"string":1,"boolean":1}`, string(raw))

	for _, block := range []string{"number", "string", "boolean"} {
		require.Contains(t, fieldEvidence, block)
	}

	var vCitations int
	for _, citation := range bullet.Citations {
		if strings.HasSuffix(citation.Path, ".v") {
			vCitations++
		}
	}
	require.Equal(t, 1, vCitations, "exactly one citation for the field path")
}

func TestDeterministicDeltaBullet(t *testing.T) {
	bundle := summarizePayload(t, `{"orders":[{"total":10}]}`, func(req *types.SummarizationRequest) {
		req.BaselinePayload = decodeJSON(t, `{"orders":[{"total":8}]}`)
	})

	var delta *types.SummaryBullet
	for i := range bundle.Bullets {
		if strings.HasPrefix(bundle.Bullets[i].Text, "Delta:") {
			delta = &bundle.Bullets[i]
		}
	}
	require.NotNil(t, delta, "delta bullet missing")
	require.Equal(t, "Delta: modified keys: orders", delta.Text)
	require.Len(t, delta.Citations, 1)
	require.Equal(t, "$", delta.Citations[0].Path)
	require.NotEmpty(t, delta.Citations[0].ValuePreview)
	require.Contains(t, bundle.Metadata, "payload")
	require.NotNil(t, bundle.Metadata["baseline"])
}

func TestDeterministicNoDeltaWhenEqual(t *testing.T) {
	bundle := summarizePayload(t, `{"a": 1}`, func(req *types.SummarizationRequest) {
		req.BaselinePayload = decodeJSON(t, `{"a": 1}`)
	})
	for _, bullet := range bundle.Bullets {
		require.NotContains(t, bullet.Text, "Delta:")
	}
}

func TestDeterministicRedactionNotice(t *testing.T) {
	bundle := summarizePayload(t, `{"email": "bob@example.com", "n": 7}`, nil)
	require.True(t, bundle.RedactionsApplied)

	last := bundle.Bullets[len(bundle.Bullets)-1]
	require.Equal(t, "1 sensitive value(s) redacted prior to summarization.", last.Text)
	require.Len(t, last.Citations, 1)
	require.Equal(t, "$.email", last.Citations[0].Path)
	require.Equal(t, []any{"[REDACTED]"}, last.Citations[0].ValuePreview)

	for _, bullet := range bundle.Bullets {
		require.NotContains(t, bullet.Text, "bob@example.com")
	}
}

func TestDeterministicDisabledRedaction(t *testing.T) {
	req := types.SummarizationRequest{
		Payload: decodeJSON(t, `{"email": "bob@example.com"}`),
		Length:  types.LengthMedium,
	}
	cfg := types.DefaultConfig()
	cfg.Redaction.Enabled = false

	bundle, err := Deterministic{}.Summarize(context.Background(), req, cfg)
	require.NoError(t, err)
	require.False(t, bundle.RedactionsApplied)

	var sawValue bool
	for _, bullet := range bundle.Bullets {
		if strings.Contains(bullet.Text, "bob@example.com") {
			sawValue = true
		}
	}
	require.True(t, sawValue)
}

func TestRegistryFallsBackToDeterministic(t *testing.T) {
	registry := NewRegistry()
	require.Equal(t, types.EngineDeterministic, registry.Resolve("nope").Name())
	require.Equal(t, types.EngineLLM, registry.Resolve(types.EngineLLM).Name())
}

func TestLLMFallsBackWithoutProvider(t *testing.T) {
	req := types.SummarizationRequest{
		Payload: decodeJSON(t, ordersPayload),
		Engine:  types.EngineLLM,
		Length:  types.LengthMedium,
	}
	bundle, err := NewRegistry().Summarize(context.Background(), req, types.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, types.EngineDeterministic, bundle.Engine)
	require.Contains(t, bundle.Metadata, "llm_fallback")
	require.NotEmpty(t, bundle.Bullets)
}
