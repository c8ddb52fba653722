// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the json-summarizer
// pipeline: summarization requests, evidence bundles, configuration, and
// profile definitions.
package types

// Engine selector names. Unknown names resolve to the deterministic
// engine, which is the guaranteed fallback.
const (
	EngineDeterministic = "deterministic"
	EngineLLM           = "llm"
	EngineHybrid        = "hybrid"
)

// Length tiers controlling how many bullets a summary keeps.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Style options. Styles are carried through to the LLM engine as a
// rendering hint; the deterministic core ignores them.
const (
	StyleBullets   = "bullets"
	StyleNarrative = "narrative"
	StyleKPIBlock  = "kpi-block"
	StyleMixed     = "mixed"
)

// TypedExamples groups citation sample values by runtime JSON type.
type TypedExamples struct {
	// Type is one of number, string, boolean, null, object, array.
	Type string `json:"type" yaml:"type"`

	// Examples holds up to three sample values of this type.
	Examples []any `json:"examples" yaml:"examples"`
}

// Citation ties a bullet claim to a path in the source payload together
// with sampled values proving the claim.
type Citation struct {
	// Path is a JSONPath-subset string: $, .key, ['key'], [n], [*].
	// This grammar is a wire contract; consumers parse it verbatim.
	Path string `json:"path" yaml:"path"`

	// ValuePreview holds up to three raw values found at Path.
	ValuePreview []any `json:"value_preview" yaml:"value_preview"`

	// ValuePreviewTyped holds per-type sample buckets in fixed type
	// precedence order (number, string, boolean, null, object, array).
	ValuePreviewTyped []TypedExamples `json:"value_preview_typed" yaml:"value_preview_typed"`
}

// SummaryBullet is one statement of a summary. Text is fully derivable
// from Evidence; the engines never state facts the evidence cannot back.
type SummaryBullet struct {
	Text      string         `json:"text" yaml:"text"`
	Citations []Citation     `json:"citations" yaml:"citations"`
	Evidence  map[string]any `json:"evidence" yaml:"evidence"`
}

// EvidenceBundle is the full output of one summarization run.
type EvidenceBundle struct {
	// Bullets are ordered: profile extractor bullets first (if any),
	// then walker bullets, then the delta and redaction bullets.
	Bullets []SummaryBullet `json:"bullets" yaml:"bullets"`

	// Engine identifies the implementation that produced the bundle
	// (e.g. "deterministic", "llm", "profile:sre-logs").
	Engine string `json:"engine" yaml:"engine"`

	// Focus echoes the focus terms used to rank bullets.
	Focus []string `json:"focus" yaml:"focus"`

	// RedactionsApplied reports whether any value was redacted.
	RedactionsApplied bool `json:"redactions_applied" yaml:"redactions_applied"`

	// Metadata carries the sanitized payload and baseline under the
	// "payload" and "baseline" keys so citations can be re-queried.
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
}

// SummarizationRequest carries one payload through an engine.
type SummarizationRequest struct {
	// Payload is a decoded JSON value (jsontree representation).
	Payload any `json:"payload" yaml:"payload"`

	// Focus lists user-supplied focus terms or paths.
	Focus []string `json:"focus" yaml:"focus"`

	// Engine selects the summarization engine by name.
	Engine string `json:"engine" yaml:"engine"`

	// Length is one of short, medium, long (default medium).
	Length string `json:"length" yaml:"length"`

	// Style is a rendering hint, non-semantic to the deterministic core.
	Style string `json:"style" yaml:"style"`

	// Template optionally names an output template (LLM engines only).
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// BaselinePayload, when non-nil, enables the delta summarizer.
	BaselinePayload any `json:"baseline_payload,omitempty" yaml:"baseline_payload,omitempty"`

	// IncludeRootSummary keeps the root-object bullet, which is
	// suppressed by default to avoid a content-free top bullet.
	IncludeRootSummary bool `json:"include_root_summary" yaml:"include_root_summary"`
}

// EvidenceStats summarizes traceability metadata about one bundle.
type EvidenceStats struct {
	// PathsCount is the number of unique citation paths that resolve
	// against the sanitized payload or baseline.
	PathsCount int `json:"paths_count" yaml:"paths_count"`

	// BytesExamined is the encoded size of the payload(s) summarized.
	BytesExamined int `json:"bytes_examined" yaml:"bytes_examined"`

	// ElapsedMS is the wall-clock summarization time in milliseconds.
	ElapsedMS int `json:"elapsed_ms" yaml:"elapsed_ms"`
}
