// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RedactionConfig holds the PII redaction policy applied before
// summarization.
type RedactionConfig struct {
	// Enabled toggles redaction globally. When false, payloads pass
	// through untouched.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Token replaces every redacted value (default "[REDACTED]").
	Token string `json:"token" yaml:"token" mapstructure:"token"`

	// EmailRegex, PhoneRegex, and CreditCardRegex are the built-in
	// value patterns. A compile failure is fatal at startup.
	EmailRegex      string `json:"email_regex" yaml:"email_regex" mapstructure:"email_regex"`
	PhoneRegex      string `json:"phone_regex" yaml:"phone_regex" mapstructure:"phone_regex"`
	CreditCardRegex string `json:"credit_card_regex" yaml:"credit_card_regex" mapstructure:"credit_card_regex"`

	// ExtraRegexes holds additional patterns, typically contributed by
	// a profile.
	ExtraRegexes []string `json:"extra_regexes,omitempty" yaml:"extra_regexes,omitempty" mapstructure:"extra_regexes"`

	// DenyPaths lists JSONPath glob patterns whose whole subtree is
	// replaced with Token. The ** wildcard is treated as * (no
	// recursive-descent semantics).
	DenyPaths []string `json:"deny_paths" yaml:"deny_paths" mapstructure:"deny_paths"`
}

// SummarizerConfig holds tuning knobs for the deterministic engine.
type SummarizerConfig struct {
	// TopK bounds key previews, string frequency lists, and array
	// samples (default 3).
	TopK int `json:"topk" yaml:"topk" mapstructure:"topk"`

	// NumericFieldsLimit caps the number of numeric fields reported
	// per array-of-objects bullet.
	NumericFieldsLimit int `json:"numeric_fields_limit" yaml:"numeric_fields_limit" mapstructure:"numeric_fields_limit"`

	// StringCardinalityLimit caps distinct string values tracked per
	// field before the frequency list stops growing.
	StringCardinalityLimit int `json:"string_cardinality_limit" yaml:"string_cardinality_limit" mapstructure:"string_cardinality_limit"`
}

// LimitsConfig holds the transport-boundary guards enforced before the
// summarization core is invoked. The core assumes pre-validated input.
type LimitsConfig struct {
	// MaxPayloadBytes caps inline and fetched payload sizes (default 20 MiB).
	MaxPayloadBytes int64 `json:"max_payload_bytes" yaml:"max_payload_bytes" mapstructure:"max_payload_bytes"`

	// MaxJSONDepth caps payload nesting depth (default 64).
	MaxJSONDepth int `json:"max_json_depth" yaml:"max_json_depth" mapstructure:"max_json_depth"`
}

// LLMConfig holds settings for the LLM rephrasing engine.
type LLMConfig struct {
	// Provider selects the LLM backend: "none" or "openai".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the provider model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates with the provider. Usually supplied via the
	// OPENAI_API_KEY environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens bounds the generated output (default 1500).
	MaxTokens int64 `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature controls sampling randomness (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// FallbackToDeterministic returns the deterministic bundle instead
	// of an error when the provider call fails (default true).
	FallbackToDeterministic bool `json:"fallback_to_deterministic" yaml:"fallback_to_deterministic" mapstructure:"fallback_to_deterministic"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigins lists CORS origins (default ["*"]).
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`

	// StreamChunkDelay is the pause between streamed bullet events.
	StreamChunkDelay time.Duration `json:"stream_chunk_delay" yaml:"stream_chunk_delay" mapstructure:"stream_chunk_delay"`
}

// ProfilesConfig holds settings for profile loading.
type ProfilesConfig struct {
	// Dir is the directory scanned for *.yaml profile files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Watch reloads the registry when profile files change on disk.
	Watch bool `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// StoreConfig holds settings for the baseline snapshot store.
type StoreConfig struct {
	// Path is the SQLite database file (default "baselines.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all component configurations.
type Config struct {
	Redaction  RedactionConfig  `json:"redaction" yaml:"redaction" mapstructure:"redaction"`
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer" mapstructure:"summarizer"`
	Limits     LimitsConfig     `json:"limits" yaml:"limits" mapstructure:"limits"`
	LLM        LLMConfig        `json:"llm" yaml:"llm" mapstructure:"llm"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Profiles   ProfilesConfig   `json:"profiles" yaml:"profiles" mapstructure:"profiles"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultConfig returns the built-in configuration. The regex defaults
// are RE2-compatible; the phone and credit-card patterns avoid the
// lookarounds RE2 does not support and can over-match adjacent digit runs.
func DefaultConfig() Config {
	return Config{
		Redaction: RedactionConfig{
			Enabled:         true,
			Token:           "[REDACTED]",
			EmailRegex:      `(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`,
			PhoneRegex:      `(\+?\d{1,2}[\s-]?)?(\(?\d{3}\)?[\s-]?)?\d{3}[\s-]?\d{4}`,
			CreditCardRegex: `(\d[ -]?){13,16}`,
			DenyPaths:       []string{"$.access_token", "$..password", "$..secret"},
		},
		Summarizer: SummarizerConfig{
			TopK:                   3,
			NumericFieldsLimit:     15,
			StringCardinalityLimit: 15,
		},
		Limits: LimitsConfig{
			MaxPayloadBytes: 20 * 1024 * 1024,
			MaxJSONDepth:    64,
		},
		LLM: LLMConfig{
			Provider:                "none",
			Model:                   "gpt-4o-mini",
			MaxTokens:               1500,
			Temperature:             0.1,
			FallbackToDeterministic: true,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			AllowOrigins:     []string{"*"},
			StreamChunkDelay: 100 * time.Millisecond,
		},
		Profiles: ProfilesConfig{
			Dir: "profiles",
		},
		Store: StoreConfig{
			Path: "baselines.db",
		},
	}
}
