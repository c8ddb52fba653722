// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package redact removes sensitive values from decoded JSON payloads
// before they reach any summarization engine.
package redact

import (
	"fmt"
	"regexp"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsonpath"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Redactor applies a fixed redaction policy to payloads. Compile the
// policy once with New and reuse it across requests; Redact is safe for
// concurrent use.
type Redactor struct {
	enabled  bool
	token    string
	deny     []string
	patterns []*regexp.Regexp
}

// New compiles the policy's regexes and returns a ready Redactor. A
// pattern that fails to compile is a configuration error, not a
// per-request condition, so the caller should treat it as fatal.
func New(cfg types.RedactionConfig) (*Redactor, error) {
	raw := make([]string, 0, 3+len(cfg.ExtraRegexes))
	raw = append(raw, cfg.EmailRegex, cfg.PhoneRegex, cfg.CreditCardRegex)
	raw = append(raw, cfg.ExtraRegexes...)

	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, pattern := range raw {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile redaction pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, re)
	}

	return &Redactor{
		enabled:  cfg.Enabled,
		token:    cfg.Token,
		deny:     append([]string(nil), cfg.DenyPaths...),
		patterns: patterns,
	}, nil
}

// Redact returns a sanitized copy of payload, whether anything was
// redacted, and the paths that were. The input is never mutated. A
// deny-path hit replaces the entire subtree at that path; string values
// matching any policy regex are replaced individually.
func (r *Redactor) Redact(payload any) (any, bool, []string) {
	if !r.enabled {
		return payload, false, nil
	}
	var redacted []string
	sanitized := r.sanitize(payload, "$", &redacted)
	return sanitized, len(redacted) > 0, redacted
}

func (r *Redactor) sanitize(value any, path string, redacted *[]string) any {
	for _, deny := range r.deny {
		if jsonpath.Matches(path, deny) {
			*redacted = append(*redacted, path)
			return r.token
		}
	}

	switch v := value.(type) {
	case string:
		for _, re := range r.patterns {
			if re.MatchString(v) {
				*redacted = append(*redacted, path)
				return r.token
			}
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.sanitize(item, jsonpath.AppendIndex(path, i), redacted)
		}
		return out
	case *jsontree.Object:
		out := jsontree.NewObject()
		for _, key := range v.Keys() {
			item, _ := v.Get(key)
			out.Set(key, r.sanitize(item, jsonpath.AppendKey(path, key), redacted))
		}
		return out
	default:
		return value
	}
}
