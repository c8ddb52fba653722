// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonpath

import (
	"iter"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

const (
	defaultExampleLimit   = 3
	defaultTypedSampleCap = 300
)

// stepToken returns the nodes one token reaches from node.
func stepToken(dst []any, node any, tok Token) []any {
	switch tok.Kind {
	case TokenKey:
		if obj, ok := node.(*jsontree.Object); ok {
			if v, present := obj.Get(tok.Key); present {
				dst = append(dst, v)
			}
		}
	case TokenIndex:
		if arr, ok := node.([]any); ok && tok.Index >= 0 && tok.Index < len(arr) {
			dst = append(dst, arr[tok.Index])
		}
	case TokenWildcard:
		switch t := node.(type) {
		case []any:
			dst = append(dst, t...)
		case *jsontree.Object:
			for _, key := range t.Keys() {
				v, _ := t.Get(key)
				dst = append(dst, v)
			}
		}
	}
	return dst
}

// Values returns the sequence of payload values matched by tokens, in
// document order. The sequence is finite and restartable; ranging over
// it again re-walks the payload.
func Values(payload any, tokens []Token) iter.Seq[any] {
	return func(yield func(any) bool) {
		nodes := []any{payload}
		for _, tok := range tokens {
			var next []any
			for _, node := range nodes {
				next = stepToken(next, node, tok)
			}
			if len(next) == 0 {
				return
			}
			nodes = next
		}
		for _, node := range nodes {
			if !yield(node) {
				return
			}
		}
	}
}

// ValuesByPath parses path and collects up to limit matched values.
// limit <= 0 collects everything.
func ValuesByPath(payload any, path string, limit int) ([]any, error) {
	tokens, err := Parse(path)
	if err != nil {
		return nil, err
	}
	var out []any
	for v := range Values(payload, tokens) {
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CitationExamples returns up to limit concrete values at path, each
// deep-copied so later payload mutation cannot corrupt a stored preview.
// A malformed path yields nil.
func CitationExamples(payload any, path string, limit int) []any {
	if limit <= 0 {
		limit = defaultExampleLimit
	}
	values, err := ValuesByPath(payload, path, limit)
	if err != nil {
		return nil
	}
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, jsontree.Clone(v))
	}
	return out
}

// TypedExamples scans up to sampleCap matched values, buckets them by
// runtime type keeping limitPerType examples each, and returns non-empty
// buckets in fixed type precedence order. A malformed path yields nil.
func TypedExamples(payload any, path string, limitPerType, sampleCap int) []types.TypedExamples {
	if limitPerType <= 0 {
		limitPerType = defaultExampleLimit
	}
	if sampleCap <= 0 {
		sampleCap = defaultTypedSampleCap
	}
	tokens, err := Parse(path)
	if err != nil {
		return nil
	}

	buckets := make(map[jsontree.Kind][]any)
	seen := 0
	for v := range Values(payload, tokens) {
		if seen >= sampleCap {
			break
		}
		seen++
		kind := jsontree.KindOf(v)
		if len(buckets[kind]) < limitPerType {
			buckets[kind] = append(buckets[kind], jsontree.Clone(v))
		}
	}

	var out []types.TypedExamples
	for _, kind := range jsontree.KindOrder {
		if examples := buckets[kind]; len(examples) > 0 {
			out = append(out, types.TypedExamples{Type: string(kind), Examples: examples})
		}
	}
	return out
}

// Exists reports whether path resolves to at least one non-null value.
func Exists(payload any, path string) bool {
	values, err := ValuesByPath(payload, path, 1)
	if err != nil {
		return false
	}
	return len(values) > 0 && values[0] != nil
}
