// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns decoded JSON payloads into evidence-backed
// summary bullets. Every rendering decision in this package is
// deterministic: identical input, configuration, and focus produce
// byte-identical output.
package summarize

import (
	"fmt"
	"math"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

// maxBulletsByLength caps the deterministic walker's output per length
// tier. Delta and redaction-notice bullets are appended after the cap.
var maxBulletsByLength = map[string]int{
	"short":  4,
	"medium": 8,
	"long":   12,
}

const numericDominanceThreshold = 0.8

// plural renders "1 record" or "3 records".
func plural(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}

func formatSum(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return "0"
	}
	if value == math.Trunc(value) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.1f", value)
}

func formatAvg(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", value)
}

func formatExtreme(value float64) string {
	return formatSum(value)
}

// tokenize lowercases text, treats underscores as spaces, and splits on
// whitespace. Both bullet text and focus terms go through this so the
// scoring comparison is symmetric.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ReplaceAll(strings.ToLower(text), "_", " "))
	return fields
}

// scoreFocus counts how many focus tokens appear in the token set of
// text plus title. Zero focus tokens score zero for every bullet.
func scoreFocus(text string, focusTokens []string, title string) int {
	if len(focusTokens) == 0 {
		return 0
	}
	seen := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		seen[tok] = struct{}{}
	}
	if title != "" {
		for _, tok := range tokenize(title) {
			seen[tok] = struct{}{}
		}
	}
	score := 0
	for _, tok := range focusTokens {
		if _, ok := seen[tok]; ok {
			score++
		}
	}
	return score
}

// normalizeFocus flattens focus terms into scoring tokens.
func normalizeFocus(focus []string) []string {
	var tokens []string
	for _, item := range focus {
		tokens = append(tokens, tokenize(item)...)
	}
	return tokens
}

// encodeValue renders a scalar or container as compact JSON, preserving
// object key order. It is the display form for scalar bullets, delta
// text, and array sample previews.
func encodeValue(value any) string {
	raw, err := jsontree.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}

// truncate clips s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
