// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// fieldValue is one (path, value) observation from a payload walk.
type fieldValue struct {
	path  string
	value any
}

// walkFields yields every object field in the payload, depth-first,
// keys in insertion order. Array elements extend the path but only
// object members produce observations.
func walkFields(payload any, parentPath string, out *[]fieldValue) {
	switch node := payload.(type) {
	case *jsontree.Object:
		for _, key := range node.Keys() {
			value, _ := node.Get(key)
			fieldPath := parentPath + "." + key
			*out = append(*out, fieldValue{path: fieldPath, value: value})
			walkFields(value, fieldPath, out)
		}
	case []any:
		for i, item := range node {
			walkFields(item, fmt.Sprintf("%s[%d]", parentPath, i), out)
		}
	}
}

func fieldObservations(payload any, fieldName string) []fieldValue {
	var all []fieldValue
	walkFields(payload, "$", &all)
	suffix := "." + fieldName
	var matched []fieldValue
	for _, fv := range all {
		if strings.HasSuffix(fv.path, suffix) {
			matched = append(matched, fv)
		}
	}
	return matched
}

// uniqueCitations keeps the first occurrence of each path, capped at 3.
func uniqueCitations(paths []string) []types.Citation {
	seen := make(map[string]struct{})
	var citations []types.Citation
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		citations = append(citations, types.Citation{Path: path})
		if len(citations) == 3 {
			break
		}
	}
	return citations
}

// Extract runs the profile's extractor specs against the payload and
// returns their bullets in spec order. A failing extractor is skipped;
// profile extraction must never break the deterministic backfill.
func Extract(profile *types.Profile, payload, baseline any, logger *zap.Logger) []types.SummaryBullet {
	if logger == nil {
		logger = zap.NewNop()
	}
	var bullets []types.SummaryBullet
	for _, spec := range profile.Extractors {
		parts := strings.SplitN(spec, ":", 3)
		var out []types.SummaryBullet
		switch parts[0] {
		case "categorical":
			if len(parts) > 1 {
				out = extractCategorical(parts[1], payload)
			}
		case "numeric":
			if len(parts) > 1 {
				out = extractNumeric(parts[1], payload)
			}
		case "timebucket":
			if len(parts) > 1 {
				bucket := ""
				if len(parts) > 2 {
					bucket = parts[2]
				} else if profile.Time != nil {
					bucket = profile.Time.TimebucketDefault
				}
				out = extractTimebucket(parts[1], bucket, payload)
			}
		case "diff":
			out = extractDiff(payload, baseline)
		default:
			logger.Warn("unimplemented extractor type",
				zap.String("profile", profile.ID),
				zap.String("spec", spec))
		}
		bullets = append(bullets, out...)
	}
	return bullets
}

// categoricalValue renders a scalar the way the frequency table counts
// it. Fractional numbers are not categorical.
func categoricalValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%d", int64(v)), true
		}
	}
	return "", false
}

func extractCategorical(fieldName string, payload any) []types.SummaryBullet {
	var values []string
	var paths []string
	for _, fv := range fieldObservations(payload, fieldName) {
		if rendered, ok := categoricalValue(fv.value); ok {
			values = append(values, rendered)
			paths = append(paths, fv.path)
		}
	}
	if len(values) == 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, v := range values {
		if _, ok := counts[v]; !ok {
			firstSeen[v] = i
		}
		counts[v]++
	}
	type entry struct {
		value string
		count int
	}
	sorted := make([]entry, 0, len(counts))
	for v, n := range counts {
		sorted = append(sorted, entry{v, n})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return firstSeen[sorted[i].value] < firstSeen[sorted[j].value]
	})

	// A distribution with no repeats carries no signal.
	if sorted[0].count < 2 {
		return nil
	}

	top := sorted
	if len(top) > 5 {
		top = top[:5]
	}

	var text string
	if len(sorted) > 10 {
		text = fmt.Sprintf("%s: high-cardinality (%d unique values), no dominant values", fieldName, len(sorted))
	} else {
		parts := make([]string, 0, len(top))
		for _, e := range top {
			parts = append(parts, fmt.Sprintf("%q (%d)", e.value, e.count))
		}
		text = fmt.Sprintf("%s: %s | total: %d", fieldName, strings.Join(parts, ", "), len(values))
	}

	topEvidence := make([]any, 0, len(top))
	for _, e := range top {
		topEvidence = append(topEvidence, []any{e.value, e.count})
	}
	return []types.SummaryBullet{{
		Text:      text,
		Citations: uniqueCitations(paths),
		Evidence: map[string]any{
			"field":         fieldName,
			"total_count":   len(values),
			"unique_values": len(sorted),
			"top":           topEvidence,
		},
	}}
}

func extractNumeric(fieldName string, payload any) []types.SummaryBullet {
	var values []float64
	var paths []string
	nonNumeric := 0
	for _, fv := range fieldObservations(payload, fieldName) {
		// Booleans never count as numbers.
		if _, isBool := fv.value.(bool); isBool {
			nonNumeric++
			continue
		}
		if n, ok := jsontree.AsFloat(fv.value); ok {
			values = append(values, n)
			paths = append(paths, fv.path)
		} else {
			nonNumeric++
		}
	}
	if len(values) == 0 {
		return nil
	}
	total := len(values) + nonNumeric
	if float64(len(values))/float64(total) < 0.8 {
		return nil
	}

	sum := 0.0
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values {
		sum += v
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	mean := sum / float64(len(values))

	text := fmt.Sprintf("%s: count=%d, mean=%.2f, min=%.2f, max=%.2f, sum=%.2f",
		fieldName, len(values), mean, minVal, maxVal, sum)
	return []types.SummaryBullet{{
		Text:      text,
		Citations: uniqueCitations(paths),
		Evidence: map[string]any{
			"field": fieldName,
			"count": len(values),
			"sum":   sum,
			"mean":  mean,
			"min":   minVal,
			"max":   maxVal,
		},
	}}
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func bucketKey(ts time.Time, bucketSize string) string {
	switch bucketSize {
	case "hour":
		return ts.Format("2006-01-02 15") + ":00"
	case "day":
		return ts.Format("2006-01-02")
	default:
		return ts.Format("2006-01-02 15:04")
	}
}

func extractTimebucket(fieldName, bucketSize string, payload any) []types.SummaryBullet {
	if bucketSize == "" {
		bucketSize = "minute"
	}
	var timestamps []time.Time
	var paths []string
	for _, fv := range fieldObservations(payload, fieldName) {
		if s, ok := fv.value.(string); ok {
			if ts, parsed := parseTimestamp(s); parsed {
				timestamps = append(timestamps, ts)
				paths = append(paths, fv.path)
			}
		}
	}
	if len(timestamps) == 0 {
		return nil
	}

	buckets := make(map[string]int)
	for _, ts := range timestamps {
		buckets[bucketKey(ts, bucketSize)]++
	}
	type entry struct {
		key   string
		count int
	}
	sorted := make([]entry, 0, len(buckets))
	for key, count := range buckets {
		sorted = append(sorted, entry{key, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	top := sorted
	if len(top) > 5 {
		top = top[:5]
	}

	parts := make([]string, 0, len(top))
	topEvidence := make([]any, 0, len(top))
	for _, e := range top {
		parts = append(parts, fmt.Sprintf("%s (%d)", e.key, e.count))
		topEvidence = append(topEvidence, []any{e.key, e.count})
	}
	text := fmt.Sprintf("%s (%s buckets): %s | total events: %d",
		fieldName, bucketSize, strings.Join(parts, ", "), len(timestamps))

	return []types.SummaryBullet{{
		Text:      text,
		Citations: uniqueCitations(paths),
		Evidence: map[string]any{
			"field":          fieldName,
			"bucket_size":    bucketSize,
			"total_events":   len(timestamps),
			"unique_buckets": len(buckets),
			"top_buckets":    topEvidence,
		},
	}}
}

func pathSet(payload any) map[string]struct{} {
	var all []fieldValue
	walkFields(payload, "$", &all)
	out := make(map[string]struct{}, len(all))
	for _, fv := range all {
		out[fv.path] = struct{}{}
	}
	return out
}

func extractDiff(payload, baseline any) []types.SummaryBullet {
	if baseline == nil {
		return nil
	}

	currentPaths := pathSet(payload)
	baselinePaths := pathSet(baseline)

	var added, removed []string
	for path := range currentPaths {
		if _, ok := baselinePaths[path]; !ok {
			added = append(added, path)
		}
	}
	for path := range baselinePaths {
		if _, ok := currentPaths[path]; !ok {
			removed = append(removed, path)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	if len(added) == 0 && len(removed) == 0 {
		return []types.SummaryBullet{{
			Text:     "No changes detected from baseline",
			Evidence: map[string]any{"added": 0, "removed": 0},
		}}
	}

	addedSample := added[:min(len(added), 3)]
	removedSample := removed[:min(len(removed), 3)]

	var textParts []string
	if len(added) > 0 {
		textParts = append(textParts, fmt.Sprintf("added %d paths (e.g., %s)",
			len(added), strings.Join(addedSample, ", ")))
	}
	if len(removed) > 0 {
		textParts = append(textParts, fmt.Sprintf("removed %d paths (e.g., %s)",
			len(removed), strings.Join(removedSample, ", ")))
	}

	var citationPaths []string
	citationPaths = append(citationPaths, addedSample...)
	citationPaths = append(citationPaths, removedSample...)

	return []types.SummaryBullet{{
		Text:      "Baseline diff: " + strings.Join(textParts, "; "),
		Citations: uniqueCitations(citationPaths),
		Evidence: map[string]any{
			"added":         len(added),
			"removed":       len(removed),
			"added_paths":   added[:min(len(added), 10)],
			"removed_paths": removed[:min(len(removed), 10)],
		},
	}}
}
