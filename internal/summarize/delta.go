// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// deltaSummarizer compares a baseline payload against the current one
// and emits at most one bullet describing the difference.
type deltaSummarizer struct {
	topK int
}

func (d deltaSummarizer) summarize(baseline, current any) (types.SummaryBullet, bool) {
	baseObj, baseIsObj := baseline.(*jsontree.Object)
	currObj, currIsObj := current.(*jsontree.Object)
	if baseIsObj && currIsObj {
		return d.objectDelta(baseObj, currObj)
	}

	baseArr, baseIsArr := baseline.([]any)
	currArr, currIsArr := current.([]any)
	if baseIsArr && currIsArr {
		return d.arrayDelta(baseArr, currArr)
	}

	if !jsontree.Equal(baseline, current) {
		return types.SummaryBullet{
			Text:      fmt.Sprintf("Root changed from %s to %s", encodeValue(baseline), encodeValue(current)),
			Citations: []types.Citation{{Path: "$"}},
			Evidence:  map[string]any{"baseline": baseline, "current": current},
		}, true
	}
	return types.SummaryBullet{}, false
}

func (d deltaSummarizer) objectDelta(baseline, current *jsontree.Object) (types.SummaryBullet, bool) {
	var added, removed, changed []string
	for _, key := range current.Keys() {
		if !baseline.Has(key) {
			added = append(added, key)
		}
	}
	for _, key := range baseline.Keys() {
		if !current.Has(key) {
			removed = append(removed, key)
		}
	}
	for _, key := range current.Keys() {
		if !baseline.Has(key) {
			continue
		}
		baseValue, _ := baseline.Get(key)
		currValue, _ := current.Get(key)
		if !jsontree.Equal(baseValue, currValue) {
			changed = append(changed, key)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)

	if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
		return types.SummaryBullet{}, false
	}

	var segments []string
	if len(added) > 0 {
		segments = append(segments, "added keys: "+strings.Join(added[:min(len(added), d.topK)], ", "))
	}
	if len(removed) > 0 {
		segments = append(segments, "removed keys: "+strings.Join(removed[:min(len(removed), d.topK)], ", "))
	}
	if len(changed) > 0 {
		segments = append(segments, "modified keys: "+strings.Join(changed[:min(len(changed), d.topK)], ", "))
	}

	return types.SummaryBullet{
		Text:      "Delta: " + strings.Join(segments, "; "),
		Citations: []types.Citation{{Path: "$"}},
		Evidence: map[string]any{
			"added":   added,
			"removed": removed,
			"changed": changed,
		},
	}, true
}

func (d deltaSummarizer) arrayDelta(baseline, current []any) (types.SummaryBullet, bool) {
	if len(baseline) == len(current) && jsontree.Equal(baseline, current) {
		return types.SummaryBullet{}, false
	}
	diff := len(current) - len(baseline)
	text := fmt.Sprintf("Delta: array length changed from %d to %d", len(baseline), len(current))
	if diff > 0 {
		text += fmt.Sprintf(" (+%d)", diff)
	} else if diff < 0 {
		text += fmt.Sprintf(" (%d)", diff)
	}
	return types.SummaryBullet{
		Text:      text,
		Citations: []types.Citation{{Path: "$"}},
		Evidence: map[string]any{
			"baseline_length": len(baseline),
			"current_length":  len(current),
		},
	}, true
}
