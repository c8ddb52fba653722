// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsonpath"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

// numericAccumulator tracks running stats for one field's numeric
// observations. Min starts at +Inf and max at -Inf so an accumulator
// that never ingested a value renders min=max=0 instead of infinities.
type numericAccumulator struct {
	count   int
	total   float64
	minimum float64
	maximum float64
}

func newNumericAccumulator() numericAccumulator {
	return numericAccumulator{minimum: math.Inf(1), maximum: math.Inf(-1)}
}

func (a *numericAccumulator) ingest(value float64) {
	a.count++
	a.total += value
	if value < a.minimum {
		a.minimum = value
	}
	if value > a.maximum {
		a.maximum = value
	}
}

type numericStats struct {
	count int
	sum   float64
	min   float64
	max   float64
	avg   float64
}

func (a *numericAccumulator) render() numericStats {
	stats := numericStats{count: a.count, sum: a.total}
	if a.count > 0 {
		stats.avg = a.total / float64(a.count)
	}
	if !math.IsInf(a.minimum, 1) {
		stats.min = a.minimum
	}
	if !math.IsInf(a.maximum, -1) {
		stats.max = a.maximum
	}
	return stats
}

func (s numericStats) asEvidence() map[string]any {
	return map[string]any{
		"count": s.count,
		"sum":   s.sum,
		"min":   s.min,
		"max":   s.max,
		"avg":   s.avg,
	}
}

func (s numericStats) inline() string {
	return fmt.Sprintf("sum %s, avg %s, min %s, max %s",
		formatSum(s.sum), formatAvg(s.avg), formatExtreme(s.min), formatExtreme(s.max))
}

// stringCounter is a frequency counter that remembers first-seen order
// so top-K output breaks frequency ties deterministically.
type stringCounter struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newStringCounter() stringCounter {
	return stringCounter{counts: make(map[string]int), order: make(map[string]int)}
}

func (c *stringCounter) ingest(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order[value] = c.next
		c.next++
	}
	c.counts[value]++
}

type stringCount struct {
	Value string
	Count int
}

// topK returns the k most frequent values, descending by count, ties
// broken by first-seen order.
func (c *stringCounter) topK(k int) []stringCount {
	out := make([]stringCount, 0, len(c.counts))
	for value, count := range c.counts {
		out = append(out, stringCount{Value: value, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return c.order[out[i].Value] < c.order[out[j].Value]
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func topAsEvidence(top []stringCount) []any {
	out := make([]any, 0, len(top))
	for _, entry := range top {
		out = append(out, []any{entry.Value, entry.Count})
	}
	return out
}

func formatTop(top []stringCount) string {
	parts := make([]string, 0, len(top))
	for _, entry := range top {
		quoted, _ := json.Marshal(entry.Value)
		parts = append(parts, fmt.Sprintf("%s (%d)", quoted, entry.Count))
	}
	return strings.Join(parts, ", ")
}

// fieldSummary is one field's contribution to an array-of-objects
// bullet: an inline segment, optional indented detail lines for mixed
// types, an evidence block, and the citation paths it surfaced.
type fieldSummary struct {
	inlineText    string
	detailLines   []string
	evidence      map[string]any
	citationPaths []string
}

// fieldAggregator classifies one field's values across all records of
// an array of objects. Booleans are never folded into the numeric
// accumulator.
type fieldAggregator struct {
	fieldName     string
	topK          int
	typeCounts    map[jsontree.Kind]int
	numericAcc    numericAccumulator
	stringCounter stringCounter
	trueCount     int
	falseCount    int
}

func newFieldAggregator(fieldName string, topK int) *fieldAggregator {
	return &fieldAggregator{
		fieldName:     fieldName,
		topK:          topK,
		typeCounts:    make(map[jsontree.Kind]int),
		numericAcc:    newNumericAccumulator(),
		stringCounter: newStringCounter(),
	}
}

func (f *fieldAggregator) ingest(value any) {
	kind := jsontree.KindOf(value)
	f.typeCounts[kind]++
	switch kind {
	case jsontree.KindNumber:
		if n, ok := jsontree.AsFloat(value); ok {
			f.numericAcc.ingest(n)
		}
	case jsontree.KindString:
		f.stringCounter.ingest(value.(string))
	case jsontree.KindBoolean:
		if value.(bool) {
			f.trueCount++
		} else {
			f.falseCount++
		}
	}
}

func (f *fieldAggregator) hasValues() bool {
	for _, n := range f.typeCounts {
		if n > 0 {
			return true
		}
	}
	return false
}

func (f *fieldAggregator) booleanEvidence() map[string]any {
	return map[string]any{"true": f.trueCount, "false": f.falseCount}
}

// orderedTypeCounts returns the histogram restricted to observed types,
// keyed in fixed type precedence order for stable evidence encoding.
func (f *fieldAggregator) orderedTypeCounts() *jsontree.Object {
	out := jsontree.NewObject()
	for _, kind := range jsontree.KindOrder {
		if n := f.typeCounts[kind]; n > 0 {
			out.Set(string(kind), n)
		}
	}
	return out
}

// buildSummary decides the field's display mode by dominance rules and
// renders the inline segment, detail lines, and evidence.
func (f *fieldAggregator) buildSummary(arrayPath string) fieldSummary {
	numberCount := f.typeCounts[jsontree.KindNumber]
	stringCount := f.typeCounts[jsontree.KindString]
	booleanCount := f.typeCounts[jsontree.KindBoolean]
	objectCount := f.typeCounts[jsontree.KindObject]
	arrayCount := f.typeCounts[jsontree.KindArray]
	nullCount := f.typeCounts[jsontree.KindNull]
	nonNullTotal := numberCount + stringCount + booleanCount + objectCount + arrayCount

	fieldPath := jsonpath.AppendKey(arrayPath, f.fieldName)
	evidence := map[string]any{"type_counts": f.orderedTypeCounts()}
	summary := fieldSummary{evidence: evidence, citationPaths: []string{fieldPath}}

	addNull := func() {
		if nullCount > 0 {
			evidence["null"] = map[string]any{"count": nullCount}
		}
	}

	numericMode := numberCount > 0 &&
		nonNullTotal > 0 &&
		float64(numberCount)/float64(nonNullTotal) >= numericDominanceThreshold &&
		stringCount == 0 && objectCount == 0 && arrayCount == 0 && booleanCount == 0

	switch {
	case numericMode:
		stats := f.numericAcc.render()
		summary.inlineText = fmt.Sprintf("%s: %s", f.fieldName, stats.inline())
		evidence["number"] = stats.asEvidence()
		addNull()

	case stringCount > 0 && numberCount == 0 && booleanCount == 0 && objectCount == 0 && arrayCount == 0:
		top := f.stringCounter.topK(f.topK)
		summary.inlineText = fmt.Sprintf("%s: %s", f.fieldName, formatTop(top))
		evidence["string"] = map[string]any{"top": topAsEvidence(top)}
		addNull()

	case booleanCount > 0 && numberCount == 0 && stringCount == 0 && objectCount == 0 && arrayCount == 0:
		summary.inlineText = fmt.Sprintf("%s: true (%d), false (%d)", f.fieldName, f.trueCount, f.falseCount)
		evidence["boolean"] = f.booleanEvidence()
		addNull()

	case nonNullTotal == 0:
		summary.inlineText = fmt.Sprintf("%s: null (%d)", f.fieldName, nullCount)
		evidence["null"] = map[string]any{"count": nullCount}

	case objectCount == nonNullTotal:
		summary.inlineText = fmt.Sprintf("%s: object (%d)", f.fieldName, objectCount)
		addNull()

	case arrayCount == nonNullTotal:
		summary.inlineText = fmt.Sprintf("%s: array (%d)", f.fieldName, arrayCount)
		addNull()

	default:
		var countParts []string
		for _, kind := range jsontree.KindOrder {
			if kind == jsontree.KindNull {
				continue
			}
			if n := f.typeCounts[kind]; n > 0 {
				countParts = append(countParts, fmt.Sprintf("%s(%d)", kind, n))
			}
		}
		if nullCount > 0 {
			countParts = append(countParts, fmt.Sprintf("null(%d)", nullCount))
		}
		countsLabel := strings.Join(countParts, ", ")
		if countsLabel == "" {
			countsLabel = "n/a"
		}
		summary.inlineText = fmt.Sprintf("%s - mixed types detected: %s", f.fieldName, countsLabel)

		if numberCount > 0 {
			stats := f.numericAcc.render()
			evidence["number"] = stats.asEvidence()
			summary.detailLines = append(summary.detailLines, "- numbers: "+stats.inline())
		}
		if stringCount > 0 {
			top := f.stringCounter.topK(f.topK)
			evidence["string"] = map[string]any{"top": topAsEvidence(top)}
			summary.detailLines = append(summary.detailLines, "- strings: "+formatTop(top))
		}
		if booleanCount > 0 {
			evidence["boolean"] = f.booleanEvidence()
			summary.detailLines = append(summary.detailLines,
				fmt.Sprintf("- booleans: true (%d), false (%d)", f.trueCount, f.falseCount))
		}
		if nullCount > 0 {
			evidence["null"] = map[string]any{"count": nullCount}
			summary.detailLines = append(summary.detailLines, fmt.Sprintf("- null: %d", nullCount))
		}
		if objectCount > 0 {
			summary.detailLines = append(summary.detailLines, fmt.Sprintf("- objects: %d", objectCount))
		}
		if arrayCount > 0 {
			summary.detailLines = append(summary.detailLines, fmt.Sprintf("- arrays: %d", arrayCount))
		}
	}

	return summary
}
