// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// scoredBullet pairs a bullet with its focus relevance for the final
// sort-and-cap pass.
type scoredBullet struct {
	bullet     types.SummaryBullet
	focusScore int
}

// arrayAnalyzer aggregates an array whose elements are all objects into
// a single bullet. The field key set is the union across all records.
type arrayAnalyzer struct {
	topK        int
	count       int
	aggregators map[string]*fieldAggregator
}

func newArrayAnalyzer(topK int) *arrayAnalyzer {
	return &arrayAnalyzer{topK: topK, aggregators: make(map[string]*fieldAggregator)}
}

func (a *arrayAnalyzer) ingest(record *jsontree.Object) {
	a.count++
	for _, key := range record.Keys() {
		agg, ok := a.aggregators[key]
		if !ok {
			agg = newFieldAggregator(key, a.topK)
			a.aggregators[key] = agg
		}
		value, _ := record.Get(key)
		agg.ingest(value)
	}
}

func (a *arrayAnalyzer) hasData() bool {
	return a.count > 0
}

// render produces the aggregate bullet: intro segment, one inline
// segment per field in sorted key order, mixed-type detail lines
// indented below, and citations for the wildcard array path plus every
// field path the summaries surfaced.
func (a *arrayAnalyzer) render(title, arrayPath string, focusTokens []string) scoredBullet {
	inlineParts := []string{fmt.Sprintf("%s: %s", title, plural(a.count, "record"))}
	var detailLines []string
	evidence := map[string]any{"records": a.count}

	citationSet := map[string]struct{}{arrayPath: {}}

	fieldNames := make([]string, 0, len(a.aggregators))
	for name := range a.aggregators {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	for _, name := range fieldNames {
		agg := a.aggregators[name]
		if !agg.hasValues() {
			continue
		}
		summary := agg.buildSummary(arrayPath)
		if summary.inlineText != "" {
			inlineParts = append(inlineParts, summary.inlineText)
		}
		detailLines = append(detailLines, summary.detailLines...)
		if len(summary.evidence) > 0 {
			evidence[name] = summary.evidence
		}
		for _, path := range summary.citationPaths {
			citationSet[path] = struct{}{}
		}
	}

	text := strings.Join(inlineParts, "; ")
	if len(detailLines) > 0 {
		text += "\n  " + strings.Join(detailLines, "\n  ")
	}

	citationPaths := make([]string, 0, len(citationSet))
	for path := range citationSet {
		citationPaths = append(citationPaths, path)
	}
	sort.Strings(citationPaths)
	citations := make([]types.Citation, 0, len(citationPaths))
	for _, path := range citationPaths {
		citations = append(citations, types.Citation{Path: path})
	}

	bullet := types.SummaryBullet{Text: text, Citations: citations, Evidence: evidence}
	return scoredBullet{bullet: bullet, focusScore: scoreFocus(text, focusTokens, title)}
}
