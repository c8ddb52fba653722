// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsonpath"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

const samplePreviewRunes = 60

// treeWalker traverses a payload depth-first and collects candidate
// bullets for every node it visits. Candidates are ranked and capped in
// render, not during the walk.
type treeWalker struct {
	topK               int
	length             string
	focusTokens        []string
	includeRootSummary bool
	candidates         []scoredBullet
}

func newTreeWalker(topK int, length string, focusTokens []string, includeRootSummary bool) *treeWalker {
	if _, ok := maxBulletsByLength[length]; !ok {
		length = types.LengthMedium
	}
	return &treeWalker{
		topK:               topK,
		length:             length,
		focusTokens:        focusTokens,
		includeRootSummary: includeRootSummary,
	}
}

func (w *treeWalker) add(bullet types.SummaryBullet, title string) {
	w.candidates = append(w.candidates, scoredBullet{
		bullet:     bullet,
		focusScore: scoreFocus(bullet.Text, w.focusTokens, title),
	})
}

func (w *treeWalker) walk(value any, path, title string) {
	switch node := value.(type) {
	case *jsontree.Object:
		w.walkObject(node, path, title)
	case []any:
		w.walkArray(node, path, title)
	default:
		w.walkScalar(node, path, title)
	}
}

func (w *treeWalker) walkObject(node *jsontree.Object, path, title string) {
	if title == "" {
		if path == "$" {
			title = "Root object"
		} else {
			title = lastPathSegment(path)
		}
	}
	keys := node.Keys()
	text := fmt.Sprintf("%s: object with %d keys", title, len(keys))
	if len(keys) > 0 {
		preview := strings.Join(keys[:min(len(keys), w.topK)], ", ")
		if len(keys) > w.topK {
			preview += ", ..."
		}
		text += fmt.Sprintf(" (sample: %s)", preview)
	}

	// The root-object bullet is suppressed by default; it carries no
	// information beyond the key previews its children repeat.
	if path != "$" || w.includeRootSummary {
		w.add(types.SummaryBullet{
			Text:      text,
			Citations: []types.Citation{{Path: path}},
			Evidence:  map[string]any{"keys": keys},
		}, title)
	}

	for _, key := range keys {
		value, _ := node.Get(key)
		w.walk(value, jsonpath.AppendKey(path, key), key)
	}
}

func (w *treeWalker) walkArray(node []any, path, title string) {
	if title == "" {
		if path == "$" {
			title = "Root array"
		} else {
			title = lastPathSegment(path)
		}
	}
	intro := fmt.Sprintf("%s: array with %s", title, plural(len(node), "item"))
	evidence := map[string]any{"count": len(node)}

	if len(node) == 0 {
		w.add(types.SummaryBullet{
			Text:      intro,
			Citations: []types.Citation{{Path: path}},
			Evidence:  evidence,
		}, title)
		return
	}

	if records, ok := allObjects(node); ok {
		analyzer := newArrayAnalyzer(w.topK)
		for _, record := range records {
			analyzer.ingest(record)
		}
		if analyzer.hasData() {
			// The aggregate view replaces per-record bullets.
			w.candidates = append(w.candidates, analyzer.render(title, jsonpath.Wildcard(path), w.focusTokens))
			return
		}
	}

	samples := node[:min(len(node), w.topK)]
	previews := make([]string, 0, len(samples))
	for _, sample := range samples {
		previews = append(previews, truncate(encodeValue(sample), samplePreviewRunes))
	}
	preview := strings.Join(previews, ", ")
	if len(node) > w.topK {
		preview += ", ..."
	}
	w.add(types.SummaryBullet{
		Text:      fmt.Sprintf("%s (sample: %s)", intro, preview),
		Citations: []types.Citation{{Path: path}},
		Evidence:  evidence,
	}, title)

	for i, value := range node {
		w.walk(value, jsonpath.AppendIndex(path, i), fmt.Sprintf("%s[%d]", title, i))
	}
}

func (w *treeWalker) walkScalar(value any, path, title string) {
	if title == "" {
		title = path
	}
	text := fmt.Sprintf("%s: %s", title, encodeValue(value))
	w.add(types.SummaryBullet{
		Text:      text,
		Citations: []types.Citation{{Path: path}},
		Evidence:  map[string]any{"value": value},
	}, title)
}

// render sorts candidates by focus score descending then text length
// ascending, and keeps the top N for the walker's length tier. The
// stable sort preserves traversal order among exact ties.
func (w *treeWalker) render() []types.SummaryBullet {
	sorted := make([]scoredBullet, len(w.candidates))
	copy(sorted, w.candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].focusScore != sorted[j].focusScore {
			return sorted[i].focusScore > sorted[j].focusScore
		}
		return len(sorted[i].bullet.Text) < len(sorted[j].bullet.Text)
	})

	maxBullets := maxBulletsByLength[w.length]
	if len(sorted) > maxBullets {
		sorted = sorted[:maxBullets]
	}
	out := make([]types.SummaryBullet, 0, len(sorted))
	for _, candidate := range sorted {
		out = append(out, candidate.bullet)
	}
	return out
}

func allObjects(node []any) ([]*jsontree.Object, bool) {
	records := make([]*jsontree.Object, 0, len(node))
	for _, item := range node {
		record, ok := item.(*jsontree.Object)
		if !ok {
			return nil, false
		}
		records = append(records, record)
	}
	return records, true
}

func lastPathSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
