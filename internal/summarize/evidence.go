// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"time"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsonpath"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// attachCitationPreviews deduplicates every bullet's citations by path
// (first occurrence wins) and backfills missing previews by querying
// the payloads in order, taking the first non-empty result. Malformed
// citation paths resolve to no preview rather than an error.
func attachCitationPreviews(bullets []types.SummaryBullet, payloads []any) {
	for bi := range bullets {
		seen := make(map[string]struct{}, len(bullets[bi].Citations))
		unique := bullets[bi].Citations[:0]
		for _, citation := range bullets[bi].Citations {
			if _, dup := seen[citation.Path]; dup {
				continue
			}
			seen[citation.Path] = struct{}{}
			unique = append(unique, citation)
		}
		bullets[bi].Citations = unique

		for ci := range bullets[bi].Citations {
			citation := &bullets[bi].Citations[ci]
			if len(citation.ValuePreview) == 0 {
				for _, payload := range payloads {
					if preview := jsonpath.CitationExamples(payload, citation.Path, 0); len(preview) > 0 {
						citation.ValuePreview = preview
						break
					}
				}
			}
			if len(citation.ValuePreviewTyped) == 0 {
				for _, payload := range payloads {
					if typed := jsonpath.TypedExamples(payload, citation.Path, 0, 0); len(typed) > 0 {
						citation.ValuePreviewTyped = typed
						break
					}
				}
			}
		}
	}
}

// BundleStats derives traceability stats for a finished bundle. A
// citation path counts only when it still resolves against the bundle's
// sanitized payload or baseline.
func BundleStats(bundle types.EvidenceBundle, bytesExamined int64, elapsed time.Duration) types.EvidenceStats {
	payload := bundle.Metadata["payload"]
	baseline := bundle.Metadata["baseline"]

	unique := make(map[string]struct{})
	for _, bullet := range bundle.Bullets {
		for _, citation := range bullet.Citations {
			if _, ok := unique[citation.Path]; ok {
				continue
			}
			if (payload != nil && jsonpath.Exists(payload, citation.Path)) ||
				(baseline != nil && jsonpath.Exists(baseline, citation.Path)) {
				unique[citation.Path] = struct{}{}
			}
		}
	}
	return types.EvidenceStats{
		PathsCount:    len(unique),
		BytesExamined: int(bytesExamined),
		ElapsedMS:     int(elapsed.Milliseconds()),
	}
}
