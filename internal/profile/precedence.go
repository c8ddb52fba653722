// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"sort"

	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// MergeRedaction combines the global redaction policy with a profile's
// overrides. The merged deny set is the union of the global and profile
// deny paths minus the profile allow paths;
// the merged deny list is sorted so the effective policy is stable
// across reloads. Profile regexes are appended to the global set.
func MergeRedaction(global types.RedactionConfig, profile *types.Profile) types.RedactionConfig {
	merged := global
	merged.DenyPaths = append([]string(nil), global.DenyPaths...)
	merged.ExtraRegexes = append([]string(nil), global.ExtraRegexes...)
	if profile == nil || profile.Redaction == nil {
		return merged
	}

	denySet := make(map[string]struct{}, len(global.DenyPaths)+len(profile.Redaction.DenyPaths))
	for _, path := range global.DenyPaths {
		denySet[path] = struct{}{}
	}
	for _, path := range profile.Redaction.DenyPaths {
		denySet[path] = struct{}{}
	}
	for _, path := range profile.Redaction.AllowPaths {
		delete(denySet, path)
	}

	deny := make([]string, 0, len(denySet))
	for path := range denySet {
		deny = append(deny, path)
	}
	sort.Strings(deny)
	merged.DenyPaths = deny

	for _, re := range profile.Redaction.ExtraRegexes {
		merged.ExtraRegexes = append(merged.ExtraRegexes, re.Pattern)
	}
	return merged
}

// ApplyDefaults fills unset request fields from the profile. An empty
// focus list counts as unset.
func ApplyDefaults(profile *types.Profile, req *types.SummarizationRequest) {
	if profile == nil {
		return
	}
	if len(req.Focus) == 0 {
		req.Focus = append([]string(nil), profile.Defaults.Focus...)
	}
	if req.Style == "" && profile.Defaults.Style != "" {
		req.Style = profile.Defaults.Style
	}
	if req.Length == "" && profile.Defaults.Length != "" {
		req.Length = profile.Defaults.Length
	}
}

// Limits applies a profile's summarizer limit overrides. Zero-valued
// overrides keep the global setting.
func Limits(profile *types.Profile, global types.SummarizerConfig) types.SummarizerConfig {
	out := global
	if profile == nil || profile.Limits == nil {
		return out
	}
	if profile.Limits.TopK > 0 {
		out.TopK = profile.Limits.TopK
	}
	if profile.Limits.NumericFieldsLimit > 0 {
		out.NumericFieldsLimit = profile.Limits.NumericFieldsLimit
	}
	if profile.Limits.StringCardinalityLimit > 0 {
		out.StringCardinalityLimit = profile.Limits.StringCardinalityLimit
	}
	return out
}
