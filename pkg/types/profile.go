// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"regexp"
	"strings"
)

// semverRe validates profile versions (MAJOR.MINOR.PATCH with optional
// pre-release and build metadata).
var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[a-zA-Z0-9.-]+)?(?:\+[a-zA-Z0-9.-]+)?$`)

// validExtractorTypes are the recognised extractor spec prefixes.
var validExtractorTypes = map[string]bool{
	"categorical": true,
	"numeric":     true,
	"timebucket":  true,
	"diff":        true,
	"string":      true,
	"boolean":     true,
}

// ProfileRegex is a named redaction pattern contributed by a profile.
type ProfileRegex struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// ProfileRedaction extends the global redaction policy for one profile.
type ProfileRedaction struct {
	// AllowPaths exempt matching paths from the merged deny list.
	AllowPaths []string `json:"allow_paths,omitempty" yaml:"allow_paths,omitempty"`

	// DenyPaths are added to the global deny list.
	DenyPaths []string `json:"deny_paths,omitempty" yaml:"deny_paths,omitempty"`

	// ExtraRegexes are additional value patterns to redact.
	ExtraRegexes []ProfileRegex `json:"extra_regexes,omitempty" yaml:"extra_regexes,omitempty"`
}

// ProfileLimits overrides summarizer limits for one profile. Zero means
// "use the global value".
type ProfileLimits struct {
	TopK                   int `json:"topk,omitempty" yaml:"topk,omitempty"`
	NumericFieldsLimit     int `json:"numeric_fields_limit,omitempty" yaml:"numeric_fields_limit,omitempty"`
	StringCardinalityLimit int `json:"string_cardinality_limit,omitempty" yaml:"string_cardinality_limit,omitempty"`
}

// ProfileTime holds time-bucketing settings.
type ProfileTime struct {
	// Timezone is an IANA timezone name or "UTC".
	Timezone string `json:"timezone" yaml:"timezone"`

	// TimebucketDefault is minute, hour, or day.
	TimebucketDefault string `json:"timebucket_default" yaml:"timebucket_default"`
}

// ProfileLLMHints customise LLM prompts for one profile.
type ProfileLLMHints struct {
	SystemSuffix  string `json:"system_suffix,omitempty" yaml:"system_suffix,omitempty"`
	BulletPrefix  string `json:"bullet_prefix,omitempty" yaml:"bullet_prefix,omitempty"`
	NarrativeTone string `json:"narrative_tone,omitempty" yaml:"narrative_tone,omitempty"`
}

// ProfileDefaults are request defaults applied when the request leaves
// the corresponding field unset. An empty focus list counts as unset;
// the request schema cannot distinguish "no focus" from "default focus".
type ProfileDefaults struct {
	Focus  []string `json:"focus" yaml:"focus"`
	Style  string   `json:"style" yaml:"style"`
	Length string   `json:"length" yaml:"length"`
}

// Profile is a named summarization preset loaded from YAML.
type Profile struct {
	ID          string           `json:"id" yaml:"id"`
	Version     string           `json:"version" yaml:"version"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Defaults    ProfileDefaults  `json:"defaults" yaml:"defaults"`

	// Extractors lists extractor specs such as "categorical:level",
	// "numeric:latency_ms", "timebucket:ts:minute", or "diff".
	Extractors []string `json:"extractors" yaml:"extractors"`

	LLMHints  *ProfileLLMHints  `json:"llm_hints,omitempty" yaml:"llm_hints,omitempty"`
	Redaction *ProfileRedaction `json:"redaction,omitempty" yaml:"redaction,omitempty"`
	Limits    *ProfileLimits    `json:"limits,omitempty" yaml:"limits,omitempty"`
	Time      *ProfileTime      `json:"time,omitempty" yaml:"time,omitempty"`
}

// Validate checks identifiers, version format, extractor specs, and
// redaction regex compilability. Regex failures here are configuration
// errors and abort profile loading.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile is missing an id")
	}
	if p.Title == "" {
		return fmt.Errorf("profile %q is missing a title", p.ID)
	}
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	if !semverRe.MatchString(p.Version) {
		return fmt.Errorf("profile %q: invalid semantic version %q", p.ID, p.Version)
	}
	for _, spec := range p.Extractors {
		extractorType, _, _ := strings.Cut(spec, ":")
		if !validExtractorTypes[extractorType] {
			return fmt.Errorf("profile %q: unknown extractor type %q in %q", p.ID, extractorType, spec)
		}
	}
	if p.Redaction != nil {
		for _, re := range p.Redaction.ExtraRegexes {
			if _, err := regexp.Compile(re.Pattern); err != nil {
				return fmt.Errorf("profile %q: regex %q does not compile: %w", p.ID, re.Name, err)
			}
		}
	}
	return nil
}

// ProfileSummary is the discovery view of a profile.
type ProfileSummary struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}
