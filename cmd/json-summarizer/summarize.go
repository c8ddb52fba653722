// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/httputil"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/profile"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/store"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a JSON payload from a file, URL, or stdin",
	Long: `Summarize reads a JSON payload and prints an evidence-backed bullet
summary. The payload comes from a file argument, --url, or stdin when
neither is given. A baseline (--baseline, --baseline-url, or a stored
snapshot via --baseline-name) adds a delta bullet describing what changed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("url", "", "fetch the payload from a URL instead of a file")
	summarizeCmd.Flags().StringSlice("focus", nil, "focus terms or JSON paths to rank bullets by")
	summarizeCmd.Flags().String("engine", types.EngineDeterministic, "summarization engine: deterministic, llm, hybrid")
	summarizeCmd.Flags().String("length", types.LengthMedium, "summary length: short, medium, long")
	summarizeCmd.Flags().String("style", types.StyleBullets, "rendering style hint")
	summarizeCmd.Flags().String("profile", "", "summarization profile id")
	summarizeCmd.Flags().String("baseline", "", "baseline JSON file for delta summaries")
	summarizeCmd.Flags().String("baseline-url", "", "fetch the baseline from a URL")
	summarizeCmd.Flags().String("baseline-name", "", "load the baseline from the snapshot store")
	summarizeCmd.Flags().Bool("include-root", false, "keep the root object bullet")
	summarizeCmd.Flags().Bool("no-redact", false, "disable PII redaction")
	summarizeCmd.Flags().Bool("json", false, "print the full evidence bundle as JSON")

	rootCmd.AddCommand(summarizeCmd)
}

// loadPayload reads and decodes JSON from a file path or stdin ("-" or
// empty).
func loadPayload(path string) (any, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	payload, err := jsontree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return payload, nil
}

func fetchPayload(ctx context.Context, url string, maxBytes int64) (any, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	return httputil.FetchJSON(ctx, client, url, maxBytes)
}

// resolveBaseline picks the baseline source in flag priority order:
// file, URL, then stored snapshot. Returns nil when none is set.
func resolveBaseline(ctx context.Context, cmd *cobra.Command, cfg types.Config) (any, error) {
	if path, _ := cmd.Flags().GetString("baseline"); path != "" {
		return loadPayload(path)
	}
	if url, _ := cmd.Flags().GetString("baseline-url"); url != "" {
		return fetchPayload(ctx, url, cfg.Limits.MaxPayloadBytes)
	}
	name, _ := cmd.Flags().GetString("baseline-name")
	if name == "" {
		return nil, nil
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Get(name)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	defer logger.Sync()

	ctx := cmd.Context()

	var payload any
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		payload, err = fetchPayload(ctx, url, cfg.Limits.MaxPayloadBytes)
	} else {
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		payload, err = loadPayload(file)
	}
	if err != nil {
		return err
	}
	if jsontree.DepthExceeds(payload, cfg.Limits.MaxJSONDepth) {
		return fmt.Errorf("payload exceeds depth limit %d", cfg.Limits.MaxJSONDepth)
	}

	baseline, err := resolveBaseline(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	if noRedact, _ := cmd.Flags().GetBool("no-redact"); noRedact {
		cfg.Redaction.Enabled = false
	}

	profiles := profile.NewRegistry(logger)
	if err := profiles.LoadDirectory(cfg.Profiles.Dir); err != nil {
		return err
	}

	engineName, _ := cmd.Flags().GetString("engine")
	profileID, _ := cmd.Flags().GetString("profile")
	eng, ok := profile.ForRequest(profiles, profileID, summarize.NewRegistry().Resolve(engineName), logger)
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %v)", profileID, profiles.IDs())
	}

	focus, _ := cmd.Flags().GetStringSlice("focus")
	length, _ := cmd.Flags().GetString("length")
	style, _ := cmd.Flags().GetString("style")
	includeRoot, _ := cmd.Flags().GetBool("include-root")

	encoded, err := jsontree.Marshal(payload)
	if err != nil {
		return err
	}

	start := time.Now()
	bundle, err := eng.Summarize(ctx, types.SummarizationRequest{
		Payload:            payload,
		Focus:              focus,
		Engine:             engineName,
		Length:             length,
		Style:              style,
		BaselinePayload:    baseline,
		IncludeRootSummary: includeRoot,
	}, cfg)
	if err != nil {
		return err
	}
	stats := summarize.BundleStats(bundle, int64(len(encoded)), time.Since(start))

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSummarizeOutput(bundle, stats, jsonOutput)
}

func formatSummarizeOutput(bundle types.EvidenceBundle, stats types.EvidenceStats, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"engine":             bundle.Engine,
			"focus":              bundle.Focus,
			"redactions_applied": bundle.RedactionsApplied,
			"bullets":            bundle.Bullets,
			"evidence_stats":     stats,
		})
	}

	for _, bullet := range bundle.Bullets {
		fmt.Printf("- %s\n", bullet.Text)
		for _, citation := range bullet.Citations {
			fmt.Printf("    %s\n", citation.Path)
		}
	}
	fmt.Printf("\nengine=%s paths=%d bytes=%d elapsed=%dms\n",
		bundle.Engine, stats.PathsCount, stats.BytesExamined, stats.ElapsedMS)
	return nil
}
