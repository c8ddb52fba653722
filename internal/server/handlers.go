// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/httputil"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/profile"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, fields map[string]any) {
	body := map[string]any{"error": code}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func (s *Server) writeAPIError(w http.ResponseWriter, apiErr *apiError) {
	fields := make(map[string]any, len(apiErr.Fields)+1)
	for k, v := range apiErr.Fields {
		fields[k] = v
	}
	if apiErr.Details != "" {
		fields["details"] = apiErr.Details
	}
	writeError(w, apiErr.Status, apiErr.Code, fields)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"engine":            types.EngineDeterministic,
		"version":           s.version,
		"max_payload_bytes": s.cfg.Limits.MaxPayloadBytes,
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	list := s.profiles.List()
	if list == nil {
		list = []types.ProfileSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": list})
}

// resolvePayload returns the decoded payload from the inline raw bytes
// or, when absent, from the remote URL.
func (s *Server) resolvePayload(ctx context.Context, raw json.RawMessage, url string) (any, *apiError) {
	if len(raw) > 0 {
		payload, err := jsontree.Decode(raw)
		if err != nil {
			return nil, badRequest("invalid_json", err.Error())
		}
		return payload, nil
	}
	if url == "" {
		return nil, nil
	}
	payload, err := httputil.FetchJSON(ctx, s.client, url, s.cfg.Limits.MaxPayloadBytes)
	switch {
	case err == nil:
		return payload, nil
	case errors.Is(err, httputil.ErrNotJSONSource):
		return nil, badRequest("invalid_json_source", "URL did not return JSON content.")
	case errors.Is(err, httputil.ErrInvalidJSON):
		return nil, badRequest("invalid_json", err.Error())
	case errors.Is(err, httputil.ErrTooLarge):
		return nil, payloadTooLarge(s.cfg.Limits.MaxPayloadBytes)
	default:
		return nil, &apiError{Status: http.StatusBadGateway, Code: "fetch_failed", Details: err.Error()}
	}
}

// resolveEngine picks the base engine by name and wraps it in the
// requested profile. An unknown profile is a client error; an unknown
// engine silently falls back to deterministic.
func (s *Server) resolveEngine(engineName, profileID string) (summarize.Engine, *apiError) {
	base := s.engines.Resolve(engineName)
	eng, ok := profile.ForRequest(s.profiles, profileID, base, s.logger)
	if !ok {
		return nil, &apiError{
			Status: http.StatusBadRequest,
			Code:   "unknown_profile",
			Fields: map[string]any{"available": s.profiles.IDs()},
		}
	}
	return eng, nil
}

type summaryResponse struct {
	Engine            string                `json:"engine"`
	Focus             []string              `json:"focus"`
	RedactionsApplied bool                  `json:"redactions_applied"`
	Bullets           []types.SummaryBullet `json:"bullets"`
	EvidenceStats     types.EvidenceStats   `json:"evidence_stats"`
}

type chatResponse struct {
	Reply         string                `json:"reply"`
	Engine        string                `json:"engine"`
	Bullets       []types.SummaryBullet `json:"bullets"`
	EvidenceStats types.EvidenceStats   `json:"evidence_stats"`
}

// normalizeBullets replaces nil slices so the wire format always
// carries arrays.
func normalizeBullets(bullets []types.SummaryBullet) []types.SummaryBullet {
	if bullets == nil {
		return []types.SummaryBullet{}
	}
	for i := range bullets {
		if bullets[i].Citations == nil {
			bullets[i].Citations = []types.Citation{}
		}
	}
	return bullets
}

func (s *Server) handleSummarizeJSON(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if apiErr := s.decodeEnvelope(w, r, &req); apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}

	ctx := r.Context()
	payload, apiErr := s.resolvePayload(ctx, req.Payload, req.payloadURL())
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}
	if payload == nil {
		s.writeAPIError(w, badRequest("invalid_request", "`json` or `json_url` is required."))
		return
	}
	baseline, apiErr := s.resolvePayload(ctx, req.BaselineJSON, req.baselineURL())
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}

	payloadBytes, apiErr := s.validatePayload(payload)
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}
	baselineBytes := 0
	if baseline != nil {
		if baselineBytes, apiErr = s.validatePayload(baseline); apiErr != nil {
			s.writeAPIError(w, apiErr)
			return
		}
	}

	eng, apiErr := s.resolveEngine(req.Engine, req.Profile)
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}

	cfg := s.cfg
	if req.DisableRedaction {
		cfg.Redaction.Enabled = false
	}

	start := time.Now()
	bundle, err := eng.Summarize(ctx, types.SummarizationRequest{
		Payload:            payload,
		Focus:              []string(req.Focus),
		Engine:             req.Engine,
		Length:             req.Length,
		Style:              req.Style,
		Template:           req.Template,
		BaselinePayload:    baseline,
		IncludeRootSummary: req.IncludeRootSummary,
	}, cfg)
	if err != nil {
		s.logger.Error("summarization failed", zap.Error(err), zap.String("request_id", RequestID(ctx)))
		writeError(w, http.StatusInternalServerError, "summarization_failed", map[string]any{"details": err.Error()})
		return
	}

	stats := summarize.BundleStats(bundle, int64(payloadBytes+baselineBytes), time.Since(start))

	if req.streaming() {
		s.streamBundle(w, r, bundle, stats)
		return
	}

	focus := bundle.Focus
	if focus == nil {
		focus = []string{}
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Engine:            bundle.Engine,
		Focus:             focus,
		RedactionsApplied: bundle.RedactionsApplied,
		Bullets:           normalizeBullets(bundle.Bullets),
		EvidenceStats:     stats,
	})
}

// streamBundle replays the bundle as SSE events, one per bullet, then
// a completion footer with the evidence stats.
func (s *Server) streamBundle(w http.ResponseWriter, r *http.Request, bundle types.EvidenceBundle, stats types.EvidenceStats) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", map[string]any{"details": "streaming unsupported"})
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	delay := s.cfg.Server.StreamChunkDelay
	for _, bullet := range normalizeBullets(bundle.Bullets) {
		event, err := json.Marshal(map[string]any{"phase": "summary", "bullet": bullet})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", event)
		flusher.Flush()
		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
	}
	footer, err := json.Marshal(map[string]any{"phase": "complete", "evidence_stats": stats})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", footer)
	flusher.Flush()
}

// focusFromMessages tokenizes the most recent user message so chat
// questions steer bullet ranking.
func focusFromMessages(messages []chatMessage) []string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		return strings.Fields(messages[i].Content)
	}
	return nil
}

func mergeFocus(explicit, derived []string) []string {
	seen := make(map[string]struct{}, len(explicit)+len(derived))
	var out []string
	for _, group := range [][]string{explicit, derived} {
		for _, term := range group {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if apiErr := s.decodeEnvelope(w, r, &req); apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}
	if len(req.Messages) == 0 {
		s.writeAPIError(w, badRequest("invalid_request", "at least one message is required"))
		return
	}

	ctx := r.Context()
	payload, apiErr := s.resolvePayload(ctx, req.Payload, req.payloadURL())
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}
	if payload == nil {
		s.writeAPIError(w, badRequest("invalid_request", "`json` or `json_url` is required for chat."))
		return
	}

	payloadBytes, apiErr := s.validatePayload(payload)
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}

	eng, apiErr := s.resolveEngine(req.Engine, req.Profile)
	if apiErr != nil {
		s.writeAPIError(w, apiErr)
		return
	}

	focus := mergeFocus([]string(req.Focus), focusFromMessages(req.Messages))

	start := time.Now()
	bundle, err := eng.Summarize(ctx, types.SummarizationRequest{
		Payload:            payload,
		Focus:              focus,
		Engine:             req.Engine,
		Length:             req.Length,
		Style:              req.Style,
		Template:           req.Template,
		IncludeRootSummary: req.IncludeRootSummary,
	}, s.cfg)
	if err != nil {
		s.logger.Error("chat summarization failed", zap.Error(err), zap.String("request_id", RequestID(ctx)))
		writeError(w, http.StatusInternalServerError, "summarization_failed", map[string]any{"details": err.Error()})
		return
	}

	stats := summarize.BundleStats(bundle, int64(payloadBytes), time.Since(start))

	lines := make([]string, 0, len(bundle.Bullets))
	for _, bullet := range bundle.Bullets {
		lines = append(lines, "- "+bullet.Text)
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Reply:         strings.Join(lines, "\n"),
		Engine:        bundle.Engine,
		Bullets:       normalizeBullets(bundle.Bullets),
		EvidenceStats: stats,
	})
}
