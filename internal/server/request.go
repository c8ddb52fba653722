// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

// apiError is an error envelope rendered verbatim to the client. The
// Fields map is merged into the response body next to "error".
type apiError struct {
	Status  int
	Code    string
	Details string
	Fields  map[string]any
}

func (e *apiError) Error() string { return e.Code }

func badRequest(code, details string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Details: details}
}

// focusList accepts a JSON string, an array, or null. Non-string array
// items are stringified rather than rejected.
type focusList []string

func (f *focusList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = nil
	case string:
		*f = focusList{v}
	case []any:
		out := make(focusList, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			encoded, err := json.Marshal(item)
			if err != nil {
				return err
			}
			out = append(out, string(encoded))
		}
		*f = out
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		*f = focusList{string(encoded)}
	}
	return nil
}

// summarizeRequest is the /v1/summarize-json envelope. The inline
// payload arrives under "json"; "url" is accepted as an alias for
// "json_url" and "baseline_json_url" for "baseline_url".
type summarizeRequest struct {
	Payload    json.RawMessage `json:"json"`
	PayloadURL string          `json:"json_url"`
	URL        string          `json:"url"`

	Focus    focusList `json:"focus"`
	Engine   string    `json:"engine"`
	Length   string    `json:"length"`
	Style    string    `json:"style"`
	Template string    `json:"template"`
	Profile  string    `json:"profile"`

	BaselineJSON    json.RawMessage `json:"baseline_json"`
	BaselineURL     string          `json:"baseline_url"`
	BaselineJSONURL string          `json:"baseline_json_url"`

	Stream             *bool `json:"stream"`
	DisableRedaction   bool  `json:"disable_redaction"`
	IncludeRootSummary bool  `json:"include_root_summary"`
}

func (r *summarizeRequest) payloadURL() string {
	if r.PayloadURL != "" {
		return r.PayloadURL
	}
	return r.URL
}

func (r *summarizeRequest) baselineURL() string {
	if r.BaselineURL != "" {
		return r.BaselineURL
	}
	return r.BaselineJSONURL
}

// streaming defaults to true when the field is absent.
func (r *summarizeRequest) streaming() bool {
	return r.Stream == nil || *r.Stream
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the /v1/chat envelope. Chat never streams and never
// carries a baseline.
type chatRequest struct {
	Messages []chatMessage `json:"messages"`

	Payload    json.RawMessage `json:"json"`
	PayloadURL string          `json:"json_url"`
	URL        string          `json:"url"`

	Focus              focusList `json:"focus"`
	Engine             string    `json:"engine"`
	Length             string    `json:"length"`
	Style              string    `json:"style"`
	Template           string    `json:"template"`
	Profile            string    `json:"profile"`
	IncludeRootSummary bool      `json:"include_root_summary"`
}

func (r *chatRequest) payloadURL() string {
	if r.PayloadURL != "" {
		return r.PayloadURL
	}
	return r.URL
}

// decodeEnvelope reads and parses a request body into dst, enforcing
// the payload size limit at the transport boundary. An empty body
// decodes as an empty envelope.
func (s *Server) decodeEnvelope(w http.ResponseWriter, r *http.Request, dst any) *apiError {
	limit := s.cfg.Limits.MaxPayloadBytes
	if r.ContentLength > limit {
		return payloadTooLarge(limit)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return payloadTooLarge(limit)
		}
		return badRequest("invalid_json", err.Error())
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest("invalid_json", err.Error())
	}
	return nil
}

func payloadTooLarge(limit int64) *apiError {
	return &apiError{
		Status: http.StatusRequestEntityTooLarge,
		Code:   "payload_too_large",
		Fields: map[string]any{"limit_bytes": limit},
	}
}

// validatePayload re-encodes the decoded payload to measure it, then
// enforces the size and depth guards. Returns the encoded byte count.
func (s *Server) validatePayload(payload any) (int, *apiError) {
	encoded, err := jsontree.Marshal(payload)
	if err != nil {
		return 0, badRequest("invalid_json", fmt.Sprintf("payload is not JSON serializable: %v", err))
	}
	if int64(len(encoded)) > s.cfg.Limits.MaxPayloadBytes {
		return 0, payloadTooLarge(s.cfg.Limits.MaxPayloadBytes)
	}
	if jsontree.DepthExceeds(payload, s.cfg.Limits.MaxJSONDepth) {
		return 0, &apiError{
			Status: http.StatusBadRequest,
			Code:   "depth_limit",
			Fields: map[string]any{"limit": s.cfg.Limits.MaxJSONDepth},
		}
	}
	return len(encoded), nil
}
