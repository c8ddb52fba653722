// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

// Fetch errors are classified so the API layer can map them to the
// right error body.
var (
	ErrNotJSONSource = errors.New("url did not return JSON content")
	ErrInvalidJSON   = errors.New("response body is not valid JSON")
	ErrTooLarge      = errors.New("response body exceeds payload limit")
)

// FetchJSON retrieves a JSON document from url. The response must carry
// an application/json content type unless the URL path ends in .json,
// and the body is read through a maxBytes limit so a hostile source
// cannot exhaust memory.
func FetchJSON(ctx context.Context, client *http.Client, url string, maxBytes int64) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") &&
		!strings.HasSuffix(strings.ToLower(url), ".json") {
		return nil, ErrNotJSONSource
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, ErrTooLarge
	}

	payload, err := jsontree.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, err)
	}
	return payload, nil
}
