// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

func TestFetchJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders": [1, 2, 3]}`))
	}))
	defer ts.Close()

	payload, err := FetchJSON(context.Background(), ts.Client(), ts.URL, 1<<20)
	require.NoError(t, err)

	want, err := jsontree.Decode([]byte(`{"orders": [1, 2, 3]}`))
	require.NoError(t, err)
	assert.True(t, jsontree.Equal(want, payload))
}

func TestFetchJSON_JSONSuffixBypassesContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer ts.Close()

	_, err := FetchJSON(context.Background(), ts.Client(), ts.URL+"/data.json", 1<<20)
	require.NoError(t, err)
}

func TestFetchJSON_RejectsNonJSONContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html></html>`))
	}))
	defer ts.Close()

	_, err := FetchJSON(context.Background(), ts.Client(), ts.URL, 1<<20)
	assert.ErrorIs(t, err, ErrNotJSONSource)
}

func TestFetchJSON_RejectsInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"broken":`))
	}))
	defer ts.Close()

	_, err := FetchJSON(context.Background(), ts.Client(), ts.URL, 1<<20)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestFetchJSON_RejectsOversizedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"blob": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`))
	}))
	defer ts.Close()

	_, err := FetchJSON(context.Background(), ts.Client(), ts.URL, 16)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchJSON_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := FetchJSON(context.Background(), ts.Client(), ts.URL, 1<<20)
	assert.Error(t, err)
}
