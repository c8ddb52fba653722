// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package redact

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

func newRedactor(t *testing.T, mutate func(*types.RedactionConfig)) *Redactor {
	t.Helper()
	cfg := types.DefaultConfig().Redaction
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	payload, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return payload
}

func TestRedactEmailAndPhone(t *testing.T) {
	r := newRedactor(t, nil)
	payload := decode(t, `{
		"user": {"email": "alice@example.com", "phone": "555-123-4567"},
		"note": "no pii here"
	}`)

	sanitized, applied, paths := r.Redact(payload)
	require.True(t, applied)
	require.Equal(t, []string{"$.user.email", "$.user.phone"}, paths)

	user, _ := sanitized.(*jsontree.Object).Get("user")
	email, _ := user.(*jsontree.Object).Get("email")
	phone, _ := user.(*jsontree.Object).Get("phone")
	note, _ := sanitized.(*jsontree.Object).Get("note")
	require.Equal(t, "[REDACTED]", email)
	require.Equal(t, "[REDACTED]", phone)
	require.Equal(t, "no pii here", note)
}

func TestRedactDenyPathReplacesSubtree(t *testing.T) {
	r := newRedactor(t, func(cfg *types.RedactionConfig) {
		cfg.DenyPaths = []string{"$.credentials"}
	})
	payload := decode(t, `{"credentials": {"user": "bob", "pass": "hunter2"}, "ok": 1}`)

	sanitized, applied, paths := r.Redact(payload)
	require.True(t, applied)
	require.Equal(t, []string{"$.credentials"}, paths)

	creds, _ := sanitized.(*jsontree.Object).Get("credentials")
	require.Equal(t, "[REDACTED]", creds)
}

func TestRedactDenyPathGlob(t *testing.T) {
	r := newRedactor(t, func(cfg *types.RedactionConfig) {
		cfg.DenyPaths = []string{"$.*password"}
	})
	payload := decode(t, `{"auth": {"password": "x"}, "users": [{"password": "y"}]}`)

	_, applied, paths := r.Redact(payload)
	require.True(t, applied)
	require.Equal(t, []string{"$.auth.password", "$.users[0].password"}, paths)
}

func TestRedactDisabledPassthrough(t *testing.T) {
	r := newRedactor(t, func(cfg *types.RedactionConfig) {
		cfg.Enabled = false
	})
	payload := decode(t, `{"email": "alice@example.com"}`)

	sanitized, applied, paths := r.Redact(payload)
	require.False(t, applied)
	require.Empty(t, paths)
	require.True(t, jsontree.Equal(payload, sanitized))
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	r := newRedactor(t, nil)
	payload := decode(t, `{"contacts": [{"email": "alice@example.com"}]}`)
	snapshot := jsontree.Clone(payload)

	_, applied, _ := r.Redact(payload)
	require.True(t, applied)
	require.True(t, jsontree.Equal(snapshot, payload), "input payload was mutated")
}

func TestRedactIdempotent(t *testing.T) {
	r := newRedactor(t, nil)
	payload := decode(t, `{"email": "alice@example.com", "n": 42}`)

	once, applied, _ := r.Redact(payload)
	require.True(t, applied)
	twice, _, _ := r.Redact(once)
	require.True(t, jsontree.Equal(once, twice))
}

func TestRedactNonStringScalarsUntouched(t *testing.T) {
	r := newRedactor(t, nil)
	payload := decode(t, `{"count": 4111111111111111, "flag": true, "nothing": null}`)

	sanitized, applied, paths := r.Redact(payload)
	require.False(t, applied)
	require.Empty(t, paths)
	require.True(t, jsontree.Equal(payload, sanitized))
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := types.DefaultConfig().Redaction
	cfg.ExtraRegexes = []string{"("}
	_, err := New(cfg)
	require.Error(t, err)
}

func TestRedactExtraRegexes(t *testing.T) {
	r := newRedactor(t, func(cfg *types.RedactionConfig) {
		cfg.ExtraRegexes = []string{`(?i)\bssn[-: ]`}
	})
	payload := decode(t, `{"id": "SSN: 123-45-6789"}`)

	_, applied, paths := r.Redact(payload)
	require.True(t, applied)
	require.Equal(t, []string{"$.id"}, paths)
}

func TestRedactPathOrderIsDocumentOrder(t *testing.T) {
	r := newRedactor(t, nil)
	payload := decode(t, `{
		"b": "b@example.com",
		"a": "a@example.com"
	}`)

	_, _, paths := r.Redact(payload)
	if !reflect.DeepEqual(paths, []string{"$.b", "$.a"}) {
		t.Errorf("paths = %v, want document order", paths)
	}
}
