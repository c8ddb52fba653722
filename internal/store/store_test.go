// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/jsontree"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "baselines.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	payload, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return payload
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := openStore(t)
	payload := decode(t, `{"orders": [{"id": 1, "total": 10.5}], "region": "eu"}`)

	require.NoError(t, s.Save("prod", payload))

	got, err := s.Get("prod")
	require.NoError(t, err)
	require.True(t, jsontree.Equal(payload, got))
}

func TestSaveOverwrites(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Save("prod", decode(t, `{"v": 1}`)))
	require.NoError(t, s.Save("prod", decode(t, `{"v": 2}`)))

	got, err := s.Get("prod")
	require.NoError(t, err)
	require.True(t, jsontree.Equal(decode(t, `{"v": 2}`), got))

	baselines, err := s.List()
	require.NoError(t, err)
	require.Len(t, baselines, 1)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get("absent")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestListOrderedByName(t *testing.T) {
	s := openStore(t)
	for _, name := range []string{"staging", "prod", "dev"} {
		require.NoError(t, s.Save(name, decode(t, `{}`)))
	}
	baselines, err := s.List()
	require.NoError(t, err)
	require.Len(t, baselines, 3)
	require.Equal(t, "dev", baselines[0].Name)
	require.Equal(t, "prod", baselines[1].Name)
	require.Equal(t, "staging", baselines[2].Name)
	require.NotZero(t, baselines[0].Bytes)
	require.False(t, baselines[0].CreatedAt.IsZero())
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Save("prod", decode(t, `{}`)))
	require.NoError(t, s.Delete("prod"))
	require.True(t, errors.Is(s.Delete("prod"), ErrNotFound))
}

func TestSaveEmptyNameRejected(t *testing.T) {
	s := openStore(t)
	require.Error(t, s.Save("", decode(t, `{}`)))
}
