package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceStore_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.env")
	ctx := context.Background()

	first, err := NewPreferenceStore(path)
	require.NoError(t, err)

	_, ok, err := first.Get(ctx, "preventAutoRefresh")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Set(ctx, "preventAutoRefresh", "true"))

	second, err := NewPreferenceStore(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "preventAutoRefresh")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "preventAutoRefresh")
}

func TestPreferenceStore_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.env")
	ctx := context.Background()
	s, err := NewPreferenceStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	require.NoError(t, s.Set(ctx, "preventAutoRefresh", "false"))

	v, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestPreferenceStore_Validation(t *testing.T) {
	_, err := NewPreferenceStore("")
	require.Error(t, err)

	s, err := NewPreferenceStore(filepath.Join(t.TempDir(), "prefs.env"))
	require.NoError(t, err)
	require.Error(t, s.Set(context.Background(), "", "x"))
}

func TestPreferenceStore_ClientScopedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.env")
	ctx := context.Background()
	s, err := NewPreferenceStore(path)
	require.NoError(t, err)

	key := "0b6f3c1e-8f4a-4d7e-9a51-2f6c1d9e7b10:preventAutoRefresh"
	require.NoError(t, s.Set(ctx, key, "true"))

	reopened, err := NewPreferenceStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok, err = reopened.Get(ctx, "preventAutoRefresh")
	require.NoError(t, err)
	assert.False(t, ok)
}
