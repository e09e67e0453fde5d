package service

import (
	"context"
	"errors"
	"testing"

	"github.com/j26/auth-demo/internal/adapters/memory"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPreferenceKey(t *testing.T) {
	assert.Equal(t, "preventAutoRefresh", PreferenceKey("", DefaultPreferenceKey))
	assert.Equal(t, "abc:preventAutoRefresh", PreferenceKey("abc", DefaultPreferenceKey))
}

func TestAutoRefreshPreference_DefaultsToEnabled(t *testing.T) {
	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: memory.NewPreferenceStore()})
	require.NoError(t, err)

	state, err := pref.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)
	assert.True(t, pref.ScriptConfig().Enabled)
}

func TestAutoRefreshPreference_LoadWritesDefault(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPreferenceStore()

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)
	_, err = pref.Load(ctx)
	require.NoError(t, err)

	v, ok, err := store.Get(ctx, DefaultPreferenceKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestAutoRefreshPreference_DefaultWriteFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPreferenceStore(ctrl)
	boom := errors.New("read-only")
	store.EXPECT().Get(gomock.Any(), DefaultPreferenceKey).Return("", false, nil).Times(1)
	store.EXPECT().Set(gomock.Any(), DefaultPreferenceKey, "false").Return(boom).Times(1)

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)

	state, err := pref.Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)

	// The flag counts as loaded; the store is not hit again.
	state, err = pref.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)
}

func TestAutoRefreshPreference_ToggleSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPreferenceStore()

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)
	_, err = pref.Load(ctx)
	require.NoError(t, err)

	state, err := pref.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainsession.AutoRefreshDisabled, state)

	v, ok, err := store.Get(ctx, DefaultPreferenceKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", v)

	reloaded, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)
	state, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainsession.AutoRefreshDisabled, state)
	assert.False(t, reloaded.ScriptConfig().Enabled)

	state, err = reloaded.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)
	v, _, _ = store.Get(ctx, DefaultPreferenceKey)
	assert.Equal(t, "false", v)
}

func TestAutoRefreshPreference_LoadsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPreferenceStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "c1:preventAutoRefresh").Return("true", true, nil).Times(1)

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{
		Store: store,
		Key:   PreferenceKey("c1", DefaultPreferenceKey),
	})
	require.NoError(t, err)

	for range 3 {
		state, err := pref.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domainsession.AutoRefreshDisabled, state)
	}
}

func TestAutoRefreshPreference_SaveFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPreferenceStore(ctrl)
	boom := errors.New("disk full")
	store.EXPECT().Set(gomock.Any(), DefaultPreferenceKey, "true").Return(boom)

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)

	state, err := pref.Toggle(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)
	assert.Equal(t, domainsession.AutoRefreshEnabled, pref.State())
}

func TestAutoRefreshPreference_LoadErrorKeepsDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPreferenceStore(ctrl)
	store.EXPECT().Get(gomock.Any(), DefaultPreferenceKey).Return("", false, errors.New("redis down"))

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)

	state, err := pref.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, domainsession.AutoRefreshEnabled, state)
}

func TestNewAutoRefreshPreference_RequiresStore(t *testing.T) {
	_, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{})
	require.Error(t, err)
}
