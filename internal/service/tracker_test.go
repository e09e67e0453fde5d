package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/j26/auth-demo/internal/adapters/memory"
	"github.com/j26/auth-demo/internal/clock"
	"github.com/j26/auth-demo/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type trackerFixture struct {
	tracker *Tracker
	client  *mocks.MockStatusClient
	jar     *cookieJarStub
	clock   *clock.Fake
	store   *memory.PreferenceStore
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockStatusClient(ctrl)
	jar := newCookieJarStub()
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	store := memory.NewPreferenceStore()

	pref, err := NewAutoRefreshPreference(AutoRefreshPreferenceOptions{Store: store})
	require.NoError(t, err)
	display, err := NewUserDisplay("name", nil)
	require.NoError(t, err)

	tr, err := NewTracker(TrackerOptions{
		Session:    newTestSessionService(t, client, jar),
		Preference: pref,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, TrackerConfig{
		Clock:       clk,
		Display:     display,
		RefreshLead: 5 * time.Second,
		Location:    time.UTC,
	})
	require.NoError(t, err)
	t.Cleanup(tr.Close)

	return &trackerFixture{tracker: tr, client: client, jar: jar, clock: clk, store: store}
}

func TestTracker_StartAndStatus(t *testing.T) {
	f := newTrackerFixture(t)
	f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{"name":"Ada"}`), nil)

	require.NoError(t, f.tracker.Start(context.Background()))
	assert.Equal(t, 20, recvSeconds(t, f.tracker.Updates()))

	v := f.tracker.Status()
	assert.Equal(t, "No", v.Loading)
	assert.Equal(t, "Yes", v.Authenticated)
	assert.Equal(t, "20 seconds", v.ExpiresIn)
	assert.Equal(t, "2023-11-14 22:13:40", v.ExpiresAt)
	assert.Equal(t, "Ada", v.UserName)
	assert.True(t, v.AutoRefresh)
	assert.False(t, v.RefreshEnabled)
	assert.Contains(t, v.LoginURL, "redirect_uri=https%3A%2F%2Fexample.test%2F")

	f.clock.Advance(time.Second)
	assert.Equal(t, 19, recvSeconds(t, f.tracker.Updates()))
	assert.Equal(t, "19 seconds", f.tracker.Status().ExpiresIn)
}

func TestTracker_StartFailure(t *testing.T) {
	f := newTrackerFixture(t)
	boom := errors.New("connection refused")
	f.client.EXPECT().FetchUser(gomock.Any()).Return(nil, boom)

	err := f.tracker.Start(context.Background())
	require.ErrorIs(t, err, boom)

	v := f.tracker.Status()
	assert.Equal(t, "No", v.Loading)
	assert.Equal(t, "No", v.Authenticated)
	assert.Equal(t, "N/A", v.ExpiresIn)
	assert.Equal(t, "N/A", v.User)
}

func TestTracker_SyncFollowsCookie(t *testing.T) {
	f := newTrackerFixture(t)
	f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil)
	require.NoError(t, f.tracker.Start(context.Background()))
	require.Equal(t, 20, recvSeconds(t, f.tracker.Updates()))

	assert.False(t, f.tracker.Sync(), "cookie unchanged")

	f.jar.setExpiry(f.clock.Now().Add(60 * time.Second))
	assert.True(t, f.tracker.Sync())
	assert.Equal(t, 60, recvSeconds(t, f.tracker.Updates()))
}

func TestTracker_ManualRefreshOnlyWhenAutoRefreshOff(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil)
	require.NoError(t, f.tracker.Start(ctx))

	require.ErrorIs(t, f.tracker.Refresh(ctx), ErrManualRefreshDisabled)

	state, err := f.tracker.ToggleAutoRefresh(ctx)
	require.NoError(t, err)
	assert.False(t, state.Enabled())
	v, _, _ := f.store.Get(ctx, DefaultPreferenceKey)
	assert.Equal(t, "true", v)
	assert.True(t, f.tracker.Status().RefreshEnabled)

	gomock.InOrder(
		f.client.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(context.Context) error {
			f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
			return nil
		}),
		f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil),
	)
	require.NoError(t, f.tracker.Refresh(ctx))
	assert.Equal(t, "20 seconds", f.tracker.Status().ExpiresIn)
}

func TestTracker_AutoRefreshNearExpiry(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil)
	require.NoError(t, f.tracker.Start(ctx))

	assert.False(t, f.tracker.AutoRefreshDue())

	f.clock.Advance(15 * time.Second)
	require.True(t, f.tracker.AutoRefreshDue())

	gomock.InOrder(
		f.client.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(context.Context) error {
			f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
			return nil
		}),
		f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil),
	)
	ran, err := f.tracker.AutoRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, f.tracker.AutoRefreshDue())
	assert.Equal(t, "20 seconds", f.tracker.Status().ExpiresIn)
}

func TestTracker_AutoRefreshDisabled(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	f.jar.setExpiry(f.clock.Now().Add(time.Second))
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil)
	require.NoError(t, f.tracker.Start(ctx))

	_, err := f.tracker.ToggleAutoRefresh(ctx)
	require.NoError(t, err)

	assert.False(t, f.tracker.AutoRefreshDue())
	ran, err := f.tracker.AutoRefresh(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestTracker_LapsedSessionDueOnceReenabled(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	f.jar.setExpiry(f.clock.Now().Add(3 * time.Second))
	f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil)
	require.NoError(t, f.tracker.Start(ctx))

	_, err := f.tracker.ToggleAutoRefresh(ctx)
	require.NoError(t, err)
	f.clock.Advance(3 * time.Second)
	assert.False(t, f.tracker.AutoRefreshDue())

	state, err := f.tracker.ToggleAutoRefresh(ctx)
	require.NoError(t, err)
	require.True(t, state.Enabled())
	assert.True(t, f.tracker.AutoRefreshDue())

	gomock.InOrder(
		f.client.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(context.Context) error {
			f.jar.setExpiry(f.clock.Now().Add(20 * time.Second))
			return nil
		}),
		f.client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{}`), nil),
	)
	ran, err := f.tracker.AutoRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, f.tracker.AutoRefreshDue())
	assert.Equal(t, "20 seconds", f.tracker.Status().ExpiresIn)
}
