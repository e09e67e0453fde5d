package service

import (
	"testing"
	"time"

	"github.com/j26/auth-demo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvSeconds(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for countdown update")
		return 0
	}
}

func assertNoUpdate(t *testing.T, ch <-chan int) {
	t.Helper()
	select {
	case v := <-ch:
		assert.Failf(t, "unexpected countdown update", "got %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCountdown_CountsDownToZero(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	cd := NewCountdown(CountdownOptions{Clock: clk})
	defer cd.Stop()

	cd.Reset(clk.Now().Add(20 * time.Second))
	assert.Equal(t, 20, cd.Seconds())
	assert.Equal(t, 20, recvSeconds(t, cd.Updates()))

	for want := 19; want >= 0; want-- {
		clk.Advance(time.Second)
		assert.Equal(t, want, recvSeconds(t, cd.Updates()))
	}

	clk.Advance(time.Second)
	assertNoUpdate(t, cd.Updates())
	assert.Equal(t, 0, cd.Seconds())
}

func TestCountdown_PastTargetIsZero(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	cd := NewCountdown(CountdownOptions{Clock: clk})
	defer cd.Stop()

	cd.Reset(clk.Now().Add(-time.Minute))
	assert.Equal(t, 0, cd.Seconds())
	assertNoUpdate(t, cd.Updates())
}

func TestCountdown_ResetReplacesTicker(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	cd := NewCountdown(CountdownOptions{Clock: clk})

	cd.Reset(clk.Now().Add(20 * time.Second))
	assert.Equal(t, 1, clk.Tickers())

	cd.Reset(clk.Now().Add(40 * time.Second))
	assert.Equal(t, 1, clk.Tickers())
	assert.Equal(t, 40, recvSeconds(t, cd.Updates()))

	cd.Stop()
	assert.Equal(t, 0, clk.Tickers())
	assert.Equal(t, 40, cd.Seconds(), "stop keeps the last value")
}

func TestCountdown_ResetSameTargetIsNoop(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	cd := NewCountdown(CountdownOptions{Clock: clk})
	defer cd.Stop()

	target := clk.Now().Add(20 * time.Second)
	cd.Reset(target)
	assert.Equal(t, 20, recvSeconds(t, cd.Updates()))

	clk.Advance(time.Second)
	assert.Equal(t, 19, recvSeconds(t, cd.Updates()))

	cd.Reset(target)
	assertNoUpdate(t, cd.Updates())
	assert.Equal(t, 19, cd.Seconds())
}

func TestCountdown_ResetFromReader(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(1_700_000_000_000))
	cd := NewCountdown(CountdownOptions{Clock: clk})
	defer cd.Stop()

	cd.Reset(clk.Now().Add(2 * time.Second))
	require.Equal(t, 2, recvSeconds(t, cd.Updates()))

	clk.Advance(time.Second)
	require.Equal(t, 1, recvSeconds(t, cd.Updates()))

	// Retargeting from the consumer must not deadlock.
	cd.Reset(clk.Now().Add(30 * time.Second))
	assert.Equal(t, 30, recvSeconds(t, cd.Updates()))
	assert.True(t, cd.Target().Equal(clk.Now().Add(30*time.Second)))
}

func TestCountdown_StopIdempotent(t *testing.T) {
	cd := NewCountdown(CountdownOptions{Clock: clock.NewFake(time.Now())})
	cd.Stop()
	cd.Stop()
	assert.Equal(t, 0, cd.Seconds())
}
