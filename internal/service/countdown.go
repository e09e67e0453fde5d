package service

import (
	"sync"
	"time"

	"github.com/j26/auth-demo/internal/clock"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
)

// CountdownOptions groups dependencies for Countdown.
type CountdownOptions struct {
	Clock clock.Clock
	// Interval between recomputations; defaults to one second.
	Interval time.Duration
}

// Countdown tracks whole seconds remaining until a target time. It recomputes
// immediately when the target changes and then on every tick, and publishes
// each new value on Updates. Values equal to the previous one are not
// published.
type Countdown struct {
	clock    clock.Clock
	interval time.Duration
	updates  chan int

	// lifecycle serialises Reset and Stop.
	lifecycle sync.Mutex

	mu      sync.Mutex
	target  time.Time
	seconds int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCountdown constructs a stopped Countdown at zero seconds.
func NewCountdown(opts CountdownOptions) *Countdown {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		clock:    clk,
		interval: interval,
		updates:  make(chan int, 1),
	}
}

// Updates delivers changed second values. Consumers may call Reset from the
// goroutine reading this channel.
func (c *Countdown) Updates() <-chan int { return c.updates }

// Seconds returns the most recently computed value.
func (c *Countdown) Seconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seconds
}

// Target returns the time being counted down to.
func (c *Countdown) Target() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Reset retargets the countdown. The running ticker is torn down and a new one
// started. Resetting to the current target while running is a no-op.
func (c *Countdown) Reset(target time.Time) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.running && c.target.Equal(target) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.halt()

	secs := domainsession.SecondsUntil(target, c.clock.Now())
	ticker := c.clock.NewTicker(c.interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	c.mu.Lock()
	changed := secs != c.seconds
	c.target = target
	c.seconds = secs
	c.running = true
	c.stop = stop
	c.done = done
	c.mu.Unlock()

	// Values computed for the previous target are stale now.
	select {
	case <-c.updates:
	default:
	}

	go c.run(runArgs{target: target, ticker: ticker, stop: stop, done: done, initial: changed})
}

// Stop tears down the ticker. The last computed value is kept.
func (c *Countdown) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.halt()
}

// halt stops the running loop and waits for it to exit. Callers hold lifecycle.
func (c *Countdown) halt() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	stop, done := c.stop, c.done
	c.running = false
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	close(stop)
	<-done
}

type runArgs struct {
	target  time.Time
	ticker  clock.Ticker
	stop    chan struct{}
	done    chan struct{}
	initial bool
}

func (c *Countdown) run(a runArgs) {
	defer close(a.done)
	defer a.ticker.Stop()

	if a.initial && !c.send(c.Seconds(), a.stop) {
		return
	}
	for {
		select {
		case <-a.stop:
			return
		case <-a.ticker.C():
			secs := domainsession.SecondsUntil(a.target, c.clock.Now())
			c.mu.Lock()
			changed := secs != c.seconds
			c.seconds = secs
			c.mu.Unlock()
			if changed && !c.send(secs, a.stop) {
				return
			}
		}
	}
}

func (c *Countdown) send(secs int, stop <-chan struct{}) bool {
	select {
	case c.updates <- secs:
		return true
	case <-stop:
		return false
	}
}
