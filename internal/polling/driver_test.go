package polling

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock hands out tickers that only fire when the test advances time.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	clock   *manualClock
	period  time.Duration
	elapsed time.Duration
	ch      chan time.Time
	stopped bool
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, period: d, ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

func (c *manualClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (c *manualClock) created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// advance moves time forward and returns how many ticks were delivered.
func (c *manualClock) advance(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	fired := 0
	for _, t := range c.tickers {
		if t.stopped {
			continue
		}
		t.elapsed += d
		for t.elapsed >= t.period {
			t.elapsed -= t.period
			select {
			case t.ch <- time.Now():
				fired++
			default:
			}
		}
	}
	return fired
}

type counter struct {
	calls atomic.Int32
	ch    chan struct{}
}

func newCounter() *counter {
	return &counter{ch: make(chan struct{}, 16)}
}

func (c *counter) action(context.Context) {
	c.calls.Add(1)
	c.ch <- struct{}{}
}

func (c *counter) waitCall(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("action was not invoked")
	}
}

func (c *counter) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
		t.Fatal("action invoked unexpectedly")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestDriver_FiresEachInterval(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock))
	defer d.Close()

	require.True(t, d.IsPolling())

	clock.advance(999 * time.Millisecond)
	c.assertNoCall(t)

	for i := 1; i <= 3; i++ {
		if i == 1 {
			clock.advance(time.Millisecond)
		} else {
			clock.advance(time.Second)
		}
		c.waitCall(t)
		assert.Equal(t, int32(i), c.calls.Load())
	}
}

func TestDriver_DisabledDoesNotStart(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithEnabled(false))
	defer d.Close()

	assert.False(t, d.IsPolling())
	assert.Zero(t, clock.created())

	d.Start()
	assert.True(t, d.IsPolling())
}

func TestDriver_StartTwiceKeepsOneTimer(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock))
	defer d.Close()

	d.Start()
	d.Start()

	assert.Equal(t, 1, clock.active())
	clock.advance(time.Second)
	c.waitCall(t)
	c.assertNoCall(t)
}

func TestDriver_StartRestartsFromFreshBoundary(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock))
	defer d.Close()

	clock.advance(600 * time.Millisecond)
	d.Start()
	clock.advance(600 * time.Millisecond)
	c.assertNoCall(t)

	clock.advance(400 * time.Millisecond)
	c.waitCall(t)
}

func TestDriver_StopIsIdempotent(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock))
	defer d.Close()

	var changes []bool
	var mu sync.Mutex
	d.Subscribe(func(p bool) {
		mu.Lock()
		changes = append(changes, p)
		mu.Unlock()
	})

	d.Stop()
	d.Stop()

	assert.False(t, d.IsPolling())
	assert.Equal(t, 0, clock.active())
	assert.Equal(t, 1, clock.created())
	mu.Lock()
	assert.Equal(t, []bool{false}, changes)
	mu.Unlock()

	clock.advance(5 * time.Second)
	c.assertNoCall(t)
}

func TestDriver_TriggerLeavesScheduleAlone(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock))
	defer d.Close()

	clock.advance(500 * time.Millisecond)
	d.Trigger()
	c.waitCall(t)
	assert.True(t, d.IsPolling())

	clock.advance(500 * time.Millisecond)
	c.waitCall(t)
	assert.Equal(t, int32(2), c.calls.Load())
	assert.Equal(t, 1, clock.created())
}

func TestDriver_TriggerWhileStopped(t *testing.T) {
	clock := &manualClock{}
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithEnabled(false))
	defer d.Close()

	d.Trigger()
	c.waitCall(t)
	assert.False(t, d.IsPolling())
}

func TestDriver_PausesWhileHidden(t *testing.T) {
	clock := &manualClock{}
	vis := NewVisibilityState(true)
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithVisibility(vis))
	defer d.Close()

	clock.advance(500 * time.Millisecond)
	vis.SetVisible(false)
	assert.False(t, d.IsPolling())

	clock.advance(3 * time.Second)
	c.assertNoCall(t)

	vis.SetVisible(true)
	assert.True(t, d.IsPolling())
	c.assertNoCall(t)

	clock.advance(500 * time.Millisecond)
	c.assertNoCall(t)

	clock.advance(500 * time.Millisecond)
	c.waitCall(t)
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestDriver_StartsHiddenThenResumes(t *testing.T) {
	clock := &manualClock{}
	vis := NewVisibilityState(false)
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithVisibility(vis))
	defer d.Close()

	assert.False(t, d.IsPolling())
	vis.SetVisible(true)
	assert.True(t, d.IsPolling())
}

func TestDriver_IgnoresVisibilityWhenNotPausing(t *testing.T) {
	clock := &manualClock{}
	vis := NewVisibilityState(false)
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithVisibility(vis), WithPauseOnHidden(false))
	defer d.Close()

	assert.True(t, d.IsPolling())
	vis.SetVisible(true)
	vis.SetVisible(false)
	assert.True(t, d.IsPolling())

	clock.advance(time.Second)
	c.waitCall(t)
}

func TestDriver_DisabledStaysStoppedOnVisible(t *testing.T) {
	clock := &manualClock{}
	vis := NewVisibilityState(false)
	c := newCounter()
	d := New(c.action, time.Second, WithClock(clock), WithVisibility(vis), WithEnabled(false))
	defer d.Close()

	vis.SetVisible(true)
	assert.False(t, d.IsPolling())
}

func TestDriver_CloseReleasesEverything(t *testing.T) {
	clock := &manualClock{}
	vis := NewVisibilityState(true)
	started := make(chan struct{})
	var sawCancel atomic.Bool
	d := New(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	}, time.Second, WithClock(clock), WithVisibility(vis))

	d.Trigger()
	<-started
	d.Close()

	assert.True(t, sawCancel.Load(), "Close waits for running actions")
	assert.False(t, d.IsPolling())
	assert.Equal(t, 0, clock.active())

	vis.SetVisible(false)
	vis.SetVisible(true)
	assert.False(t, d.IsPolling(), "closed driver no longer follows visibility")

	d.Start()
	d.Trigger()
	assert.False(t, d.IsPolling())
	d.Close()
}

func TestDriver_InstancesAreIndependent(t *testing.T) {
	clock := &manualClock{}
	a, b := newCounter(), newCounter()
	da := New(a.action, time.Second, WithClock(clock))
	db := New(b.action, 2*time.Second, WithClock(clock))
	defer da.Close()
	defer db.Close()

	da.Stop()
	assert.True(t, db.IsPolling())

	clock.advance(2 * time.Second)
	b.waitCall(t)
	a.assertNoCall(t)
}

func TestDriver_RecoversFromPanickingAction(t *testing.T) {
	clock := &manualClock{}
	var calls atomic.Int32
	done := make(chan struct{}, 4)
	d := New(func(context.Context) {
		calls.Add(1)
		done <- struct{}{}
		panic("boom")
	}, time.Second, WithClock(clock))
	defer d.Close()

	clock.advance(time.Second)
	<-done
	clock.advance(time.Second)
	<-done
	assert.Equal(t, int32(2), calls.Load())
}

func TestNew_DefaultInterval(t *testing.T) {
	clock := &manualClock{}
	d := New(func(context.Context) {}, 0, WithClock(clock))
	defer d.Close()

	require.Equal(t, 1, clock.created())
	assert.Equal(t, DefaultInterval, clock.tickers[0].period)
}
