// Package polling repeats an action at a fixed interval while the page that
// wants it is visible.
package polling

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the refresh cadence used when none is configured.
const DefaultInterval = 30 * time.Second

type Action func(ctx context.Context)

type Option func(*Driver)

// WithEnabled controls whether the driver polls on its own. Defaults to true.
func WithEnabled(enabled bool) Option {
	return func(d *Driver) { d.enabled = enabled }
}

// WithPauseOnHidden controls whether hiding the page stops the timer.
// Defaults to true.
func WithPauseOnHidden(pause bool) Option {
	return func(d *Driver) { d.pauseOnHidden = pause }
}

func WithVisibility(v Visibility) Option {
	return func(d *Driver) {
		if v != nil {
			d.visibility = v
		}
	}
}

func WithClock(c Clock) Option {
	return func(d *Driver) {
		if c != nil {
			d.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver runs an action every interval. Each Driver owns its timer and its
// subscribers; Close releases both.
type Driver struct {
	action        Action
	interval      time.Duration
	enabled       bool
	pauseOnHidden bool
	visibility    Visibility
	clock         Clock
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu                sync.Mutex
	ticker            Ticker
	done              chan struct{}
	polling           bool
	closed            bool
	subs              map[int]func(bool)
	nextSub           int
	unsubscribeHidden func()
}

// New builds a driver and, if enabled and visible, starts it.
func New(action Action, interval time.Duration, opts ...Option) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		action:        action,
		interval:      interval,
		enabled:       true,
		pauseOnHidden: true,
		visibility:    alwaysVisible{},
		clock:         realClock{},
		logger:        slog.Default(),
		ctx:           ctx,
		cancel:        cancel,
		subs:          make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.enabled && (!d.pauseOnHidden || d.visibility.Visible()) {
		d.Start()
	}
	if d.pauseOnHidden {
		d.unsubscribeHidden = d.visibility.Subscribe(d.onVisibilityChange)
	}
	return d
}

func (d *Driver) IsPolling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polling
}

// Subscribe registers fn to be called with the new IsPolling value whenever
// it changes.
func (d *Driver) Subscribe(fn func(polling bool)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Start (re)starts the timer from a fresh interval boundary.
func (d *Driver) Start() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	was := d.polling
	d.stopLocked()
	d.startLocked()
	notify := d.changeLocked(was)
	d.mu.Unlock()
	notify()
}

// Stop cancels the timer. Stopping a stopped driver does nothing.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.polling {
		d.mu.Unlock()
		return
	}
	d.stopLocked()
	notify := d.changeLocked(true)
	d.mu.Unlock()
	notify()
}

// Trigger runs the action once, now, without touching the schedule.
func (d *Driver) Trigger() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.run()
	}()
}

// Close stops the timer, detaches from visibility changes, cancels the
// context handed to running actions and waits for them to return.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	was := d.polling
	d.stopLocked()
	unsubscribe := d.unsubscribeHidden
	d.unsubscribeHidden = nil
	notify := d.changeLocked(was)
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	d.cancel()
	notify()
	d.wg.Wait()
}

func (d *Driver) onVisibilityChange(visible bool) {
	if !visible {
		d.Stop()
		return
	}
	if d.enabled {
		d.Start()
	}
}

func (d *Driver) startLocked() {
	ticker := d.clock.NewTicker(d.interval)
	done := make(chan struct{})
	d.ticker = ticker
	d.done = done
	d.polling = true

	d.wg.Add(1)
	go d.loop(ticker, done)
}

func (d *Driver) stopLocked() {
	if d.ticker == nil {
		return
	}
	d.ticker.Stop()
	close(d.done)
	d.ticker = nil
	d.done = nil
	d.polling = false
}

func (d *Driver) loop(ticker Ticker, done <-chan struct{}) {
	defer d.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-d.ctx.Done():
			return
		case <-ticker.C():
			select {
			case <-done:
				return
			default:
			}
			d.run()
		}
	}
}

func (d *Driver) run() {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("polling action panicked", "panic", r)
		}
	}()
	d.action(d.ctx)
}

// changeLocked returns a func that notifies subscribers if polling differs
// from was. It must be called after d.mu is released.
func (d *Driver) changeLocked(was bool) func() {
	now := d.polling
	if now == was {
		return func() {}
	}
	fns := make([]func(bool), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(now)
		}
	}
}
