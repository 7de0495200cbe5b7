// Package clock runs the free-running minute clock shown on the panel.
package clock

import (
	"context"
	"sync"
	"time"

	"mediaremote-go/bus"
	"mediaremote-go/display"
	"mediaremote-go/types"
	"mediaremote-go/x/timex"
)

// TopicTime carries the retained types.ClockStatus of the last render.
var TopicTime = bus.T("clock", "time")

// DefaultStart is the boot time shown before any tick.
var DefaultStart = types.ClockTime{Hour: 5, Minute: 40}

const DefaultPeriod = 60 * time.Second

type Config struct {
	Start  types.ClockTime
	Period time.Duration
}

// Task owns the clock state. It renders, then sleeps, then advances.
type Task struct {
	disp   *display.Context
	conn   *bus.Connection
	period time.Duration

	mu  sync.Mutex
	now types.ClockTime
}

func New(disp *display.Context, conn *bus.Connection, cfg Config) *Task {
	if disp == nil {
		panic("clock: nil display context")
	}
	if !cfg.Start.Valid() {
		cfg.Start = DefaultStart
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	return &Task{disp: disp, conn: conn, period: cfg.Period, now: cfg.Start}
}

// Now returns the time that the next render will show.
func (t *Task) Now() types.ClockTime {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Tick renders the current time and advances one minute.
func (t *Task) Tick() types.ClockTime {
	t.mu.Lock()
	shown := t.now
	t.mu.Unlock()

	t.disp.Do(func(c *display.Composer) { c.DrawClock(shown) })
	if t.conn != nil {
		t.conn.Publish(t.conn.NewMessage(TopicTime, types.ClockStatus{Time: shown, TS: timex.NowMs()}, true))
	}

	t.mu.Lock()
	t.now = shown.Next()
	t.mu.Unlock()
	return shown
}

// Run renders immediately and then once per period until ctx is done.
func (t *Task) Run(ctx context.Context) {
	println("[clock] task running, period ms:", t.period.Milliseconds())
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	t.Tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Tick()
		}
	}
}
