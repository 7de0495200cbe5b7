// Package input latches button edges in interrupt context and hands them to
// a single handler task through a bounded queue.
package input

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mediaremote-go/bus"
	"mediaremote-go/errcode"
	"mediaremote-go/internal/halcore"
	"mediaremote-go/types"
)

// Button identifies a front-panel key.
type Button uint8

const (
	ButtonA Button = iota // cycle selection
	ButtonB               // fire report
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	}
	return "?"
}

// DefaultQueueCap is the depth of the ISR queue.
const DefaultQueueCap = 10

// TopicStats carries the retained types.InputStats.
var TopicStats = bus.T("input", "stats")

// Handler consumes button presses on the handler task.
type Handler interface {
	OnButton(ctx context.Context, b Button)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, b Button)

func (f HandlerFunc) OnButton(ctx context.Context, b Button) { f(ctx, b) }

type Config struct {
	QueueCap   int // default 10
	DebounceMS int // 0 disables software debounce
}

type isrEvent struct {
	pin   int
	level bool // captured in ISR
}

type watch struct {
	button    Button
	pin       halcore.IRQPin
	lastEvent time.Time
}

type Service struct {
	// Written by ISR; MUST NOT block the ISR.
	isrQ chan isrEvent

	handler  Handler
	conn     *bus.Connection
	debounce time.Duration

	mu     sync.RWMutex
	inputs map[int]*watch // pin number -> watch

	drops   uint32 // ISR drop counter
	presses uint32
}

func New(h Handler, conn *bus.Connection, cfg Config) *Service {
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = DefaultQueueCap
	}
	if cfg.DebounceMS < 0 {
		cfg.DebounceMS = 0
	}
	return &Service{
		isrQ:     make(chan isrEvent, cfg.QueueCap),
		handler:  h,
		conn:     conn,
		debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
		inputs:   map[int]*watch{},
	}
}

// Register configures pin as a pull-up input with a falling-edge interrupt
// and binds it to b. The returned func releases the interrupt.
func (s *Service) Register(b Button, pin halcore.IRQPin) (func(), error) {
	if pin == nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "input.register", Msg: b.String()}
	}
	n := pin.Number()
	s.mu.Lock()
	if _, dup := s.inputs[n]; dup {
		s.mu.Unlock()
		return nil, &errcode.E{C: errcode.Busy, Op: "input.register", Msg: "pin already bound"}
	}
	s.mu.Unlock()

	if err := pin.ConfigureInput(halcore.PullUp); err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "input.register", err)
	}

	// ISR handler: fast register read + non-blocking channel send.
	handler := func() {
		select {
		case s.isrQ <- isrEvent{pin: n, level: pin.Get()}:
		default:
			atomic.AddUint32(&s.drops, 1) // protect ISR path
		}
	}
	if err := pin.SetIRQ(halcore.EdgeFalling, handler); err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "input.register", err)
	}

	s.mu.Lock()
	s.inputs[n] = &watch{button: b, pin: pin}
	s.mu.Unlock()
	println("[input] button", b.String(), "pin", n, "irq", halcore.EdgeFalling.String())

	return func() {
		s.mu.Lock()
		if cur, ok := s.inputs[n]; ok {
			_ = cur.pin.ClearIRQ()
			delete(s.inputs, n)
		}
		s.mu.Unlock()
	}, nil
}

// Run is the handler task. It blocks on the queue until ctx is done.
func (s *Service) Run(ctx context.Context) {
	println("[input] handler task running")
	s.publish()
	var seenDrops uint32
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.isrQ:
			s.handle(ctx, ev)
			if d := s.Drops(); d != seenDrops {
				println("[input] queue full, dropped:", d-seenDrops)
				seenDrops = d
			}
			s.publish()
		}
	}
}

func (s *Service) handle(ctx context.Context, ev isrEvent) {
	s.mu.RLock()
	wh := s.inputs[ev.pin]
	s.mu.RUnlock()
	if wh == nil {
		println("[input] edge on unbound pin:", ev.pin)
		return
	}
	now := time.Now()
	if s.debounce > 0 && !wh.lastEvent.IsZero() && now.Sub(wh.lastEvent) < s.debounce {
		return
	}
	wh.lastEvent = now
	atomic.AddUint32(&s.presses, 1)
	s.handler.OnButton(ctx, wh.button)
}

// Drops counts edges lost to a full queue.
func (s *Service) Drops() uint32 { return atomic.LoadUint32(&s.drops) }

// Presses counts edges delivered to the handler.
func (s *Service) Presses() uint32 { return atomic.LoadUint32(&s.presses) }

func (s *Service) publish() {
	if s.conn == nil {
		return
	}
	st := types.InputStats{Drops: s.Drops(), Presses: s.Presses()}
	s.conn.Publish(s.conn.NewMessage(TopicStats, st, true))
}
