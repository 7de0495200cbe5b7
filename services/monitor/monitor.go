// Package monitor prints bus traffic and a periodic heartbeat summarising
// the remote's status. It is diagnostic only and never publishes.
package monitor

import (
	"context"
	"strings"
	"time"

	"mediaremote-go/bus"
	"mediaremote-go/types"
	"mediaremote-go/x/strconvx"
)

type Config struct {
	// Heartbeat interval; zero disables the heartbeat line.
	Interval time.Duration
	// Sink receives each output line. Default println.
	Sink func(line string)
}

type Service struct {
	cfg Config

	radio types.RadioStatus
	sel   types.SelectionStatus
	clock types.ClockStatus
	input types.InputStats
	start time.Time
}

func New(cfg Config) *Service {
	if cfg.Sink == nil {
		cfg.Sink = func(s string) { println(s) }
	}
	return &Service{cfg: cfg}
}

// Start subscribes to every topic and runs until ctx is done.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(bus.T(bus.Multi))
	go s.serviceLoop(ctx, conn, sub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)
	s.start = time.Now()

	var tickC <-chan time.Time
	if s.cfg.Interval > 0 {
		tick := time.NewTicker(s.cfg.Interval)
		defer tick.Stop()
		tickC = tick.C
	}

	for {
		select {
		case <-ctx.Done():
			s.cfg.Sink("[monitor] stopping")
			return
		case <-tickC:
			s.cfg.Sink(s.Heartbeat())
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			s.Observe(m)
		}
	}
}

// Observe records a status message and prints it.
func (s *Service) Observe(m *bus.Message) {
	var b strings.Builder
	b.WriteString("[monitor] <- ")
	writeTopic(&b, m.Topic)
	b.WriteString(" ")
	switch v := m.Payload.(type) {
	case types.RadioStatus:
		s.radio = v
		b.WriteString(v.State.String())
		if v.Peer != "" {
			b.WriteString(" peer=")
			b.WriteString(v.Peer)
		}
	case types.SelectionStatus:
		s.sel = v
		b.WriteString(v.Action.String())
	case types.ClockStatus:
		s.clock = v
		b.WriteString(v.Time.String())
	case types.InputStats:
		s.input = v
		b.WriteString("presses=")
		b.WriteString(strconvx.FormatUint(uint64(v.Presses), 10))
		b.WriteString(" drops=")
		b.WriteString(strconvx.FormatUint(uint64(v.Drops), 10))
	case types.ReportStatus:
		b.WriteString("mask=0x")
		b.WriteString(strconvx.FormatUint(uint64(v.Mask), 16))
		if v.Error != "" {
			b.WriteString(" error=")
			b.WriteString(v.Error)
		}
	case nil:
		b.WriteString("(cleared)")
	default:
		b.WriteString("?")
	}
	s.cfg.Sink(b.String())
}

// Heartbeat renders the one-line status summary.
func (s *Service) Heartbeat() string {
	var b strings.Builder
	b.WriteString("[monitor] heartbeat up_s=")
	b.WriteString(strconvx.Itoa(int(time.Since(s.start) / time.Second)))
	b.WriteString(" radio=")
	b.WriteString(s.radio.State.String())
	b.WriteString(" selection=")
	b.WriteString(s.sel.Action.String())
	b.WriteString(" clock=")
	b.WriteString(s.clock.Time.String())
	b.WriteString(" drops=")
	b.WriteString(strconvx.FormatUint(uint64(s.input.Drops), 10))
	return b.String()
}

func writeTopic(b *strings.Builder, t bus.Topic) {
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			b.WriteByte('/')
		}
		switch v := t.At(i).(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconvx.Itoa(v))
		default:
			b.WriteByte('?')
		}
	}
}
