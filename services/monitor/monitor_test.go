package monitor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mediaremote-go/bus"
	"mediaremote-go/types"
)

type sink struct {
	mu    sync.Mutex
	lines []string
}

func (s *sink) add(l string) {
	s.mu.Lock()
	s.lines = append(s.lines, l)
	s.mu.Unlock()
}

func (s *sink) contains(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestObserveFormatsStatus(t *testing.T) {
	out := &sink{}
	s := New(Config{Sink: out.add})
	s.Observe(&bus.Message{Topic: bus.T("radio", "state"), Payload: types.RadioStatus{State: types.StateConnected, Peer: "11:22:33:44:55:66"}})
	s.Observe(&bus.Message{Topic: bus.T("hid", "report"), Payload: types.ReportStatus{Mask: 0x08}})
	s.Observe(&bus.Message{Topic: bus.T("input", "stats"), Payload: types.InputStats{Presses: 4, Drops: 1}})

	for _, want := range []string{
		"[monitor] <- radio/state connected peer=11:22:33:44:55:66",
		"[monitor] <- hid/report mask=0x8",
		"[monitor] <- input/stats presses=4 drops=1",
	} {
		if !out.contains(want) {
			t.Fatalf("missing %q in %q", want, out.lines)
		}
	}
	if hb := s.Heartbeat(); !strings.Contains(hb, "radio=connected") || !strings.Contains(hb, "drops=1") {
		t.Fatalf("heartbeat %q", hb)
	}
}

func TestStartSeesRetainedAndLive(t *testing.T) {
	b := bus.NewBus(8)
	pub := b.NewConnection("clock")
	pub.Publish(pub.NewMessage(bus.T("clock", "time"), types.ClockStatus{Time: types.ClockTime{Hour: 5, Minute: 40}}, true))

	out := &sink{}
	s := New(Config{Sink: out.add, Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx, b.NewConnection("monitor")); err != nil {
		t.Fatal(err)
	}
	pub.Publish(pub.NewMessage(bus.T("ui", "selection"), types.SelectionStatus{Index: 6, Action: types.ActionVolumeDown}, true))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if out.contains("clock/time 05:40") && out.contains("ui/selection volume_down") && out.contains("heartbeat") {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("lines %q", out.lines)
}
