package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m := <-s.Channel():
		return m
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("no message on %v", s.Topic())
		return nil
	}
}

func quiet(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("unexpected %v on %v", m.Payload, s.Topic())
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishReachesExactSubscriber(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("ui")
	sel := c.Subscribe(T("ui", "selection"))
	other := c.Subscribe(T("ui", "report"))

	c.Publish(c.NewMessage(T("ui", "selection"), 3, false))
	if m := recv(t, sel); m.Payload.(int) != 3 {
		t.Fatalf("payload %v", m.Payload)
	}
	quiet(t, other)
}

func TestRetainedReplayAndClear(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("radio")
	c.Publish(c.NewMessage(T("radio", "state"), "registering", true))
	c.Publish(c.NewMessage(T("radio", "state"), "advertising", true))

	s := c.Subscribe(T("radio", "state"))
	if m := recv(t, s); m.Payload.(string) != "advertising" {
		t.Fatalf("retained %v", m.Payload)
	}
	quiet(t, s)

	c.Publish(c.NewMessage(T("radio", "state"), nil, true))
	recv(t, s)
	quiet(t, c.Subscribe(T("radio", "state")))
}

func TestWildcards(t *testing.T) {
	b := NewBus(8)
	c := b.NewConnection("monitor")
	all := c.Subscribe(T(Multi))
	anyState := c.Subscribe(T(Single, "state"))
	radio := c.Subscribe(T("radio", Multi))

	c.Publish(c.NewMessage(T("radio", "state"), "connected", false))
	recv(t, all)
	recv(t, anyState)
	recv(t, radio)

	c.Publish(c.NewMessage(T("clock", "time"), "05:41", false))
	recv(t, all)
	quiet(t, anyState)
	quiet(t, radio)
}

func TestMatch(t *testing.T) {
	for _, c := range []struct {
		pattern, topic Topic
		want           bool
	}{
		{T("hid", "report"), T("hid", "report"), true},
		{T("hid", Single), T("hid", "report"), true},
		{T("hid", Single), T("hid"), false},
		{T("hid", Multi), T("hid"), true},
		{T(Multi), T("input", "stats"), true},
		{T("input", "stats"), T("input"), false},
		{T("x", 1), T("x", 1), true},
	} {
		if got := Match(c.pattern, c.topic); got != c.want {
			t.Fatalf("Match(%v, %v) = %v", c.pattern, c.topic, got)
		}
	}
}

func TestSlowSubscriberKeepsNewest(t *testing.T) {
	b := NewBus(1)
	c := b.NewConnection("input")
	s := c.Subscribe(T("input", "stats"))
	for i := 1; i <= 3; i++ {
		c.Publish(c.NewMessage(T("input", "stats"), i, false))
	}
	if m := recv(t, s); m.Payload.(int) != 3 {
		t.Fatalf("kept %v", m.Payload)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("clock")
	s := c.Subscribe(T("clock", "time"))
	c.Unsubscribe(s)
	if _, ok := <-s.Channel(); ok {
		t.Fatal("channel still open")
	}
	c.Publish(c.NewMessage(T("clock", "time"), "06:00", false))

	s2 := c.Subscribe(T("clock", "time"))
	c.Disconnect()
	if _, ok := <-s2.Channel(); ok {
		t.Fatal("disconnect left channel open")
	}
}

func TestTRejectsUnhashableTokens(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	T("bad", []byte("x"))
}
