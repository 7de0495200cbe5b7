package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediaremote-go/assets"
	"mediaremote-go/bus"
	"mediaremote-go/display"
	"mediaremote-go/types"
)

const colonTag = 0xCC

// glyphPanel decodes clock renders back into HH:MM strings.
type glyphPanel struct {
	mu     sync.Mutex
	cur    []byte
	frames []string
}

func (p *glyphPanel) EnsureWindow(x, y, w, h uint8) {}
func (p *glyphPanel) FillScreen(v byte)             {}
func (p *glyphPanel) SendFrame(buf []byte, size, chunks int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if buf[0] == colonTag {
		p.cur = append(p.cur, ':')
	} else {
		p.cur = append(p.cur, '0'+buf[0])
	}
	if len(p.cur) == 5 {
		p.frames = append(p.frames, string(p.cur))
		p.cur = p.cur[:0]
	}
}

func (p *glyphPanel) rendered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.frames...)
}

type taggedGlyphs struct{}

func (taggedGlyphs) Digit(i int) []byte {
	b := make([]byte, assets.DigitSize)
	b[0] = byte(i)
	return b
}
func (taggedGlyphs) Colon() []byte {
	b := make([]byte, assets.ColonSize)
	b[0] = colonTag
	return b
}
func (taggedGlyphs) Icon(i int) []byte { return make([]byte, assets.IconSize) }

func newTask(cfg Config, conn *bus.Connection) (*Task, *glyphPanel) {
	p := &glyphPanel{}
	return New(display.NewContext(display.NewComposer(p, taggedGlyphs{})), conn, cfg), p
}

func TestDefaultStartsAtFiveForty(t *testing.T) {
	task, p := newTask(Config{}, nil)
	if task.Tick() != (types.ClockTime{Hour: 5, Minute: 40}) {
		t.Fatal("wrong default start")
	}
	if got := p.rendered(); len(got) != 1 || got[0] != "05:40" {
		t.Fatalf("rendered %q", got)
	}
	if task.Now() != (types.ClockTime{Hour: 5, Minute: 41}) {
		t.Fatalf("advanced to %v", task.Now())
	}
}

func TestTickRendersThenAdvancesWithCarry(t *testing.T) {
	task, p := newTask(Config{Start: types.ClockTime{Hour: 23, Minute: 58}}, nil)
	for i := 0; i < 3; i++ {
		task.Tick()
	}
	want := []string{"23:58", "23:59", "00:00"}
	got := p.rendered()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rendered %q, want %q", got, want)
		}
	}
}

func TestRunRendersBeforeFirstSleep(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("clock")
	task, p := newTask(Config{Start: types.ClockTime{Hour: 9, Minute: 59}, Period: time.Hour}, conn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for len(p.rendered()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := p.rendered(); len(got) != 1 || got[0] != "09:59" {
		t.Fatalf("rendered %q", got)
	}

	sub := conn.Subscribe(TopicTime)
	select {
	case m := <-sub.Channel():
		if st := m.Payload.(types.ClockStatus); st.Time.String() != "09:59" {
			t.Fatalf("published %v", st.Time)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no retained clock status")
	}
}

func TestRunTicksEachPeriod(t *testing.T) {
	task, p := newTask(Config{Period: 15 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go task.Run(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for len(p.rendered()) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	got := p.rendered()
	if len(got) < 3 || got[0] != "05:40" || got[1] != "05:41" || got[2] != "05:42" {
		t.Fatalf("rendered %q", got)
	}
}
