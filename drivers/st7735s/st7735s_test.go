package st7735s

import (
	"errors"
	"testing"
	"time"

	"mediaremote-go/internal/panelsim"
)

func newSim(t *testing.T) (*Device, *panelsim.Panel, *[]time.Duration) {
	t.Helper()
	p := panelsim.New()
	var sleeps []time.Duration
	d := New(p, p.DC(), p.RST())
	d.Configure(Config{Sleep: func(d time.Duration) { sleeps = append(sleeps, d) }})
	return d, p, &sleeps
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %v, got none", want)
		}
		if err, ok := r.(error); !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

func TestInitSequence(t *testing.T) {
	d, p, sleeps := newSim(t)
	d.Init()

	want := []struct {
		cmd  byte
		data []byte
	}{
		{SLPOUT, nil},
		{MADCTL, []byte{0x00}},
		{COLMOD, []byte{0x55}},
		{GAMSET, []byte{0x01}},
		{INVOFF, nil},
		{DISPON, nil},
	}
	ops := p.Ops()
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %+v", len(ops), len(want), ops)
	}
	for i, w := range want {
		if ops[i].Cmd != w.cmd || string(ops[i].Data) != string(w.data) {
			t.Fatalf("op %d = %#x %x, want %#x %x", i, ops[i].Cmd, ops[i].Data, w.cmd, w.data)
		}
	}

	wantSleeps := []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 120 * time.Millisecond}
	if len(*sleeps) != len(wantSleeps) {
		t.Fatalf("sleeps = %v", *sleeps)
	}
	for i := range wantSleeps {
		if (*sleeps)[i] < wantSleeps[i] {
			t.Fatalf("sleep %d = %v, want >= %v", i, (*sleeps)[i], wantSleeps[i])
		}
	}

	awake, on, madctl, colmod, resets := p.State()
	if !awake || !on || madctl != 0 || colmod != 0x55 || resets != 1 {
		t.Fatalf("panel state awake=%v on=%v madctl=%#x colmod=%#x resets=%d", awake, on, madctl, colmod, resets)
	}
}

func TestFullFrameFill(t *testing.T) {
	d, p, _ := newSim(t)
	d.Init()
	p.ClearOps()

	d.SetWindow(0, 0, 127, 127)
	buf := make([]byte, 32768)
	for i := range buf {
		buf[i] = 125
	}
	d.SendFrame(buf, len(buf), 128)

	ops := p.Ops()
	if len(ops) != 3 {
		t.Fatalf("ops = %+v", ops)
	}
	if string(ops[0].Data) != string([]byte{0, 0, 0, 127}) || string(ops[1].Data) != string([]byte{0, 0, 0, 127}) {
		t.Fatalf("window bytes CASET=%x RASET=%x", ops[0].Data, ops[1].Data)
	}
	if ops[2].Cmd != RAMWR || ops[2].DataLen != 32768 || ops[2].Transfers != 128 {
		t.Fatalf("RAMWR op = %+v", ops[2])
	}
	if got := p.GRAMPixel(127, 127); got != 0x7D7D {
		t.Fatalf("GRAM(127,127) = %#04x", got)
	}
}

func TestFillScreenUsesGlassOffset(t *testing.T) {
	d, p, _ := newSim(t)
	d.Init()
	p.ClearOps()

	d.FillScreen(0x7D)

	ops := p.Ops()
	if len(ops) != 3 {
		t.Fatalf("ops = %+v", ops)
	}
	if got := ops[0].Data; string(got) != string([]byte{0, 2, 0, 129}) {
		t.Fatalf("CASET = %x", got)
	}
	if got := ops[1].Data; string(got) != string([]byte{0, 1, 0, 128}) {
		t.Fatalf("RASET = %x", got)
	}
	if ops[2].DataLen != 32768 || ops[2].Transfers != 128 {
		t.Fatalf("RAMWR op = %+v", ops[2])
	}
	if p.Pixel(0, 0) != 0x7D7D || p.Pixel(127, 127) != 0x7D7D {
		t.Fatal("glass corners not filled")
	}
}

func TestExactZeroOffsetFillsFromOrigin(t *testing.T) {
	p := panelsim.New()
	d := New(p, p.DC(), p.RST())
	d.Configure(Config{ExactOffset: true, Sleep: func(time.Duration) {}})
	d.Init()
	p.ClearOps()

	d.FillScreen(0x00)

	ops := p.Ops()
	if got := ops[0].Data; string(got) != string([]byte{0, 0, 0, 127}) {
		t.Fatalf("CASET = %x", got)
	}
	if got := ops[1].Data; string(got) != string([]byte{0, 0, 0, 127}) {
		t.Fatalf("RASET = %x", got)
	}
}

func TestWindowedFrameByteCount(t *testing.T) {
	d, p, _ := newSim(t)
	d.Init()
	p.ClearOps()

	buf := make([]byte, 30*30*2)
	for i := 0; i < len(buf); i += 2 {
		buf[i], buf[i+1] = 0xF8, 0x00
	}
	d.EnsureWindow(49, 92, 30, 30)
	d.SendFrame(buf, len(buf), 8)
	d.SendCommand(INVOFF)

	ops := p.Ops()
	if ops[0].Cmd != CASET || string(ops[0].Data) != string([]byte{0, 49, 0, 78}) {
		t.Fatalf("CASET = %+v", ops[0])
	}
	if ops[1].Cmd != RASET || string(ops[1].Data) != string([]byte{0, 92, 0, 121}) {
		t.Fatalf("RASET = %+v", ops[1])
	}
	if ops[2].Cmd != RAMWR || ops[2].DataLen != 30*30*2 || ops[2].Transfers != 8 {
		t.Fatalf("RAMWR = %+v", ops[2])
	}
	if ops[3].Cmd != INVOFF {
		t.Fatalf("expected trailing command, got %+v", ops[3])
	}
	if p.GRAMPixel(49, 92) != 0xF800 || p.GRAMPixel(78, 121) != 0xF800 {
		t.Fatal("window corners not written")
	}
	if p.GRAMPixel(79, 92) != 0 || p.GRAMPixel(49, 122) != 0 {
		t.Fatal("write leaked outside the window")
	}
}

func TestEnsureWindowSkipsRepeat(t *testing.T) {
	d, p, _ := newSim(t)
	d.Init()
	p.ClearOps()

	d.EnsureWindow(11, 44, 25, 42)
	d.EnsureWindow(11, 44, 25, 42)
	if n := len(p.Ops()); n != 2 {
		t.Fatalf("expected one CASET/RASET pair, got %d ops", n)
	}
	d.EnsureWindow(36, 44, 25, 42)
	if n := len(p.Ops()); n != 4 {
		t.Fatalf("expected second pair after move, got %d ops", n)
	}
	d.Init()
	p.ClearOps()
	d.EnsureWindow(36, 44, 25, 42)
	if n := len(p.Ops()); n != 2 {
		t.Fatalf("Init must invalidate the cached window, got %d ops", n)
	}
}

func TestSendFrameRejectsBadChunking(t *testing.T) {
	d, _, _ := newSim(t)
	buf := make([]byte, 756)
	expectPanic(t, ErrChunking, func() { d.SendFrame(buf, 756, 10) })
	expectPanic(t, ErrChunking, func() { d.SendFrame(buf, 756, 0) })
	expectPanic(t, ErrShortBuffer, func() { d.SendFrame(buf, 800, 4) })
	big := make([]byte, 8192)
	expectPanic(t, ErrTransferSize, func() { d.SendFrame(big, 8192, 2) })
}

func TestEnsureWindowRejectsOverflow(t *testing.T) {
	d, _, _ := newSim(t)
	expectPanic(t, ErrWindow, func() { d.EnsureWindow(100, 0, 30, 10) })
	expectPanic(t, ErrWindow, func() { d.EnsureWindow(0, 0, 0, 10) })
}

func TestBusErrorIsFatal(t *testing.T) {
	d, p, _ := newSim(t)
	p.FailAfter(0)
	expectPanic(t, panelsim.ErrInjected, func() { d.SendCommand(DISPON) })
}

// dcRecorder checks that DC is stable per transfer and that command
// transfers carry exactly one byte.
type dcRecorder struct {
	dc    *panelsim.Line
	inner *panelsim.Panel
	bad   []string
}

func (r *dcRecorder) Tx(w, rd []byte) error {
	if !r.dc.Get() && len(w) != 1 {
		r.bad = append(r.bad, "multi-byte command transfer")
	}
	return r.inner.Tx(w, rd)
}

func (r *dcRecorder) Transfer(b byte) (byte, error) { return r.inner.Transfer(b) }

func TestDCFraming(t *testing.T) {
	p := panelsim.New()
	rec := &dcRecorder{dc: p.DC(), inner: p}
	d := New(rec, p.DC(), p.RST())
	d.Configure(Config{Sleep: func(time.Duration) {}})

	d.Init()
	d.EnsureWindow(11, 44, 25, 42)
	d.SendFrame(make([]byte, 2100), 2100, 10)
	d.FillScreen(0)

	if len(rec.bad) != 0 {
		t.Fatalf("framing violations: %v", rec.bad)
	}
	for _, op := range p.Ops() {
		switch op.Cmd {
		case SLPOUT, MADCTL, COLMOD, GAMSET, INVOFF, DISPON, CASET, RASET, RAMWR:
		default:
			t.Fatalf("data byte decoded as command %#x", op.Cmd)
		}
	}
}
