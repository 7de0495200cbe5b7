package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mediaremote-go/assets"
	"mediaremote-go/config"
	"mediaremote-go/drivers/st7735s"
	"mediaremote-go/errcode"
	"mediaremote-go/internal/halcore"
	"mediaremote-go/internal/platform"
	"mediaremote-go/services/clock"
	"mediaremote-go/types"
)

var hostAddr = [6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x11, 0x22}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (l *logSink) add(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

func (l *logSink) has(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hostHardware(t *testing.T, cfg *config.Config) (Hardware, *platform.Board, *logSink) {
	t.Helper()
	b, err := platform.Open(cfg.Panel)
	if err != nil {
		t.Fatal(err)
	}
	log := &logSink{}
	return Hardware{
		SPI:   b.SPI,
		DC:    b.DC,
		RST:   b.RST,
		Pins:  b.Pins,
		Sleep: func(time.Duration) {},
		Log:   log.add,
	}, b, log
}

func TestBootFillsPanelAndStartsClock(t *testing.T) {
	cfg := config.Default()
	hw, board, log := hostHardware(t, cfg)
	a, err := New(cfg, hw)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if got := board.Emulator.Pixel(0, 0); got != 0x7D7D {
		t.Fatalf("splash pixel %#04x", got)
	}
	sub := a.Bus.NewConnection("test").Subscribe(clock.TopicTime)
	select {
	case m := <-sub.Channel():
		if st := m.Payload.(types.ClockStatus); st.Time.String() != "05:40" {
			t.Fatalf("clock %v", st.Time)
		}
	case <-time.After(time.Second):
		t.Fatal("clock never rendered")
	}
	waitFor(t, "advertising", func() bool { return a.Radio.State() == types.StateAdvertising })
	waitFor(t, "monitor line", func() bool { return log.has("radio/state advertising") })
}

func TestZeroPanelOffsetReachesGlass(t *testing.T) {
	cfg := config.Default()
	cfg.Panel.XOffset, cfg.Panel.YOffset = 0, 0
	hw, board, _ := hostHardware(t, cfg)
	a, err := New(cfg, hw)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}

	var caset, raset []byte
	for _, op := range board.Emulator.Ops() {
		if op.Cmd == st7735s.CASET && caset == nil {
			caset = op.Data
		}
		if op.Cmd == st7735s.RASET && raset == nil {
			raset = op.Data
		}
	}
	if !bytes.Equal(caset, []byte{0, 0, 0, 127}) || !bytes.Equal(raset, []byte{0, 0, 0, 127}) {
		t.Fatalf("boot fill window CASET %x RASET %x", caset, raset)
	}
}

func TestButtonsDriveSelectionAndReports(t *testing.T) {
	cfg := config.Default()
	hw, board, _ := hostHardware(t, cfg)
	a, err := New(cfg, hw)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "advertising", func() bool { return a.Radio.State() == types.StateAdvertising })
	a.Sim.HostConnect(hostAddr)
	waitFor(t, "connected", func() bool { return a.Radio.State() == types.StateConnected })

	board.Fake.Pin(cfg.Buttons.A).Press()
	waitFor(t, "selection", func() bool { return a.UI.Selection() == types.ActionPrev })

	board.Fake.Pin(cfg.Buttons.B).Press()
	waitFor(t, "report pair", func() bool { return len(a.Sim.Reports()) == 2 })
	r := a.Sim.Reports()
	if !bytes.Equal(r[0].Data, []byte{0x02}) || !bytes.Equal(r[1].Data, []byte{0x00}) {
		t.Fatalf("reports %+v", r)
	}
	if a.Input.Presses() != 2 || a.Input.Drops() != 0 {
		t.Fatalf("presses=%d drops=%d", a.Input.Presses(), a.Input.Drops())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UI.SelectionWrap = 9
	hw, _, _ := hostHardware(t, cfg)
	if _, err := New(cfg, hw); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRejectsDamagedAssets(t *testing.T) {
	cfg := config.Default()
	hw, _, _ := hostHardware(t, cfg)
	hw.Assets = []byte("nope")
	if _, err := New(cfg, hw); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("err = %v", err)
	}

	blob, err := assets.Encode(assets.Render())
	if err != nil {
		t.Fatal(err)
	}
	hw.Assets = blob
	if _, err := New(cfg, hw); err != nil {
		t.Fatalf("packed assets rejected: %v", err)
	}
}

func TestSerialBackendNeedsPort(t *testing.T) {
	cfg := config.Default()
	cfg.Radio.Backend = config.BackendSerial
	hw, _, _ := hostHardware(t, cfg)
	if _, err := New(cfg, hw); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("err = %v", err)
	}
}

// coprocessor records commands and never answers.
type coprocessor struct {
	mu  sync.Mutex
	out bytes.Buffer
}

func (c *coprocessor) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *coprocessor) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (c *coprocessor) written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func TestSerialBackendSpeaksLineProtocol(t *testing.T) {
	cfg := config.Default()
	cfg.Radio.Backend = config.BackendSerial
	cfg.Device.Name = "Desk Remote"
	hw, _, _ := hostHardware(t, cfg)
	cp := &coprocessor{}
	var opened config.SerialConfig
	hw.OpenSerial = func(sc config.SerialConfig) (halcore.SerialPort, error) {
		opened = sc
		return cp, nil
	}
	a, err := New(cfg, hw)
	if err != nil {
		t.Fatal(err)
	}
	if a.Link == nil || a.Sim != nil || opened.Baud != 115200 {
		t.Fatalf("serial backend not wired: %+v", opened)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	want := "NAME \"Desk Remote\"\nCOD peripheral\nINIT\n"
	if got := cp.written(); got != want {
		t.Fatalf("wrote %q, want %q", got, want)
	}
}

func TestUnknownButtonPinFailsStart(t *testing.T) {
	cfg := config.Default()
	hw, _, _ := hostHardware(t, cfg)
	hw.Pins = noPins{}
	a, err := New(cfg, hw)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); !errors.Is(err, errcode.UnknownPin) {
		t.Fatalf("err = %v", err)
	}
}

type noPins struct{}

func (noPins) ByNumber(int) (halcore.GPIOPin, bool) { return nil, false }
