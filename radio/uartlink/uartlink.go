// Package uartlink implements radio.Stack over a serial line to a radio
// coprocessor speaking the linkproto line protocol.
package uartlink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mediaremote-go/errcode"
	"mediaremote-go/hid"
	"mediaremote-go/radio"
	"mediaremote-go/radio/linkproto"
	"mediaremote-go/x/mathx"
)

// Port is a byte stream to the coprocessor. RecvSomeContext returns as soon
// as at least one byte is available or ctx is done.
type Port interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

type Config struct {
	EventDepth  int           // default 32
	MaxLine     int           // clamp 32..512
	ReadTimeout time.Duration // per receive, default 250ms
}

// Link is a radio.Stack backed by a Port. Run must be started before the
// lifecycle so replies are consumed.
type Link struct {
	port Port
	evs  chan radio.Event
	cfg  Config

	wmu sync.Mutex

	lines   atomic.Uint32
	badLine atomic.Uint32
}

func New(port Port, cfgs ...Config) *Link {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.EventDepth <= 0 {
		cfg.EventDepth = 32
	}
	if cfg.MaxLine <= 0 {
		cfg.MaxLine = 256
	}
	cfg.MaxLine = mathx.Clamp(cfg.MaxLine, 32, 512)
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 250 * time.Millisecond
	}
	return &Link{port: port, evs: make(chan radio.Event, cfg.EventDepth), cfg: cfg}
}

// Run reads lines until ctx is done and closes the event stream on exit.
func (l *Link) Run(ctx context.Context) {
	defer close(l.evs)
	buf := make([]byte, 64)
	line := make([]byte, 0, l.cfg.MaxLine)
	for {
		if ctx.Err() != nil {
			return
		}
		// Bound the blocking wait to assist shutdown.
		rctx, rcancel := context.WithTimeout(ctx, l.cfg.ReadTimeout)
		n, err := l.port.RecvSomeContext(rctx, buf)
		rcancel()
		if err != nil && n <= 0 {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			println("[uartlink] receive error:", err.Error())
			time.Sleep(l.cfg.ReadTimeout)
			continue
		}
		for i := 0; i < n; i++ {
			switch b := buf[i]; b {
			case '\n':
				if !l.dispatch(ctx, line) {
					return
				}
				line = line[:0]
			case '\r':
			default:
				if len(line) < l.cfg.MaxLine {
					line = append(line, b)
				}
			}
		}
	}
}

func (l *Link) dispatch(ctx context.Context, line []byte) bool {
	if len(line) == 0 {
		return true
	}
	ev, err := linkproto.ParseEvent(string(line))
	if err != nil {
		if !errors.Is(err, linkproto.ErrEmpty) {
			l.badLine.Add(1)
			println("[uartlink] ignoring line:", err.Error())
		}
		return true
	}
	l.lines.Add(1)
	select {
	case l.evs <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stats returns the counts of accepted and rejected event lines.
func (l *Link) Stats() (lines, bad uint32) { return l.lines.Load(), l.badLine.Load() }

func (l *Link) send(op string, line []byte) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	for len(line) > 0 {
		n, err := l.port.Write(line)
		if err != nil {
			return errcode.Wrap(errcode.LinkClosed, op, err)
		}
		if n <= 0 {
			return &errcode.E{C: errcode.LinkClosed, Op: op, Msg: "short write"}
		}
		line = line[n:]
	}
	return nil
}

func (l *Link) Events() <-chan radio.Event { return l.evs }

func (l *Link) SetDeviceName(name string) error {
	return l.send("uartlink.name", linkproto.NameCmd(name))
}

func (l *Link) SetClassOfDevice(major, minor uint8) error {
	if major != radio.CoDMajorPeripheral || minor != radio.CoDMinorMic {
		return &errcode.E{C: errcode.Unsupported, Op: "uartlink.cod", Msg: "only peripheral/mic"}
	}
	return l.send("uartlink.cod", linkproto.CoDCmd())
}

func (l *Link) Init() error { return l.send("uartlink.init", linkproto.InitCmd()) }

func (l *Link) RegisterApp(app radio.AppParams, descriptor []byte) error {
	return l.send("uartlink.regapp", linkproto.RegAppCmd(app, descriptor))
}

func (l *Link) SetScanMode(connectable, discoverable bool) error {
	return l.send("uartlink.scan", linkproto.ScanCmd(connectable, discoverable))
}

func (l *Link) PinReply(addr [6]byte, pin string) error {
	return l.send("uartlink.pin", linkproto.PinReplyCmd(addr, pin))
}

func (l *Link) ConfirmReply(addr [6]byte, accept bool) error {
	return l.send("uartlink.ssp", linkproto.SSPReplyCmd(addr, accept))
}

func (l *Link) Connect(addr [6]byte) error {
	return l.send("uartlink.connect", linkproto.ConnectCmd(addr))
}

// SendReport forwards an interrupt-channel report. The outcome arrives as a
// SENT event.
func (l *Link) SendReport(typ hid.ReportType, id uint8, data []byte) error {
	if typ != hid.ReportTypeIntrData {
		return &errcode.E{C: errcode.Unsupported, Op: "uartlink.report", Msg: "interrupt channel only"}
	}
	return l.send("uartlink.report", linkproto.ReportCmd(id, data))
}
