package hid

import (
	"context"
	"sync"
	"time"

	"mediaremote-go/errcode"
)

// Protocol is the HID protocol mode chosen by the host.
type Protocol uint8

const (
	ProtocolBoot   Protocol = 0
	ProtocolReport Protocol = 1
)

func (p Protocol) String() string {
	if p == ProtocolBoot {
		return "boot"
	}
	return "report"
}

// ReportType selects the channel/type of a report.
type ReportType uint8

const (
	ReportTypeInput    ReportType = 0x01
	ReportTypeOutput   ReportType = 0x02
	ReportTypeFeature  ReportType = 0x03
	ReportTypeIntrData ReportType = 0x10 // interrupt channel input report
)

// Transport delivers reports to the connected host.
type Transport interface {
	SendReport(typ ReportType, id uint8, data []byte) error
}

// MinGuard is the shortest gap allowed around a press report.
const MinGuard = 50 * time.Millisecond

// Config for an Endpoint. All fields are optional.
type Config struct {
	// Guard is the wait before the press and before the release.
	// Default and floor 50 ms.
	Guard time.Duration
}

// record is the per-connection configuration. It exists only while a host
// is connected; its mutex guards the protocol and the report buffer.
type record struct {
	mu       sync.Mutex
	protocol Protocol
	buf      [1]byte
}

// Endpoint is the consumer-control device.
type Endpoint struct {
	tx    Transport
	guard time.Duration

	// send serialises report pairs across connections.
	send sync.Mutex

	mu  sync.Mutex
	rec *record

	sent uint32
}

func NewEndpoint(tx Transport, cfgs ...Config) *Endpoint {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Guard < MinGuard {
		c.Guard = MinGuard
	}
	return &Endpoint{tx: tx, guard: c.Guard}
}

// Open creates the configuration record for a new connection: report
// protocol, zeroed report buffer.
func (e *Endpoint) Open() {
	e.mu.Lock()
	e.rec = &record{protocol: ProtocolReport}
	e.mu.Unlock()
}

// Close destroys the configuration record. A pair already in flight still
// finishes before any pair on a later record starts.
func (e *Endpoint) Close() {
	e.mu.Lock()
	e.rec = nil
	e.mu.Unlock()
}

// Connected reports whether a configuration record exists.
func (e *Endpoint) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec != nil
}

func (e *Endpoint) current() *record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec
}

// SetProtocol records the host's protocol choice.
func (e *Endpoint) SetProtocol(p Protocol) error {
	r := e.current()
	if r == nil {
		return errcode.NotConnected
	}
	r.mu.Lock()
	r.protocol = p
	r.mu.Unlock()
	return nil
}

// Protocol returns the current mode; boot when disconnected.
func (e *Endpoint) Protocol() Protocol {
	r := e.current()
	if r == nil {
		return ProtocolBoot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protocol
}

// SendMediaReport emits one key event: mask, then all-zeros. Both reports
// follow a guard wait, and no other report can come between them.
// Cancelling ctx before the press aborts the event; once the press is out
// the release is always sent.
func (e *Endpoint) SendMediaReport(ctx context.Context, mask uint8) error {
	e.send.Lock()
	defer e.send.Unlock()

	r := e.current()
	if r == nil {
		return errcode.NotConnected
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.protocol != ProtocolReport {
		return errcode.BootProtocol
	}

	t := time.NewTimer(e.guard)
	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-t.C:
	}

	r.buf[0] = mask
	if err := e.tx.SendReport(ReportTypeIntrData, ReportID, r.buf[:]); err != nil {
		return errcode.Wrap(errcode.BusFault, "hid.press", err)
	}
	time.Sleep(e.guard)

	r.buf[0] = 0
	if err := e.tx.SendReport(ReportTypeIntrData, ReportID, r.buf[:]); err != nil {
		return errcode.Wrap(errcode.BusFault, "hid.release", err)
	}
	e.mu.Lock()
	e.sent++
	e.mu.Unlock()
	return nil
}

// Sent counts completed key events.
func (e *Endpoint) Sent() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}
