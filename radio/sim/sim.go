// Package sim is an in-memory radio stack. It answers lifecycle requests the
// way a real host stack does and lets tests (or the desktop simulator) play
// the part of the remote host.
package sim

import (
	"sync"

	"mediaremote-go/errcode"
	"mediaremote-go/hid"
	"mediaremote-go/radio"
)

// Report is one report accepted on the interrupt channel.
type Report struct {
	Type hid.ReportType
	ID   uint8
	Data []byte
}

// Stack implements radio.Stack. Events are queued without bound and a
// single pump feeds them to Events in order, so replies made from inside
// the consumer's own loop never block it.
type Stack struct {
	evs  chan radio.Event
	wake chan struct{}
	pump sync.Once

	qmu   sync.Mutex
	queue []radio.Event

	mu           sync.Mutex
	name         string
	major, minor uint8
	app          radio.AppParams
	descriptor   []byte
	connectable  bool
	discoverable bool
	connected    bool
	peer         [6]byte
	bonded       *[6]byte
	reports      []Report
	pins         []string
	confirms     int
	onReport     func(Report)
}

// New returns a stack with an event queue of depth n (default 32).
func New(n int) *Stack {
	if n <= 0 {
		n = 32
	}
	return &Stack{evs: make(chan radio.Event, n), wake: make(chan struct{}, 1)}
}

// Bond makes the next registration report a remembered host, which the
// lifecycle reconnects to.
func (s *Stack) Bond(addr [6]byte) {
	s.mu.Lock()
	a := addr
	s.bonded = &a
	s.mu.Unlock()
}

// OnReport installs a hook called for every accepted report.
func (s *Stack) OnReport(fn func(Report)) {
	s.mu.Lock()
	s.onReport = fn
	s.mu.Unlock()
}

func (s *Stack) emit(ev radio.Event) {
	s.pump.Do(func() { go s.deliver() })
	s.qmu.Lock()
	s.queue = append(s.queue, ev)
	s.qmu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Stack) deliver() {
	for range s.wake {
		for {
			s.qmu.Lock()
			if len(s.queue) == 0 {
				s.queue = nil
				s.qmu.Unlock()
				break
			}
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.qmu.Unlock()
			s.evs <- ev
		}
	}
}

// Pending reports events queued but not yet handed to Events.
func (s *Stack) Pending() int {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	return len(s.queue)
}

func (s *Stack) Events() <-chan radio.Event { return s.evs }

func (s *Stack) SetDeviceName(name string) error {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

func (s *Stack) SetClassOfDevice(major, minor uint8) error {
	s.mu.Lock()
	s.major, s.minor = major, minor
	s.mu.Unlock()
	return nil
}

func (s *Stack) Init() error {
	s.emit(radio.Event{Kind: radio.EvInit, OK: true})
	return nil
}

func (s *Stack) RegisterApp(app radio.AppParams, descriptor []byte) error {
	s.mu.Lock()
	s.app = app
	s.descriptor = append([]byte(nil), descriptor...)
	ev := radio.Event{Kind: radio.EvRegister, OK: len(descriptor) > 0}
	if s.bonded != nil {
		ev.InUse, ev.HasAddr, ev.Addr = true, true, *s.bonded
	}
	s.mu.Unlock()
	s.emit(ev)
	return nil
}

func (s *Stack) SetScanMode(connectable, discoverable bool) error {
	s.mu.Lock()
	s.connectable, s.discoverable = connectable, discoverable
	s.mu.Unlock()
	return nil
}

func (s *Stack) PinReply(_ [6]byte, pin string) error {
	s.mu.Lock()
	s.pins = append(s.pins, pin)
	s.mu.Unlock()
	s.emit(radio.Event{Kind: radio.EvAuth, OK: true, Name: "host"})
	return nil
}

func (s *Stack) ConfirmReply(_ [6]byte, accept bool) error {
	s.mu.Lock()
	if accept {
		s.confirms++
	}
	s.mu.Unlock()
	s.emit(radio.Event{Kind: radio.EvAuth, OK: accept, Name: "host"})
	return nil
}

// Connect is the device-initiated (virtual cable plug) connection.
func (s *Stack) Connect(addr [6]byte) error {
	s.HostConnect(addr)
	return nil
}

func (s *Stack) SendReport(typ hid.ReportType, id uint8, data []byte) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		s.emit(radio.Event{Kind: radio.EvSendReport, OK: false, ReportID: id, ReportType: typ})
		return errcode.NotConnected
	}
	r := Report{Type: typ, ID: id, Data: append([]byte(nil), data...)}
	s.reports = append(s.reports, r)
	fn := s.onReport
	s.mu.Unlock()
	if fn != nil {
		fn(r)
	}
	s.emit(radio.Event{Kind: radio.EvSendReport, OK: true, ReportID: id, ReportType: typ})
	return nil
}

// ---- host side ----

// HostConnect plays a host opening the HID channels.
func (s *Stack) HostConnect(addr [6]byte) {
	s.emit(radio.Event{Kind: radio.EvOpen, OK: true, Conn: radio.ConnConnecting, Addr: addr, HasAddr: true})
	s.mu.Lock()
	s.connected = true
	s.peer = addr
	s.mu.Unlock()
	s.emit(radio.Event{Kind: radio.EvOpen, OK: true, Conn: radio.ConnConnected, Addr: addr, HasAddr: true})
}

// HostPair plays a legacy PIN pairing request.
func (s *Stack) HostPair(addr [6]byte, min16 bool) {
	s.emit(radio.Event{Kind: radio.EvPinRequest, Addr: addr, HasAddr: true, Min16: min16})
}

// HostConfirm plays a secure simple pairing numeric comparison.
func (s *Stack) HostConfirm(addr [6]byte, num uint32) {
	s.emit(radio.Event{Kind: radio.EvConfirm, Addr: addr, HasAddr: true, Number: num})
}

// HostSetProtocol plays a SET_PROTOCOL request.
func (s *Stack) HostSetProtocol(p hid.Protocol) {
	s.emit(radio.Event{Kind: radio.EvSetProtocol, OK: true, Protocol: p})
}

// HostDisconnect plays a host closing the connection.
func (s *Stack) HostDisconnect() {
	s.emit(radio.Event{Kind: radio.EvClose, OK: true, Conn: radio.ConnDisconnecting})
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	s.emit(radio.Event{Kind: radio.EvClose, OK: true, Conn: radio.ConnDisconnected})
}

// HostUnplug plays a virtual cable unplug.
func (s *Stack) HostUnplug() {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	s.emit(radio.Event{Kind: radio.EvUnplug, OK: true, Conn: radio.ConnDisconnected})
}

// Inject queues an arbitrary event.
func (s *Stack) Inject(ev radio.Event) { s.emit(ev) }

// ---- inspection ----

func (s *Stack) ScanMode() (connectable, discoverable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectable, s.discoverable
}

func (s *Stack) Reports() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Report(nil), s.reports...)
}

func (s *Stack) Pins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pins...)
}

func (s *Stack) Confirms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirms
}

func (s *Stack) Identity() (name string, major, minor uint8, app radio.AppParams, descriptor []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.major, s.minor, s.app, append([]byte(nil), s.descriptor...)
}

func (s *Stack) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
