package radio

import (
	"context"
	"sync"
	"time"

	"mediaremote-go/bus"
	"mediaremote-go/hid"
	"mediaremote-go/types"
	"mediaremote-go/x/strx"
)

// TopicState carries the retained types.RadioStatus.
var TopicState = bus.T("radio", "state")

// Config names the device and its pairing answers. Empty fields take the
// defaults below.
type Config struct {
	DeviceName string
	App        AppParams
	PIN        string // 4-digit requests
	PIN16      string // 16-digit requests
}

const (
	DefaultDeviceName = "HID Media Controller"
	DefaultPIN        = "1234"
	DefaultPIN16      = "0000000000000000"
)

// DefaultApp is the registered application record.
var DefaultApp = AppParams{
	Name:        "Media Controller",
	Description: "HID Media controller for ESP32",
	Provider:    "ESP32",
	Subclass:    CoDMinorMic,
}

// Lifecycle drives a Stack through the connection state machine and keeps
// the HID endpoint's configuration record in step with the connection.
type Lifecycle struct {
	stack Stack
	ep    *hid.Endpoint
	conn  *bus.Connection
	cfg   Config
	desc  []byte

	mu    sync.Mutex
	state types.ConnState
	peer  [6]byte
}

func New(stack Stack, ep *hid.Endpoint, conn *bus.Connection, cfg Config) *Lifecycle {
	cfg.DeviceName = strx.Coalesce(cfg.DeviceName, DefaultDeviceName)
	if cfg.App.Name == "" {
		cfg.App = DefaultApp
	}
	cfg.PIN = strx.Coalesce(cfg.PIN, DefaultPIN)
	cfg.PIN16 = strx.Coalesce(cfg.PIN16, DefaultPIN16)
	return &Lifecycle{
		stack: stack,
		ep:    ep,
		conn:  conn,
		cfg:   cfg,
		desc:  hid.Descriptor(),
		state: types.StateUnprovisioned,
	}
}

// State returns the current connection state.
func (l *Lifecycle) State() types.ConnState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start names the device, starts the stack and consumes its events until
// ctx is done.
func (l *Lifecycle) Start(ctx context.Context) error {
	println("[radio] setting device name:", l.cfg.DeviceName)
	if err := l.stack.SetDeviceName(l.cfg.DeviceName); err != nil {
		return err
	}
	println("[radio] setting cod major, peripheral")
	if err := l.stack.SetClassOfDevice(CoDMajorPeripheral, CoDMinorMic); err != nil {
		return err
	}
	l.publish()
	println("[radio] starting hid device")
	if err := l.stack.Init(); err != nil {
		return err
	}
	go l.loop(ctx)
	return nil
}

func (l *Lifecycle) loop(ctx context.Context) {
	evs := l.stack.Events()
	for {
		select {
		case <-ctx.Done():
			println("[radio] lifecycle stopping")
			return
		case ev, ok := <-evs:
			if !ok {
				println("[radio] stack event stream closed")
				return
			}
			l.Handle(ev)
		}
	}
}

// Handle applies one stack event. Protocol errors are logged and the
// machine carries on.
func (l *Lifecycle) Handle(ev Event) {
	switch ev.Kind {
	case EvInit:
		if !ev.OK {
			println("[radio] init hidd failed!")
			return
		}
		println("[radio] setting hid parameters")
		if err := l.stack.RegisterApp(l.cfg.App, l.desc); err != nil {
			println("[radio] register app request failed:", err.Error())
			return
		}
		l.setState(types.StateRegistering)

	case EvDeinit:
		println("[radio] hidd deinit")
		l.ep.Close()
		l.setState(types.StateUnprovisioned)

	case EvRegister:
		if !ev.OK {
			println("[radio] setting hid parameters failed!")
			return
		}
		println("[radio] setting hid parameters success, now connectable and discoverable")
		l.scan(true, true)
		l.setState(types.StateAdvertising)
		if ev.InUse && ev.HasAddr {
			println("[radio] start virtual cable plug:", types.FormatAddr(ev.Addr))
			if err := l.stack.Connect(ev.Addr); err != nil {
				println("[radio] virtual cable plug failed:", err.Error())
			}
		}

	case EvUnregister:
		if ev.OK {
			println("[radio] unregister app success")
		} else {
			println("[radio] unregister app failed!")
		}

	case EvOpen:
		if !ev.OK {
			println("[radio] open failed!")
			return
		}
		switch ev.Conn {
		case ConnConnecting:
			println("[radio] connecting...")
			l.setState(types.StateAuthenticating)
		case ConnConnected:
			println("[radio] connected to", types.FormatAddr(ev.Addr))
			l.ep.Open()
			l.mu.Lock()
			l.peer = ev.Addr
			l.mu.Unlock()
			println("[radio] making self non-discoverable and non-connectable")
			l.scan(false, false)
			l.setState(types.StateConnected)
		default:
			println("[radio] unknown connection status")
		}

	case EvClose, EvUnplug:
		if !ev.OK {
			println("[radio] close failed!")
			return
		}
		switch ev.Conn {
		case ConnDisconnecting:
			if ev.Kind == EvClose {
				println("[radio] disconnecting...")
				l.setState(types.StateDisconnecting)
				return
			}
			println("[radio] unknown connection status")
		case ConnDisconnected:
			println("[radio] disconnected, making self discoverable and connectable again")
			l.ep.Close()
			l.mu.Lock()
			l.peer = [6]byte{}
			l.mu.Unlock()
			l.scan(true, true)
			l.setState(types.StateAdvertising)
		default:
			println("[radio] unknown connection status")
		}

	case EvSetProtocol:
		if err := l.ep.SetProtocol(ev.Protocol); err != nil {
			println("[radio] set protocol ignored:", err.Error())
			return
		}
		println("[radio] protocol mode:", ev.Protocol.String())

	case EvAuth:
		if ev.OK {
			println("[radio] authentication success:", ev.Name)
		} else {
			println("[radio] authentication failed, status:", ev.AuthStatus)
		}

	case EvPinRequest:
		pin := l.cfg.PIN
		if ev.Min16 {
			pin = l.cfg.PIN16
		}
		println("[radio] pin request, replying with", len(pin), "digit code")
		if err := l.stack.PinReply(ev.Addr, pin); err != nil {
			println("[radio] pin reply failed:", err.Error())
		}

	case EvConfirm:
		println("[radio] confirm numeric value:", ev.Number)
		if err := l.stack.ConfirmReply(ev.Addr, true); err != nil {
			println("[radio] confirm reply failed:", err.Error())
		}

	case EvKeyNotify:
		println("[radio] passkey:", ev.Number)

	case EvKeyRequest:
		println("[radio] passkey requested")

	case EvSendReport:
		if ev.OK {
			println("[radio] report sent id:", ev.ReportID, "type:", uint8(ev.ReportType))
		} else {
			println("[radio] report send failed id:", ev.ReportID, "type:", uint8(ev.ReportType))
		}

	case EvReportError:
		println("[radio] report error")

	case EvSetReport:
		println("[radio] set report")

	case EvIntrData:
		println("[radio] interrupt data")

	default:
		println("[radio] event:", uint8(ev.Kind))
	}
}

func (l *Lifecycle) scan(connectable, discoverable bool) {
	if err := l.stack.SetScanMode(connectable, discoverable); err != nil {
		println("[radio] set scan mode failed:", err.Error())
	}
}

func (l *Lifecycle) setState(s types.ConnState) {
	l.mu.Lock()
	changed := l.state != s
	l.state = s
	l.mu.Unlock()
	if changed {
		l.publish()
	}
}

func (l *Lifecycle) publish() {
	if l.conn == nil {
		return
	}
	l.mu.Lock()
	st := types.RadioStatus{State: l.state, TS: time.Now().UnixMilli()}
	if l.state == types.StateConnected {
		st.Peer = types.FormatAddr(l.peer)
	}
	l.mu.Unlock()
	l.conn.Publish(l.conn.NewMessage(TopicState, st, true))
}
