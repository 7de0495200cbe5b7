// Package radio runs the classic-radio HID device lifecycle: stack bring-up,
// application registration, advertising, pairing and the connect/disconnect
// cycle. The radio stack itself is behind the Stack interface.
package radio

import (
	"mediaremote-go/hid"
)

// EventKind enumerates the callbacks delivered by a Stack.
type EventKind uint8

const (
	EvInit EventKind = iota + 1
	EvDeinit
	EvRegister
	EvUnregister
	EvOpen
	EvClose
	EvSetProtocol
	EvUnplug
	EvAuth
	EvPinRequest
	EvConfirm
	EvKeyNotify
	EvKeyRequest
	EvSendReport
	EvReportError
	EvSetReport
	EvIntrData
)

var kindNames = [...]string{
	"", "init", "deinit", "register", "unregister", "open", "close", "set_protocol", "unplug",
	"auth", "pin_request", "confirm", "key_notify", "key_request", "send_report",
	"report_error", "set_report", "intr_data",
}

func (k EventKind) String() string {
	if int(k) < len(kindNames) && k != 0 {
		return kindNames[k]
	}
	return "unknown"
}

// ConnStatus is the connection field of open/close/unplug events.
type ConnStatus uint8

const (
	ConnUnknown ConnStatus = iota
	ConnConnecting
	ConnConnected
	ConnDisconnecting
	ConnDisconnected
)

// Event is one stack callback. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind
	OK   bool

	Conn    ConnStatus
	Addr    [6]byte
	HasAddr bool

	// EvRegister: the stack remembers a previously bonded host.
	InUse bool

	// EvSetProtocol.
	Protocol hid.Protocol

	// EvAuth.
	Name       string
	AuthStatus int

	// EvPinRequest: true when the initiator requires 16 digits.
	Min16 bool

	// EvConfirm numeric value, EvKeyNotify passkey.
	Number uint32

	// EvSendReport.
	ReportID   uint8
	ReportType hid.ReportType
}

// Device class: major peripheral, minor microphone.
const (
	CoDMajorPeripheral = 0x05
	CoDMinorMic        = 0x04
)

// AppParams describe the registered HID application.
type AppParams struct {
	Name        string
	Description string
	Provider    string
	Subclass    uint8
}

// Stack is the radio host stack as seen by the lifecycle. Calls are
// requests; their outcomes arrive later on Events.
type Stack interface {
	hid.Transport

	SetDeviceName(name string) error
	SetClassOfDevice(major, minor uint8) error
	Init() error
	RegisterApp(app AppParams, descriptor []byte) error
	SetScanMode(connectable, discoverable bool) error
	PinReply(addr [6]byte, pin string) error
	ConfirmReply(addr [6]byte, accept bool) error
	Connect(addr [6]byte) error

	Events() <-chan Event
}
