package types

import "mediaremote-go/x/conv"

// ---- Media actions ----

// Action identifies one consumer-control key. The numeric value is the
// carousel index and the bit position in the HID report.
type Action uint8

const (
	ActionNext Action = iota
	ActionPrev
	ActionStop
	ActionPlayPause
	ActionMute
	ActionVolumeUp
	ActionVolumeDown

	NumActions = 7
)

var actionNames = [NumActions]string{
	"next", "prev", "stop", "play_pause", "mute", "volume_up", "volume_down",
}

func (a Action) String() string {
	if int(a) < NumActions {
		return actionNames[a]
	}
	return "unknown"
}

// Valid reports whether a names one of the seven actions.
func (a Action) Valid() bool { return int(a) < NumActions }

// ---- Connection lifecycle ----

type ConnState uint8

const (
	StateUnprovisioned ConnState = iota
	StateRegistering
	StateAdvertising
	StateAuthenticating
	StateConnected
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateUnprovisioned:
		return "unprovisioned"
	case StateRegistering:
		return "registering"
	case StateAdvertising:
		return "advertising"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	}
	return "unknown"
}

// ---- Wall clock ----

// ClockTime is an hour:minute pair with 24 h wrap.
type ClockTime struct {
	Hour   uint8 `yaml:"hour"`
	Minute uint8 `yaml:"minute"`
}

// Valid reports whether the fields are in range.
func (t ClockTime) Valid() bool { return t.Hour < 24 && t.Minute < 60 }

// Next returns the successor minute.
func (t ClockTime) Next() ClockTime {
	if t.Minute < 59 {
		return ClockTime{Hour: t.Hour, Minute: t.Minute + 1}
	}
	if t.Hour < 23 {
		return ClockTime{Hour: t.Hour + 1}
	}
	return ClockTime{}
}

// Digits returns the four display digits h1 h0 m1 m0.
func (t ClockTime) Digits() [4]uint8 {
	return [4]uint8{t.Hour / 10, t.Hour % 10, t.Minute / 10, t.Minute % 10}
}

// String formats as HH:MM without fmt.
func (t ClockTime) String() string {
	d := t.Digits()
	return string([]byte{'0' + d[0], '0' + d[1], ':', '0' + d[2], '0' + d[3]})
}

// ---- Retained status payloads ----

// RadioStatus is published retained on radio/state.
type RadioStatus struct {
	State ConnState
	Peer  string // colon hex address
	TS    int64
}

// SelectionStatus is published retained on ui/selection.
type SelectionStatus struct {
	Index  int
	Action Action
}

// ReportStatus is published on hid/report after each key event.
type ReportStatus struct {
	Mask  uint8
	Error string
}

// InputStats is published retained on input/stats after each queue event.
type InputStats struct {
	Drops   uint32
	Presses uint32
}

// ClockStatus is published retained on clock/time after each render.
type ClockStatus struct {
	Time ClockTime
	TS   int64
}

// FormatAddr renders a six-byte radio address as AA:BB:CC:DD:EE:FF.
func FormatAddr(a [6]byte) string {
	out := make([]byte, 0, 17)
	var b [8]byte
	for i, v := range a {
		if i > 0 {
			out = append(out, ':')
		}
		h := conv.U32Hex(b[:], uint32(v))
		out = append(out, h[6:]...)
	}
	return string(out)
}

// ParseAddr is the inverse of FormatAddr.
func ParseAddr(s string) ([6]byte, bool) {
	var a [6]byte
	if len(s) != 17 {
		return a, false
	}
	for i := 0; i < 6; i++ {
		if i > 0 && s[i*3-1] != ':' {
			return a, false
		}
		hi, ok1 := conv.HexNibble(s[i*3])
		lo, ok2 := conv.HexNibble(s[i*3+1])
		if !ok1 || !ok2 {
			return a, false
		}
		a[i] = hi<<4 | lo
	}
	return a, true
}
