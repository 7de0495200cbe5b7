// Package linkproto is the line protocol spoken with a serial-attached radio
// coprocessor. Events flow from the coprocessor, commands flow to it. Each
// line is a verb followed by shell-style tokens and a terminating LF.
package linkproto

import (
	"errors"
	"strings"

	"github.com/google/shlex"

	"mediaremote-go/errcode"
	"mediaremote-go/hid"
	"mediaremote-go/radio"
	"mediaremote-go/types"
	"mediaremote-go/x/conv"
	"mediaremote-go/x/strconvx"
)

var (
	ErrEmpty   = errors.New("empty line")
	ErrUnknown = errors.New("unknown verb")
	ErrSyntax  = errors.New("bad arguments")
)

// Event verbs.
const (
	VerbInit     = "INIT"
	VerbDeinit   = "DEINIT"
	VerbReg      = "REG"
	VerbUnreg    = "UNREG"
	VerbOpen     = "OPEN"
	VerbClose    = "CLOSE"
	VerbProto    = "PROTO"
	VerbUnplug   = "UNPLUG"
	VerbAuth     = "AUTH"
	VerbPin      = "PIN"
	VerbConfirm  = "CFM"
	VerbKeyNotif = "KEYNOTIF"
	VerbKeyReq   = "KEYREQ"
	VerbSent     = "SENT"
	VerbRepErr   = "REPERR"
	VerbSetRep   = "SETREP"
	VerbIntr     = "INTR"
)

// Command verbs.
const (
	CmdName     = "NAME"
	CmdCoD      = "COD"
	CmdRegApp   = "REGAPP"
	CmdScan     = "SCAN"
	CmdConnect  = "CONNECT"
	CmdReport   = "REPORT"
	CmdPinReply = "PINREPLY"
	CmdSSPReply = "SSPREPLY"
	CmdInit     = "INIT"
)

var connWords = map[string]radio.ConnStatus{
	"connecting":    radio.ConnConnecting,
	"connected":     radio.ConnConnected,
	"disconnecting": radio.ConnDisconnecting,
	"disconnected":  radio.ConnDisconnected,
}

var verbKinds = map[string]radio.EventKind{
	VerbInit:   radio.EvInit,
	VerbDeinit: radio.EvDeinit,
	VerbUnreg:  radio.EvUnregister,
	VerbOpen:   radio.EvOpen,
	VerbClose:  radio.EvClose,
	VerbUnplug: radio.EvUnplug,
}

func syntax(verb string) error {
	return &errcode.E{C: errcode.Protocol, Op: "linkproto.parse", Msg: verb, Err: ErrSyntax}
}

// ParseEvent decodes one event line. CR/LF are ignored.
func ParseEvent(line string) (radio.Event, error) {
	line = strings.TrimRight(line, "\r\n")
	toks, err := shlex.Split(line)
	if err != nil {
		return radio.Event{}, errcode.Wrap(errcode.Protocol, "linkproto.parse", err)
	}
	if len(toks) == 0 {
		return radio.Event{}, ErrEmpty
	}
	verb, args := strings.ToUpper(toks[0]), toks[1:]

	ev := radio.Event{OK: true}
	switch verb {
	case VerbInit, VerbDeinit, VerbUnreg:
		ev.Kind = verbKinds[verb]
		if len(args) > 0 {
			if ev.OK, err = okWord(args[0]); err != nil {
				return radio.Event{}, syntax(verb)
			}
		}

	case VerbReg:
		ev.Kind = radio.EvRegister
		if len(args) != 1 && len(args) != 3 {
			return radio.Event{}, syntax(verb)
		}
		if ev.OK, err = okWord(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		if len(args) == 3 {
			if args[1] != "inuse" {
				return radio.Event{}, syntax(verb)
			}
			if ev.Addr, ev.HasAddr = types.ParseAddr(args[2]); !ev.HasAddr {
				return radio.Event{}, syntax(verb)
			}
			ev.InUse = true
		}

	case VerbOpen, VerbClose, VerbUnplug:
		ev.Kind = verbKinds[verb]
		if len(args) < 2 || len(args) > 3 {
			return radio.Event{}, syntax(verb)
		}
		if ev.OK, err = okWord(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		ev.Conn = connWords[args[1]]
		if len(args) == 3 {
			if ev.Addr, ev.HasAddr = types.ParseAddr(args[2]); !ev.HasAddr {
				return radio.Event{}, syntax(verb)
			}
		}

	case VerbProto:
		ev.Kind = radio.EvSetProtocol
		if len(args) != 1 {
			return radio.Event{}, syntax(verb)
		}
		switch args[0] {
		case "boot":
			ev.Protocol = hid.ProtocolBoot
		case "report":
			ev.Protocol = hid.ProtocolReport
		default:
			return radio.Event{}, syntax(verb)
		}

	case VerbAuth:
		ev.Kind = radio.EvAuth
		if len(args) < 2 || len(args) > 4 {
			return radio.Event{}, syntax(verb)
		}
		if ev.OK, err = okWord(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		if ev.AuthStatus, err = strconvx.Atoi(args[1]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		// A lone trailing token is the address when it parses as one.
		rest := args[2:]
		if n := len(rest); n > 0 {
			if a, ok := types.ParseAddr(rest[n-1]); ok {
				ev.Addr, ev.HasAddr = a, true
				rest = rest[:n-1]
			} else if n == 2 {
				return radio.Event{}, syntax(verb)
			}
		}
		if len(rest) == 1 {
			ev.Name = rest[0]
		}

	case VerbPin:
		ev.Kind, ev.OK = radio.EvPinRequest, false
		if len(args) != 2 {
			return radio.Event{}, syntax(verb)
		}
		switch args[0] {
		case "4":
		case "16":
			ev.Min16 = true
		default:
			return radio.Event{}, syntax(verb)
		}
		if ev.Addr, ev.HasAddr = types.ParseAddr(args[1]); !ev.HasAddr {
			return radio.Event{}, syntax(verb)
		}

	case VerbConfirm:
		ev.Kind, ev.OK = radio.EvConfirm, false
		if len(args) != 2 {
			return radio.Event{}, syntax(verb)
		}
		if ev.Number, err = parseU32(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		if ev.Addr, ev.HasAddr = types.ParseAddr(args[1]); !ev.HasAddr {
			return radio.Event{}, syntax(verb)
		}

	case VerbKeyNotif:
		ev.Kind, ev.OK = radio.EvKeyNotify, false
		if len(args) != 1 {
			return radio.Event{}, syntax(verb)
		}
		if ev.Number, err = parseU32(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}

	case VerbKeyReq:
		ev.Kind, ev.OK = radio.EvKeyRequest, false

	case VerbSent:
		ev.Kind = radio.EvSendReport
		if len(args) != 3 {
			return radio.Event{}, syntax(verb)
		}
		if ev.OK, err = okWord(args[0]); err != nil {
			return radio.Event{}, syntax(verb)
		}
		id, err1 := strconvx.ParseUint(args[1], 10, 8)
		typ, err2 := strconvx.ParseUint(args[2], 0, 8)
		if err1 != nil || err2 != nil {
			return radio.Event{}, syntax(verb)
		}
		ev.ReportID, ev.ReportType = uint8(id), hid.ReportType(typ)

	case VerbRepErr:
		ev.Kind = radio.EvReportError
	case VerbSetRep:
		ev.Kind = radio.EvSetReport
	case VerbIntr:
		ev.Kind = radio.EvIntrData

	default:
		return radio.Event{}, &errcode.E{C: errcode.Protocol, Op: "linkproto.parse", Msg: toks[0], Err: ErrUnknown}
	}
	return ev, nil
}

func okWord(s string) (bool, error) {
	switch s {
	case "ok":
		return true, nil
	case "fail":
		return false, nil
	}
	return false, ErrSyntax
}

func parseU32(s string) (uint32, error) {
	v, err := strconvx.ParseUint(s, 10, 32)
	return uint32(v), err
}

func word(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// FormatEvent renders ev as a line, the inverse of ParseEvent. The
// coprocessor emulation and tests use it.
func FormatEvent(ev radio.Event) []byte {
	ok := word(ev.OK, "ok", "fail")
	conn := func() string {
		for w, c := range connWords {
			if c == ev.Conn {
				return w
			}
		}
		return "unknown"
	}
	var args []string
	verb := ""
	switch ev.Kind {
	case radio.EvInit:
		verb, args = VerbInit, []string{ok}
	case radio.EvDeinit:
		verb, args = VerbDeinit, []string{ok}
	case radio.EvUnregister:
		verb, args = VerbUnreg, []string{ok}
	case radio.EvRegister:
		verb, args = VerbReg, []string{ok}
		if ev.InUse && ev.HasAddr {
			args = append(args, "inuse", types.FormatAddr(ev.Addr))
		}
	case radio.EvOpen, radio.EvClose, radio.EvUnplug:
		for v, k := range verbKinds {
			if k == ev.Kind {
				verb = v
			}
		}
		args = []string{ok, conn()}
		if ev.HasAddr {
			args = append(args, types.FormatAddr(ev.Addr))
		}
	case radio.EvSetProtocol:
		verb, args = VerbProto, []string{word(ev.Protocol == hid.ProtocolBoot, "boot", "report")}
	case radio.EvAuth:
		verb, args = VerbAuth, []string{ok, strconvx.Itoa(ev.AuthStatus)}
		if ev.Name != "" {
			args = append(args, ev.Name)
		}
		if ev.HasAddr {
			args = append(args, types.FormatAddr(ev.Addr))
		}
	case radio.EvPinRequest:
		verb, args = VerbPin, []string{word(ev.Min16, "16", "4"), types.FormatAddr(ev.Addr)}
	case radio.EvConfirm:
		verb, args = VerbConfirm, []string{strconvx.FormatUint(uint64(ev.Number), 10), types.FormatAddr(ev.Addr)}
	case radio.EvKeyNotify:
		verb, args = VerbKeyNotif, []string{strconvx.FormatUint(uint64(ev.Number), 10)}
	case radio.EvKeyRequest:
		verb = VerbKeyReq
	case radio.EvSendReport:
		verb = VerbSent
		args = []string{ok, strconvx.Itoa(int(ev.ReportID)), strconvx.Itoa(int(ev.ReportType))}
	case radio.EvReportError:
		verb = VerbRepErr
	case radio.EvSetReport:
		verb = VerbSetRep
	case radio.EvIntrData:
		verb = VerbIntr
	default:
		return nil
	}
	return Line(verb, args...)
}

// Line joins verb and args, quoting any arg that would not survive
// tokenisation, and appends LF.
func Line(verb string, args ...string) []byte {
	b := make([]byte, 0, 16+len(verb))
	b = append(b, verb...)
	for _, a := range args {
		b = append(b, ' ')
		b = appendArg(b, a)
	}
	return append(b, '\n')
}

func appendArg(b []byte, a string) []byte {
	if a != "" && !strings.ContainsAny(a, " \t\r\n\"'\\#") {
		return append(b, a...)
	}
	b = append(b, '"')
	for i := 0; i < len(a); i++ {
		if c := a[i]; c == '"' || c == '\\' {
			b = append(b, '\\')
		}
		b = append(b, a[i])
	}
	return append(b, '"')
}

// ---- commands ----

func NameCmd(name string) []byte { return Line(CmdName, name) }

func CoDCmd() []byte { return Line(CmdCoD, "peripheral") }

func RegAppCmd(app radio.AppParams, descriptor []byte) []byte {
	return Line(CmdRegApp, app.Name, app.Description, app.Provider, "mic",
		string(conv.AppendHexBytes(nil, descriptor)))
}

func ScanCmd(connectable, discoverable bool) []byte {
	return Line(CmdScan, word(connectable, "conn", "noconn"), word(discoverable, "disc", "nodisc"))
}

func ConnectCmd(addr [6]byte) []byte { return Line(CmdConnect, types.FormatAddr(addr)) }

func ReportCmd(id uint8, data []byte) []byte {
	return Line(CmdReport, "intr", strconvx.Itoa(int(id)), string(conv.AppendHexBytes(nil, data)))
}

func PinReplyCmd(addr [6]byte, pin string) []byte {
	return Line(CmdPinReply, types.FormatAddr(addr), pin)
}

func SSPReplyCmd(addr [6]byte, accept bool) []byte {
	return Line(CmdSSPReply, types.FormatAddr(addr), word(accept, "yes", "no"))
}

func InitCmd() []byte { return Line(CmdInit) }

// ParseCommand splits a command line into its verb and arguments.
func ParseCommand(line string) (verb string, args []string, err error) {
	toks, err := shlex.Split(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return "", nil, errcode.Wrap(errcode.Protocol, "linkproto.command", err)
	}
	if len(toks) == 0 {
		return "", nil, ErrEmpty
	}
	return strings.ToUpper(toks[0]), toks[1:], nil
}

// HexArg decodes a hex payload argument such as a REGAPP descriptor or a
// REPORT body.
func HexArg(s string) ([]byte, error) {
	b, ok := conv.DecodeHex(s)
	if !ok {
		return nil, &errcode.E{C: errcode.Protocol, Op: "linkproto.hex", Msg: "bad hex payload", Err: ErrSyntax}
	}
	return b, nil
}
