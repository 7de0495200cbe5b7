package config

import (
	"strings"

	"mediaremote-go/types"
	"mediaremote-go/x/fmtx"
)

const (
	maxSPIHz   = 15_000_000
	maxPin     = 47
	maxNameLen = 248
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmtx.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// DEVICE IDENTITY
	// ------------------------------------------------------------

	for _, f := range []struct{ field, v string }{
		{"device.name", cfg.Device.Name},
		{"device.app_name", cfg.Device.AppName},
		{"device.description", cfg.Device.Description},
		{"device.provider", cfg.Device.Provider},
	} {
		field, v := f.field, f.v
		if v == "" {
			return fmtx.Errorf("%s must not be empty", field)
		}
		if len(v) > maxNameLen {
			return fmtx.Errorf("%s longer than %d bytes", field, maxNameLen)
		}
		for i := 0; i < len(v); i++ {
			if v[i] > 0x7F {
				return fmtx.Errorf("%s must contain ASCII characters only", field)
			}
		}
	}
	if err := digits("device.pin", cfg.Device.PIN, 4); err != nil {
		return err
	}
	if err := digits("device.pin16", cfg.Device.PIN16, 16); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// PINS (panel + buttons share one GPIO space and must not collide)
	// ------------------------------------------------------------

	type pinUse struct {
		name string
		n    int
	}
	owner := map[int]string{}
	pins := []pinUse{
		{"panel.sck", cfg.Panel.SCK},
		{"panel.sdo", cfg.Panel.SDO},
		{"panel.cs", cfg.Panel.CS},
		{"panel.dc", cfg.Panel.DC},
		{"panel.rst", cfg.Panel.RST},
		{"buttons.a", cfg.Buttons.A},
		{"buttons.b", cfg.Buttons.B},
	}
	if strings.EqualFold(cfg.Radio.Backend, BackendSerial) {
		pins = append(pins,
			pinUse{"radio.serial.tx", cfg.Radio.Serial.TX},
			pinUse{"radio.serial.rx", cfg.Radio.Serial.RX})
	}
	for _, p := range pins {
		if p.n < 0 || p.n > maxPin {
			return fmtx.Errorf("%s: pin %d out of range 0..%d", p.name, p.n, maxPin)
		}
		if prev, ok := owner[p.n]; ok {
			return fmtx.Errorf("%s: pin %d already used by %s", p.name, p.n, prev)
		}
		owner[p.n] = p.name
	}

	// ------------------------------------------------------------
	// PANEL
	// ------------------------------------------------------------

	if cfg.Panel.SPIHz == 0 || cfg.Panel.SPIHz > maxSPIHz {
		return fmtx.Errorf("panel.spi_hz must be in 1..%d", maxSPIHz)
	}
	if cfg.Panel.MaxTransfer < 0 {
		return fmtx.Errorf("panel.max_transfer must not be negative")
	}

	// ------------------------------------------------------------
	// UI + BUTTONS
	// ------------------------------------------------------------

	if w := cfg.UI.SelectionWrap; w != 6 && w != types.NumActions {
		return fmtx.Errorf("ui.selection_wrap must be 6 or %d, got %d", types.NumActions, w)
	}
	if int(cfg.UI.Initial) >= cfg.UI.SelectionWrap {
		return fmtx.Errorf("ui.initial %d unreachable with selection_wrap %d", int(cfg.UI.Initial), cfg.UI.SelectionWrap)
	}
	if cfg.Buttons.QueueCap < 0 || cfg.Buttons.DebounceMs < 0 {
		return fmtx.Errorf("buttons.queue_cap and buttons.debounce_ms must not be negative")
	}

	// ------------------------------------------------------------
	// CLOCK + HID
	// ------------------------------------------------------------

	if !cfg.Clock.Start.Valid() {
		return fmtx.Errorf("clock.start %d:%d is not a valid time", cfg.Clock.Start.Hour, cfg.Clock.Start.Minute)
	}
	if cfg.Clock.PeriodMs <= 0 {
		return fmtx.Errorf("clock.period_ms must be positive")
	}
	if cfg.HID.GuardMs < 0 {
		return fmtx.Errorf("hid.guard_ms must not be negative")
	}
	if cfg.Monitor.HeartbeatMs < 0 {
		return fmtx.Errorf("monitor.heartbeat_ms must not be negative")
	}

	// ------------------------------------------------------------
	// RADIO
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Radio.Backend) {
	case BackendSim:
	case BackendSerial:
		if cfg.Radio.Serial.Baud <= 0 {
			return fmtx.Errorf("radio.serial.baud must be positive")
		}
	default:
		return fmtx.Errorf("radio.backend %q unknown (want %q or %q)", cfg.Radio.Backend, BackendSim, BackendSerial)
	}
	return nil
}

func digits(field, s string, n int) error {
	if len(s) != n {
		return fmtx.Errorf("%s must be %d digits", field, n)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmtx.Errorf("%s must be %d digits", field, n)
		}
	}
	return nil
}
