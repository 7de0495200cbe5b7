// Package config is the remote's device configuration: pins, panel, radio,
// UI and clock settings. Load/Parse decode YAML over the embedded defaults,
// Validate checks without mutating, Normalize clamps and fills in.
package config

import "mediaremote-go/types"

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Panel   PanelConfig   `yaml:"panel"`
	Buttons ButtonsConfig `yaml:"buttons"`
	UI      UIConfig      `yaml:"ui"`
	Clock   ClockConfig   `yaml:"clock"`
	HID     HIDConfig     `yaml:"hid"`
	Radio   RadioConfig   `yaml:"radio"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name        string `yaml:"name"`
	AppName     string `yaml:"app_name"`
	Description string `yaml:"description"`
	Provider    string `yaml:"provider"`
	PIN         string `yaml:"pin"`    // answered to 4-digit requests
	PIN16       string `yaml:"pin16"` // answered to 16-digit requests
}

// ---- PANEL ----

type PanelConfig struct {
	SPIHz       uint32 `yaml:"spi_hz"`
	XOffset     uint8  `yaml:"x_offset"`
	YOffset     uint8  `yaml:"y_offset"`
	MaxTransfer int    `yaml:"max_transfer"`
	SCK         int    `yaml:"sck"`
	SDO         int    `yaml:"sdo"`
	CS          int    `yaml:"cs"`
	DC          int    `yaml:"dc"`
	RST         int    `yaml:"rst"`
}

// ---- BUTTONS ----

type ButtonsConfig struct {
	A          int `yaml:"a"`
	B          int `yaml:"b"`
	QueueCap   int `yaml:"queue_cap"`
	DebounceMs int `yaml:"debounce_ms"`
}

// ---- UI ----

type UIConfig struct {
	SelectionWrap int          `yaml:"selection_wrap"` // 6 or 7
	Initial       types.Action `yaml:"initial"`
	IconAtBoot    bool         `yaml:"icon_at_boot"`
}

// ---- CLOCK ----

type ClockConfig struct {
	Start    types.ClockTime `yaml:"start"`
	PeriodMs int             `yaml:"period_ms"`
}

// ---- HID ----

type HIDConfig struct {
	GuardMs int `yaml:"guard_ms"`
}

// ---- RADIO ----

const (
	BackendSim    = "sim"
	BackendSerial = "serial"
)

type RadioConfig struct {
	Backend string       `yaml:"backend"`
	Serial  SerialConfig `yaml:"serial"`
}

// SerialConfig addresses the radio coprocessor. Device names a host tty;
// TX/RX are the MCU UART pins.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	TX     int    `yaml:"tx"`
	RX     int    `yaml:"rx"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	HeartbeatMs int `yaml:"heartbeat_ms"` // 0 disables
}
