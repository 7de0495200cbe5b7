package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaremote-go/errcode"
	"mediaremote-go/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Device.Name != "HID Media Controller" || cfg.Device.PIN != "1234" {
		t.Fatalf("device %+v", cfg.Device)
	}
	if cfg.Clock.Start != (types.ClockTime{Hour: 5, Minute: 40}) || cfg.Clock.PeriodMs != 60000 {
		t.Fatalf("clock %+v", cfg.Clock)
	}
	if cfg.UI.SelectionWrap != 7 || cfg.Buttons.QueueCap != 10 || cfg.Panel.SPIHz != 10_000_000 {
		t.Fatalf("ui %+v buttons %+v", cfg.UI, cfg.Buttons)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("ui:\n  selection_wrap: 6\nclock:\n  start: {hour: 23, minute: 59}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.SelectionWrap != 6 || cfg.Clock.Start.Hour != 23 {
		t.Fatalf("overlay lost: %+v %+v", cfg.UI, cfg.Clock)
	}
	if cfg.Clock.PeriodMs != 60000 || cfg.Device.PIN16 != "0000000000000000" {
		t.Fatal("untouched keys must keep defaults")
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("ui:\n  selction_wrap: 6\n"))
	if errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v", err)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *Default() {
		t.Fatal("empty document changed the defaults")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.yaml")
	if err := os.WriteFile(path, []byte("radio:\n  backend: serial\n  serial:\n    device: /dev/ttyUSB0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Radio.Backend != BackendSerial || cfg.Radio.Serial.Device != "/dev/ttyUSB0" || cfg.Radio.Serial.Baud != 115200 {
		t.Fatalf("radio %+v", cfg.Radio)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("missing file: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"wrap", func(c *Config) { c.UI.SelectionWrap = 5 }, "selection_wrap"},
		{"initial", func(c *Config) { c.UI.SelectionWrap = 6; c.UI.Initial = types.ActionVolumeDown }, "unreachable"},
		{"pin length", func(c *Config) { c.Device.PIN = "12345" }, "device.pin"},
		{"pin16 digits", func(c *Config) { c.Device.PIN16 = "000000000000000x" }, "device.pin16"},
		{"name ascii", func(c *Config) { c.Device.Name = "Télécommande" }, "ASCII"},
		{"pin clash", func(c *Config) { c.Buttons.B = c.Panel.DC }, "already used by panel.dc"},
		{"spi", func(c *Config) { c.Panel.SPIHz = 20_000_000 }, "spi_hz"},
		{"clock", func(c *Config) { c.Clock.Start = types.ClockTime{Hour: 24} }, "clock.start"},
		{"period", func(c *Config) { c.Clock.PeriodMs = 0 }, "period_ms"},
		{"backend", func(c *Config) { c.Radio.Backend = "ble" }, "radio.backend"},
		{"uart clash", func(c *Config) { c.Radio.Backend = BackendSerial; c.Radio.Serial.TX = c.Buttons.A }, "radio.serial.tx"},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		before := *cfg
		err := Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want mention of %q", tc.name, err, tc.want)
		}
		if *cfg != before {
			t.Fatalf("%s: Validate mutated the config", tc.name)
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.HID.GuardMs = 10
	cfg.Panel.MaxTransfer = 100000
	cfg.Buttons.QueueCap = 0
	cfg.Radio.Backend = "SIM"
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	Normalize(cfg)
	if cfg.HID.GuardMs != 50 {
		t.Fatalf("guard %d, want floor 50", cfg.HID.GuardMs)
	}
	if cfg.Panel.MaxTransfer != 4096 || cfg.Buttons.QueueCap != 10 || cfg.Radio.Backend != BackendSim {
		t.Fatalf("normalized %+v %+v %q", cfg.Panel, cfg.Buttons, cfg.Radio.Backend)
	}
}
