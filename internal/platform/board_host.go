//go:build !rp2040 && !rp2350

package platform

import (
	"tinygo.org/x/drivers"

	"mediaremote-go/config"
	"mediaremote-go/internal/halcore"
	"mediaremote-go/internal/panelsim"
)

// Board is the host rendition: an emulated panel behind a fake chip-select
// and fake button pins.
type Board struct {
	SPI  drivers.SPI
	DC   Level
	RST  Level
	Pins halcore.PinFactory

	// Emulator decodes everything written to the panel.
	Emulator *panelsim.Panel
	// Fake exposes the pins so callers can press buttons.
	Fake *HostPinFactory
}

func Open(cfg config.PanelConfig) (*Board, error) {
	emu := panelsim.New()
	pins := &HostPinFactory{}
	cs := pins.Pin(cfg.CS)
	_ = cs.ConfigureOutput(true)
	return &Board{
		SPI:      NewSPIDevice(emu, cs),
		DC:       emu.DC(),
		RST:      emu.RST(),
		Pins:     pins,
		Emulator: emu,
		Fake:     pins,
	}, nil
}
