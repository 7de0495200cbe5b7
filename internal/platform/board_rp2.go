//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/drivers"

	"mediaremote-go/config"
	"mediaremote-go/errcode"
	"mediaremote-go/internal/halcore"
)

// Board binds the panel to whichever SPI block owns the configured pins.
type Board struct {
	SPI  drivers.SPI
	DC   Level
	RST  Level
	Pins halcore.PinFactory
}

func Open(cfg config.PanelConfig) (*Board, error) {
	sc := machine.SPIConfig{
		Frequency: cfg.SPIHz,
		SCK:       machine.Pin(cfg.SCK),
		SDO:       machine.Pin(cfg.SDO),
		SDI:       machine.NoPin,
		Mode:      0,
	}
	spi := machine.SPI0
	if err := spi.Configure(sc); err != nil {
		spi = machine.SPI1
		if err := spi.Configure(sc); err != nil {
			return nil, errcode.Wrap(errcode.UnknownPin, "platform.spi", err)
		}
	}

	out := func(n int, initial bool) machine.Pin {
		p := machine.Pin(n)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Set(initial)
		return p
	}
	cs := out(cfg.CS, true)
	dc := out(cfg.DC, false)
	rst := out(cfg.RST, true)

	return &Board{
		SPI:  NewSPIDevice(spi, cs),
		DC:   dc,
		RST:  rst,
		Pins: rp2PinFactory{},
	}, nil
}
