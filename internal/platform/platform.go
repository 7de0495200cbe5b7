// Package platform supplies the board resources the remote needs: the
// panel's SPI device with its DC and RST lines, the button pins and the
// radio coprocessor's serial port. rp2040/rp2350 builds bind real hardware;
// every other build gets host fakes and an emulated panel.
package platform

import (
	"sync"

	"tinygo.org/x/drivers"
)

// Level is any output line (chip-select, DC, RST).
type Level interface {
	Set(level bool)
}

// SPIDevice is one chip on an SPI bus. Chip-select is active low and held
// for the whole of each Tx.
type SPIDevice struct {
	mu  sync.Mutex
	bus drivers.SPI
	cs  Level
}

// NewSPIDevice wraps bus with a chip-select line, leaving it deasserted.
func NewSPIDevice(bus drivers.SPI, cs Level) *SPIDevice {
	cs.Set(true)
	return &SPIDevice{bus: bus, cs: cs}
}

func (d *SPIDevice) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cs.Set(false)
	err := d.bus.Tx(w, r)
	d.cs.Set(true)
	return err
}

func (d *SPIDevice) Transfer(b byte) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cs.Set(false)
	v, err := d.bus.Transfer(b)
	d.cs.Set(true)
	return v, err
}
