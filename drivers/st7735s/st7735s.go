package st7735s

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Errors raised (as panics) on caller misuse.
var (
	ErrChunking     = errors.New("st7735s: size is not a multiple of chunk count")
	ErrShortBuffer  = errors.New("st7735s: buffer shorter than frame size")
	ErrTransferSize = errors.New("st7735s: chunk exceeds transfer ceiling")
	ErrWindow       = errors.New("st7735s: window outside panel")
)

// OutputPin is the subset of a GPIO used for DC and RST.
type OutputPin interface {
	Set(level bool)
}

// Config controls timing and geometry. All fields are optional.
type Config struct {
	// Width/Height default to 128.
	Width  int16
	Height int16
	// XOffset/YOffset shift the full-screen window onto the glass.
	// Both zero selects the default 2 and 1 unless ExactOffset is set.
	// Negative values select zero.
	XOffset int16
	YOffset int16
	// ExactOffset uses XOffset/YOffset as given, zero included.
	ExactOffset bool
	// MaxTransfer bounds one chunk in bytes. Default 3072.
	MaxTransfer int
	// ResetHold is the time RST is held low and then high. Default 100 ms.
	ResetHold time.Duration
	// WakeDelay follows SLPOUT. Default 120 ms.
	WakeDelay time.Duration
	// Sleep replaces time.Sleep, mainly for tests.
	Sleep func(time.Duration)
}

type window struct {
	x, y, w, h uint8
}

// Device is an ST7735S panel on a dedicated SPI device. Chip-select is the
// bus device layer's job; the driver only drives DC and RST.
type Device struct {
	bus drivers.SPI
	dc  OutputPin
	rst OutputPin

	cfg Config

	win      window
	winValid bool

	cmd  [1]byte
	data [4]byte
}

// New creates a driver on an already configured SPI bus (mode 0).
// It does not touch the panel.
func New(bus drivers.SPI, dc, rst OutputPin) *Device {
	d := &Device{bus: bus, dc: dc, rst: rst}
	d.Configure()
	return d
}

// Configure applies optional config. It may be called with no cfg.
func (d *Device) Configure(cfgs ...Config) {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Width <= 0 {
		c.Width = Width
	}
	if c.Height <= 0 {
		c.Height = Height
	}
	if !c.ExactOffset && c.XOffset == 0 && c.YOffset == 0 {
		c.XOffset, c.YOffset = XOffset, YOffset
	}
	if c.XOffset < 0 {
		c.XOffset = 0
	}
	if c.YOffset < 0 {
		c.YOffset = 0
	}
	if c.MaxTransfer <= 0 {
		c.MaxTransfer = MaxTransfer
	}
	if c.ResetHold <= 0 {
		c.ResetHold = 100 * time.Millisecond
	}
	if c.WakeDelay <= 0 {
		c.WakeDelay = 120 * time.Millisecond
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	d.cfg = c
	d.winValid = false
}

// Size returns the panel size in pixels.
func (d *Device) Size() (int16, int16) { return d.cfg.Width, d.cfg.Height }

// Init pulses reset and runs the power-up sequence.
func (d *Device) Init() {
	d.rst.Set(false)
	d.cfg.Sleep(d.cfg.ResetHold)
	d.rst.Set(true)
	d.cfg.Sleep(d.cfg.ResetHold)

	d.SendCommand(SLPOUT)
	d.cfg.Sleep(d.cfg.WakeDelay)

	d.SendCommand(MADCTL)
	d.SendData([]byte{0x00})
	d.SendCommand(COLMOD)
	d.SendData([]byte{colmod16})
	d.SendCommand(GAMSET)
	d.SendData([]byte{Gamma1})
	d.SendCommand(INVOFF)
	d.SendCommand(DISPON)

	d.winValid = false
}

// SendCommand clocks one command byte with DC low.
func (d *Device) SendCommand(cmd byte) {
	d.dc.Set(false)
	d.cmd[0] = cmd
	d.tx(d.cmd[:])
}

// SendData clocks data bytes with DC high.
func (d *Device) SendData(data []byte) {
	if len(data) == 0 {
		return
	}
	d.dc.Set(true)
	d.tx(data)
}

// SetWindow programs CASET/RASET. The end coordinates are x+w and y+h and
// are inclusive, so callers pass the extent minus one.
func (d *Device) SetWindow(x, y, w, h uint8) {
	xe := uint16(x) + uint16(w)
	ye := uint16(y) + uint16(h)

	d.SendCommand(CASET)
	d.data = [4]byte{0, x, byte(xe >> 8), byte(xe)}
	d.SendData(d.data[:])

	d.SendCommand(RASET)
	d.data = [4]byte{0, y, byte(ye >> 8), byte(ye)}
	d.SendData(d.data[:])

	d.win = window{x, y, w, h}
	d.winValid = true
}

// EnsureWindow selects a w by h rectangle at (x, y), skipping the bus
// traffic when it is already the active window.
func (d *Device) EnsureWindow(x, y, w, h uint8) {
	if w == 0 || h == 0 || int16(x)+int16(w) > d.cfg.Width || int16(y)+int16(h) > d.cfg.Height {
		panic(ErrWindow)
	}
	want := window{x, y, w - 1, h - 1}
	if d.winValid && d.win == want {
		return
	}
	d.SetWindow(x, y, w-1, h-1)
}

// SendFrame issues RAMWR and streams buf[:size] in chunks equal transfers.
func (d *Device) SendFrame(buf []byte, size, chunks int) {
	if chunks <= 0 || size%chunks != 0 {
		panic(ErrChunking)
	}
	if size > len(buf) {
		panic(ErrShortBuffer)
	}
	step := size / chunks
	if step > d.cfg.MaxTransfer {
		panic(ErrTransferSize)
	}
	d.SendCommand(RAMWR)
	d.dc.Set(true)
	for off := 0; off < size; off += step {
		d.tx(buf[off : off+step])
	}
}

// FillScreen writes one byte value to every GRAM byte of the visible area,
// windowed through the glass offset. The row buffer is reused per chunk.
func (d *Device) FillScreen(v byte) {
	w, h := d.cfg.Width, d.cfg.Height
	d.SetWindow(uint8(d.cfg.XOffset), uint8(d.cfg.YOffset), uint8(w-1), uint8(h-1))

	row := make([]byte, int(w)*BytesPerPixel)
	for i := range row {
		row[i] = v
	}
	d.SendCommand(RAMWR)
	d.dc.Set(true)
	for r := int16(0); r < h; r++ {
		d.tx(row)
	}
}

func (d *Device) tx(b []byte) {
	if err := d.bus.Tx(b, nil); err != nil {
		panic(err)
	}
}
