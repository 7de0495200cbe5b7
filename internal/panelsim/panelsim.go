// Package panelsim emulates the ST7735S command decoder on the host. It
// implements drivers.SPI and owns the DC and RST lines, so the real driver
// can run unchanged against it.
package panelsim

import (
	"errors"
	"image"
	"image/color"
	"sync"
)

// Controller GRAM geometry (132 x 162, 16 bpp).
const (
	GRAMWidth  = 132
	GRAMHeight = 162
)

const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// ErrInjected is returned by Tx after FailAfter arms a fault.
var ErrInjected = errors.New("panelsim: injected bus fault")

// Op is one decoded command with the data bytes that followed it.
type Op struct {
	Cmd  byte
	Data []byte // capped for RAMWR; see DataLen
	// DataLen counts every data byte, including RAMWR payload.
	DataLen int
	// Transfers counts data-phase Tx calls.
	Transfers int
}

// Line is a GPIO output observed by the emulator.
type Line struct {
	mu    sync.Mutex
	level bool
	onSet func(bool)
}

func (l *Line) Set(level bool) {
	l.mu.Lock()
	prev := l.level
	l.level = level
	fn := l.onSet
	l.mu.Unlock()
	if fn != nil && prev != level {
		fn(level)
	}
}

func (l *Line) Get() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Panel is the emulated controller.
type Panel struct {
	mu sync.Mutex

	dc  Line
	rst Line

	gram [GRAMWidth * GRAMHeight * 2]byte

	xs, xe, ys, ye int
	cx, cy         int
	pending        int // byte offset within the current pixel (0 or 1)
	pixHi          byte

	awake   bool
	on      bool
	madctl  byte
	colmod  byte
	resets  int
	ops     []Op
	failIn  int
	changed uint64
	dirty   func()

	glassX, glassY int
	width, height  int
}

// New returns a 128x128 glass view at offset (2, 1) into GRAM.
func New() *Panel {
	p := &Panel{glassX: 2, glassY: 1, width: 128, height: 128, failIn: -1}
	p.rst.level = true
	p.rst.onSet = func(level bool) {
		if level {
			p.hardReset()
		}
	}
	return p
}

// DC returns the data/command line (low = command).
func (p *Panel) DC() *Line { return &p.dc }

// RST returns the active-low reset line.
func (p *Panel) RST() *Line { return &p.rst }

// OnChange registers a callback fired after GRAM writes.
func (p *Panel) OnChange(fn func()) {
	p.mu.Lock()
	p.dirty = fn
	p.mu.Unlock()
}

// FailAfter makes the n-th following Tx return ErrInjected. n < 0 disarms.
func (p *Panel) FailAfter(n int) {
	p.mu.Lock()
	p.failIn = n
	p.mu.Unlock()
}

func (p *Panel) hardReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
	p.awake, p.on = false, false
	p.madctl, p.colmod = 0, 0
	p.xs, p.xe, p.ys, p.ye = 0, GRAMWidth-1, 0, GRAMHeight-1
}

// Transfer implements drivers.SPI for single bytes.
func (p *Panel) Transfer(b byte) (byte, error) {
	return 0, p.Tx([]byte{b}, nil)
}

// Tx implements drivers.SPI. The DC level is sampled once per transfer.
func (p *Panel) Tx(w, r []byte) error {
	dc := p.dc.Get()

	p.mu.Lock()
	if p.failIn >= 0 {
		if p.failIn == 0 {
			p.failIn = -1
			p.mu.Unlock()
			return ErrInjected
		}
		p.failIn--
	}
	wrote := false
	if !dc {
		for _, b := range w {
			p.command(b)
		}
	} else if len(p.ops) > 0 {
		op := &p.ops[len(p.ops)-1]
		op.Transfers++
		for _, b := range w {
			if p.data(op, b) {
				wrote = true
			}
		}
	}
	for i := range r {
		r[i] = 0
	}
	fn := p.dirty
	if wrote {
		p.changed++
	}
	p.mu.Unlock()

	if wrote && fn != nil {
		fn()
	}
	return nil
}

func (p *Panel) command(b byte) {
	p.ops = append(p.ops, Op{Cmd: b})
	switch b {
	case cmdSWRESET:
		p.awake, p.on = false, false
	case cmdSLPOUT:
		p.awake = true
	case cmdDISPON:
		p.on = true
	case cmdRAMWR:
		p.cx, p.cy = p.xs, p.ys
		p.pending = 0
	}
}

// data consumes one data byte for op and reports whether GRAM changed.
func (p *Panel) data(op *Op, b byte) bool {
	n := op.DataLen
	op.DataLen++
	if op.Cmd != cmdRAMWR && len(op.Data) < 16 {
		op.Data = append(op.Data, b)
	}
	switch op.Cmd {
	case cmdCASET, cmdRASET:
		if n >= 4 {
			return false
		}
		d := op.Data
		if len(d) == 2 || len(d) == 4 {
			v := int(d[len(d)-2])<<8 | int(d[len(d)-1])
			switch {
			case op.Cmd == cmdCASET && len(d) == 2:
				p.xs = v
			case op.Cmd == cmdCASET:
				p.xe = v
			case len(d) == 2:
				p.ys = v
			default:
				p.ye = v
			}
		}
	case cmdMADCTL:
		p.madctl = b
	case cmdCOLMOD:
		p.colmod = b
	case cmdRAMWR:
		if p.pending == 0 {
			p.pixHi = b
			p.pending = 1
			return false
		}
		p.pending = 0
		if p.cx < GRAMWidth && p.cy < GRAMHeight {
			i := (p.cy*GRAMWidth + p.cx) * 2
			p.gram[i] = p.pixHi
			p.gram[i+1] = b
		}
		p.cx++
		if p.cx > p.xe {
			p.cx = p.xs
			p.cy++
			if p.cy > p.ye {
				p.cy = p.ys
			}
		}
		return true
	}
	return false
}

// Ops returns a copy of the decoded command log.
func (p *Panel) Ops() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Op, len(p.ops))
	copy(out, p.ops)
	return out
}

// ClearOps drops the command log.
func (p *Panel) ClearOps() {
	p.mu.Lock()
	p.ops = p.ops[:0]
	p.mu.Unlock()
}

// State reports the power and format registers.
func (p *Panel) State() (awake, on bool, madctl, colmod byte, resets int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awake, p.on, p.madctl, p.colmod, p.resets
}

// Pixel returns the raw RGB565 word at glass coordinates.
func (p *Panel) Pixel(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixelLocked(x+p.glassX, y+p.glassY)
}

// GRAMPixel returns the raw RGB565 word at controller coordinates.
func (p *Panel) GRAMPixel(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixelLocked(x, y)
}

func (p *Panel) pixelLocked(x, y int) uint16 {
	if x < 0 || y < 0 || x >= GRAMWidth || y >= GRAMHeight {
		return 0
	}
	i := (y*GRAMWidth + x) * 2
	return uint16(p.gram[i])<<8 | uint16(p.gram[i+1])
}

// Generation increments on every transfer that touched GRAM.
func (p *Panel) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changed
}

// Snapshot renders the glass view; a sleeping or blank panel is black.
func (p *Panel) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	if !p.awake || !p.on {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xFF
		}
		return img
	}
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetRGBA(x, y, RGBA565(p.pixelLocked(x+p.glassX, y+p.glassY)))
		}
	}
	return img
}

// RGBA565 expands an RGB565 word to 8-bit channels.
func RGBA565(c uint16) color.RGBA {
	r := uint8(c>>11) << 3
	g := uint8(c>>5) << 2
	b := uint8(c) << 3
	return color.RGBA{R: r | r>>5, G: g | g>>6, B: b | b>>5, A: 0xFF}
}
