// Package display composes the remote's screen: the clock row and the
// selected action icon. The Composer never locks; every caller goes through
// Context.Do, which owns the display-bus mutex.
package display

import (
	"sync"
	"sync/atomic"

	"mediaremote-go/assets"
	"mediaremote-go/types"
)

// Screen layout in controller coordinates.
const (
	IconX      = 49
	IconY      = 92
	IconChunks = 8 // 225 bytes each

	ClockX      = 11
	ClockY      = 44
	DigitChunks = 10 // 210 bytes each
	ColonChunks = 4  // 189 bytes each

	// SplashFill is the byte written to all of GRAM at boot.
	SplashFill = 0x7D
)

// Panel is the subset of the ST7735S driver used for composition.
type Panel interface {
	EnsureWindow(x, y, w, h uint8)
	SendFrame(buf []byte, size, chunks int)
	FillScreen(v byte)
}

// Glyphs supplies bitmaps by index.
type Glyphs interface {
	Digit(i int) []byte
	Colon() []byte
	Icon(i int) []byte
}

// Slot is one clock glyph position.
type Slot struct {
	X, W   uint8
	Chunks int
}

// ClockSlots are the five glyph cells h1 h0 : m1 m0.
var ClockSlots = [5]Slot{
	{ClockX, assets.DigitW, DigitChunks},
	{ClockX + assets.DigitW, assets.DigitW, DigitChunks},
	{ClockX + 2*assets.DigitW, assets.ColonW, ColonChunks},
	{ClockX + 2*assets.DigitW + assets.ColonW, assets.DigitW, DigitChunks},
	{ClockX + 3*assets.DigitW + assets.ColonW, assets.DigitW, DigitChunks},
}

// Composer turns icon and clock requests into windowed frame pushes.
type Composer struct {
	panel  Panel
	glyphs Glyphs
}

func NewComposer(p Panel, g Glyphs) *Composer {
	return &Composer{panel: p, glyphs: g}
}

// DrawIcon paints icon i (an action index) at the icon anchor.
func (c *Composer) DrawIcon(i int) {
	c.panel.EnsureWindow(IconX, IconY, assets.IconW, assets.IconH)
	c.panel.SendFrame(c.glyphs.Icon(i), assets.IconSize, IconChunks)
}

// DrawClock paints HH:MM at the clock anchor.
func (c *Composer) DrawClock(t types.ClockTime) {
	digits := t.Digits()
	di := 0
	for i, s := range ClockSlots {
		c.panel.EnsureWindow(s.X, ClockY, s.W, assets.DigitH)
		if i == 2 {
			c.panel.SendFrame(c.glyphs.Colon(), assets.ColonSize, s.Chunks)
			continue
		}
		c.panel.SendFrame(c.glyphs.Digit(int(digits[di])), assets.DigitSize, s.Chunks)
		di++
	}
}

// Splash fills the whole glass with the boot pattern.
func (c *Composer) Splash() {
	c.panel.FillScreen(SplashFill)
}

// Context serialises all access to the panel bus. It is the only path to a
// Composer once tasks are running.
type Context struct {
	mu    sync.Mutex
	comp  *Composer
	draws uint32
}

func NewContext(c *Composer) *Context { return &Context{comp: c} }

// Do runs fn with exclusive use of the panel.
func (d *Context) Do(fn func(c *Composer)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.comp)
	atomic.AddUint32(&d.draws, 1)
}

// Draws counts completed Do calls.
func (d *Context) Draws() uint32 { return atomic.LoadUint32(&d.draws) }
