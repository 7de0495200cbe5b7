// Package assets holds the read-only bitmaps drawn on the panel: ten clock
// digits, the colon separator and one icon per media action. Every bitmap is
// RGB565 with the high byte first, row-major, exactly w*h*2 bytes.
package assets

import (
	"errors"

	"mediaremote-go/types"
)

// Glyph geometry.
const (
	DigitW = 25
	DigitH = 42
	ColonW = 9
	ColonH = 42
	IconW  = 30
	IconH  = 30

	DigitSize = DigitW * DigitH * 2 // 2100
	ColonSize = ColonW * ColonH * 2 // 756
	IconSize  = IconW * IconH * 2   // 1800

	NumDigits = 10
	NumIcons  = types.NumActions
)

var (
	ErrIndex   = errors.New("assets: index out of range")
	ErrMissing = errors.New("assets: catalog incomplete")
)

// Catalog gives indexed access to every bitmap.
type Catalog struct {
	digits [NumDigits][]byte
	colon  []byte
	icons  [NumIcons][]byte
}

// Digit returns the bitmap for decimal digit i. Panics if i is not 0..9.
func (c *Catalog) Digit(i int) []byte {
	if i < 0 || i >= NumDigits {
		panic(ErrIndex)
	}
	return c.digits[i]
}

// Colon returns the clock separator bitmap.
func (c *Catalog) Colon() []byte { return c.colon }

// Icon returns the bitmap for action index i. Panics if i is not 0..6.
func (c *Catalog) Icon(i int) []byte {
	if i < 0 || i >= NumIcons {
		panic(ErrIndex)
	}
	return c.icons[i]
}

// Complete reports ErrMissing if any slot is absent or mis-sized.
func (c *Catalog) Complete() error {
	for _, d := range c.digits {
		if len(d) != DigitSize {
			return ErrMissing
		}
	}
	if len(c.colon) != ColonSize {
		return ErrMissing
	}
	for _, ic := range c.icons {
		if len(ic) != IconSize {
			return ErrMissing
		}
	}
	return nil
}
