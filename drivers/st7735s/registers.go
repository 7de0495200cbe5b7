// Package st7735s drives the Sitronix ST7735S TFT controller over a 4-wire
// SPI link (SCK, MOSI, CS, DC) plus an active-low reset line.
package st7735s

// Command opcodes used by this driver (datasheet section 10.1).
const (
	SWRESET = 0x01
	SLPIN   = 0x10
	SLPOUT  = 0x11
	INVOFF  = 0x20
	INVON   = 0x21
	GAMSET  = 0x26
	DISPOFF = 0x28
	DISPON  = 0x29
	CASET   = 0x2A
	RASET   = 0x2B
	RAMWR   = 0x2C
	MADCTL  = 0x36
	COLMOD  = 0x3A
)

// MADCTL bits.
const (
	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlML  = 0x10
	madctlBGR = 0x08
)

// COLMOD values.
const (
	ColorRGB444 = 0x03
	ColorRGB565 = 0x05
	ColorRGB666 = 0x06

	// colmod16 selects 16 bpp on both the RGB and MCU interfaces.
	colmod16 = 0x55
)

// Gamma curve selectors for GAMSET.
const (
	Gamma1 = 0x01
	Gamma2 = 0x02
	Gamma3 = 0x04
	Gamma4 = 0x08
)

// Panel geometry and glass alignment for the 128x128 module.
const (
	Width   = 128
	Height  = 128
	XOffset = 2
	YOffset = 1

	BytesPerPixel = 2

	// MaxTransfer is the default DMA ceiling for one bus transfer.
	MaxTransfer = 3072
)
