package assets

import (
	"image/color"

	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/tinyfont"
)

// Palette used by the built-in renderer.
var (
	Foreground = color.RGBA{R: 0xFF, G: 0xB0, B: 0x00, A: 0xFF}
	Background = color.RGBA{A: 0xFF}
	Accent     = color.RGBA{R: 0x30, G: 0xC0, B: 0xFF, A: 0xFF}
)

// Picopixel digits are 3x5 cells on a 4-high baseline; each cell becomes a
// 7x8 block so a digit fills most of the 25x42 slot.
const (
	cellW    = 7
	cellH    = 8
	baseline = 4
)

// canvas adapts an RGB565BE image to drivers.Displayer, drawing each
// logical pixel as an sx by sy block at an origin.
type canvas struct {
	img    pixel.Image[pixel.RGB565BE]
	w, h   int
	sx, sy int
	ox, oy int
}

func newCanvas(w, h int, bg color.RGBA) *canvas {
	c := &canvas{img: pixel.NewImage[pixel.RGB565BE](w, h), w: w, h: h, sx: 1, sy: 1}
	c.img.FillSolidColor(pixel.NewColor[pixel.RGB565BE](bg.R, bg.G, bg.B))
	return c
}

func (c *canvas) Size() (x, y int16) { return int16(c.w / c.sx), int16(c.h / c.sy) }

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	c.fillRect(c.ox+int(x)*c.sx, c.oy+int(y)*c.sy, c.sx, c.sy, col)
}

func (c *canvas) Display() error { return nil }

func (c *canvas) fillRect(x, y, w, h int, col color.RGBA) {
	px := pixel.NewColor[pixel.RGB565BE](col.R, col.G, col.B)
	for yy := y; yy < y+h; yy++ {
		if yy < 0 || yy >= c.h {
			continue
		}
		for xx := x; xx < x+w; xx++ {
			if xx < 0 || xx >= c.w {
				continue
			}
			c.img.Set(xx, yy, px)
		}
	}
}

// triangle fills an isosceles triangle inside the w by h box at (x, y)
// pointing right (dir > 0) or left (dir < 0).
func (c *canvas) triangle(x, y, w, h, dir int, col color.RGBA) {
	for i := 0; i < w; i++ {
		col0 := x + i
		if dir < 0 {
			col0 = x + w - 1 - i
		}
		inset := i * h / (2 * w)
		c.fillRect(col0, y+inset, 1, h-2*inset, col)
	}
}

// cross draws both diagonals of the n by n box at (x, y), t pixels thick.
func (c *canvas) cross(x, y, n, t int, col color.RGBA) {
	for i := 0; i < n; i++ {
		c.fillRect(x+i, y+i, t, t, col)
		c.fillRect(x+n-1-i, y+i, t, t, col)
	}
}

func (c *canvas) bytes() []byte {
	return append([]byte(nil), c.img.RawBuffer()...)
}

// Render builds the catalog from the Picopixel font and vector icon shapes.
func Render() *Catalog {
	c := &Catalog{}
	for i := 0; i < NumDigits; i++ {
		c.digits[i] = renderGlyph(DigitW, DigitH, 2, 1, rune('0'+i))
	}
	c.colon = renderGlyph(ColonW, ColonH, 1, 1, ':')
	for i := 0; i < NumIcons; i++ {
		c.icons[i] = renderIcon(i)
	}
	return c
}

func renderGlyph(w, h, ox, oy int, r rune) []byte {
	cv := newCanvas(w, h, Background)
	cv.sx, cv.sy = cellW, cellH
	cv.ox, cv.oy = ox, oy
	tinyfont.DrawChar(cv, &tinyfont.Picopixel, 0, baseline, r, Foreground)
	return cv.bytes()
}

func renderIcon(i int) []byte {
	cv := newCanvas(IconW, IconH, Background)
	fg := Foreground
	switch i {
	case 0: // next
		cv.triangle(3, 5, 10, 20, 1, fg)
		cv.triangle(12, 5, 10, 20, 1, fg)
		cv.fillRect(23, 5, 4, 20, fg)
	case 1: // prev
		cv.fillRect(3, 5, 4, 20, fg)
		cv.triangle(8, 5, 10, 20, -1, fg)
		cv.triangle(17, 5, 10, 20, -1, fg)
	case 2: // stop
		cv.fillRect(7, 7, 16, 16, fg)
	case 3: // play/pause
		cv.triangle(3, 5, 12, 20, 1, fg)
		cv.fillRect(18, 5, 3, 20, fg)
		cv.fillRect(23, 5, 3, 20, fg)
	case 4, 5, 6: // speaker family
		cv.fillRect(2, 11, 5, 8, fg)
		cv.triangle(6, 5, 9, 20, -1, fg)
		switch i {
		case 4:
			cv.cross(18, 9, 11, 2, Accent)
		case 5:
			cv.fillRect(18, 13, 11, 3, Accent)
			cv.fillRect(22, 9, 3, 11, Accent)
		case 6:
			cv.fillRect(18, 13, 11, 3, Accent)
		}
	}
	return cv.bytes()
}
