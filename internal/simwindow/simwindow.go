// Package simwindow shows the emulated panel on the desktop and turns key
// presses into button and host events.
package simwindow

import (
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"mediaremote-go/internal/panelsim"
)

// Key is a simulator control.
type Key uint8

const (
	KeyA          Key = iota // cycle selection
	KeyB                     // send the selected action
	KeyConnect               // host connects
	KeyDisconnect            // host disconnects
	KeySnapshot              // save a PNG of the panel
)

var keyNames = [...]string{"A", "B", "connect", "disconnect", "snapshot"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// Options configure Run.
type Options struct {
	Title string
	// Scale multiplies the 128x128 panel. Default 4.
	Scale int
	Panel *panelsim.Panel
	// OnKey runs on the window goroutine and must not block.
	OnKey func(Key)
}

// Scaled returns the panel image enlarged by an integer factor with
// nearest-neighbour sampling so pixels stay sharp.
func Scaled(p *panelsim.Panel, scale int) *image.RGBA {
	src := p.Snapshot()
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// WritePNG saves a scaled snapshot of the panel to path.
func WritePNG(p *panelsim.Panel, scale int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, Scaled(p, scale)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
