//go:build !rp2040 && !rp2350 && cgo

package simwindow

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const panelW, panelH = 128, 128

var bindings = []struct {
	key ebiten.Key
	out Key
}{
	{ebiten.KeyA, KeyA},
	{ebiten.KeyArrowRight, KeyA},
	{ebiten.KeyB, KeyB},
	{ebiten.KeyEnter, KeyB},
	{ebiten.KeySpace, KeyB},
	{ebiten.KeyC, KeyConnect},
	{ebiten.KeyD, KeyDisconnect},
	{ebiten.KeyS, KeySnapshot},
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	if opts.Scale <= 0 {
		opts.Scale = 4
	}
	if opts.Title == "" {
		opts.Title = "Media remote"
	}
	g := &game{opts: opts, gen: ^uint64(0)}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(panelW*opts.Scale, panelH*opts.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type game struct {
	opts Options
	img  *ebiten.Image
	gen  uint64
}

func (g *game) Update() error {
	if g.opts.OnKey == nil {
		return nil
	}
	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			g.opts.OnKey(b.out)
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(panelW, panelH)
	}
	if gen := g.opts.Panel.Generation(); gen != g.gen {
		g.gen = gen
		g.img.WritePixels(g.opts.Panel.Snapshot().Pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return panelW, panelH
}
