package display

import (
	"sync"
	"testing"
	"time"

	"mediaremote-go/assets"
	"mediaremote-go/drivers/st7735s"
	"mediaremote-go/internal/panelsim"
	"mediaremote-go/types"
)

func newRig(t *testing.T) (*Composer, *panelsim.Panel) {
	t.Helper()
	p := panelsim.New()
	d := st7735s.New(p, p.DC(), p.RST())
	d.Configure(st7735s.Config{Sleep: func(time.Duration) {}})
	d.Init()
	p.ClearOps()
	return NewComposer(d, assets.Render()), p
}

type window struct{ xs, xe, ys, ye int }

// frames pairs each RAMWR with the window programmed before it.
func frames(t *testing.T, ops []panelsim.Op) ([]window, []panelsim.Op) {
	t.Helper()
	var wins []window
	var rams []panelsim.Op
	var cur window
	for _, op := range ops {
		switch op.Cmd {
		case st7735s.CASET:
			cur.xs = int(op.Data[0])<<8 | int(op.Data[1])
			cur.xe = int(op.Data[2])<<8 | int(op.Data[3])
		case st7735s.RASET:
			cur.ys = int(op.Data[0])<<8 | int(op.Data[1])
			cur.ye = int(op.Data[2])<<8 | int(op.Data[3])
		case st7735s.RAMWR:
			wins = append(wins, cur)
			rams = append(rams, op)
		}
	}
	return wins, rams
}

func TestDrawClockLayout(t *testing.T) {
	c, p := newRig(t)
	c.DrawClock(types.ClockTime{Hour: 5, Minute: 40})

	wins, rams := frames(t, p.Ops())
	if len(rams) != 5 {
		t.Fatalf("got %d frames, want 5", len(rams))
	}
	xs := []int{11, 36, 61, 70, 95}
	ws := []int{25, 25, 9, 25, 25}
	chunks := []int{10, 10, 4, 10, 10}
	for i := range xs {
		w := wins[i]
		if w.xs != xs[i] || w.xe-w.xs+1 != ws[i] || w.ys != 44 || w.ye-w.ys+1 != 42 {
			t.Fatalf("slot %d window %+v", i, w)
		}
		if rams[i].DataLen != ws[i]*42*2 || rams[i].Transfers != chunks[i] {
			t.Fatalf("slot %d frame %+v", i, rams[i])
		}
	}
}

func TestDrawClockUsesDigitBitmaps(t *testing.T) {
	c, p := newRig(t)
	cat := assets.Render()
	c.DrawClock(types.ClockTime{Hour: 5, Minute: 40})

	// Slot 1 holds the "5".
	bm := cat.Digit(5)
	for _, pt := range [][2]int{{0, 0}, {12, 20}, {5, 9}} {
		i := (pt[1]*assets.DigitW + pt[0]) * 2
		want := uint16(bm[i])<<8 | uint16(bm[i+1])
		if got := p.GRAMPixel(36+pt[0], 44+pt[1]); got != want {
			t.Fatalf("pixel %v = %#04x, want %#04x", pt, got, want)
		}
	}
}

func TestDrawIconWindow(t *testing.T) {
	c, p := newRig(t)
	c.DrawIcon(3)

	wins, rams := frames(t, p.Ops())
	if len(rams) != 1 {
		t.Fatalf("frames = %d", len(rams))
	}
	if w := wins[0]; w != (window{49, 78, 92, 121}) {
		t.Fatalf("icon window %+v", w)
	}
	if rams[0].DataLen != 1800 || rams[0].Transfers != 8 {
		t.Fatalf("icon frame %+v", rams[0])
	}

	// Same icon again only needs RAMWR.
	p.ClearOps()
	c.DrawIcon(4)
	if ops := p.Ops(); len(ops) != 1 || ops[0].Cmd != st7735s.RAMWR {
		t.Fatalf("expected cached window, got %+v", ops)
	}
}

func TestSplash(t *testing.T) {
	c, p := newRig(t)
	c.Splash()
	if p.Pixel(64, 64) != 0x7D7D {
		t.Fatalf("splash pixel = %#04x", p.Pixel(64, 64))
	}
}

func TestContextSerialisesDraws(t *testing.T) {
	c, p := newRig(t)
	ctx := NewContext(c)

	const n = 40
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tm := types.ClockTime{Hour: 23, Minute: 30}
		for i := 0; i < n; i++ {
			ctx.Do(func(c *Composer) { c.DrawClock(tm) })
			tm = tm.Next()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			ctx.Do(func(c *Composer) { c.DrawIcon(i % assets.NumIcons) })
		}
	}()
	wg.Wait()

	if got := ctx.Draws(); got != 2*n {
		t.Fatalf("Draws = %d, want %d", got, 2*n)
	}
	wins, rams := frames(t, p.Ops())
	if len(rams) != n*5+n {
		t.Fatalf("frames = %d", len(rams))
	}
	for i, op := range rams {
		w := wins[i]
		area := (w.xe - w.xs + 1) * (w.ye - w.ys + 1) * 2
		if op.DataLen != area {
			t.Fatalf("frame %d wrote %d bytes into a %d byte window: torn draw", i, op.DataLen, area)
		}
	}
}
