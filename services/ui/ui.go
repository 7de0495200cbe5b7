// Package ui owns the selection state and turns button presses into icon
// redraws and HID key events.
package ui

import (
	"context"
	"sync/atomic"

	"mediaremote-go/bus"
	"mediaremote-go/display"
	"mediaremote-go/errcode"
	"mediaremote-go/hid"
	"mediaremote-go/services/input"
	"mediaremote-go/types"
)

var (
	TopicSelection = bus.T("ui", "selection")
	TopicReport    = bus.T("hid", "report")
)

// Sender emits one consumer-control key event.
type Sender interface {
	SendMediaReport(ctx context.Context, mask uint8) error
}

type Config struct {
	// Wrap is the selection modulus, 6 or 7. Default 7.
	Wrap    int
	Initial types.Action
}

// Controller implements input.Handler. Selection is mutated only on the
// input handler task.
type Controller struct {
	disp *display.Context
	hid  Sender
	conn *bus.Connection
	wrap int

	sel   atomic.Uint32
	fired atomic.Uint32
}

func New(disp *display.Context, s Sender, conn *bus.Connection, cfg Config) *Controller {
	if disp == nil {
		panic("ui: nil display context")
	}
	if cfg.Wrap < 1 || cfg.Wrap > types.NumActions {
		cfg.Wrap = types.NumActions
	}
	c := &Controller{disp: disp, hid: s, conn: conn, wrap: cfg.Wrap}
	if int(cfg.Initial) < cfg.Wrap {
		c.sel.Store(uint32(cfg.Initial))
	}
	return c
}

// Selection returns the current action.
func (c *Controller) Selection() types.Action { return types.Action(c.sel.Load()) }

// OnButton dispatches a press: A advances the selection, B fires it.
func (c *Controller) OnButton(ctx context.Context, b input.Button) {
	switch b {
	case input.ButtonA:
		c.Advance()
	case input.ButtonB:
		_ = c.Fire(ctx)
	default:
		println("[ui] unknown button:", uint8(b))
	}
}

// Advance moves to the next action and redraws the icon.
func (c *Controller) Advance() types.Action {
	next := (int(c.sel.Load()) + 1) % c.wrap
	c.sel.Store(uint32(next))
	c.Redraw()
	c.publishSelection()
	return types.Action(next)
}

// Redraw paints the current selection's icon.
func (c *Controller) Redraw() {
	i := int(c.sel.Load())
	c.disp.Do(func(comp *display.Composer) { comp.DrawIcon(i) })
}

// Fire sends the key event for the current selection. The display is not
// held while the report is in flight.
func (c *Controller) Fire(ctx context.Context) error {
	a := c.Selection()
	mask := hid.Mask(a)
	var err error
	if c.hid == nil {
		err = &errcode.E{C: errcode.NotConnected, Op: "ui.fire", Msg: "no endpoint"}
	} else {
		err = c.hid.SendMediaReport(ctx, mask)
	}
	st := types.ReportStatus{Mask: mask}
	if err != nil {
		st.Error = string(errcode.Of(err))
		println("[ui] report", a.String(), "dropped:", err.Error())
	} else {
		c.fired.Add(1)
		println("[ui] sent", a.String())
	}
	if c.conn != nil {
		c.conn.Publish(c.conn.NewMessage(TopicReport, st, false))
	}
	return err
}

// Fired counts key events that reached the transport.
func (c *Controller) Fired() uint32 { return c.fired.Load() }

func (c *Controller) publishSelection() {
	if c.conn == nil {
		return
	}
	a := c.Selection()
	c.conn.Publish(c.conn.NewMessage(TopicSelection, types.SelectionStatus{Index: int(a), Action: a}, true))
}
