// Package app wires the remote together. New validates the configuration
// and builds every component; Start boots the panel and launches the tasks.
package app

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"mediaremote-go/assets"
	"mediaremote-go/bus"
	"mediaremote-go/config"
	"mediaremote-go/display"
	"mediaremote-go/drivers/st7735s"
	"mediaremote-go/errcode"
	"mediaremote-go/hid"
	"mediaremote-go/internal/halcore"
	"mediaremote-go/radio"
	"mediaremote-go/radio/sim"
	"mediaremote-go/radio/uartlink"
	"mediaremote-go/services/clock"
	"mediaremote-go/services/input"
	"mediaremote-go/services/monitor"
	"mediaremote-go/services/ui"
)

// Hardware is what the board provides.
type Hardware struct {
	SPI  drivers.SPI
	DC   st7735s.OutputPin
	RST  st7735s.OutputPin
	Pins halcore.PinFactory

	// OpenSerial opens the radio coprocessor link. Needed only for the
	// serial backend.
	OpenSerial func(config.SerialConfig) (halcore.SerialPort, error)

	// Assets is a packed blob; nil renders the glyphs at boot.
	Assets []byte
	// Sleep replaces time.Sleep in panel timing.
	Sleep func(time.Duration)
	// Log receives monitor lines. Default println.
	Log func(string)
}

// App holds the running components.
type App struct {
	Cfg *config.Config
	Bus *bus.Bus

	Panel    *st7735s.Device
	Display  *display.Context
	Endpoint *hid.Endpoint
	Radio    *radio.Lifecycle
	UI       *ui.Controller
	Input    *input.Service
	Clock    *clock.Task
	Monitor  *monitor.Service

	// Exactly one of Sim and Link is set, by radio.backend.
	Sim  *sim.Stack
	Link *uartlink.Link

	pins halcore.PinFactory
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// New validates and normalises cfg in place, then builds the components.
// Nothing touches the panel or the radio until Start.
func New(cfg *config.Config, hw Hardware) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "app.config", err)
	}
	config.Normalize(cfg)

	catalog, err := loadAssets(hw.Assets)
	if err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg, Bus: bus.NewBus(8), pins: hw.Pins}

	a.Panel = st7735s.New(hw.SPI, hw.DC, hw.RST)
	a.Panel.Configure(st7735s.Config{
		XOffset:     int16(cfg.Panel.XOffset),
		YOffset:     int16(cfg.Panel.YOffset),
		ExactOffset: true,
		MaxTransfer: cfg.Panel.MaxTransfer,
		Sleep:       hw.Sleep,
	})
	a.Display = display.NewContext(display.NewComposer(a.Panel, catalog))

	var stack radio.Stack
	switch cfg.Radio.Backend {
	case config.BackendSerial:
		if hw.OpenSerial == nil {
			return nil, &errcode.E{C: errcode.Unsupported, Op: "app.radio", Msg: "no serial port on this board"}
		}
		port, err := hw.OpenSerial(cfg.Radio.Serial)
		if err != nil {
			return nil, err
		}
		a.Link = uartlink.New(port)
		stack = a.Link
	default:
		a.Sim = sim.New(0)
		stack = a.Sim
	}

	a.Endpoint = hid.NewEndpoint(stack, hid.Config{Guard: ms(cfg.HID.GuardMs)})
	a.Radio = radio.New(stack, a.Endpoint, a.Bus.NewConnection("radio"), radio.Config{
		DeviceName: cfg.Device.Name,
		App: radio.AppParams{
			Name:        cfg.Device.AppName,
			Description: cfg.Device.Description,
			Provider:    cfg.Device.Provider,
			Subclass:    radio.CoDMinorMic,
		},
		PIN:   cfg.Device.PIN,
		PIN16: cfg.Device.PIN16,
	})

	a.UI = ui.New(a.Display, a.Endpoint, a.Bus.NewConnection("ui"), ui.Config{
		Wrap:    cfg.UI.SelectionWrap,
		Initial: cfg.UI.Initial,
	})
	a.Input = input.New(a.UI, a.Bus.NewConnection("input"), input.Config{
		QueueCap:   cfg.Buttons.QueueCap,
		DebounceMS: cfg.Buttons.DebounceMs,
	})
	a.Clock = clock.New(a.Display, a.Bus.NewConnection("clock"), clock.Config{
		Start:  cfg.Clock.Start,
		Period: ms(cfg.Clock.PeriodMs),
	})
	a.Monitor = monitor.New(monitor.Config{Interval: ms(cfg.Monitor.HeartbeatMs), Sink: hw.Log})
	return a, nil
}

func loadAssets(blob []byte) (*assets.Catalog, error) {
	if blob == nil {
		return assets.Render(), nil
	}
	c, err := assets.Parse(blob)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "app.assets", err)
	}
	if err := c.Complete(); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "app.assets", err)
	}
	return c, nil
}

// Start initialises the panel, brings up the radio and launches the input
// and clock tasks. It returns once everything is running; tasks stop when
// ctx is done.
func (a *App) Start(ctx context.Context) error {
	println("[main] panel init")
	a.Panel.Init()
	a.Display.Do(func(c *display.Composer) {
		c.Splash()
		if a.Cfg.UI.IconAtBoot {
			c.DrawIcon(int(a.UI.Selection()))
		}
	})

	if err := a.Monitor.Start(ctx, a.Bus.NewConnection("monitor")); err != nil {
		return err
	}
	if a.Link != nil {
		go a.Link.Run(ctx)
	}
	if err := a.Radio.Start(ctx); err != nil {
		return err
	}

	var releases []func()
	for _, b := range []struct {
		button input.Button
		pin    int
	}{
		{input.ButtonA, a.Cfg.Buttons.A},
		{input.ButtonB, a.Cfg.Buttons.B},
	} {
		pin, err := a.irqPin(b.pin)
		if err == nil {
			var release func()
			release, err = a.Input.Register(b.button, pin)
			if err == nil {
				releases = append(releases, release)
			}
		}
		if err != nil {
			for _, r := range releases {
				r()
			}
			return err
		}
	}

	go func() {
		<-ctx.Done()
		for _, r := range releases {
			r()
		}
	}()
	go a.Input.Run(ctx)
	go a.Clock.Run(ctx)
	println("[main] remote running")
	return nil
}

// Run starts the remote and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *App) irqPin(n int) (halcore.IRQPin, error) {
	gp, ok := a.pins.ByNumber(n)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "app.buttons", Msg: "no such pin"}
	}
	p, ok := gp.(halcore.IRQPin)
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "app.buttons", Msg: "pin has no interrupt"}
	}
	return p, nil
}
