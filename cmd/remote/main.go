//go:build !rp2040 && !rp2350

// Command remote runs the media remote on the desktop against an emulated
// panel. Buttons come from the window's keyboard; the radio is the in-memory
// stack unless -serial names a coprocessor tty.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediaremote-go/app"
	"mediaremote-go/config"
	"mediaremote-go/internal/platform"
	"mediaremote-go/internal/simwindow"
)

var simHost = [6]byte{0x02, 0x00, 0x00, 0xC0, 0xFF, 0xEE}

func main() {
	cfgPath := flag.String("config", "", "YAML file overlaying the built-in configuration")
	window := flag.Bool("window", false, "show the panel in a desktop window")
	snapshot := flag.String("snapshot", "", "write a PNG of the panel to this path on exit")
	serialDev := flag.String("serial", "", "radio coprocessor tty; selects the serial backend")
	assetsPath := flag.String("assets", "", "packed asset blob written by mkassets")
	scale := flag.Int("scale", 4, "window and snapshot scale")
	runFor := flag.Duration("for", 0, "exit after this long; 0 runs until interrupted")
	flag.Parse()

	if err := run(*cfgPath, *window, *snapshot, *serialDev, *assetsPath, *scale, *runFor); err != nil {
		fmt.Fprintln(os.Stderr, "remote:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, window bool, snapshot, serialDev, assetsPath string, scale int, runFor time.Duration) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	if serialDev != "" {
		cfg.Radio.Backend = config.BackendSerial
		cfg.Radio.Serial.Device = serialDev
	}

	board, err := platform.Open(cfg.Panel)
	if err != nil {
		return err
	}
	hw := app.Hardware{
		SPI:        board.SPI,
		DC:         board.DC,
		RST:        board.RST,
		Pins:       board.Pins,
		OpenSerial: platform.OpenSerial,
	}
	if assetsPath != "" {
		if hw.Assets, err = os.ReadFile(assetsPath); err != nil {
			return err
		}
	}
	a, err := app.New(cfg, hw)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	if window {
		err = simwindow.Run(simwindow.Options{
			Title: cfg.Device.Name,
			Scale: scale,
			Panel: board.Emulator,
			OnKey: func(k simwindow.Key) { onKey(a, board, cfg, snapshot, scale, k) },
		})
		stop()
		if err != nil {
			return err
		}
	} else {
		<-ctx.Done()
	}

	if snapshot != "" {
		return simwindow.WritePNG(board.Emulator, scale, snapshot)
	}
	return nil
}

func onKey(a *app.App, board *platform.Board, cfg *config.Config, snapshot string, scale int, k simwindow.Key) {
	switch k {
	case simwindow.KeyA:
		board.Fake.Pin(cfg.Buttons.A).Press()
	case simwindow.KeyB:
		board.Fake.Pin(cfg.Buttons.B).Press()
	case simwindow.KeyConnect:
		if a.Sim != nil {
			go a.Sim.HostConnect(simHost)
		}
	case simwindow.KeyDisconnect:
		if a.Sim != nil {
			go a.Sim.HostDisconnect()
		}
	case simwindow.KeySnapshot:
		path := snapshot
		if path == "" {
			path = "remote.png"
		}
		if err := simwindow.WritePNG(board.Emulator, scale, path); err != nil {
			println("[remote] snapshot failed:", err.Error())
			return
		}
		println("[remote] snapshot written:", path)
	}
}
