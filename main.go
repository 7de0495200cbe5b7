// Firmware entry: boots the remote with the built-in configuration.
package main

import (
	"context"
	"time"

	"mediaremote-go/app"
	"mediaremote-go/config"
	"mediaremote-go/internal/platform"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	cfg := config.Default()
	board, err := platform.Open(cfg.Panel)
	if err != nil {
		halt(err)
	}
	a, err := app.New(cfg, app.Hardware{
		SPI:        board.SPI,
		DC:         board.DC,
		RST:        board.RST,
		Pins:       board.Pins,
		OpenSerial: platform.OpenSerial,
	})
	if err != nil {
		halt(err)
	}
	if err := a.Run(context.Background()); err != nil {
		halt(err)
	}
}

func halt(err error) {
	for {
		println("[main] fatal:", err.Error())
		time.Sleep(5 * time.Second)
	}
}
