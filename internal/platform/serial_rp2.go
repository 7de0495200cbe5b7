//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"mediaremote-go/config"
	"mediaremote-go/errcode"
	"mediaremote-go/internal/halcore"
)

// rp2SerialPort adapts uartx to halcore.SerialPort.
type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2SerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, buf)
}

// OpenSerial configures the UART block that owns the TX/RX pins at 8N1.
func OpenSerial(cfg config.SerialConfig) (halcore.SerialPort, error) {
	uc := uartx.UARTConfig{
		BaudRate: uint32(cfg.Baud),
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	}
	hw := uartx.UART0
	if err := hw.Configure(uc); err != nil {
		hw = uartx.UART1
		if err := hw.Configure(uc); err != nil {
			return nil, errcode.Wrap(errcode.UnknownPin, "platform.serial", err)
		}
	}
	if err := hw.SetFormat(8, 1, uartx.ParityNone); err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "platform.serial", err)
	}
	println("[serial] uart ready, baud", cfg.Baud)
	return &rp2SerialPort{u: hw}, nil
}
