//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"mediaremote-go/config"
	"mediaremote-go/errcode"
	"mediaremote-go/internal/halcore"
	"mediaremote-go/x/shmring"
)

const serialRing = 1024

// SerialPort adapts a blocking host serial port to halcore.SerialPort.
// A pump goroutine moves received bytes into a ring so receives can honour
// a context.
type SerialPort struct {
	p  io.ReadWriteCloser
	rx *shmring.Ring

	once sync.Once
	done chan struct{}
	dead chan struct{}
	err  error
}

// OpenSerial opens the configured device at 8N1.
func OpenSerial(cfg config.SerialConfig) (halcore.SerialPort, error) {
	if cfg.Device == "" {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "platform.serial", Msg: "no device"}
	}
	p, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.Baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "platform.serial", err)
	}
	println("[serial] opened", cfg.Device, "baud", cfg.Baud)
	return NewSerialPort(p), nil
}

// NewSerialPort starts pumping p. Read timeouts from p are ignored.
func NewSerialPort(p io.ReadWriteCloser) *SerialPort {
	s := &SerialPort{
		p:    p,
		rx:   shmring.New(serialRing),
		done: make(chan struct{}),
		dead: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *SerialPort) pump() {
	defer close(s.dead)
	var buf [128]byte
	for {
		n, err := s.p.Read(buf[:])
		b := buf[:n]
		for len(b) > 0 {
			b = b[s.rx.TryWriteFrom(b):]
			if len(b) == 0 {
				break
			}
			select {
			case <-s.rx.Writable():
			case <-s.done:
				return
			}
		}
		if err != nil {
			if errors.Is(err, serial.ErrTimeout) {
				continue
			}
			select {
			case <-s.done:
			default:
				println("[serial] read stopped:", err.Error())
			}
			s.err = err
			return
		}
	}
}

func (s *SerialPort) Write(p []byte) (int, error) { return s.p.Write(p) }

// RecvSomeContext returns buffered bytes, waiting until some arrive, the
// port fails or ctx is done.
func (s *SerialPort) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		if n := s.rx.TryReadInto(p); n > 0 {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.rx.Readable():
		case <-s.dead:
			if n := s.rx.TryReadInto(p); n > 0 {
				return n, nil
			}
			return 0, errcode.Wrap(errcode.LinkClosed, "platform.serial", s.err)
		}
	}
}

func (s *SerialPort) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.p.Close()
	})
	return err
}
