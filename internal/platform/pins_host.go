//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"mediaremote-go/internal/halcore"
)

// FakePin implements halcore.IRQPin for host builds and tests. Handlers
// run synchronously on the goroutine that changes the level.
type FakePin struct {
	mu     sync.Mutex
	number int
	level  bool
	output bool
	edge   halcore.Edge
	onEdge func()
}

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = false
	if pull != halcore.PullNone {
		p.level = pull == halcore.PullUp
	}
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output, p.level = true, initial
	return nil
}

// Set drives the level and runs the handler when the edge matches.
func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	var seen halcore.Edge
	switch {
	case !p.level && level:
		seen = halcore.EdgeRising
	case p.level && !level:
		seen = halcore.EdgeFalling
	}
	p.level = level
	fire := seen != halcore.EdgeNone && (p.edge == seen || p.edge == halcore.EdgeBoth)
	fn := p.onEdge
	p.mu.Unlock()
	if fire && fn != nil {
		fn()
	}
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Number() int { return p.number }

// Output reports whether the pin was last configured as an output.
func (p *FakePin) Output() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output
}

// Press simulates an active-low button: a falling then a rising edge.
func (p *FakePin) Press() {
	p.Set(false)
	p.Set(true)
}

func (p *FakePin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.edge, p.onEdge = edge, handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.edge, p.onEdge = halcore.EdgeNone, nil
	p.mu.Unlock()
	return nil
}

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

// ByNumber accepts the same range as the RP2350B, GP0..GP47.
func (f *HostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 || n > 47 {
		return nil, false
	}
	return f.Pin(n), true
}

// Pin returns the fake for n, creating it on first use.
func (f *HostPinFactory) Pin(n int) *FakePin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p
}
