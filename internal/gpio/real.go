//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/alarmd/internal/registry"
	"github.com/warthog618/go-gpiocdev"
)

// PinConfig describes how one line is requested.
type PinConfig struct {
	Pin    int
	Output bool
}

// PinBackend drives individually addressed lines through the Linux GPIO
// character device.
type PinBackend struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewPinBackend requests every configured line. Inputs get a pull-up, since
// contacts ground the line when triggered, and the given debounce period.
// Outputs start inactive.
func NewPinBackend(chipName string, pins []PinConfig, debounce time.Duration) (*PinBackend, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("alarmd"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	p := &PinBackend{chip: chip, lines: make(map[int]*gpiocdev.Line)}

	for _, pc := range pins {
		if _, dup := p.lines[pc.Pin]; dup {
			continue
		}
		var opts []gpiocdev.LineReqOption
		if pc.Output {
			opts = append(opts, gpiocdev.AsOutput(0))
		} else {
			opts = append(opts, gpiocdev.AsInput, gpiocdev.WithPullUp)
			if debounce > 0 {
				opts = append(opts, gpiocdev.WithDebounce(debounce))
			}
		}
		line, err := chip.RequestLine(pc.Pin, opts...)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request pin %d: %w", pc.Pin, err)
		}
		p.lines[pc.Pin] = line
	}
	return p, nil
}

func (p *PinBackend) line(pin int) (*gpiocdev.Line, error) {
	l, ok := p.lines[pin]
	if !ok {
		return nil, fmt.Errorf("pin %d not requested", pin)
	}
	return l, nil
}

// ReadBit returns the raw level of a line.
func (p *PinBackend) ReadBit(a registry.Address) (bool, error) {
	l, err := p.line(a.Pin)
	if err != nil {
		return false, err
	}
	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", a.Pin, err)
	}
	return v != 0, nil
}

// WriteBit sets the raw level of an output line.
func (p *PinBackend) WriteBit(a registry.Address, level bool) error {
	l, err := p.line(a.Pin)
	if err != nil {
		return err
	}
	v := 0
	if level {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", a.Pin, err)
	}
	return nil
}

// Close releases every line, returning inputs to their boot default
// (input with pull-down) first.
func (p *PinBackend) Close() error {
	var errs []error
	for pin, l := range p.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	p.lines = nil
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
