// Package gpio is the hardware abstraction layer for sensor and relay bits.
// Two backend shapes sit behind one contract: a register-port device whose
// bits share byte-wide ports, and a set of individually addressed pins.
// Fakes of both allow testing without hardware.
package gpio

import (
	"errors"
	"fmt"

	"github.com/sweeney/alarmd/internal/registry"
)

// ErrHardware wraps every failure of the underlying read/write primitive.
// The device is assumed to be in an unrecoverable state; nothing retries.
var ErrHardware = errors.New("gpio: hardware i/o failure")

// Backend reads and writes raw physical levels.
type Backend interface {
	ReadBit(a registry.Address) (bool, error)
	WriteBit(a registry.Address, level bool) error
	Close() error
}

// Scanner is implemented by backends that can sample many bits more cheaply
// than one ReadBit per bit.
type Scanner interface {
	Scan(addrs []registry.Address) ([]bool, error)
}

// BatchWriter is implemented by backends that can write a run of bits more
// cheaply than one WriteBit per bit.
type BatchWriter interface {
	WriteBits(addrs []registry.Address, levels []bool) error
}

// HAL translates between logical and physical levels. Active-low addresses
// are inverted here and nowhere else.
type HAL struct {
	backend Backend
}

// New wraps a backend.
func New(b Backend) *HAL {
	return &HAL{backend: b}
}

// ReadBit returns the logical level of one bit.
func (h *HAL) ReadBit(a registry.Address) (bool, error) {
	raw, err := h.backend.ReadBit(a)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrHardware, a, err)
	}
	return raw != a.ActiveLow, nil
}

// WriteBit drives one bit to a logical level.
func (h *HAL) WriteBit(a registry.Address, level bool) error {
	if err := h.backend.WriteBit(a, level != a.ActiveLow); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrHardware, a, err)
	}
	return nil
}

// ReadBits samples bits in order and returns their logical levels.
func (h *HAL) ReadBits(addrs []registry.Address) ([]bool, error) {
	var raw []bool
	if s, ok := h.backend.(Scanner); ok {
		var err error
		if raw, err = s.Scan(addrs); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrHardware, err)
		}
	} else {
		raw = make([]bool, len(addrs))
		for i, a := range addrs {
			v, err := h.backend.ReadBit(a)
			if err != nil {
				return nil, fmt.Errorf("%w: read %s: %w", ErrHardware, a, err)
			}
			raw[i] = v
		}
	}
	for i, a := range addrs {
		raw[i] = raw[i] != a.ActiveLow
	}
	return raw, nil
}

// WriteBits drives bits to logical levels, in order.
func (h *HAL) WriteBits(addrs []registry.Address, levels []bool) error {
	if len(addrs) != len(levels) {
		return fmt.Errorf("gpio: %d addresses for %d levels", len(addrs), len(levels))
	}
	raw := make([]bool, len(levels))
	for i, a := range addrs {
		raw[i] = levels[i] != a.ActiveLow
	}
	if w, ok := h.backend.(BatchWriter); ok {
		if err := w.WriteBits(addrs, raw); err != nil {
			return fmt.Errorf("%w: batch write: %w", ErrHardware, err)
		}
		return nil
	}
	for i, a := range addrs {
		if err := h.backend.WriteBit(a, raw[i]); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrHardware, a, err)
		}
	}
	return nil
}

// Close releases the backend.
func (h *HAL) Close() error {
	return h.backend.Close()
}
