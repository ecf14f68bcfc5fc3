//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/alarmd/internal/registry"
)

// PinConfig describes how one line is requested.
type PinConfig struct {
	Pin    int
	Output bool
}

// PinBackend is not available on non-Linux platforms.
type PinBackend struct{}

// NewPinBackend returns an error on non-Linux platforms.
func NewPinBackend(chipName string, pins []PinConfig, debounce time.Duration) (*PinBackend, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadBit is not implemented on non-Linux platforms.
func (p *PinBackend) ReadBit(a registry.Address) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// WriteBit is not implemented on non-Linux platforms.
func (p *PinBackend) WriteBit(a registry.Address, level bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *PinBackend) Close() error {
	return nil
}
