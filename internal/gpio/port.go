package gpio

import (
	"fmt"

	"github.com/sweeney/alarmd/internal/registry"
)

// PortDevice reads and writes whole byte-wide ports.
type PortDevice interface {
	ReadPort(port int) (uint8, error)
	WritePort(port int, v uint8) error
	Close() error
}

// PortBackend maps bits onto a PortDevice. Writes are read-modify-write so
// sibling bits on the same port are left alone.
type PortBackend struct {
	dev PortDevice

	// Last byte read or written by a write, valid while cachePort >= 0.
	cachePort int
	cache     uint8
}

// NewPortBackend wraps a port device.
func NewPortBackend(dev PortDevice) *PortBackend {
	return &PortBackend{dev: dev, cachePort: -1}
}

// ReadBit always reads the port from hardware.
func (p *PortBackend) ReadBit(a registry.Address) (bool, error) {
	v, err := p.dev.ReadPort(a.Port)
	if err != nil {
		return false, err
	}
	return v&a.Mask != 0, nil
}

// Scan reads each port once per run of consecutive bits on that port.
func (p *PortBackend) Scan(addrs []registry.Address) ([]bool, error) {
	out := make([]bool, len(addrs))
	port := -1
	var v uint8
	for i, a := range addrs {
		if a.Port != port {
			var err error
			if v, err = p.dev.ReadPort(a.Port); err != nil {
				return nil, err
			}
			port = a.Port
		}
		out[i] = v&a.Mask != 0
	}
	return out, nil
}

// WriteBit re-reads the port before modifying it.
func (p *PortBackend) WriteBit(a registry.Address, level bool) error {
	p.cachePort = -1
	return p.write(a, level)
}

// WriteBits reuses the port byte across consecutive writes to the same port.
func (p *PortBackend) WriteBits(addrs []registry.Address, levels []bool) error {
	p.cachePort = -1
	for i, a := range addrs {
		if err := p.write(a, levels[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *PortBackend) write(a registry.Address, level bool) error {
	if a.Mask == 0 {
		return fmt.Errorf("port %d: empty bit mask", a.Port)
	}
	if a.Port != p.cachePort {
		v, err := p.dev.ReadPort(a.Port)
		if err != nil {
			p.cachePort = -1
			return err
		}
		p.cache, p.cachePort = v, a.Port
	}
	if level {
		p.cache |= a.Mask
	} else {
		p.cache &^= a.Mask
	}
	if err := p.dev.WritePort(a.Port, p.cache); err != nil {
		p.cachePort = -1
		return err
	}
	return nil
}

// Close releases the device.
func (p *PortBackend) Close() error {
	return p.dev.Close()
}
