package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// MCP23017 register addresses with IOCON.BANK = 0. Port B registers follow
// their port A counterpart.
const (
	regIODIRA = 0x00
	regGPPUA  = 0x0C
	regGPIOA  = 0x12
	regOLATA  = 0x14
)

// DefaultExpanderAddr is the MCP23017 address with A0-A2 grounded.
const DefaultExpanderAddr = 0x20

// Expander is a two-port I²C expander presented as a PortDevice.
// Port 0 is GPIOA, port 1 is GPIOB.
type Expander struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// OpenExpander initialises the periph host, opens the named I²C bus ("" for
// the first one) and configures the expander.
func OpenExpander(bus string, addr uint16, outputs [2]uint8) (*Expander, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}
	e, err := NewExpander(b, addr, outputs)
	if err != nil {
		b.Close()
		return nil, err
	}
	e.closer = b
	return e, nil
}

// NewExpander configures an expander on an already open bus. Bits set in
// outputs[port] become outputs driven low; all others are inputs with the
// internal pull-up enabled.
func NewExpander(bus i2c.Bus, addr uint16, outputs [2]uint8) (*Expander, error) {
	e := &Expander{dev: &i2c.Dev{Bus: bus, Addr: addr}}
	for port := 0; port < 2; port++ {
		p := byte(port)
		if err := e.dev.Tx([]byte{regIODIRA + p, ^outputs[port]}, nil); err != nil {
			return nil, fmt.Errorf("expander %#x: set direction port %d: %w", addr, port, err)
		}
		if err := e.dev.Tx([]byte{regGPPUA + p, ^outputs[port]}, nil); err != nil {
			return nil, fmt.Errorf("expander %#x: set pull-ups port %d: %w", addr, port, err)
		}
		if err := e.dev.Tx([]byte{regOLATA + p, 0}, nil); err != nil {
			return nil, fmt.Errorf("expander %#x: clear latch port %d: %w", addr, port, err)
		}
	}
	return e, nil
}

func checkExpanderPort(port int) error {
	if port < 0 || port > 1 {
		return fmt.Errorf("expander has no port %d", port)
	}
	return nil
}

// ReadPort reads the GPIO register of a port.
func (e *Expander) ReadPort(port int) (uint8, error) {
	if err := checkExpanderPort(port); err != nil {
		return 0, err
	}
	r := make([]byte, 1)
	if err := e.dev.Tx([]byte{regGPIOA + byte(port)}, r); err != nil {
		return 0, fmt.Errorf("read port %d: %w", port, err)
	}
	return r[0], nil
}

// WritePort writes the output latch of a port.
func (e *Expander) WritePort(port int, v uint8) error {
	if err := checkExpanderPort(port); err != nil {
		return err
	}
	if err := e.dev.Tx([]byte{regOLATA + byte(port), v}, nil); err != nil {
		return fmt.Errorf("write port %d: %w", port, err)
	}
	return nil
}

// Close closes the bus if OpenExpander opened it.
func (e *Expander) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
