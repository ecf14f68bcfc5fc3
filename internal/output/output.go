// Package output drives relay bits by name.
package output

import (
	"log/slog"
	"strings"

	"github.com/sweeney/alarmd/internal/gpio"
	"github.com/sweeney/alarmd/internal/registry"
)

// Controller writes relays through the HAL. Polarity is resolved by the HAL;
// callers always pass logical levels.
type Controller struct {
	reg *registry.Registry
	hal *gpio.HAL
	log *slog.Logger
}

// New returns a controller for the relays in reg.
func New(reg *registry.Registry, hal *gpio.HAL, log *slog.Logger) *Controller {
	return &Controller{reg: reg, hal: hal, log: log}
}

// Set drives the named relay. LED writes are not logged; they happen every tick.
func (c *Controller) Set(name string, level bool) error {
	b, err := c.reg.Relay(name)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(name, "Led") {
		c.log.Info("set output", "name", name, "state", onOff(level))
	}
	if err := c.hal.WriteBit(b.Address, level); err != nil {
		return err
	}
	b.Value = level
	return nil
}

// SetAll drives every relay to level, in table order, as one batch.
func (c *Controller) SetAll(level bool) error {
	relays := c.reg.Relays()
	addrs := make([]registry.Address, len(relays))
	levels := make([]bool, len(relays))
	for i, b := range relays {
		addrs[i] = b.Address
		levels[i] = level
	}
	c.log.Info("set all outputs", "state", onOff(level))
	if err := c.hal.WriteBits(addrs, levels); err != nil {
		return err
	}
	for _, b := range relays {
		b.Value = level
	}
	return nil
}

// Get returns the level last written to the named relay.
func (c *Controller) Get(name string) (bool, error) {
	b, err := c.reg.Relay(name)
	if err != nil {
		return false, err
	}
	return b.Value, nil
}

// Has reports whether the named relay exists.
func (c *Controller) Has(name string) bool {
	return c.reg.HasRelay(name)
}

func onOff(level bool) string {
	if level {
		return "on"
	}
	return "off"
}
