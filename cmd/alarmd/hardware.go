package main

import (
	"fmt"
	"log/slog"

	"github.com/sweeney/alarmd/internal/config"
	"github.com/sweeney/alarmd/internal/gpio"
	"github.com/sweeney/alarmd/internal/output"
	"github.com/sweeney/alarmd/internal/registry"
)

// hardware is the opened I/O stack shared by the daemon and the admin commands.
type hardware struct {
	reg *registry.Registry
	hal *gpio.HAL
	out *output.Controller
}

func (a *app) openHardware(cfg config.Config, log *slog.Logger) (*hardware, error) {
	reg, err := registry.New(cfg.Table())
	if err != nil {
		return nil, fmt.Errorf("load bit table: %w", err)
	}
	backend, err := a.openBackend(cfg, reg, a.emulate)
	if err != nil {
		return nil, fmt.Errorf("init %s backend: %w", cfg.Hardware.Backend, err)
	}
	hal := gpio.New(backend)
	return &hardware{
		reg: reg,
		hal: hal,
		out: output.New(reg, hal, log),
	}, nil
}

func (h *hardware) Close() error {
	return h.hal.Close()
}

// openBackend opens the configured device, or a fake with every sensor idle
// when emulating.
func openBackend(cfg config.Config, reg *registry.Registry, emulate bool) (gpio.Backend, error) {
	hw := cfg.Hardware
	switch hw.Backend {
	case config.BackendPin:
		if emulate {
			return emulatedPins(reg), nil
		}
		pins := make([]gpio.PinConfig, 0, reg.Len())
		for _, b := range reg.Bits() {
			pins = append(pins, gpio.PinConfig{Pin: b.Address.Pin, Output: b.Function == registry.Relay})
		}
		pb, err := gpio.NewPinBackend(hw.Chip, pins, hw.Debounce)
		if err != nil {
			return nil, err
		}
		return pb, nil

	case config.BackendPort:
		if emulate {
			return gpio.NewPortBackend(gpio.NewFakePorts()), nil
		}
		dev, err := gpio.OpenCharPorts(hw.Ports)
		if err != nil {
			return nil, err
		}
		return gpio.NewPortBackend(dev), nil

	case config.BackendExpander:
		if emulate {
			return gpio.NewPortBackend(gpio.NewFakePorts()), nil
		}
		dev, err := gpio.OpenExpander(hw.Bus, hw.Address, hw.Outputs)
		if err != nil {
			return nil, err
		}
		return gpio.NewPortBackend(dev), nil
	}
	return nil, fmt.Errorf("unknown backend %q", hw.Backend)
}

// Active-low sensor lines idle high.
func emulatedPins(reg *registry.Registry) *gpio.FakePins {
	f := gpio.NewFakePins()
	for _, b := range reg.Sensors() {
		if b.Address.ActiveLow {
			f.Set(b.Address.Pin, true)
		}
	}
	return f
}
