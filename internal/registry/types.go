// Package registry holds the static table of sensor and relay bits.
// It is pure data: no I/O, no clocks. The table is loaded once at startup
// and then mutated only by the goroutine that runs the event loop.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownBit is returned when a lookup names a bit that is not in the table.
	ErrUnknownBit = errors.New("registry: unknown bit")

	// ErrInvalidMode is returned for an activation mode outside Inactive/Active/Delayed.
	ErrInvalidMode = errors.New("registry: invalid activation mode")
)

// Function is what a bit is wired to do.
type Function int

const (
	Sensor Function = iota
	Relay
	Spare
)

func (f Function) String() string {
	switch f {
	case Sensor:
		return "sensor"
	case Relay:
		return "relay"
	case Spare:
		return "spare"
	default:
		return fmt.Sprintf("function(%d)", int(f))
	}
}

// ParseFunction accepts "sensor", "relay" or "spare" in any case.
func ParseFunction(s string) (Function, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sensor":
		return Sensor, nil
	case "relay", "actuator":
		return Relay, nil
	case "spare":
		return Spare, nil
	}
	return 0, fmt.Errorf("registry: unknown function %q", s)
}

// UnmarshalYAML decodes a function name.
func (f *Function) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseFunction(value.Value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Mode selects which event an armed sensor raises.
type Mode int

const (
	Inactive Mode = iota
	Active
	Delayed
)

func (m Mode) String() string {
	switch m {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Delayed:
		return "delayed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool {
	return m >= Inactive && m <= Delayed
}

// ParseMode accepts "inactive", "active" or "delayed" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inactive", "":
		return Inactive, nil
	case "active":
		return Active, nil
	case "delayed":
		return Delayed, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// UnmarshalYAML decodes a mode name.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseMode(value.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Address locates a bit on its backend. Port and Mask are used by the
// register-port backend, Pin by the pin backend. ActiveLow marks bits whose
// asserted state is a low physical line; the HAL inverts them.
type Address struct {
	Port      int   `yaml:"port"`
	Mask      uint8 `yaml:"mask"`
	Pin       int   `yaml:"pin"`
	ActiveLow bool  `yaml:"active_low"`
}

func (a Address) String() string {
	s := fmt.Sprintf("pin %d", a.Pin)
	if a.Mask != 0 {
		s = fmt.Sprintf("port %d mask 0x%02x", a.Port, a.Mask)
	}
	if a.ActiveLow {
		s += " (active-low)"
	}
	return s
}

// SensorState is the mutable arming state of one logical sensor.
// Bits that share a sensor name share one SensorState.
type SensorState struct {
	Active     bool
	Mode       Mode
	FaultCount int
}

// Armed reports whether the sensor should produce events.
func (s *SensorState) Armed() bool {
	return s.Active && s.Mode != Inactive
}

// Bit is one physical I/O point.
type Bit struct {
	PCB      string
	Name     string
	Function Function
	Address  Address

	// LogWhenDisabled reports triggers on a disarmed sensor.
	LogWhenDisabled bool

	// Value is the last sampled (sensor) or written (relay) logical level.
	Value bool

	// State is nil for relays and spares.
	State *SensorState
}

func (b *Bit) String() string {
	return fmt.Sprintf("%s %s [%s] %s", b.Function, b.Name, b.PCB, b.Address)
}

// Spec is one row of the configuration table.
type Spec struct {
	PCB      string   `yaml:"pcb"`
	Name     string   `yaml:"name"`
	Function Function `yaml:"function"`
	Address  Address  `yaml:",inline"`
	Log      bool     `yaml:"log"`
	Active   bool     `yaml:"active"`
	Mode     Mode     `yaml:"mode"`
}
