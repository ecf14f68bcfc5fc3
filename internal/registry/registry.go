package registry

import (
	"fmt"
)

// All addresses every sensor in SetActive and SetMode.
const All = ""

// Registry is the loaded bit table.
type Registry struct {
	bits        []*Bit
	sensors     []*Bit
	relays      []*Bit
	states      map[string]*SensorState
	sensorNames []string
	relayByName map[string]*Bit
}

// New builds a registry from table rows, in row order.
// Sensor rows that repeat a name form one logical sensor: they share arming
// state and fault count, and the first row's Active/Mode wins.
func New(specs []Spec) (*Registry, error) {
	r := &Registry{
		states:      make(map[string]*SensorState),
		relayByName: make(map[string]*Bit),
	}
	spares := make(map[string]bool)

	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("registry: row %d (%s): empty name", i, s.PCB)
		}
		if !s.Mode.Valid() {
			return nil, fmt.Errorf("registry: row %d (%s): %w", i, s.Name, ErrInvalidMode)
		}
		b := &Bit{
			PCB:             s.PCB,
			Name:            s.Name,
			Function:        s.Function,
			Address:         s.Address,
			LogWhenDisabled: s.Log,
		}

		switch s.Function {
		case Sensor:
			st, ok := r.states[s.Name]
			if !ok {
				st = &SensorState{Active: s.Active, Mode: s.Mode}
				r.states[s.Name] = st
				r.sensorNames = append(r.sensorNames, s.Name)
			}
			b.State = st
			r.sensors = append(r.sensors, b)
		case Relay:
			if _, dup := r.relayByName[s.Name]; dup {
				return nil, fmt.Errorf("registry: row %d: duplicate relay name %q", i, s.Name)
			}
			r.relayByName[s.Name] = b
			r.relays = append(r.relays, b)
		case Spare:
			if spares[s.Name] {
				return nil, fmt.Errorf("registry: row %d: duplicate spare name %q", i, s.Name)
			}
			spares[s.Name] = true
		default:
			return nil, fmt.Errorf("registry: row %d (%s): unknown function %d", i, s.Name, s.Function)
		}
		r.bits = append(r.bits, b)
	}
	return r, nil
}

// Bits returns every bit in table order, spares included.
func (r *Registry) Bits() []*Bit { return r.bits }

// Sensors returns the sensor bits in table order.
func (r *Registry) Sensors() []*Bit { return r.sensors }

// Relays returns the relay bits in table order.
func (r *Registry) Relays() []*Bit { return r.relays }

// SensorNames returns each logical sensor name once, in first-seen order.
func (r *Registry) SensorNames() []string { return r.sensorNames }

// Len returns the number of bits in the table.
func (r *Registry) Len() int { return len(r.bits) }

// Sensor returns the shared state of the named sensor.
func (r *Registry) Sensor(name string) (*SensorState, error) {
	st, ok := r.states[name]
	if !ok {
		return nil, fmt.Errorf("sensor %q: %w", name, ErrUnknownBit)
	}
	return st, nil
}

// Relay returns the named relay bit.
func (r *Registry) Relay(name string) (*Bit, error) {
	b, ok := r.relayByName[name]
	if !ok {
		return nil, fmt.Errorf("relay %q: %w", name, ErrUnknownBit)
	}
	return b, nil
}

// HasRelay reports whether a relay with that name exists.
func (r *Registry) HasRelay(name string) bool {
	_, ok := r.relayByName[name]
	return ok
}

// SensorValue reports whether any bit of the named sensor was last sampled high.
func (r *Registry) SensorValue(name string) (bool, error) {
	if _, err := r.Sensor(name); err != nil {
		return false, err
	}
	for _, b := range r.sensors {
		if b.Name == name && b.Value {
			return true, nil
		}
	}
	return false, nil
}

// SetActive arms or disarms one named sensor, or every sensor when name is All
// (or "*").
func (r *Registry) SetActive(name string, active bool) error {
	return r.eachSensor(name, func(st *SensorState) { st.Active = active })
}

// SetMode sets the event variant of one named sensor, or every sensor.
func (r *Registry) SetMode(name string, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("sensor %q: %w", name, ErrInvalidMode)
	}
	return r.eachSensor(name, func(st *SensorState) { st.Mode = mode })
}

func (r *Registry) eachSensor(name string, fn func(*SensorState)) error {
	if name == All || name == "*" {
		for _, n := range r.sensorNames {
			fn(r.states[n])
		}
		return nil
	}
	st, err := r.Sensor(name)
	if err != nil {
		return err
	}
	fn(st)
	return nil
}
