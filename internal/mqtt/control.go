package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sweeney/alarmd/internal/registry"
)

// Control operations accepted on TopicControl.
const (
	OpSetOutput        = "set_output"
	OpSetAllOutputs    = "set_all_outputs"
	OpSetSensorActive  = "set_sensor_active"
	OpSetSensorMode    = "set_sensor_mode"
	OpZeroSensors      = "zero_sensors"
	OpIncrementSensors = "increment_sensors"
	OpRegisterTimer    = "register_timer"
	OpSetLEDs          = "set_leds"
)

// maxTimerSeconds is the longest interval a time.Duration can hold.
const maxTimerSeconds = float64(math.MaxInt64) / float64(time.Second)

// ErrBadRequest is returned for control messages that cannot be applied.
var ErrBadRequest = errors.New("mqtt: bad control request")

// Request is one control message, e.g.
//
//	{"op":"set_output","name":"Siren","level":true}
//	{"op":"register_timer","seconds":30,"event":"ExitTimeout"}
type Request struct {
	Op      string  `json:"op"`
	Name    string  `json:"name,omitempty"`
	Level   bool    `json:"level,omitempty"`
	Active  bool    `json:"active,omitempty"`
	Mode    string  `json:"mode,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Event   string  `json:"event,omitempty"`
	Green   bool    `json:"green,omitempty"`
	Red     bool    `json:"red,omitempty"`
}

// ParseRequest decodes and checks a control message. Sensor and relay names
// are resolved later, against the registry, by whoever applies the request.
func ParseRequest(data []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	switch r.Op {
	case OpSetOutput:
		if r.Name == "" {
			return r, fmt.Errorf("%w: %s needs a name", ErrBadRequest, r.Op)
		}
	case OpSetSensorMode:
		if _, err := registry.ParseMode(r.Mode); err != nil {
			return r, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	case OpRegisterTimer:
		if r.Event == "" || r.Seconds < 0 {
			return r, fmt.Errorf("%w: %s needs an event and a non-negative interval", ErrBadRequest, r.Op)
		}
		if r.Seconds >= maxTimerSeconds {
			return r, fmt.Errorf("%w: %s interval %gs too long", ErrBadRequest, r.Op, r.Seconds)
		}
	case OpSetAllOutputs, OpSetSensorActive, OpZeroSensors, OpIncrementSensors, OpSetLEDs:
	default:
		return r, fmt.Errorf("%w: unknown op %q", ErrBadRequest, r.Op)
	}
	return r, nil
}

// Interval returns the timer interval of a register_timer request.
func (r Request) Interval() time.Duration {
	return time.Duration(r.Seconds * float64(time.Second))
}
