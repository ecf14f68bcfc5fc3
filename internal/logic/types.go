// Package logic contains the event fusion loop and the per-sensor trigger policy.
// Hardware, markers and outputs are reached through interfaces, and time is
// always injectable: the only blocking call is the idle sleep, which the caller
// may replace.
package logic

import "time"

// Event is the identifier yielded to the external state machine.
type Event string

const (
	EventActiveSensor  Event = "ActiveSensor"
	EventDelayedSensor Event = "DelayedSensor"
)

// AutoDisableThreshold is the fault count above which a sensor stops raising.
const AutoDisableThreshold = 3

// DefaultTick is the idle sleep between sensor scans.
const DefaultTick = time.Second

// Command is an externally triggered event. Its marker key is Symbol.
type Command struct {
	Key    rune
	Name   string
	Symbol string
}

// Event returns the event raised when the command's marker is found.
func (c Command) Event() Event {
	return Event("Cmd" + c.Symbol)
}

// DefaultCommands returns the stock command set in the order they are checked.
func DefaultCommands() []Command {
	return []Command{
		{Key: 'd', Name: "Day arm", Symbol: "DayArm"},
		{Key: 'q', Name: "Quit", Symbol: "Quit"},
		{Key: 'e', Name: "Leave", Symbol: "Leave"},
		{Key: 'i', Name: "Disarm", Symbol: "Disarm"},
	}
}

// Verdict is the outcome of evaluating one sensor sample.
type Verdict int

const (
	VerdictClear Verdict = iota
	VerdictRaised
	VerdictAutoDisabled
	VerdictDisabled
	VerdictUserDisabled
)

func (v Verdict) String() string {
	switch v {
	case VerdictClear:
		return "clear"
	case VerdictRaised:
		return "raised"
	case VerdictAutoDisabled:
		return "auto-disabled"
	case VerdictDisabled:
		return "disabled"
	case VerdictUserDisabled:
		return "user-disabled"
	default:
		return "unknown"
	}
}

// Suppressed reports whether the sensor was high but raised nothing.
func (v Verdict) Suppressed() bool {
	return v >= VerdictAutoDisabled
}

// Recorder observes the loop. Implementations must not block.
type Recorder interface {
	Event(ev Event)
	Suppressed(sensor string, v Verdict)
	FaultCount(sensor string, n int)
	Tick()
}

type nopRecorder struct{}

func (nopRecorder) Event(Event)                {}
func (nopRecorder) Suppressed(string, Verdict) {}
func (nopRecorder) FaultCount(string, int)     {}
func (nopRecorder) Tick()                      {}
