package logic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweeney/alarmd/internal/marker"
	"github.com/sweeney/alarmd/internal/registry"
)

// Policy decides whether a high sensor sample raises an event.
type Policy struct {
	reg       *registry.Registry
	overrides marker.Store
	faults    marker.Store
	log       *slog.Logger
	rec       Recorder
}

// NewPolicy returns a policy over reg. overrides holds the user-disable
// markers; faults receives the markers written by IncrementSensors.
func NewPolicy(reg *registry.Registry, overrides, faults marker.Store, log *slog.Logger, rec Recorder) *Policy {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Policy{reg: reg, overrides: overrides, faults: faults, log: log, rec: rec}
}

// Evaluate stores value on b and applies the first matching suppression.
// An unsuppressed trigger bumps the sensor's fault count and returns the
// event for its mode.
func (p *Policy) Evaluate(ctx context.Context, b *registry.Bit, value bool) (Event, Verdict, error) {
	b.Value = value
	if !value {
		return "", VerdictClear, nil
	}
	st := b.State

	if st.FaultCount > AutoDisableThreshold {
		return "", VerdictAutoDisabled, nil
	}
	if !st.Armed() {
		return "", VerdictDisabled, nil
	}
	if p.userDisabled(ctx, b.Name) {
		return "", VerdictUserDisabled, nil
	}

	var ev Event
	switch st.Mode {
	case registry.Active:
		ev = EventActiveSensor
	case registry.Delayed:
		ev = EventDelayedSensor
	default:
		return "", VerdictClear, fmt.Errorf("sensor %q mode %d: %w", b.Name, int(st.Mode), registry.ErrInvalidMode)
	}
	st.FaultCount++
	p.rec.FaultCount(b.Name, st.FaultCount)
	return ev, VerdictRaised, nil
}

// An unreadable override store counts as no override.
func (p *Policy) userDisabled(ctx context.Context, name string) bool {
	ok, err := p.overrides.Exists(ctx, name)
	if err != nil {
		p.log.Warn("override check failed", "sensor", name, "error", err)
		return false
	}
	return ok
}

// ZeroSensors resets every fault count and removes every fault marker.
func (p *Policy) ZeroSensors(ctx context.Context) {
	for _, name := range p.reg.SensorNames() {
		st, _ := p.reg.Sensor(name)
		st.FaultCount = 0
		p.rec.FaultCount(name, 0)
		if err := p.faults.Remove(ctx, name); err != nil {
			p.log.Error("remove fault marker", "sensor", name, "error", err)
		}
	}
}

// IncrementSensors bumps the fault count of every armed sensor that was last
// sampled high and writes its fault marker. A logical sensor counts once even
// when several of its contacts are high.
func (p *Policy) IncrementSensors(ctx context.Context) {
	seen := make(map[string]bool)
	for _, b := range p.reg.Sensors() {
		if !b.Value || !b.State.Armed() || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		b.State.FaultCount++
		p.rec.FaultCount(b.Name, b.State.FaultCount)
		if err := p.faults.Create(ctx, b.Name); err != nil {
			p.log.Error("create fault marker", "sensor", b.Name, "error", err)
		}
	}
}
