package main

import (
	"context"

	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/mqtt"
	"github.com/sweeney/alarmd/internal/registry"
)

// apply carries out one control request. Unknown names come back as
// registry.ErrUnknownBit; hardware failures wrap gpio.ErrHardware.
func (d *daemon) apply(ctx context.Context, r mqtt.Request) error {
	d.log.Debug("control", "op", r.Op, "name", r.Name)
	switch r.Op {
	case mqtt.OpSetOutput:
		return d.out.Set(r.Name, r.Level)
	case mqtt.OpSetAllOutputs:
		return d.out.SetAll(r.Level)
	case mqtt.OpSetSensorActive:
		return d.eng.SetSensorActive(r.Name, r.Active)
	case mqtt.OpSetSensorMode:
		mode, err := registry.ParseMode(r.Mode)
		if err != nil {
			return err
		}
		return d.eng.SetSensorMode(r.Name, mode)
	case mqtt.OpZeroSensors:
		d.eng.ZeroSensors(ctx)
	case mqtt.OpIncrementSensors:
		d.eng.IncrementSensors(ctx)
	case mqtt.OpRegisterTimer:
		d.eng.RegisterTimer(r.Interval(), logic.Event(r.Event))
	case mqtt.OpSetLEDs:
		d.eng.SetLEDs(r.Green, r.Red)
	default:
		return mqtt.ErrBadRequest
	}
	return nil
}
