package logic

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sweeney/alarmd/internal/marker"
	"github.com/sweeney/alarmd/internal/registry"
)

// LED relay names driven by SetLEDs.
const (
	LEDRed   = "Led1"
	LEDGreen = "Led2"
)

// Sampler returns logical levels for a list of addresses.
type Sampler interface {
	ReadBits(addrs []registry.Address) ([]bool, error)
}

// Outputs drives named relays.
type Outputs interface {
	Has(name string) bool
	Set(name string, level bool) error
}

// Markers groups the three marker stores the loop polls or writes.
type Markers struct {
	Commands  marker.Store
	Overrides marker.Store
	Faults    marker.Store
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Tick     time.Duration
	Commands []Command
	Now      func() time.Time
	Sleep    func(ctx context.Context, d time.Duration) error
	Logger   *slog.Logger
	Recorder Recorder

	// BeforeTick runs on the loop goroutine at the top of every pass. It is
	// where requests from other goroutines are applied.
	BeforeTick func(ctx context.Context) error
}

// Engine is the event fusion loop. It owns the registry's mutable state, the
// pending queue and the timer; all methods must be called from one goroutine.
type Engine struct {
	reg      *registry.Registry
	sampler  Sampler
	outputs  Outputs
	commands marker.Store
	policy   *Policy

	cmds       []Command
	tick       time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	log        *slog.Logger
	rec        Recorder
	beforeTick func(ctx context.Context) error

	queue *eventStack
	timer Timer
	addrs []registry.Address

	ledGreen bool
	ledRed   bool
	flash    bool
}

// NewEngine builds a loop over reg. outputs may be nil when no LEDs are
// driven. Nil marker stores default to empty in-memory ones.
func NewEngine(reg *registry.Registry, sampler Sampler, outputs Outputs, m Markers, opts Options) *Engine {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Commands == nil {
		opts.Commands = DefaultCommands()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if m.Commands == nil {
		m.Commands = marker.NewMemory()
	}
	if m.Overrides == nil {
		m.Overrides = marker.NewMemory()
	}
	if m.Faults == nil {
		m.Faults = marker.NewMemory()
	}

	addrs := make([]registry.Address, len(reg.Sensors()))
	for i, b := range reg.Sensors() {
		addrs[i] = b.Address
	}

	return &Engine{
		reg:        reg,
		sampler:    sampler,
		outputs:    outputs,
		commands:   m.Commands,
		policy:     NewPolicy(reg, m.Overrides, m.Faults, opts.Logger, opts.Recorder),
		cmds:       opts.Commands,
		tick:       opts.Tick,
		now:        opts.Now,
		sleep:      opts.Sleep,
		log:        opts.Logger,
		rec:        opts.Recorder,
		beforeTick: opts.BeforeTick,
		queue:      newEventStack(reg.Len() + 10),
		addrs:      addrs,
	}
}

// Next blocks until an event is available and returns it. Per pass it drains
// the pending queue, then checks command markers, then the timer, then scans
// the sensors; with nothing to report it sleeps one tick. Raised sensor events
// are queued in table order and therefore returned last-scanned-first.
//
// Next returns an error only for hardware or configuration failures, or when
// ctx is cancelled during the idle sleep.
func (e *Engine) Next(ctx context.Context) (Event, error) {
	for {
		if e.beforeTick != nil {
			if err := e.beforeTick(ctx); err != nil {
				return "", err
			}
		}
		// LEDs are written before the queue drain, so a pass that returns a
		// queued event still advances the flash phase.
		if err := e.driveLEDs(); err != nil {
			return "", err
		}
		e.rec.Tick()

		if ev, ok := e.queue.pop(); ok {
			e.rec.Event(ev)
			return ev, nil
		}

		if ev, ok := e.checkCommands(ctx); ok {
			e.rec.Event(ev)
			return ev, nil
		}

		if ev, ok := e.timer.Expired(e.now()); ok {
			e.log.Debug("timer elapsed", "event", ev)
			if err := e.queue.push(ev); err != nil {
				return "", err
			}
			continue
		}

		raised, err := e.scan(ctx)
		if err != nil {
			return "", err
		}
		if raised > 0 {
			continue
		}

		if err := e.sleep(ctx, e.tick); err != nil {
			return "", err
		}
	}
}

// Commands are returned directly, never queued.
func (e *Engine) checkCommands(ctx context.Context) (Event, bool) {
	for _, c := range e.cmds {
		ok, err := e.commands.Exists(ctx, c.Symbol)
		if err != nil {
			e.log.Warn("command check failed", "command", c.Symbol, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if err := e.commands.Remove(ctx, c.Symbol); err != nil {
			e.log.Warn("consume command marker", "command", c.Symbol, "error", err)
		}
		e.log.Info("command", "name", c.Name)
		return c.Event(), true
	}
	return "", false
}

func (e *Engine) scan(ctx context.Context) (int, error) {
	values, err := e.sampler.ReadBits(e.addrs)
	if err != nil {
		return 0, err
	}

	var (
		raised  int
		trigger []string
	)
	for i, b := range e.reg.Sensors() {
		ev, v, err := e.policy.Evaluate(ctx, b, values[i])
		if err != nil {
			return 0, err
		}
		switch {
		case v == VerdictRaised:
			if err := e.queue.push(ev); err != nil {
				return 0, err
			}
			raised++
			trigger = append(trigger, b.Name)
		case v.Suppressed():
			e.rec.Suppressed(b.Name, v)
			if v != VerdictDisabled || b.LogWhenDisabled {
				trigger = append(trigger, b.Name+" ("+v.String()+")")
			}
		}
	}
	if len(trigger) > 0 {
		e.log.Warn("trigger", "sensors", strings.Join(trigger, " "))
	}
	return raised, nil
}

// Led1 follows the red flag and Led2 the green one: flashing while set,
// steady on otherwise.
func (e *Engine) driveLEDs() error {
	if e.outputs == nil {
		return nil
	}
	for _, led := range []struct {
		name string
		on   bool
	}{{LEDRed, e.ledRed}, {LEDGreen, e.ledGreen}} {
		if !e.outputs.Has(led.name) {
			continue
		}
		level := true
		if led.on {
			level = e.flash
		}
		if err := e.outputs.Set(led.name, level); err != nil {
			return err
		}
	}
	e.flash = !e.flash
	return nil
}

// RegisterTimer arms the single timer; a pending registration is replaced.
func (e *Engine) RegisterTimer(interval time.Duration, ev Event) {
	e.log.Debug("register timer", "interval", interval, "event", ev)
	e.timer.Register(e.now(), interval, ev)
}

// TimerPending returns the armed timer event and deadline.
func (e *Engine) TimerPending() (Event, time.Time, bool) {
	return e.timer.Pending()
}

// SetLEDs selects which indicator LEDs flash.
func (e *Engine) SetLEDs(green, red bool) {
	e.ledGreen = green
	e.ledRed = red
}

// SetSensorActive arms or disarms one sensor, or all of them for registry.All.
func (e *Engine) SetSensorActive(name string, active bool) error {
	return e.reg.SetActive(name, active)
}

// SetSensorMode sets the event variant of one sensor, or all of them.
func (e *Engine) SetSensorMode(name string, mode registry.Mode) error {
	return e.reg.SetMode(name, mode)
}

// ZeroSensors resets every fault count and removes every fault marker.
func (e *Engine) ZeroSensors(ctx context.Context) {
	e.policy.ZeroSensors(ctx)
}

// IncrementSensors counts every armed sensor that is currently high.
func (e *Engine) IncrementSensors(ctx context.Context) {
	e.policy.IncrementSensors(ctx)
}

// Registry returns the table the engine owns.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Pending returns the number of queued events.
func (e *Engine) Pending() int {
	return e.queue.len()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
