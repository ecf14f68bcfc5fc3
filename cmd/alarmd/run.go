package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/alarmd/internal/config"
	"github.com/sweeney/alarmd/internal/gpio"
	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/metrics"
	"github.com/sweeney/alarmd/internal/mqtt"
	"github.com/sweeney/alarmd/internal/output"
	"github.com/sweeney/alarmd/internal/status"
	"github.com/sweeney/alarmd/internal/web"
)

// controlQueueSize bounds the control requests waiting for the next tick.
const controlQueueSize = 64

func newRunCmd(a *app) *cobra.Command {
	var (
		tick      time.Duration
		heartbeat time.Duration
		broker    string
		httpAddr  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sensor loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("tick") {
				cfg.Tick = tick
			}
			if flags.Changed("heartbeat") {
				cfg.Heartbeat = heartbeat
			}
			if flags.Changed("broker") {
				cfg.MQTT.Broker = broker
			}
			if flags.Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", logic.DefaultTick, "Idle sleep between sensor scans")
	cmd.Flags().DurationVar(&heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	cmd.Flags().StringVar(&broker, "broker", "", "MQTT broker address (empty to disable)")
	cmd.Flags().StringVar(&httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	return cmd
}

func (a *app) run(ctx context.Context, cfg config.Config) error {
	log := a.logger()

	hw, err := a.openHardware(cfg, log)
	if err != nil {
		return err
	}
	defer hw.Close()

	if err := hw.out.SetAll(true); err != nil {
		return fmt.Errorf("initialise outputs: %w", err)
	}

	markers, closeMarkers := openMarkers(cfg.Markers)
	defer closeMarkers()

	m := metrics.New()
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		Backend:     cfg.Hardware.Backend,
		MarkerStore: cfg.Markers.Store,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	requests := make(chan mqtt.Request, controlQueueSize)
	var (
		publisher  mqtt.Publisher        = nopPublisher{}
		mqttStatus mqtt.ConnectionStatus = nopPublisher{}
	)
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:             cfg.MQTT.Broker,
			ClientID:           cfg.MQTT.ClientID,
			Logger:             log,
			OnRequest:          enqueueRequest(requests, log),
			OnConnectionChange: tracker.SetMQTTConnected,
		})
		if err != nil {
			log.Warn("mqtt unavailable, events will not be published", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			publisher, mqttStatus = p, p
			defer p.Close()
		}
	}

	d := &daemon{
		out:        hw.out,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		requests:   requests,
		heartbeat:  cfg.Heartbeat,
		now:        time.Now,
		log:        log,
	}
	d.eng = logic.NewEngine(hw.reg, hw.hal, hw.out, markers, logic.Options{
		Tick:       cfg.Tick,
		Commands:   cfg.LogicCommands(),
		Logger:     log,
		Recorder:   m,
		BeforeTick: d.beforeTick,
	})

	d.publishSystem("STARTUP", "")

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, m.Handler(), web.Commands{
			Store: markers.Commands,
			List:  cfg.LogicCommands(),
		})
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case s := <-sigCh:
			cancel(shutdownSignal{s})
		case <-ctx.Done():
		}
	}()

	log.Info("started",
		"backend", cfg.Hardware.Backend,
		"markers", cfg.Markers.Store,
		"sensors", len(hw.reg.SensorNames()),
		"relays", len(hw.reg.Relays()),
		"tick", cfg.Tick,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.Heartbeat)

	return d.loop(ctx)
}

// enqueueRequest hands control requests from the MQTT goroutine to the loop.
func enqueueRequest(ch chan<- mqtt.Request, log *slog.Logger) func(mqtt.Request) {
	return func(r mqtt.Request) {
		select {
		case ch <- r:
		default:
			log.Warn("control queue full, request dropped", "op", r.Op)
		}
	}
}

// shutdownSignal is the cancel cause recorded when a signal stops the loop.
type shutdownSignal struct {
	sig os.Signal
}

func (s shutdownSignal) Error() string {
	return "received " + s.sig.String()
}

func shutdownReason(ctx context.Context) string {
	var s shutdownSignal
	if !errors.As(context.Cause(ctx), &s) {
		return "CANCELLED"
	}
	switch s.sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

type nopPublisher struct{}

func (nopPublisher) Publish(mqtt.EventMessage) error     { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (nopPublisher) Close() error                         { return nil }
func (nopPublisher) IsConnected() bool                    { return false }

// daemon connects the engine to the publisher, the status tracker and the
// control queue. Everything here runs on the loop goroutine.
type daemon struct {
	eng        *logic.Engine
	out        *output.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	requests   <-chan mqtt.Request
	heartbeat  time.Duration
	now        func() time.Time
	log        *slog.Logger

	lastHeartbeat time.Time
}

// loop yields events until ctx is cancelled or the hardware fails.
func (d *daemon) loop(ctx context.Context) error {
	d.lastHeartbeat = d.now()
	for {
		ev, err := d.eng.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				reason := shutdownReason(ctx)
				d.log.Info("shutting down", "reason", reason)
				d.publishSystem("SHUTDOWN", reason)
				return nil
			}
			return err
		}
		d.handleEvent(ev)
	}
}

func (d *daemon) handleEvent(ev logic.Event) {
	t := d.now()
	pending := d.eng.Pending()
	d.log.Info("event", "event", ev, "pending", pending)
	d.tracker.RecordEvent(string(ev), t)
	if err := d.publisher.Publish(mqtt.EventMessage{Timestamp: t, Event: ev, Pending: pending}); err != nil {
		d.log.Warn("publish event", "event", ev, "error", err)
	}
}

// beforeTick applies queued control requests, refreshes the status snapshot
// and sends the heartbeat when due.
func (d *daemon) beforeTick(ctx context.Context) error {
	for drained := false; !drained; {
		select {
		case r := <-d.requests:
			if err := d.apply(ctx, r); err != nil {
				if errors.Is(err, gpio.ErrHardware) {
					return err
				}
				d.log.Warn("control request rejected", "op", r.Op, "name", r.Name, "error", err)
			}
		default:
			drained = true
		}
	}

	d.tracker.UpdateRegistry(d.eng.Registry(), d.eng.Pending())
	d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())

	t := d.now()
	if d.heartbeat > 0 && t.Sub(d.lastHeartbeat) >= d.heartbeat {
		d.lastHeartbeat = t
		if net := readNetworkInfo(); net != nil {
			d.tracker.SetNetwork(net)
		}
		d.log.Info("heartbeat", "pending", d.eng.Pending())
		d.publishSystem("HEARTBEAT", "")
	}
	return nil
}

func (d *daemon) publishSystem(event, reason string) {
	snap := d.tracker.Snapshot()
	err := d.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   event != "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		d.log.Warn("publish system event", "event", event, "error", err)
		return
	}
	d.log.Debug("published system event", "event", event)
}
