package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sweeney/alarmd/internal/config"
	"github.com/sweeney/alarmd/internal/gpio"
	"github.com/sweeney/alarmd/internal/logging"
	"github.com/sweeney/alarmd/internal/registry"
)

// app carries the global flags and the seams tests replace.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	debug      bool
	emulate    bool

	openBackend func(cfg config.Config, reg *registry.Registry, emulate bool) (gpio.Backend, error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "alarmd",
		Short:         "Alarm sensor and siren daemon",
		Long:          `alarmd scans the alarm sensors, drives the relays and publishes events for the alarm state machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (built-in defaults if empty)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log at debug level")
	root.PersistentFlags().BoolVar(&a.emulate, "emulate", false, "Use simulated hardware")

	root.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newCommandsCmd(a),
		newValuesCmd(a),
		newSetCmd(a, "set", true),
		newSetCmd(a, "reset", false),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	if a.configPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(a.configPath)
}

func (a *app) logger() *slog.Logger {
	return logging.NewWriter(a.errOut, logging.Level(a.debug))
}
