package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/alarmd/internal/registry"
	"github.com/sweeney/alarmd/internal/status"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the bit table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			reg, err := registry.New(cfg.Table())
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func printTable(w io.Writer, reg *registry.Registry) {
	fmt.Fprintf(w, "%-5s %-7s %-14s %-9s %-5s %s\n", "PCB", "KIND", "NAME", "MODE", "ARMED", "ADDRESS")
	for _, b := range reg.Bits() {
		mode, armed := "-", "-"
		if b.State != nil {
			mode = b.State.Mode.String()
			armed = "no"
			if b.State.Active {
				armed = "yes"
			}
		}
		fmt.Fprintf(w, "%-5s %-7s %-14s %-9s %-5s %s\n", b.PCB, b.Function, b.Name, mode, armed, b.Address)
	}
}

func newCommandsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Print the command table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-3s %-7s %-14s %s\n", "KEY", "SYMBOL", "EVENT", "NAME")
			for _, c := range cfg.LogicCommands() {
				fmt.Fprintf(w, "%-3c %-7s %-14s %s\n", c.Key, c.Symbol, c.Event(), c.Name)
			}
			return nil
		},
	}
}

func newValuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "values",
		Short: "Sample every sensor once and print its value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			hw, err := a.openHardware(cfg, a.logger())
			if err != nil {
				return err
			}
			defer hw.Close()

			sensors := hw.reg.Sensors()
			addrs := make([]registry.Address, len(sensors))
			for i, b := range sensors {
				addrs[i] = b.Address
			}
			values, err := hw.hal.ReadBits(addrs)
			if err != nil {
				return fmt.Errorf("read sensors: %w", err)
			}
			for i, b := range sensors {
				b.Value = values[i]
			}

			w := cmd.OutOrStdout()
			for _, name := range hw.reg.SensorNames() {
				v, _ := hw.reg.SensorValue(name)
				fmt.Fprintf(w, "%-14s %d\n", name, status.Bit(v))
			}
			return nil
		},
	}
}

// newSetCmd builds "set" and "reset", which drive one relay high or low.
func newSetCmd(a *app, use string, level bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: fmt.Sprintf("Drive one relay %s", onOff(level)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			hw, err := a.openHardware(cfg, a.logger())
			if err != nil {
				return err
			}
			defer hw.Close()

			if err := hw.out.Set(args[0], level); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], onOff(level))
			return nil
		},
	}
}

func onOff(level bool) string {
	if level {
		return "on"
	}
	return "off"
}
