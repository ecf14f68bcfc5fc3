// Command alarmd samples the alarm sensors, drives the sirens and panel LEDs,
// and publishes the events that feed the alarm state machine.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr, openBackend: openBackend}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
