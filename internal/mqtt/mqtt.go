// Package mqtt publishes loop events and daemon status, and receives control
// requests for the loop. It is abstracted for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/alarmd/internal/logic"
)

// TopicEvents is the MQTT topic for events yielded by the loop.
const TopicEvents = "alarm/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "alarm/system"

// TopicControl carries control requests from the state machine.
const TopicControl = "alarm/control"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a loop event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event EventMessage) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// EventMessage is one event yielded by the loop.
type EventMessage struct {
	Timestamp time.Time
	Event     logic.Event
	Pending   int // events still queued behind this one
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload contains the event details.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Pending   int    `json:"pending"`
}

// FormatPayload creates the JSON payload for a loop event.
func FormatPayload(event EventMessage) ([]byte, error) {
	payload := Payload{
		Alarm: AlarmPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Event),
			Pending:   event.Pending,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
