package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Ready         bool           `json:"ready"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Sensors       []SensorJSON   `json:"sensors"`
	Outputs       []OutputJSON   `json:"outputs"`
	LastEvent     *LastEventJSON `json:"last_event,omitempty"`
	Pending       int            `json:"pending"`
	Counts        map[string]int `json:"event_counts"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// SensorJSON is the JSON representation of one sensor.
type SensorJSON struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Active     bool   `json:"active"`
	Mode       string `json:"mode"`
	FaultCount int    `json:"fault_count"`
}

// OutputJSON is the JSON representation of one relay.
type OutputJSON struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// LastEventJSON is the most recent event yielded by the loop.
type LastEventJSON struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Backend     string `json:"backend"`
	MarkerStore string `json:"marker_store"`
}

// Bit renders a level the way the sensor query endpoint does.
func Bit(level bool) int {
	if level {
		return 1
	}
	return 0
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Sensors:       make([]SensorJSON, 0, len(snap.Sensors)),
		Outputs:       make([]OutputJSON, 0, len(snap.Outputs)),
		Pending:       snap.Pending,
		Counts:        snap.Counts,
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Backend:     snap.Config.Backend,
			MarkerStore: snap.Config.MarkerStore,
		},
	}
	if inner.Counts == nil {
		inner.Counts = map[string]int{}
	}
	for _, s := range snap.Sensors {
		inner.Sensors = append(inner.Sensors, SensorJSON{
			Name:       s.Name,
			Value:      Bit(s.Value),
			Active:     s.Active,
			Mode:       s.Mode,
			FaultCount: s.FaultCount,
		})
	}
	for _, o := range snap.Outputs {
		inner.Outputs = append(inner.Outputs, OutputJSON{Name: o.Name, Value: Bit(o.Level)})
	}
	if snap.LastEvent != "" {
		inner.LastEvent = &LastEventJSON{
			Event:     snap.LastEvent,
			Timestamp: snap.LastEventAt.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
