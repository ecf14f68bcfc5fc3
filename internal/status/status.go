// Package status provides a thread-safe status tracker for the alarm daemon.
// The loop goroutine writes copies of its state here; HTTP handlers and the
// heartbeat read them.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/sweeney/alarmd/internal/registry"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Backend     string
	MarkerStore string
}

// SensorStatus is one logical sensor.
type SensorStatus struct {
	Name       string
	Value      bool
	Active     bool
	Mode       string
	FaultCount int
}

// OutputStatus is one relay.
type OutputStatus struct {
	Name  string
	Level bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Sensors       []SensorStatus
	Outputs       []OutputStatus
	Ready         bool
	LastEvent     string
	LastEventAt   time.Time
	Counts        map[string]int
	Pending       int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Sensor returns the named sensor.
func (s Snapshot) Sensor(name string) (SensorStatus, bool) {
	for _, st := range s.Sensors {
		if st.Name == name {
			return st, true
		}
	}
	return SensorStatus{}, false
}

// EventNames returns the keys of Counts, sorted.
func (s Snapshot) EventNames() []string {
	names := make([]string, 0, len(s.Counts))
	for n := range s.Counts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Counts:    make(map[string]int),
		},
	}
}

// UpdateRegistry copies sensor and relay state out of reg. A sensor is high
// when any of its contacts is. Called from the loop goroutine only.
func (t *Tracker) UpdateRegistry(reg *registry.Registry, pending int) {
	sensors := make([]SensorStatus, 0, len(reg.SensorNames()))
	for _, name := range reg.SensorNames() {
		st, _ := reg.Sensor(name)
		value, _ := reg.SensorValue(name)
		sensors = append(sensors, SensorStatus{
			Name:       name,
			Value:      value,
			Active:     st.Active,
			Mode:       st.Mode.String(),
			FaultCount: st.FaultCount,
		})
	}
	outputs := make([]OutputStatus, 0, len(reg.Relays()))
	for _, b := range reg.Relays() {
		outputs = append(outputs, OutputStatus{Name: b.Name, Level: b.Value})
	}

	t.mu.Lock()
	t.snap.Sensors = sensors
	t.snap.Outputs = outputs
	t.snap.Pending = pending
	t.snap.Ready = true
	t.mu.Unlock()
}

// RecordEvent counts an event yielded by the loop.
func (t *Tracker) RecordEvent(event string, at time.Time) {
	t.mu.Lock()
	t.snap.LastEvent = event
	t.snap.LastEventAt = at
	t.snap.Counts[event]++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = make(map[string]int, len(t.snap.Counts))
	for k, v := range t.snap.Counts {
		s.Counts[k] = v
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
