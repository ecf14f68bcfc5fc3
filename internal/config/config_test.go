package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/registry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alarmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Tick)
	assert.Equal(t, "/var/spool/alarm/cmd", cfg.Markers.CommandDir)
	assert.Equal(t, logic.DefaultCommands(), cfg.LogicCommands())
	assert.Len(t, cfg.Table(), len(registry.DefaultPinTable()))
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tick: 500ms
http_addr: ":9090"
hardware:
  backend: port
  ports:
    - path: /dev/pbio0a
    - path: /dev/pbio0b
      writable: true
markers:
  store: redis
  redis_addr: "10.0.0.2:6379"
mqtt:
  broker: tcp://broker:1883
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Tick)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.Heartbeat, "unset keys keep their defaults")
	assert.Len(t, cfg.Hardware.Ports, 2)
	assert.True(t, cfg.Hardware.Ports[1].Writable)
	assert.Equal(t, "alarm:", cfg.Markers.RedisPrefix)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Len(t, cfg.Table(), len(registry.DefaultPortTable()))
}

func TestLoadBitTable(t *testing.T) {
	path := writeConfig(t, `
bits:
  - {pcb: IN0, name: Entrance, function: sensor, pin: 7, active_low: true, mode: active, log: true}
  - {pcb: IN1, name: Entrance, function: sensor, pin: 27, active_low: true, mode: active}
  - {pcb: OUT0, name: Siren, function: relay, pin: 5}
commands:
  - {key: a, name: Arm, symbol: Arm}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	table := cfg.Table()
	require.Len(t, table, 3)
	assert.Equal(t, registry.Sensor, table[0].Function)
	assert.Equal(t, 7, table[0].Address.Pin)
	assert.True(t, table[0].Address.ActiveLow)
	assert.True(t, table[0].Log)
	assert.Equal(t, registry.Active, table[1].Mode)
	assert.Equal(t, registry.Relay, table[2].Function)

	assert.Equal(t, []logic.Command{{Key: 'a', Name: "Arm", Symbol: "Arm"}}, cfg.LogicCommands())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "tick: [", "parse config"},
		{"bad mode", "bits:\n  - {name: X, function: sensor, mode: armed}", "invalid activation mode"},
		{"bad function", "bits:\n  - {name: X, function: motor}", "unknown function"},
		{"duplicate relay", "bits:\n  - {name: S, function: relay, pin: 1}\n  - {name: S, function: relay, pin: 2}", "duplicate relay"},
		{"backend", "hardware: {backend: serial}", "unknown hardware.backend"},
		{"store", "markers: {store: etcd}", "unknown markers.store"},
		{"tick", "tick: 0s", "tick must be positive"},
		{"command key", "commands:\n  - {key: ab, symbol: X}", "one character"},
		{"expander table", "hardware: {backend: expander}", "bits is required"},
		{"expander port", "hardware: {backend: expander}\nbits:\n  - {name: X, function: sensor, port: 2, mask: 1}", "ports 0 and 1"},
		{"command dup", "commands:\n  - {key: a, symbol: X}\n  - {key: b, symbol: X}", "duplicate symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBadModeIsErrInvalidMode(t *testing.T) {
	_, err := Load(writeConfig(t, "bits:\n  - {name: X, function: sensor, mode: armed}"))
	assert.ErrorIs(t, err, registry.ErrInvalidMode)
}
