package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewSharesStateBetweenSameNamedSensors(t *testing.T) {
	r, err := New([]Spec{
		{PCB: "S02", Name: "Entrance", Function: Sensor, Active: true, Mode: Active, Address: Address{Pin: 7}},
		{PCB: "S11", Name: "Entrance", Function: Sensor, Address: Address{Pin: 27}},
		{PCB: "S16", Name: "Kitchen", Function: Sensor, Mode: Delayed, Address: Address{Pin: 24}},
		{PCB: "A1", Name: "Siren", Function: Relay, Address: Address{Pin: 5}},
	})
	require.NoError(t, err)

	sensors := r.Sensors()
	require.Len(t, sensors, 3)
	assert.Same(t, sensors[0].State, sensors[1].State)
	assert.NotSame(t, sensors[0].State, sensors[2].State)

	st, err := r.Sensor("Entrance")
	require.NoError(t, err)
	assert.True(t, st.Active, "first row wins")
	assert.Equal(t, Active, st.Mode)

	assert.Equal(t, []string{"Entrance", "Kitchen"}, r.SensorNames())
	assert.Equal(t, 4, r.Len())
	assert.Nil(t, r.Relays()[0].State)
}

func TestNewSkipsSparesFromScanLists(t *testing.T) {
	r, err := New(DefaultPinTable())
	require.NoError(t, err)

	for _, b := range r.Sensors() {
		assert.NotEqual(t, Spare, b.Function, b.Name)
	}
	for _, b := range r.Relays() {
		assert.Equal(t, Relay, b.Function, b.Name)
	}
	assert.Equal(t, 20, r.Len())
	assert.Len(t, r.Sensors(), 13)
	assert.Len(t, r.Relays(), 4)
}

func TestNewRejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
	}{
		{"empty name", []Spec{{PCB: "S1", Function: Sensor}}},
		{"duplicate relay", []Spec{
			{Name: "Siren", Function: Relay},
			{Name: "Siren", Function: Relay},
		}},
		{"duplicate spare", []Spec{
			{Name: "X", Function: Spare},
			{Name: "X", Function: Spare},
		}},
		{"bad mode", []Spec{{Name: "Door", Function: Sensor, Mode: Mode(7)}}},
		{"bad function", []Spec{{Name: "Door", Function: Function(9)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.specs)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPortTableLoads(t *testing.T) {
	r, err := New(DefaultPortTable())
	require.NoError(t, err)

	siren, err := r.Relay("Siren")
	require.NoError(t, err)
	assert.True(t, siren.Address.ActiveLow)
	assert.Equal(t, PortB, siren.Address.Port)
	assert.True(t, r.HasRelay("Led1"))
	assert.True(t, r.HasRelay("Led2"))
}

func TestLookupUnknown(t *testing.T) {
	r, err := New([]Spec{{Name: "Door", Function: Sensor}})
	require.NoError(t, err)

	_, err = r.Sensor("Window")
	assert.ErrorIs(t, err, ErrUnknownBit)
	_, err = r.Relay("Door")
	assert.ErrorIs(t, err, ErrUnknownBit, "sensor names are not relay names")
	_, err = r.SensorValue("Window")
	assert.ErrorIs(t, err, ErrUnknownBit)
	assert.ErrorIs(t, r.SetActive("Window", true), ErrUnknownBit)
}

func TestSetActiveAndMode(t *testing.T) {
	r, err := New([]Spec{
		{Name: "Door", Function: Sensor, Mode: Active},
		{Name: "Window", Function: Sensor, Mode: Active},
	})
	require.NoError(t, err)

	require.NoError(t, r.SetActive("Door", true))
	door, _ := r.Sensor("Door")
	window, _ := r.Sensor("Window")
	assert.True(t, door.Active)
	assert.False(t, window.Active)

	require.NoError(t, r.SetActive(All, true))
	assert.True(t, window.Active)

	require.NoError(t, r.SetActive("*", false))
	assert.False(t, door.Active)
	assert.False(t, window.Active)

	require.NoError(t, r.SetMode("Window", Delayed))
	assert.Equal(t, Delayed, window.Mode)
	assert.Equal(t, Active, door.Mode)

	assert.ErrorIs(t, r.SetMode("Door", Mode(-1)), ErrInvalidMode)
}

func TestSensorValueAnyBit(t *testing.T) {
	r, err := New([]Spec{
		{Name: "Entrance", Function: Sensor},
		{Name: "Entrance", Function: Sensor},
	})
	require.NoError(t, err)

	v, err := r.SensorValue("Entrance")
	require.NoError(t, err)
	assert.False(t, v)

	r.Sensors()[1].Value = true
	v, err = r.SensorValue("Entrance")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestArmed(t *testing.T) {
	assert.False(t, (&SensorState{Active: true, Mode: Inactive}).Armed())
	assert.False(t, (&SensorState{Active: false, Mode: Active}).Armed())
	assert.True(t, (&SensorState{Active: true, Mode: Delayed}).Armed())
}

func TestSpecYAML(t *testing.T) {
	src := `
- pcb: S02
  name: Entrance
  function: sensor
  pin: 7
  active_low: true
  log: true
  active: true
  mode: delayed
- pcb: OUT0
  name: Siren
  function: relay
  port: 1
  mask: 1
`
	var specs []Spec
	require.NoError(t, yaml.Unmarshal([]byte(src), &specs))
	require.Len(t, specs, 2)

	assert.Equal(t, Spec{
		PCB: "S02", Name: "Entrance", Function: Sensor, Log: true, Active: true, Mode: Delayed,
		Address: Address{Pin: 7, ActiveLow: true},
	}, specs[0])
	assert.Equal(t, Relay, specs[1].Function)
	assert.Equal(t, Address{Port: 1, Mask: 1}, specs[1].Address)
}

func TestSpecYAMLRejectsUnknownMode(t *testing.T) {
	var specs []Spec
	err := yaml.Unmarshal([]byte("- name: X\n  mode: sometimes\n"), &specs)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "pin 7 (active-low)", Address{Pin: 7, ActiveLow: true}.String())
	assert.Equal(t, "port 1 mask 0x04", Address{Port: 1, Mask: 4}.String())
}
