package gpio

import (
	"fmt"
	"sort"

	"github.com/sweeney/alarmd/internal/registry"
)

// FakePins is a test double for the pin backend. Levels are raw physical
// levels keyed by pin number; unset pins read low.
type FakePins struct {
	Levels map[int]bool

	// Writes records every WriteBit in order.
	Writes []PinWrite

	// Reads counts ReadBit calls.
	Reads int

	// ReadError, if set, will be returned by ReadBit.
	ReadError error

	// WriteError, if set, will be returned by WriteBit.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// PinWrite is one recorded pin write.
type PinWrite struct {
	Pin   int
	Level bool
}

// NewFakePins creates a FakePins with all lines low.
func NewFakePins() *FakePins {
	return &FakePins{Levels: make(map[int]bool)}
}

// Set drives a simulated line to a raw level.
func (f *FakePins) Set(pin int, level bool) {
	f.Levels[pin] = level
}

// ReadBit returns the scripted raw level.
func (f *FakePins) ReadBit(a registry.Address) (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	f.Reads++
	return f.Levels[a.Pin], nil
}

// WriteBit records the write and updates the level.
func (f *FakePins) WriteBit(a registry.Address, level bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, PinWrite{Pin: a.Pin, Level: level})
	f.Levels[a.Pin] = level
	return nil
}

// Close marks the fake as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// FakePorts is a test double for a register-port device.
type FakePorts struct {
	Bytes map[int]uint8

	// Reads records the port of every ReadPort in order.
	Reads []int

	// Writes records every WritePort in order.
	Writes []PortWrite

	// ReadError, if set, will be returned by ReadPort.
	ReadError error

	// WriteError, if set, will be returned by WritePort.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// PortWrite is one recorded port write.
type PortWrite struct {
	Port  int
	Value uint8
}

// NewFakePorts creates a FakePorts with every port reading zero.
func NewFakePorts() *FakePorts {
	return &FakePorts{Bytes: make(map[int]uint8)}
}

// ReadPort returns the current byte of a port.
func (f *FakePorts) ReadPort(port int) (uint8, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	f.Reads = append(f.Reads, port)
	return f.Bytes[port], nil
}

// WritePort records the write and updates the byte.
func (f *FakePorts) WritePort(port int, v uint8) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, PortWrite{Port: port, Value: v})
	f.Bytes[port] = v
	return nil
}

// Close marks the fake as closed.
func (f *FakePorts) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded accesses, keeping port contents.
func (f *FakePorts) Reset() {
	f.Reads = nil
	f.Writes = nil
	f.ReadError = nil
	f.WriteError = nil
	f.Closed = false
}

// String lists the port bytes, for test failure messages.
func (f *FakePorts) String() string {
	ports := make([]int, 0, len(f.Bytes))
	for p := range f.Bytes {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	s := ""
	for _, p := range ports {
		s += fmt.Sprintf("[%d]=0x%02x ", p, f.Bytes[p])
	}
	return s
}
