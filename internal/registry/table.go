package registry

// DefaultPinTable is the wiring of the Raspberry Pi board, one BCM line per
// bit. Sensors are pulled up and grounded by the contact when triggered, so
// they are active-low.
func DefaultPinTable() []Spec {
	sensor := func(pcb string, bcm int, log bool, name string) Spec {
		return Spec{PCB: pcb, Name: name, Function: Sensor, Log: log, Mode: Active,
			Address: Address{Pin: bcm, ActiveLow: true}}
	}
	spare := func(pcb string, bcm int, name string) Spec {
		return Spec{PCB: pcb, Name: name, Function: Spare, Address: Address{Pin: bcm}}
	}
	relay := func(pcb string, bcm int, name string) Spec {
		return Spec{PCB: pcb, Name: name, Function: Relay, Address: Address{Pin: bcm}}
	}
	return []Spec{
		sensor("S01", 0, false, "SpareSensor1"),
		sensor("S02", 7, true, "Entrance"),
		sensor("S03", 12, false, "SpareSensor3"),
		sensor("S04", 31, false, "SpareSensor4"),
		sensor("S05", 16, false, "SpareSensor5"),
		sensor("S06", 26, false, "SpareSensor6"),
		spare("S07", 21, "SpareSensor7"),
		spare("S08", 20, "SpareSensor8"),
		spare("S09", 17, "SpareSensor9"),
		sensor("S10", 4, false, "SpareSensor10"),
		sensor("S11", 27, true, "Entrance"),
		sensor("S12", 18, false, "SpareSensor11"),
		sensor("S13", 23, false, "SpareSensor12"),
		sensor("S14", 22, false, "SpareSensor13"),
		sensor("S15", 25, false, "SpareSensor14"),
		sensor("S16", 24, true, "Kitchen"),
		relay("A1", 5, "Siren"),
		relay("A2", 6, "SpareActuator1"),
		relay("A3", 13, "SpareActuator2"),
		relay("A4", 19, "SpareActuator3"),
	}
}

// Register-port layout of the parallel I/O card: port A and the two halves
// of port C are inputs, port B drives the relays and panel LEDs.
const (
	PortA = iota
	PortB
	PortCH
	PortCL
)

// DefaultPortTable is the wiring of the parallel I/O card. The main siren
// is driven through an inverting stage and is therefore active-low.
func DefaultPortTable() []Spec {
	sensor := func(pcb string, port int, mask uint8, log bool, name string) Spec {
		return Spec{PCB: pcb, Name: name, Function: Sensor, Log: log, Mode: Active,
			Address: Address{Port: port, Mask: mask}}
	}
	relay := func(pcb string, mask uint8, activeLow bool, name string) Spec {
		return Spec{PCB: pcb, Name: name, Function: Relay,
			Address: Address{Port: PortB, Mask: mask, ActiveLow: activeLow}}
	}
	return []Spec{
		sensor("IN0", PortA, 0x01, true, "Entrance"),
		sensor("IN1", PortA, 0x02, true, "Entrance"),
		sensor("IN2", PortA, 0x04, true, "Kitchen"),
		sensor("IN3", PortA, 0x08, false, "Living"),
		sensor("IN4", PortA, 0x10, false, "Bedroom"),
		sensor("IN5", PortA, 0x20, false, "Balcony"),
		{PCB: "IN6", Name: "SpareA6", Function: Spare, Address: Address{Port: PortA, Mask: 0x40}},
		{PCB: "IN7", Name: "SpareA7", Function: Spare, Address: Address{Port: PortA, Mask: 0x80}},
		sensor("IN8", PortCH, 0x10, false, "Garage"),
		sensor("IN9", PortCH, 0x20, true, "Tamper"),
		sensor("IN10", PortCL, 0x01, false, "Cellar"),
		relay("OUT0", 0x01, true, "Siren"),
		relay("OUT1", 0x02, false, "SmallSiren"),
		relay("OUT2", 0x04, false, "Led1"),
		relay("OUT3", 0x08, false, "Led2"),
		relay("OUT4", 0x10, false, "Strobe"),
	}
}
