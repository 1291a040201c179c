package spaziale

// RegisterKind register kind
type RegisterKind uint8

const (
	RegisterKindHolding RegisterKind = iota // Holding Register (0x03-Read, 0x06-Write single)
	RegisterKindCoil                        // Coil (0x01-Read, 0x05-Write single)
)

// register maps a logical machine point to its Modbus location.
type register struct {
	// address, like 256, represents the 256th register
	Addr uint16
	// quantity, like 10, represents 10 registers
	Quantity uint16
	// register kind, holding register unless stated otherwise
	Kind RegisterKind
}

// byteLength is the response payload size a well-formed read must carry.
func (r register) byteLength() int {
	if r.Kind == RegisterKindCoil {
		return int(r.Quantity+7) / 8
	}
	return int(r.Quantity) * 2
}

// Logical point names of the S50 controller board.
const (
	pointSerialNumber    = "serial_number"
	pointFirmwareVersion = "firmware_version"
	pointGroupSelection  = "group_selection"
	pointSensorFault     = "sensor_fault"
	pointPurgeCountdown  = "purge_countdown"
	pointMachineBlocked  = "machine_blocked"
	pointGroupCount      = "number_of_groups"
	pointGroupCommand    = "group_command"
	pointWaterCommand    = "water_command"
	pointMATCommand      = "mat_command"
)

// points is the fixed register map of the S50 board. Per-group points
// hold the group 1 address; groupRegister applies the per-group offset.
var points = map[string]register{
	pointSerialNumber:    {Addr: 0, Quantity: 10},
	pointFirmwareVersion: {Addr: 11, Quantity: 1},
	pointGroupSelection:  {Addr: 256, Quantity: 1},
	pointSensorFault:     {Addr: 260, Quantity: 1},
	pointPurgeCountdown:  {Addr: 264, Quantity: 1},
	pointMachineBlocked:  {Addr: 269, Quantity: 1},
	pointGroupCount:      {Addr: 270, Quantity: 1},
	pointGroupCommand:    {Addr: 512, Quantity: 1},
	pointWaterCommand:    {Addr: 516, Quantity: 1},
	pointMATCommand:      {Addr: 517, Quantity: 1},
}

// groupRegister resolves a per-group point for a 1-based group index.
// The index must have been validated already.
func groupRegister(name string, group int) register {
	reg := points[name]
	reg.Addr += uint16(group - 1)
	return reg
}
