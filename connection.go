package spaziale

import (
	"encoding/binary"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
)

// Client is the transport the Machine talks through. goburrow's
// modbus.Client satisfies it.
type Client interface {
	ReadHoldingRegisters(address, quantity uint16) (results []byte, err error)
	ReadCoils(address, quantity uint16) (results []byte, err error)
	WriteSingleRegister(address, value uint16) (results []byte, err error)
	WriteSingleCoil(address, value uint16) (results []byte, err error)
}

// Machine is a client for the La Spaziale S50 QSS controller board over
// Modbus RTU. A Machine owns one exclusive session; it performs no
// internal locking, so concurrent calls must be serialized by the caller.
type Machine struct {
	com       string
	baudRate  int
	dataBits  int
	parity    string
	stopBits  int
	slaveID   uint8
	timeout   time.Duration
	maxGroups uint16

	injected Client

	handler *modbus.RTUClientHandler
	client  Client
	groups  uint16
}

// New configures a Machine on the given serial port with the board's
// factory settings (9600 8N1, node address 1). It does not open the port.
func New(com string, opts ...Option) *Machine {
	m := &Machine{
		com:       com,
		baudRate:  9600,
		dataBits:  8,
		parity:    "N",
		stopBits:  1,
		slaveID:   1,
		timeout:   1 * time.Second,
		maxGroups: 8,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens the serial session and probes the board for its group
// count, which later validates per-group arguments. Calling Connect on
// an already connected Machine is a no-op.
func (m *Machine) Connect() error {
	if m.client != nil {
		return nil
	}
	if m.injected != nil {
		m.client = m.injected
	} else {
		handler := modbus.NewRTUClientHandler(m.com)
		handler.BaudRate = m.baudRate
		handler.DataBits = m.dataBits
		handler.Parity = m.parity
		handler.StopBits = m.stopBits
		handler.SlaveId = m.slaveID
		handler.Timeout = m.timeout
		if e := handler.Connect(); e != nil {
			return errors.Wrap(e, "open serial port")
		}
		m.handler = handler
		m.client = modbus.NewClient(handler)
	}

	groups, err := m.readGroupCount()
	if err != nil {
		m.drop()
		return errors.Wrap(err, "probe group count")
	}
	m.groups = groups
	return nil
}

// Close releases the session. Closing an already closed Machine returns
// nil, so it is safe to defer unconditionally.
func (m *Machine) Close() error {
	if m.client == nil {
		return nil
	}
	return m.drop()
}

func (m *Machine) drop() error {
	m.client = nil
	m.groups = 0
	if m.handler == nil {
		return nil
	}
	h := m.handler
	m.handler = nil
	return h.Close()
}

// checkGroup validates a 1-based group index against the count probed at
// Connect. Ordering matters: without a session the count is unknown, so
// ErrNotConnected wins over ErrInvalidGroup.
func (m *Machine) checkGroup(group int) error {
	if m.client == nil {
		return ErrNotConnected
	}
	if group < 1 || group > int(m.groups) {
		return errors.Wrapf(ErrInvalidGroup, "group %d not in 1..%d", group, m.groups)
	}
	return nil
}

// readRegister issues one read for the register and checks the response
// length. All getters go through here.
func (m *Machine) readRegister(reg register) ([]byte, error) {
	if m.client == nil {
		return nil, ErrNotConnected
	}
	var data []byte
	var err error
	switch reg.Kind {
	case RegisterKindCoil:
		data, err = m.client.ReadCoils(reg.Addr, reg.Quantity)
	default:
		data, err = m.client.ReadHoldingRegisters(reg.Addr, reg.Quantity)
	}
	if err != nil {
		return nil, &CommError{Op: "read", Addr: reg.Addr, Err: err}
	}
	if want := reg.byteLength(); len(data) != want {
		return nil, errors.Wrapf(ErrProtocol, "register %d: want %d bytes, got %d", reg.Addr, want, len(data))
	}
	return data, nil
}

// readWord reads a single-register point.
func (m *Machine) readWord(reg register) (uint16, error) {
	data, err := m.readRegister(reg)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(data), nil
}

// writeRegister issues one single-register (or single-coil) write. All
// commands go through here. The board acknowledges the frame and nothing
// more; completion of the physical action is never awaited.
func (m *Machine) writeRegister(reg register, value uint16) error {
	if m.client == nil {
		return ErrNotConnected
	}
	var err error
	switch reg.Kind {
	case RegisterKindCoil:
		_, err = m.client.WriteSingleCoil(reg.Addr, value)
	default:
		_, err = m.client.WriteSingleRegister(reg.Addr, value)
	}
	if err != nil {
		return &CommError{Op: "write", Addr: reg.Addr, Err: err}
	}
	return nil
}

// readGroupCount reads and sanity-checks the group count register.
func (m *Machine) readGroupCount() (uint16, error) {
	word, err := m.readWord(points[pointGroupCount])
	if err != nil {
		return 0, err
	}
	if word == 0 || word > m.maxGroups {
		return 0, errors.Wrapf(ErrProtocol, "group count %d not in 1..%d", word, m.maxGroups)
	}
	return word, nil
}
