package spaziale

import "time"

type Option func(*Machine)

// WithBaudRate Set the baud rate of the serial port
func WithBaudRate(baudRate int) Option {
	return func(m *Machine) {
		m.baudRate = baudRate
	}
}

// WithDataBits Set the data bits of the serial port
func WithDataBits(dataBits int) Option {
	return func(m *Machine) {
		m.dataBits = dataBits
	}
}

// WithParity Set the parity of the serial port (N, E, O)
func WithParity(parity string) Option {
	return func(m *Machine) {
		m.parity = parity
	}
}

// WithStopBits Set the stop bits of the serial port
func WithStopBits(stopBits int) Option {
	return func(m *Machine) {
		m.stopBits = stopBits
	}
}

// WithSlaveID Set the Modbus node address of the board
func WithSlaveID(slaveID uint8) Option {
	return func(m *Machine) {
		m.slaveID = slaveID
	}
}

// WithTimeout Set the per-request transport timeout
func WithTimeout(timeout time.Duration) Option {
	return func(m *Machine) {
		m.timeout = timeout
	}
}

// WithMaxGroups Set the upper bound accepted from the group count register
/*
	The S50 range tops out at 4 groups, but sister boards report up to 8.
	A count outside 1..maxGroups makes Connect and GroupCount fail with
	ErrProtocol instead of trusting a corrupt register.
*/
func WithMaxGroups(maxGroups uint16) Option {
	return func(m *Machine) {
		m.maxGroups = maxGroups
	}
}

// WithClient Inject the Modbus transport directly, bypassing the serial port
/*
	Connect adopts the injected client instead of opening the port.
	Useful for test doubles and for RTU-over-TCP gateways where the
	caller already owns a connected modbus.Client.
*/
func WithClient(client Client) Option {
	return func(m *Machine) {
		m.injected = client
	}
}
