package spaziale

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation is invoked without an open session.
	ErrNotConnected = errors.New("spaziale: not connected")
	// ErrCommunication covers transport failures: timeout, CRC error, no response.
	ErrCommunication = errors.New("spaziale: communication failure")
	// ErrInvalidGroup is returned for a group index outside 1..GroupCount.
	ErrInvalidGroup = errors.New("spaziale: group out of range")
	// ErrInvalidDoseSet is returned for a dose set other than stop, set 1 or set 2.
	ErrInvalidDoseSet = errors.New("spaziale: invalid dose set")
	// ErrProtocol is returned when the board answers with something structurally
	// wrong for the register: short response, implausible group count.
	ErrProtocol = errors.New("spaziale: malformed response")
)

// CommError wraps a transport failure with the request that hit it.
// It matches ErrCommunication under errors.Is and unwraps to the
// transport's own error, so the original cause stays reachable.
type CommError struct {
	Op   string
	Addr uint16
	Err  error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("%s register %d: %v", e.Op, e.Addr, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

func (e *CommError) Is(target error) bool { return target == ErrCommunication }
