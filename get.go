package spaziale

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// SerialNumber reads the board serial number (up to 20 characters, two
// per register, high byte first).
func (m *Machine) SerialNumber() (string, error) {
	data, err := m.readRegister(points[pointSerialNumber])
	if err != nil {
		return "", errors.Wrap(err, "read serial number")
	}
	return byte2String(data), nil
}

// FirmwareVersion reads the firmware version as "major.minor".
func (m *Machine) FirmwareVersion() (string, error) {
	word, err := m.readWord(points[pointFirmwareVersion])
	if err != nil {
		return "", errors.Wrap(err, "read firmware version")
	}
	return fmt.Sprintf("%d.%d", word>>8, word&0xFF), nil
}

// GroupCount reads the number of brewing groups fitted to the machine.
// The register is read fresh on every call; Connect keeps its own probed
// copy for argument validation.
func (m *Machine) GroupCount() (int, error) {
	groups, err := m.readGroupCount()
	if err != nil {
		return 0, err
	}
	return int(groups), nil
}

// Blocked reports whether the machine is in its blocked state.
func (m *Machine) Blocked() (bool, error) {
	word, err := m.readWord(points[pointMachineBlocked])
	if err != nil {
		return false, errors.Wrap(err, "read blocked flag")
	}
	return word != 0, nil
}

// GroupSelection reads the selection/delivery status of a group.
func (m *Machine) GroupSelection(group int) (Selection, error) {
	if err := m.checkGroup(group); err != nil {
		return 0, err
	}
	word, err := m.readWord(groupRegister(pointGroupSelection, group))
	if err != nil {
		return 0, errors.Wrapf(err, "read group %d selection", group)
	}
	return Selection(word), nil
}

// SensorFault reports whether the group's volumetric sensor is faulted.
func (m *Machine) SensorFault(group int) (bool, error) {
	if err := m.checkGroup(group); err != nil {
		return false, err
	}
	word, err := m.readWord(groupRegister(pointSensorFault, group))
	if err != nil {
		return false, errors.Wrapf(err, "read group %d sensor fault", group)
	}
	return word != 0, nil
}

// PurgeCountdown returns the time left until the group purges automatically.
func (m *Machine) PurgeCountdown(group int) (time.Duration, error) {
	if err := m.checkGroup(group); err != nil {
		return 0, err
	}
	word, err := m.readWord(groupRegister(pointPurgeCountdown, group))
	if err != nil {
		return 0, errors.Wrapf(err, "read group %d purge countdown", group)
	}
	return time.Duration(word) * time.Second, nil
}

// GroupBusy reports whether a delivery or purge is in progress on the group.
func (m *Machine) GroupBusy(group int) (bool, error) {
	selection, err := m.GroupSelection(group)
	if err != nil {
		return false, err
	}
	return selection.Active(), nil
}

// WaitUntilGroupFree polls the group's selection register every pollEvery
// until no delivery or purge is active, the context is done, or a read
// fails. Commands themselves never wait; this is the polling the command
// documentation asks callers to do, packaged up.
func (m *Machine) WaitUntilGroupFree(ctx context.Context, group int, pollEvery time.Duration) error {
	if pollEvery <= 0 {
		pollEvery = 1 * time.Second
	}
	for {
		busy, err := m.GroupBusy(group)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		delay := pollEvery
		if deadline, ok := ctx.Deadline(); ok {
			// no point sleeping past the deadline
			delay = min(delay, time.Until(deadline))
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
