package spaziale

import "github.com/pkg/errors"

// SendGroupCommand writes a command code to the group's command register.
/*
	The write is fire-and-forget: it returns as soon as the board
	acknowledges the frame, before the physical delivery starts or
	finishes. The board gives no feedback when its firmware ignores a
	command (group already busy, machine blocked); poll GroupSelection
	or PurgeCountdown to observe progress.
*/
func (m *Machine) SendGroupCommand(group int, cmd Command) error {
	if err := m.checkGroup(group); err != nil {
		return err
	}
	if err := m.writeRegister(groupRegister(pointGroupCommand, group), uint16(cmd)); err != nil {
		return errors.Wrapf(err, "send %s to group %d", cmd, group)
	}
	return nil
}

// DeliverSingleShort starts a single short coffee on the group.
func (m *Machine) DeliverSingleShort(group int) error {
	return m.SendGroupCommand(group, CommandSingleShort)
}

// DeliverSingleMedium starts a single medium coffee on the group.
func (m *Machine) DeliverSingleMedium(group int) error {
	return m.SendGroupCommand(group, CommandSingleMedium)
}

// DeliverSingleLong starts a single long coffee on the group.
func (m *Machine) DeliverSingleLong(group int) error {
	return m.SendGroupCommand(group, CommandSingleLong)
}

// DeliverDoubleShort starts a double short coffee on the group.
func (m *Machine) DeliverDoubleShort(group int) error {
	return m.SendGroupCommand(group, CommandDoubleShort)
}

// DeliverDoubleMedium starts a double medium coffee on the group.
func (m *Machine) DeliverDoubleMedium(group int) error {
	return m.SendGroupCommand(group, CommandDoubleMedium)
}

// DeliverDoubleLong starts a double long coffee on the group.
func (m *Machine) DeliverDoubleLong(group int) error {
	return m.SendGroupCommand(group, CommandDoubleLong)
}

// StopDelivery stops the ongoing delivery on the group.
func (m *Machine) StopDelivery(group int) error {
	return m.SendGroupCommand(group, CommandStop)
}

// StartPurge starts a purge cycle on the group.
func (m *Machine) StartPurge(group int) error {
	return m.SendGroupCommand(group, CommandStartPurge)
}

// SendWaterCommand selects a hot-water dose set, or stops the ongoing
// dose with DoseStop. Fire-and-forget, like the group commands.
func (m *Machine) SendWaterCommand(set DoseSet) error {
	if err := checkDoseSet(set); err != nil {
		return err
	}
	if err := m.writeRegister(points[pointWaterCommand], uint16(set)); err != nil {
		return errors.Wrapf(err, "send water %s", set)
	}
	return nil
}

// SendMATCommand selects a MAT (milk and tea) dose set, or stops the
// ongoing dose with DoseStop.
func (m *Machine) SendMATCommand(set DoseSet) error {
	if err := checkDoseSet(set); err != nil {
		return err
	}
	if err := m.writeRegister(points[pointMATCommand], uint16(set)); err != nil {
		return errors.Wrapf(err, "send MAT %s", set)
	}
	return nil
}

func checkDoseSet(set DoseSet) error {
	switch set {
	case DoseStop, DoseSet1, DoseSet2:
		return nil
	}
	return errors.Wrapf(ErrInvalidDoseSet, "set %d", uint16(set))
}
