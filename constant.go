package spaziale

import (
	"fmt"
	"strings"
)

// Command is a code accepted by a group's command register. The board
// treats each code as a one-shot trigger; writing CommandNoAction is a
// harmless no-op.
type Command uint16

const (
	CommandSingleShort  Command = 0x0001
	CommandSingleLong   Command = 0x0002
	CommandDoubleShort  Command = 0x0004
	CommandDoubleLong   Command = 0x0008
	CommandNoAction     Command = 0x0010
	CommandSingleMedium Command = 0x0020
	CommandDoubleMedium Command = 0x0040
	CommandStop         Command = 0x0080 // stop the ongoing delivery
	CommandStartPurge   Command = 0x0100
)

func (c Command) String() string {
	switch c {
	case CommandSingleShort:
		return "single short"
	case CommandSingleLong:
		return "single long"
	case CommandDoubleShort:
		return "double short"
	case CommandDoubleLong:
		return "double long"
	case CommandNoAction:
		return "no action"
	case CommandSingleMedium:
		return "single medium"
	case CommandDoubleMedium:
		return "double medium"
	case CommandStop:
		return "stop"
	case CommandStartPurge:
		return "start purge"
	}
	return fmt.Sprintf("command 0x%04X", uint16(c))
}

// Selection is the bit field of a group's selection status register.
// One bit per delivery type; the board can briefly report more than one
// bit during transitions.
type Selection uint16

const (
	SelectionSingleShort    Selection = 0x0001
	SelectionSingleLong     Selection = 0x0002
	SelectionDoubleShort    Selection = 0x0004
	SelectionDoubleLong     Selection = 0x0008
	SelectionContinuousFlow Selection = 0x0010
	SelectionSingleMedium   Selection = 0x0020
	SelectionDoubleMedium   Selection = 0x0040
	SelectionPurge          Selection = 0x0080
)

// selectionMask covers the bits that mean a delivery or purge is running.
const selectionMask Selection = 0x00FF

func (s Selection) SingleShort() bool    { return s&SelectionSingleShort != 0 }
func (s Selection) SingleLong() bool     { return s&SelectionSingleLong != 0 }
func (s Selection) DoubleShort() bool    { return s&SelectionDoubleShort != 0 }
func (s Selection) DoubleLong() bool     { return s&SelectionDoubleLong != 0 }
func (s Selection) ContinuousFlow() bool { return s&SelectionContinuousFlow != 0 }
func (s Selection) SingleMedium() bool   { return s&SelectionSingleMedium != 0 }
func (s Selection) DoubleMedium() bool   { return s&SelectionDoubleMedium != 0 }
func (s Selection) Purge() bool          { return s&SelectionPurge != 0 }

// Active reports whether any delivery or purge is in progress on the group.
func (s Selection) Active() bool { return s&selectionMask != 0 }

func (s Selection) String() string {
	if !s.Active() {
		return "idle"
	}
	names := []struct {
		bit  Selection
		name string
	}{
		{SelectionSingleShort, "single short"},
		{SelectionSingleLong, "single long"},
		{SelectionDoubleShort, "double short"},
		{SelectionDoubleLong, "double long"},
		{SelectionContinuousFlow, "continuous flow"},
		{SelectionSingleMedium, "single medium"},
		{SelectionDoubleMedium, "double medium"},
		{SelectionPurge, "purge"},
	}
	var parts []string
	for _, n := range names {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// DoseSet selects one of the programmed doses of the water and MAT circuits.
type DoseSet uint16

const (
	DoseStop DoseSet = 0 // stop the ongoing dose
	DoseSet1 DoseSet = 1
	DoseSet2 DoseSet = 2
)

func (d DoseSet) String() string {
	switch d {
	case DoseStop:
		return "stop"
	case DoseSet1:
		return "set 1"
	case DoseSet2:
		return "set 2"
	}
	return fmt.Sprintf("set %d", uint16(d))
}
