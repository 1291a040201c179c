package spaziale

import (
	"errors"
	"testing"
)

func TestDeliverSingleMediumThenClose(t *testing.T) {
	f := newFake()
	m := newConnected(t, f)

	if err := m.DeliverSingleMedium(1); err != nil {
		t.Fatalf("DeliverSingleMedium: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := call{op: "write", addr: 512, value: 0x0020}
	if len(f.calls) != 1 || f.calls[0] != want {
		t.Fatalf("calls = %v, want exactly [%v]", f.calls, want)
	}
}

func TestGroupCommandCodes(t *testing.T) {
	tests := []struct {
		name string
		op   func(m *Machine, g int) error
		code uint16
	}{
		{"single short", (*Machine).DeliverSingleShort, 0x0001},
		{"single long", (*Machine).DeliverSingleLong, 0x0002},
		{"double short", (*Machine).DeliverDoubleShort, 0x0004},
		{"double long", (*Machine).DeliverDoubleLong, 0x0008},
		{"single medium", (*Machine).DeliverSingleMedium, 0x0020},
		{"double medium", (*Machine).DeliverDoubleMedium, 0x0040},
		{"stop", (*Machine).StopDelivery, 0x0080},
		{"start purge", (*Machine).StartPurge, 0x0100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			m := newConnected(t, f)
			if err := tt.op(m, 2); err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			want := call{op: "write", addr: 513, value: tt.code}
			if len(f.calls) != 1 || f.calls[0] != want {
				t.Fatalf("calls = %v, want [%v]", f.calls, want)
			}
		})
	}
}

func TestGroupCommandAddressing(t *testing.T) {
	f := newFake()
	m := newConnected(t, f)

	for group, wantAddr := range map[int]uint16{1: 512, 2: 513, 3: 514} {
		f.calls = nil
		if err := m.StopDelivery(group); err != nil {
			t.Fatalf("StopDelivery(%d): %v", group, err)
		}
		if len(f.calls) != 1 || f.calls[0].addr != wantAddr {
			t.Fatalf("group %d: calls = %v, want one write to %d", group, f.calls, wantAddr)
		}
	}
}

func TestWaterAndMATCommands(t *testing.T) {
	f := newFake()
	m := newConnected(t, f)

	if err := m.SendWaterCommand(DoseSet2); err != nil {
		t.Fatalf("SendWaterCommand: %v", err)
	}
	if err := m.SendMATCommand(DoseSet1); err != nil {
		t.Fatalf("SendMATCommand: %v", err)
	}
	if err := m.SendWaterCommand(DoseStop); err != nil {
		t.Fatalf("SendWaterCommand stop: %v", err)
	}

	want := []call{
		{op: "write", addr: 516, value: 2},
		{op: "write", addr: 517, value: 1},
		{op: "write", addr: 516, value: 0},
	}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("call %d = %v, want %v", i, f.calls[i], want[i])
		}
	}
}

func TestInvalidDoseSetIssuesNoRequest(t *testing.T) {
	f := newFake()
	m := newConnected(t, f)

	for _, set := range []DoseSet{3, 7, 0xFFFF} {
		if err := m.SendWaterCommand(set); !errors.Is(err, ErrInvalidDoseSet) {
			t.Fatalf("water set %d: got %v, want ErrInvalidDoseSet", set, err)
		}
		if err := m.SendMATCommand(set); !errors.Is(err, ErrInvalidDoseSet) {
			t.Fatalf("MAT set %d: got %v, want ErrInvalidDoseSet", set, err)
		}
	}
	if len(f.calls) != 0 {
		t.Fatalf("transport touched: %v", f.calls)
	}
}

func TestWriteFailurePreservesCause(t *testing.T) {
	f := newFake()
	m := newConnected(t, f)
	cause := errors.New("serial: write timeout")
	f.writeErr = cause

	err := m.DeliverDoubleShort(3)
	if !errors.Is(err, ErrCommunication) {
		t.Fatalf("got %v, want ErrCommunication", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("transport cause lost: %v", err)
	}
}
