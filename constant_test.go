package spaziale

import "testing"

func TestSelectionAccessors(t *testing.T) {
	tests := []struct {
		sel  Selection
		want func(Selection) bool
	}{
		{SelectionSingleShort, Selection.SingleShort},
		{SelectionSingleLong, Selection.SingleLong},
		{SelectionDoubleShort, Selection.DoubleShort},
		{SelectionDoubleLong, Selection.DoubleLong},
		{SelectionContinuousFlow, Selection.ContinuousFlow},
		{SelectionSingleMedium, Selection.SingleMedium},
		{SelectionDoubleMedium, Selection.DoubleMedium},
		{SelectionPurge, Selection.Purge},
	}
	for _, tt := range tests {
		if !tt.want(tt.sel) {
			t.Fatalf("accessor for %v reports false on its own bit", tt.sel)
		}
		if !tt.sel.Active() {
			t.Fatalf("%v not Active", tt.sel)
		}
		// no other accessor fires
		for _, other := range tests {
			if other.sel != tt.sel && other.want(tt.sel) {
				t.Fatalf("%v also reports %v", tt.sel, other.sel)
			}
		}
	}
}

func TestSelectionActive(t *testing.T) {
	if Selection(0).Active() {
		t.Fatal("zero selection reported active")
	}
	// bits above the delivery mask do not count as busy
	if Selection(0x0100).Active() {
		t.Fatal("bit 8 reported active")
	}
	if !Selection(0x0081).Active() {
		t.Fatal("combined bits not reported active")
	}
}

func TestSelectionString(t *testing.T) {
	tests := []struct {
		sel  Selection
		want string
	}{
		{0, "idle"},
		{SelectionSingleMedium, "single medium"},
		{SelectionSingleShort | SelectionPurge, "single short+purge"},
	}
	for _, tt := range tests {
		if got := tt.sel.String(); got != tt.want {
			t.Fatalf("Selection(%#x).String() = %q, want %q", uint16(tt.sel), got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	if CommandSingleMedium.String() != "single medium" {
		t.Fatalf("got %q", CommandSingleMedium.String())
	}
	if Command(0x4000).String() != "command 0x4000" {
		t.Fatalf("got %q", Command(0x4000).String())
	}
}

func TestByte2String(t *testing.T) {
	tests := []struct {
		data []byte
		want string
	}{
		{[]byte("S50\x00\x00\x00"), "S50"},
		{[]byte("AB"), "AB"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := byte2String(tt.data); got != tt.want {
			t.Fatalf("byte2String(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
}
