package bcm

import (
	"testing"
	"unsafe"
)

// The register structs are placed directly over hardware addresses, so
// every field offset is load-bearing. Pin them against the documented
// maps. The per-variant irqRegs layouts are pinned in their own
// tag-guarded test files; the core and AUX blocks are shared.

func TestCoreRegsOffsets(t *testing.T) {
	var r coreRegs
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"control", unsafe.Offsetof(r.control), 0x00},
		{"coreTimerPre", unsafe.Offsetof(r.coreTimerPre), 0x08},
		{"gpuRouting", unsafe.Offsetof(r.gpuRouting), 0x0C},
		{"localIntRouting", unsafe.Offsetof(r.localIntRouting), 0x24},
		{"localTimerCtl", unsafe.Offsetof(r.localTimerCtl), 0x34},
		{"localTimerFlags", unsafe.Offsetof(r.localTimerFlags), 0x38},
		{"timerIRQ", unsafe.Offsetof(r.timerIRQ), 0x40},
		{"mailboxIRQ", unsafe.Offsetof(r.mailboxIRQ), 0x50},
		{"irqSource", unsafe.Offsetof(r.irqSource), 0x60},
		{"fiqSource", unsafe.Offsetof(r.fiqSource), 0x70},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("coreRegs.%s at 0x%02x, want 0x%02x", o.name, o.got, o.want)
		}
	}
	if size := unsafe.Sizeof(r); size != 0x80 {
		t.Errorf("coreRegs size 0x%x, want 0x80", size)
	}
}

func TestAuxRegsOffsets(t *testing.T) {
	var r auxRegs
	if off := unsafe.Offsetof(r.irq); off != 0x00 {
		t.Errorf("auxRegs.irq at 0x%02x, want 0x00", off)
	}
	if off := unsafe.Offsetof(r.enables); off != 0x04 {
		t.Errorf("auxRegs.enables at 0x%02x, want 0x04", off)
	}
}

func TestLineBankBit(t *testing.T) {
	cases := []struct {
		line Line
		bank int
		bit  int
	}{
		{LineSystemTimer1, 0, 1},
		{LineAux, 0, 29},
		{LineGpioBank0, 1, 17},
		{LinePL011, 1, 25},
		{LineArmTimer, 2, 0},
		{LineArmPending2, 2, 9},
		{LineCntPS, 3, 0},
		{LineLocalTimer, 3, 11},
	}
	for _, c := range cases {
		if c.line.Bank() != c.bank || c.line.Bit() != c.bit {
			t.Errorf("%v: bank/bit = %d/%d, want %d/%d",
				c.line, c.line.Bank(), c.line.Bit(), c.bank, c.bit)
		}
		if LineAt(c.bank, c.bit) != c.line {
			t.Errorf("LineAt(%d, %d) = %v, want %v", c.bank, c.bit, LineAt(c.bank, c.bit), c.line)
		}
	}
}

func TestParseLineRoundTrip(t *testing.T) {
	for l, name := range lineNames {
		got, err := ParseLine(name)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", name, err)
		}
		if got != l {
			t.Fatalf("ParseLine(%q) = %v, want %v", name, got, l)
		}
	}
	if _, err := ParseLine("NoSuchLine"); err == nil {
		t.Fatal("ParseLine accepted an unknown name")
	}
	if _, err := ParseSource("UART1"); err != nil {
		t.Fatalf("ParseSource(UART1): %v", err)
	}
	if _, err := ParseSource("UART7"); err == nil {
		t.Fatal("ParseSource accepted an unknown name")
	}
}
