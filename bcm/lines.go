// Package bcm drives the legacy (non-GIC) interrupt controller of the
// BCM2837 and BCM2711 SoCs. The controller presents pending and
// enable/disable state as bitmaps across several banks; this package
// normalizes the per-variant register layouts into one stable bank order
// and exposes typed line operations on top of it.
package bcm

import "fmt"

// Line identifies one interrupt line of the legacy controller. Lines are
// numbered across four logical banks of 32: GPU IRQs 0-31, GPU IRQs
// 32-63, the ARM basic IRQs at 64-95 and the per-core IRQs at 96-127.
type Line uint8

const (
	LineSystemTimer1  Line = 1
	LineSystemTimer3  Line = 3
	LineISP           Line = 8
	LineUSB           Line = 9
	LineCoreSync0     Line = 12
	LineCoreSync1     Line = 13
	LineCoreSync2     Line = 14
	LineCoreSync3     Line = 15
	LineAux           Line = 29
	LineArm           Line = 30
	LineGpuDma        Line = 31
	LineGpioBank0     Line = 49
	LineGpioBank1     Line = 50
	LineGpioBank2     Line = 51
	LineGpioBank3     Line = 52
	LineI2C           Line = 53
	LineSPI           Line = 54
	LineI2SPCM        Line = 55
	LineSDIO          Line = 56
	LinePL011         Line = 57
	LineArmTimer      Line = 64
	LineArmMailbox    Line = 65
	LineArmDoorbell0  Line = 66
	LineArmDoorbell1  Line = 67
	LineArmGpu0Halted Line = 68
	LineArmGpu1Halted Line = 69
	LineArmIllegal1   Line = 70
	LineArmIllegal0   Line = 71
	LineArmPending1   Line = 72
	LineArmPending2   Line = 73
	LineCntPS         Line = 96
	LineCntPNS        Line = 97
	LineCntHP         Line = 98
	LineCntV          Line = 99
	LineCore0Mailbox3 Line = 100
	LineCore1Mailbox3 Line = 101
	LineCore2Mailbox3 Line = 102
	LineCore3Mailbox3 Line = 103
	LineCoreGPU       Line = 104
	LineLocalTimer    Line = 107
)

// NumLines bounds the line space: four banks of 32.
const NumLines = 128

// Bank returns the logical bank index (0-3) the line lives in.
func (l Line) Bank() int { return int(l) >> 5 }

// Bit returns the bit position of the line within its bank word.
func (l Line) Bit() int { return int(l) & 0x1F }

// LineAt reconstructs a Line from a bank index and bit position.
func LineAt(bank, bit int) Line { return Line(bank<<5 | bit) }

// Shared reports whether the line is raised by more than one peripheral
// source. Only the AUX line is shared on this controller generation; the
// miniUART, SPI1 and SPI2 all assert it.
func (l Line) Shared() bool { return l == LineAux }

// Source disambiguates a shared line. Non-shared lines carry SourceNone.
type Source uint8

const (
	SourceNone Source = iota
	SourceAuxUART1
	SourceAuxSPI1
	SourceAuxSPI2
)

// auxBit maps an AUX source to its AUXIRQ status bit.
func (s Source) auxBit() int { return int(s) - 1 }

var lineNames = map[Line]string{
	LineSystemTimer1:  "SystemTimer1",
	LineSystemTimer3:  "SystemTimer3",
	LineISP:           "ISP",
	LineUSB:           "USB",
	LineCoreSync0:     "CoreSync0",
	LineCoreSync1:     "CoreSync1",
	LineCoreSync2:     "CoreSync2",
	LineCoreSync3:     "CoreSync3",
	LineAux:           "Aux",
	LineArm:           "Arm",
	LineGpuDma:        "GpuDma",
	LineGpioBank0:     "GpioBank0",
	LineGpioBank1:     "GpioBank1",
	LineGpioBank2:     "GpioBank2",
	LineGpioBank3:     "GpioBank3",
	LineI2C:           "I2C",
	LineSPI:           "SPI",
	LineI2SPCM:        "I2SPCM",
	LineSDIO:          "SDIO",
	LinePL011:         "PL011",
	LineArmTimer:      "ArmTimer",
	LineArmMailbox:    "ArmMailbox",
	LineArmDoorbell0:  "ArmDoorbell0",
	LineArmDoorbell1:  "ArmDoorbell1",
	LineArmGpu0Halted: "ArmGpu0Halted",
	LineArmGpu1Halted: "ArmGpu1Halted",
	LineArmIllegal1:   "ArmIllegal1",
	LineArmIllegal0:   "ArmIllegal0",
	LineArmPending1:   "ArmPending1",
	LineArmPending2:   "ArmPending2",
	LineCntPS:         "CntPS",
	LineCntPNS:        "CntPNS",
	LineCntHP:         "CntHP",
	LineCntV:          "CntV",
	LineCore0Mailbox3: "Core0Mailbox3",
	LineCore1Mailbox3: "Core1Mailbox3",
	LineCore2Mailbox3: "Core2Mailbox3",
	LineCore3Mailbox3: "Core3Mailbox3",
	LineCoreGPU:       "CoreGPU",
	LineLocalTimer:    "LocalTimer",
}

var sourceNames = map[Source]string{
	SourceNone:     "",
	SourceAuxUART1: "UART1",
	SourceAuxSPI1:  "SPI1",
	SourceAuxSPI2:  "SPI2",
}

var (
	linesByName   = make(map[string]Line, len(lineNames))
	sourcesByName = make(map[string]Source, len(sourceNames))
)

func init() {
	for l, n := range lineNames {
		linesByName[n] = l
	}
	for s, n := range sourceNames {
		if n != "" {
			sourcesByName[n] = s
		}
	}
}

func (l Line) String() string {
	if n, ok := lineNames[l]; ok {
		return n
	}
	return fmt.Sprintf("IRQ%d", uint8(l))
}

func (s Source) String() string {
	if n, ok := sourceNames[s]; ok && n != "" {
		return n
	}
	if s == SourceNone {
		return "none"
	}
	return fmt.Sprintf("Source%d", uint8(s))
}

// ParseLine resolves a line by its name, e.g. "ArmTimer".
func ParseLine(name string) (Line, error) {
	if l, ok := linesByName[name]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown interrupt line %q", name)
}

// ParseSource resolves a shared-line source by name, e.g. "UART1".
func ParseSource(name string) (Source, error) {
	if s, ok := sourcesByName[name]; ok {
		return s, nil
	}
	return SourceNone, fmt.Errorf("unknown interrupt source %q", name)
}
