package bcm

import "colbert/mmio"

// coreRegs is the ARM core peripheral block ("local" registers). Its
// layout is shared by all supported variants; only the base address
// moves. Offsets follow the BCM2836 QA7 documentation, which the
// BCM2711 keeps compatible in legacy interrupt mode.
type coreRegs struct {
	control         mmio.R32    // 0x00
	_               mmio.R32    // 0x04
	coreTimerPre    mmio.R32    // 0x08 core timer prescaler
	gpuRouting      mmio.R32    // 0x0C GPU interrupt routing
	pmRoutingSet    mmio.R32    // 0x10
	pmRoutingClear  mmio.R32    // 0x14
	_               mmio.R32    // 0x18
	coreTimerLow    mmio.R32    // 0x1C
	coreTimerHigh   mmio.R32    // 0x20
	localIntRouting mmio.R32    // 0x24
	_               [3]mmio.R32 // 0x28..0x30
	localTimerCtl   mmio.R32    // 0x34 local timer control & status
	localTimerFlags mmio.R32    // 0x38 local timer write flags (IRQ clear)
	_               mmio.R32    // 0x3C
	timerIRQ        [4]mmio.R32 // 0x40 per-core timer interrupt control
	mailboxIRQ      [4]mmio.R32 // 0x50 per-core mailbox interrupt control
	irqSource       [4]mmio.R32 // 0x60 per-core IRQ pending source
	fiqSource       [4]mmio.R32 // 0x70 per-core FIQ pending source
}

// Bits of the per-core timer interrupt control registers.
const (
	cntPSIRQBit  = 0
	cntPNSIRQBit = 1
	cntHPIRQBit  = 2
	cntVIRQBit   = 3
)

// Mailbox 3 is reserved for inter-processor interrupts.
const mailbox3IRQBit = 3

// IRQ enable bit of the local timer control register.
const localTimerIRQEnableBit = 29

// Writing this flag acknowledges a pending local timer interrupt.
const localTimerIRQClear = 1 << 31

// auxRegs is the head of the AUX peripheral block. AUXIRQ indicates
// which of the three AUX devices raised the shared interrupt line;
// AUXENB gates the devices themselves.
type auxRegs struct {
	irq     mmio.R32 // 0x00 AUXIRQ
	enables mmio.R32 // 0x04 AUXENB
}

// Sub-status bits of AUXIRQ.
const (
	auxIRQUART1 = 1 << 0
	auxIRQSPI1  = 1 << 1
	auxIRQSPI2  = 1 << 2

	auxIRQMask = auxIRQUART1 | auxIRQSPI1 | auxIRQSPI2
)
