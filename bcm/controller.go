package bcm

import (
	"unsafe"

	"github.com/usbarmory/tamago/bits"
)

// Controller drives the legacy interrupt controller. It is a single-core,
// single-writer resource: all configuration and the dispatch-time pending
// reads happen on core 0, so no locking is done here. Running it from
// more than one core requires external serialization.
//
// The hardware enable/disable registers are write-1-to-set and
// write-1-to-clear and cannot be read back consistently across variants,
// so the controller mirrors the enable state of every bank in enabled.
// The mirror is the authoritative mask applied to the pending bitmaps.
type Controller struct {
	irq  *irqRegs
	core *coreRegs
	aux  *auxRegs

	enabled [4]uint32
}

// NewController returns a Controller over the compiled-in variant's
// hardware addresses.
func NewController() *Controller {
	return NewControllerAt(IRQ_BASE, ARM_CORE_BASE, AUX_BASE)
}

// NewControllerAt returns a Controller over explicit base addresses for
// the interrupt bank block, the ARM core block and the AUX block. Tests
// and the host-side simulator pass heap-allocated banks here.
func NewControllerAt(irqBase, coreBase, auxBase uintptr) *Controller {
	return &Controller{
		irq:  (*irqRegs)(unsafe.Pointer(irqBase)),
		core: (*coreRegs)(unsafe.Pointer(coreBase)),
		aux:  (*auxRegs)(unsafe.Pointer(auxBase)),
	}
}

// Init brings the controller to its boot state: every line disabled, GPU
// interrupts routed to core 0 where the variant supports routing, and the
// mailbox-3 IPI interrupt armed on all four cores.
func (c *Controller) Init() {
	for bank := 0; bank < 3; bank++ {
		c.irq.setDisable(bank, 0xFFFF_FFFF)
		c.enabled[bank] = 0
	}
	c.enabled[3] = 0
	barrier()

	if routeGPUToCore0 {
		c.core.gpuRouting.Store(0)
	}

	for core := 0; core < 4; core++ {
		c.core.mailboxIRQ[core].Store(1 << mailbox3IRQBit)
		line := LineCore0Mailbox3 + Line(core)
		bits.Set(&c.enabled[3], line.Bit())
	}
	barrier()
}

// Enable unmasks a line at the controller. Enabling an already-enabled
// line is a no-op beyond the identical final state.
func (c *Controller) Enable(line Line) {
	bank := line.Bank()
	if bank < 3 {
		bits.Set(&c.enabled[bank], line.Bit())
		c.irq.setEnable(bank, 1<<line.Bit())
		barrier()
		return
	}
	if c.setCoreLine(line, true) {
		bits.Set(&c.enabled[3], line.Bit())
	}
	barrier()
}

// Disable masks a line at the controller. Disabling a never-enabled line
// is a no-op.
func (c *Controller) Disable(line Line) {
	bank := line.Bank()
	if bank < 3 {
		bits.Clear(&c.enabled[bank], line.Bit())
		c.irq.setDisable(bank, 1<<line.Bit())
		barrier()
		return
	}
	if c.setCoreLine(line, false) {
		bits.Clear(&c.enabled[3], line.Bit())
	}
	barrier()
}

// setCoreLine routes bank-3 lines onto their individual control
// registers. Returns false for lines that have no enable control (the
// GPU interrupt is asserted by the GPU regardless).
func (c *Controller) setCoreLine(line Line, enable bool) bool {
	switch line {
	case LineCntPS, LineCntPNS, LineCntHP, LineCntV:
		v := c.core.timerIRQ[0].Load()
		var pos int
		switch line {
		case LineCntPS:
			pos = cntPSIRQBit
		case LineCntPNS:
			pos = cntPNSIRQBit
		case LineCntHP:
			pos = cntHPIRQBit
		case LineCntV:
			pos = cntVIRQBit
		}
		if enable {
			bits.Set(&v, pos)
		} else {
			bits.Clear(&v, pos)
		}
		c.core.timerIRQ[0].Store(v)
		return true

	case LineCore0Mailbox3, LineCore1Mailbox3, LineCore2Mailbox3, LineCore3Mailbox3:
		core := int(line - LineCore0Mailbox3)
		v := c.core.mailboxIRQ[core].Load()
		if enable {
			bits.Set(&v, mailbox3IRQBit)
		} else {
			bits.Clear(&v, mailbox3IRQBit)
		}
		c.core.mailboxIRQ[core].Store(v)
		return true

	case LineLocalTimer:
		v := c.core.localTimerCtl.Load()
		if enable {
			bits.Set(&v, localTimerIRQEnableBit)
		} else {
			bits.Clear(&v, localTimerIRQEnableBit)
		}
		c.core.localTimerCtl.Store(v)
		return true
	}
	return false
}

// Enabled reports the mirrored enable state of a line.
func (c *Controller) Enabled(line Line) bool {
	return bits.IsSet(&c.enabled[line.Bank()], line.Bit())
}

// State returns a copy of the mirrored enable bitmaps in logical bank
// order.
func (c *Controller) State() [4]uint32 {
	return c.enabled
}

// Pending returns the pending bitmaps in the stable logical bank order.
// Banks 0-2 are masked by the enable state so lines that were never
// enabled cannot surface; bank 3 is the core pending source register,
// which the hardware already filters.
func (c *Controller) Pending() [4]uint32 {
	var p [4]uint32
	for bank := 0; bank < 3; bank++ {
		p[bank] = c.irq.pendingWord(bank) & c.enabled[bank]
	}
	p[3] = c.core.irqSource[0].Load()
	return p
}

// AuxPending returns the sub-status bitmap of the shared AUX line:
// bit 0 miniUART, bit 1 SPI1, bit 2 SPI2.
func (c *Controller) AuxPending() uint32 {
	return c.aux.irq.Load() & auxIRQMask
}

// Acknowledge clears a pending interrupt where the controller itself
// holds the latch. Only the local timer has such a latch; every other
// line is acknowledged at its peripheral, inside the handler.
func (c *Controller) Acknowledge(line Line) {
	if line == LineLocalTimer {
		c.core.localTimerFlags.Store(localTimerIRQClear)
	}
}
