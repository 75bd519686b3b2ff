//go:build !bcm2711low && !bcm2711high

package bcm

import "colbert/mmio"

// Variant: BCM2837 (Raspberry Pi 3) legacy interrupt controller. This is
// the default build; the bcm2711low and bcm2711high tags select the
// BCM2711 register maps instead. Exactly one variant is compiled in and
// it must match the running hardware; that is a build concern, nothing
// here checks it at runtime.
const (
	VariantName = "bcm2837"

	PERIPHERAL_BASE uintptr = 0x3F00_0000
	ARM_CORE_BASE   uintptr = 0x4000_0000

	IRQ_BASE uintptr = PERIPHERAL_BASE + 0xB200
	AUX_BASE uintptr = PERIPHERAL_BASE + 0x21_5000
)

// The BCM2837 carries a GPU interrupt routing register that must be
// pointed at core 0; on the BCM2711 the register only routes the AXI
// error interrupt and is left alone.
const routeGPUToCore0 = true

// irqRegs is the BCM2837 interrupt bank block at IRQ_BASE. The basic
// pending register comes first and the enable/disable registers order
// the GPU words before the basic word.
type irqRegs struct {
	basicPending mmio.R32 // 0x00
	pending1     mmio.R32 // 0x04 GPU IRQs 0-31
	pending2     mmio.R32 // 0x08 GPU IRQs 32-63
	fiqControl   mmio.R32 // 0x0C
	enable1      mmio.R32 // 0x10
	enable2      mmio.R32 // 0x14
	enableBasic  mmio.R32 // 0x18
	disable1     mmio.R32 // 0x1C
	disable2     mmio.R32 // 0x20
	disableBasic mmio.R32 // 0x24
}

// pendingWord reads the pending bitmap of a logical bank. Logical bank
// order is fixed across variants: GPU 0-31, GPU 32-63, basic.
func (r *irqRegs) pendingWord(bank int) uint32 {
	switch bank {
	case 0:
		return r.pending1.Load()
	case 1:
		return r.pending2.Load()
	default:
		return r.basicPending.Load()
	}
}

// setEnable writes the set-enable register of a logical bank. The
// hardware register is write-1-to-set; zero bits leave other lines
// untouched.
func (r *irqRegs) setEnable(bank int, bits uint32) {
	switch bank {
	case 0:
		r.enable1.Store(bits)
	case 1:
		r.enable2.Store(bits)
	default:
		r.enableBasic.Store(bits)
	}
}

// setDisable writes the write-1-to-clear disable register of a logical
// bank.
func (r *irqRegs) setDisable(bank int, bits uint32) {
	switch bank {
	case 0:
		r.disable1.Store(bits)
	case 1:
		r.disable2.Store(bits)
	default:
		r.disableBasic.Store(bits)
	}
}

// pendingReg exposes the raw pending register of a logical bank for
// host-side injection.
func (r *irqRegs) pendingReg(bank int) *mmio.R32 {
	switch bank {
	case 0:
		return &r.pending1
	case 1:
		return &r.pending2
	default:
		return &r.basicPending
	}
}
