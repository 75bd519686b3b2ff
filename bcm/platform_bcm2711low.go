//go:build bcm2711low && !bcm2711high

package bcm

import "colbert/mmio"

// Variant: BCM2711 (Raspberry Pi 4) in legacy interrupt mode with the
// low peripheral address map. The controller is register-compatible with
// the BCM2837 one but renumbers the block: pending/enable/disable each
// get three consecutive words in GPU0, GPU1, basic order.
const (
	VariantName = "bcm2711-low"

	PERIPHERAL_BASE uintptr = 0xFE00_0000
	ARM_CORE_BASE   uintptr = 0xFF80_0000

	IRQ_BASE uintptr = PERIPHERAL_BASE + 0xB200
	AUX_BASE uintptr = PERIPHERAL_BASE + 0x21_5000
)

const routeGPUToCore0 = false

// irqRegs is the BCM2711 legacy-mode interrupt bank block at IRQ_BASE.
type irqRegs struct {
	pending0 mmio.R32 // 0x00 GPU IRQs 0-31
	pending1 mmio.R32 // 0x04 GPU IRQs 32-63
	pending2 mmio.R32 // 0x08 basic IRQs
	_        mmio.R32 // 0x0C
	enable0  mmio.R32 // 0x10
	enable1  mmio.R32 // 0x14
	enable2  mmio.R32 // 0x18
	_        mmio.R32 // 0x1C
	disable0 mmio.R32 // 0x20
	disable1 mmio.R32 // 0x24
	disable2 mmio.R32 // 0x28
}

func (r *irqRegs) pendingWord(bank int) uint32 {
	switch bank {
	case 0:
		return r.pending0.Load()
	case 1:
		return r.pending1.Load()
	default:
		return r.pending2.Load()
	}
}

func (r *irqRegs) setEnable(bank int, bits uint32) {
	switch bank {
	case 0:
		r.enable0.Store(bits)
	case 1:
		r.enable1.Store(bits)
	default:
		r.enable2.Store(bits)
	}
}

func (r *irqRegs) setDisable(bank int, bits uint32) {
	switch bank {
	case 0:
		r.disable0.Store(bits)
	case 1:
		r.disable1.Store(bits)
	default:
		r.disable2.Store(bits)
	}
}

func (r *irqRegs) pendingReg(bank int) *mmio.R32 {
	switch bank {
	case 0:
		return &r.pending0
	case 1:
		return &r.pending1
	default:
		return &r.pending2
	}
}
