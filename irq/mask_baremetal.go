//go:build baremetal && arm64

package irq

// DAIF I and F bits.
const daifIRQ = 1 << 7
const daifFIQ = 1 << 6

// Implemented in mask_arm64.s: IRQ+FIQ mask/unmask via DAIFSet/DAIFClr,
// with an ISB after unmask so pending interrupts are taken immediately.
func maskInterrupts()
func unmaskInterrupts()
func readDAIF() uint64

// Masked reports whether interrupts are physically masked.
func Masked() bool {
	return readDAIF()&(daifIRQ|daifFIQ) != 0
}
