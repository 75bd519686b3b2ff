//go:build baremetal && arm64

package bcm

// barrier issues a full-system DSB so controller configuration writes
// complete before interrupts are taken against them. Implemented in
// barrier_arm64.s.
func barrier()
