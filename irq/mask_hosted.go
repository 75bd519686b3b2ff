//go:build !baremetal

package irq

import "sync/atomic"

// Hosted builds record the mask state instead of touching DAIF, which
// lets tests assert the physical mask transitions.
var maskedState atomic.Bool

func maskInterrupts()   { maskedState.Store(true) }
func unmaskInterrupts() { maskedState.Store(false) }

// Masked reports whether interrupts are physically masked.
func Masked() bool { return maskedState.Load() }
