package irq

import "sync/atomic"

// disableDepth counts active nested Disable scopes. Zero at boot; the
// physical unmask happens only when the last scope ends. Only the three
// masking primitives below touch it.
var disableDepth atomic.Int32

// Disable unconditionally masks processor interrupts and opens a nested
// scope. Pair every Disable with a Restore.
func Disable() {
	maskInterrupts()
	disableDepth.Add(1)
}

// Restore closes one Disable scope and physically unmasks only when the
// outermost scope ends. Surplus calls floor at zero and do nothing, so
// an unbalanced caller degrades to a no-op instead of unmasking inside
// someone else's critical section.
func Restore() {
	for {
		n := disableDepth.Load()
		if n == 0 {
			return
		}
		if disableDepth.CompareAndSwap(n, n-1) {
			if n == 1 {
				unmaskInterrupts()
			}
			return
		}
	}
}

// Enable force-unmasks and resets the nesting state. This is the
// bring-up escape hatch for after Init and registry construction; inside
// nested scopes it would pull the mask out from under them, so don't.
func Enable() {
	disableDepth.Store(0)
	unmaskInterrupts()
}

// Depth returns the current nesting depth.
func Depth() int { return int(disableDepth.Load()) }
