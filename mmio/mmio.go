// Package mmio provides the 32-bit register cell that peripheral register
// layouts are built from. A layout is an ordinary Go struct of R32 fields
// placed over a base address with unsafe.Pointer; on hardware the base is
// the physical MMIO address, in tests it is a heap-allocated array.
package mmio

import "sync/atomic"

// R32 is a single 32-bit peripheral register. All access goes through
// sync/atomic so the compiler cannot elide or merge register traffic and
// so host-side tests may observe registers from another goroutine.
type R32 struct {
	v uint32
}

// Load reads the register.
func (r *R32) Load() uint32 {
	return atomic.LoadUint32(&r.v)
}

// Store writes the register.
func (r *R32) Store(v uint32) {
	atomic.StoreUint32(&r.v, v)
}
