//go:build !baremetal

package bcm

// barrier is a data synchronization barrier after controller
// configuration writes. Hosted builds access ordinary memory through
// sync/atomic, which already orders the accesses, so this is a no-op.
func barrier() {}
