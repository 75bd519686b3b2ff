package irq

import "sync/atomic"

// OverflowPolicy decides what a full bridge does with a new message.
type OverflowPolicy uint8

const (
	// RejectNew drops the message being sent and keeps the queue.
	RejectNew OverflowPolicy = iota
	// DropOldest evicts the oldest queued message to make room.
	DropOldest
)

// Bridge carries messages from handler context to ordinary code. The
// sending half never blocks: capacity is fixed at construction and
// overflow follows the configured policy. Messages that are accepted
// arrive in send order, exactly once; ownership passes to the receiver.
//
// The element type is fixed per bridge, so payloads stay statically
// typed end to end; handlers capture their bridge in a closure.
type Bridge[T any] struct {
	ch      chan T
	policy  OverflowPolicy
	dropped atomic.Uint64
}

// NewBridge returns a bridge with the given capacity and overflow
// policy. Capacity is clamped to at least 1.
func NewBridge[T any](capacity int, policy OverflowPolicy) *Bridge[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bridge[T]{
		ch:     make(chan T, capacity),
		policy: policy,
	}
}

// Send hands a message out of interrupt context without ever blocking.
// It reports whether the message was accepted; a false return means the
// message was dropped under the RejectNew policy (or lost a rare race
// under DropOldest) and the drop counter was bumped.
func (b *Bridge[T]) Send(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
	}

	if b.policy == DropOldest {
		select {
		case <-b.ch:
			b.dropped.Add(1)
		default:
		}
		select {
		case b.ch <- v:
			return true
		default:
		}
	}

	b.dropped.Add(1)
	return false
}

// Receive returns the consumer side. Receivers run outside interrupt
// context and may block freely.
func (b *Bridge[T]) Receive() <-chan T { return b.ch }

// TryRecv performs a non-blocking receive, for polling consumers.
func (b *Bridge[T]) TryRecv() (T, bool) {
	select {
	case v := <-b.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Dropped returns how many messages were discarded due to overflow.
func (b *Bridge[T]) Dropped() uint64 { return b.dropped.Load() }

// Cap returns the bridge capacity.
func (b *Bridge[T]) Cap() int { return cap(b.ch) }

// Len returns the number of queued messages.
func (b *Bridge[T]) Len() int { return len(b.ch) }
