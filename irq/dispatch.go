package irq

import (
	"fmt"
	"math/bits"
	"sync/atomic"

	"colbert/bcm"
)

// Tracer observes dispatch decisions. The dispatcher calls it from
// interrupt context, so implementations are bound by the same rules as
// handlers. The simulator installs one; production images run with none.
type Tracer interface {
	Handled(line bcm.Line, src bcm.Source)
	Unhandled(line bcm.Line, src bcm.Source)
}

// Dispatcher walks the pending state on every trap and routes each
// resolved (line, source) to its registered handler. It never runs
// concurrently with itself: the controller has no priority preemption
// and the processor stays masked for the whole pass.
type Dispatcher struct {
	ctl *bcm.Controller
	reg *Registry

	tracer    Tracer
	unhandled atomic.Uint64
}

// NewDispatcher binds a registry to a controller.
func NewDispatcher(ctl *bcm.Controller, reg *Registry) *Dispatcher {
	return &Dispatcher{ctl: ctl, reg: reg}
}

// SetTracer installs a dispatch observer. Call before interrupts are
// enabled; the field is not synchronized.
func (d *Dispatcher) SetTracer(t Tracer) { d.tracer = t }

// Unhandled returns how many pending (line, source) resolutions found no
// registered handler. A still-enabled unhandled line stays pending and
// refires on the next trap, so a climbing counter on a quiet system
// points at a missing binding or a missing Disable.
func (d *Dispatcher) Unhandled() uint64 { return d.unhandled.Load() }

// Dispatch is one pass of the dispatch protocol: read the pending
// bitmaps, visit set bits in ascending line order, resolve shared lines
// through their sub-status, invoke handlers, acknowledge where the
// controller holds the latch. Unregistered pending lines are skipped
// deliberately (and counted); the controller cannot acknowledge on their
// behalf, so suppressing a refire is the caller's job via Disable.
func (d *Dispatcher) Dispatch() {
	pending := d.ctl.Pending()
	for bank, word := range pending {
		for word != 0 {
			bit := bits.TrailingZeros32(word)
			word &^= 1 << bit

			line := bcm.LineAt(bank, bit)
			if line.Shared() {
				d.dispatchShared(line)
				continue
			}
			h, ok := d.reg.lookup(line)
			if !ok {
				d.unhandled.Add(1)
				if d.tracer != nil {
					d.tracer.Unhandled(line, bcm.SourceNone)
				}
				continue
			}
			h()
			d.ctl.Acknowledge(line)
			if d.tracer != nil {
				d.tracer.Handled(line, bcm.SourceNone)
			}
		}
	}
}

// dispatchShared resolves a shared line into its asserting sources and
// invokes each source's handler, in ascending sub-status bit order.
func (d *Dispatcher) dispatchShared(line bcm.Line) {
	sub := d.ctl.AuxPending()
	for sub != 0 {
		bit := bits.TrailingZeros32(sub)
		sub &^= 1 << bit

		src := bcm.SourceAuxUART1 + bcm.Source(bit)
		h, ok := d.reg.lookupAux(src)
		if !ok {
			d.unhandled.Add(1)
			if d.tracer != nil {
				d.tracer.Unhandled(line, src)
			}
			continue
		}
		h()
		if d.tracer != nil {
			d.tracer.Handled(line, src)
		}
	}
}

// Activate enables a line at the controller after checking that a
// handler is actually bound for (line, source). Enabling an unbound line
// is refused because the line would refire forever with nobody to
// acknowledge it.
func (d *Dispatcher) Activate(line bcm.Line, src bcm.Source) error {
	if !d.reg.Registered(line, src) {
		return fmt.Errorf("no handler registered for %v/%v", line, src)
	}
	d.ctl.Enable(line)
	return nil
}

// Deactivate masks a line at the controller; its handlers stop being
// invoked once the already-latched state drains.
func (d *Dispatcher) Deactivate(line bcm.Line) {
	d.ctl.Disable(line)
}

// active is the dispatcher wired to the trap entry point. Written once
// during system bring-up, before interrupts are enabled.
var active *Dispatcher

// Install wires a dispatcher to Trap.
func Install(d *Dispatcher) { active = d }

// Trap is the mandatory entry point invoked by the exception-vector glue
// on every interrupt trap. It returns to the vector when the dispatch
// pass completes.
//
//go:nosplit
func Trap() {
	if d := active; d != nil {
		d.Dispatch()
	}
}
