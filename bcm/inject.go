package bcm

import "github.com/usbarmory/tamago/bits"

// Host-side injection hooks. Tests and the dispatch simulator use these
// to raise and drop interrupt conditions in a memory-backed register
// bank. On the BCM2837 the pending registers are documented read/write,
// but nothing in the runtime path depends on writing them; treat these
// as simulation surface only.

// InjectPending raises a line's pending bit.
func (c *Controller) InjectPending(line Line) {
	bank := line.Bank()
	if bank < 3 {
		r := c.irq.pendingReg(bank)
		v := r.Load()
		bits.Set(&v, line.Bit())
		r.Store(v)
		return
	}
	v := c.core.irqSource[0].Load()
	bits.Set(&v, line.Bit())
	c.core.irqSource[0].Store(v)
}

// ClearPending drops a line's pending bit, standing in for the
// peripheral-specific acknowledge a real handler performs.
func (c *Controller) ClearPending(line Line) {
	bank := line.Bank()
	if bank < 3 {
		r := c.irq.pendingReg(bank)
		v := r.Load()
		bits.Clear(&v, line.Bit())
		r.Store(v)
		return
	}
	v := c.core.irqSource[0].Load()
	bits.Clear(&v, line.Bit())
	c.core.irqSource[0].Store(v)
}

// validAux reports whether src names one of the three AUX devices.
func validAux(src Source) bool {
	return src >= SourceAuxUART1 && src <= SourceAuxSPI2
}

// InjectAux raises one AUX device's sub-status bit and the shared AUX
// line itself, the way the hardware asserts both together. Sources that
// name no AUX device are ignored.
func (c *Controller) InjectAux(src Source) {
	if !validAux(src) {
		return
	}
	v := c.aux.irq.Load()
	bits.Set(&v, src.auxBit())
	c.aux.irq.Store(v)
	c.InjectPending(LineAux)
}

// ClearAux drops one AUX device's sub-status bit; once no device is
// asserting, the shared line itself drops too.
func (c *Controller) ClearAux(src Source) {
	if !validAux(src) {
		return
	}
	v := c.aux.irq.Load()
	bits.Clear(&v, src.auxBit())
	c.aux.irq.Store(v)
	if v&auxIRQMask == 0 {
		c.ClearPending(LineAux)
	}
}
