// Package irq implements interrupt dispatch on top of the bcm
// controller driver: a build-time handler registry, the trap-time
// dispatcher, global interrupt masking with nested disable scopes, and a
// non-blocking bridge for handing work out of interrupt context.
package irq

import (
	"fmt"

	"colbert/bcm"
)

// Handler is an interrupt service routine. It runs in interrupt context
// with the processor masked: it must not block and must not allocate.
// Handlers that defer work capture their own typed *Bridge and Send
// through it.
type Handler func()

// Binding declares one handler at build time. For shared lines the
// Source picks the peripheral; everything else uses SourceNone.
// Async records that the handler hands work to a bridge instead of
// completing it in place; it is declarative and feeds validation and
// tooling, not dispatch.
type Binding struct {
	Line    bcm.Line
	Source  bcm.Source
	Handler Handler
	Async   bool
}

type entry struct {
	h     Handler
	async bool
}

// Registry is the immutable lookup table from (line, source) to handler.
// It is fully constructed before interrupts are enabled and never
// changes afterwards, which is what lets the dispatcher walk it without
// synchronization.
type Registry struct {
	table [4][32]entry
	aux   [3]entry
	count int
}

// NewRegistry validates the bindings and builds the lookup table.
// Binding sets come from init paths, so any error here is terminal for
// the build of the system image: duplicate (line, source) pairs, sources
// on non-shared lines, shared lines without a source, nil handlers and
// out-of-range lines are all rejected.
func NewRegistry(bindings []Binding) (*Registry, error) {
	r := &Registry{}
	for i, b := range bindings {
		if b.Handler == nil {
			return nil, fmt.Errorf("binding %d (%v): nil handler", i, b.Line)
		}
		if int(b.Line) >= bcm.NumLines {
			return nil, fmt.Errorf("binding %d: line %d out of range", i, b.Line)
		}

		if b.Line.Shared() {
			if b.Source == bcm.SourceNone {
				return nil, fmt.Errorf("binding %d: shared line %v requires a source", i, b.Line)
			}
			idx := int(b.Source) - 1
			if idx < 0 || idx >= len(r.aux) {
				return nil, fmt.Errorf("binding %d: invalid source %v for line %v", i, b.Source, b.Line)
			}
			if r.aux[idx].h != nil {
				return nil, fmt.Errorf("binding %d: duplicate handler for %v/%v", i, b.Line, b.Source)
			}
			r.aux[idx] = entry{h: b.Handler, async: b.Async}
			r.count++
			continue
		}

		if b.Source != bcm.SourceNone {
			return nil, fmt.Errorf("binding %d: line %v is not shared, source %v given", i, b.Line, b.Source)
		}
		e := &r.table[b.Line.Bank()][b.Line.Bit()]
		if e.h != nil {
			return nil, fmt.Errorf("binding %d: duplicate handler for %v", i, b.Line)
		}
		*e = entry{h: b.Handler, async: b.Async}
		r.count++
	}
	return r, nil
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return r.count }

// lookup returns the handler bound to a non-shared line, if any.
func (r *Registry) lookup(line bcm.Line) (Handler, bool) {
	e := &r.table[line.Bank()][line.Bit()]
	return e.h, e.h != nil
}

// lookupAux returns the handler bound to one AUX source, if any.
func (r *Registry) lookupAux(src bcm.Source) (Handler, bool) {
	idx := int(src) - 1
	if idx < 0 || idx >= len(r.aux) {
		return nil, false
	}
	e := &r.aux[idx]
	return e.h, e.h != nil
}

// Registered reports whether a handler is bound for (line, source).
func (r *Registry) Registered(line bcm.Line, src bcm.Source) bool {
	if line.Shared() {
		_, ok := r.lookupAux(src)
		return ok
	}
	if src != bcm.SourceNone {
		return false
	}
	_, ok := r.lookup(line)
	return ok
}
