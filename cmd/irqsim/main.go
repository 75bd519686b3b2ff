// Command irqsim runs the interrupt dispatch stack against a
// memory-backed register bank, firing a scenario from a YAML config and
// reporting what each handler saw. It is a host-side harness for the
// same code path the trap vector drives on hardware.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/fatih/color"

	"colbert/bcm"
	"colbert/irq"
)

// registerBank backs the three controller register layouts in ordinary
// memory.
type registerBank struct {
	irq  [16]uint32
	core [32]uint32
	aux  [4]uint32
}

// simHandler is one bound handler plus its observation state.
type simHandler struct {
	name      string
	count     int
	bridge    *irq.Bridge[string]
	delivered int
}

// logTracer narrates every dispatch decision at debug level. Fine for a
// simulator; on hardware the tracer slot stays nil.
type logTracer struct {
	log *slog.Logger
}

func (t *logTracer) Handled(line bcm.Line, src bcm.Source) {
	t.log.Debug("dispatched", "line", line.String(), "source", src.String())
}

func (t *logTracer) Unhandled(line bcm.Line, src bcm.Source) {
	t.log.Warn("pending line has no handler", "line", line.String(), "source", src.String())
}

func main() {
	configPath := flag.String("config", "", "scenario config (yaml)")
	verbose := flag.Bool("v", false, "log every dispatch decision")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *configPath == "" {
		log.Error("missing -config")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *Config, log *slog.Logger) error {
	bindings, events, err := cfg.resolve()
	if err != nil {
		return err
	}

	bank := &registerBank{}
	ctl := bcm.NewControllerAt(
		uintptr(unsafe.Pointer(&bank.irq)),
		uintptr(unsafe.Pointer(&bank.core)),
		uintptr(unsafe.Pointer(&bank.aux)),
	)
	ctl.Init()
	log.Info("controller initialized", "variant", bcm.VariantName)

	handlers := make([]*simHandler, len(bindings))
	irqBindings := make([]irq.Binding, len(bindings))
	for i, b := range bindings {
		h := &simHandler{name: bindingName(b.line, b.source)}
		if b.bridgeCap > 0 {
			h.bridge = irq.NewBridge[string](b.bridgeCap, b.overflow)
		}
		handlers[i] = h
		irqBindings[i] = irq.Binding{
			Line:    b.line,
			Source:  b.source,
			Async:   b.async,
			Handler: makeHandler(ctl, h, b.line, b.source),
		}
	}

	reg, err := irq.NewRegistry(irqBindings)
	if err != nil {
		return err
	}
	d := irq.NewDispatcher(ctl, reg)
	d.SetTracer(&logTracer{log: log})
	irq.Install(d)
	defer irq.Install(nil)

	for _, b := range bindings {
		if err := d.Activate(b.line, b.source); err != nil {
			return err
		}
	}

	passes := 0
	for _, ev := range events {
		// Fired lines without a binding still need the controller to
		// see them pending, so enable unbound scenario lines directly.
		if !reg.Registered(ev.line, ev.source) {
			ctl.Enable(ev.line)
		}
		for i := 0; i < ev.repeat; i++ {
			if ev.source != bcm.SourceNone {
				ctl.InjectAux(ev.source)
			} else {
				ctl.InjectPending(ev.line)
			}
			irq.Trap()
			passes++
			// An unhandled line stays latched; drop it so the next
			// event starts clean, the way a masked system would.
			if !reg.Registered(ev.line, ev.source) {
				if ev.source != bcm.SourceNone {
					ctl.ClearAux(ev.source)
				} else {
					ctl.ClearPending(ev.line)
				}
			}
		}
	}

	report(handlers, d, passes)
	return nil
}

// makeHandler builds the simulated handler body: count the invocation,
// forward through the bridge when one is configured, and stand in for
// the peripheral acknowledge by dropping the injected condition.
func makeHandler(ctl *bcm.Controller, h *simHandler, line bcm.Line, src bcm.Source) irq.Handler {
	return func() {
		h.count++
		if h.bridge != nil {
			h.bridge.Send(h.name)
		}
		if src != bcm.SourceNone {
			ctl.ClearAux(src)
		} else {
			ctl.ClearPending(line)
		}
	}
}

func bindingName(line bcm.Line, src bcm.Source) string {
	if src == bcm.SourceNone {
		return line.String()
	}
	return line.String() + "/" + src.String()
}

func report(handlers []*simHandler, d *irq.Dispatcher, passes int) {
	title := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed, color.Bold)

	title.Printf("dispatch report (%d passes)\n", passes)
	for _, h := range handlers {
		line := fmt.Sprintf("  %-24s fired %d", h.name, h.count)
		if h.bridge != nil {
			for {
				if _, got := h.bridge.TryRecv(); !got {
					break
				}
				h.delivered++
			}
			line += fmt.Sprintf("  bridged %d dropped %d", h.delivered, h.bridge.Dropped())
		}
		if h.count == 0 {
			warn.Println(line)
		} else {
			ok.Println(line)
		}
	}
	if n := d.Unhandled(); n > 0 {
		bad.Printf("  unhandled resolutions: %d\n", n)
	} else {
		ok.Println("  unhandled resolutions: 0")
	}
}
