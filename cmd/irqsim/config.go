package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"colbert/bcm"
	"colbert/irq"
)

// Config is the simulator input: which handlers to bind, and a scenario
// of interrupt assertions to fire through the dispatcher.
type Config struct {
	Bindings []BindingConfig `yaml:"bindings"`
	Scenario []EventConfig   `yaml:"scenario"`
}

// BindingConfig declares one handler binding by line (and source, for
// shared lines) name. A binding with a bridge forwards every invocation
// through a deferred channel with the given capacity and policy.
type BindingConfig struct {
	Line   string `yaml:"line"`
	Source string `yaml:"source,omitempty"`
	Async  bool   `yaml:"async,omitempty"`

	Bridge   int    `yaml:"bridge,omitempty"` // channel capacity, 0 = no bridge
	Overflow string `yaml:"overflow,omitempty"`
}

// EventConfig fires one interrupt assertion. "SystemTimer1" raises a
// plain line; "Aux/UART1" raises a shared-line source. Repeat fires the
// same assertion through that many dispatch passes.
type EventConfig struct {
	Fire   string `yaml:"fire"`
	Repeat int    `yaml:"repeat,omitempty"`
}

// binding is a BindingConfig resolved against the line and source
// tables.
type binding struct {
	line   bcm.Line
	source bcm.Source
	async  bool

	bridgeCap int
	overflow  irq.OverflowPolicy
}

// event is an EventConfig resolved to a concrete assertion.
type event struct {
	line   bcm.Line
	source bcm.Source
	repeat int
}

func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Bindings) == 0 {
		return nil, fmt.Errorf("%s: no bindings declared", path)
	}
	return &cfg, nil
}

func (c *Config) resolve() ([]binding, []event, error) {
	bindings := make([]binding, 0, len(c.Bindings))
	for i, bc := range c.Bindings {
		line, err := bcm.ParseLine(bc.Line)
		if err != nil {
			return nil, nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		b := binding{line: line, async: bc.Async, bridgeCap: bc.Bridge}
		if bc.Source != "" {
			src, err := bcm.ParseSource(bc.Source)
			if err != nil {
				return nil, nil, fmt.Errorf("bindings[%d]: %w", i, err)
			}
			b.source = src
		}
		switch bc.Overflow {
		case "", "reject":
			b.overflow = irq.RejectNew
		case "drop-oldest":
			b.overflow = irq.DropOldest
		default:
			return nil, nil, fmt.Errorf("bindings[%d]: unknown overflow policy %q", i, bc.Overflow)
		}
		bindings = append(bindings, b)
	}

	events := make([]event, 0, len(c.Scenario))
	for i, ec := range c.Scenario {
		line, src, err := parseFire(ec.Fire)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario[%d]: %w", i, err)
		}
		repeat := ec.Repeat
		if repeat < 1 {
			repeat = 1
		}
		events = append(events, event{line: line, source: src, repeat: repeat})
	}
	return bindings, events, nil
}

// parseFire splits "Line" or "Line/Source" and resolves both halves.
func parseFire(s string) (bcm.Line, bcm.Source, error) {
	name, srcName, shared := strings.Cut(s, "/")
	line, err := bcm.ParseLine(name)
	if err != nil {
		return 0, bcm.SourceNone, err
	}
	if !shared {
		if line.Shared() {
			return 0, bcm.SourceNone, fmt.Errorf("line %v is shared, fire a source like %q", line, s+"/UART1")
		}
		return line, bcm.SourceNone, nil
	}
	if !line.Shared() {
		return 0, bcm.SourceNone, fmt.Errorf("line %v has no sources", line)
	}
	src, err := bcm.ParseSource(srcName)
	if err != nil {
		return 0, bcm.SourceNone, err
	}
	return line, src, nil
}
