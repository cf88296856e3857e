package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ferrodyne/rtcore/control"
	"github.com/ferrodyne/rtcore/hal"
	"github.com/ferrodyne/rtcore/logger"
	"github.com/ferrodyne/rtcore/safety"
)

// InputActionConfig is the YAML form of one safety.InputAction.
type InputActionConfig struct {
	Name  string  `yaml:"name"`
	Kind  string  `yaml:"kind"` // "ignore" | "check" | "rangeCheck"
	Input string  `yaml:"input"` // HAL channel key sampled each tick
	Min   float64 `yaml:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty"`
	Event string  `yaml:"event"`
}

// EventConfig is the YAML form of one safety.SafetyEvent declaration.
type EventConfig struct {
	Name       string `yaml:"name"`
	Visibility string `yaml:"visibility"` // "public" | "private"
}

// TransitionConfig is the YAML form of one outgoing edge from a level.
type TransitionConfig struct {
	Event      string `yaml:"event"`
	Target     string `yaml:"target"`
	ToAndAbove bool   `yaml:"toAndAbove,omitempty"`
}

// LevelConfig is the YAML form of one safety.SafetyLevel.
type LevelConfig struct {
	Name         string              `yaml:"name"`
	InputActions []InputActionConfig `yaml:"inputActions,omitempty"`
	Transitions  []TransitionConfig  `yaml:"transitions,omitempty"`
}

// SafetyConfig is the YAML form of a whole safety.SafetySystem.
type SafetyConfig struct {
	SchemaVersion string        `yaml:"schemaVersion"`
	Initial       string        `yaml:"initial"`
	Events        []EventConfig `yaml:"events"`
	Levels        []LevelConfig `yaml:"levels"`
}

// LoadSafetyConfig reads and validates a SafetyConfig from path.
func LoadSafetyConfig(path string) (*SafetyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read safety config: %w", err)
	}
	var cfg SafetyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse safety config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the schema version and every cross-reference (event
// names, level names) without yet resolving any HAL channel.
func (c *SafetyConfig) Validate() error {
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		return err
	}
	if c.Initial == "" {
		return fmt.Errorf("initial level is required")
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("levels must not be empty")
	}

	events := make(map[string]string, len(c.Events))
	for i, e := range c.Events {
		if e.Name == "" {
			return fmt.Errorf("events[%d]: name is required", i)
		}
		if e.Visibility != "public" && e.Visibility != "private" {
			return fmt.Errorf("events[%d] (%q): visibility must be \"public\" or \"private\", got %q", i, e.Name, e.Visibility)
		}
		events[e.Name] = e.Visibility
	}

	levels := make(map[string]bool, len(c.Levels))
	for _, l := range c.Levels {
		levels[l.Name] = true
	}
	foundInitial := false
	for i, l := range c.Levels {
		if l.Name == "" {
			return fmt.Errorf("levels[%d]: name is required", i)
		}
		if l.Name == c.Initial {
			foundInitial = true
		}
		for j, ia := range l.InputActions {
			if err := ia.validate(events); err != nil {
				return fmt.Errorf("level %q inputActions[%d]: %w", l.Name, j, err)
			}
		}
		for j, t := range l.Transitions {
			if _, ok := events[t.Event]; !ok {
				return fmt.Errorf("level %q transitions[%d]: unknown event %q", l.Name, j, t.Event)
			}
			if !levels[t.Target] {
				return fmt.Errorf("level %q transitions[%d]: unknown target level %q", l.Name, j, t.Target)
			}
		}
	}
	if !foundInitial {
		return fmt.Errorf("initial level %q not found in levels", c.Initial)
	}
	return nil
}

func (ia *InputActionConfig) validate(events map[string]string) error {
	if ia.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch ia.Kind {
	case "ignore":
	case "check", "rangeCheck":
		if ia.Input == "" {
			return fmt.Errorf("input channel key is required for kind %q", ia.Kind)
		}
		if _, ok := events[ia.Event]; !ok {
			return fmt.Errorf("unknown event %q", ia.Event)
		}
	default:
		return fmt.Errorf("unknown kind %q", ia.Kind)
	}
	return nil
}

// Build resolves every HAL channel reference and constructs a running
// safety.SafetySystem. checks registered via kind "check" use a simple
// non-zero-boolean predicate (sample.Bool); "rangeCheck" uses [Min, Max]
// against sample.Float, matching InputActionConfig's declarative fields --
// anything more specific requires constructing the SafetySystem by hand
// instead of from config.
func (c *SafetyConfig) Build(reg *hal.Registry, log *logger.Logger) (*safety.SafetySystem, error) {
	sys := safety.New(log)

	events := make(map[string]safety.SafetyEvent, len(c.Events))
	for _, e := range c.Events {
		if e.Visibility == "private" {
			events[e.Name] = safety.NewPrivateEvent(safety.EventID(e.Name))
		} else {
			events[e.Name] = safety.NewPublicEvent(safety.EventID(e.Name))
		}
	}

	for _, lc := range c.Levels {
		level := sys.AddLevel(lc.Name)
		for _, iac := range lc.InputActions {
			ia, err := iac.build(reg, events)
			if err != nil {
				return nil, fmt.Errorf("level %q input action %q: %w", lc.Name, iac.Name, err)
			}
			level.AddInputAction(ia)
		}
	}

	for _, lc := range c.Levels {
		for _, tc := range lc.Transitions {
			event := events[tc.Event]
			var err error
			if tc.ToAndAbove {
				err = sys.AddEventToLevelAndAbove(lc.Name, event, tc.Target)
			} else {
				err = sys.AddTransition(lc.Name, event, tc.Target)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if err := sys.SetInitialLevel(c.Initial); err != nil {
		return nil, err
	}
	return sys, nil
}

func (iac *InputActionConfig) build(reg *hal.Registry, events map[string]safety.SafetyEvent) (*safety.InputAction, error) {
	ia := &safety.InputAction{Name: iac.Name, Event: events[iac.Event]}

	switch iac.Kind {
	case "ignore":
		ia.Kind = safety.ActionIgnore
		return ia, nil
	case "check":
		ia.Kind = safety.ActionCheck
		ia.Check = func(s control.Signal) bool { return s.Bool }
	case "rangeCheck":
		ia.Kind = safety.ActionRangeCheck
		ia.Min, ia.Max = iac.Min, iac.Max
	}

	ch, err := reg.Get(iac.Input)
	if err != nil {
		return nil, err
	}
	ia.Input = ch.Get
	return ia, nil
}
