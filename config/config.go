// Package config loads declarative YAML descriptions of a harmonic task
// tree and a safety level machine, validated against a schemaVersion field
// before anything is built, so a config authored against a stale schema
// fails fast with a clear error instead of a confusing runtime panic.
//
// Grounded on the teacher's internal/primitives/machineconfig.go
// Validate()/FindState() pattern (there: recursive state-reachability
// checks over a hierarchical machine; here: recursive period/name checks
// over a before/after task forest), and on the semver-gated manifest
// validation in the pack's pack/matrix.go.
package config

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/ferrodyne/rtcore/task"
)

// supportedSchema is the range of TaskTreeConfig/SafetyConfig schemaVersion
// values this build understands.
const supportedSchema = ">= 1.0.0, < 2.0.0"

// TaskConfig is the YAML form of one task.Periodic node.
type TaskConfig struct {
	Name     string       `yaml:"name"`
	Period   float64      `yaml:"period"`
	Realtime bool         `yaml:"realtime"`
	Before   []TaskConfig `yaml:"before,omitempty"`
	After    []TaskConfig `yaml:"after,omitempty"`
}

// TaskTreeConfig is the YAML form of the top-level Periodic forest plus the
// executor's base period.
type TaskTreeConfig struct {
	SchemaVersion string       `yaml:"schemaVersion"`
	BasePeriod    float64      `yaml:"basePeriod"`
	Tasks         []TaskConfig `yaml:"tasks"`
}

// LoadTaskTreeConfig reads and validates a TaskTreeConfig from path.
func LoadTaskTreeConfig(path string) (*TaskTreeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task tree config: %w", err)
	}
	var cfg TaskTreeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse task tree config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the schema version and every field needed to build a
// well-formed Periodic forest, without yet resolving any Runnable.
func (c *TaskTreeConfig) Validate() error {
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		return err
	}
	if c.BasePeriod <= 0 {
		return fmt.Errorf("basePeriod must be positive, got %v", c.BasePeriod)
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("tasks must not be empty")
	}
	seen := make(map[string]bool)
	for i := range c.Tasks {
		if err := c.Tasks[i].validate(seen); err != nil {
			return fmt.Errorf("task %d (%q): %w", i, c.Tasks[i].Name, err)
		}
	}
	return nil
}

func (t *TaskConfig) validate(seen map[string]bool) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if seen[t.Name] {
		return fmt.Errorf("duplicate task name %q", t.Name)
	}
	seen[t.Name] = true
	if t.Period <= 0 {
		return fmt.Errorf("period must be positive, got %v", t.Period)
	}
	for i := range t.Before {
		if err := t.Before[i].validate(seen); err != nil {
			return fmt.Errorf("before[%d]: %w", i, err)
		}
	}
	for i := range t.After {
		if err := t.After[i].validate(seen); err != nil {
			return fmt.Errorf("after[%d]: %w", i, err)
		}
	}
	return nil
}

// Build resolves every task by name against runnables and constructs the
// Periodic forest. A task named in the config with no entry in runnables
// gets a nil Runnable (valid only if it has Before/After children of its
// own -- the executor's harmonic decomposition rejects an empty leaf with
// EmptyTaskList).
func (c *TaskTreeConfig) Build(runnables map[string]task.Runnable) ([]*task.Periodic, error) {
	out := make([]*task.Periodic, 0, len(c.Tasks))
	for i := range c.Tasks {
		out = append(out, c.Tasks[i].build(runnables))
	}
	return out, nil
}

func (t *TaskConfig) build(runnables map[string]task.Runnable) *task.Periodic {
	p := task.New(t.Name, t.Period, t.Realtime, runnables[t.Name])
	for i := range t.Before {
		p.Before = append(p.Before, t.Before[i].build(runnables))
	}
	for i := range t.After {
		p.After = append(p.After, t.After[i].build(runnables))
	}
	return p
}

func checkSchemaVersion(raw string) error {
	if raw == "" {
		return fmt.Errorf("schemaVersion is required")
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid schemaVersion %q: %w", raw, err)
	}
	constraint, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return fmt.Errorf("internal: bad schema constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("schemaVersion %q is not supported by this build (want %s)", raw, supportedSchema)
	}
	return nil
}
