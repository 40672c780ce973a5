package types

import (
	"fmt"
	"strings"
)

// Distribution controls how a stage hands its input to its tasks.
type Distribution string

const (
	// DistributionBroadcast runs every task concurrently against the same input.
	DistributionBroadcast Distribution = "broadcast"
	// DistributionChained runs tasks one at a time, each feeding the next.
	DistributionChained Distribution = "chained"
)

// Valid returns true if this is a recognized distribution mode.
func (d Distribution) Valid() bool {
	switch d {
	case DistributionBroadcast, DistributionChained:
		return true
	}
	return false
}

// TaskKind identifies which variant of the task union is populated.
type TaskKind string

const (
	TaskKindAlias   TaskKind = "alias"
	TaskKindCommand TaskKind = "command"
	TaskKindFlow    TaskKind = "flow"
)

// Setting keys recognized in a task's settings map.
const (
	SettingPipeInput   = "pipe_input"
	SettingPipeOutput  = "pipe_output"
	SettingPrintOutput = "print_output"
)

// Settings holds per-task behavior toggles. Values are kept loosely typed
// so the validator can reject non-boolean values with a useful message
// instead of failing deep inside YAML decoding.
type Settings map[string]any

// Bool returns the boolean value for key, or def when the key is absent
// or not a boolean.
func (s Settings) Bool(key string, def bool) bool {
	if s == nil {
		return def
	}
	v, ok := s[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// PipeInput reports whether the task consumes the incoming stage value.
// Defaults to true.
func (s Settings) PipeInput() bool { return s.Bool(SettingPipeInput, true) }

// PipeOutput reports whether the task's output feeds the running value.
// Defaults to true.
func (s Settings) PipeOutput() bool { return s.Bool(SettingPipeOutput, true) }

// PrintOutput reports whether the task's output should be echoed after
// execution. Defaults to false.
func (s Settings) PrintOutput() bool { return s.Bool(SettingPrintOutput, false) }

// CheckBooleans verifies that every recognized setting key carries a
// boolean value.
func (s Settings) CheckBooleans() error {
	for _, key := range []string{SettingPipeInput, SettingPipeOutput, SettingPrintOutput} {
		v, ok := s[key]
		if !ok {
			continue
		}
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("setting %q must be a boolean, got %T", key, v)
		}
	}
	return nil
}

// Task is one unit of work inside a stage. Exactly one of Alias, Command,
// or Flow must be set; Kind enforces this.
type Task struct {
	// Alias references a tool alias as "tool:alias".
	Alias string `yaml:"alias,omitempty"`

	// Command is a raw shell command template with {{var}} placeholders.
	Command string `yaml:"command,omitempty"`

	// Flow references another flow to run as a nested task.
	Flow string `yaml:"flow,omitempty"`

	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`

	// Variables maps child flow variables to literal values or {{name}}
	// references into the parent's bindings. Only meaningful for flow tasks.
	Variables map[string]string `yaml:"variables,omitempty"`
}

// Kind returns the task's variant, or an error when zero or more than one
// of the recognized keys is present.
func (t *Task) Kind() (TaskKind, error) {
	var kinds []TaskKind
	if t.Alias != "" {
		kinds = append(kinds, TaskKindAlias)
	}
	if t.Command != "" {
		kinds = append(kinds, TaskKindCommand)
	}
	if t.Flow != "" {
		kinds = append(kinds, TaskKindFlow)
	}
	switch len(kinds) {
	case 1:
		return kinds[0], nil
	case 0:
		return "", fmt.Errorf("task has no alias, command, or flow key")
	default:
		return "", fmt.Errorf("task has multiple kinds: %v", kinds)
	}
}

// Label returns the identifying label used in results and progress output.
func (t *Task) Label() string {
	switch {
	case t.Alias != "":
		return t.Alias
	case t.Command != "":
		return "command:" + t.Command
	case t.Flow != "":
		return "flow:" + t.Flow
	}
	return "unknown"
}

// SplitAlias splits an "tool:alias" reference into its two parts.
func SplitAlias(ref string) (tool, alias string, err error) {
	tool, alias, ok := strings.Cut(ref, ":")
	if !ok || tool == "" || alias == "" {
		return "", "", fmt.Errorf("alias %q is not in tool:alias format", ref)
	}
	return tool, alias, nil
}

// Stage is an ordered phase of a flow containing one or more tasks.
type Stage struct {
	Description  string       `yaml:"description,omitempty"`
	Parallel     bool         `yaml:"parallel,omitempty"`
	Distribution Distribution `yaml:"distribution,omitempty"`
	Tasks        []*Task      `yaml:"tasks"`
}

// EffectiveDistribution returns the stage's distribution, defaulting to
// broadcast when unset.
func (s *Stage) EffectiveDistribution() Distribution {
	if s.Distribution == "" {
		return DistributionBroadcast
	}
	return s.Distribution
}

// StageRef is one entry in a flow's execution order.
type StageRef struct {
	Stage string `yaml:"stage"`
}

// Flow is a named, declarative multi-stage workflow definition.
// It is loaded once per invocation and treated as immutable.
type Flow struct {
	Version     string            `yaml:"version,omitempty"`
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty"`
	Stages      map[string]*Stage `yaml:"stages"`

	// Order lists the stages to execute, in order. It may omit or reorder
	// stages relative to the Stages map.
	Order []StageRef `yaml:"flow"`
}

// DisplayName returns the flow's name, or a fallback for unnamed flows.
func (f *Flow) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "flow"
}
