// Package flow implements flow validation and the stage-sequencing
// execution engine.
package flow

import (
	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
	"github.com/chainflow-dev/chainflow/internal/template"
	"github.com/chainflow-dev/chainflow/internal/types"
)

// Resolver loads definitions referenced by a flow. The catalog implements it.
type Resolver interface {
	LoadFlow(name string) (*types.Flow, error)
	LoadAlias(ref string) (*types.Tool, *types.Alias, error)
}

// Validator statically checks a flow definition and its bindings before any
// execution. It has no side effects and spawns no processes.
type Validator struct {
	resolver Resolver
}

// NewValidator creates a validator backed by the given resolver.
func NewValidator(resolver Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// Validate checks the flow structurally, stopping at the first problem.
// Errors name the offending stage and task.
func (v *Validator) Validate(def *types.Flow, binds template.Bindings) error {
	if len(def.Stages) == 0 {
		return flowerrors.NoStages("no stages defined in flow")
	}
	if len(def.Order) == 0 {
		return flowerrors.NoStages("no flow order defined")
	}

	for _, ref := range def.Order {
		if ref.Stage == "" {
			return flowerrors.NoStages("flow order entry missing stage name")
		}
		stage, ok := def.Stages[ref.Stage]
		if !ok {
			return flowerrors.StageNotDefined(ref.Stage)
		}
		if err := v.validateStage(ref.Stage, stage, binds); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateStage(name string, stage *types.Stage, binds template.Bindings) error {
	if len(stage.Tasks) == 0 {
		return flowerrors.StageNoTasks(name)
	}
	dist := stage.EffectiveDistribution()
	if !dist.Valid() {
		return flowerrors.DistributionInvalid(name, string(stage.Distribution))
	}
	if stage.Parallel && dist == types.DistributionChained {
		return flowerrors.ParallelChained(name)
	}

	for _, task := range stage.Tasks {
		if err := v.validateTask(name, task, binds); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateTask(stage string, task *types.Task, binds template.Bindings) error {
	kind, err := task.Kind()
	if err != nil {
		return flowerrors.TaskKindInvalid(stage, err)
	}

	if task.Settings != nil {
		if err := task.Settings.CheckBooleans(); err != nil {
			return flowerrors.SettingNotBool(stage, task.Label(), err)
		}
	}

	switch kind {
	case types.TaskKindAlias:
		tool, _, err := v.resolver.LoadAlias(task.Alias)
		if err != nil {
			return withStage(err, stage)
		}
		// Only an explicit pipe_input=true conflicts with a tool that
		// cannot read stdin; the implicit default is checked at runtime
		// by the tool simply ignoring its input.
		if task.Settings.Bool(types.SettingPipeInput, false) && !tool.AcceptsStdin {
			return flowerrors.StdinNotAccepted(stage, task.Alias)
		}

	case types.TaskKindCommand:
		for _, name := range template.Placeholders(task.Command) {
			if _, ok := binds[name]; !ok {
				return flowerrors.VariableMissing(stage, task.Label(), name)
			}
		}

	case types.TaskKindFlow:
		if _, err := v.resolver.LoadFlow(task.Flow); err != nil {
			return withStage(err, stage)
		}
		for _, value := range task.Variables {
			if parent, ok := template.PlaceholderName(value); ok {
				if _, found := binds[parent]; !found {
					return flowerrors.VariableMissing(stage, task.Label(), parent)
				}
			}
		}
	}
	return nil
}

// withStage annotates a resolver error with the stage it surfaced in.
func withStage(err error, stage string) error {
	var ferr *flowerrors.FlowError
	if e, ok := err.(*flowerrors.FlowError); ok {
		ferr = e
	} else {
		return err
	}
	return ferr.WithDetail("stage", stage)
}
