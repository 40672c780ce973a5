package flow

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chainflow-dev/chainflow/internal/executor"
	"github.com/chainflow-dev/chainflow/internal/progress"
	"github.com/chainflow-dev/chainflow/internal/template"
	"github.com/chainflow-dev/chainflow/internal/types"
)

// MaxNestingDepth caps nested-flow recursion. A branch that exceeds it
// fails; the surrounding flow keeps running.
const MaxNestingDepth = 5

// Options controls run-wide execution behavior.
type Options struct {
	// PrintStepOutput echoes each successful task's output after it runs.
	PrintStepOutput bool

	// StripColors removes ANSI escape sequences from captured output.
	StripColors bool

	// Headers are injected into alias invocations for tools declaring a
	// header flag.
	Headers []types.Header

	// StepOutput receives echoed task output. Defaults to stdout.
	StepOutput io.Writer
}

// Engine drives stage-by-stage flow execution. Stages run strictly in
// declared order; the output of stage k is the candidate input of stage
// k+1. Nested flow tasks re-enter the engine at depth+1 with the same
// shared progress reporter.
type Engine struct {
	resolver Resolver
	tasks    *executor.TaskExecutor
	reporter progress.Reporter
	logger   *slog.Logger
	opts     Options

	// stepMu serializes step-output echoes from sibling broadcast tasks.
	stepMu sync.Mutex
}

// NewEngine creates an engine. The reporter is shared across the whole run,
// nested flows included.
func NewEngine(resolver Resolver, runner *executor.ShellRunner, reporter progress.Reporter, opts Options, logger *slog.Logger) *Engine {
	if opts.StepOutput == nil {
		opts.StepOutput = os.Stdout
	}
	return &Engine{
		resolver: resolver,
		tasks:    executor.NewTaskExecutor(resolver, runner, opts.Headers, logger),
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes a validated flow with the given bindings and no initial
// pipeline input. The returned result's Success flag reflects only whether
// the engine completed structurally; inspect the per-task results to judge
// whether the run accomplished its goal.
func (e *Engine) Run(def *types.Flow, binds template.Bindings) *types.FlowResult {
	return e.run(def, binds, nil, 0)
}

func (e *Engine) run(def *types.Flow, binds template.Bindings, input *string, depth int) *types.FlowResult {
	if depth > MaxNestingDepth {
		e.logger.Warn("maximum flow nesting depth exceeded",
			"flow", def.DisplayName(), "depth", depth)
		return &types.FlowResult{Success: false}
	}

	flowID := e.reporter.Add(def.DisplayName())
	defer e.reporter.Done(flowID, true)

	result := &types.FlowResult{Success: true}
	current := input

	for i, ref := range def.Order {
		stage, ok := def.Stages[ref.Stage]
		if !ok {
			// Validation catches this for the top-level flow; nested
			// definitions are taken as-is, so skip rather than fault.
			e.logger.Warn("stage not defined, skipping", "stage", ref.Stage)
			result.Stages = append(result.Stages, types.StageResult{Stage: ref.Stage})
			current = nil
			continue
		}

		e.reporter.Update(flowID, fmt.Sprintf("stage %d/%d: %s", i+1, len(def.Order), ref.Stage))
		e.logger.Debug("starting stage",
			"flow", def.DisplayName(), "stage", ref.Stage,
			"distribution", stage.EffectiveDistribution(), "has_input", current != nil)

		var stageResult types.StageResult
		switch stage.EffectiveDistribution() {
		case types.DistributionChained:
			stageResult, current = e.runChained(ref.Stage, stage, binds, current, depth)
		default:
			stageResult, current = e.runBroadcast(ref.Stage, stage, binds, current, depth)
		}
		result.Stages = append(result.Stages, stageResult)
	}

	result.Output = current
	return result
}

// runBroadcast launches every task concurrently against the same stage
// input. The stage is a fan-in barrier: it completes only when every task
// has finished. The stage output joins the successful, non-empty task
// outputs with newlines in declared task order, independent of completion
// order; downstream consumers cannot infer timing from output position.
func (e *Engine) runBroadcast(name string, stage *types.Stage, binds template.Bindings, input *string, depth int) (types.StageResult, *string) {
	results := make([]types.TaskResult, len(stage.Tasks))

	var g errgroup.Group
	for i, task := range stage.Tasks {
		i, task := i, task
		taskInput := input
		if !task.Settings.PipeInput() {
			taskInput = nil
		}
		g.Go(func() error {
			results[i] = e.runTask(task, binds, taskInput, depth)
			return nil
		})
	}
	// Tasks never return errors; Wait is purely the stage barrier.
	_ = g.Wait()

	var outputs []string
	for _, r := range results {
		if r.Success && r.Output != "" {
			if trimmed := strings.TrimSpace(r.Output); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
	}

	var stageOutput *string
	if len(outputs) > 0 {
		joined := strings.Join(outputs, "\n")
		stageOutput = &joined
	}
	return types.StageResult{Stage: name, Tasks: results}, stageOutput
}

// runChained executes tasks strictly one at a time, threading a running
// value: each successful, piping task's trimmed output becomes the next
// task's input; a failure, empty output, or disabled output-piping resets
// the value to absent.
func (e *Engine) runChained(name string, stage *types.Stage, binds template.Bindings, input *string, depth int) (types.StageResult, *string) {
	results := make([]types.TaskResult, 0, len(stage.Tasks))
	current := input

	for _, task := range stage.Tasks {
		taskInput := current
		if !task.Settings.PipeInput() {
			taskInput = nil
		}

		result := e.runTask(task, binds, taskInput, depth)
		results = append(results, result)

		if result.Success && result.Output != "" && task.Settings.PipeOutput() {
			trimmed := strings.TrimSpace(result.Output)
			current = &trimmed
		} else {
			current = nil
		}
	}

	return types.StageResult{Stage: name, Tasks: results}, current
}

// runTask executes one task of any kind. Panics are caught at this boundary
// and converted into a failed result; they never abort siblings or the stage.
func (e *Engine) runTask(task *types.Task, binds template.Bindings, input *string, depth int) (result types.TaskResult) {
	id := e.reporter.Add(taskDescription(task))
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked", "task", task.Label(), "panic", r)
			result = types.TaskResult{Label: task.Label()}
		}
		e.reporter.Done(id, result.Success)
	}()

	kind, err := task.Kind()
	if err != nil {
		e.logger.Warn("unrecognized task", "error", err)
		return types.TaskResult{Label: task.Label()}
	}

	var detail string
	switch kind {
	case types.TaskKindAlias:
		result, detail = e.tasks.ExecuteAlias(task.Alias, binds, input, e.opts.StripColors)
	case types.TaskKindCommand:
		result, detail = e.tasks.ExecuteCommand(task.Command, binds, input, e.opts.StripColors)
	case types.TaskKindFlow:
		result = e.runNestedFlow(task, binds, input, depth)
	}

	if !result.Success && detail != "" {
		e.reporter.Update(id, "failed: "+detail)
	}
	if result.Success && result.Output != "" && (e.opts.PrintStepOutput || task.Settings.PrintOutput()) {
		e.stepMu.Lock()
		fmt.Fprintf(e.opts.StepOutput, "\n%s:\n%s\n", result.Label, strings.TrimSpace(result.Output))
		e.stepMu.Unlock()
	}
	return result
}

// runNestedFlow resolves and re-enters the engine for a flow task. The
// derived bindings are an independent copy; sibling branches never share
// variable state. Beyond MaxNestingDepth the branch fails without recursing.
func (e *Engine) runNestedFlow(task *types.Task, binds template.Bindings, input *string, depth int) types.TaskResult {
	label := "flow:" + task.Flow

	if depth+1 > MaxNestingDepth {
		e.logger.Warn("refusing to nest deeper", "flow", task.Flow, "depth", depth+1)
		return types.TaskResult{Label: label}
	}

	child, err := e.resolver.LoadFlow(task.Flow)
	if err != nil {
		e.logger.Warn("nested flow not found", "flow", task.Flow, "error", err)
		return types.TaskResult{Label: label + " (not found)"}
	}

	childBinds := binds.Child(task.Variables)
	childResult := e.run(child, childBinds, input, depth+1)

	output, _ := childResult.FinalOutput()
	return types.TaskResult{
		Label:   label,
		Output:  output,
		Success: childResult.Success,
	}
}

func taskDescription(task *types.Task) string {
	if task.Description != "" {
		return task.Label() + " - " + task.Description
	}
	return task.Label()
}
