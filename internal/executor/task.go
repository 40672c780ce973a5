package executor

import (
	"fmt"
	"log/slog"

	"github.com/chainflow-dev/chainflow/internal/template"
	"github.com/chainflow-dev/chainflow/internal/types"
)

// ToolResolver resolves "tool:alias" references against the catalog.
type ToolResolver interface {
	LoadAlias(ref string) (*types.Tool, *types.Alias, error)
}

// TaskExecutor resolves and executes alias and command tasks into
// standardized results. Process launches are delegated to a ShellRunner.
type TaskExecutor struct {
	resolver ToolResolver
	runner   *ShellRunner
	headers  []types.Header
	logger   *slog.Logger
}

// NewTaskExecutor creates a task executor.
func NewTaskExecutor(resolver ToolResolver, runner *ShellRunner, headers []types.Header, logger *slog.Logger) *TaskExecutor {
	return &TaskExecutor{
		resolver: resolver,
		runner:   runner,
		headers:  headers,
		logger:   logger,
	}
}

// BuildAliasCommand composes the full shell invocation for an alias.
// Declared variables with a transform are transformed before substitution;
// placeholders with no binding are left verbatim. When the tool declares a
// header flag and headers were supplied, one flag+quoted-header pair is
// appended per header.
func BuildAliasCommand(tool *types.Tool, alias *types.Alias, binds template.Bindings, headers []types.Header) (string, error) {
	processed := binds.Clone()
	for _, v := range alias.Variables {
		if v.Transform == "" {
			continue
		}
		value, ok := processed[v.Name]
		if !ok {
			continue
		}
		transformed, err := template.Transform(value, v.Transform)
		if err != nil {
			return "", fmt.Errorf("transforming variable %q: %w", v.Name, err)
		}
		processed[v.Name] = transformed
	}

	cmd := processed.Substitute(alias.Command)
	full := tool.RunCommand + " " + cmd

	if tool.HeaderFlag != "" {
		for _, h := range headers {
			full += fmt.Sprintf(" %s %q", tool.HeaderFlag, h.Key+": "+h.Value)
		}
	}
	return full, nil
}

// ExecuteAlias runs an alias task. The returned detail carries the filtered
// error output when the task failed, for user-facing reporting.
func (e *TaskExecutor) ExecuteAlias(ref string, binds template.Bindings, input *string, stripANSI bool) (types.TaskResult, string) {
	result := types.TaskResult{Label: ref}

	tool, alias, err := e.resolver.LoadAlias(ref)
	if err != nil {
		e.logger.Warn("alias resolution failed", "alias", ref, "error", err)
		return result, err.Error()
	}

	command, err := BuildAliasCommand(tool, alias, binds, e.headers)
	if err != nil {
		e.logger.Warn("alias command build failed", "alias", ref, "error", err)
		return result, err.Error()
	}

	return e.runShell(result, command, input, stripANSI)
}

// ExecuteCommand runs a raw command task, substituting {{name}} placeholders
// directly from the bindings. Command tasks support no transforms.
func (e *TaskExecutor) ExecuteCommand(command string, binds template.Bindings, input *string, stripANSI bool) (types.TaskResult, string) {
	filled := binds.Substitute(command)
	result := types.TaskResult{Label: "command:" + filled}
	return e.runShell(result, filled, input, stripANSI)
}

// runShell delegates to the ShellRunner and converts the outcome into a
// TaskResult. Non-zero exit and launch failures both yield Success=false;
// neither is an error to the caller.
func (e *TaskExecutor) runShell(result types.TaskResult, command string, input *string, stripANSI bool) (types.TaskResult, string) {
	e.logger.Debug("executing", "label", result.Label, "command", command)

	run, err := e.runner.Run(RunSpec{
		Command:   command,
		Stdin:     input,
		StripANSI: stripANSI,
	})
	if err != nil {
		e.logger.Warn("launch failed", "label", result.Label, "error", err)
		return result, err.Error()
	}

	if run.ExitCode != 0 {
		detail := FilterStderr(run.Stderr)
		if detail == "" {
			detail = "command failed to execute properly"
		}
		e.logger.Debug("task failed", "label", result.Label, "exit_code", run.ExitCode)
		return result, detail
	}

	result.Output = run.Stdout
	result.Success = true
	return result, ""
}
