package types

// TaskResult is the standardized outcome of one task execution.
// Output is meaningful only when Success is true.
type TaskResult struct {
	// Label identifies the task: "tool:alias", "command:<text>", or
	// "flow:<name>".
	Label string

	Output  string
	Success bool
}

// StageResult collects the results of one stage, in declared task order.
type StageResult struct {
	Stage string
	Tasks []TaskResult
}

// FlowResult is the outcome of one flow run. Success reflects only whether
// the engine completed without a structural fault; individual tasks may
// still have failed.
type FlowResult struct {
	// Output is the final pipeline value. Nil means the last stage
	// produced no output.
	Output *string

	Success bool
	Stages  []StageResult
}

// FinalOutput returns the final pipeline value and whether one exists.
func (r *FlowResult) FinalOutput() (string, bool) {
	if r.Output == nil {
		return "", false
	}
	return *r.Output, true
}

// FailedTasks returns the labels of all failed tasks across all stages.
func (r *FlowResult) FailedTasks() []string {
	var failed []string
	for _, stage := range r.Stages {
		for _, task := range stage.Tasks {
			if !task.Success {
				failed = append(failed, task.Label)
			}
		}
	}
	return failed
}
