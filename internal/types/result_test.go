package types

import "testing"

func TestFlowResult_FinalOutput(t *testing.T) {
	r := &FlowResult{Success: true}
	if _, ok := r.FinalOutput(); ok {
		t.Error("expected no output")
	}

	out := "result"
	r.Output = &out
	got, ok := r.FinalOutput()
	if !ok || got != "result" {
		t.Errorf("got %q, ok=%v", got, ok)
	}
}

func TestFlowResult_FailedTasks(t *testing.T) {
	r := &FlowResult{
		Success: true,
		Stages: []StageResult{
			{Stage: "one", Tasks: []TaskResult{
				{Label: "a:a", Success: true},
				{Label: "b:b", Success: false},
			}},
			{Stage: "two", Tasks: []TaskResult{
				{Label: "command:false", Success: false},
			}},
		},
	}

	failed := r.FailedTasks()
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed tasks, got %d", len(failed))
	}
	if failed[0] != "b:b" || failed[1] != "command:false" {
		t.Errorf("unexpected failed labels: %v", failed)
	}
}
