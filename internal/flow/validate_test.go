package flow

import (
	"testing"

	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
	"github.com/chainflow-dev/chainflow/internal/template"
	"github.com/chainflow-dev/chainflow/internal/types"
)

// stubResolver serves flows and aliases from in-memory maps.
type stubResolver struct {
	flows   map[string]*types.Flow
	tools   map[string]*types.Tool
	aliases map[string]*types.Alias
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		flows:   make(map[string]*types.Flow),
		tools:   make(map[string]*types.Tool),
		aliases: make(map[string]*types.Alias),
	}
}

func (s *stubResolver) LoadFlow(name string) (*types.Flow, error) {
	f, ok := s.flows[name]
	if !ok {
		return nil, flowerrors.FlowNotFound(name)
	}
	return f, nil
}

func (s *stubResolver) LoadAlias(ref string) (*types.Tool, *types.Alias, error) {
	alias, ok := s.aliases[ref]
	if !ok {
		return nil, nil, flowerrors.AliasNotFound("", ref)
	}
	toolName, _, err := types.SplitAlias(ref)
	if err != nil {
		return nil, nil, err
	}
	tool, ok := s.tools[toolName]
	if !ok {
		tool = &types.Tool{AcceptsStdin: true}
	}
	return tool, alias, nil
}

func singleStageFlow(stage *types.Stage) *types.Flow {
	return &types.Flow{
		Name:   "test",
		Stages: map[string]*types.Stage{"main": stage},
		Order:  []types.StageRef{{Stage: "main"}},
	}
}

func TestValidate_OK(t *testing.T) {
	r := newStubResolver()
	r.aliases["katana:crawl"] = &types.Alias{Command: "-u {{url}}"}
	r.flows["child"] = singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Command: "echo hi"}},
	})

	def := &types.Flow{
		Stages: map[string]*types.Stage{
			"scan": {
				Parallel: true,
				Tasks: []*types.Task{
					{Alias: "katana:crawl"},
					{Command: "echo {{url}}"},
				},
			},
			"summarize": {
				Distribution: types.DistributionChained,
				Tasks: []*types.Task{
					{Flow: "child", Variables: map[string]string{"target": "{{url}}"}},
					{Command: "sort -u", Settings: types.Settings{types.SettingPipeOutput: false}},
				},
			},
		},
		Order: []types.StageRef{{Stage: "scan"}, {Stage: "summarize"}},
	}

	v := NewValidator(r)
	if err := v.Validate(def, template.Bindings{"url": "https://example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NoStages(t *testing.T) {
	v := NewValidator(newStubResolver())

	err := v.Validate(&types.Flow{}, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidNoStages) {
		t.Errorf("expected VALID_008, got %v", err)
	}

	err = v.Validate(&types.Flow{
		Stages: map[string]*types.Stage{"a": {Tasks: []*types.Task{{Command: "true"}}}},
	}, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidNoStages) {
		t.Errorf("expected VALID_008 for missing order, got %v", err)
	}
}

func TestValidate_StageNotDefined(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := &types.Flow{
		Stages: map[string]*types.Stage{"a": {Tasks: []*types.Task{{Command: "true"}}}},
		Order:  []types.StageRef{{Stage: "a"}, {Stage: "ghost"}},
	}

	err := v.Validate(def, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidStageNotDefined) {
		t.Errorf("expected VALID_001, got %v", err)
	}
}

func TestValidate_EmptyStage(t *testing.T) {
	v := NewValidator(newStubResolver())
	err := v.Validate(singleStageFlow(&types.Stage{}), nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidNoTasks) {
		t.Errorf("expected VALID_002, got %v", err)
	}
}

func TestValidate_BadDistribution(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := singleStageFlow(&types.Stage{
		Distribution: "scatter",
		Tasks:        []*types.Task{{Command: "true"}},
	})

	err := v.Validate(def, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidDistribution) {
		t.Errorf("expected VALID_009, got %v", err)
	}
}

func TestValidate_ParallelChained(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := singleStageFlow(&types.Stage{
		Parallel:     true,
		Distribution: types.DistributionChained,
		Tasks:        []*types.Task{{Command: "true"}},
	})

	err := v.Validate(def, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidParallelChained) {
		t.Errorf("expected VALID_004, got %v", err)
	}
}

func TestValidate_TaskKind(t *testing.T) {
	v := NewValidator(newStubResolver())

	err := v.Validate(singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Description: "empty"}},
	}), nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidTaskKind) {
		t.Errorf("expected VALID_003 for empty task, got %v", err)
	}

	err = v.Validate(singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Alias: "a:b", Command: "echo"}},
	}), nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidTaskKind) {
		t.Errorf("expected VALID_003 for multi-kind task, got %v", err)
	}
}

func TestValidate_SettingNotBool(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{
			Command:  "true",
			Settings: types.Settings{types.SettingPipeInput: "yes"},
		}},
	})

	err := v.Validate(def, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidSettingNotBool) {
		t.Errorf("expected VALID_005, got %v", err)
	}
}

func TestValidate_AliasNotFound(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Alias: "ghost:none"}},
	})

	err := v.Validate(def, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeConfigAliasNotFound) {
		t.Errorf("expected CONFIG_003, got %v", err)
	}
}

func TestValidate_StdinNotAccepted(t *testing.T) {
	r := newStubResolver()
	r.tools["arjun"] = &types.Tool{AcceptsStdin: false}
	r.aliases["arjun:scan"] = &types.Alias{Command: "-u {{url}}"}
	v := NewValidator(r)

	// Implicit pipe_input passes; the tool just ignores its input.
	implicit := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Alias: "arjun:scan"}},
	})
	if err := v.Validate(implicit, nil); err != nil {
		t.Errorf("implicit pipe_input should pass, got %v", err)
	}

	explicit := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{
			Alias:    "arjun:scan",
			Settings: types.Settings{types.SettingPipeInput: true},
		}},
	})
	err := v.Validate(explicit, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeValidStdinNotAccepted) {
		t.Errorf("expected VALID_007, got %v", err)
	}
}

func TestValidate_CommandVariableMissing(t *testing.T) {
	v := NewValidator(newStubResolver())
	def := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Command: "echo {{target}}"}},
	})

	err := v.Validate(def, template.Bindings{"url": "x"})
	if !flowerrors.HasCode(err, flowerrors.CodeValidVariableMissing) {
		t.Errorf("expected VALID_006, got %v", err)
	}
}

func TestValidate_NestedFlow(t *testing.T) {
	r := newStubResolver()
	r.flows["child"] = singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Command: "echo hi"}},
	})
	v := NewValidator(r)

	missing := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{Flow: "ghost"}},
	})
	err := v.Validate(missing, nil)
	if !flowerrors.HasCode(err, flowerrors.CodeConfigFlowNotFound) {
		t.Errorf("expected CONFIG_001, got %v", err)
	}

	unboundRef := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{
			Flow:      "child",
			Variables: map[string]string{"target": "{{missing}}"},
		}},
	})
	err = v.Validate(unboundRef, template.Bindings{})
	if !flowerrors.HasCode(err, flowerrors.CodeValidVariableMissing) {
		t.Errorf("expected VALID_006, got %v", err)
	}

	literal := singleStageFlow(&types.Stage{
		Tasks: []*types.Task{{
			Flow:      "child",
			Variables: map[string]string{"target": "example.com"},
		}},
	})
	if err := v.Validate(literal, nil); err != nil {
		t.Errorf("literal child variables need no binding, got %v", err)
	}
}
