package catalog

import (
	"os"
	"path/filepath"
	"testing"

	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
	"github.com/chainflow-dev/chainflow/internal/logging"
	"github.com/chainflow-dev/chainflow/internal/testutil"
)

const katanaConfig = `description: Web crawler
tags:
  - crawl
  - web
run_command: katana
accepts_stdin: true
header_flag: "-H"
`

const katanaAliases = `aliases:
  crawl:
    description: Standard crawl
    command: "-u {{url}} -d 2"
    variables:
      - name: url
  passive:
    command: "-u {{url}} -ps"
`

func newTestCatalog(t *testing.T) (*Catalog, string, string) {
	t.Helper()
	cfg, dir := testutil.NewTestConfig(t)
	cat := NewWithDirs(cfg.ToolsDir(dir), cfg.FlowsDir(dir), logging.NewForTest())
	return cat, cfg.ToolsDir(dir), cfg.FlowsDir(dir)
}

func TestLoadTool(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)

	tool, aliases, err := cat.LoadTool("katana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.RunCommand != "katana" || tool.HeaderFlag != "-H" {
		t.Errorf("unexpected tool: %+v", tool)
	}
	if !tool.AcceptsStdin {
		t.Error("accepts_stdin should be true")
	}
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(aliases))
	}
	if aliases["crawl"].Variables[0].Name != "url" {
		t.Errorf("unexpected alias: %+v", aliases["crawl"])
	}
}

func TestLoadTool_NotFound(t *testing.T) {
	cat, _, _ := newTestCatalog(t)
	_, _, err := cat.LoadTool("ghost")
	if !flowerrors.HasCode(err, flowerrors.CodeConfigToolNotFound) {
		t.Errorf("expected CONFIG_002, got %v", err)
	}
}

func TestLoadTool_MissingFilesTolerated(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "bare", "", "")

	tool, aliases, err := cat.LoadTool("bare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tool.AcceptsStdin {
		t.Error("accepts_stdin should default to true without config.yaml")
	}
	if len(aliases) != 0 {
		t.Errorf("expected no aliases, got %d", len(aliases))
	}
}

func TestLoadTool_MalformedConfig(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "broken", "run_command: [\n", "")

	_, _, err := cat.LoadTool("broken")
	if !flowerrors.HasCode(err, flowerrors.CodeConfigParseError) {
		t.Errorf("expected CONFIG_004, got %v", err)
	}
}

func TestLoadAlias(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)

	tool, alias, err := cat.LoadAlias("katana:crawl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.RunCommand != "katana" {
		t.Errorf("tool = %+v", tool)
	}
	if alias.Command != "-u {{url}} -d 2" {
		t.Errorf("alias = %+v", alias)
	}
}

func TestLoadAlias_Errors(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)

	if _, _, err := cat.LoadAlias("katana"); err == nil {
		t.Error("expected error for reference without colon")
	}
	_, _, err := cat.LoadAlias("katana:nope")
	if !flowerrors.HasCode(err, flowerrors.CodeConfigAliasNotFound) {
		t.Errorf("expected CONFIG_003, got %v", err)
	}
	_, _, err = cat.LoadAlias("ghost:crawl")
	if !flowerrors.HasCode(err, flowerrors.CodeConfigToolNotFound) {
		t.Errorf("expected CONFIG_002, got %v", err)
	}
}

func TestLoadFlow(t *testing.T) {
	cat, _, flowsDir := newTestCatalog(t)
	testutil.WriteFlow(t, flowsDir, "recon", `name: Recon
description: Basic recon flow
variables:
  url: "{{url}}"
stages:
  crawl:
    tasks:
      - alias: katana:crawl
flow:
  - stage: crawl
`)

	flow, err := cat.LoadFlow("recon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Name != "Recon" {
		t.Errorf("name = %q", flow.Name)
	}
	if len(flow.Order) != 1 || flow.Order[0].Stage != "crawl" {
		t.Errorf("order = %+v", flow.Order)
	}
	if flow.Stages["crawl"].Tasks[0].Alias != "katana:crawl" {
		t.Errorf("stages = %+v", flow.Stages)
	}
}

func TestLoadFlow_NotFound(t *testing.T) {
	cat, _, _ := newTestCatalog(t)
	_, err := cat.LoadFlow("ghost")
	if !flowerrors.HasCode(err, flowerrors.CodeConfigFlowNotFound) {
		t.Errorf("expected CONFIG_001, got %v", err)
	}
}

func TestListTools(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)
	testutil.WriteTool(t, toolsDir, "arjun", "description: Parameter discovery\ntags: [params]\nrun_command: arjun\naccepts_stdin: false\n", "")

	tools, err := cat.ListTools("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}
	if tools[0].Name != "arjun" || tools[1].Name != "katana" {
		t.Errorf("tools not sorted: %v", tools)
	}

	filtered, err := cat.ListTools("crawl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "katana" {
		t.Errorf("tag filter gave %v", filtered)
	}
}

func TestListAliases(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)

	aliases, err := cat.ListAliases()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(aliases))
	}
	if aliases[0].Ref != "katana:crawl" || aliases[1].Ref != "katana:passive" {
		t.Errorf("aliases not sorted by ref: %v", aliases)
	}
}

func TestListFlows(t *testing.T) {
	cat, _, flowsDir := newTestCatalog(t)
	testutil.WriteFlow(t, flowsDir, "recon", "name: Recon\ntags: [web]\n")
	testutil.WriteFlow(t, flowsDir, "audit", "name: Audit\n")

	flows, err := cat.ListFlows("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flows) != 2 || flows[0].Name != "audit" || flows[1].Name != "recon" {
		t.Errorf("flows = %v", flows)
	}

	filtered, err := cat.ListFlows("web")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "recon" {
		t.Errorf("tag filter gave %v", filtered)
	}
}

func TestScaffoldTool(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)

	if err := cat.ScaffoldTool("newtool", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range []string{toolConfigFile, aliasFile} {
		if _, err := os.Stat(filepath.Join(toolsDir, "newtool", f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}

	// Scaffolded output must be loadable.
	tool, aliases, err := cat.LoadTool("newtool")
	if err != nil {
		t.Fatalf("scaffolded tool did not load: %v", err)
	}
	if !tool.AcceptsStdin {
		t.Error("scaffolded tool should accept stdin")
	}
	if _, ok := aliases["default"]; !ok {
		t.Error("scaffolded tool should have a default alias")
	}

	err = cat.ScaffoldTool("newtool", false)
	if !flowerrors.HasCode(err, flowerrors.CodeConfigToolExists) {
		t.Errorf("expected CONFIG_005, got %v", err)
	}
}

func TestScaffoldTool_Force(t *testing.T) {
	cat, toolsDir, _ := newTestCatalog(t)
	testutil.WriteTool(t, toolsDir, "katana", katanaConfig, katanaAliases)

	if err := cat.ScaffoldTool("katana", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tool, aliases, err := cat.LoadTool("katana")
	if err != nil {
		t.Fatalf("rescaffolded tool did not load: %v", err)
	}
	if tool.RunCommand != "" {
		t.Errorf("config not reset, run_command = %q", tool.RunCommand)
	}
	if _, ok := aliases["crawl"]; ok {
		t.Error("old aliases survived the rescaffold")
	}
	if _, ok := aliases["default"]; !ok {
		t.Error("scaffold default alias missing")
	}
}
