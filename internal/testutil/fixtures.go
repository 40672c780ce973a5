// Package testutil provides test fixtures and helpers for chainflow.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainflow-dev/chainflow/internal/config"
)

// NewTestConfig creates a test configuration rooted in temporary
// directories that will be cleaned up with the test.
func NewTestConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.ToolsDir = filepath.Join(tmpDir, "tools")
	cfg.Paths.FlowsDir = filepath.Join(tmpDir, "flows")
	cfg.Paths.ResultsDir = filepath.Join(tmpDir, "results")

	for _, dir := range []string{cfg.Paths.ToolsDir, cfg.Paths.FlowsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	return cfg, tmpDir
}

// WriteTool writes a tool's config.yaml and aliases.yaml fixture under
// toolsDir/name.
func WriteTool(t *testing.T, toolsDir, name, configYAML, aliasesYAML string) {
	t.Helper()
	toolDir := filepath.Join(toolsDir, name)
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		t.Fatalf("Failed to create tool dir: %v", err)
	}
	if configYAML != "" {
		WriteFile(t, filepath.Join(toolDir, "config.yaml"), configYAML)
	}
	if aliasesYAML != "" {
		WriteFile(t, filepath.Join(toolDir, "aliases.yaml"), aliasesYAML)
	}
}

// WriteFlow writes a flow definition fixture as flowsDir/name.yaml.
func WriteFlow(t *testing.T, flowsDir, name, flowYAML string) {
	t.Helper()
	if err := os.MkdirAll(flowsDir, 0755); err != nil {
		t.Fatalf("Failed to create flows dir: %v", err)
	}
	WriteFile(t, filepath.Join(flowsDir, name+".yaml"), flowYAML)
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
