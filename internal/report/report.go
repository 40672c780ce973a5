// Package report renders flow run summaries and writes persisted result
// files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainflow-dev/chainflow/internal/types"
)

// Summarize condenses a task's output into a short description. When full
// is set, the trimmed output is returned untouched. Otherwise a per-tool
// heuristic counts the interesting lines.
func Summarize(label, output string, full bool) string {
	if output == "" {
		return "No output"
	}
	trimmed := strings.TrimSpace(output)
	if full {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	switch {
	case strings.HasPrefix(label, "paramspider:"):
		return fmt.Sprintf("- Discovered %d parameters", countLines(lines, func(l string) bool {
			return strings.Contains(l, "=")
		}))
	case strings.HasPrefix(label, "arjun:"):
		var params []string
		for _, l := range lines {
			if strings.HasPrefix(l, "[+]") {
				params = append(params, l)
			}
		}
		if len(params) == 0 {
			return "- No parameters discovered"
		}
		return strings.Join(params, "\n")
	case strings.HasPrefix(label, "katana:"):
		return fmt.Sprintf("- Discovered %d unique URLs", countLines(lines, func(l string) bool {
			return strings.HasPrefix(l, "http")
		}))
	case strings.HasPrefix(label, "gf:"):
		return fmt.Sprintf("- Found %d matches", countLines(lines, func(l string) bool {
			return strings.HasPrefix(l, "http")
		}))
	}
	return fmt.Sprintf("- %d lines of output", len(lines))
}

func countLines(lines []string, match func(string) bool) int {
	n := 0
	for _, l := range lines {
		if match(l) {
			n++
		}
	}
	return n
}

// Writer persists flow results as flat text files in the results directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes a per-stage, per-task report plus the final pipeline output.
// It returns the path of the written file.
func (w *Writer) Save(flowName, runID string, result *types.FlowResult, full bool) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	var b strings.Builder
	kind := "Summary"
	if full {
		kind = "Details"
	}
	fmt.Fprintf(&b, "Flow Execution %s\n", kind)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 30))

	for _, stage := range result.Stages {
		fmt.Fprintf(&b, "Stage: %s\n", stage.Stage)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(stage.Stage)+7))
		for _, task := range stage.Tasks {
			if task.Success {
				fmt.Fprintf(&b, "\n✓ %s:\n  %s\n", task.Label, Summarize(task.Label, task.Output, full))
			} else {
				fmt.Fprintf(&b, "\n✗ %s: Failed\n", task.Label)
			}
		}
		b.WriteString("\n")
	}

	if output, ok := result.FinalOutput(); ok {
		fmt.Fprintf(&b, "Final Output:\n=============\n%s\n", output)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s_output.txt", flowName, runID))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing result file: %w", err)
	}
	return path, nil
}
