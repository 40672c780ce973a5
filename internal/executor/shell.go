// Package executor provides shell process execution and task resolution
// for flow runs.
package executor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// ansiPattern matches ANSI escape sequences (CSI and single-character
// escapes). Stripping with it is idempotent.
var ansiPattern = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// stderrNoise lists case-insensitive markers for diagnostic noise emitted
// by wrapped tools. Lines containing any of them are dropped before stderr
// is surfaced to the caller, so a tool's own tracebacks are not mistaken
// for the actual error.
var stderrNoise = []string{
	"warning:",
	"traceback",
	"file \"",
	"line ",
	"module",
	"import",
	"certificate",
	"insecurerequest",
	"urllib3",
}

// FilterStderr drops noise lines from stderr output.
func FilterStderr(stderr string) string {
	if stderr == "" {
		return ""
	}
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		noisy := false
		for _, marker := range stderrNoise {
			if strings.Contains(lower, marker) {
				noisy = true
				break
			}
		}
		if !noisy {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

// RunSpec describes one process invocation.
type RunSpec struct {
	// Command is the full command line, run through the shell.
	Command string

	// Stdin, when non-nil, is fed to the process. Nil means no input.
	Stdin *string

	// StripANSI removes ANSI escape sequences from both output streams.
	StripANSI bool
}

// RunResult captures a finished process.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ShellRunner spawns external processes through a shell. There is no
// cancellation or timeout: once launched, a process runs to completion.
type ShellRunner struct {
	// DefaultShell is the shell used to execute commands.
	// Defaults to "/bin/sh".
	DefaultShell string

	// RelaxTLS suppresses TLS-verification warnings in tools that probe
	// HTTPS endpoints, via environment variables.
	RelaxTLS bool
}

// NewShellRunner creates a ShellRunner with default settings.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		DefaultShell: "/bin/sh",
		RelaxTLS:     true,
	}
}

// Run executes the command and captures stdout and stderr separately.
// A non-zero exit code is reported via RunResult.ExitCode, not as an error;
// the error return covers launch failures only.
func (r *ShellRunner) Run(spec RunSpec) (*RunResult, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("command is empty")
	}

	shell := r.DefaultShell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell, "-c", spec.Command)
	cmd.Env = os.Environ()
	if r.RelaxTLS {
		cmd.Env = append(cmd.Env,
			"PYTHONWARNINGS=ignore:Unverified HTTPS request",
			"REQUESTS_CA_BUNDLE=",
		)
	}

	if spec.Stdin != nil {
		cmd.Stdin = strings.NewReader(*spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("starting command: %w", err)
		}
	}

	out := stdout.String()
	errOut := stderr.String()
	if spec.StripANSI {
		out = StripANSI(out)
		errOut = StripANSI(errOut)
	}

	return &RunResult{
		Stdout:   out,
		Stderr:   errOut,
		ExitCode: exitCode,
	}, nil
}
