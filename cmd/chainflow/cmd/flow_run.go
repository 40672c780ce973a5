package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chainflow-dev/chainflow/internal/cli"
	"github.com/chainflow-dev/chainflow/internal/executor"
	"github.com/chainflow-dev/chainflow/internal/flow"
	"github.com/chainflow-dev/chainflow/internal/logging"
	"github.com/chainflow-dev/chainflow/internal/progress"
	"github.com/chainflow-dev/chainflow/internal/report"
	"github.com/chainflow-dev/chainflow/internal/template"
)

var flowRunCmd = &cobra.Command{
	Use:   "run <flow> [flags] [--<variable> <value>]...",
	Short: "Run a defined flow",
	Long: `Run a flow by name. Besides the listed flags, any --<variable> <value>
pair is consumed as a flow variable assignment. Declared flow variables not
supplied on the command line are prompted for interactively.

Flags:
  --print-step-output   print each step's output after execution
  --strip-colors        strip ANSI color codes from output
  --debug               show debug logging
  --show-full-output    show full output without truncation
  --save-output         save output to the results directory
  --headers "K:V"       header to include (repeatable)`,
	// Free-form --<variable> <value> pairs cannot pass pflag, so all
	// argument handling is done in parseRunArgs.
	DisableFlagParsing: true,
	RunE:               runFlowRun,
}

func init() {
	flowCmd.AddCommand(flowRunCmd)
}

// runFlags holds the recognized flow-run options.
type runFlags struct {
	printStepOutput bool
	stripColors     bool
	debug           bool
	showFullOutput  bool
	saveOutput      bool
	headers         []string
	help            bool
}

// parseRunArgs splits the raw argument list into the flow name, recognized
// flags, and free-form variable assignments. A bare unrecognized token, or
// a trailing flag with no value, is a usage error.
func parseRunArgs(args []string) (string, runFlags, map[string]string, error) {
	var opts runFlags
	vars := make(map[string]string)

	if len(args) == 0 {
		return "", opts, nil, fmt.Errorf("flow name is required")
	}
	if strings.HasPrefix(args[0], "-") {
		if args[0] == "-h" || args[0] == "--help" {
			opts.help = true
			return "", opts, nil, nil
		}
		return "", opts, nil, fmt.Errorf("flow name must come before flags, got %q", args[0])
	}

	name := args[0]
	rest := args[1:]

	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch arg {
		case "--print-step-output":
			opts.printStepOutput = true
		case "--strip-colors":
			opts.stripColors = true
		case "--debug":
			opts.debug = true
		case "--show-full-output":
			opts.showFullOutput = true
		case "--save-output":
			opts.saveOutput = true
		case "-h", "--help":
			opts.help = true
		case "-v", "--verbose":
			verbose = true
		case "--headers":
			if i+1 >= len(rest) {
				return "", opts, nil, fmt.Errorf("no value provided for --headers")
			}
			i++
			opts.headers = append(opts.headers, rest[i])
		default:
			if !strings.HasPrefix(arg, "--") {
				return "", opts, nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			varName := strings.TrimLeft(arg, "-")
			if varName == "" {
				return "", opts, nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			if i+1 >= len(rest) {
				return "", opts, nil, fmt.Errorf("no value provided for variable %q", varName)
			}
			i++
			vars[varName] = rest[i]
		}
	}

	return name, opts, vars, nil
}

func runFlowRun(cmd *cobra.Command, args []string) error {
	name, opts, userVars, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if opts.help {
		return cmd.Help()
	}

	dir, err := getWorkDir()
	if err != nil {
		return err
	}
	cfg, cat, logger, err := setup()
	if err != nil {
		return err
	}
	if opts.debug {
		logger = logging.NewWithLevel(slog.LevelDebug)
	}

	def, err := cat.LoadFlow(name)
	if err != nil {
		return err
	}

	// Bind declared variables, prompting for anything not supplied.
	binds := make(template.Bindings, len(def.Variables))
	for varName := range def.Variables {
		if value, ok := userVars[varName]; ok {
			binds[varName] = value
			continue
		}
		value, err := cli.Prompt(fmt.Sprintf("Please provide a value for variable %q", varName))
		if err != nil {
			return err
		}
		binds[varName] = value
	}

	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	// Validation runs before any subprocess is spawned.
	validator := flow.NewValidator(cat)
	if err := validator.Validate(def, binds); err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	runLogger := logging.WithRun(logging.WithFlow(logger, name), runID)

	reporter := progress.NewConsole(os.Stdout)
	runner := executor.NewShellRunner()
	engine := flow.NewEngine(cat, runner, reporter, flow.Options{
		PrintStepOutput: opts.printStepOutput,
		StripColors:     opts.stripColors,
		Headers:         headers,
	}, runLogger)

	result := engine.Run(def, binds)

	// Summary
	heading := "Flow Execution Summary"
	if opts.showFullOutput {
		heading = "Flow Execution Details"
	}
	fmt.Printf("\n%s\n", heading)

	for _, stage := range result.Stages {
		fmt.Printf("\nStage: %s\n", stage.Stage)
		for _, task := range stage.Tasks {
			if task.Success {
				fmt.Printf("✓ %s:\n  %s\n", task.Label, report.Summarize(task.Label, task.Output, opts.showFullOutput))
			} else {
				fmt.Printf("✗ %s: Failed\n", task.Label)
			}
		}
	}

	if output, ok := result.FinalOutput(); ok {
		fmt.Printf("\nFinal Output:\n=============\n%s\n", output)
	}

	if opts.saveOutput {
		writer := report.NewWriter(cfg.ResultsDir(dir))
		path, err := writer.Save(name, runID, result, opts.showFullOutput)
		if err != nil {
			return err
		}
		fmt.Printf("\nOutput saved to: %s\n", path)
	}

	return nil
}
