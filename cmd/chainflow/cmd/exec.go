package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainflow-dev/chainflow/internal/executor"
	"github.com/chainflow-dev/chainflow/internal/template"
	"github.com/chainflow-dev/chainflow/internal/types"
)

var execHeaders []string

var execCmd = &cobra.Command{
	Use:   "exec <tool:alias> [args...]",
	Short: "Execute a single alias directly",
	Long: `Execute a given alias with positional arguments bound to the alias's
declared variables in order.

Example: chainflow exec nmap:default-enum 192.168.1.1 --headers "Auth:Bearer xyz"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringArrayVar(&execHeaders, "headers", nil, `headers to include, in "Key:Value" format`)
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	ref := args[0]
	values := args[1:]

	_, cat, logger, err := setup()
	if err != nil {
		return err
	}

	tool, alias, err := cat.LoadAlias(ref)
	if err != nil {
		return err
	}

	if len(values) < len(alias.Variables) {
		return fmt.Errorf("alias %s needs %d variable(s), got %d", ref, len(alias.Variables), len(values))
	}

	binds := make(template.Bindings, len(alias.Variables))
	for i, v := range alias.Variables {
		binds[v.Name] = values[i]
	}

	headers, err := parseHeaders(execHeaders)
	if err != nil {
		return err
	}

	command, err := executor.BuildAliasCommand(tool, alias, binds, headers)
	if err != nil {
		return err
	}

	fmt.Printf("Executing: %s\n", command)
	logger.Debug("executing alias", "alias", ref, "command", command)

	runner := executor.NewShellRunner()
	result, err := runner.Run(executor.RunSpec{Command: command})
	if err != nil {
		return fmt.Errorf("running command: %w", err)
	}

	if result.Stdout != "" {
		fmt.Print(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d", result.ExitCode)
	}
	return nil
}

// parseHeaders parses repeated "Key:Value" header flags.
func parseHeaders(raw []string) ([]types.Header, error) {
	headers := make([]types.Header, 0, len(raw))
	for _, h := range raw {
		header, err := types.ParseHeader(h)
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)
	}
	return headers, nil
}
