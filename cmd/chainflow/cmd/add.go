package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainflow-dev/chainflow/internal/cli"
	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new tool directory with config and aliases files",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	_, cat, _, err := setup()
	if err != nil {
		return err
	}

	err = cat.ScaffoldTool(name, false)
	if flowerrors.HasCode(err, flowerrors.CodeConfigToolExists) {
		overwrite, cerr := cli.Confirm(
			fmt.Sprintf("Tool %q already exists. Overwrite its config and aliases?", name), false)
		if cerr != nil {
			return cerr
		}
		if !overwrite {
			return err
		}
		err = cat.ScaffoldTool(name, true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created tool %q with config and aliases files.\n", name)
	return nil
}
