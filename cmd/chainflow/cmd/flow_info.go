package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chainflow-dev/chainflow/internal/types"
)

var flowInfoCmd = &cobra.Command{
	Use:   "info <flow>",
	Short: "Show a flow's structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlowInfo,
}

func init() {
	flowCmd.AddCommand(flowInfoCmd)
}

func runFlowInfo(cmd *cobra.Command, args []string) error {
	name := args[0]

	_, cat, _, err := setup()
	if err != nil {
		return err
	}

	def, err := cat.LoadFlow(name)
	if err != nil {
		return err
	}

	fmt.Printf("Flow:        %s\n", name)
	fmt.Printf("Description: %s\n", def.Description)

	if len(def.Variables) > 0 {
		fmt.Println("\nVariables:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for varName, placeholder := range def.Variables {
			fmt.Fprintf(w, "  %s\t%s\n", varName, placeholder)
		}
		w.Flush()
	}

	fmt.Println("\nFlow structure:")
	for _, ref := range def.Order {
		stage, ok := def.Stages[ref.Stage]
		if !ok {
			fmt.Printf("● %s (not defined)\n", ref.Stage)
			continue
		}

		mode := "SEQUENTIAL"
		if stage.Parallel {
			mode = "PARALLEL"
		}
		fmt.Printf("● %s: %s (distribution=%s)\n", mode, ref.Stage, stage.EffectiveDistribution())
		if stage.Description != "" {
			fmt.Printf("│   %s\n", stage.Description)
		}

		for _, task := range stage.Tasks {
			label := task.Label()
			if _, err := task.Kind(); err != nil {
				label = "invalid task"
			}
			fmt.Printf("├── %s", label)
			if task.Description != "" {
				fmt.Printf(" - %s", task.Description)
			}
			fmt.Println()
			for _, key := range []string{types.SettingPipeInput, types.SettingPipeOutput, types.SettingPrintOutput} {
				if task.Settings.Bool(key, false) {
					fmt.Printf("│   └── %s: true\n", key)
				}
			}
		}
	}

	return nil
}
