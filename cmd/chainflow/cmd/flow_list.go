package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flowListTag string

var flowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available flows",
	Args:  cobra.NoArgs,
	RunE:  runFlowList,
}

func init() {
	flowListCmd.Flags().StringVar(&flowListTag, "tag", "", "filter flows by tag")
	flowCmd.AddCommand(flowListCmd)
}

func runFlowList(cmd *cobra.Command, args []string) error {
	_, cat, _, err := setup()
	if err != nil {
		return err
	}

	flows, err := cat.ListFlows(flowListTag)
	if err != nil {
		return fmt.Errorf("listing flows: %w", err)
	}

	if len(flows) == 0 {
		fmt.Println("No flows found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLOW\tTAGS\tDESCRIPTION")
	for _, f := range flows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, strings.Join(f.Tags, ", "), f.Description)
	}
	return w.Flush()
}
