package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "List all aliases from all tools",
	Args:  cobra.NoArgs,
	RunE:  runAliases,
}

func init() {
	rootCmd.AddCommand(aliasesCmd)
}

func runAliases(cmd *cobra.Command, args []string) error {
	_, cat, _, err := setup()
	if err != nil {
		return err
	}

	aliases, err := cat.ListAliases()
	if err != nil {
		return fmt.Errorf("listing aliases: %w", err)
	}

	if len(aliases) == 0 {
		fmt.Println("No aliases found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL:ALIAS\tDESCRIPTION")
	for _, alias := range aliases {
		fmt.Fprintf(w, "%s\t%s\n", alias.Ref, alias.Description)
	}
	return w.Flush()
}
