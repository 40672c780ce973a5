package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var toolsTag string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List all available tools",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsTag, "tag", "", "filter tools by a tag substring")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	_, cat, _, err := setup()
	if err != nil {
		return err
	}

	tools, err := cat.ListTools(toolsTag)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}

	if len(tools) == 0 {
		fmt.Println("No tools found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tTAGS\tDESCRIPTION")
	for _, tool := range tools {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tool.Name, strings.Join(tool.Tags, ", "), tool.Description)
	}
	return w.Flush()
}
