package cmd

import (
	"github.com/spf13/cobra"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Manage and run flows",
}

func init() {
	rootCmd.AddCommand(flowCmd)
}
