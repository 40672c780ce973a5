package main

import (
	"fmt"
	"os"

	"github.com/chainflow-dev/chainflow/cmd/chainflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
