package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainflow-dev/chainflow/internal/catalog"
	"github.com/chainflow-dev/chainflow/internal/config"
	"github.com/chainflow-dev/chainflow/internal/logging"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose bool
	workDir string

	// logCloser holds the configured log file, if any, until the command
	// finishes.
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "chainflow",
	Short: "chainflow - compose CLI tools into declarative flows",
	Long: `chainflow composes third-party command-line tools into multi-stage
workflows described in declarative YAML. Each stage either broadcasts its
tasks concurrently against the same input or chains them so each task's
output feeds the next.

Tools live under the tools directory (one directory per tool with
config.yaml and aliases.yaml), flows under the flows directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("chainflow {{.Version}}\n")
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// setup loads configuration and builds the catalog for the working
// directory. The logger follows the config's [logging] section;
// --verbose forces the level down to debug.
func setup() (*config.Config, *catalog.Catalog, *slog.Logger, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}
	logger, closer, err := logging.NewFromConfig(cfg, dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing logging: %w", err)
	}
	if closer != nil {
		logCloser = closer
	}

	return cfg, catalog.New(cfg, dir, logger), logger, nil
}
