// Package cli wires the inkpress commands. Each command is a small type
// with a register/run pair; register builds the cobra command and run
// carries the actual behavior, so commands stay testable without cobra.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/buildlog"
	"github.com/inkpress-dev/inkpress/internal/config"
)

var verbose bool

// Execute runs the root command and exits on failure.
func Execute() {
	// Site-local .env files feed the INKPRESS_* overrides.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "inkpress",
		Short: "inkpress builds and previews markdown documentation sites",
	}

	addCommand(rootCmd, &initCmd{})
	addCommand(rootCmd, &validateCmd{})
	addCommand(rootCmd, &buildCmd{})
	addCommand(rootCmd, &newCmd{})
	addCommand(rootCmd, &draftCmd{})
	addCommand(rootCmd, &serveCmd{})
	addCommand(rootCmd, &browseCmd{})
	addCommand(rootCmd, &logCmd{})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type inkpressCmd interface {
	register() *cobra.Command
	run(ctx context.Context, args []string) error
}

func addCommand(parent *cobra.Command, child inkpressCmd) {
	cobraChild := child.register()
	cobraChild.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return child.run(cmd.Context(), args)
	}
	parent.AddCommand(cobraChild)
}

// loadConfig reads the site configuration from the working directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.New(cwd)
}

func openJournal(cfg *config.Config) (*buildlog.Journal, error) {
	return buildlog.New(filepath.Join(cfg.LogsDir(), "build.log"))
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
