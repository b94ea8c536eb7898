package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/config"
)

type initCmd struct{}

func (c *initCmd) register() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .inkpress directory and a default config",
		Args:  cobra.NoArgs,
	}
}

func (c *initCmd) run(ctx context.Context, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := config.InitSiteDir(cwd); err != nil {
		return err
	}
	fmt.Printf("Initialized %s\n", filepath.Join(cwd, config.SiteDir))
	return nil
}
