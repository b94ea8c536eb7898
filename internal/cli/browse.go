package cli

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/tui"
)

type browseCmd struct{}

func (c *browseCmd) register() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the content tree in the terminal",
		Args:  cobra.NoArgs,
	}
}

func (c *browseCmd) run(ctx context.Context, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	app, err := tui.NewApp(cwd)
	if err != nil {
		return err
	}
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
