package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type logCmd struct {
	lines int
}

func (c *logCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the tail of the build journal",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVarP(&c.lines, "lines", "n", 20, "Number of journal lines to show")
	return cmd
}

func (c *logCmd) run(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	lines, total := journal.Tail(c.lines)
	if total == 0 {
		fmt.Println("The build journal is empty.")
		return nil
	}
	if total > len(lines) {
		fmt.Printf("... %d earlier line(s)\n", total-len(lines))
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
