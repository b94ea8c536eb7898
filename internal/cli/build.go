package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/build"
	"github.com/inkpress-dev/inkpress/internal/linkcheck"
)

type buildCmd struct {
	remote bool
	jobs   int
}

func (c *buildCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site into the output folder",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&c.remote, "remote", false, "Also check that http(s) links are reachable")
	cmd.Flags().IntVar(&c.jobs, "jobs", 0, "Parallel page renders (0 for the default)")
	return cmd
}

func (c *buildCmd) run(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	opts := []build.Option{}
	if c.remote {
		opts = append(opts, build.WithRemoteLinks(linkcheck.NewChecker()))
	}
	if c.jobs > 0 {
		opts = append(opts, build.WithConcurrency(c.jobs))
	}
	report, err := build.New(cfg, journal, opts...).Run(ctx)
	if err != nil {
		return err
	}
	for _, stage := range report.Stages {
		logf("%-10s %-24s %s", stage.Name, stage.Detail, stage.Elapsed.Round(time.Millisecond))
	}
	for _, entry := range report.Invalid {
		fmt.Printf("skipped %s\n", entry.Path)
	}
	for _, failure := range report.LinkFailures {
		fmt.Println(failure)
	}
	fmt.Printf("build %s: %d post pages, %d listing pages in %s\n",
		report.RunID, report.PostsWritten, report.PagesWritten, report.Elapsed.Round(time.Millisecond))
	return nil
}
