package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/content"
	"github.com/inkpress-dev/inkpress/internal/linkcheck"
	"github.com/inkpress-dev/inkpress/internal/post"
)

type validateCmd struct {
	remote bool
}

func (c *validateCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate posts and their links",
		Long: "Validate the given post files, or the whole configured " +
			"content tree when no files are named.",
	}
	cmd.Flags().BoolVar(&c.remote, "remote", false, "Also check that http(s) links are reachable")
	return cmd
}

func (c *validateCmd) run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return c.validateFiles(args)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tree, err := content.NewStore(cfg.ContentDirs()...).Scan()
	if err != nil {
		return err
	}
	failed := false
	for _, entry := range tree.Invalid() {
		failed = true
		if entry.Err != nil {
			fmt.Printf("%s: %v\n", entry.Path, entry.Err)
			continue
		}
		for _, issue := range entry.Issues {
			fmt.Printf("%s: %s\n", entry.Path, issue)
		}
	}
	for _, failure := range linkcheck.Static(tree) {
		failed = true
		fmt.Println(failure)
	}
	if c.remote {
		failures, err := linkcheck.NewChecker().Live(ctx, tree)
		if err != nil {
			return err
		}
		for _, failure := range failures {
			failed = true
			fmt.Println(failure)
		}
	}
	if failed {
		return fmt.Errorf("validation failed")
	}
	logf("validated %d posts", len(tree.Entries))
	fmt.Printf("%d posts OK\n", len(tree.Entries))
	return nil
}

func (c *validateCmd) validateFiles(paths []string) error {
	failed := false
	for _, path := range paths {
		entry := content.Check(path)
		switch entry.State {
		case content.StateReady:
			fmt.Printf("%s: OK\n", path)
		case content.StateMissing:
			failed = true
			fmt.Printf("%s: missing\n", path)
		default:
			failed = true
			if entry.Err != nil {
				fmt.Printf("%s: %v\n", path, entry.Err)
			}
			if len(entry.Issues) > 0 {
				fmt.Println(post.IssuesError(path, entry.Issues))
			}
		}
	}
	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}
