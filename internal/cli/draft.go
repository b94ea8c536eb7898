package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/draft"
	"github.com/inkpress-dev/inkpress/internal/version"
)

type draftCmd struct {
	version string
	project string
	repo    string
	from    string
	write   bool
}

func (c *draftCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a release post from the git history",
		Long: "Collect the commits since the previous release tag, group " +
			"them under the configured draft headers, and render a " +
			"ready-to-edit release post.",
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVar(&c.version, "version", "", "Release version being drafted (required)")
	cmd.Flags().StringVar(&c.project, "project", "", "Project name for the post title (site title when empty)")
	cmd.Flags().StringVar(&c.repo, "repo", ".", "Git repository to read")
	cmd.Flags().StringVar(&c.from, "from", "", "Start of the commit range (previous release tag when empty)")
	cmd.Flags().BoolVar(&c.write, "write", false, "Write the draft into the content tree instead of stdout")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func (c *draftCmd) run(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	v, err := version.Parse(c.version)
	if err != nil {
		return fmt.Errorf("parse version %s: %w", c.version, err)
	}
	project := c.project
	if project == "" {
		project = cfg.Site.Title
	}
	generator := draft.NewGenerator(c.repo, cfg.Site.DraftHeaders)
	changelog, err := generator.Collect(v, c.from)
	if err != nil {
		return err
	}
	release, err := generator.Post(project, changelog)
	if err != nil {
		return err
	}
	if !c.write {
		os.Stdout.Write(release.Encode())
		return nil
	}
	dirs := cfg.ContentDirs()
	if len(dirs) == 0 {
		return fmt.Errorf("no content_dirs configured")
	}
	target := filepath.Join(dirs[0], release.Meta.Slug()+".md")
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s already exists", target)
	}
	if err := os.MkdirAll(dirs[0], 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, release.Encode(), 0o644); err != nil {
		return err
	}
	fmt.Printf("Drafted %s\n", target)
	return nil
}
