package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/post"
)

type newCmd struct {
	slug string
	tags []string
	dir  string
}

func (c *newCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a post skeleton in the content tree",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&c.slug, "slug", "", "Post slug (derived from the title when empty)")
	cmd.Flags().StringSliceVar(&c.tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&c.dir, "dir", "", "Target directory (first configured content dir when empty)")
	return cmd
}

func (c *newCmd) run(ctx context.Context, args []string) error {
	title := strings.TrimSpace(args[0])
	if title == "" {
		return fmt.Errorf("title is required")
	}
	slug := c.slug
	if slug == "" {
		slug = slugify(title)
	}
	dir := c.dir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dirs := cfg.ContentDirs()
		if len(dirs) == 0 {
			return fmt.Errorf("no content_dirs configured; pass --dir")
		}
		dir = dirs[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(dir, slug+".md")
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s already exists", target)
	}
	draft := post.New(title, slug, time.Now(), c.tags, []byte("Write the post here.\n"))
	if err := os.WriteFile(target, draft.Encode(), 0o644); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", target)
	return nil
}

// slugify lowercases the title and keeps only slug-safe runes.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
