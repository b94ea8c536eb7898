// Package build runs the full site build: scan the content tree,
// validate it, render post pages and example listings, emit feeds, and
// finish with the site's task plugins. Every run is framed in the build
// journal under a fresh run ID.
package build

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/inkpress-dev/inkpress/internal/buildlog"
	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/content"
	"github.com/inkpress-dev/inkpress/internal/examples"
	"github.com/inkpress-dev/inkpress/internal/linkcheck"
	"github.com/inkpress-dev/inkpress/internal/plugins"
	"github.com/inkpress-dev/inkpress/internal/render"
)

const defaultConcurrency = 4

// StageReport records one pipeline stage.
type StageReport struct {
	Name    string
	Elapsed time.Duration
	Detail  string
}

// Report summarizes one build run.
type Report struct {
	RunID        string
	Stages       []StageReport
	Invalid      []content.Entry
	LinkFailures []linkcheck.Result
	PostsWritten int
	PagesWritten int
	TaskResults  []plugins.TaskResult
	Elapsed      time.Duration
}

// Builder drives the pipeline for one site.
type Builder struct {
	cfg         *config.Config
	journal     *buildlog.Journal
	checker     *linkcheck.Checker
	remote      bool
	concurrency int
	now         func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithRemoteLinks enables the live link-check stage.
func WithRemoteLinks(checker *linkcheck.Checker) Option {
	return func(b *Builder) {
		b.remote = true
		if checker != nil {
			b.checker = checker
		}
	}
}

// WithConcurrency bounds parallel page rendering.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithClock overrides the builder clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) {
		if clock != nil {
			b.now = clock
		}
	}
}

// New prepares a builder over the given site.
func New(cfg *config.Config, journal *buildlog.Journal, opts ...Option) *Builder {
	b := &Builder{
		cfg:         cfg,
		journal:     journal,
		checker:     linkcheck.NewChecker(),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the pipeline. Invalid posts and broken links are
// reported, not fatal; only I/O and rendering failures abort the run.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	start := b.now()
	b.journal.BeginRun(report.RunID)
	err := b.run(ctx, report)
	report.Elapsed = b.now().Sub(start)
	b.journal.EndRun(report.RunID, err, report.Elapsed)
	if err != nil {
		return report, err
	}
	return report, nil
}

func (b *Builder) run(ctx context.Context, report *Report) error {
	renderer, err := render.New(b.cfg)
	if err != nil {
		return err
	}

	var tree *content.Tree
	err = b.stage(report, "scan", func() (string, error) {
		tree, err = content.NewStore(b.cfg.ContentDirs()...).Scan()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d posts", len(tree.Entries)), nil
	})
	if err != nil {
		return err
	}

	err = b.stage(report, "validate", func() (string, error) {
		report.Invalid = tree.Invalid()
		report.LinkFailures = linkcheck.Static(tree)
		for _, entry := range report.Invalid {
			b.journal.Warn("invalid post %s", entry.Path)
		}
		for _, failure := range report.LinkFailures {
			b.journal.Warn("link: %s", failure)
		}
		return fmt.Sprintf("%d invalid, %d bad links", len(report.Invalid), len(report.LinkFailures)), nil
	})
	if err != nil {
		return err
	}

	if b.remote {
		err = b.stage(report, "linkcheck", func() (string, error) {
			failures, err := b.checker.Live(ctx, tree)
			if err != nil {
				return "", err
			}
			for _, failure := range failures {
				b.journal.Warn("link: %s", failure)
			}
			report.LinkFailures = append(report.LinkFailures, failures...)
			return fmt.Sprintf("%d unreachable", len(failures)), nil
		})
		if err != nil {
			return err
		}
	}

	err = b.stage(report, "posts", func() (string, error) {
		written, err := b.renderPosts(ctx, renderer, tree)
		if err != nil {
			return "", err
		}
		if _, err := renderer.RenderIndex(tree); err != nil {
			return "", err
		}
		report.PostsWritten = written
		return fmt.Sprintf("%d pages written", written), nil
	})
	if err != nil {
		return err
	}

	err = b.stage(report, "examples", func() (string, error) {
		written, err := b.renderExamples(renderer)
		if err != nil {
			return "", err
		}
		report.PagesWritten = written
		return fmt.Sprintf("%d pages written", written), nil
	})
	if err != nil {
		return err
	}

	err = b.stage(report, "feeds", func() (string, error) {
		if _, err := renderer.WriteFeeds(tree.Releases()); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d releases", len(tree.Releases())), nil
	})
	if err != nil {
		return err
	}

	return b.stage(report, "plugins", func() (string, error) {
		registry := plugins.NewRegistry()
		if err := plugins.Discover(registry, b.cfg.PluginsDir()); err != nil {
			return "", err
		}
		results, err := plugins.RunAll(registry, b.cfg.SiteRoot, b.cfg.OutputDir())
		if err != nil {
			return "", err
		}
		report.TaskResults = results
		return fmt.Sprintf("%d tasks", len(results)), nil
	})
}

// stage times one pipeline step and journals its outcome.
func (b *Builder) stage(report *Report, name string, fn func() (string, error)) error {
	start := b.now()
	detail, err := fn()
	elapsed := b.now().Sub(start)
	if err != nil {
		b.journal.Error("stage %s failed after %s: %v", name, elapsed.Round(time.Millisecond), err)
		return fmt.Errorf("build: %s: %w", name, err)
	}
	report.Stages = append(report.Stages, StageReport{Name: name, Elapsed: elapsed, Detail: detail})
	b.journal.Info("stage %s: %s (%s)", name, detail, elapsed.Round(time.Millisecond))
	return nil
}

// renderPosts writes every ready post page, a bounded number at a time.
func (b *Builder) renderPosts(ctx context.Context, renderer *render.Renderer, tree *content.Tree) (int, error) {
	ready := tree.Ready()
	written := make([]bool, len(ready))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, entry := range ready {
		i, entry := i, entry
		g.Go(func() error {
			changed, err := renderer.RenderPost(entry)
			if err != nil {
				return err
			}
			written[i] = changed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	count := 0
	for _, changed := range written {
		if changed {
			count++
		}
	}
	return count, nil
}

func (b *Builder) renderExamples(renderer *render.Renderer) (int, error) {
	folders := b.cfg.ExamplesFolders()
	if len(folders) == 0 {
		return 0, nil
	}
	cache, err := examples.LoadCache(b.cfg.CacheDir())
	if err != nil {
		return 0, err
	}
	total := 0
	for _, folder := range folders {
		listing, err := examples.Scan(folder)
		if err != nil {
			return total, err
		}
		written, err := renderer.RenderListing(listing, cache)
		if err != nil {
			return total, err
		}
		total += written
	}
	if err := cache.Save(); err != nil {
		return total, err
	}
	return total, nil
}
