package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/content"
	"github.com/inkpress-dev/inkpress/internal/examples"
)

const releaseDoc = `.. title: Cantera 2.4.0
.. slug: v2-4-0
.. date: 2026-08-20 10:00:00 UTC-04:00
.. tags: releases
.. description: Maintenance release.

New release with [notes](https://example.org/notes).

Downloads available
===================

- [Source tarball](https://example.org/cantera-2.4.0.tar.gz)
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.New(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Site.Title = "Cantera"
	cfg.Site.Description = "Chemical kinetics"
	cfg.Site.BaseURL = "https://cantera.org/"
	cfg.Site.StripIndexes = true
	return cfg
}

func writeContent(t *testing.T, cfg *config.Config, name, doc string) {
	t.Helper()
	dir := filepath.Join(cfg.SiteRoot, "blog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Site.ContentDirs = []string{"blog"}
}

func scanTree(t *testing.T, cfg *config.Config) *content.Tree {
	t.Helper()
	tree, err := content.NewStore(cfg.ContentDirs()...).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return tree
}

func TestHrefHonorsStripIndexes(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := r.Href("posts/v2-4-0/index.html"); got != "/posts/v2-4-0/" {
		t.Fatalf("stripped href = %q", got)
	}
	cfg.Site.StripIndexes = false
	if got := r.Href("posts/v2-4-0/index.html"); got != "/posts/v2-4-0/index.html" {
		t.Fatalf("plain href = %q", got)
	}
	if got := r.AbsHref("posts/v2-4-0/index.html"); got != "https://cantera.org/posts/v2-4-0/index.html" {
		t.Fatalf("abs href = %q", got)
	}
}

func TestRenderPostWritesOnceAndSkipsUnchanged(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "v2-4-0.md", releaseDoc)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tree := scanTree(t, cfg)
	entries := tree.Ready()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ready post, got %+v", tree.Entries)
	}
	changed, err := r.RenderPost(entries[0])
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !changed {
		t.Fatalf("first render should write")
	}
	page, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "posts", "v2-4-0", "index.html"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	html := string(page)
	if !strings.Contains(html, "<h1>Cantera 2.4.0</h1>") {
		t.Fatalf("missing title:\n%s", html)
	}
	if !strings.Contains(html, `<a href="https://example.org/notes">notes</a>`) {
		t.Fatalf("markdown link not rendered:\n%s", html)
	}
	changed, err = r.RenderPost(entries[0])
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if changed {
		t.Fatalf("unchanged content should not rewrite the page")
	}
}

func TestRenderIndexListsReadyPosts(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "v2-4-0.md", releaseDoc)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := r.RenderIndex(scanTree(t, cfg)); err != nil {
		t.Fatalf("index: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "posts", "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	html := string(page)
	if !strings.Contains(html, `<a href="/posts/v2-4-0/">Cantera 2.4.0</a>`) {
		t.Fatalf("missing post link:\n%s", html)
	}
	if !strings.Contains(html, `class="release"`) {
		t.Fatalf("release not flagged:\n%s", html)
	}
}

func TestWriteFeedsIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "v2-4-0.md", releaseDoc)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tree := scanTree(t, cfg)
	if _, err := r.WriteFeeds(tree.Releases()); err != nil {
		t.Fatalf("feeds: %v", err)
	}
	atomPath := filepath.Join(cfg.OutputDir(), "feeds", "releases.atom")
	first, err := os.ReadFile(atomPath)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if !strings.Contains(string(first), "Cantera 2.4.0") {
		t.Fatalf("feed missing release:\n%s", first)
	}
	changed, err := r.WriteFeeds(tree.Releases())
	if err != nil {
		t.Fatalf("second feeds: %v", err)
	}
	if changed {
		t.Fatalf("identical inputs should produce identical feeds")
	}
}

func TestRenderListingUsesCache(t *testing.T) {
	cfg := testConfig(t)
	src := filepath.Join(cfg.SiteRoot, "scripts")
	catDir := filepath.Join(src, "thermo")
	if err := os.MkdirAll(catDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(catDir, "flame.py")
	if err := os.WriteFile(script, []byte("\"\"\"Flame example.\"\"\"\nprint(1)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	listing, err := examples.Scan(config.ExamplesFolder{Source: src, Dest: "examples/python"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cache, err := examples.LoadCache(cfg.CacheDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	written, err := r.RenderListing(listing, cache)
	if err != nil {
		t.Fatalf("render listing: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected script page + index, wrote %d", written)
	}
	page, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "examples", "python", "thermo", "flame.py.html"))
	if err != nil {
		t.Fatalf("read script page: %v", err)
	}
	if !strings.Contains(string(page), "Flame example.") {
		t.Fatalf("summary missing:\n%s", page)
	}
	// Cached checksum skips the script page; the unchanged index is a
	// byte-compare skip.
	written, err = r.RenderListing(listing, cache)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if written != 0 {
		t.Fatalf("expected cached rebuild to write nothing, wrote %d", written)
	}
}

func TestRenderListingRebuildsMissingPages(t *testing.T) {
	cfg := testConfig(t)
	src := filepath.Join(cfg.SiteRoot, "scripts")
	catDir := filepath.Join(src, "thermo")
	if err := os.MkdirAll(catDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(catDir, "flame.py")
	if err := os.WriteFile(script, []byte("\"\"\"Flame example.\"\"\"\nprint(1)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	listing, err := examples.Scan(config.ExamplesFolder{Source: src, Dest: "examples/python"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cache, err := examples.LoadCache(cfg.CacheDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	if _, err := r.RenderListing(listing, cache); err != nil {
		t.Fatalf("render listing: %v", err)
	}
	// A cleaned output tree must come back even with a warm cache.
	if err := os.RemoveAll(cfg.OutputDir()); err != nil {
		t.Fatal(err)
	}
	written, err := r.RenderListing(listing, cache)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected script page + index rebuilt, wrote %d", written)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir(), "examples", "python", "thermo", "flame.py.html")); err != nil {
		t.Fatalf("script page not rebuilt: %v", err)
	}
}

func TestHighlightFallsBackForUnknownFiles(t *testing.T) {
	code, err := Highlight("notes.xyzzy", []byte("plain text"))
	if err != nil {
		t.Fatalf("highlight: %v", err)
	}
	if !strings.Contains(string(code), "plain text") {
		t.Fatalf("source lost in fallback: %s", code)
	}
	py, err := Highlight("flame.py", []byte("import cantera\n"))
	if err != nil {
		t.Fatalf("highlight py: %v", err)
	}
	if !strings.Contains(string(py), "import") {
		t.Fatalf("python source lost: %s", py)
	}
}
