package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, siteRoot, body string) {
	t.Helper()
	siteDir := filepath.Join(siteRoot, SiteDir)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(siteDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewDefaultsWhenConfigMissing(t *testing.T) {
	siteRoot := t.TempDir()
	cfg, err := New(siteRoot)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.Site.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Site.Version)
	}
	if cfg.Site.OutputFolder != defaultOutputFolder {
		t.Fatalf("expected default output folder, got %q", cfg.Site.OutputFolder)
	}
	if got := cfg.OutputDir(); got != filepath.Join(siteRoot, defaultOutputFolder) {
		t.Fatalf("unexpected output dir %q", got)
	}
	if len(cfg.Site.DraftHeaders) == 0 {
		t.Fatalf("expected default draft headers")
	}
}

func TestNewParsesYaml(t *testing.T) {
	siteRoot := t.TempDir()
	writeConfig(t, siteRoot, strings.TrimSpace(`
version: 1
title: Cantera
base_url: https://cantera.org
content_dirs:
  - pages/blog
  - pages/news
examples_folders:
  content/python-examples: examples/python
  content/matlab-examples: examples/matlab
output_folder: public
strip_indexes: true
`))
	cfg, err := New(siteRoot)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.Site.Title != "Cantera" {
		t.Fatalf("unexpected title %q", cfg.Site.Title)
	}
	if cfg.Site.BaseURL != "https://cantera.org/" {
		t.Fatalf("expected base url to gain trailing slash, got %q", cfg.Site.BaseURL)
	}
	dirs := cfg.ContentDirs()
	if len(dirs) != 2 || !strings.HasPrefix(dirs[0], siteRoot) {
		t.Fatalf("expected resolved content dirs, got %v", dirs)
	}
	folders := cfg.ExamplesFolders()
	if len(folders) != 2 {
		t.Fatalf("expected 2 examples folders, got %v", folders)
	}
	// Sorted by source: matlab-examples before python-examples.
	if !strings.HasSuffix(folders[0].Source, "matlab-examples") || folders[0].Dest != filepath.Clean("examples/matlab") {
		t.Fatalf("unexpected folder order: %v", folders)
	}
	if got := cfg.OutputDir(); got != filepath.Join(siteRoot, "public") {
		t.Fatalf("unexpected output dir %q", got)
	}
}

func TestNewRejectsDuplicateExampleDestinations(t *testing.T) {
	siteRoot := t.TempDir()
	writeConfig(t, siteRoot, strings.TrimSpace(`
version: 1
title: Cantera
examples_folders:
  content/a: examples
  content/b: examples
`))
	if _, err := New(siteRoot); err == nil || !strings.Contains(err.Error(), "destination") {
		t.Fatalf("expected duplicate destination error, got %v", err)
	}
}

func TestNewRequiresTitle(t *testing.T) {
	siteRoot := t.TempDir()
	writeConfig(t, siteRoot, "version: 1\n")
	if _, err := New(siteRoot); err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected title error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	siteRoot := t.TempDir()
	writeConfig(t, siteRoot, "version: 1\ntitle: Cantera\nbase_url: https://cantera.org/\n")
	t.Setenv("INKPRESS_BASE_URL", "http://localhost:8000/")
	t.Setenv("INKPRESS_OUTPUT", "preview-out")
	cfg, err := New(siteRoot)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.Site.BaseURL != "http://localhost:8000/" {
		t.Fatalf("env base url not applied: %q", cfg.Site.BaseURL)
	}
	if got := cfg.OutputDir(); got != filepath.Join(siteRoot, "preview-out") {
		t.Fatalf("env output not applied: %q", got)
	}
}

func TestInitSiteDirSeedsConfig(t *testing.T) {
	siteRoot := t.TempDir()
	if err := InitSiteDir(siteRoot); err != nil {
		t.Fatalf("InitSiteDir: %v", err)
	}
	for _, sub := range []string{"logs", "cache", "state", "plugins"} {
		info, err := os.Stat(filepath.Join(siteRoot, SiteDir, sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(siteRoot, SiteDir, "config.yaml"))
	if err != nil {
		t.Fatalf("seeded config missing: %v", err)
	}
	if !strings.Contains(string(data), "examples_folders") {
		t.Fatalf("seeded config incomplete:\n%s", data)
	}
	// A second init must not overwrite an existing config.
	if err := os.WriteFile(filepath.Join(siteRoot, SiteDir, "config.yaml"), []byte("version: 1\ntitle: Kept\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitSiteDir(siteRoot); err != nil {
		t.Fatalf("second InitSiteDir: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(siteRoot, SiteDir, "config.yaml"))
	if !strings.Contains(string(data), "Kept") {
		t.Fatalf("init overwrote existing config")
	}
}
