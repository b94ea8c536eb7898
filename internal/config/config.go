// Package config handles site configuration and the .inkpress directory
// structure. Every site that uses inkpress gets a .inkpress/ folder
// created at its root for logs, caches, and plugin definitions.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// SiteDir is the name of the directory we create at each site root.
	SiteDir = ".inkpress"

	defaultOutputFolder = "output"
	defaultIndexFile    = "index.html"
)

const defaultSiteConfigYAML = `# inkpress site configuration
version: 1

title: Example Project
description: Documentation site for the Example project
base_url: https://example.org/

# Directories scanned for posts (relative to the site root).
content_dirs:
  - pages/blog

# Example-script folders rendered into HTML listings, source: destination.
# The destination name decides how sources are scanned (python, matlab,
# or jupyter).
examples_folders:
  content/examples: examples/python

output_folder: output
index_file: index.html
strip_indexes: true

# Commit-subject prefixes used by "inkpress draft" to group changelog
# entries. Unmatched commits land under a sort-by-hand header.
draft_headers:
  - name: New features
    prefixes: ["feat:", "feature:"]
  - name: Bug fixes
    prefixes: ["fix:", "bugfix:"]
  - name: Documentation
    prefixes: ["docs:", "doc:"]
`

// DraftHeader groups changelog commits under one heading by subject prefix.
type DraftHeader struct {
	Name     string   `yaml:"name"`
	Prefixes []string `yaml:"prefixes"`
}

// SiteConfig models .inkpress/config.yaml.
type SiteConfig struct {
	Version         int               `yaml:"version"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description,omitempty"`
	BaseURL         string            `yaml:"base_url"`
	ContentDirs     []string          `yaml:"content_dirs"`
	ExamplesFolders map[string]string `yaml:"examples_folders,omitempty"`
	OutputFolder    string            `yaml:"output_folder"`
	CacheFolder     string            `yaml:"cache_folder,omitempty"`
	IndexFile       string            `yaml:"index_file,omitempty"`
	StripIndexes    bool              `yaml:"strip_indexes,omitempty"`
	DraftHeaders    []DraftHeader     `yaml:"draft_headers,omitempty"`
}

// Config holds the runtime configuration for inkpress.
type Config struct {
	// SiteRoot is the directory where the user ran `inkpress` from.
	SiteRoot string

	// SiteDirPath is SiteRoot/.inkpress.
	SiteDirPath string

	Site SiteConfig
}

// InitSiteDir creates the .inkpress directory structure at the site root
// and seeds a commented default config when none exists.
//
// Structure created:
// .inkpress/
// ├── logs/     <- build + tool logs
// ├── cache/    <- example-listing checksum cache
// ├── state/    <- state persisted between runs
// └── plugins/  <- YAML and Go task-plugin definitions
func InitSiteDir(siteRoot string) error {
	siteDir := filepath.Join(siteRoot, SiteDir)
	dirs := []string{
		filepath.Join(siteDir, "logs"),
		filepath.Join(siteDir, "cache"),
		filepath.Join(siteDir, "state"),
		filepath.Join(siteDir, "plugins"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureSiteConfig(filepath.Join(siteDir, "config.yaml"))
}

// New loads configuration for the given site root. A missing config file
// yields the defaults; a present one is parsed, normalized, and
// validated. INKPRESS_BASE_URL and INKPRESS_OUTPUT environment variables
// override the corresponding file values.
func New(siteRoot string) (*Config, error) {
	cfg := &Config{
		SiteRoot:    siteRoot,
		SiteDirPath: filepath.Join(siteRoot, SiteDir),
		Site:        defaultSiteConfig(),
	}
	if err := cfg.loadSiteConfig(); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_BASE_URL")); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_OUTPUT")); v != "" {
		cfg.Site.OutputFolder = v
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of the site config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.SiteDirPath, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.SiteDirPath, "logs")
}

// CacheDir returns the listing cache directory. An explicit cache_folder
// overrides the default location under .inkpress.
func (c *Config) CacheDir() string {
	if c.Site.CacheFolder != "" {
		return c.resolve(c.Site.CacheFolder)
	}
	return filepath.Join(c.SiteDirPath, "cache")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.SiteDirPath, "state")
}

// PluginsDir returns the directory holding task-plugin definitions.
func (c *Config) PluginsDir() string {
	return filepath.Join(c.SiteDirPath, "plugins")
}

// OutputDir returns the absolute output folder.
func (c *Config) OutputDir() string {
	return c.resolve(c.Site.OutputFolder)
}

// ContentDirs returns the absolute post source directories.
func (c *Config) ContentDirs() []string {
	dirs := make([]string, 0, len(c.Site.ContentDirs))
	for _, d := range c.Site.ContentDirs {
		dirs = append(dirs, c.resolve(d))
	}
	return dirs
}

// ExamplesFolder is one configured source to destination listing mapping.
type ExamplesFolder struct {
	Source string
	Dest   string
}

// ExamplesFolders returns source to destination pairs sorted by source so
// iteration order is deterministic. Sources are absolute, destinations
// stay relative to the output folder.
func (c *Config) ExamplesFolders() []ExamplesFolder {
	folders := make([]ExamplesFolder, 0, len(c.Site.ExamplesFolders))
	for src, dest := range c.Site.ExamplesFolders {
		folders = append(folders, ExamplesFolder{Source: c.resolve(src), Dest: dest})
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Source < folders[j].Source })
	return folders
}

func (c *Config) resolve(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(c.SiteRoot, trimmed))
}

func (c *Config) loadSiteConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed SiteConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Site = parsed
	return nil
}

func defaultSiteConfig() SiteConfig {
	cfg := SiteConfig{}
	cfg.applyDefaults()
	return cfg
}

func (sc *SiteConfig) applyDefaults() {
	if sc.Version == 0 {
		sc.Version = 1
	}
	if sc.OutputFolder == "" {
		sc.OutputFolder = defaultOutputFolder
	}
	if sc.IndexFile == "" {
		sc.IndexFile = defaultIndexFile
	}
	if len(sc.DraftHeaders) == 0 {
		sc.DraftHeaders = defaultDraftHeaders()
	}
}

func defaultDraftHeaders() []DraftHeader {
	return []DraftHeader{
		{Name: "New features", Prefixes: []string{"feat:", "feature:"}},
		{Name: "Bug fixes", Prefixes: []string{"fix:", "bugfix:"}},
		{Name: "Documentation", Prefixes: []string{"docs:", "doc:"}},
	}
}

func (sc *SiteConfig) normalize() {
	sc.Title = strings.TrimSpace(sc.Title)
	sc.Description = strings.TrimSpace(sc.Description)
	sc.BaseURL = strings.TrimSpace(sc.BaseURL)
	if sc.BaseURL != "" && !strings.HasSuffix(sc.BaseURL, "/") {
		sc.BaseURL += "/"
	}
	dirs := sc.ContentDirs[:0]
	for _, d := range sc.ContentDirs {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			dirs = append(dirs, filepath.Clean(trimmed))
		}
	}
	sc.ContentDirs = dirs
	if len(sc.ExamplesFolders) > 0 {
		normalized := make(map[string]string, len(sc.ExamplesFolders))
		for src, dest := range sc.ExamplesFolders {
			src = strings.TrimSpace(src)
			dest = strings.TrimSpace(dest)
			if src == "" {
				continue
			}
			normalized[filepath.Clean(src)] = filepath.Clean(dest)
		}
		sc.ExamplesFolders = normalized
	}
	for i := range sc.DraftHeaders {
		sc.DraftHeaders[i].Name = strings.TrimSpace(sc.DraftHeaders[i].Name)
		prefixes := sc.DraftHeaders[i].Prefixes[:0]
		for _, p := range sc.DraftHeaders[i].Prefixes {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				prefixes = append(prefixes, trimmed)
			}
		}
		sc.DraftHeaders[i].Prefixes = prefixes
	}
}

func (sc *SiteConfig) validate() error {
	if sc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if sc.Title == "" {
		return fmt.Errorf("title is required")
	}
	// No example input or output folder may appear twice; overlapping
	// mappings would write the same listing from two sources.
	seen := map[string]string{}
	for src, dest := range sc.ExamplesFolders {
		if dest == "" || dest == "." {
			return fmt.Errorf("examples_folders[%s]: destination is required", src)
		}
		if prev, dup := seen[dest]; dup {
			return fmt.Errorf("examples_folders: destination %s used by both %s and %s", dest, prev, src)
		}
		seen[dest] = src
		if _, collides := sc.ExamplesFolders[dest]; collides {
			return fmt.Errorf("examples_folders: %s appears as both source and destination", dest)
		}
	}
	for i, h := range sc.DraftHeaders {
		if h.Name == "" {
			return fmt.Errorf("draft_headers[%d]: name is required", i)
		}
		if len(h.Prefixes) == 0 {
			return fmt.Errorf("draft_headers[%d]: at least one prefix is required", i)
		}
	}
	return nil
}

func ensureSiteConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultSiteConfigYAML), 0o644)
}
