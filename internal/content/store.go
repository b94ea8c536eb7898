// Package content manages the site's post source tree. The store scans
// the configured content directories, parses every post, and indexes the
// results by slug. It never writes into the source tree.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"

	"github.com/inkpress-dev/inkpress/internal/post"
	"github.com/inkpress-dev/inkpress/internal/version"
)

// State captures the readiness of a post source on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// Entry is one scanned post source.
type Entry struct {
	Path     string
	State    State
	Post     post.Post
	Issues   []post.Issue
	Err      error
	Checksum string

	// Date is the parsed publication date, zero when invalid.
	Date time.Time

	// Version is the release version found in the title or slug.
	Version    semver.Version
	HasVersion bool
}

// Slug returns the entry's slug, empty for unparseable sources.
func (e Entry) Slug() string {
	return e.Post.Meta.Slug()
}

// Store scans content directories for posts.
type Store struct {
	dirs []string
}

// NewStore builds a store over the given source directories.
func NewStore(dirs ...string) *Store {
	return &Store{dirs: dirs}
}

var sourceExtensions = map[string]bool{
	".md":  true,
	".rst": true,
}

// Tree is the result of one scan: every entry in deterministic order
// (date descending, ties by slug) plus a slug index over the parseable
// ones.
type Tree struct {
	Entries []Entry
	BySlug  map[string]*Entry
}

// Scan walks every content directory and parses each post source.
// Unparseable or invalid posts become invalid entries rather than
// aborting the scan; a duplicate slug aborts because the site cannot
// publish both.
func (s *Store) Scan() (*Tree, error) {
	tree := &Tree{BySlug: map[string]*Entry{}}
	slugPaths := map[string]string{}
	for _, dir := range s.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == dir {
					return fs.SkipDir
				}
				return err
			}
			if d.IsDir() || !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			entry := loadEntry(path)
			if slug := entry.Slug(); slug != "" {
				if prev, dup := slugPaths[slug]; dup {
					return fmt.Errorf("content: duplicate slug %s in %s and %s", slug, prev, path)
				}
				slugPaths[slug] = path
			}
			tree.Entries = append(tree.Entries, entry)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(tree.Entries, func(i, j int) bool {
		a, b := tree.Entries[i], tree.Entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Slug() != b.Slug() {
			return a.Slug() < b.Slug()
		}
		return a.Path < b.Path
	})
	for i := range tree.Entries {
		if slug := tree.Entries[i].Slug(); slug != "" {
			tree.BySlug[slug] = &tree.Entries[i]
		}
	}
	return tree, nil
}

// Check inspects a single post source, including ones outside the
// configured directories.
func Check(path string) Entry {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{Path: path, State: StateMissing}
		}
		return Entry{Path: path, State: StateError, Err: err}
	}
	return loadEntry(path)
}

func loadEntry(path string) Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{Path: path, State: StateError, Err: err}
	}
	entry := Entry{
		Path:     path,
		Checksum: checksum(data),
	}
	p, err := post.Parse(data)
	if err != nil {
		entry.State = StateInvalid
		entry.Err = err
		return entry
	}
	p.Path = path
	entry.Post = p
	if date, err := p.Meta.Date(); err == nil {
		entry.Date = date
	}
	if v, ok := version.FromText(p.Meta.Title()); ok {
		entry.Version, entry.HasVersion = v, true
	} else if v, ok := version.FromText(p.Meta.Slug()); ok {
		entry.Version, entry.HasVersion = v, true
	}
	if issues := post.Validate(p); len(issues) > 0 {
		entry.State = StateInvalid
		entry.Issues = issues
		return entry
	}
	entry.State = StateReady
	return entry
}

// Ready returns the publishable entries, preserving scan order.
func (t *Tree) Ready() []Entry {
	var ready []Entry
	for _, e := range t.Entries {
		if e.State == StateReady {
			ready = append(ready, e)
		}
	}
	return ready
}

// Invalid returns entries that failed parsing or validation.
func (t *Tree) Invalid() []Entry {
	var bad []Entry
	for _, e := range t.Entries {
		if e.State == StateInvalid || e.State == StateError {
			bad = append(bad, e)
		}
	}
	return bad
}

// Releases returns the ready release posts ordered newest version first;
// posts without a detectable version sort last by date.
func (t *Tree) Releases() []Entry {
	var releases []Entry
	for _, e := range t.Ready() {
		if e.Post.Meta.IsRelease() {
			releases = append(releases, e)
		}
	}
	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		switch {
		case a.HasVersion && b.HasVersion:
			return b.Version.LT(a.Version)
		case a.HasVersion:
			return true
		case b.HasVersion:
			return false
		default:
			return a.Date.After(b.Date)
		}
	})
	return releases
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
