// Package draft turns git history into a ready-to-edit release post.
// Commits since the previous release tag are grouped under configurable
// headers by subject prefix and rendered into the site's post format.
package draft

import (
	"bytes"
	_ "embed"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/blang/semver"
	"github.com/tsuyoshiwada/go-gitlog"

	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/post"
	"github.com/inkpress-dev/inkpress/internal/version"
)

// UnsortedHeader collects commits no prefix matched; the author sorts
// them by hand before publishing.
const UnsortedHeader = "Needs manual sorting"

var (
	refPattern = regexp.MustCompile(`\((#\d+)\)`)
	tagPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)

	//go:embed changelog.tpl.md
	changelogTpl string

	changelogTemplate = template.Must(template.New("changelog").Funcs(template.FuncMap{
		"join":     strings.Join,
		"dashline": func(s string) string { return strings.Repeat("-", len(s)) },
		"eqline":   func(s string) string { return strings.Repeat("=", len(s)) },
	}).Parse(changelogTpl))
)

// Note is one changelog entry derived from a commit.
type Note struct {
	Subject string
	Refs    []string
}

// Group is the set of notes under one header.
type Group struct {
	Title string
	Notes []Note
}

// Changelog is the grouped history for one release.
type Changelog struct {
	Version semver.Version
	Groups  []*Group
}

// Generator collects and renders changelogs.
type Generator struct {
	repoPath string
	headers  []config.DraftHeader
	now      func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for the draft's date field.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.now = clock
		}
	}
}

// NewGenerator builds a generator for the repository at repoPath using
// the configured draft headers.
func NewGenerator(repoPath string, headers []config.DraftHeader, opts ...Option) *Generator {
	g := &Generator{
		repoPath: repoPath,
		headers:  headers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Collect reads the commit range (from, "HEAD"] and groups it. An empty
// from falls back to the most recent release tag, or the first commit
// when the repository has never been tagged.
func (g *Generator) Collect(v semver.Version, from string) (*Changelog, error) {
	if from == "" {
		var err error
		from, err = g.lastReleaseTag(version.NextTag(v))
		if err != nil {
			return nil, err
		}
	}
	git := gitlog.New(&gitlog.Config{Path: g.repoPath})
	commits, err := git.Log(&gitlog.RevRange{Old: from, New: "HEAD"}, nil)
	if err != nil {
		return nil, fmt.Errorf("draft: git log %s..HEAD: %w", from, err)
	}
	return g.group(v, commits), nil
}

func (g *Generator) group(v semver.Version, commits []*gitlog.Commit) *Changelog {
	byTitle := map[string]*Group{}
	for _, c := range commits {
		title, note := g.parseCommit(c)
		group, ok := byTitle[title]
		if !ok {
			group = &Group{Title: title}
			byTitle[title] = group
		}
		group.Notes = append(group.Notes, note)
	}
	changelog := &Changelog{Version: v}
	for _, h := range g.headers {
		if group, ok := byTitle[h.Name]; ok {
			changelog.Groups = append(changelog.Groups, group)
		}
	}
	if group, ok := byTitle[UnsortedHeader]; ok {
		changelog.Groups = append(changelog.Groups, group)
	}
	return changelog
}

func (g *Generator) parseCommit(c *gitlog.Commit) (string, Note) {
	for _, h := range g.headers {
		for _, p := range h.Prefixes {
			if strings.HasPrefix(c.Subject, p) {
				return h.Name, Note{
					Subject: trimSubject(strings.TrimPrefix(c.Subject, p)),
					Refs:    refs(c.Subject),
				}
			}
		}
	}
	return UnsortedHeader, Note{Subject: trimSubject(c.Subject), Refs: refs(c.Subject)}
}

func trimSubject(subject string) string {
	return strings.TrimSpace(refPattern.ReplaceAllString(subject, ""))
}

func refs(subject string) []string {
	var result []string
	for _, m := range refPattern.FindAllStringSubmatch(subject, -1) {
		result = append(result, m[1])
	}
	return result
}

// Post renders the changelog into a draft release post for the given
// project name ("Cantera 2.4.0" style title, "v2.4.0" slug).
func (g *Generator) Post(project string, changelog *Changelog) (post.Post, error) {
	var buf bytes.Buffer
	data := struct {
		Project string
		*Changelog
	}{Project: project, Changelog: changelog}
	if err := changelogTemplate.Execute(&buf, data); err != nil {
		return post.Post{}, fmt.Errorf("draft: render changelog: %w", err)
	}
	title := fmt.Sprintf("%s %s", project, changelog.Version)
	slug := version.NextTag(changelog.Version)
	return post.New(title, slug, g.now(), []string{"releases"}, buf.Bytes()), nil
}

// lastReleaseTag finds the newest release-shaped tag reachable from
// HEAD, excluding the tag of the release being drafted. Repositories
// without tags fall back to the first commit.
func (g *Generator) lastReleaseTag(exclude string) (string, error) {
	cmd := exec.Command("git", "tag", "--merged=HEAD", "--sort=-creatordate")
	cmd.Dir = g.repoPath
	out, err := cmd.Output()
	if err != nil {
		return g.firstCommit()
	}
	tags := strings.Split(strings.ReplaceAll(string(bytes.TrimSpace(out)), "\r\n", "\n"), "\n")
	for _, tag := range tags {
		if tag != exclude && tagPattern.MatchString(tag) {
			return tag, nil
		}
	}
	return g.firstCommit()
}

func (g *Generator) firstCommit() (string, error) {
	cmd := exec.Command("git", "rev-list", "--max-parents=0", "HEAD")
	cmd.Dir = g.repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("draft: find first commit: %w", err)
	}
	return string(bytes.TrimSpace(out)), nil
}
