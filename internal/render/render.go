// Package render turns scanned posts and example listings into the HTML
// tree under the site's output folder. Files are only rewritten when
// their content actually changed, so repeated builds leave identical
// trees untouched.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/content"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer writes post pages, indexes, and example listings.
type Renderer struct {
	cfg  *config.Config
	tmpl *template.Template
	md   goldmark.Markdown
}

// New parses the embedded templates and prepares a renderer for the
// given site.
func New(cfg *config.Config) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{
		cfg:  cfg,
		tmpl: tmpl,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

type siteData struct {
	Title       string
	Description string
	BaseURL     string
}

func (r *Renderer) site() siteData {
	return siteData{
		Title:       r.cfg.Site.Title,
		Description: r.cfg.Site.Description,
		BaseURL:     r.cfg.Site.BaseURL,
	}
}

// PostPath returns the output-relative file a post renders to.
func (r *Renderer) PostPath(slug string) string {
	return path.Join("posts", slug, r.cfg.Site.IndexFile)
}

// Href returns the link used for an output file, honoring the
// strip_indexes setting: with it on, .../index.html collapses to .../.
func (r *Renderer) Href(outputRel string) string {
	href := "/" + path.Clean(outputRel)
	if r.cfg.Site.StripIndexes && path.Base(href) == r.cfg.Site.IndexFile {
		href = path.Dir(href) + "/"
	}
	return href
}

// AbsHref joins an output-relative path onto the site's base URL.
func (r *Renderer) AbsHref(outputRel string) string {
	return r.cfg.Site.BaseURL + strings.TrimPrefix(r.Href(outputRel), "/")
}

type postPage struct {
	Site  siteData
	Title string
	Date  string
	Tags  []string
	Body  template.HTML
}

// RenderPost writes one post page. It reports whether the output file
// changed.
func (r *Renderer) RenderPost(entry content.Entry) (bool, error) {
	var body bytes.Buffer
	if err := r.md.Convert(entry.Post.Body, &body); err != nil {
		return false, fmt.Errorf("render: %s: %w", entry.Path, err)
	}
	date := ""
	if !entry.Date.IsZero() {
		date = entry.Date.Format("January 2, 2006")
	}
	page := postPage{
		Site:  r.site(),
		Title: entry.Post.Meta.Title(),
		Date:  date,
		Tags:  entry.Post.Meta.Tags(),
		Body:  template.HTML(body.String()),
	}
	return r.writeTemplate(r.PostPath(entry.Slug()), "post.html.tmpl", page)
}

type indexEntry struct {
	Title       string
	Href        string
	Date        string
	Description string
	Release     bool
}

type indexPage struct {
	Site  siteData
	Posts []indexEntry
}

// RenderIndex writes the post index page from the ready entries of a
// scanned tree.
func (r *Renderer) RenderIndex(tree *content.Tree) (bool, error) {
	page := indexPage{Site: r.site()}
	for _, entry := range tree.Ready() {
		date := ""
		if !entry.Date.IsZero() {
			date = entry.Date.Format("2006-01-02")
		}
		page.Posts = append(page.Posts, indexEntry{
			Title:       entry.Post.Meta.Title(),
			Href:        r.Href(r.PostPath(entry.Slug())),
			Date:        date,
			Description: entry.Post.Meta.Description(),
			Release:     entry.Post.Meta.IsRelease(),
		})
	}
	return r.writeTemplate(path.Join("posts", r.cfg.Site.IndexFile), "index.html.tmpl", page)
}

func (r *Renderer) writeTemplate(outputRel, name string, data any) (bool, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return false, fmt.Errorf("render: %s: %w", name, err)
	}
	return r.writeFile(outputRel, buf.Bytes())
}

// outputExists reports whether a previously rendered page is still
// present under the output folder.
func (r *Renderer) outputExists(outputRel string) bool {
	_, err := os.Stat(filepath.Join(r.cfg.OutputDir(), filepath.FromSlash(outputRel)))
	return err == nil
}

// writeFile places data under the output folder, skipping the write when
// the file already holds the same bytes.
func (r *Renderer) writeFile(outputRel string, data []byte) (bool, error) {
	target := filepath.Join(r.cfg.OutputDir(), filepath.FromSlash(outputRel))
	existing, err := os.ReadFile(target)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("render: read %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("render: ensure %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return false, fmt.Errorf("render: write %s: %w", target, err)
	}
	return true, nil
}
