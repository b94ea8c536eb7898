package render

import (
	"fmt"
	"html/template"
	"os"
	"path"

	"github.com/inkpress-dev/inkpress/internal/examples"
)

type scriptPage struct {
	Site     siteData
	Listing  string
	Name     string
	Summary  string
	Code     template.HTML
	IndexRef string
}

type listingGroup struct {
	Name    string
	Scripts []listingScript
}

type listingScript struct {
	Name    string
	Href    string
	Summary string
}

type listingPage struct {
	Site   siteData
	Name   string
	Groups []listingGroup
}

// RenderListing writes one example folder: a highlighted page per script
// plus the folder index. Scripts whose checksum matches the cache keep
// their existing page. It returns the number of pages written.
func (r *Renderer) RenderListing(listing *examples.Listing, cache *examples.Cache) (int, error) {
	written := 0
	page := listingPage{Site: r.site(), Name: listingTitle(listing)}
	for _, group := range listing.Groups {
		lg := listingGroup{Name: group.Name}
		for _, script := range group.Scripts {
			rel := scriptPath(listing, script)
			lg.Scripts = append(lg.Scripts, listingScript{
				Name:    script.Name,
				Href:    r.Href(rel),
				Summary: script.Summary,
			})
			// A cache hit only counts while the rendered page is still on
			// disk; a cleaned output tree gets rebuilt.
			if cache.UpToDate(rel, script.Checksum) && r.outputExists(rel) {
				continue
			}
			changed, err := r.renderScript(listing, script, rel)
			if err != nil {
				return written, err
			}
			if changed {
				written++
			}
			cache.Record(rel, script.Checksum)
		}
		page.Groups = append(page.Groups, lg)
	}
	changed, err := r.writeTemplate(path.Join(listing.Dest, r.cfg.Site.IndexFile), "listing.html.tmpl", page)
	if err != nil {
		return written, err
	}
	if changed {
		written++
	}
	return written, nil
}

func (r *Renderer) renderScript(listing *examples.Listing, script examples.Script, rel string) (bool, error) {
	source, err := os.ReadFile(script.Path)
	if err != nil {
		return false, fmt.Errorf("render: read %s: %w", script.Path, err)
	}
	code, err := Highlight(script.Name, source)
	if err != nil {
		return false, err
	}
	page := scriptPage{
		Site:     r.site(),
		Listing:  listingTitle(listing),
		Name:     script.Name,
		Summary:  script.Summary,
		Code:     code,
		IndexRef: r.Href(path.Join(listing.Dest, r.cfg.Site.IndexFile)),
	}
	return r.writeTemplate(rel, "script.html.tmpl", page)
}

func scriptPath(listing *examples.Listing, script examples.Script) string {
	return path.Join(listing.Dest, script.Category, script.Name+".html")
}

func listingTitle(listing *examples.Listing) string {
	switch listing.Kind {
	case examples.KindPython:
		return "Python Examples"
	case examples.KindMatlab:
		return "MATLAB Examples"
	case examples.KindJupyter:
		return "Jupyter Notebooks"
	default:
		return "Examples"
	}
}
