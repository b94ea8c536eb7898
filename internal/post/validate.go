package post

import (
	"fmt"
	"regexp"
	"strings"
)

// DownloadsSection is the heading release posts must carry, listing the
// downloadable artifacts for the version.
const DownloadsSection = "Downloads available"

// Issue is a single validation finding. Line is 1-based within the body
// and zero for header-level findings.
type Issue struct {
	Field string
	Line  int
	Msg   string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", i.Field, i.Line, i.Msg)
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Msg)
}

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks the document against the publishing rules: non-empty
// title and slug, a parseable date, well-formed inline links, and for
// release posts a non-empty downloads list. One Issue per violation.
func Validate(p Post) []Issue {
	var issues []Issue

	if p.Meta.Title() == "" {
		issues = append(issues, Issue{Field: KeyTitle, Msg: "title is required"})
	}
	switch slug := p.Meta.Slug(); {
	case slug == "":
		issues = append(issues, Issue{Field: KeySlug, Msg: "slug is required"})
	case !slugPattern.MatchString(slug):
		issues = append(issues, Issue{Field: KeySlug, Msg: fmt.Sprintf("slug %q is not URL-safe", slug)})
	}
	if _, err := p.Meta.Date(); err != nil {
		issues = append(issues, Issue{Field: KeyDate, Msg: err.Error()})
	}

	for _, link := range p.Links() {
		if link.Label == "" {
			issues = append(issues, Issue{Field: "link", Line: link.Line, Msg: fmt.Sprintf("link to %q has an empty label", link.URL)})
		}
		if !ValidURL(link.URL) {
			issues = append(issues, Issue{Field: "link", Line: link.Line, Msg: fmt.Sprintf("link %q has an invalid target %q", link.Label, link.URL)})
		}
	}

	if p.Meta.IsRelease() {
		bullets, ok := p.SectionBullets(DownloadsSection)
		switch {
		case !ok:
			issues = append(issues, Issue{Field: "body", Msg: fmt.Sprintf("release post is missing a %q section", DownloadsSection)})
		case len(bullets) == 0:
			issues = append(issues, Issue{Field: "body", Msg: fmt.Sprintf("%q section has no download entries", DownloadsSection)})
		}
	}

	return issues
}

// IssuesError flattens validation issues into one error, or nil when the
// post is clean.
func IssuesError(path string, issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.String()
	}
	return fmt.Errorf("post: %s: %s", path, strings.Join(msgs, "; "))
}
