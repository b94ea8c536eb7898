package post

import (
	"net/url"
	"regexp"
	"strings"
)

// Link is one inline `[label](url)` reference found in a body.
type Link struct {
	Label string
	URL   string
	Line  int // 1-based line within the body
}

// inlineLink matches markdown-style inline links. The label may be empty
// (that is a validation failure, not a parse failure) and the target runs
// to the first closing paren.
var inlineLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// Links returns every inline link in the body, in document order.
func (p Post) Links() []Link {
	var links []Link
	for i, line := range strings.Split(string(p.Body), "\n") {
		for _, m := range inlineLink.FindAllStringSubmatch(line, -1) {
			links = append(links, Link{
				Label: strings.TrimSpace(m[1]),
				URL:   strings.TrimSpace(m[2]),
				Line:  i + 1,
			})
		}
	}
	return links
}

// ValidURL reports whether target is acceptable as a link destination:
// either a site-relative path or an absolute URL with scheme and host.
func ValidURL(target string) bool {
	if target == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		// Relative targets ("/cantera/docs/", "files/foo.zip", "#anchor")
		// are resolved by the renderer and fine as written.
		return u.Path != "" || u.Fragment != ""
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return u.Host != ""
	case "mailto":
		return u.Opaque != ""
	default:
		return false
	}
}

// Heading is one body heading, ATX (`## Title`) or setext (underlined).
type Heading struct {
	Text  string
	Level int
	Line  int // 1-based line within the body
}

var atxHeading = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// Headings returns every heading in the body, in document order.
func (p Post) Headings() []Heading {
	lines := strings.Split(string(p.Body), "\n")
	var heads []Heading
	for i := 0; i < len(lines); i++ {
		if m := atxHeading.FindStringSubmatch(lines[i]); m != nil {
			heads = append(heads, Heading{Text: m[2], Level: len(m[1]), Line: i + 1})
			continue
		}
		// Setext: a non-empty line underlined with = (level 1) or - (level 2).
		if i+1 < len(lines) && strings.TrimSpace(lines[i]) != "" && !isBullet(lines[i]) {
			if level := setextLevel(lines[i+1]); level > 0 {
				heads = append(heads, Heading{Text: strings.TrimSpace(lines[i]), Level: level, Line: i + 1})
				i++
			}
		}
	}
	return heads
}

func setextLevel(line string) int {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 {
		return 0
	}
	if strings.Count(trimmed, "=") == len(trimmed) {
		return 1
	}
	if strings.Count(trimmed, "-") == len(trimmed) {
		return 2
	}
	return 0
}

func isBullet(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ")
}

// Bullets returns the text of every top-level bullet item in the body.
func (p Post) Bullets() []string {
	var items []string
	for _, line := range strings.Split(string(p.Body), "\n") {
		if isBullet(line) {
			trimmed := strings.TrimLeft(line, " \t")
			items = append(items, strings.TrimSpace(trimmed[2:]))
		}
	}
	return items
}

// Section returns the body lines under the first heading whose text
// contains name (case-insensitive), up to the next heading of the same
// or higher level. The second result is false when no heading matches.
func (p Post) Section(name string) ([]string, bool) {
	heads := p.Headings()
	lines := strings.Split(string(p.Body), "\n")
	for i, h := range heads {
		if !strings.Contains(strings.ToLower(h.Text), strings.ToLower(name)) {
			continue
		}
		start := h.Line // line after an ATX heading; setext bodies start after the underline
		if start < len(lines) && setextLevel(lines[start]) > 0 {
			start++
		}
		end := len(lines)
		for _, next := range heads[i+1:] {
			if next.Level <= h.Level {
				end = next.Line - 1
				break
			}
		}
		if start > end {
			start = end
		}
		return lines[start:end], true
	}
	return nil, false
}

// SectionBullets returns the bullet items under the named section.
func (p Post) SectionBullets(name string) ([]string, bool) {
	section, ok := p.Section(name)
	if !ok {
		return nil, false
	}
	var items []string
	for _, line := range section {
		if isBullet(line) {
			trimmed := strings.TrimLeft(line, " \t")
			items = append(items, strings.TrimSpace(trimmed[2:]))
		}
	}
	return items, true
}
