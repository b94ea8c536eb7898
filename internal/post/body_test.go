package post

import (
	"testing"
)

func mustParse(t *testing.T, doc string) Post {
	t.Helper()
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func TestLinksExtraction(t *testing.T) {
	p := mustParse(t, sampleRelease)
	links := p.Links()
	if len(links) != 4 {
		t.Fatalf("expected 4 links, got %d: %+v", len(links), links)
	}
	first := links[0]
	if first.Label != "documentation" || first.URL != "https://example.org/docs/" {
		t.Fatalf("unexpected first link: %+v", first)
	}
	for _, l := range links {
		if l.Line == 0 {
			t.Fatalf("link missing line number: %+v", l)
		}
	}
}

func TestValidURL(t *testing.T) {
	valid := []string{
		"https://example.org/dl/cantera-2.3.0.tar.gz",
		"http://example.org",
		"ftp://ftp.example.org/pub/",
		"/cantera/docs/index.html",
		"files/cantera.zip",
		"#downloads",
		"mailto:devs@example.org",
	}
	for _, target := range valid {
		if !ValidURL(target) {
			t.Fatalf("expected %q to be valid", target)
		}
	}
	invalid := []string{
		"",
		"https://",
		"javascript:alert(1)",
		"://bad",
	}
	for _, target := range invalid {
		if ValidURL(target) {
			t.Fatalf("expected %q to be invalid", target)
		}
	}
}

func TestHeadingsSetextAndATX(t *testing.T) {
	doc := `.. title: Mixed
.. slug: mixed
.. date: 2020-01-01

Top Heading
===========

## Sub Heading

Downloads available
-------------------

- one item
`
	p := mustParse(t, doc)
	heads := p.Headings()
	if len(heads) != 3 {
		t.Fatalf("expected 3 headings, got %+v", heads)
	}
	if heads[0].Text != "Top Heading" || heads[0].Level != 1 {
		t.Fatalf("unexpected setext heading: %+v", heads[0])
	}
	if heads[1].Text != "Sub Heading" || heads[1].Level != 2 {
		t.Fatalf("unexpected ATX heading: %+v", heads[1])
	}
	if heads[2].Text != "Downloads available" || heads[2].Level != 2 {
		t.Fatalf("unexpected downloads heading: %+v", heads[2])
	}
}

func TestSectionBullets(t *testing.T) {
	p := mustParse(t, sampleRelease)
	bullets, ok := p.SectionBullets(DownloadsSection)
	if !ok {
		t.Fatalf("downloads section not found")
	}
	if len(bullets) != 3 {
		t.Fatalf("expected 3 download entries, got %d: %v", len(bullets), bullets)
	}
}

func TestSectionStopsAtSiblingHeading(t *testing.T) {
	doc := `.. title: Sections
.. slug: sections
.. date: 2020-01-01

Downloads available
-------------------

- inside

Other section
-------------

- outside
`
	p := mustParse(t, doc)
	bullets, ok := p.SectionBullets(DownloadsSection)
	if !ok {
		t.Fatalf("downloads section not found")
	}
	if len(bullets) != 1 || bullets[0] != "inside" {
		t.Fatalf("section leaked past sibling heading: %v", bullets)
	}
}

func TestSectionMissing(t *testing.T) {
	doc := ".. title: Plain\n.. slug: plain\n.. date: 2020-01-01\n\nNo sections here.\n"
	p := mustParse(t, doc)
	if _, ok := p.Section(DownloadsSection); ok {
		t.Fatalf("expected no downloads section")
	}
}
