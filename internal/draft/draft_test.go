package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/tsuyoshiwada/go-gitlog"

	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/post"
	"github.com/inkpress-dev/inkpress/internal/version"
)

var testHeaders = []config.DraftHeader{
	{Name: "New features", Prefixes: []string{"feat:"}},
	{Name: "Bug fixes", Prefixes: []string{"fix:"}},
}

func testCommits() []*gitlog.Commit {
	return []*gitlog.Commit{
		{Subject: "feat: add soot precursor model (#101)"},
		{Subject: "fix: correct enthalpy lookup (#104)"},
		{Subject: "feat: support YAML input files"},
		{Subject: "tidy up CI scripts"},
	}
}

func TestGroupByHeaderPrefix(t *testing.T) {
	g := NewGenerator(".", testHeaders)
	v, err := version.Parse("2.4.0")
	if err != nil {
		t.Fatalf("parse version: %v", err)
	}
	changelog := g.group(v, testCommits())
	if len(changelog.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %+v", changelog.Groups)
	}
	// Configured header order first, unsorted last.
	if changelog.Groups[0].Title != "New features" || len(changelog.Groups[0].Notes) != 2 {
		t.Fatalf("unexpected features group: %+v", changelog.Groups[0])
	}
	if changelog.Groups[2].Title != UnsortedHeader {
		t.Fatalf("expected unsorted group last, got %s", changelog.Groups[2].Title)
	}
	first := changelog.Groups[0].Notes[0]
	if first.Subject != "add soot precursor model" {
		t.Fatalf("prefix/ref not trimmed: %q", first.Subject)
	}
	if len(first.Refs) != 1 || first.Refs[0] != "#101" {
		t.Fatalf("unexpected refs: %v", first.Refs)
	}
}

func TestPostRendersValidReleaseDraft(t *testing.T) {
	fixed := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	g := NewGenerator(".", testHeaders, WithClock(func() time.Time { return fixed }))
	v, err := version.Parse("2.4.0")
	if err != nil {
		t.Fatalf("parse version: %v", err)
	}
	changelog := g.group(v, testCommits())
	draft, err := g.Post("Cantera", changelog)
	if err != nil {
		t.Fatalf("render post: %v", err)
	}
	if draft.Meta.Title() != "Cantera 2.4.0" || draft.Meta.Slug() != "v2.4.0" {
		t.Fatalf("unexpected metadata: %+v", draft.Meta.Fields)
	}
	reparsed, err := post.Parse(draft.Encode())
	if err != nil {
		t.Fatalf("draft should parse back: %v", err)
	}
	if issues := post.Validate(reparsed); len(issues) != 0 {
		t.Fatalf("draft should validate cleanly, got %v", issues)
	}
	body := string(reparsed.Body)
	if !strings.Contains(body, "- add soot precursor model (#101)") {
		t.Fatalf("missing grouped bullet:\n%s", body)
	}
	bullets, ok := reparsed.SectionBullets(post.DownloadsSection)
	if !ok || len(bullets) == 0 {
		t.Fatalf("draft missing downloads section:\n%s", body)
	}
}

func TestTrimSubjectAndRefs(t *testing.T) {
	if got := trimSubject(" add model (#12) "); got != "add model" {
		t.Fatalf("trimSubject = %q", got)
	}
	if got := refs("merge work (#12) and (#34)"); len(got) != 2 || got[1] != "#34" {
		t.Fatalf("refs = %v", got)
	}
}
