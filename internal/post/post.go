// Package post implements the site's release-note document convention:
// a header block of `.. key: value` metadata lines followed by a
// markdown-flavored body. Parsing keeps enough raw material (field order,
// raw values, the blank-line separator) that Encode reproduces the input
// byte for byte.
package post

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrMissingMeta indicates the document did not start with a metadata line.
	ErrMissingMeta = errors.New("post: missing metadata header")
	// ErrMalformedMeta indicates a metadata line could not be parsed.
	ErrMalformedMeta = errors.New("post: malformed metadata header")
)

// Well-known metadata keys. Unknown keys are preserved but carry no
// typed accessor.
const (
	KeyTitle       = "title"
	KeySlug        = "slug"
	KeyDate        = "date"
	KeyTags        = "tags"
	KeyCategory    = "category"
	KeyLink        = "link"
	KeyDescription = "description"
	KeyType        = "type"
	KeyAuthor      = "author"
)

// metaLine matches one `.. key: value` header line. The value may be
// empty (`.. link:` is common in practice).
var metaLine = regexp.MustCompile(`^\.\. ([A-Za-z_][A-Za-z0-9_-]*):[ \t]?(.*)$`)

// Field is a single raw header entry, order-preserving.
type Field struct {
	Key   string
	Value string

	// raw is the original line when the field came from Parse; Encode
	// prefers it so oddly-spaced headers survive a round trip.
	raw string
}

// Metadata is the parsed header of a post. Fields holds every entry in
// file order with raw values; the typed accessors below interpret the
// well-known keys.
type Metadata struct {
	Fields []Field
}

// Get returns the raw value for key, or "" when absent.
func (m Metadata) Get(key string) string {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the header contains key, even with an empty value.
func (m Metadata) Has(key string) bool {
	for _, f := range m.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value for key, appending a new field when absent.
func (m *Metadata) Set(key, value string) {
	for i := range m.Fields {
		if m.Fields[i].Key == key {
			m.Fields[i].Value = value
			m.Fields[i].raw = ""
			return
		}
	}
	m.Fields = append(m.Fields, Field{Key: key, Value: value})
}

// Title returns the post title.
func (m Metadata) Title() string { return strings.TrimSpace(m.Get(KeyTitle)) }

// Slug returns the URL-safe identifier.
func (m Metadata) Slug() string { return strings.TrimSpace(m.Get(KeySlug)) }

// Category returns the post category.
func (m Metadata) Category() string { return strings.TrimSpace(m.Get(KeyCategory)) }

// Link returns the optional external link.
func (m Metadata) Link() string { return strings.TrimSpace(m.Get(KeyLink)) }

// Description returns the optional summary line.
func (m Metadata) Description() string { return strings.TrimSpace(m.Get(KeyDescription)) }

// Type returns the Nikola-style post type (usually "text").
func (m Metadata) Type() string { return strings.TrimSpace(m.Get(KeyType)) }

// Author returns the optional author field.
func (m Metadata) Author() string { return strings.TrimSpace(m.Get(KeyAuthor)) }

// Tags returns the comma-separated tag list, trimmed, empty entries dropped.
func (m Metadata) Tags() []string {
	raw := m.Get(KeyTags)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// HasTag reports whether the tag list contains name (case-insensitive).
func (m Metadata) HasTag(name string) bool {
	for _, t := range m.Tags() {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// IsRelease reports whether the post is a release announcement, which
// the site marks with a "releases" tag or category.
func (m Metadata) IsRelease() bool {
	return m.HasTag("releases") || strings.EqualFold(m.Category(), "releases")
}

// Date layouts accepted across the site's history, tried in order.
// The first is the native spelling ("2017-01-19 15:00:00 UTC-05:00").
var dateLayouts = []string{
	"2006-01-02 15:04:05 UTC-07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date parses the date field. The zero time and an error are returned
// when the field is absent or unparseable.
func (m Metadata) Date() (time.Time, error) {
	raw := strings.TrimSpace(m.Get(KeyDate))
	if raw == "" {
		return time.Time{}, fmt.Errorf("post: empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("post: parse date %q: %w", raw, lastErr)
}

// Post is one parsed document.
type Post struct {
	Meta Metadata
	Body []byte

	// Path is the source file, when the post was loaded from disk.
	Path string

	// sep holds the separator lines between header and body verbatim,
	// whitespace included, so that Encode round-trips exactly.
	sep []byte
}

// Parse splits a document into header metadata and body. The input is
// normalized to LF line endings before anything else; Encode on the
// result reproduces the normalized input byte for byte.
func Parse(content []byte) (Post, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return Post{}, ErrMissingMeta
	}
	normalized := normalizeNewlines(content)
	lines := strings.Split(string(normalized), "\n")

	var fields []Field
	idx := 0
	for idx < len(lines) {
		match := metaLine.FindStringSubmatch(lines[idx])
		if match == nil {
			break
		}
		fields = append(fields, Field{Key: strings.ToLower(match[1]), Value: match[2], raw: lines[idx]})
		idx++
	}
	if len(fields) == 0 {
		return Post{}, ErrMissingMeta
	}
	// A `.. ` line that is not key: value while we are still reading the
	// header is an authoring mistake, not body text.
	if idx < len(lines) && strings.HasPrefix(lines[idx], ".. ") {
		return Post{}, fmt.Errorf("%w: line %d: %q", ErrMalformedMeta, idx+1, lines[idx])
	}

	var sep bytes.Buffer
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		// The final split element after a trailing newline is an empty
		// string, not a blank line; leave it for the body join.
		if idx == len(lines)-1 {
			break
		}
		sep.WriteString(lines[idx])
		sep.WriteString("\n")
		idx++
	}

	body := []byte(strings.Join(lines[idx:], "\n"))
	return Post{
		Meta: Metadata{Fields: fields},
		Body: body,
		sep:  sep.Bytes(),
	}, nil
}

// Encode serializes the post back to its on-disk form. Field order, raw
// values, and the header/body separator are emitted exactly as parsed;
// a document with no separator stays that way. New supplies the
// canonical blank line for generated posts.
func (p Post) Encode() []byte {
	var buf bytes.Buffer
	for _, f := range p.Meta.Fields {
		if f.raw != "" {
			buf.WriteString(f.raw)
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(".. ")
		buf.WriteString(f.Key)
		buf.WriteString(":")
		if f.Value != "" {
			buf.WriteString(" ")
			buf.WriteString(f.Value)
		}
		buf.WriteString("\n")
	}
	buf.Write(p.sep)
	buf.Write(p.Body)
	return buf.Bytes()
}

// New builds a fresh post with the canonical header layout used for
// generated documents.
func New(title, slug string, date time.Time, tags []string, body []byte) Post {
	fields := []Field{
		{Key: KeyTitle, Value: title},
		{Key: KeySlug, Value: slug},
		{Key: KeyDate, Value: date.Format(dateLayouts[0])},
		{Key: KeyTags, Value: strings.Join(tags, ", ")},
		{Key: KeyCategory, Value: ""},
		{Key: KeyLink, Value: ""},
		{Key: KeyDescription, Value: ""},
		{Key: KeyType, Value: "text"},
	}
	return Post{
		Meta: Metadata{Fields: fields},
		Body: body,
		sep:  []byte("\n"),
	}
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
