package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is fixed so builds stay deterministic across machines.
const highlightStyle = "friendly"

// Highlight renders source code as HTML with line numbers. The lexer is
// picked from the file name; notebooks fall back to the JSON lexer and
// anything unknown to plain text.
func Highlight(name string, source []byte) (template.HTML, error) {
	lexer := lexers.Match(name)
	if lexer == nil && filepath.Ext(name) == ".ipynb" {
		lexer = lexers.Get("json")
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(
		chromahtml.WithLineNumbers(true),
		chromahtml.WithClasses(false),
	)
	iterator, err := lexer.Tokenise(nil, string(source))
	if err != nil {
		return "", fmt.Errorf("render: tokenise %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("render: highlight %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
