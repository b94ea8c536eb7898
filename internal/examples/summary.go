package examples

import (
	"encoding/json"
	"fmt"
	"strings"
)

// pythonSummary extracts the first paragraph of a module docstring. The
// scanner tolerates a shebang, encoding comments, and blank lines before
// the docstring; scripts without one get an empty summary.
func pythonSummary(source []byte) string {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	idx := 0
	for idx < len(lines) {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			idx++
			continue
		}
		break
	}
	if idx >= len(lines) {
		return ""
	}
	first := strings.TrimSpace(lines[idx])
	quote := ""
	for _, q := range []string{`"""`, "'''"} {
		for _, prefix := range []string{q, "r" + q, "R" + q} {
			if strings.HasPrefix(first, prefix) {
				quote = q
				first = strings.TrimPrefix(first, prefix)
			}
		}
		if quote != "" {
			break
		}
	}
	if quote == "" {
		return ""
	}
	var doc strings.Builder
	if end := strings.Index(first, quote); end >= 0 {
		doc.WriteString(first[:end])
	} else {
		doc.WriteString(first)
		for i := idx + 1; i < len(lines); i++ {
			line := lines[i]
			if end := strings.Index(line, quote); end >= 0 {
				doc.WriteString("\n")
				doc.WriteString(line[:end])
				break
			}
			doc.WriteString("\n")
			doc.WriteString(line)
		}
	}
	summary := strings.TrimSpace(strings.SplitN(strings.TrimSpace(doc.String()), "\n\n", 2)[0])
	summary = strings.Join(strings.Fields(summary), " ")
	if summary != "" && !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}

// matlabSummary returns the first `%` comment line of a MATLAB script,
// with a leading restatement of the file name stripped.
func matlabSummary(name string, source []byte) string {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	doc := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "%") {
			doc = strings.TrimSpace(strings.Trim(line, "%"))
		}
		if doc != "" {
			break
		}
	}
	stem := strings.TrimSuffix(name, ".m")
	spoken := strings.ReplaceAll(stem, "_", " ")
	if strings.HasPrefix(strings.ToLower(strings.ReplaceAll(doc, "_", " ")), strings.ToLower(spoken)) {
		doc = strings.TrimSpace(doc[len(spoken):])
	}
	return doc
}

type notebook struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
}

// notebookSummary returns the first prose line of the first markdown
// cell of a Jupyter notebook, skipping heading lines.
func notebookSummary(data []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("parse notebook: %w", err)
	}
	for _, cell := range nb.Cells {
		if cell.CellType != "markdown" {
			continue
		}
		for _, raw := range cell.Source {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, nil
		}
	}
	return "", nil
}
