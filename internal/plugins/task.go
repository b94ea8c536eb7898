package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// TaskResult reports one executed task.
type TaskResult struct {
	ID      string
	Inputs  int
	Written int
}

// outputData is what the output path template sees per matched input.
type outputData struct {
	Name string
	Stem string
	Ext  string
	Dir  string
}

// renderData is what a render-mode template sees.
type renderData struct {
	Name    string
	Content string
}

// Run executes one task: every file matching the input glob under
// siteRoot produces one file under outputDir. Outputs are only
// rewritten when their bytes changed.
func Run(def TaskDefinition, siteRoot, outputDir string) (TaskResult, error) {
	normalized := def.Normalized()
	result := TaskResult{ID: normalized.ID}
	outTmpl, err := template.New("output").Parse(normalized.Output)
	if err != nil {
		return result, fmt.Errorf("plugin %s: output template: %w", normalized.ID, err)
	}
	var bodyTmpl *template.Template
	if normalized.Mode == ModeRender {
		bodyTmpl, err = template.New("body").Parse(normalized.Template)
		if err != nil {
			return result, fmt.Errorf("plugin %s: template: %w", normalized.ID, err)
		}
	}
	matches, err := filepath.Glob(filepath.Join(siteRoot, filepath.FromSlash(normalized.Input)))
	if err != nil {
		return result, fmt.Errorf("plugin %s: glob: %w", normalized.ID, err)
	}
	sort.Strings(matches)
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return result, fmt.Errorf("plugin %s: stat %s: %w", normalized.ID, match, err)
		}
		if info.IsDir() {
			continue
		}
		result.Inputs++
		written, err := runOne(normalized, outTmpl, bodyTmpl, siteRoot, outputDir, match)
		if err != nil {
			return result, err
		}
		if written {
			result.Written++
		}
	}
	return result, nil
}

// RunAll executes every registered task in ID order.
func RunAll(reg *Registry, siteRoot, outputDir string) ([]TaskResult, error) {
	var results []TaskResult
	for _, def := range reg.Tasks() {
		result, err := Run(def, siteRoot, outputDir)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func runOne(def TaskDefinition, outTmpl, bodyTmpl *template.Template, siteRoot, outputDir, match string) (bool, error) {
	rel, err := filepath.Rel(siteRoot, match)
	if err != nil {
		return false, fmt.Errorf("plugin %s: %s: %w", def.ID, match, err)
	}
	rel = filepath.ToSlash(rel)
	name := path.Base(rel)
	data := outputData{
		Name: name,
		Stem: strings.TrimSuffix(name, path.Ext(name)),
		Ext:  path.Ext(name),
		Dir:  path.Dir(rel),
	}
	var target bytes.Buffer
	if err := outTmpl.Execute(&target, data); err != nil {
		return false, fmt.Errorf("plugin %s: output path for %s: %w", def.ID, rel, err)
	}
	outputRel := path.Clean(target.String())
	if outputRel == "." || strings.HasPrefix(outputRel, "..") {
		return false, fmt.Errorf("plugin %s: output %s escapes the output folder", def.ID, outputRel)
	}
	source, err := os.ReadFile(match)
	if err != nil {
		return false, fmt.Errorf("plugin %s: read %s: %w", def.ID, match, err)
	}
	payload := source
	if def.Mode == ModeRender {
		var rendered bytes.Buffer
		if err := bodyTmpl.Execute(&rendered, renderData{Name: name, Content: string(source)}); err != nil {
			return false, fmt.Errorf("plugin %s: render %s: %w", def.ID, rel, err)
		}
		payload = rendered.Bytes()
	}
	return writeIfChanged(filepath.Join(outputDir, filepath.FromSlash(outputRel)), payload)
}

func writeIfChanged(target string, data []byte) (bool, error) {
	existing, err := os.ReadFile(target)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("plugin: read %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("plugin: ensure %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return false, fmt.Errorf("plugin: write %s: %w", target, err)
	}
	return true, nil
}
