// Package plugins loads site task plugins from .inkpress/plugins. A
// task plugin declares extra files the build should produce: inputs
// matched by glob, an output path template, and either a plain copy or
// a render through an inline template. Definitions live on disk as YAML
// or as interpreted Go files.
package plugins

import (
	"fmt"
	"path"
	"strings"
	"text/template"
)

// Mode selects how a task turns an input file into its output.
type Mode string

const (
	// ModeCopy copies input bytes verbatim.
	ModeCopy Mode = "copy"
	// ModeRender runs the input through the task's template.
	ModeRender Mode = "render"
)

// TaskDefinition mirrors the on-disk schema under .inkpress/plugins.
type TaskDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`

	// Input is a glob over the site root selecting source files.
	Input string `json:"input" yaml:"input"`

	// Output is a path template relative to the output folder. It may
	// reference {{.Name}}, {{.Stem}}, {{.Ext}}, and {{.Dir}} of each
	// matched input.
	Output string `json:"output" yaml:"output"`

	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Template is the render-mode body, given {{.Name}} and {{.Content}}.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
}

// Normalized returns a trimmed copy of the definition with the default
// mode applied.
func (def TaskDefinition) Normalized() TaskDefinition {
	clone := TaskDefinition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
		Input:       strings.TrimSpace(def.Input),
		Output:      strings.TrimSpace(def.Output),
		Mode:        Mode(strings.TrimSpace(string(def.Mode))),
		Template:    def.Template,
	}
	if clone.Mode == "" {
		clone.Mode = ModeCopy
	}
	return clone
}

// Validate ensures the definition is well-formed before registration.
func (def TaskDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.ID)
	}
	if normalized.Input == "" {
		return fmt.Errorf("plugin %s: input glob is required", normalized.ID)
	}
	if _, err := path.Match(normalized.Input, ""); err != nil {
		return fmt.Errorf("plugin %s: input glob: %w", normalized.ID, err)
	}
	if normalized.Output == "" {
		return fmt.Errorf("plugin %s: output template is required", normalized.ID)
	}
	if strings.HasPrefix(normalized.Output, "/") || strings.Contains(normalized.Output, "..") {
		return fmt.Errorf("plugin %s: output must stay inside the output folder", normalized.ID)
	}
	if _, err := template.New("output").Parse(normalized.Output); err != nil {
		return fmt.Errorf("plugin %s: output template: %w", normalized.ID, err)
	}
	switch normalized.Mode {
	case ModeCopy:
		if strings.TrimSpace(normalized.Template) != "" {
			return fmt.Errorf("plugin %s: copy mode does not take a template", normalized.ID)
		}
	case ModeRender:
		if strings.TrimSpace(normalized.Template) == "" {
			return fmt.Errorf("plugin %s: render mode requires a template", normalized.ID)
		}
		if _, err := template.New("body").Parse(normalized.Template); err != nil {
			return fmt.Errorf("plugin %s: template: %w", normalized.ID, err)
		}
	default:
		return fmt.Errorf("plugin %s: mode must be %s or %s", normalized.ID, ModeCopy, ModeRender)
	}
	return nil
}
