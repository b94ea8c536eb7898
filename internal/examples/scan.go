// Package examples scans the project's example-script folders and
// prepares them for listing pages: one entry per script with a summary
// pulled from its leading documentation, grouped per subfolder and
// naturally sorted.
package examples

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/facette/natsort"

	"github.com/inkpress-dev/inkpress/internal/config"
)

// Kind selects the scanning strategy for one examples folder. Mirroring
// the site's convention, the kind is inferred from the destination name.
type Kind string

const (
	KindPython  Kind = "python"
	KindMatlab  Kind = "matlab"
	KindJupyter Kind = "jupyter"
)

// KindOf infers the folder kind from its destination path.
func KindOf(dest string) (Kind, bool) {
	lower := strings.ToLower(dest)
	switch {
	case strings.Contains(lower, "python"):
		return KindPython, true
	case strings.Contains(lower, "matlab"):
		return KindMatlab, true
	case strings.Contains(lower, "jupyter"):
		return KindJupyter, true
	default:
		return "", false
	}
}

// Script is one example source file.
type Script struct {
	Path     string
	Name     string
	Category string
	Summary  string
	Checksum string
}

// Group collects the scripts of one category, in natural-sort order.
type Group struct {
	ID      string
	Name    string
	Scripts []Script
}

// Listing is the scan result for one examples folder.
type Listing struct {
	Kind   Kind
	Source string
	Dest   string
	Groups []Group
}

// Categories used by the Python and Jupyter example trees. Unknown
// folders fall back to a title-cased version of their name.
var categoryNames = map[string]string{
	"thermo":            "Thermodynamics",
	"kinetics":          "Kinetics",
	"transport":         "Transport",
	"reactors":          "Reactor Networks",
	"onedim":            "One-Dimensional Flames",
	"flames":            "One-Dimensional Flames",
	"multiphase":        "Multiphase Mixtures",
	"surface_chemistry": "Surface Chemistry",
}

// File suffixes never rendered as examples.
var ignoredExtensions = map[string]bool{
	".pyc": true,
	".pyo": true,
	".cti": true,
	".dat": true,
}

// Scan walks one configured examples folder and builds its listing.
func Scan(folder config.ExamplesFolder) (*Listing, error) {
	kind, ok := KindOf(folder.Dest)
	if !ok {
		return nil, fmt.Errorf("examples: cannot infer kind for %s (destination must mention python, matlab, or jupyter)", folder.Dest)
	}
	listing := &Listing{Kind: kind, Source: folder.Source, Dest: folder.Dest}
	if _, statErr := os.Stat(folder.Source); errors.Is(statErr, fs.ErrNotExist) {
		// A configured folder that does not exist yet is just empty.
		return listing, nil
	}
	var err error
	switch kind {
	case KindPython:
		err = scanPython(listing)
	case KindMatlab:
		err = scanMatlab(listing)
	case KindJupyter:
		err = scanJupyter(listing)
	}
	if err != nil {
		return nil, err
	}
	for i := range listing.Groups {
		sortScripts(listing.Groups[i].Scripts)
	}
	sort.Slice(listing.Groups, func(i, j int) bool { return listing.Groups[i].ID < listing.Groups[j].ID })
	return listing, nil
}

func scanPython(listing *Listing) error {
	categories, err := os.ReadDir(listing.Source)
	if err != nil {
		return fmt.Errorf("examples: read %s: %w", listing.Source, err)
	}
	for _, cat := range categories {
		if !cat.IsDir() || strings.HasPrefix(cat.Name(), ".") {
			continue
		}
		catDir := filepath.Join(listing.Source, cat.Name())
		files, err := os.ReadDir(catDir)
		if err != nil {
			return fmt.Errorf("examples: read %s: %w", catDir, err)
		}
		group := Group{ID: cat.Name(), Name: categoryName(cat.Name())}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".py" {
				continue
			}
			path := filepath.Join(catDir, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("examples: read %s: %w", path, err)
			}
			group.Scripts = append(group.Scripts, Script{
				Path:     path,
				Name:     f.Name(),
				Category: cat.Name(),
				Summary:  pythonSummary(data),
				Checksum: checksum(data),
			})
		}
		if len(group.Scripts) > 0 {
			listing.Groups = append(listing.Groups, group)
		}
	}
	return nil
}

func scanMatlab(listing *Listing) error {
	files, err := os.ReadDir(listing.Source)
	if err != nil {
		return fmt.Errorf("examples: read %s: %w", listing.Source, err)
	}
	group := Group{ID: "examples", Name: "Examples"}
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || skipMatlab(name) {
			continue
		}
		path := filepath.Join(listing.Source, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("examples: read %s: %w", path, err)
		}
		group.Scripts = append(group.Scripts, Script{
			Path:     path,
			Name:     name,
			Category: group.ID,
			Summary:  matlabSummary(name, data),
			Checksum: checksum(data),
		})
	}
	if len(group.Scripts) > 0 {
		listing.Groups = append(listing.Groups, group)
	}
	return nil
}

// skipMatlab mirrors the long-standing exclusions for the MATLAB tree:
// tutorials, READMEs, test harnesses, and data files are not examples.
func skipMatlab(name string) bool {
	if strings.Contains(name, "tut") || strings.Contains(name, "test") || name == "README" {
		return true
	}
	if name == ".DS_Store" || strings.HasPrefix(name, ".") {
		return true
	}
	return ignoredExtensions[filepath.Ext(name)]
}

func scanJupyter(listing *Listing) error {
	categories, err := os.ReadDir(listing.Source)
	if err != nil {
		return fmt.Errorf("examples: read %s: %w", listing.Source, err)
	}
	for _, cat := range categories {
		if !cat.IsDir() || strings.HasPrefix(cat.Name(), ".") {
			continue
		}
		catDir := filepath.Join(listing.Source, cat.Name())
		files, err := os.ReadDir(catDir)
		if err != nil {
			return fmt.Errorf("examples: read %s: %w", catDir, err)
		}
		group := Group{ID: cat.Name(), Name: categoryName(cat.Name())}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".ipynb" {
				continue
			}
			path := filepath.Join(catDir, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("examples: read %s: %w", path, err)
			}
			summary, err := notebookSummary(data)
			if err != nil {
				return fmt.Errorf("examples: %s: %w", path, err)
			}
			group.Scripts = append(group.Scripts, Script{
				Path:     path,
				Name:     f.Name(),
				Category: cat.Name(),
				Summary:  summary,
				Checksum: checksum(data),
			})
		}
		if len(group.Scripts) > 0 {
			listing.Groups = append(listing.Groups, group)
		}
	}
	return nil
}

func categoryName(id string) string {
	if name, ok := categoryNames[id]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortScripts(scripts []Script) {
	sort.Slice(scripts, func(i, j int) bool {
		return natsort.Compare(strings.ToLower(scripts[i].Name), strings.ToLower(scripts[j].Name))
	})
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
