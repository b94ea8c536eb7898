package examples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inkpress-dev/inkpress/internal/config"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const pyWithDocstring = `"""
Adiabatic flame temperature calculation.

Uses the full equilibrium solver, which is the slow part.
"""
import cantera as ct
`

const notebookDoc = `{
  "cells": [
    {"cell_type": "markdown", "source": ["# Flame speed\n", "\n", "Compute laminar flame speeds with sensitivity analysis.\n"]},
    {"cell_type": "code", "source": ["print('hi')\n"]}
  ]
}`

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		"examples/python":  KindPython,
		"examples/matlab":  KindMatlab,
		"examples/jupyter": KindJupyter,
	}
	for dest, want := range cases {
		kind, ok := KindOf(dest)
		if !ok || kind != want {
			t.Fatalf("KindOf(%q) = %v %v", dest, kind, ok)
		}
	}
	if _, ok := KindOf("examples/fortran"); ok {
		t.Fatalf("expected unknown kind")
	}
}

func TestScanPythonGroupsAndSorts(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "thermo"), "ex10.py", pyWithDocstring)
	writeFile(t, filepath.Join(src, "thermo"), "ex2.py", `"""Second example."""`)
	writeFile(t, filepath.Join(src, "reactors"), "mix.py", "# no docstring\nprint(1)\n")
	writeFile(t, filepath.Join(src, "thermo"), "data.cti", "ignored")

	listing, err := Scan(config.ExamplesFolder{Source: src, Dest: "examples/python"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(listing.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", listing.Groups)
	}
	// Groups sorted by ID: reactors before thermo.
	if listing.Groups[0].ID != "reactors" || listing.Groups[1].Name != "Thermodynamics" {
		t.Fatalf("unexpected groups: %+v", listing.Groups)
	}
	thermo := listing.Groups[1]
	if len(thermo.Scripts) != 2 {
		t.Fatalf("expected 2 thermo scripts, got %+v", thermo.Scripts)
	}
	// Natural sort: ex2 before ex10.
	if thermo.Scripts[0].Name != "ex2.py" || thermo.Scripts[1].Name != "ex10.py" {
		t.Fatalf("natural sort failed: %+v", thermo.Scripts)
	}
	if got := thermo.Scripts[1].Summary; got != "Adiabatic flame temperature calculation." {
		t.Fatalf("unexpected summary %q", got)
	}
	if listing.Groups[0].Scripts[0].Summary != "" {
		t.Fatalf("expected empty summary for docstring-less script")
	}
	if thermo.Scripts[0].Checksum == "" {
		t.Fatalf("expected checksum to be recorded")
	}
}

func TestScanMatlabSkipsTutorialsAndStripsNames(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "equil.m", "% EQUIL  a chemical equilibrium example\nfunction equil()\n")
	writeFile(t, src, "rankine.m", "% This example computes a Rankine cycle\n")
	writeFile(t, src, "tut1.m", "% tutorial one\n")
	writeFile(t, src, "test_examples.m", "% test harness\n")
	writeFile(t, src, "README", "readme")
	writeFile(t, src, "gri30.dat", "data")

	listing, err := Scan(config.ExamplesFolder{Source: src, Dest: "examples/matlab"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(listing.Groups) != 1 {
		t.Fatalf("expected 1 group, got %+v", listing.Groups)
	}
	scripts := listing.Groups[0].Scripts
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %+v", scripts)
	}
	if scripts[0].Name != "equil.m" {
		t.Fatalf("unexpected order: %+v", scripts)
	}
	if scripts[0].Summary != "a chemical equilibrium example" {
		t.Fatalf("file-name prefix not stripped: %q", scripts[0].Summary)
	}
}

func TestScanJupyterReadsFirstMarkdownCell(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "flames"), "flamespeed.ipynb", notebookDoc)

	listing, err := Scan(config.ExamplesFolder{Source: src, Dest: "examples/jupyter"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(listing.Groups) != 1 || listing.Groups[0].Name != "One-Dimensional Flames" {
		t.Fatalf("unexpected groups: %+v", listing.Groups)
	}
	script := listing.Groups[0].Scripts[0]
	if script.Summary != "Compute laminar flame speeds with sensitivity analysis." {
		t.Fatalf("unexpected summary %q", script.Summary)
	}
}

func TestScanJupyterRejectsBadNotebook(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "flames"), "broken.ipynb", "{not json")
	if _, err := Scan(config.ExamplesFolder{Source: src, Dest: "examples/jupyter"}); err == nil {
		t.Fatalf("expected notebook parse error")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := LoadCache(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cache.UpToDate("examples/python/thermo/ex2.py.html", "abc") {
		t.Fatalf("empty cache should not be up to date")
	}
	cache.Record("examples/python/thermo/ex2.py.html", "abc")
	if err := cache.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := LoadCache(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.UpToDate("examples/python/thermo/ex2.py.html", "abc") {
		t.Fatalf("expected cached entry to survive reload")
	}
	if reloaded.UpToDate("examples/python/thermo/ex2.py.html", "changed") {
		t.Fatalf("changed checksum should invalidate")
	}
}
