// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"os"
	"path/filepath"
	"testing"
)

const basicPyproject = `[project]
name = "package1"
version = "0.0.1"
description = "A sample package"

[tool.pydist]
includes = ["package1/**", "module1.py"]
`

// writeTree creates a temp directory populated with the given files. Keys
// are slash-separated relative paths; parent directories are created as
// needed.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	return dir
}

// writeExecutable marks one file in a tree as owner-executable.
func writeExecutable(t *testing.T, dir, rel string) {
	t.Helper()

	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.Chmod(target, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", rel, err)
	}
}

// loadTestProject reads the project description at dir/pyproject.toml.
func loadTestProject(t *testing.T, dir string) *Project {
	t.Helper()

	project, err := ReadProjectFile(filepath.Join(dir, DefaultProjectFile))
	if err != nil {
		t.Fatalf("ReadProjectFile: %v", err)
	}

	return project
}

// basicTree returns a small project tree matching basicPyproject.
func basicTree(t *testing.T) string {
	t.Helper()

	return writeTree(t, map[string]string{
		"pyproject.toml":        basicPyproject,
		"module1.py":            "FIRST_NUMBER = 1\n",
		"package1/__init__.py":  "",
		"package1/core.py":      "def run():\n    return 1\n",
		"package1/data/one.csv": "a,b\n1,2\n",
		"README.rst":            "package1\n========\n",
		"LICENSE":               "permissive\n",
	})
}
