// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestListFiles_SortedAndNoiseFree(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"b.py":                          "",
		"a.py":                          "",
		"pkg/mod.py":                    "",
		"pkg/__pycache__/mod.cpython":   "",
		"__pycache__/top.cpython":       "",
		"pkg/mod.pyc":                   "",
		"stale.pyc":                     "",
		"pkg/deep/nested/__init__.py":   "",
		"pkg/deep/nested/cache.pyc":     "",
	})

	files, err := listFiles(dir)
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}

	want := []string{"a.py", "b.py", "pkg/deep/nested/__init__.py", "pkg/mod.py"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("listFiles=%v, want %v", files, want)
	}
}

func TestListFiles_SingleFileRoot(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"module1.py": "X = 1\n"})

	files, err := listFiles(filepath.Join(dir, "module1.py"))
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}

	if len(files) != 1 || files[0] != "module1.py" {
		t.Fatalf("listFiles=%v, want [module1.py]", files)
	}
}

func TestListFiles_Restartable(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.py":     "",
		"pkg/b.py": "",
	})

	first, err := listFiles(dir)
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}

	second, err := listFiles(dir)
	if err != nil {
		t.Fatalf("listFiles: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("listFiles not stable: %v vs %v", first, second)
	}
}

func TestListFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := listFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("listFiles on missing root, want error")
	}
}
