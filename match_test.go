// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"errors"
	"testing"
)

func TestMatchPatterns(t *testing.T) {
	t.Parallel()

	candidates := []string{
		"module1.py",
		"package1/__init__.py",
		"package1/core.py",
		"package1/data/one.csv",
		"README.rst",
	}

	matched, err := matchPatterns(candidates, []string{"package1/**", "module1.py"}, "includes")
	if err != nil {
		t.Fatalf("matchPatterns: %v", err)
	}

	if len(matched) != 4 {
		t.Fatalf("len(matched)=%d, want 4", len(matched))
	}

	for _, rel := range []string{"module1.py", "package1/__init__.py", "package1/core.py", "package1/data/one.csv"} {
		if _, ok := matched[rel]; !ok {
			t.Fatalf("matched missing %q", rel)
		}
	}

	if _, ok := matched["README.rst"]; ok {
		t.Fatalf("matched contains README.rst, want excluded")
	}
}

func TestMatchPatterns_TrailingSlashStripped(t *testing.T) {
	t.Parallel()

	matched, err := matchPatterns([]string{"pkg/a.py"}, []string{"pkg/*.py/"}, "includes")
	if err != nil {
		t.Fatalf("matchPatterns: %v", err)
	}

	if _, ok := matched["pkg/a.py"]; !ok {
		t.Fatalf("matched missing pkg/a.py")
	}
}

func TestMatchPatterns_CharacterClass(t *testing.T) {
	t.Parallel()

	candidates := []string{"LICENSE", "LICENCE", "NOTICE"}

	matched, err := matchPatterns(candidates, []string{"*LICEN[SC]E*"}, "metadata_files")
	if err != nil {
		t.Fatalf("matchPatterns: %v", err)
	}

	if len(matched) != 2 {
		t.Fatalf("len(matched)=%d, want 2", len(matched))
	}
}

func TestMatchPatterns_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := matchPatterns([]string{"a.py"}, []string{"[unterminated"}, "includes")
	if !errors.Is(err, ErrSelection) {
		t.Fatalf("matchPatterns err=%v, want ErrSelection", err)
	}
}

func TestMatchPatterns_EmptyPatternSkipped(t *testing.T) {
	t.Parallel()

	matched, err := matchPatterns([]string{"a.py"}, []string{""}, "includes")
	if err != nil {
		t.Fatalf("matchPatterns: %v", err)
	}

	if len(matched) != 0 {
		t.Fatalf("len(matched)=%d, want 0", len(matched))
	}
}
