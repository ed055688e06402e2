// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/woozymasta/pathrules"
)

// buildNoisePatterns matches build-artifact noise excluded from every
// enumeration: bytecode cache directories and compiled bytecode files.
var buildNoisePatterns = []string{
	"__pycache__/**",
	"**/__pycache__/**",
	"*.pyc",
	"**/*.pyc",
}

// vcsPatterns matches version-control bookkeeping paths excluded by default
// from the primary and extra-source selection kinds.
var vcsPatterns = []string{
	".git/**",
	"**/.git/**",
	".hg/**",
	"**/.hg/**",
}

// compilePolicy compiles a fixed exclusion policy into a path matcher.
func compilePolicy(patterns []string) (*pathrules.Matcher, error) {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	})
	if err != nil {
		return nil, fmt.Errorf("compile exclusion policy: %w", err)
	}

	return matcher, nil
}

// listFiles enumerates every regular file under root, sorted lexicographically
// by slash-separated relative path. If root is itself a regular file the
// result is exactly that file's name. Build-artifact noise is never listed.
// Each call walks the tree afresh, so the sequence is restartable.
func listFiles(root string) ([]string, error) {
	noise, err := compilePolicy(buildNoisePatterns)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		name := filepath.Base(root)
		if noise.Included(name, false) {
			return nil, nil
		}

		return []string{name}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)
		if noise.Included(rel, false) {
			return nil
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)

	return files, nil
}
