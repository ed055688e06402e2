// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"path/filepath"
	"sort"

	"github.com/woozymasta/pathrules"
)

// Default metadata-file patterns, applied when the project configures none.
// The two archive kinds historically carry different defaults.
var (
	sdistMetadataDefaults = []string{"README*", "LICENSE*", "LICENCE*", "COPYING*"}
	wheelMetadataDefaults = []string{"*LICEN[SC]E*", "*COPYING*", "*COPYIRIGHT*"}
)

// applySelection selects the candidate files under baseDir matching at least
// one include pattern and no exclude pattern. No excludes means nothing is
// excluded. Results are sorted by destination path and never contain
// directories. When dropVCS is set, version-control bookkeeping paths are
// excluded regardless of the configured patterns.
func applySelection(baseDir string, includes, excludes []string, incLabel, excLabel string, dropVCS bool) ([]FileEntry, error) {
	candidates, err := listFiles(baseDir)
	if err != nil {
		return nil, err
	}

	included, err := matchPatterns(candidates, includes, incLabel)
	if err != nil {
		return nil, err
	}

	excluded, err := matchPatterns(candidates, excludes, excLabel)
	if err != nil {
		return nil, err
	}

	var vcs *vcsFilter
	if dropVCS {
		vcs, err = newVCSFilter()
		if err != nil {
			return nil, err
		}
	}

	selected := make([]string, 0, len(included))
	for rel := range included {
		if _, drop := excluded[rel]; drop {
			continue
		}

		if vcs.match(rel) {
			continue
		}

		selected = append(selected, rel)
	}

	sort.Strings(selected)

	entries := make([]FileEntry, 0, len(selected))
	for _, rel := range selected {
		entries = append(entries, FileEntry{
			Source: filepath.Join(baseDir, filepath.FromSlash(rel)),
			Dest:   rel,
		})
	}

	return entries, nil
}

// vcsFilter wraps the compiled default version-control exclusion policy.
type vcsFilter struct {
	matcher *pathrules.Matcher
}

// newVCSFilter compiles the default version-control exclusion policy.
func newVCSFilter() (*vcsFilter, error) {
	matcher, err := compilePolicy(vcsPatterns)
	if err != nil {
		return nil, err
	}

	return &vcsFilter{matcher: matcher}, nil
}

// match reports whether rel is a version-control bookkeeping path.
func (f *vcsFilter) match(rel string) bool {
	if f == nil || f.matcher == nil {
		return false
	}

	return f.matcher.Included(rel, false)
}

// selectPrimary computes the primary file set used by both archive kinds.
func selectPrimary(p *Project) ([]FileEntry, error) {
	return applySelection(
		p.BaseDir,
		p.Selection.Includes,
		p.Selection.Excludes,
		"includes",
		"excludes",
		true,
	)
}

// selectExtraSource computes the source-archive-only extra file set.
func selectExtraSource(p *Project) ([]FileEntry, error) {
	return applySelection(
		p.BaseDir,
		p.Selection.SdistExtraIncludes,
		p.Selection.SdistExtraExcludes,
		"sdist_extra_includes",
		"sdist_extra_excludes",
		true,
	)
}

// selectMetadataFiles computes the metadata file set, falling back to the
// per-archive-kind default patterns when the project configures none.
func selectMetadataFiles(p *Project, defaults []string) ([]FileEntry, error) {
	patterns := p.Selection.MetadataFiles
	if len(patterns) == 0 {
		patterns = defaults
	}

	return applySelection(p.BaseDir, patterns, nil, "metadata_files", "metadata_files", false)
}

// selectScripts computes one pre-build script set. Script selections are
// plain include lists with no excludes.
func selectScripts(p *Project, patterns []string, label string) ([]FileEntry, error) {
	return applySelection(p.BaseDir, patterns, nil, label, label, false)
}
