// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// metadataVersion is the core-metadata format marker written first in every
// rendered metadata record.
const metadataVersion = "2.1"

// Metadata holds the normalized core metadata of one project. Name and
// Version are required; everything else renders only when present.
type Metadata struct {
	// Name is the project name as declared, required.
	Name string `json:"name"`
	// Version is the canonical version string, required.
	Version string `json:"version"`
	// Summary is the one-line project description.
	Summary string `json:"summary,omitempty"`
	// HomePage is the project home page URL.
	HomePage string `json:"home_page,omitempty"`
	// License is a brief license description.
	License string `json:"license,omitempty"`
	// Keywords is the comma-joined keyword list.
	Keywords string `json:"keywords,omitempty"`
	// Author and AuthorEmail identify the authors.
	Author      string `json:"author,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
	// Maintainer and MaintainerEmail identify the maintainers.
	Maintainer      string `json:"maintainer,omitempty"`
	MaintainerEmail string `json:"maintainer_email,omitempty"`
	// RequiresPython is the minimum-interpreter constraint.
	RequiresPython string `json:"requires_python,omitempty"`
	// DescriptionContentType marks the long description format.
	DescriptionContentType string `json:"description_content_type,omitempty"`
	// Description is the long-form description, rendered verbatim as the body.
	Description string `json:"description,omitempty"`
	// Classifiers are trove classifier lines.
	Classifiers []string `json:"classifiers,omitempty"`
	// RequiresDist are requirement strings, including extras-derived ones.
	RequiresDist []string `json:"requires_dist,omitempty"`
	// ProjectURLs are "label, url" lines.
	ProjectURLs []string `json:"project_urls,omitempty"`
	// ProvidesExtra are optional-feature names.
	ProvidesExtra []string `json:"provides_extra,omitempty"`
}

// Write renders the metadata in the email-headers format consumed by index
// and installer tooling. Field order is fixed, multi-line values indent
// continuation lines by eight spaces, and the long description is written
// verbatim after a blank line. The layout is a byte-for-byte contract.
func (m *Metadata) Write(w io.Writer) error {
	if w == nil {
		return ErrNilWriter
	}

	required := []struct{ field, value string }{
		{"Metadata-Version", metadataVersion},
		{"Name", m.Name},
		{"Version", m.Version},
	}
	optional := []struct{ field, value string }{
		{"Summary", m.Summary},
		{"Home-page", m.HomePage},
		{"License", m.License},
		{"Keywords", m.Keywords},
		{"Author", m.Author},
		{"Author-email", m.AuthorEmail},
		{"Maintainer", m.Maintainer},
		{"Maintainer-email", m.MaintainerEmail},
		{"Requires-Python", m.RequiresPython},
		{"Description-Content-Type", m.DescriptionContentType},
	}

	for _, f := range required {
		if err := writeHeaderField(w, f.field, f.value); err != nil {
			return err
		}
	}

	for _, f := range optional {
		if f.value == "" {
			continue
		}

		if err := writeHeaderField(w, f.field, f.value); err != nil {
			return err
		}
	}

	repeated := []struct {
		field  string
		values []string
	}{
		{"Classifier", m.Classifiers},
		{"Requires-Dist", m.RequiresDist},
		{"Project-URL", m.ProjectURLs},
		{"Provides-Extra", m.ProvidesExtra},
	}
	for _, f := range repeated {
		for _, value := range f.values {
			if err := writeHeaderField(w, f.field, value); err != nil {
				return err
			}
		}
	}

	if m.Description != "" {
		if _, err := io.WriteString(w, "\n"+m.Description+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// writeHeaderField writes one "Field: value" line, indenting continuation
// lines of multi-line values by the fixed eight-space margin.
func writeHeaderField(w io.Writer, field, value string) error {
	value = strings.Join(strings.Split(value, "\n"), "\n        ")
	_, err := fmt.Fprintf(w, "%s: %s\n", field, value)

	return err
}

// distNameRuns collapses runs of name separator characters.
var distNameRuns = regexp.MustCompile(`[-_.]+`)

// NormalizeDistName normalizes a project name and canonical version into the
// distribution name used for archive filenames and the metadata directory:
// lowercase with separator runs collapsed to a single underscore, joined to
// the version with a dash. Canonical versions never contain dashes, so the
// result splits unambiguously.
func NormalizeDistName(name, version string) string {
	return distNameRuns.ReplaceAllString(strings.ToLower(name), "_") + "-" + version
}

// distInfoName returns the metadata directory name for a project.
func distInfoName(name, version string) string {
	return NormalizeDistName(name, version) + ".dist-info"
}

// parseEntryPoint checks a "package.module:func" entry point reference and
// returns its module and function parts.
func parseEntryPoint(ep string) (string, string, error) {
	mod, fn, ok := strings.Cut(ep, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: no ':' in %q", ErrEntryPoint, ep)
	}

	for _, piece := range strings.Split(fn, ".") {
		if !isIdentifier(piece) {
			return "", "", fmt.Errorf("%w: %q is not an identifier", ErrEntryPoint, piece)
		}
	}
	for _, piece := range strings.Split(mod, ".") {
		if !isIdentifier(piece) {
			return "", "", fmt.Errorf("%w: %q is not a module path", ErrEntryPoint, piece)
		}
	}

	return mod, fn, nil
}

// isIdentifier reports whether s is a plain ASCII identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// writeEntryPoints renders a two-level entry point mapping, sorted on group
// and name so results are reproducible.
func writeEntryPoints(groups map[string]map[string]string, w io.Writer) error {
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		if _, err := fmt.Fprintf(w, "[%s]\n", groupName); err != nil {
			return err
		}

		group := groups[groupName]
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if _, err := fmt.Fprintf(w, "%s=%s\n", name, group[name]); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	return nil
}
