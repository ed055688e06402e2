// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matchPatterns evaluates an ordered list of glob patterns against candidate
// relative paths and returns the set of candidates matching at least one
// pattern. Matching is case-sensitive and supports "**" recursion. A trailing
// separator is stripped before matching, so patterns copied from directory
// listings do not silently match nothing. An invalid pattern fails the whole
// operation and names the pattern and its source field.
func matchPatterns(candidates []string, patterns []string, label string) (map[string]struct{}, error) {
	matched := make(map[string]struct{})

	for _, raw := range patterns {
		pattern := strings.TrimSuffix(raw, "/")
		if pattern == "" {
			continue
		}

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %s pattern %q", ErrSelection, label, raw)
		}

		for _, candidate := range candidates {
			ok, err := doublestar.Match(pattern, candidate)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pattern %q: %w", ErrSelection, label, raw, err)
			}

			if ok {
				matched[candidate] = struct{}{}
			}
		}
	}

	return matched, nil
}
