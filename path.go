// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive destination path to normalized
// slash-separated form. It trims spaces, accepts both "/" and "\",
// removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizeArchiveEntryPath converts a destination path to canonical archive
// form and rejects empty or escaping results.
func normalizeArchiveEntryPath(raw string) (string, error) {
	normalized := NormalizePath(raw)
	if normalized == "" || normalized == ".." || strings.HasPrefix(normalized, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
	}

	return normalized, nil
}

// stripPrefixes removes the first matching prefix string from a relative
// destination path. The path is returned unchanged when no prefix matches.
func stripPrefixes(relPath string, prefixes []string) string {
	for _, prefix := range prefixes {
		if strings.HasPrefix(relPath, prefix) {
			return strings.TrimLeft(strings.Replace(relPath, prefix, "", 1), "/")
		}
	}

	return relPath
}
