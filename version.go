// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern is the permissive version grammar: optional epoch, dotted
// release, optional pre/post/dev segments with loose separators and
// spellings, optional local segment.
var versionPattern = regexp.MustCompile(`(?i)^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[-_.]?(alpha|beta|preview|pre|a|b|c|rc)[-_.]?(\d+)?)?` + // pre-release
	`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d+)?))?` + // post release
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` + // dev release
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`) // local segment

// preSpellings maps loose pre-release markers to canonical form.
var preSpellings = map[string]string{
	"a":       "a",
	"alpha":   "a",
	"b":       "b",
	"beta":    "b",
	"c":       "rc",
	"rc":      "rc",
	"pre":     "rc",
	"preview": "rc",
}

// CheckVersion validates a version string and returns its canonical form.
// A missing version and an unparseable version are distinct failures, both
// wrapping ErrVersion.
func CheckVersion(version string) (string, error) {
	if strings.TrimSpace(version) == "" {
		return "", fmt.Errorf("%w: cannot package a project without a version string", ErrVersion)
	}

	canonical, err := normalizeVersion(version)
	if err != nil {
		return "", err
	}

	return canonical, nil
}

// normalizeVersion canonicalizes a version string: epoch and release numbers
// lose leading zeros, pre-release spellings collapse to a/b/rc with implicit
// zero numbers, post and dev releases become ".postN"/".devN", and the local
// segment becomes dot-separated with numeric parts de-zeroed.
func normalizeVersion(version string) (string, error) {
	groups := versionPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(version)))
	if groups == nil {
		return "", fmt.Errorf("%w: %q is not a valid version", ErrVersion, version)
	}

	var b strings.Builder

	epoch, release := groups[1], groups[2]
	preTag, preNum := groups[3], groups[4]
	postBare, postTag, postNum := groups[5], groups[6], groups[7]
	devTag, devNum := groups[8], groups[9]
	local := groups[10]

	if epoch != "" {
		b.WriteString(trimNumber(epoch))
		b.WriteByte('!')
	}

	parts := strings.Split(release, ".")
	for i, part := range parts {
		parts[i] = trimNumber(part)
	}
	b.WriteString(strings.Join(parts, "."))

	if preTag != "" {
		b.WriteString(preSpellings[preTag])
		b.WriteString(trimNumber(preNum))
	}

	if postBare != "" {
		b.WriteString(".post")
		b.WriteString(trimNumber(postBare))
	} else if postTag != "" {
		b.WriteString(".post")
		b.WriteString(trimNumber(postNum))
	}

	if devTag != "" {
		b.WriteString(".dev")
		b.WriteString(trimNumber(devNum))
	}

	if local != "" {
		b.WriteByte('+')
		b.WriteString(normalizeLocal(local))
	}

	return b.String(), nil
}

// trimNumber strips leading zeros from a decimal string; empty means zero.
func trimNumber(number string) string {
	if number == "" {
		return "0"
	}

	value, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return number
	}

	return strconv.FormatUint(value, 10)
}

// localSeparators splits a local version segment into its parts.
var localSeparators = regexp.MustCompile(`[-_.]`)

// normalizeLocal rewrites a local version segment to dot-separated parts
// with numeric parts de-zeroed.
func normalizeLocal(local string) string {
	parts := localSeparators.Split(local, -1)
	for i, part := range parts {
		parts[i] = trimNumber(part)
	}

	return strings.Join(parts, ".")
}
