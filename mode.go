// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import "io/fs"

// normalizePermBits normalizes raw Unix permission bits to 644 or 755.
//
// Popular VCSs only track whether a file is executable, while the exact bits
// vary with the build machine's umask. Forcing owner read/write and group and
// other read, clearing group/other write and the setuid/setgid/sticky bits,
// keeps executability and nothing else.
func normalizePermBits(mode int64) int64 {
	normalized := (mode | 0o644) &^ 0o7133
	if mode&0o100 != 0 {
		normalized |= 0o111
	}

	return normalized
}

// normalizeFileMode applies normalizePermBits to an fs.FileMode, preserving
// the file type bits.
func normalizeFileMode(mode fs.FileMode) fs.FileMode {
	typeBits := mode & fs.ModeType
	perm := int64(mode.Perm())

	return typeBits | fs.FileMode(normalizePermBits(perm))
}
