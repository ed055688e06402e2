// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import "errors"

// Sentinel errors for build operations. Use errors.Is in callers.
var (
	// ErrConfig means the project description is malformed or incomplete.
	ErrConfig = errors.New("invalid project configuration")
	// ErrVersion means the project version is missing or not a valid version string.
	ErrVersion = errors.New("missing or invalid version")
	// ErrSelection means one of the file selection glob patterns is invalid.
	ErrSelection = errors.New("invalid selection pattern")
	// ErrCollision means two metadata files resolve to the same archive name,
	// or a metadata file shadows a reserved bookkeeping name.
	ErrCollision = errors.New("metadata file name collision")
	// ErrScript means a pre-build script failed.
	ErrScript = errors.New("build script failed")
	// ErrEntryPoint means an entry point reference is not in module:function form.
	ErrEntryPoint = errors.New("invalid entry point")
	// ErrInvalidEntryPath means an archive destination path is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrNilWriter means the output writer is nil.
	ErrNilWriter = errors.New("writer is nil")
)
