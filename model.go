// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

// Version is the backend version written into generated archive metadata.
const Version = "0.1.0"

// Default frontend values.
const (
	// DefaultProjectFile is the standard project description file name.
	DefaultProjectFile = "pyproject.toml"
	// DefaultWheelTag marks a pure, platform-independent binary archive.
	DefaultWheelTag = "py3-none-any"
)

// copyBufferSize is the fixed chunk size used by streaming payload copies.
const copyBufferSize = 64 * 1024

// FileEntry pairs an absolute source location with its archive destination.
// Destination paths always use forward slashes regardless of host separator.
type FileEntry struct {
	// Source is the absolute filesystem path of the file to copy.
	Source string `json:"source"`
	// Dest is the archive-relative destination path.
	Dest string `json:"dest"`
}

// Selection holds the file-selection pattern lists from [tool.pydist].
// All patterns are relative glob strings validated by the config reader.
type Selection struct {
	// Includes selects the primary file set used by both archive kinds.
	Includes []string `json:"includes"`
	// Excludes removes files from the primary set.
	Excludes []string `json:"excludes,omitempty"`
	// MetadataFiles selects license/readme style files. Empty means per-kind defaults.
	MetadataFiles []string `json:"metadata_files,omitempty"`
	// WheelPathPrefixesToStrip lists destination prefixes removed in the binary archive.
	WheelPathPrefixesToStrip []string `json:"wheel_path_prefixes_to_strip,omitempty"`
	// EditablePaths lists project-relative roots written to the editable .pth file.
	EditablePaths []string `json:"editable_paths,omitempty"`
	// SdistExtraIncludes selects additional source-archive-only files.
	SdistExtraIncludes []string `json:"sdist_extra_includes,omitempty"`
	// SdistExtraExcludes removes files from the extra source set.
	SdistExtraExcludes []string `json:"sdist_extra_excludes,omitempty"`
	// SdistScripts selects pre-build scripts run before a source archive build.
	SdistScripts []string `json:"sdist_scripts,omitempty"`
	// WheelScripts selects pre-build scripts run before a binary archive build.
	WheelScripts []string `json:"wheel_scripts,omitempty"`
}

// Project is the normalized in-memory form of one project description.
// Name and version are always present and the version is canonical.
type Project struct {
	// Meta holds the core metadata rendered into PKG-INFO/METADATA.
	Meta Metadata `json:"meta"`
	// EntryPoints maps group name to script name to target reference.
	EntryPoints map[string]map[string]string `json:"entry_points,omitempty"`
	// Selection holds the file-selection pattern lists.
	Selection Selection `json:"selection"`
	// File is the absolute path of the project description file.
	File string `json:"file"`
	// BaseDir is the directory containing the project description file.
	BaseDir string `json:"base_dir"`
}

// BuildConfig carries the recognized frontend options for one build call.
type BuildConfig struct {
	// ProjectFile is the project description path. Empty means "pyproject.toml"
	// in the current directory.
	ProjectFile string `json:"project_file,omitempty"`
	// WheelTag is the desired platform tag for binary archives.
	// Empty means DefaultWheelTag. An explicit tag always wins over defaults.
	WheelTag string `json:"wheel_tag,omitempty"`
}

// applyDefaults fills zero-valued build config fields with defaults.
func (c *BuildConfig) applyDefaults() {
	if c.ProjectFile == "" {
		c.ProjectFile = DefaultProjectFile
	}

	if c.WheelTag == "" {
		c.WheelTag = DefaultWheelTag
	}
}
