// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"os"
	"strconv"
	"time"
)

// SourceDateEpochEnv is the environment variable carrying a Unix timestamp
// override for all reproducibility timestamps in one build process.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

const (
	// defaultBuildEpoch is 2022-02-02T02:02:02 UTC, used when no override is set.
	defaultBuildEpoch int64 = 1643767322
	// defaultGzipEpoch is 2016-01-01T00:00:00 UTC, stamped into the gzip header
	// when no positive override is set.
	defaultGzipEpoch int64 = 1451606400
)

// minZipTime is the minimum timestamp representable by the zip format.
var minZipTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// BuildStamp is the reproducibility timestamp for one build invocation.
// It is resolved once and threaded explicitly through every archive write.
type BuildStamp struct {
	// Epoch is the resolved Unix timestamp.
	Epoch int64 `json:"epoch"`
	// Override reports whether Epoch came from the environment.
	Override bool `json:"override,omitempty"`
}

// ResolveBuildStamp resolves the build timestamp from SOURCE_DATE_EPOCH,
// falling back to the fixed default epoch.
func ResolveBuildStamp() BuildStamp {
	return buildStampFromValue(os.Getenv(SourceDateEpochEnv))
}

// buildStampFromValue parses one environment value into a build stamp.
// Unparseable values behave like an unset variable.
func buildStampFromValue(value string) BuildStamp {
	if value != "" {
		epoch, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return BuildStamp{Epoch: epoch, Override: true}
		}
	}

	return BuildStamp{Epoch: defaultBuildEpoch}
}

// Time returns the resolved timestamp truncated to whole seconds.
func (s BuildStamp) Time() time.Time {
	return time.Unix(s.Epoch, 0).UTC()
}

// ZipTime returns the resolved timestamp clamped to the zip format minimum.
// Overrides below 1980 clamp rather than underflow.
func (s BuildStamp) ZipTime() time.Time {
	t := s.Time()
	if t.Before(minZipTime) {
		return minZipTime
	}

	return t
}

// GzipTime returns the timestamp for the gzip stream header. Only a positive
// override replaces the fixed historical epoch, so builds without an override
// stay reproducible across machines.
func (s BuildStamp) GzipTime() time.Time {
	if s.Override && s.Epoch > 0 {
		return s.Time()
	}

	return time.Unix(defaultGzipEpoch, 0).UTC()
}
