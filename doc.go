// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

/*
Package pydist builds Python source and binary distribution archives from a
pyproject.toml project description. It is a complete build backend: it reads
PEP 621 metadata and the [tool.pydist] file-selection tables, resolves a
deterministic file list, and assembles reproducible .tar.gz and .whl
archives.

Reproducibility rules (summary):
  - inputs are enumerated and written in sorted path order;
  - entry timestamps come from SOURCE_DATE_EPOCH when set, else a fixed epoch;
  - zip timestamps never precede 1980-01-01, tar ownership is zeroed;
  - permissions are normalized to 0644, plus 0755 for owner-executable files;
  - two builds of the same tree with the same stamp are byte-identical.

# Building archives

Build both archive kinds for the project in the current directory:

	cfg := pydist.BuildConfig{ProjectFile: "pyproject.toml"}
	name, err := pydist.BuildSdist(ctx, "dist", cfg)
	if err != nil {
	    return err
	}
	name, err = pydist.BuildWheel(ctx, "dist", cfg)
	if err != nil {
	    return err
	}
	_ = name

For a development install, build a binary archive whose payload is a single
path redirection file pointing at the live source tree:

	name, err := pydist.BuildWheelEditable(ctx, "dist", cfg)

To render only the metadata directory for a prospective binary archive:

	distInfo, err := pydist.PrepareMetadata("build", cfg)

# Lower-level use

Read and validate a project description, then drive a builder directly:

	project, err := pydist.ReadProjectFile("pyproject.toml")
	if err != nil {
	    return err
	}
	builder := pydist.NewSdistBuilder(project, pydist.ResolveBuildStamp())
	path, err := builder.Build(ctx, "dist")

Binary archive builders additionally take a platform tag; an empty tag means
the pure, platform-independent default:

	wb := pydist.NewWheelBuilder(project, pydist.ResolveBuildStamp(), "")
	path, err = wb.Build(ctx, "dist", false)

All configuration errors wrap ErrConfig, invalid versions wrap ErrVersion,
bad selection patterns wrap ErrSelection, conflicting archive entries wrap
ErrCollision, and failed pre-build scripts wrap ErrScript. Test with
errors.Is.
*/
package pydist
