// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// GetBuildRequires reports extra build requirements beyond the backend
// itself. This backend never needs any.
func GetBuildRequires(cfg BuildConfig) []string {
	_ = cfg

	return []string{}
}

// PrepareMetadata renders the metadata directory for a prospective binary
// archive into targetDir without building the archive, and returns the
// directory's base name.
func PrepareMetadata(targetDir string, cfg BuildConfig) (string, error) {
	cfg.applyDefaults()

	project, err := ReadProjectFile(cfg.ProjectFile)
	if err != nil {
		return "", err
	}

	builder := NewWheelBuilder(project, BuildStamp{}, cfg.WheelTag)
	distInfo := builder.DistInfoDir()

	dir := filepath.Join(targetDir, distInfo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata dir: %w", err)
	}

	if len(project.EntryPoints) > 0 {
		f, err := os.Create(filepath.Join(dir, "entry_points.txt"))
		if err != nil {
			return "", fmt.Errorf("create entry_points.txt: %w", err)
		}

		writeErr := writeEntryPoints(project.EntryPoints, f)
		closeErr := f.Close()
		if writeErr != nil {
			return "", fmt.Errorf("render entry points: %w", writeErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("close entry_points.txt: %w", closeErr)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "WHEEL"), builder.wheelFileBytes(), 0o644); err != nil {
		return "", fmt.Errorf("write WHEEL: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "METADATA"))
	if err != nil {
		return "", fmt.Errorf("create METADATA: %w", err)
	}

	writeErr := project.Meta.Write(f)
	closeErr := f.Close()
	if writeErr != nil {
		return "", fmt.Errorf("render metadata record: %w", writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close METADATA: %w", closeErr)
	}

	return distInfo, nil
}

// BuildSdist builds a source archive under outputDir and returns the
// archive's base file name.
func BuildSdist(ctx context.Context, outputDir string, cfg BuildConfig) (string, error) {
	cfg.applyDefaults()

	project, err := ReadProjectFile(cfg.ProjectFile)
	if err != nil {
		return "", err
	}

	builder := NewSdistBuilder(project, ResolveBuildStamp())

	target, err := builder.Build(ctx, outputDir)
	if err != nil {
		return "", err
	}

	return filepath.Base(target), nil
}

// BuildWheel builds a binary archive under outputDir and returns the
// archive's base file name.
func BuildWheel(ctx context.Context, outputDir string, cfg BuildConfig) (string, error) {
	return buildWheel(ctx, outputDir, cfg, false)
}

// BuildWheelEditable builds a binary archive whose payload is a single path
// redirection file pointing at the live source tree, and returns the
// archive's base file name.
func BuildWheelEditable(ctx context.Context, outputDir string, cfg BuildConfig) (string, error) {
	return buildWheel(ctx, outputDir, cfg, true)
}

func buildWheel(ctx context.Context, outputDir string, cfg BuildConfig, editable bool) (string, error) {
	cfg.applyDefaults()

	project, err := ReadProjectFile(cfg.ProjectFile)
	if err != nil {
		return "", err
	}

	builder := NewWheelBuilder(project, ResolveBuildStamp(), cfg.WheelTag)

	target, err := builder.Build(ctx, outputDir, editable)
	if err != nil {
		return "", err
	}

	return filepath.Base(target), nil
}
