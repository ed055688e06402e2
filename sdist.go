// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
)

// SdistBuilder assembles the source archive: a gzip-compressed PAX tarball
// with every entry rooted under the distribution name.
type SdistBuilder struct {
	project *Project
	stamp   BuildStamp
}

// NewSdistBuilder returns a source archive builder for one project.
func NewSdistBuilder(project *Project, stamp BuildStamp) *SdistBuilder {
	return &SdistBuilder{project: project, stamp: stamp}
}

// DistName returns the normalized distribution name for this project.
func (b *SdistBuilder) DistName() string {
	return NormalizeDistName(b.project.Meta.Name, b.project.Meta.Version)
}

// Filename returns the source archive file name.
func (b *SdistBuilder) Filename() string {
	return b.DistName() + ".tar.gz"
}

// selectAll computes the full source archive file set: primary files, extra
// source files, metadata files and both script sets, in that fixed order,
// deduplicated by destination path with the first occurrence winning. The
// project description file is always included at the root under its standard
// name, even when the patterns exclude it.
func (b *SdistBuilder) selectAll() ([]FileEntry, error) {
	primary, err := selectPrimary(b.project)
	if err != nil {
		return nil, err
	}

	extra, err := selectExtraSource(b.project)
	if err != nil {
		return nil, err
	}

	meta, err := selectMetadataFiles(b.project, sdistMetadataDefaults)
	if err != nil {
		return nil, err
	}

	sdistScripts, err := selectScripts(b.project, b.project.Selection.SdistScripts, "sdist_scripts")
	if err != nil {
		return nil, err
	}

	wheelScripts, err := selectScripts(b.project, b.project.Selection.WheelScripts, "wheel_scripts")
	if err != nil {
		return nil, err
	}

	ordered := make([]FileEntry, 0, len(primary)+len(extra)+len(meta)+len(sdistScripts)+len(wheelScripts)+1)
	ordered = append(ordered, primary...)
	ordered = append(ordered, extra...)
	ordered = append(ordered, meta...)
	ordered = append(ordered, sdistScripts...)
	ordered = append(ordered, wheelScripts...)
	ordered = append(ordered, FileEntry{Source: b.project.File, Dest: DefaultProjectFile})

	seen := make(map[string]struct{}, len(ordered))
	entries := make([]FileEntry, 0, len(ordered))
	for _, entry := range ordered {
		dest, err := normalizeArchiveEntryPath(entry.Dest)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[dest]; dup {
			continue
		}

		seen[dest] = struct{}{}
		entries = append(entries, FileEntry{Source: entry.Source, Dest: dest})
	}

	return entries, nil
}

// Build runs the pre-build scripts, assembles the source archive under
// outputDir and returns the archive path. No partial archive is left at the
// target path on failure.
func (b *SdistBuilder) Build(ctx context.Context, outputDir string) (string, error) {
	scripts, err := selectScripts(b.project, b.project.Selection.SdistScripts, "sdist_scripts")
	if err != nil {
		return "", err
	}

	if err := runBuildScripts(ctx, b.project.File, b.project.BaseDir, scripts); err != nil {
		return "", err
	}

	entries, err := b.selectAll()
	if err != nil {
		return "", err
	}

	if outputDir == "" {
		outputDir = filepath.Join(b.project.BaseDir, "dist")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	target := filepath.Join(outputDir, b.Filename())
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create source archive: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(target)
		}
	}()

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("open gzip stream: %w", err)
	}
	gz.Name = strings.TrimSuffix(b.Filename(), ".gz")
	gz.ModTime = b.stamp.GzipTime()

	tw := tar.NewWriter(gz)
	distName := b.DistName()

	copyBuf := make([]byte, copyBufferSize)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := b.writeFileEntry(tw, entry, distName, copyBuf); err != nil {
			return "", err
		}
	}

	if err := b.writeMetadataRecord(tw, distName); err != nil {
		return "", err
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("close tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("close gzip stream: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync source archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close source archive: %w", err)
	}
	committed = true

	log.Info("built source archive", "path", target, "entries", len(entries)+1)

	return target, nil
}

// writeFileEntry writes one selected file as a normalized tar entry: numeric
// ids zeroed, names emptied, permissions forced to 644/755, and modification
// time replaced by the override timestamp when one is supplied.
func (b *SdistBuilder) writeFileEntry(tw *tar.Writer, entry FileEntry, distName string, copyBuf []byte) error {
	info, err := os.Stat(entry.Source)
	if err != nil {
		return fmt.Errorf("stat %s: %w", entry.Source, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header %s: %w", entry.Dest, err)
	}

	hdr.Name = distName + "/" + entry.Dest
	hdr.Format = tar.FormatPAX
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.Mode = normalizePermBits(hdr.Mode)
	hdr.AccessTime, hdr.ChangeTime = time.Time{}, time.Time{}
	if b.stamp.Override {
		hdr.ModTime = b.stamp.Time()
	} else {
		hdr.ModTime = info.ModTime().Truncate(time.Second)
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header %s: %w", entry.Dest, err)
	}

	src, err := os.Open(entry.Source)
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Source, err)
	}

	written, copyErr := io.CopyBuffer(tw, src, copyBuf)
	closeErr := src.Close()
	if copyErr != nil {
		return fmt.Errorf("stream %s: %w", entry.Dest, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", entry.Source, closeErr)
	}
	if written != info.Size() {
		return fmt.Errorf("stream %s: short write (%d/%d)", entry.Dest, written, info.Size())
	}

	return nil
}

// writeMetadataRecord renders the metadata record and writes it as the final
// tar entry.
func (b *SdistBuilder) writeMetadataRecord(tw *tar.Writer, distName string) error {
	var buf bytes.Buffer
	if err := b.project.Meta.Write(&buf); err != nil {
		return fmt.Errorf("render metadata record: %w", err)
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     distName + "/PKG-INFO",
		Size:     int64(buf.Len()),
		Mode:     0o644,
		ModTime:  b.stamp.Time(),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write PKG-INFO header: %w", err)
	}

	if _, err := tw.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write PKG-INFO: %w", err)
	}

	return nil
}
