// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
)

// reservedDistInfoNames are bookkeeping file names inside the metadata
// directory that a selected metadata file must never shadow.
var reservedDistInfoNames = map[string]struct{}{
	"METADATA":         {},
	"WHEEL":            {},
	"RECORD":           {},
	"entry_points.txt": {},
	"INSTALLER":        {},
	"REQUESTED":        {},
	"direct_url.json":  {},
}

// archiveRecord is one manifest row: destination path, content digest and
// byte size, accumulated while entries are written.
type archiveRecord struct {
	path   string
	digest string
	size   int64
}

// WheelBuilder assembles the binary archive: a deflate-compressed zip with
// the selected project files at the root and a metadata directory holding
// the metadata record, archive marker, entry points and manifest.
type WheelBuilder struct {
	project *Project
	stamp   BuildStamp
	tag     string
}

// NewWheelBuilder returns a binary archive builder for one project. An empty
// tag means the pure platform-independent default; an explicit tag always
// wins.
func NewWheelBuilder(project *Project, stamp BuildStamp, tag string) *WheelBuilder {
	if tag == "" {
		tag = DefaultWheelTag
	}

	return &WheelBuilder{project: project, stamp: stamp, tag: tag}
}

// DistName returns the normalized distribution name for this project.
func (b *WheelBuilder) DistName() string {
	return NormalizeDistName(b.project.Meta.Name, b.project.Meta.Version)
}

// Filename returns the binary archive file name.
func (b *WheelBuilder) Filename() string {
	return b.DistName() + "-" + b.tag + ".whl"
}

// DistInfoDir returns the metadata directory name.
func (b *WheelBuilder) DistInfoDir() string {
	return distInfoName(b.project.Meta.Name, b.project.Meta.Version)
}

// Build runs the pre-build scripts, assembles the binary archive under
// outputDir and returns the archive path. In editable mode a single path
// redirection file replaces the project file selection. No partial archive
// is left at the target path on failure.
func (b *WheelBuilder) Build(ctx context.Context, outputDir string, editable bool) (string, error) {
	scripts, err := selectScripts(b.project, b.project.Selection.WheelScripts, "wheel_scripts")
	if err != nil {
		return "", err
	}

	if err := runBuildScripts(ctx, b.project.File, b.project.BaseDir, scripts); err != nil {
		return "", err
	}

	// Selection runs before the target file exists, so no pattern can
	// accidentally pick up the archive being written.
	var entries []FileEntry
	if !editable {
		entries, err = selectPrimary(b.project)
		if err != nil {
			return "", err
		}
	}

	meta, err := selectMetadataFiles(b.project, wheelMetadataDefaults)
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
		return "", fmt.Errorf("create binary archive: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(target)
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	var records []archiveRecord

	if editable {
		records, err = b.writeEditableRedirect(zw, records)
	} else {
		records, err = b.writeProjectFiles(ctx, zw, entries, records)
	}
	if err != nil {
		return "", err
	}

	records, err = b.writeDistInfo(zw, meta, records)
	if err != nil {
		return "", err
	}

	if err := b.writeRecordManifest(zw, records); err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip stream: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync binary archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close binary archive: %w", err)
	}
	committed = true

	log.Info("built binary archive", "path", target, "entries", len(records)+1)

	return target, nil
}

// writeProjectFiles copies the primary selection into the archive root,
// stripping configured destination prefixes. Duplicate destinations after
// stripping are dropped, first occurrence wins.
func (b *WheelBuilder) writeProjectFiles(ctx context.Context, zw *zip.Writer, entries []FileEntry, records []archiveRecord) ([]archiveRecord, error) {
	prefixes := b.project.Selection.WheelPathPrefixesToStrip
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dest, err := normalizeArchiveEntryPath(stripPrefixes(entry.Dest, prefixes))
		if err != nil {
			return nil, err
		}

		if _, dup := seen[dest]; dup {
			continue
		}
		seen[dest] = struct{}{}

		records, err = b.copyFile(zw, entry.Source, dest, records)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// writeEditableRedirect synthesizes the path redirection file used by
// development-mode installs: one absolute path per configured editable root,
// defaulting to the project base directory itself.
func (b *WheelBuilder) writeEditableRedirect(zw *zip.Writer, records []archiveRecord) ([]archiveRecord, error) {
	editablePaths := b.project.Selection.EditablePaths
	if len(editablePaths) == 0 {
		editablePaths = []string{"."}
	}

	var buf bytes.Buffer
	for _, rel := range editablePaths {
		abs, err := filepath.Abs(filepath.Join(b.project.BaseDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("resolve editable path %s: %w", rel, err)
		}

		buf.WriteString(abs)
		buf.WriteByte('\n')
	}

	return b.writeSynthesized(zw, b.project.Meta.Name+".pth", buf.Bytes(), records)
}

// writeDistInfo writes the metadata directory: entry points when any exist,
// the archive marker file, the rendered metadata record, and every selected
// metadata file flattened to the directory root. A duplicate or reserved
// metadata file name fails the build.
func (b *WheelBuilder) writeDistInfo(zw *zip.Writer, meta []FileEntry, records []archiveRecord) ([]archiveRecord, error) {
	distInfo := b.DistInfoDir()

	if len(b.project.EntryPoints) > 0 {
		var buf bytes.Buffer
		if err := writeEntryPoints(b.project.EntryPoints, &buf); err != nil {
			return nil, fmt.Errorf("render entry points: %w", err)
		}

		var err error
		records, err = b.writeSynthesized(zw, distInfo+"/entry_points.txt", buf.Bytes(), records)
		if err != nil {
			return nil, err
		}
	}

	var err error
	records, err = b.writeSynthesized(zw, distInfo+"/WHEEL", b.wheelFileBytes(), records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := b.project.Meta.Write(&buf); err != nil {
		return nil, fmt.Errorf("render metadata record: %w", err)
	}
	records, err = b.writeSynthesized(zw, distInfo+"/METADATA", buf.Bytes(), records)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(meta))
	for _, entry := range meta {
		name := path.Base(entry.Dest)
		if _, reserved := reservedDistInfoNames[name]; reserved {
			return nil, fmt.Errorf("%w: metadata file %q shadows a reserved name", ErrCollision, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: two metadata files resolve to %q", ErrCollision, name)
		}
		seen[name] = struct{}{}

		records, err = b.copyFile(zw, entry.Source, distInfo+"/"+name, records)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// wheelFileBytes renders the fixed-format archive marker file. The archive
// is declared platform-independent exactly when the default pure tag was
// requested.
func (b *WheelBuilder) wheelFileBytes() []byte {
	isPureLib := "false"
	if b.tag == DefaultWheelTag {
		isPureLib = "true"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Wheel-Version: 1.0\n")
	fmt.Fprintf(&buf, "Generator: pydist %s\n", Version)
	fmt.Fprintf(&buf, "Root-Is-Purelib: %s\n", isPureLib)
	fmt.Fprintf(&buf, "Tag: %s\n", b.tag)

	return buf.Bytes()
}

// writeRecordManifest writes the manifest as the final archive entry. Every
// prior entry appears exactly once with its digest and size; the manifest
// lists itself last with empty digest and size fields.
func (b *WheelBuilder) writeRecordManifest(zw *zip.Writer, records []archiveRecord) error {
	var buf bytes.Buffer
	for _, record := range records {
		fmt.Fprintf(&buf, "%s,sha256=%s,%d\n", record.path, record.digest, record.size)
	}
	fmt.Fprintf(&buf, "%s/RECORD,,\n", b.DistInfoDir())

	w, err := zw.CreateHeader(b.synthesizedHeader(b.DistInfoDir() + "/RECORD"))
	if err != nil {
		return fmt.Errorf("create RECORD entry: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write RECORD: %w", err)
	}

	return nil
}

// copyFile streams one source file into the archive, hashing as it copies,
// and appends its manifest row. Timestamps come from the resolved build
// stamp and permissions are normalized before being stored in the entry's
// platform metadata field.
func (b *WheelBuilder) copyFile(zw *zip.Writer, source, dest string, records []archiveRecord) ([]archiveRecord, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", source, err)
	}

	hdr := &zip.FileHeader{
		Name:     dest,
		Method:   zip.Deflate,
		Modified: b.stamp.ZipTime(),
	}
	hdr.SetMode(normalizeFileMode(info.Mode()))

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("create zip entry %s: %w", dest, err)
	}

	src, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}

	hash := sha256.New()
	written, copyErr := io.CopyBuffer(io.MultiWriter(w, hash), src, make([]byte, copyBufferSize))
	closeErr := src.Close()
	if copyErr != nil {
		return nil, fmt.Errorf("stream %s: %w", dest, copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close %s: %w", source, closeErr)
	}
	if written != info.Size() {
		return nil, fmt.Errorf("stream %s: short write (%d/%d)", dest, written, info.Size())
	}

	return append(records, archiveRecord{
		path:   dest,
		digest: recordDigest(hash.Sum(nil)),
		size:   written,
	}), nil
}

// writeSynthesized writes one generated entry and appends its manifest row.
func (b *WheelBuilder) writeSynthesized(zw *zip.Writer, dest string, content []byte, records []archiveRecord) ([]archiveRecord, error) {
	w, err := zw.CreateHeader(b.synthesizedHeader(dest))
	if err != nil {
		return nil, fmt.Errorf("create zip entry %s: %w", dest, err)
	}

	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}

	sum := sha256.Sum256(content)

	return append(records, archiveRecord{
		path:   dest,
		digest: recordDigest(sum[:]),
		size:   int64(len(content)),
	}), nil
}

// synthesizedHeader returns the normalized header for a generated entry.
func (b *WheelBuilder) synthesizedHeader(dest string) *zip.FileHeader {
	hdr := &zip.FileHeader{
		Name:     dest,
		Method:   zip.Deflate,
		Modified: b.stamp.ZipTime(),
	}
	hdr.SetMode(0o644)

	return hdr
}

// recordDigest encodes a digest the way the manifest format requires:
// URL-safe base64 without padding.
func recordDigest(sum []byte) string {
	return base64.RawURLEncoding.EncodeToString(sum)
}
