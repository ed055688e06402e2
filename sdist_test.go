// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// readTarEntries returns the archive's entries keyed by name.
func readTarEntries(t *testing.T, archivePath string) (map[string][]byte, map[string]*tar.Header) {
	t.Helper()

	f, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer func() { _ = gz.Close() }()

	contents := map[string][]byte{}
	headers := map[string]*tar.Header{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("tar next: %v", err)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("tar read %s: %v", hdr.Name, err)
		}

		contents[hdr.Name] = data
		headers[hdr.Name] = hdr
	}

	return contents, headers
}

func TestSdistBuild_BasicScenario(t *testing.T) {
	t.Parallel()

	dir := basicTree(t)
	project := loadTestProject(t, dir)
	builder := NewSdistBuilder(project, BuildStamp{Epoch: defaultBuildEpoch})

	if got := builder.Filename(); got != "package1-0.0.1.tar.gz" {
		t.Fatalf("Filename()=%q, want package1-0.0.1.tar.gz", got)
	}

	target, err := builder.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if filepath.Dir(target) != filepath.Join(dir, "dist") {
		t.Fatalf("target=%q, want under %s/dist", target, dir)
	}

	contents, headers := readTarEntries(t, target)

	for name := range contents {
		if !strings.HasPrefix(name, "package1-0.0.1/") {
			t.Fatalf("entry %q not rooted under package1-0.0.1/", name)
		}
	}

	for _, name := range []string{
		"package1-0.0.1/module1.py",
		"package1-0.0.1/package1/__init__.py",
		"package1-0.0.1/package1/core.py",
		"package1-0.0.1/package1/data/one.csv",
		"package1-0.0.1/README.rst",
		"package1-0.0.1/LICENSE",
		"package1-0.0.1/pyproject.toml",
		"package1-0.0.1/PKG-INFO",
	} {
		if _, ok := contents[name]; !ok {
			t.Fatalf("archive missing %q", name)
		}
	}

	pkgInfo := string(contents["package1-0.0.1/PKG-INFO"])
	if !strings.HasPrefix(pkgInfo, "Metadata-Version: 2.1\nName: package1\nVersion: 0.0.1\n") {
		t.Fatalf("PKG-INFO=%q, want metadata header", pkgInfo)
	}

	for name, hdr := range headers {
		if hdr.Uid != 0 || hdr.Gid != 0 || hdr.Uname != "" || hdr.Gname != "" {
			t.Fatalf("entry %q has non-normalized ownership: %+v", name, hdr)
		}

		if hdr.Mode != 0o644 && hdr.Mode != 0o755 {
			t.Fatalf("entry %q mode=%o, want 0644 or 0755", name, hdr.Mode)
		}
	}
}

func TestSdistBuild_ExecutableBitKept(t *testing.T) {
	t.Parallel()

	dir := basicTree(t)
	writeExecutable(t, dir, "package1/core.py")
	project := loadTestProject(t, dir)
	builder := NewSdistBuilder(project, BuildStamp{Epoch: defaultBuildEpoch})

	target, err := builder.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, headers := readTarEntries(t, target)
	if headers["package1-0.0.1/package1/core.py"].Mode != 0o755 {
		t.Fatalf("core.py mode=%o, want 0755", headers["package1-0.0.1/package1/core.py"].Mode)
	}

	if headers["package1-0.0.1/module1.py"].Mode != 0o644 {
		t.Fatalf("module1.py mode=%o, want 0644", headers["package1-0.0.1/module1.py"].Mode)
	}
}

func TestSdistBuild_OverrideStampsEntries(t *testing.T) {
	t.Parallel()

	dir := basicTree(t)
	project := loadTestProject(t, dir)
	stamp := BuildStamp{Epoch: 1600000000, Override: true}
	builder := NewSdistBuilder(project, stamp)

	target, err := builder.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, headers := readTarEntries(t, target)
	for name, hdr := range headers {
		if !hdr.ModTime.Equal(stamp.Time()) {
			t.Fatalf("entry %q ModTime=%v, want %v", name, hdr.ModTime, stamp.Time())
		}
	}
}

func TestSdistBuild_ByteIdenticalRebuild(t *testing.T) {
	t.Parallel()

	dir := basicTree(t)
	project := loadTestProject(t, dir)
	stamp := BuildStamp{Epoch: 1600000000, Override: true}

	firstDir := filepath.Join(t.TempDir(), "one")
	secondDir := filepath.Join(t.TempDir(), "two")

	first, err := NewSdistBuilder(project, stamp).Build(context.Background(), firstDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	second, err := NewSdistBuilder(project, stamp).Build(context.Background(), secondDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	firstData, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first archive: %v", err)
	}

	secondData, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second archive: %v", err)
	}

	if !bytes.Equal(firstData, secondData) {
		t.Fatalf("rebuild differs: %d vs %d bytes", len(firstData), len(secondData))
	}
}

func TestSdistBuild_RunsBuildScripts(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"pyproject.toml": `[project]
name = "scripted"
version = "1.0"
description = "d"

[tool.pydist]
includes = ["scripted/**"]
sdist_scripts = ["build.sh"]
`,
		"build.sh": "mkdir -p scripted\necho 'VALUE = 1' > scripted/gen.py\n",
	})

	project := loadTestProject(t, dir)
	builder := NewSdistBuilder(project, BuildStamp{Epoch: defaultBuildEpoch})

	target, err := builder.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	contents, _ := readTarEntries(t, target)
	if _, ok := contents["scripted-1.0/scripted/gen.py"]; !ok {
		t.Fatalf("archive missing script-generated file, got %v", keysOf(contents))
	}

	if _, ok := contents["scripted-1.0/build.sh"]; !ok {
		t.Fatalf("archive missing the build script itself, got %v", keysOf(contents))
	}
}

func TestSdistBuild_FailedScriptLeavesNoArchive(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"pyproject.toml": `[project]
name = "failing"
version = "1.0"
description = "d"

[tool.pydist]
includes = ["failing.py"]
sdist_scripts = ["fail.sh"]
`,
		"failing.py": "",
		"fail.sh":    "exit 1\n",
	})

	project := loadTestProject(t, dir)
	builder := NewSdistBuilder(project, BuildStamp{Epoch: defaultBuildEpoch})

	_, err := builder.Build(context.Background(), "")
	if !errors.Is(err, ErrScript) {
		t.Fatalf("Build err=%v, want ErrScript", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "dist", "failing-1.0.tar.gz")); !os.IsNotExist(statErr) {
		t.Fatalf("partial archive left behind: stat err=%v", statErr)
	}
}

func TestSdistSelectAll_DedupFirstWins(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"pyproject.toml": `[project]
name = "dedup"
version = "1.0"
description = "d"

[tool.pydist]
includes = ["dedup.py", "README*"]
sdist_extra_includes = ["dedup.py"]
`,
		"dedup.py":   "",
		"README.rst": "",
	})

	project := loadTestProject(t, dir)
	builder := NewSdistBuilder(project, BuildStamp{Epoch: defaultBuildEpoch})

	entries, err := builder.selectAll()
	if err != nil {
		t.Fatalf("selectAll: %v", err)
	}

	count := map[string]int{}
	for _, entry := range entries {
		count[entry.Dest]++
	}

	for dest, n := range count {
		if n != 1 {
			t.Fatalf("dest %q selected %d times, want 1", dest, n)
		}
	}

	if count[DefaultProjectFile] != 1 {
		t.Fatalf("pyproject.toml not forced into selection: %v", count)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return keys
}
