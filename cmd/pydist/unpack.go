// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package main

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// unpackSdist extracts a source archive into a fresh temporary directory and
// returns the unpacked project root together with a cleanup func. Source
// archives hold exactly one top-level directory; entries escaping it are
// rejected.
func unpackSdist(archivePath string) (string, func(), error) {
	tmp, err := os.MkdirTemp("", "pydist-sdist-*")
	if err != nil {
		return "", nil, fmt.Errorf("create unpack dir: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(tmp) }

	root, err := extractArchive(archivePath, tmp)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	return filepath.Join(tmp, root), cleanup, nil
}

func extractArchive(archivePath, dest string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open source archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("read gzip stream: %w", err)
	}
	defer gz.Close()

	root := ""
	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar stream: %w", err)
		}

		name, err := safeEntryName(hdr.Name)
		if err != nil {
			return "", err
		}

		top, _, _ := strings.Cut(name, "/")
		if root == "" {
			root = top
		} else if top != root {
			return "", fmt.Errorf("source archive has multiple roots: %s and %s", root, top)
		}

		target := filepath.Join(dest, filepath.FromSlash(name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("create dir %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := writeExtracted(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return "", fmt.Errorf("extract %s: %w", name, err)
			}
		default:
			return "", fmt.Errorf("unsupported entry type %d for %s", hdr.Typeflag, name)
		}
	}

	if root == "" {
		return "", errors.New("source archive is empty")
	}

	return root, nil
}

// safeEntryName rejects absolute and parent-escaping archive paths.
func safeEntryName(name string) (string, error) {
	clean := path.Clean(strings.TrimSuffix(name, "/"))
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("unsafe archive path: %s", name)
	}

	return clean, nil
}

func writeExtracted(r io.Reader, target string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}

	return closeErr
}
