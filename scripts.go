// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package pydist

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runBuildScripts executes the selected pre-build scripts in order, before
// any archive output exists. Scripts are POSIX shell scripts run in-process
// with the project base directory as working directory and the absolute
// project description path as $1. Scripts may create files that later
// selection passes pick up. Any failure aborts the build.
func runBuildScripts(ctx context.Context, projectFile, baseDir string, scripts []FileEntry) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, script := range scripts {
		if err := runBuildScript(ctx, projectFile, baseDir, script); err != nil {
			return err
		}
	}

	return nil
}

// runBuildScript parses and runs one build script.
func runBuildScript(ctx context.Context, projectFile, baseDir string, script FileEntry) error {
	log.Info("running build script", "script", script.Dest)

	f, err := os.Open(script.Source)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrScript, script.Dest, err)
	}

	prog, parseErr := syntax.NewParser().Parse(f, script.Dest)
	closeErr := f.Close()
	if parseErr != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrScript, script.Dest, parseErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %w", ErrScript, script.Dest, closeErr)
	}

	runner, err := interp.New(
		interp.Dir(baseDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("--", projectFile),
	)
	if err != nil {
		return fmt.Errorf("%w: create interpreter: %w", ErrScript, err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return fmt.Errorf("%w: %s exited with status %d", ErrScript, script.Dest, uint8(status))
		}

		return fmt.Errorf("%w: %s: %w", ErrScript, script.Dest, err)
	}

	return nil
}
