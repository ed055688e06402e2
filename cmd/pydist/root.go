// SPDX-License-Identifier: MIT
// Copyright (c) 2026 pydist contributors
// Source: github.com/pydist/pydist

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pydist/pydist"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = pydist.Version
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	flagPyproject string
	flagOutputDir string
	flagSdist     bool
	flagWheel     bool
	flagEditable  bool
	flagWheelTag  string
	flagVerbose   bool

	rootCmd = &cobra.Command{
		Use:   "pydist",
		Short: "Build Python distribution archives from pyproject.toml",
		Long: `pydist builds reproducible Python source and binary distribution
archives (.tar.gz and .whl) from a pyproject.toml project description.

With no archive flags both kinds are built, and the binary archive is
assembled from the unpacked source archive so the two always agree.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	}
	rootCmd.Flags().StringVarP(&flagPyproject, "pyproject", "p", pydist.DefaultProjectFile, "project description file to build from")
	rootCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "directory for built archives (default <project>/dist)")
	rootCmd.Flags().BoolVar(&flagSdist, "sdist", false, "build only a source archive")
	rootCmd.Flags().BoolVar(&flagWheel, "wheel", false, "build only a binary archive")
	rootCmd.Flags().BoolVar(&flagEditable, "editable", false, "build an editable binary archive pointing at the source tree")
	rootCmd.Flags().StringVar(&flagWheelTag, "wheel-tag", "", "platform tag for binary archives (default "+pydist.DefaultWheelTag+")")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with signal-aware styling.
// This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	if Commit == "unknown" {
		return Version
	}

	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// bindEnv lets PYDIST_* environment variables back any unset flag.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("PYDIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"pyproject", "output-dir", "wheel-tag"} {
		if err := v.BindPFlag(name, rootCmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}

func run(ctx context.Context) error {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}

	v := viper.New()
	if err := bindEnv(v); err != nil {
		return err
	}

	cfg := pydist.BuildConfig{
		ProjectFile: v.GetString("pyproject"),
		WheelTag:    v.GetString("wheel-tag"),
	}

	outputDir := v.GetString("output-dir")
	if outputDir != "" {
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		outputDir = abs
	}

	if flagEditable {
		name, err := pydist.BuildWheelEditable(ctx, outputDir, cfg)
		if err != nil {
			return err
		}
		log.Info("done", "wheel", name)

		return nil
	}

	buildSdist := flagSdist || !flagWheel
	buildWheel := flagWheel || !flagSdist
	viaSdist := buildSdist && buildWheel

	if outputDir == "" {
		base, err := filepath.Abs(filepath.Dir(cfg.ProjectFile))
		if err != nil {
			return fmt.Errorf("resolve project dir: %w", err)
		}
		outputDir = filepath.Join(base, "dist")
	}

	if buildSdist {
		name, err := pydist.BuildSdist(ctx, outputDir, cfg)
		if err != nil {
			return err
		}
		log.Info("done", "sdist", name)

		if viaSdist {
			unpacked, cleanup, err := unpackSdist(filepath.Join(outputDir, name))
			if err != nil {
				return err
			}
			defer cleanup()

			cfg.ProjectFile = filepath.Join(unpacked, pydist.DefaultProjectFile)
		}
	}

	if buildWheel {
		name, err := pydist.BuildWheel(ctx, outputDir, cfg)
		if err != nil {
			return err
		}
		log.Info("done", "wheel", name)
	}

	return nil
}
