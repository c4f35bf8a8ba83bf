// Package main is the entry point for the gocleanup CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/gocleanup/internal/cli"
	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	rules.RegisterDefault()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// ErrCleanupFailed only selects the exit code; the report says why.
		if !errors.Is(err, cli.ErrCleanupFailed) {
			logger := logging.Default()
			logger.Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
