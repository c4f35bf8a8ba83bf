package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

type restoreFlags struct {
	keep   bool
	dryRun bool
}

func newRestoreCommand() *cobra.Command {
	flags := &restoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Restore files from their backups",
		Long: `Put back the content saved in .gocleanup.bak backups by "gocleanup run
--write --backup". Backups are removed after a successful restore unless
--keep is set.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			workDir, err := os.Getwd()
			if err != nil {
				return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
			}
			return runRestore(ctx, cmd, workDir, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.keep, "keep", false, "keep backups after restoring")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list the files that would be restored")

	return cmd
}

func runRestore(ctx context.Context, cmd *cobra.Command, workDir string, args []string, flags *restoreFlags) error {
	logger := logging.NewWithWriter(cmd.OutOrStdout(), "info")

	// Backups sit next to their files, so .gitignore entries for the
	// backups never hide the originals.
	files, err := runner.Discover(ctx, runner.Options{
		Paths:       args,
		WorkingDir:  workDir,
		NoGitignore: true,
	})
	if err != nil {
		return withExitCode(ExitIOError, err)
	}

	var restored int
	for _, path := range files {
		if !fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
			continue
		}

		rel, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			rel = path
		}

		if flags.dryRun {
			logger.Info("would restore", logging.FieldPath, filepath.ToSlash(rel))
			restored++
			continue
		}

		ok, err := fsutil.Restore(ctx, path, fsutil.BackupModeSidecar, flags.keep)
		if err != nil {
			return withExitCode(ExitIOError, err)
		}
		if ok {
			logger.Info("restored", logging.FieldPath, filepath.ToSlash(rel))
			restored++
		}
	}

	if restored == 0 {
		logger.Info("no backups found")
	}
	return nil
}
