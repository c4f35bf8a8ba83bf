package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocleanup/internal/configloader"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

func newConfigCommand() *cobra.Command {
	var noEnv bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration a run in the current directory would use, after
merging the system, user and project files, the --config file and GOCLEANUP_*
environment variables. The files that were read are listed in the header.

Examples:
  gocleanup config                  # Show the merged configuration
  gocleanup config --no-env         # Ignore GOCLEANUP_* variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("get config flag: %w", err)
			}
			workDir, err := os.Getwd()
			if err != nil {
				return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
			}
			return printConfig(cmd, cmd.OutOrStdout(), configloader.LoadOptions{
				WorkingDir:   workDir,
				ExplicitPath: configPath,
				IgnoreEnv:    noEnv,
				Registry:     cleanup.DefaultRegistry,
			})
		},
	}

	cmd.Flags().BoolVar(&noEnv, "no-env", false, "ignore GOCLEANUP_* environment variables")
	return cmd
}

func printConfig(cmd *cobra.Command, out io.Writer, opts configloader.LoadOptions) error {
	res, err := configloader.Load(cmd.Context(), opts)
	if err != nil {
		return withExitCode(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
	}

	content, err := res.Config.ToYAMLWithHeader(sourcesHeader(res.LoadedFrom))
	if err != nil {
		return withExitCode(ExitInternalError, fmt.Errorf("serialize configuration: %w", err))
	}
	if _, err := out.Write(content); err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("write configuration: %w", err))
	}
	return nil
}

// sourcesHeader lists the merged files as YAML comments.
func sourcesHeader(files []string) string {
	if len(files) == 0 {
		return "# gocleanup configuration (defaults only)"
	}
	var sb strings.Builder
	sb.WriteString("# gocleanup configuration merged from:")
	for _, f := range files {
		sb.WriteString("\n#   " + f)
	}
	return sb.String()
}
