package cli

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
)

const defaultConfigFile = ".gocleanup.yml"

type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{output: defaultConfigFile}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gocleanup configuration file",
		Long: `Write a commented .gocleanup.yml holding the default settings. An existing
file is only replaced with --force or after confirming at the prompt.

Examples:
  gocleanup init                     Minimal configuration
  gocleanup init --full              Also list every rule with its description
  gocleanup init --output custom.yml Write somewhere else`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), flags, isInteractive())
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "replace an existing file without asking")
	cmd.Flags().BoolVar(&flags.full, "full", false, "document every rule in the generated file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "file to write")
	return cmd
}

func runInit(ctx context.Context, in io.Reader, out io.Writer, flags *initFlags, interactive bool) error {
	logger := logging.NewWithWriter(out, "info")
	path := cmp.Or(flags.output, defaultConfigFile)

	if _, err := os.Stat(path); err == nil && !flags.force {
		if !interactive {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}
		replace, err := confirm(in, out, path+" already exists. Overwrite?")
		if err != nil {
			return err
		}
		if !replace {
			logger.Info("kept existing file", logging.FieldPath, path)
			return nil
		}
		logger.Warn("overwriting existing file", logging.FieldPath, path)
	}

	content := config.GenerateTemplate(config.TemplateOptions{
		Full:  flags.full,
		Rules: templateRules(cleanup.DefaultRegistry),
	})
	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return withExitCode(ExitIOError, err)
	}

	logger.Info("created configuration file", logging.FieldPath, path, "full", flags.full)
	logger.Info("edit it to tune rules; 'gocleanup rules' lists them")
	return nil
}

func templateRules(registry *cleanup.Registry) []config.RuleInfo {
	var rules []config.RuleInfo
	for _, info := range collectRuleInfo(registry) {
		rules = append(rules, config.RuleInfo{
			ID:          info.ID,
			Name:        info.Name,
			Description: info.Description,
			Enabled:     info.Enabled,
		})
	}
	return rules
}

// confirm asks a yes/no question that defaults to no. A final answer
// without a newline counts; no answer at all is an error.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(out, question+" [y/N] "); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (answer == "" || !errors.Is(err, io.EOF)) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return slices.Contains([]string{"y", "yes"}, strings.ToLower(strings.TrimSpace(answer))), nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
