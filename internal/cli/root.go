// Package cli provides the Cobra command structure for gocleanup.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/internal/ui/pretty"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	debug  bool
	config string
	color  string
}

// NewRootCommand assembles the gocleanup command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "gocleanup",
		Short: "Apply many rewrite rules to a source tree in one conflict-free sweep",
		Long: `gocleanup runs a set of clean up rules over JavaScript, Markdown and plain
text files and merges their rewrites into one change per file.

Rules are applied in passes. When two rules want to edit the same text, the
higher priority rule wins and the other waits for the next pass, where it
sees the updated file. Runs are dry by default; use --write to save changes,
optionally with backups that "gocleanup restore" can put back.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := pretty.ValidateColorMode(g.color); err != nil {
				return withExitCode(ExitInvalidUsage, err)
			}
			if g.debug {
				logging.SetLevel("debug")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")
	pf.StringVar(&g.config, "config", "", "path to config file")
	pf.StringVar(&g.color, "color", "auto", "colorize output: auto, always, never")

	root.AddCommand(
		newRunCommand(),
		newRulesCommand(),
		newInitCommand(),
		newConfigCommand(),
		newRestoreCommand(),
		newVersionCommand(info),
	)

	NewHelpFormatter("auto").ApplyToCommand(root)
	return root
}
