package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gocleanup/internal/configloader"
	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
	"github.com/yaklabco/gocleanup/pkg/parser"
	"github.com/yaklabco/gocleanup/pkg/reporter"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

const runLongDescription = `Clean up JavaScript, Markdown and text files.

By default, processes every supported file under the current directory,
honoring .gitignore, and reports the changes without saving them. Specify
paths to process specific files or directories.

Examples:
  gocleanup run                          # Show what would change
  gocleanup run --write                  # Save the changes
  gocleanup run --write --backup         # Save, keeping .gocleanup.bak copies
  gocleanup run --format diff            # Print a unified diff
  gocleanup run --disable js.var-to-let  # Skip one rule
  gocleanup run --check                  # Fail in CI when files need changes`

// runFlags are the run flags that do not map onto a config.Config field
// directly. They only override lower layers when set on the command line.
type runFlags struct {
	format, flavor, ruleFormat, memoryBudget string
	ignore, extensions                       []string

	backup, check, compact, noPasses, noSummary, showUnchanged bool
}

func newRunCommand() *cobra.Command {
	cfg := &config.Config{}
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:     "run [paths...]",
		Aliases: []string{"fix"},
		Short:   "Clean up files",
		Long:    runLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd, args, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&cfg.Write, "write", "w", false, "save changed files")
	f.BoolVar(&cfg.LeaveDirty, "leave-dirty", false, "report changes without saving them, even with --write")
	f.BoolVar(&flags.check, "check", false, "exit with status 2 when files need changes")
	f.StringVar(&flags.format, "format", "text", "output format: text, json, diff, summary")
	f.IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	f.StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	f.StringSliceVar(&flags.extensions, "extensions", nil,
		"file extensions to process (default .js, .mjs, .cjs, .jsx, .md, .markdown, .txt)")
	f.Var(ruleToggleFlag{cfg: cfg, on: true}, "enable", "rule IDs to enable; the last --enable or --disable naming a rule wins")
	f.Var(ruleToggleFlag{cfg: cfg, on: false}, "disable", "rule IDs to disable")
	f.BoolVar(&flags.backup, "backup", false, "back up files before overwriting them")
	f.BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when writing")
	f.BoolVar(&cfg.NoGitignore, "no-gitignore", false, "process files ignored by .gitignore")
	f.StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: commonmark, gfm")
	f.StringVar(&flags.memoryBudget, "memory-budget", "", "memory held by parsed trees, e.g. 256MiB")
	f.StringVar(&flags.ruleFormat, "rule-format", "id", "rule identifier format in output: name, id, or combined")
	f.BoolVar(&flags.compact, "compact", false, "use compact output format")
	f.BoolVar(&flags.noPasses, "no-passes", false, "hide the passes of each change")
	f.BoolVar(&flags.noSummary, "no-summary", false, "hide the closing summary")
	f.BoolVar(&flags.showUnchanged, "show-unchanged", false, "list files that needed no change")
	return cmd
}

// applyFlags copies the explicitly set flags into cfg, the CLI layer of the
// configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags) {
	changed := cmd.Flags().Changed
	if changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if changed("flavor") {
		cfg.Parser.Flavor = config.Flavor(flags.flavor)
	}
	if changed("rule-format") {
		cfg.RuleFormat = config.RuleFormat(flags.ruleFormat)
	}
	if changed("memory-budget") {
		cfg.MemoryBudget = flags.memoryBudget
	}
	cfg.Backups.Enabled = cfg.Backups.Enabled || flags.backup
	cfg.Ignore, cfg.Extensions = flags.ignore, flags.extensions
}

// ruleToggleFlag backs --enable and --disable. Both write to one config in
// command line order, so a later flag overrides an earlier one for the same
// rule.
type ruleToggleFlag struct {
	cfg *config.Config
	on  bool
}

func (f ruleToggleFlag) Set(value string) error {
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			f.cfg.ToggleRule(id, f.on)
		}
	}
	return nil
}

func (f ruleToggleFlag) String() string {
	if f.on {
		return strings.Join(f.cfg.EnableRules, ",")
	}
	return strings.Join(f.cfg.DisableRules, ",")
}

func (ruleToggleFlag) Type() string { return "strings" }

func runCleanup(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *runFlags) error {
	applyFlags(cmd, cliCfg, flags)

	logger := logging.Default()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	workDir, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}
	registry := cleanup.DefaultRegistry

	cfg, err := loadRunConfig(ctx, cmd, logger, workDir, cliCfg, registry)
	if err != nil {
		return err
	}
	opts, err := buildRunOptions(args, workDir, cfg, registry)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	opts.Progress = func(ev cleanup.ProgressEvent) {
		logger.Debug("processing",
			logging.FieldPass, ev.Pass,
			logging.FieldDocument, ev.Document.ID,
			"index", ev.Index,
			"total", ev.Total,
		)
	}
	logger.Debug("starting clean up",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldWrite, opts.Write,
		logging.FieldJobs, opts.Jobs,
		logging.FieldBudget, opts.MemoryBudget,
	)

	result, runErr := runner.New(parser.Default(string(cfg.Parser.Flavor))).Run(ctx, opts)
	if result == nil {
		return withExitCode(ExitIOError, fmt.Errorf("clean up run failed: %w", runErr))
	}
	if err := reportRun(ctx, cmd, cfg, flags, registry, result); err != nil {
		return err
	}

	if runErr != nil {
		return withExitCode(ExitInternalError, runErr)
	}
	if code := ExitCodeFromResult(result, flags.check); code != ExitSuccess {
		return withExitCode(code, ErrCleanupFailed)
	}
	return nil
}

// loadRunConfig resolves the configuration layers below cliCfg and logs the
// validation warnings.
func loadRunConfig(
	ctx context.Context, cmd *cobra.Command, logger *log.Logger,
	workDir string, cliCfg *config.Config, registry *cleanup.Registry,
) (*config.Config, error) {
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	res, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: explicit,
		Registry:     registry,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	if len(res.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, res.LoadedFrom)
	}
	return res.Config, nil
}

func reportRun(
	ctx context.Context, cmd *cobra.Command, cfg *config.Config, flags *runFlags,
	registry *cleanup.Registry, result *runner.Result,
) error {
	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format: %w", err))
	}
	color, err := cmd.Flags().GetString("color")
	if err != nil {
		color = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:        cmd.OutOrStdout(),
		ErrorWriter:   cmd.ErrOrStderr(),
		Format:        format,
		Color:         color,
		ShowPasses:    !flags.noPasses,
		ShowUnchanged: flags.showUnchanged,
		ShowSummary:   !flags.noSummary,
		Compact:       flags.compact,
		RuleFormat:    cfg.RuleFormat,
		Registry:      registry,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}

// buildRunOptions maps the resolved configuration onto runner options.
func buildRunOptions(args []string, workDir string, cfg *config.Config, registry *cleanup.Registry) (runner.Options, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return runner.Options{}, fmt.Errorf("rule settings: %w", err)
	}
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return runner.Options{}, fmt.Errorf("parser options: %w", err)
	}
	budget, err := cfg.MemoryBudgetBytes()
	if err != nil {
		return runner.Options{}, err
	}

	return runner.Options{
		Paths:         args,
		WorkingDir:    workDir,
		Extensions:    cfg.Extensions,
		ExcludeGlobs:  cfg.Ignore,
		NoGitignore:   cfg.NoGitignore,
		Jobs:          cfg.Jobs,
		MemoryBudget:  budget,
		Write:         cfg.Write,
		LeaveDirty:    cfg.LeaveDirty,
		Backup:        cfg.BackupConfig(),
		Settings:      settings,
		ParserOptions: parserOpts,
		Flavor:        string(cfg.Parser.Flavor),
		Registry:      registry,
	}, nil
}
