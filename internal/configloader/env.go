package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/gocleanup/pkg/config"
)

const envPrefix = "GOCLEANUP_"

// envVar binds one GOCLEANUP_* variable to the config field it sets.
type envVar struct {
	suffix string
	help   string
	set    func(cfg *config.Config, raw string) error
}

func stringVar[T ~string](field func(*config.Config) *T) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		*field(cfg) = T(raw)
		return nil
	}
}

func boolVar(field func(*config.Config) *bool) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("want true, false, 1 or 0, got %q", raw)
		}
		*field(cfg) = b
		return nil
	}
}

func listVar(field func(*config.Config) *[]string) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		*field(cfg) = splitList(raw)
		return nil
	}
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"FLAVOR", "Markdown flavor: commonmark or gfm",
		stringVar(func(c *config.Config) *config.Flavor { return &c.Parser.Flavor })},
	{"REJECT_SYNTAX_ERRORS", "Fail JavaScript files that do not parse cleanly: true or false",
		func(cfg *config.Config, raw string) error {
			var b bool
			if err := boolVar(func(*config.Config) *bool { return &b })(cfg, raw); err != nil {
				return err
			}
			cfg.Parser.RejectSyntaxErrors = &b
			return nil
		}},
	{"MAX_FILE_SIZE", "Largest file parsed, e.g. 10MiB (0 = no limit)",
		stringVar(func(c *config.Config) *string { return &c.Parser.MaxFileSize })},
	{"MEMORY_BUDGET", "Memory held by parsed trees, e.g. 256MiB",
		stringVar(func(c *config.Config) *string { return &c.MemoryBudget })},
	{"WRITE", "Save changed files: true or false",
		boolVar(func(c *config.Config) *bool { return &c.Write })},
	{"LEAVE_DIRTY", "Report changes without saving: true or false",
		boolVar(func(c *config.Config) *bool { return &c.LeaveDirty })},
	{"JOBS", "Number of parallel workers (0 = auto)",
		func(cfg *config.Config, raw string) error {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("want an integer, got %q", raw)
			}
			cfg.Jobs = n
			return nil
		}},
	{"FORMAT", "Output format: text, json, diff, or summary",
		stringVar(func(c *config.Config) *config.OutputFormat { return &c.Format })},
	{"RULE_FORMAT", "Rule names in output: id, name, or combined",
		stringVar(func(c *config.Config) *config.RuleFormat { return &c.RuleFormat })},
	{"BACKUPS_ENABLED", "Enable backups when writing: true or false",
		boolVar(func(c *config.Config) *bool { return &c.Backups.Enabled })},
	{"BACKUPS_MODE", "Backup mode: sidecar or none",
		stringVar(func(c *config.Config) *string { return &c.Backups.Mode })},
	{"NO_BACKUPS", "Disable backups: true or false",
		boolVar(func(c *config.Config) *bool { return &c.NoBackups })},
	{"NO_GITIGNORE", "Process files ignored by .gitignore: true or false",
		boolVar(func(c *config.Config) *bool { return &c.NoGitignore })},
	{"IGNORE", "Comma-separated list of ignore patterns",
		listVar(func(c *config.Config) *[]string { return &c.Ignore })},
	{"EXTENSIONS", "Comma-separated list of file extensions",
		listVar(func(c *config.Config) *[]string { return &c.Extensions })},
	{"ENABLE", "Comma-separated list of rule IDs to enable",
		listVar(func(c *config.Config) *[]string { return &c.EnableRules })},
	{"DISABLE", "Comma-separated list of rule IDs to disable",
		listVar(func(c *config.Config) *[]string { return &c.DisableRules })},
}

// LoadFromEnv applies the set GOCLEANUP_* variables to cfg. Empty variables
// are treated as unset.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, v := range envVars {
		name := envPrefix + v.suffix
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		if err := v.set(cfg, raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListEnvVars maps every supported variable to a one-line description.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envVars))
	for _, v := range envVars {
		out[envPrefix+v.suffix] = v.help
	}
	return out
}
