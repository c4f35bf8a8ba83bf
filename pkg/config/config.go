// Package config defines the configuration types for gocleanup and their
// translation into engine settings and parser options.
// The types are plain data; loading and merging live in internal/configloader.
package config

// RuleConfig holds per-rule configuration.
type RuleConfig struct {
	// Enabled turns the rule on or off. Nil keeps the rule's default.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Options are rule settings, exposed to the rule as "<rule-id>.<key>".
	Options map[string]any `yaml:"options,omitempty"`
}

// ParserConfig holds the default parser options.
type ParserConfig struct {
	// Flavor is the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor,omitempty"`

	// RejectSyntaxErrors fails JavaScript parses whose tree contains errors.
	// Nil leaves the parser default.
	RejectSyntaxErrors *bool `yaml:"reject_syntax_errors,omitempty"`

	// MaxFileSize bounds parsed documents, e.g. "10MiB". Empty keeps the
	// parser default; "0" disables the limit.
	MaxFileSize string `yaml:"max_file_size,omitempty"`
}

// BackupsConfig controls backup behavior when writing files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies the report format.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatID       RuleFormat = "id"       // "js.var-to-let"
	RuleFormatName     RuleFormat = "name"     // "Convert var to let"
	RuleFormatCombined RuleFormat = "combined" // "js.var-to-let (Convert var to let)"
)

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Config is the root configuration structure.
type Config struct {
	// Parser holds the default parser options.
	Parser ParserConfig `yaml:"parser,omitempty"`

	// Rules contains per-rule configuration keyed by rule ID.
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`

	// Extensions overrides the processed file extensions.
	Extensions []string `yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `yaml:"ignore,omitempty"`

	// MemoryBudget caps the memory held by parsed trees, e.g. "512MiB".
	// Empty lets the engine derive it from the runtime memory limit.
	MemoryBudget string `yaml:"memory_budget,omitempty"`

	// LeaveDirty reports changes without saving them.
	LeaveDirty bool `yaml:"leave_dirty,omitempty"`

	// Backups configures backup behavior when writing.
	Backups BackupsConfig `yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// Write saves changed files.
	Write bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat RuleFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// EnableRules contains rule IDs to explicitly enable.
	EnableRules []string `yaml:"-"`

	// DisableRules contains rule IDs to explicitly disable.
	DisableRules []string `yaml:"-"`

	// NoBackups disables backup creation when writing.
	NoBackups bool `yaml:"-"`

	// NoGitignore disables .gitignore filtering.
	NoGitignore bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Parser: ParserConfig{Flavor: FlavorGFM},
		Rules:  make(map[string]RuleConfig),
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		Format:     FormatText,
		RuleFormat: RuleFormatID,
		Jobs:       0, // 0 means use GOMAXPROCS
	}
}
