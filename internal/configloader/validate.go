package configloader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
)

// ValidationError describes one invalid or suspicious setting.
type ValidationError struct {
	// Field is the dotted path of the setting, e.g. "parser.flavor".
	Field   string
	Value   any
	Message string

	// FilePath and Line locate the setting when known.
	FilePath string
	Line     int
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.FilePath != "" {
		sb.WriteString(e.FilePath)
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
		sb.WriteString(": ")
	}
	if e.Field != "" {
		sb.WriteString(e.Field + ": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationResult holds the findings of Validate. Errors stop loading;
// warnings are reported and otherwise ignored.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// oneOf fails field unless value is empty or among allowed.
func oneOf[T ~string](r *ValidationResult, field, what string, value T, allowed ...T) {
	if value == "" || slices.Contains(allowed, value) {
		return
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	r.fail(field, value, "invalid %s %q; must be one of: %s", what, value, strings.Join(names, ", "))
}

// Validate checks cfg. Unknown rule IDs are warnings, checked against
// registry or cleanup.DefaultRegistry when registry is nil.
func Validate(cfg *config.Config, registry *cleanup.Registry) *ValidationResult {
	r := &ValidationResult{}
	if cfg == nil {
		return r
	}
	if registry == nil {
		registry = cleanup.DefaultRegistry
	}

	oneOf(r, "parser.flavor", "flavor", cfg.Parser.Flavor, config.FlavorCommonMark, config.FlavorGFM)
	oneOf(r, "format", "format", cfg.Format,
		config.FormatText, config.FormatJSON, config.FormatDiff, config.FormatSummary)
	oneOf(r, "rule_format", "rule format", cfg.RuleFormat,
		config.RuleFormatID, config.RuleFormatName, config.RuleFormatCombined)
	oneOf(r, "backups.mode", "backup mode", cfg.Backups.Mode, "sidecar", "none")

	sizes := [...]struct{ field, value string }{
		{"parser.max_file_size", cfg.Parser.MaxFileSize},
		{"memory_budget", cfg.MemoryBudget},
	}
	for _, s := range sizes {
		if s.value == "" {
			continue
		}
		if _, err := humanize.ParseBytes(s.value); err != nil {
			r.fail(s.field, s.value, "invalid size %q; use a value like 64MiB", s.value)
		}
	}

	if cfg.Jobs < 0 {
		r.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	for i, ext := range cfg.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			r.fail(fmt.Sprintf("extensions[%d]", i), ext, "invalid extension %q; must start with a dot", ext)
		}
	}

	// Patterns are compiled the same way file discovery compiles them.
	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			r.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	unknown := func(field, id string) {
		if _, ok := registry.Get(id); !ok {
			r.warn(field, id, "unknown rule %q; it will be ignored", id)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(cfg.Rules)) {
		unknown("rules."+id, id)
	}
	for _, id := range cfg.EnableRules {
		unknown("enable", id)
	}
	for _, id := range cfg.DisableRules {
		unknown("disable", id)
	}

	return r
}
