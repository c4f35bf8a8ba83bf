package config

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// TemplateHeader starts every generated configuration file.
const TemplateHeader = `# gocleanup configuration
# See: https://github.com/yaklabco/gocleanup`

const templateBody = `
# Parser defaults; gocleanup.toml project manifests override them
parser:
  # Markdown flavor: commonmark or gfm
  flavor: gfm
  # Refuse to clean up JavaScript files with syntax errors
  # reject_syntax_errors: false
  # Skip parsing files larger than this (0 disables the limit)
  # max_file_size: 10MiB

# Memory held by parsed trees at once; defaults to the Go memory limit
# memory_budget: 256MiB

# Report changes without saving them
# leave_dirty: false

# Back up files before overwriting them
backups:
  enabled: false
  mode: sidecar

# Glob patterns of files and directories to skip
# ignore:
#   - "dist/**"
#   - "**/*.min.js"

# Per-rule settings, keyed by rule ID
`

const exampleRules = `# rules:
#   whitespace.trailing:
#     options:
#       br-spaces: 2
#   js.var-to-let:
#     enabled: false
`

// descriptionWidth is where rule descriptions are wrapped.
const descriptionWidth = 70

// RuleInfo describes a rule for the full template.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
}

// TemplateOptions selects the template GenerateTemplate writes.
type TemplateOptions struct {
	// Full writes a rules section with every rule of Rules. Otherwise the
	// rules section is a commented example.
	Full  bool
	Rules []RuleInfo
}

// GenerateTemplate returns a commented YAML configuration that decodes to
// the defaults. The full template lists rules sorted by ID.
func GenerateTemplate(opts TemplateOptions) []byte {
	var sb strings.Builder
	sb.WriteString(TemplateHeader + "\n")
	sb.WriteString(templateBody)

	if !opts.Full || len(opts.Rules) == 0 {
		sb.WriteString(exampleRules)
		return []byte(sb.String())
	}

	rules := slices.SortedStableFunc(slices.Values(opts.Rules), func(a, b RuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	sb.WriteString("rules:\n")
	for _, rule := range rules {
		fmt.Fprintf(&sb, "\n  # %s: %s\n", rule.ID, rule.Name)
		for line := range strings.Lines(wordwrap.String(rule.Description, descriptionWidth)) {
			sb.WriteString("  # " + strings.TrimRight(line, " \n") + "\n")
		}
		fmt.Fprintf(&sb, "  %s:\n    enabled: %t\n", rule.ID, rule.Enabled)
	}
	return []byte(sb.String())
}
