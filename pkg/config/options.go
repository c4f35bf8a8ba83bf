package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
	"github.com/yaklabco/gocleanup/pkg/parser/goldmark"
	"github.com/yaklabco/gocleanup/pkg/parser/treesitter"
)

// Settings flattens rule configuration into the rule settings read by rule
// factories: "cleanup.<id>" for each enable switch and "<id>.<key>" for each
// rule option. EnableRules and DisableRules are applied last; ToggleRule
// keeps them disjoint.
func (c *Config) Settings() (cleanup.Options, error) {
	settings := make(cleanup.Options)

	for _, id := range slices.Sorted(maps.Keys(c.Rules)) {
		rc := c.Rules[id]
		if rc.Enabled != nil {
			settings[cleanup.SettingKey(id)] = strconv.FormatBool(*rc.Enabled)
		}
		for _, key := range slices.Sorted(maps.Keys(rc.Options)) {
			value, err := formatValue(rc.Options[key])
			if err != nil {
				return nil, fmt.Errorf("rules.%s.options.%s: %w", id, key, err)
			}
			settings[id+"."+key] = value
		}
	}

	for _, id := range c.EnableRules {
		settings[cleanup.SettingKey(id)] = "true"
	}
	for _, id := range c.DisableRules {
		settings[cleanup.SettingKey(id)] = "false"
	}
	return settings, nil
}

// ToggleRule enables or disables id, overriding any earlier toggle of the
// same rule. Each ID is kept in at most one of EnableRules and DisableRules.
func (c *Config) ToggleRule(id string, on bool) {
	add, drop := &c.EnableRules, &c.DisableRules
	if !on {
		add, drop = drop, add
	}
	*drop = slices.DeleteFunc(*drop, func(s string) bool { return s == id })
	if !slices.Contains(*add, id) {
		*add = append(*add, id)
	}
}

// ParserOptions returns the parser options for documents outside any
// project manifest.
func (c *Config) ParserOptions() (cleanup.Options, error) {
	opts := make(cleanup.Options)
	if c.Parser.Flavor != "" {
		opts[goldmark.OptionFlavor] = string(c.Parser.Flavor)
	}
	if c.Parser.RejectSyntaxErrors != nil {
		opts[treesitter.OptionRejectSyntaxErrors] = strconv.FormatBool(*c.Parser.RejectSyntaxErrors)
	}
	if c.Parser.MaxFileSize != "" {
		size, err := humanize.ParseBytes(c.Parser.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("parser.max_file_size: %w", err)
		}
		opts[treesitter.OptionMaxFileSize] = strconv.FormatUint(size, 10)
	}
	return opts, nil
}

// MemoryBudgetBytes parses MemoryBudget. Zero means unset.
func (c *Config) MemoryBudgetBytes() (uint64, error) {
	if c.MemoryBudget == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MemoryBudget)
	if err != nil {
		return 0, fmt.Errorf("memory_budget: %w", err)
	}
	return n, nil
}

// BackupConfig returns the effective backup settings, honoring NoBackups.
func (c *Config) BackupConfig() fsutil.BackupConfig {
	mode := fsutil.BackupMode(c.Backups.Mode)
	if mode == "" {
		mode = fsutil.BackupModeSidecar
	}
	return fsutil.BackupConfig{
		Enabled: c.Backups.Enabled && !c.NoBackups,
		Mode:    mode,
	}
}

func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
