package configloader

import (
	"maps"

	"github.com/yaklabco/gocleanup/pkg/config"
)

// set copies v into dst unless v is the zero value. For booleans this means
// a higher layer can switch a flag on but never off.
func set[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// setPtr copies a non-nil pointer.
func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// setSlice replaces dst with v when v is non-nil, even if it is empty.
func setSlice[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = v
	}
}

// merge layers top over a deep copy of base. Neither input is modified.
func merge(base, top *config.Config) *config.Config {
	switch {
	case base == nil:
		return top
	case top == nil:
		return base
	}

	out := base.Clone()

	set(&out.Parser.Flavor, top.Parser.Flavor)
	setPtr(&out.Parser.RejectSyntaxErrors, top.Parser.RejectSyntaxErrors)
	set(&out.Parser.MaxFileSize, top.Parser.MaxFileSize)
	set(&out.MemoryBudget, top.MemoryBudget)
	set(&out.Format, top.Format)
	set(&out.RuleFormat, top.RuleFormat)
	set(&out.Jobs, top.Jobs)
	set(&out.Write, top.Write)
	set(&out.LeaveDirty, top.LeaveDirty)
	set(&out.NoBackups, top.NoBackups)
	set(&out.NoGitignore, top.NoGitignore)
	set(&out.Backups.Mode, top.Backups.Mode)
	set(&out.Backups.Enabled, top.Backups.Enabled)

	setSlice(&out.Ignore, top.Ignore)
	setSlice(&out.Extensions, top.Extensions)

	// Rule toggles of top override those of lower layers per ID. Within one
	// layer a rule named in both lists ends up disabled.
	for _, id := range top.EnableRules {
		out.ToggleRule(id, true)
	}
	for _, id := range top.DisableRules {
		out.ToggleRule(id, false)
	}

	mergeRules(out, top.Rules)
	return out
}

// mergeRules merges rule settings into dst per rule ID. Options of the
// same rule are merged key by key.
func mergeRules(dst *config.Config, top map[string]config.RuleConfig) {
	if len(top) == 0 {
		return
	}
	if dst.Rules == nil {
		dst.Rules = make(map[string]config.RuleConfig, len(top))
	}
	for id, rc := range top {
		prev, ok := dst.Rules[id]
		if !ok {
			dst.Rules[id] = rc
			continue
		}
		setPtr(&prev.Enabled, rc.Enabled)
		if rc.Options != nil {
			if prev.Options == nil {
				prev.Options = make(map[string]any, len(rc.Options))
			}
			maps.Copy(prev.Options, rc.Options)
		}
		dst.Rules[id] = prev
	}
}
