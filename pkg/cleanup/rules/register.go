package rules

import "github.com/yaklabco/gocleanup/pkg/cleanup"

// Setting keys read by rule factories, beyond the per-rule enable switch.
const (
	// SettingBreakSpaces is the trailing space count kept as a Markdown hard
	// line break. Zero removes all trailing whitespace.
	SettingBreakSpaces = "whitespace.trailing.br-spaces"
)

// Register installs the built-in rules in priority order.
// Every rule can be turned off with "cleanup.<id>" = "false".
func Register(registry *cleanup.Registry) {
	// Text rules
	registry.Register(NewTrailingWhitespaceRule(defaultBreakSpaces), func(settings cleanup.Options) cleanup.Rule {
		if !settings.Bool(cleanup.SettingKey(TrailingWhitespaceID), true) {
			return nil
		}
		return NewTrailingWhitespaceRule(max(settings.Int(SettingBreakSpaces, defaultBreakSpaces), 0))
	})
	registry.Register(NewFinalNewlineRule(), nil)

	// JavaScript rules
	registry.Register(NewVarToLetRule(), nil)
	registry.Register(NewSingleQuotesRule(), nil)
	registry.Register(NewControlBracesRule(), nil)

	// Markdown rules
	registry.Register(NewEmphasisUnderscoreRule(), nil)
}

// RegisterDefault installs the built-in rules into cleanup.DefaultRegistry.
func RegisterDefault() {
	Register(cleanup.DefaultRegistry)
}
