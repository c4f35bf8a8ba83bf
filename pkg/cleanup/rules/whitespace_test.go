package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
)

func TestTrailingWhitespaceRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		language    string
		breakSpaces int
		input       string
		want        string
	}{
		{"spaces and tabs", "text", 2, "a  \nb\t\nc", "a\nb\nc"},
		{"crlf kept", "text", 2, "a \r\nb", "a\r\nb"},
		{"last line", "text", 2, "a\nb   ", "a\nb"},
		{"clean", "text", 2, "a\nb\n", "a\nb\n"},
		{"hard break kept in markdown", "markdown", 2, "a  \nb\n", "a  \nb\n"},
		{"hard break only in markdown", "text", 2, "a  \nb\n", "a\nb\n"},
		{"other widths removed", "markdown", 2, "a   \nb \n", "a\nb\n"},
		{"blank line is not a break", "markdown", 2, "a\n  \nb\n", "a\n\nb\n"},
		{"breaks disabled", "markdown", 0, "a  \nb\n", "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, _ := cleanupText(t, tt.language, tt.input, rules.NewTrailingWhitespaceRule(tt.breakSpaces))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFinalNewlineRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing", "a", "a\n"},
		{"extra", "a\n\n\n", "a\n"},
		{"trailing blanks", "a\n  \n\t\n", "a\n"},
		{"crlf", "a\r\nb", "a\r\nb\r\n"},
		{"already single", "a\n", "a\n"},
		{"empty", "", ""},
		{"only whitespace", " \n\n", " \n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, _ := cleanupText(t, "text", tt.input, rules.NewFinalNewlineRule())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhitespaceRules_ConflictDeferred(t *testing.T) {
	t.Parallel()

	// The final newline replacement covers the trailing whitespace deletions,
	// so it is deferred to a second pass.
	got, passes, result := cleanupText(t, "text", "a  \n  \n\n",
		rules.NewTrailingWhitespaceRule(2), rules.NewFinalNewlineRule())

	assert.Equal(t, "a\n", got)
	assert.Equal(t, 2, passes)
	assert.Equal(t, 1, result.Stats.Deferrals)
}
