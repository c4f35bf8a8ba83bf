package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
)

func TestEmphasisUnderscoreRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "a *b* c\n", "a _b_ c\n"},
		{"several", "*a* and *b c*\n", "_a_ and _b c_\n"},
		{"strong untouched", "**strong**\n", "**strong**\n"},
		{"intraword untouched", "a*b*c\n", "a*b*c\n"},
		{"underscore already", "_x_\n", "_x_\n"},
		{"ends in link untouched", "*[a](u)*\n", "*[a](u)*\n"},
		{"code span literal", "`*x*`\n", "`*x*`\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, _ := cleanupText(t, "markdown", tt.input, rules.NewEmphasisUnderscoreRule())
			assert.Equal(t, tt.want, got)
		})
	}
}
