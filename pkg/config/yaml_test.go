package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies rules and slices", func(t *testing.T) {
		enabled := true
		reject := false
		original := &config.Config{
			Parser: config.ParserConfig{RejectSyntaxErrors: &reject},
			Rules: map[string]config.RuleConfig{
				"whitespace.trailing": {
					Enabled: &enabled,
					Options: map[string]any{"br-spaces": 2},
				},
			},
			Ignore:      []string{"dist/**"},
			EnableRules: []string{"js.var-to-let"},
			Write:       true,
			Jobs:        4,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.True(t, clone.Write)
		assert.Equal(t, 4, clone.Jobs)

		*clone.Rules["whitespace.trailing"].Enabled = false
		clone.Rules["whitespace.trailing"].Options["br-spaces"] = 0
		clone.Ignore[0] = "changed"
		clone.EnableRules[0] = "changed"
		*clone.Parser.RejectSyntaxErrors = true

		assert.True(t, *original.Rules["whitespace.trailing"].Enabled)
		assert.Equal(t, 2, original.Rules["whitespace.trailing"].Options["br-spaces"])
		assert.Equal(t, "dist/**", original.Ignore[0])
		assert.Equal(t, "js.var-to-let", original.EnableRules[0])
		assert.False(t, *original.Parser.RejectSyntaxErrors)
	})
}

func TestConfigToYAML(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Ignore = []string{"dist/**"}
	cfg.Write = true

	data, err := cfg.ToYAML()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "flavor: gfm")
	assert.Contains(t, out, "- dist/**")
	assert.NotContains(t, out, "write")

	withHeader, err := cfg.ToYAMLWithHeader("# gocleanup")
	require.NoError(t, err)
	assert.Contains(t, string(withHeader), "# gocleanup\n\n")
}

func TestFromYAML(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data := []byte(`
parser:
  flavor: commonmark
  reject_syntax_errors: true
  max_file_size: 2MiB
memory_budget: 512MiB
leave_dirty: true
rules:
  js.var-to-let:
    enabled: false
  whitespace.trailing:
    options:
      br-spaces: 0
backups:
  enabled: true
  mode: none
`)
		cfg, err := config.FromYAML(data)
		require.NoError(t, err)

		assert.Equal(t, config.FlavorCommonMark, cfg.Parser.Flavor)
		require.NotNil(t, cfg.Parser.RejectSyntaxErrors)
		assert.True(t, *cfg.Parser.RejectSyntaxErrors)
		assert.Equal(t, "2MiB", cfg.Parser.MaxFileSize)
		assert.Equal(t, "512MiB", cfg.MemoryBudget)
		assert.True(t, cfg.LeaveDirty)
		assert.False(t, *cfg.Rules["js.var-to-let"].Enabled)
		assert.Equal(t, 0, cfg.Rules["whitespace.trailing"].Options["br-spaces"])
		assert.Equal(t, "none", cfg.Backups.Mode)
	})

	t.Run("initializes rules", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte("ignore: [a]"))
		require.NoError(t, err)
		assert.NotNil(t, cfg.Rules)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := config.FromYAML([]byte("rules: ["))
		assert.Error(t, err)
	})
}
