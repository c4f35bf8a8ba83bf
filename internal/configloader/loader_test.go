package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
	"github.com/yaklabco/gocleanup/pkg/config"
)

// projectDir returns a temp directory marked as a VCS root so the upward
// config search stops inside it.
func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testRegistry() *cleanup.Registry {
	registry := cleanup.NewRegistry()
	rules.Register(registry)
	return registry
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
		Registry:           testRegistry(),
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(projectDir(t)))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, config.FlavorGFM, result.Config.Parser.Flavor)
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Equal(t, "sidecar", result.Config.Backups.Mode)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	path := writeConfig(t, dir, ".gocleanup.yml", `
parser:
  flavor: commonmark
  max_file_size: 1MiB
rules:
  js.var-to-let:
    enabled: false
  whitespace.trailing:
    options:
      br-spaces: 0
`)

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)

	assert.Equal(t, config.FlavorCommonMark, result.Config.Parser.Flavor)
	assert.Equal(t, "1MiB", result.Config.Parser.MaxFileSize)
	assert.Equal(t, []string{path}, result.LoadedFrom)

	varToLet, ok := result.Config.Rules["js.var-to-let"]
	require.True(t, ok)
	require.NotNil(t, varToLet.Enabled)
	assert.False(t, *varToLet.Enabled)

	settings, err := result.Config.Settings()
	require.NoError(t, err)
	assert.Equal(t, "false", settings["cleanup.js.var-to-let"])
	assert.Equal(t, "0", settings["whitespace.trailing.br-spaces"])
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	path := writeConfig(t, dir, "gocleanup.yaml", "leave_dirty: true\n")
	sub := filepath.Join(dir, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	result, err := Load(context.Background(), isolated(sub))
	require.NoError(t, err)
	assert.Equal(t, path, result.Paths.Project)
	assert.True(t, result.Config.LeaveDirty)
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "memory_budget: 64MiB\nparser:\n  flavor: commonmark\n")
	custom := writeConfig(t, dir, "custom.yml", "parser:\n  flavor: gfm\n")

	opts := isolated(dir)
	opts.ExplicitPath = custom

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	// The explicit file overrides the project file, which still contributes
	// the fields the explicit file leaves alone.
	assert.Equal(t, config.FlavorGFM, result.Config.Parser.Flavor)
	assert.Equal(t, "64MiB", result.Config.MemoryBudget)
	require.Len(t, result.LoadedFrom, 2)
	assert.Equal(t, custom, result.LoadedFrom[1])
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "parser:\n  flavor: commonmark\n")

	opts := isolated(dir)
	opts.CLIConfig = &config.Config{
		Parser:       config.ParserConfig{Flavor: config.FlavorGFM},
		Jobs:         8,
		Write:        true,
		DisableRules: []string{"js.single-quotes"},
	}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, config.FlavorGFM, result.Config.Parser.Flavor)
	assert.Equal(t, 8, result.Config.Jobs)
	assert.True(t, result.Config.Write)
	assert.Equal(t, []string{"js.single-quotes"}, result.Config.DisableRules)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "invalid flavor",
			content: "parser:\n  flavor: markdown-extra\n",
			want:    "parser.flavor",
		},
		{
			name:    "invalid size",
			content: "memory_budget: lots\n",
			want:    "memory_budget",
		},
		{
			name:    "invalid backup mode",
			content: "backups:\n  mode: cloud\n",
			want:    "backups.mode",
		},
		{
			name:    "unknown key",
			content: "severity_default: warning\n",
			want:    "severity_default",
		},
		{
			name:    "malformed yaml",
			content: "rules: [\n",
			want:    "parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := projectDir(t)
			writeConfig(t, dir, ".gocleanup.yml", tt.content)

			_, err := Load(context.Background(), isolated(dir))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EmptyConfigFile(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "")

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	assert.Equal(t, config.FlavorGFM, result.Config.Parser.Flavor)
	assert.Len(t, result.LoadedFrom, 1)
}

func TestLoad_UnknownRuleWarns(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "rules:\n  js.no-semicolons:\n    enabled: true\n")

	opts := isolated(dir)
	opts.CLIConfig = &config.Config{EnableRules: []string{"md.headings"}}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)

	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "js.no-semicolons")
	assert.Contains(t, joined, "md.headings")
}

func TestLoad_IgnoreProjectConfig(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "parser:\n  flavor: commonmark\n")

	opts := isolated(dir)
	opts.IgnoreProjectConfig = true

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.FlavorGFM, result.Config.Parser.Flavor)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_Environment(t *testing.T) {
	dir := projectDir(t)
	writeConfig(t, dir, ".gocleanup.yml", "parser:\n  flavor: gfm\n")

	t.Setenv("GOCLEANUP_FLAVOR", "commonmark")
	t.Setenv("GOCLEANUP_JOBS", "3")
	t.Setenv("GOCLEANUP_IGNORE", "dist/**, *.min.js")
	t.Setenv("GOCLEANUP_BACKUPS_ENABLED", "true")

	opts := isolated(dir)
	opts.IgnoreEnv = false
	opts.CLIConfig = &config.Config{Jobs: 5}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, config.FlavorCommonMark, result.Config.Parser.Flavor)
	assert.Equal(t, []string{"dist/**", "*.min.js"}, result.Config.Ignore)
	assert.True(t, result.Config.Backups.Enabled)
	// CLI flags win over the environment.
	assert.Equal(t, 5, result.Config.Jobs)
}

func TestLoad_EnvironmentInvalidValue(t *testing.T) {
	t.Setenv("GOCLEANUP_JOBS", "many")

	opts := isolated(projectDir(t))
	opts.IgnoreEnv = false

	_, err := Load(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOCLEANUP_JOBS")
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(projectDir(t)))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeConfig(t, outer, ".gocleanup.yml", "leave_dirty: true\n")
	inner := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(inner, ".git"), 0o755))

	path, err := FindProjectConfig(context.Background(), inner)
	require.NoError(t, err)
	assert.Empty(t, path)
}
