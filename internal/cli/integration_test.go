package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/internal/cli"
	"github.com/yaklabco/gocleanup/pkg/analysis"
)

// testJSWithVar is rewritten by js.var-to-let and nothing else.
const testJSWithVar = "var x = 1;\n"

// writeFile creates name with content in a fresh temp directory.
func writeFile(t *testing.T, name, content string) (dir, path string) {
	t.Helper()

	dir = t.TempDir()
	path = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

// writeConfig writes a config file into its own temp directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gocleanup.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestIntegration_DryRunLeavesFiles(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--color", "never", jsFile)
	require.NoError(t, err)

	assert.Contains(t, output, "app.js changed")
	assert.Contains(t, output, "js.var-to-let")
	assert.Equal(t, testJSWithVar, readFile(t, jsFile))
}

func TestIntegration_WriteSavesChanges(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--write", "--color", "never", jsFile)
	require.NoError(t, err)

	assert.Contains(t, output, "app.js written")
	assert.Equal(t, "let x = 1;\n", readFile(t, jsFile))
	assert.NoFileExists(t, jsFile+".gocleanup.bak")
}

func TestIntegration_LeaveDirty(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--write", "--leave-dirty", "--color", "never", jsFile)
	require.NoError(t, err)

	assert.Contains(t, output, "app.js changed")
	assert.Equal(t, testJSWithVar, readFile(t, jsFile))
}

func TestIntegration_BackupAndRestore(t *testing.T) {
	t.Parallel()

	dir, jsFile := writeFile(t, "app.js", testJSWithVar)

	_, err := execute(t, "run", "--write", "--backup", "--color", "never", jsFile)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", readFile(t, jsFile))
	assert.Equal(t, testJSWithVar, readFile(t, jsFile+".gocleanup.bak"))

	_, err = execute(t, "restore", "--dry-run", dir)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", readFile(t, jsFile), "dry run restores nothing")

	output, err := execute(t, "restore", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "restored")
	assert.Equal(t, testJSWithVar, readFile(t, jsFile))
	assert.NoFileExists(t, jsFile+".gocleanup.bak")
}

func TestIntegration_RestoreWithoutBackups(t *testing.T) {
	t.Parallel()

	dir, _ := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "restore", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "no backups found")
}

func TestIntegration_EnableDisableByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantChanged bool
	}{
		{name: "default runs rule", wantChanged: true},
		{name: "disable by ID", args: []string{"--disable", "js.var-to-let"}, wantChanged: false},
		{name: "disable then enable", args: []string{"--disable", "js.var-to-let", "--enable", "js.var-to-let"}, wantChanged: true},
		{name: "enable then disable", args: []string{"--enable", "js.var-to-let", "--disable", "js.var-to-let"}, wantChanged: false},
		{name: "comma list", args: []string{"--disable", "whitespace.trailing,js.var-to-let"}, wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, jsFile := writeFile(t, "app.js", testJSWithVar)

			args := append([]string{"run", "--color", "never"}, tt.args...)
			output, err := execute(t, append(args, jsFile)...)
			require.NoError(t, err)

			if tt.wantChanged {
				assert.Contains(t, output, "app.js changed")
			} else {
				assert.Contains(t, output, "Nothing to clean up")
			}
		})
	}
}

func TestIntegration_ConfigDisablesRule(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)
	cfgFile := writeConfig(t, `
rules:
  js.var-to-let:
    enabled: false
`)

	output, err := execute(t, "run", "--config", cfgFile, "--color", "never", jsFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing to clean up")
}

func TestIntegration_ConfigRuleOptions(t *testing.T) {
	t.Parallel()

	_, mdFile := writeFile(t, "notes.md", "line one  \nline two\n")

	output, err := execute(t, "run", "--color", "never", mdFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing to clean up", "two spaces are a hard line break by default")

	cfgFile := writeConfig(t, `
rules:
  whitespace.trailing:
    options:
      br-spaces: 0
`)
	output, err = execute(t, "run", "--config", cfgFile, "--write", "--color", "never", mdFile)
	require.NoError(t, err)
	assert.Contains(t, output, "notes.md written")
	assert.Equal(t, "line one\nline two\n", readFile(t, mdFile))
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)
	cfgFile := writeConfig(t, "parser:\n  flavor: bogus\n")

	_, err := execute(t, "run", "--config", cfgFile, jsFile)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_CheckFailsOnChanges(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	_, err := execute(t, "run", "--check", "--color", "never", jsFile)
	require.ErrorIs(t, err, cli.ErrCleanupFailed)
	assert.Equal(t, cli.ExitChanges, cli.ExitCode(err))

	_, err = execute(t, "run", "--check", "--write", "--color", "never", jsFile)
	require.NoError(t, err, "written changes pass the check")

	_, err = execute(t, "run", "--check", "--color", "never", jsFile)
	require.NoError(t, err)
}

func TestIntegration_ParseErrorFails(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "broken.js", "var x = ;\n")

	output, err := execute(t, "run", "--color", "never", jsFile)
	require.ErrorIs(t, err, cli.ErrCleanupFailed)
	assert.Equal(t, cli.ExitErrors, cli.ExitCode(err))
	assert.Contains(t, output, "[parse-error]")
}

func TestIntegration_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.js"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))
}

func TestIntegration_JSONFormat(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--format", "json", jsFile)
	require.NoError(t, err)

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	assert.Equal(t, 1, report.Totals.Files)
	assert.Equal(t, 1, report.Totals.FilesChanged)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "changed", report.Files[0].Status)
	require.Len(t, report.Files[0].Passes, 1)
	assert.Equal(t, []string{"js.var-to-let"}, report.Files[0].Passes[0].Rules)
}

func TestIntegration_DiffFormat(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--format", "diff", "--color", "never", jsFile)
	require.NoError(t, err)

	assert.Contains(t, output, "-var x = 1;\n")
	assert.Contains(t, output, "+let x = 1;\n")
	assert.Contains(t, output, "1 file changed, 1 insertion(+), 1 deletion(-)")
}

func TestIntegration_SummaryFormat(t *testing.T) {
	t.Parallel()

	_, jsFile := writeFile(t, "app.js", testJSWithVar)

	output, err := execute(t, "run", "--format", "summary", "--color", "never", jsFile)
	require.NoError(t, err)

	assert.Contains(t, output, "Rules Summary")
	assert.Contains(t, output, "Files Summary")
	assert.Contains(t, output, "Total: 1 file changed of 1 checked")
}

func TestIntegration_SummaryFormatNoChanges(t *testing.T) {
	t.Parallel()

	_, txtFile := writeFile(t, "notes.txt", "clean\n")

	output, err := execute(t, "run", "--format", "summary", "--color", "never", txtFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing to clean up")
}

func TestIntegration_RulesCommandJSON(t *testing.T) {
	t.Parallel()

	output, err := execute(t, "rules", "--format", "json")
	require.NoError(t, err)

	var rules []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Priority int    `json:"priority"`
		Enabled  bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rules))
	require.NotEmpty(t, rules)

	ids := make(map[string]int)
	for _, r := range rules {
		ids[r.ID] = r.Priority
		assert.NotEmpty(t, r.Name)
		assert.True(t, r.Enabled, "built-in rule %s runs by default", r.ID)
	}
	assert.Less(t, ids["whitespace.trailing"], ids["js.var-to-let"])
	assert.Contains(t, ids, "md.emphasis-underscore")
}

func TestIntegration_RulesCommandWithFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ruleFormat string
		want       string
	}{
		{name: "id", ruleFormat: "id", want: "js.var-to-let"},
		{name: "combined", ruleFormat: "combined", want: "js.var-to-let ("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			output, err := execute(t, "rules", "--rule-format", tt.ruleFormat)
			require.NoError(t, err)
			assert.Contains(t, output, tt.want)
			assert.Contains(t, output, "available rules")
		})
	}
}

func TestIntegration_InitFull(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), ".gocleanup.yml")

	_, err := execute(t, "init", "--full", "--output", out)
	require.NoError(t, err)

	content := readFile(t, out)
	assert.Contains(t, content, "rules:")
	assert.Contains(t, content, "  js.var-to-let:\n    enabled: true\n")

	_, err = execute(t, "init", "--force", "--output", out)
	require.NoError(t, err)
	assert.NotContains(t, readFile(t, out), "    enabled: true\n", "minimal template after --force")
}

func TestIntegration_ConfigCommand(t *testing.T) {
	t.Parallel()

	cfgFile := writeConfig(t, "parser:\n  flavor: commonmark\nrules:\n  js.var-to-let:\n    enabled: false\n")

	output, err := execute(t, "config", "--no-env", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, output, "# gocleanup configuration merged from:")
	assert.Contains(t, output, "#   "+cfgFile+"\n")
	assert.Contains(t, output, "flavor: commonmark")
	assert.Contains(t, output, "  js.var-to-let:\n    enabled: false\n")

	bad := writeConfig(t, "backups:\n  mode: git\n")
	_, err = execute(t, "config", "--no-env", "--config", bad)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}
