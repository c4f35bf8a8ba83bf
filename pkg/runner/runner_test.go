package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
	"github.com/yaklabco/gocleanup/pkg/parser"
	"github.com/yaklabco/gocleanup/pkg/runner"
)

const (
	dirtyJS   = "var s = \"x\";\nif (s) f();  \n\n"
	cleanJS   = "let s = 'x';\nif (s) { f(); }\n"
	dirtyMD   = "# Title \n\nSome *text*."
	cleanMD   = "# Title\n\nSome _text_.\n"
	alreadyMD = "# Done\n"
)

func newRunner() *runner.Runner {
	return runner.New(parser.Default("gfm"))
}

func builtinRegistry() *cleanup.Registry {
	reg := cleanup.NewRegistry()
	rules.Register(reg)
	return reg
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := parser.Default("gfm")
	r := runner.New(p)
	assert.Same(t, p, r.Parser)
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result, err := newRunner().Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.Empty(t, result.RunID)
	assert.False(t, result.HasChanges())
}

func TestRunner_Run_DryRun(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"src/app.js": dirtyJS,
		"README.md":  dirtyMD,
		"done.md":    alreadyMD,
	})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Stats.FilesDiscovered)
	assert.Equal(t, 3, result.Stats.FilesProcessed)
	assert.Equal(t, 2, result.Stats.FilesChanged)
	assert.Zero(t, result.Stats.FilesWritten)

	// Files are ordered by path.
	require.Len(t, result.Files, 3)
	assert.Equal(t, "README.md", result.Files[0].RelPath)
	assert.Equal(t, "done.md", result.Files[1].RelPath)
	assert.Equal(t, "src/app.js", result.Files[2].RelPath)

	js, ok := result.File("src/app.js")
	require.True(t, ok)
	assert.Equal(t, "javascript", js.Language)
	require.True(t, js.Changed())
	assert.Equal(t, cleanJS, string(js.Change.Preview()))

	md, ok := result.File("README.md")
	require.True(t, ok)
	assert.Equal(t, "markdown", md.Language)
	assert.Equal(t, cleanMD, string(md.Change.Preview()))

	done, ok := result.File("done.md")
	require.True(t, ok)
	assert.False(t, done.Changed())

	// Nothing touched on disk.
	assert.Equal(t, dirtyJS, readFile(t, dir, "src/app.js"))
	assert.Equal(t, dirtyMD, readFile(t, dir, "README.md"))
}

func TestRunner_Run_Write(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"src/app.js": dirtyJS,
		"README.md":  dirtyMD,
		"done.md":    alreadyMD,
	})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
		Write:      true,
		Backup:     fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.FilesWritten)
	assert.Equal(t, cleanJS, readFile(t, dir, "src/app.js"))
	assert.Equal(t, cleanMD, readFile(t, dir, "README.md"))
	assert.Equal(t, alreadyMD, readFile(t, dir, "done.md"))

	assert.Equal(t, dirtyJS, readFile(t, dir, "src/app.js"+fsutil.BackupSuffix))
	assert.False(t, fsutil.BackupExists(filepath.Join(dir, "done.md"), fsutil.BackupModeSidecar))

	// A second run finds nothing left to do.
	again, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
		Write:      true,
	})
	require.NoError(t, err)
	assert.Zero(t, again.Stats.FilesChanged)
}

func TestRunner_Run_LeaveDirty(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.js": dirtyJS})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
		Write:      true,
		LeaveDirty: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	outcome := result.Files[0]
	require.True(t, outcome.Changed())
	assert.Equal(t, cleanup.LeaveDirty, outcome.Change.SaveMode())
	assert.False(t, outcome.Skipped)
	assert.False(t, outcome.Written)
	assert.Equal(t, runner.StatusChanged, outcome.Status())
	assert.Zero(t, result.Stats.FilesSkipped)
	assert.Equal(t, 1, result.Stats.FilesChanged)
	assert.Equal(t, dirtyJS, readFile(t, dir, "app.js"))
}

func TestRunner_Run_ModifiedDuringRun(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"notes.txt": "hello  \n"})
	path := filepath.Join(dir, "notes.txt")

	var once sync.Once
	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
		Write:      true,
		Progress: func(cleanup.ProgressEvent) {
			once.Do(func() {
				_ = os.WriteFile(path, []byte("edited elsewhere\n"), 0o644)
			})
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Skipped)
	assert.Equal(t, 1, result.Stats.FilesSkipped)
	assert.Zero(t, result.Stats.FilesWritten)
	assert.Equal(t, "edited elsewhere\n", readFile(t, dir, "notes.txt"))
}

func TestRunner_Run_Settings(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"notes.txt": "hello  \n\n\n"})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
		Settings: cleanup.Options{
			cleanup.SettingKey(rules.FinalNewlineID): "false",
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	require.True(t, result.Files[0].Changed())
	assert.Equal(t, "hello\n\n\n", string(result.Files[0].Change.Preview()))
}

func TestRunner_Run_ParseError(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"broken.js": "var x = ;\n",
		"ok.js":     "var y = 1;\n",
	})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
	})
	require.NoError(t, err)

	broken, ok := result.File("broken.js")
	require.True(t, ok)
	assert.True(t, result.HasFailures())

	var kinds []cleanup.DiagnosticKind
	for _, d := range broken.Diagnostics {
		kinds = append(kinds, d.Kind)
		assert.Equal(t, "broken.js", d.DocumentID)
	}
	assert.Contains(t, kinds, cleanup.KindParseError)

	fine, ok := result.File("ok.js")
	require.True(t, ok)
	require.True(t, fine.Changed())
	assert.Equal(t, "let y = 1;\n", string(fine.Change.Preview()))
}

func TestRunner_Run_ProjectManifest(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"tiny/gocleanup.toml": "[project]\nname = \"tiny\"\n\n[options]\n\"parser.max-file-size\" = 4\n",
		"tiny/app.js":         "var x = 1;\n",
		"main/app.js":         "var x = 1;\n",
	})

	result, err := newRunner().Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Registry:   builtinRegistry(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Engine.Projects)

	// The tiny project caps parsed files at four bytes.
	tiny, ok := result.File("tiny/app.js")
	require.True(t, ok)
	assert.False(t, tiny.Changed())
	require.NotEmpty(t, tiny.Diagnostics)
	assert.Equal(t, cleanup.KindParseError, tiny.Diagnostics[0].Kind)

	main, ok := result.File("main/app.js")
	require.True(t, ok)
	require.True(t, main.Changed())
	assert.Equal(t, "let x = 1;\n", string(main.Change.Preview()))
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	files := make(map[string]string)
	for _, name := range []string{"a.js", "b.md", "c/d.js", "c/e.txt", "f/g/h.md"} {
		files[name] = dirtyJS
	}
	files["b.md"] = dirtyMD
	files["f/g/h.md"] = dirtyMD
	dir := writeTree(t, files)

	run := func(jobs int) *runner.Result {
		result, err := newRunner().Run(context.Background(), runner.Options{
			WorkingDir:   dir,
			Registry:     builtinRegistry(),
			Jobs:         jobs,
			MemoryBudget: 1,
		})
		require.NoError(t, err)
		return result
	}

	serial, parallel := run(1), run(8)
	require.Len(t, parallel.Files, len(serial.Files))
	for i := range serial.Files {
		s, p := serial.Files[i], parallel.Files[i]
		assert.Equal(t, s.RelPath, p.RelPath)
		require.Equal(t, s.Changed(), p.Changed(), s.RelPath)
		if s.Changed() {
			assert.Equal(t, string(s.Change.Preview()), string(p.Change.Preview()), s.RelPath)
		}
	}
	assert.Equal(t, serial.Stats.FilesChanged, parallel.Stats.FilesChanged)
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.js": dirtyJS, "b.md": dirtyMD})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner().Run(ctx, runner.Options{WorkingDir: dir, Registry: builtinRegistry()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, cleanup.ErrCancelled), err)
}

func TestResult_HasFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *runner.Result
		want   bool
	}{
		{name: "nil", result: nil, want: false},
		{name: "clean", result: &runner.Result{}, want: false},
		{name: "errored file", result: &runner.Result{Stats: runner.Stats{FilesErrored: 1}}, want: true},
		{name: "error diagnostic", result: &runner.Result{Stats: runner.Stats{Errors: 2}}, want: true},
		{name: "warnings only", result: &runner.Result{Stats: runner.Stats{Warnings: 3}}, want: false},
		{name: "run error", result: &runner.Result{Errors: []error{errors.New("boom")}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.result.HasFailures())
		})
	}
}

func TestResult_HasChanges(t *testing.T) {
	t.Parallel()

	var nilResult *runner.Result
	assert.False(t, nilResult.HasChanges())
	assert.False(t, (&runner.Result{}).HasChanges())
	assert.True(t, (&runner.Result{Stats: runner.Stats{FilesChanged: 1}}).HasChanges())
}
