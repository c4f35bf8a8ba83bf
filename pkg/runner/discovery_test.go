package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/runner"
)

// files creates each name with placeholder content.
func files(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = "x"
	}
	return m
}

// relAll converts discovered paths back to slash paths relative to dir.
func relAll(t *testing.T, dir string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tree  map[string]string
		opts  runner.Options
		want  []string
		paths []string
	}{
		{
			name: "default extensions",
			tree: files("readme.md", "docs/guide.md", "docs/api.markdown", "src/main.go",
				"src/app.js", "src/lib.mjs", "src/cfg.cjs", "src/view.jsx", "notes.txt", "logo.png"),
			want: []string{"docs/api.markdown", "docs/guide.md", "notes.txt", "readme.md",
				"src/app.js", "src/cfg.cjs", "src/lib.mjs", "src/view.jsx"},
		},
		{
			name: "custom extensions ignore case",
			tree: files("a.md", "b.JS", "c.txt", "d.mdx"),
			opts: runner.Options{Extensions: []string{".mdx", ".js"}},
			want: []string{"b.JS", "d.mdx"},
		},
		{
			name: "exclude directory and file patterns",
			tree: files("readme.md", "generated/pkg/doc.md", "lib/bundle.min.js", "lib/index.js", "docs/guide.md"),
			opts: runner.Options{ExcludeGlobs: []string{"generated/**", "*.min.js"}},
			want: []string{"docs/guide.md", "lib/index.js", "readme.md"},
		},
		{
			name: "exclude anywhere",
			tree: files("app.js", "test/fixtures/a.js", "fixtures/b.js"),
			opts: runner.Options{ExcludeGlobs: []string{"**/fixtures"}},
			want: []string{"app.js"},
		},
		{
			name: "exclude with alternatives",
			tree: files("a.md", "b.txt", "c.js"),
			opts: runner.Options{ExcludeGlobs: []string{"*.{md,txt}"}},
			want: []string{"c.js"},
		},
		{
			name: "include limits files",
			tree: files("readme.md", "docs/guide.md", "docs/api.md", "src/readme.md"),
			opts: runner.Options{IncludeGlobs: []string{"docs/**"}},
			want: []string{"docs/api.md", "docs/guide.md"},
		},
		{
			name: "hidden files and directories",
			tree: files("readme.md", ".hidden.md", ".git/config.md", "docs/.secret.md"),
			want: []string{"readme.md"},
		},
		{
			name: "dependency and build directories",
			tree: files("index.js", "node_modules/left-pad/index.js", "vendor/lib.js",
				"dist/bundle.js", "build/out.js", "coverage/lcov.js", "pkg/module.js"),
			want: []string{"index.js", "pkg/module.js"},
		},
		{
			name: "gitignore",
			tree: map[string]string{
				".gitignore":     "tmp/\n*.gen.js\n",
				"app.js":         "var a;",
				"app.gen.js":     "var b;",
				"tmp/scratch.md": "# scratch",
				"docs/readme.md": "# docs",
			},
			want: []string{"app.js", "docs/readme.md"},
		},
		{
			name: "gitignore disabled",
			tree: map[string]string{
				".gitignore":     "tmp/\n*.gen.js\n",
				"app.js":         "var a;",
				"app.gen.js":     "var b;",
				"tmp/scratch.md": "# scratch",
			},
			opts: runner.Options{NoGitignore: true},
			want: []string{"app.gen.js", "app.js", "tmp/scratch.md"},
		},
		{
			name:  "explicit file bypasses gitignore",
			tree:  map[string]string{".gitignore": "*.gen.js\n", "app.gen.js": "var b;"},
			paths: []string{"app.gen.js"},
			want:  []string{"app.gen.js"},
		},
		{
			name:  "explicit file still needs a known extension",
			tree:  files("logo.png"),
			paths: []string{"logo.png"},
			want:  []string{},
		},
		{
			name:  "deduplicated paths",
			tree:  files("readme.md", "docs/a.md"),
			paths: []string{"readme.md", "./readme.md", ".", "docs"},
			want:  []string{"docs/a.md", "readme.md"},
		},
		{
			name:  "several roots",
			tree:  files("docs/readme.md", "guides/readme.md", "notes/readme.md"),
			paths: []string{"guides", "docs"},
			want:  []string{"docs/readme.md", "guides/readme.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeTree(t, tt.tree)
			opts := tt.opts
			opts.WorkingDir = dir
			opts.Paths = tt.paths

			discovered, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relAll(t, dir, discovered))
		})
	}
}

func TestDiscover_AbsolutePaths(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, files("z.md", "a.md", "m.md"))

	discovered, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	require.Len(t, discovered, 3)
	for _, p := range discovered {
		assert.True(t, filepath.IsAbs(p), p)
	}
	assert.Equal(t, filepath.Join(dir, "a.md"), discovered[0])
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, files("a.md"))

	_, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir, Paths: []string{"missing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat missing")

	_, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, ExcludeGlobs: []string{"[oops"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude patterns")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, files("real.md", "real/doc.md"))
	external := writeTree(t, files("external.md"))

	if err := os.Symlink(filepath.Join(dir, "real.md"), filepath.Join(dir, "link.md")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(external, filepath.Join(dir, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.md"), filepath.Join(dir, "broken.md")))
	// A loop back to the root must not recurse forever.
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "real", "loop")))

	discovered, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.md", "real.md", "real/doc.md"}, relAll(t, dir, discovered))

	discovered, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)

	var names []string
	for _, p := range discovered {
		names = append(names, filepath.Base(p))
	}
	assert.ElementsMatch(t, []string{"doc.md", "external.md", "link.md", "real.md"}, names)
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t,
		[]string{".js", ".mjs", ".cjs", ".jsx", ".md", ".markdown", ".txt"},
		runner.DefaultExtensions())
}
