package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs are directory names never descended into.
var skipDirs = []string{"node_modules", "vendor", "dist", "build", "coverage"}

// globSet is a list of compiled patterns matched against slash-separated
// paths relative to the working directory.
type globSet []glob.Glob

// compileGlobs compiles patterns with '/' as the separator, so "*" stays
// inside one path segment and "**" crosses segments. A leading "**/" also
// matches at the top level, and a trailing "/**" also matches the directory.
func compileGlobs(patterns []string) (globSet, error) {
	var set globSet
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		variants := []string{pattern}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok && rest != "" {
			variants = append(variants, rest)
		}
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok && dir != "" {
			variants = append(variants, dir)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("compile glob %q: %w", pattern, err)
			}
			set = append(set, g)
		}
	}
	return set, nil
}

// match reports whether rel or its base name matches any pattern.
func (s globSet) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, g := range s {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// walker collects the files of one discovery run.
type walker struct {
	workDir    string
	extensions []string
	include    globSet
	exclude    globSet
	gitignore  *ignore.GitIgnore
	follow     bool

	seen    map[string]struct{}
	visited map[string]struct{} // resolved directories already walked
	files   []string
}

func newWalker(opts Options) (*walker, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	include, err := compileGlobs(opts.IncludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	exclude, err := compileGlobs(opts.ExcludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	w := &walker{
		workDir: workDir,
		include: include,
		exclude: exclude,
		follow:  opts.FollowSymlinks,
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
	for _, ext := range opts.extensions() {
		w.extensions = append(w.extensions, strings.ToLower(ext))
	}
	if !opts.NoGitignore {
		w.gitignore = loadGitignore(workDir)
	}
	return w, nil
}

// Discover finds source files matching opts under the given working directory.
// Files ignored by the working directory's .gitignore are skipped unless
// opts.NoGitignore is set; files named explicitly are always considered.
// It returns a sorted, duplicate-free list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	w, err := newWalker(opts)
	if err != nil {
		return nil, err
	}

	for _, input := range opts.paths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(w.workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			if w.wantFile(abs) {
				w.add(abs)
			}
			continue
		}
		if err := w.walk(ctx, abs); err != nil {
			return nil, err
		}
	}

	slices.Sort(w.files)
	return w.files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// loadGitignore compiles root/.gitignore, or returns nil if there is none.
func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

func (w *walker) rel(p string) string {
	rel, err := filepath.Rel(w.workDir, p)
	if err != nil {
		return p
	}
	return rel
}

// gitignored reports whether rel is excluded by .gitignore. Paths outside
// the working directory are never ignored.
func (w *walker) gitignored(rel string, isDir bool) bool {
	if w.gitignore == nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir && w.gitignore.MatchesPath(rel+"/") {
		return true
	}
	return w.gitignore.MatchesPath(rel)
}

// wantFile applies the extension, exclude and include filters to a file.
func (w *walker) wantFile(p string) bool {
	if !slices.Contains(w.extensions, strings.ToLower(filepath.Ext(p))) {
		return false
	}
	rel := w.rel(p)
	if w.exclude.match(rel) {
		return false
	}
	return len(w.include) == 0 || w.include.match(rel)
}

func (w *walker) add(p string) {
	if _, dup := w.seen[p]; dup {
		return
	}
	w.seen[p] = struct{}{}
	w.files = append(w.files, p)
}

// skipDir reports whether a directory below the walk root is pruned.
func (w *walker) skipDir(name, rel string) bool {
	return strings.HasPrefix(name, ".") ||
		slices.Contains(skipDirs, name) ||
		w.gitignored(rel, true) ||
		w.exclude.match(rel)
}

// walk descends into root. Permission errors are skipped; broken symlinks
// are ignored; directory symlinks are followed only when enabled and each
// resolved directory is walked once.
func (w *walker) walk(ctx context.Context, root string) error {
	if real, err := filepath.EvalSymlinks(root); err == nil {
		if _, done := w.visited[real]; done {
			return nil
		}
		w.visited[real] = struct{}{}
	}

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if p != root && w.skipDir(entry.Name(), w.rel(p)) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(p)
			if statErr != nil {
				return nil //nolint:nilerr // broken or unreadable links are skipped
			}
			if target.IsDir() {
				if !w.follow {
					return nil
				}
				real, evalErr := filepath.EvalSymlinks(p)
				if evalErr != nil {
					return nil //nolint:nilerr // link vanished between stat and eval
				}
				return w.walk(ctx, real)
			}
		}

		if !w.gitignored(w.rel(p), false) && w.wantFile(p) {
			w.add(p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}
