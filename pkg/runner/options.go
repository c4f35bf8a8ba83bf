// Package runner discovers source files, runs the clean up engine over them
// and writes the results back to disk.
package runner

import (
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
)

// Options controls a multi-file clean up run. The zero value cleans the
// working directory as a dry run.
type Options struct {
	// Paths are files or directories to process, relative to WorkingDir.
	// Empty means ".".
	Paths      []string
	WorkingDir string

	// Extensions are lowercase with a leading dot. Empty means
	// DefaultExtensions.
	Extensions []string

	// IncludeGlobs, when set, restrict discovery to matching paths.
	// ExcludeGlobs skip files and whole directories.
	IncludeGlobs []string
	ExcludeGlobs []string

	FollowSymlinks bool
	NoGitignore    bool

	// Jobs bounds concurrent reads; <= 0 uses runtime.NumCPU.
	Jobs int

	// MemoryBudget caps a parse batch in bytes; 0 leaves it to the engine.
	MemoryBudget uint64

	// Write saves changes. LeaveDirty marks every change leave-dirty, so it
	// is reported but never saved.
	Write      bool
	LeaveDirty bool
	Backup     fsutil.BackupConfig

	// Settings configure the rules. ParserOptions apply to documents that
	// belong to no project manifest.
	Settings      cleanup.Options
	ParserOptions cleanup.Options
	Flavor        string

	// Registry supplies the rules; nil means cleanup.DefaultRegistry.
	Registry *cleanup.Registry

	Progress func(cleanup.ProgressEvent)
}

// DefaultExtensions are the extensions processed when none are configured.
func DefaultExtensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".md", ".markdown", ".txt"}
}

func (o Options) extensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return DefaultExtensions()
}

func (o Options) paths() []string {
	if len(o.Paths) > 0 {
		return o.Paths
	}
	return []string{"."}
}

func (o Options) registry() *cleanup.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return cleanup.DefaultRegistry
}
