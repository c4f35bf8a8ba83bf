package project

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

// Resolver maps documents to projects by walking up from each document's
// directory. Lookups are cached per directory and per manifest, so every
// document of a project shares one *cleanup.Project.
// A Resolver is safe for concurrent use.
type Resolver struct {
	fallback *cleanup.Project

	mu        sync.Mutex
	byDir     map[string]*cleanup.Project
	manifests map[string]*cleanup.Project
}

var _ cleanup.ProjectResolver = (*Resolver)(nil)

// NewResolver creates a resolver whose default project is rooted at workDir
// with options.
func NewResolver(workDir string, options cleanup.Options) *Resolver {
	return &Resolver{
		fallback: &cleanup.Project{
			Name:    cleanup.DefaultProjectName,
			Root:    workDir,
			Options: options.Clone(),
		},
		byDir:     make(map[string]*cleanup.Project),
		manifests: make(map[string]*cleanup.Project),
	}
}

// Default returns the project used for documents outside any manifest.
func (r *Resolver) Default() *cleanup.Project {
	return r.fallback
}

// Resolve implements cleanup.ProjectResolver.
func (r *Resolver) Resolve(doc *cleanup.Document) (*cleanup.Project, error) {
	dir, err := filepath.Abs(filepath.Dir(doc.Path))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", doc.Path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byDir[dir]; ok {
		return p, nil
	}

	path, ok, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		r.byDir[dir] = r.fallback
		return r.fallback, nil
	}

	p, ok := r.manifests[path]
	if !ok {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		if p, err = m.Project(); err != nil {
			return nil, err
		}
		r.manifests[path] = p
	}
	r.byDir[dir] = p
	return p, nil
}
