// Package project resolves the clean up project a document belongs to.
//
// A project is the directory holding a gocleanup.toml manifest. Its
// [options] table supplies the parser options shared by every document
// below it. Documents outside any project fall back to a default project
// rooted at the working directory.
package project

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

// ManifestName is the file name of a project manifest.
const ManifestName = "gocleanup.toml"

var (
	// ErrManifestSyntax is returned when a manifest is not valid TOML.
	ErrManifestSyntax = errors.New("invalid manifest syntax")

	// ErrInvalidManifest is returned for valid TOML that does not describe
	// a project: unknown keys, unsupported option values or an empty name.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Manifest is a decoded gocleanup.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest layout.
type Config struct {
	Project ProjectConfig  `toml:"project"`
	Options map[string]any `toml:"options"`
}

// ProjectConfig is the [project] table.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// Find walks up from startDir to locate gocleanup.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the manifest at path. Errors wrap ErrManifestSyntax or
// ErrInvalidManifest.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrManifestSyntax, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidManifest, err)
	}

	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}
	// Option values are checked first so a nested [options] table reports
	// its type, whatever the decoder counts as undecoded below it.
	if _, err := m.Options(); err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: %w: unknown keys: %s", path, ErrInvalidManifest, strings.Join(keys, ", "))
	}
	if meta.IsDefined("project", "name") && strings.TrimSpace(cfg.Project.Name) == "" {
		return nil, fmt.Errorf("%s: %w: [project].name must not be empty", path, ErrInvalidManifest)
	}
	return m, nil
}

// Name returns [project].name, or the root directory name when unset.
func (m *Manifest) Name() string {
	if name := strings.TrimSpace(m.Config.Project.Name); name != "" {
		return name
	}
	return filepath.Base(m.Root)
}

// Options converts the [options] table to parser options. Strings, booleans,
// and numbers are accepted; nested tables and arrays are not.
func (m *Manifest) Options() (cleanup.Options, error) {
	opts := make(cleanup.Options, len(m.Config.Options))
	for _, key := range slices.Sorted(maps.Keys(m.Config.Options)) {
		switch v := m.Config.Options[key].(type) {
		case string:
			opts[key] = v
		case bool:
			opts[key] = strconv.FormatBool(v)
		case int64:
			opts[key] = strconv.FormatInt(v, 10)
		case float64:
			opts[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("%s: %w: [options].%s: unsupported value type %T", m.Path, ErrInvalidManifest, key, v)
		}
	}
	return opts, nil
}

// Project converts the manifest to a cleanup.Project.
func (m *Manifest) Project() (*cleanup.Project, error) {
	opts, err := m.Options()
	if err != nil {
		return nil, err
	}
	return &cleanup.Project{Name: m.Name(), Root: m.Root, Options: opts}, nil
}
