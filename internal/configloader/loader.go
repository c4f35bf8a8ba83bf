// Package configloader resolves the effective configuration of a run from
// config files, GOCLEANUP_* environment variables and command line flags.
package configloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Empty means the
	// process working directory.
	WorkingDir string

	// ExplicitPath is a file named with --config. It is loaded after the
	// discovered files.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// Registry validates rule IDs. Nil uses cleanup.DefaultRegistry.
	Registry *cleanup.Registry

	// CLIConfig holds flag values. It is applied last.
	CLIConfig *config.Config
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Config *config.Config
	Paths  *ConfigPaths

	// LoadedFrom lists the files merged, lowest precedence first.
	LoadedFrom []string

	// Warnings are non-fatal validation findings.
	Warnings []string
}

// Load builds the effective configuration. Each layer overrides the ones
// before it: defaults, system file, user file, project file, explicit file,
// environment, flags. The merged result is validated; the first error is
// returned as a *ValidationError.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	files := []struct {
		level string
		path  string
		skip  bool
	}{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	}

	res := &LoadResult{Paths: paths}
	cfg := config.NewConfig()
	for _, f := range files {
		if f.skip || f.path == "" {
			continue
		}
		layer, err := loadConfigFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", f.level, err)
		}
		cfg = merge(cfg, layer)
		res.LoadedFrom = append(res.LoadedFrom, f.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	cfg = merge(cfg, opts.CLIConfig)

	v := Validate(cfg, opts.Registry)
	if !v.Valid() {
		return nil, &v.Errors[0]
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, w.Error())
	}

	res.Config = cfg
	return res, nil
}

// loadConfigFile decodes one YAML file. Unknown keys are errors. An empty
// file yields an empty config.
func loadConfigFile(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg config.Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: parse YAML: %w", path, err)
	}
	return &cfg, nil
}
