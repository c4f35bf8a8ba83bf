package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

const appName = "gocleanup"

// ConfigPaths are the configuration files found for one run. Empty fields
// mean no file was found at that level.
type ConfigPaths struct {
	System   string
	User     string
	Project  string
	Explicit string
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	// projectFiles are tried in each directory in this order.
	projectFiles = []string{".gocleanup.yml", ".gocleanup.yaml", "gocleanup.yml", "gocleanup.yaml"}

	// globalFiles are tried in the system and user config directories.
	globalFiles = []string{"config.yaml", "config.yml"}

	vcsMarkers = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths locates the system, user and project config files for a run
// started in workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("config discovery cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	paths := &ConfigPaths{Project: project}
	if dir := systemConfigDir(); dir != "" {
		paths.System = firstFile(dir, globalFiles)
	}
	if dir := userConfigDir(); dir != "" {
		paths.User = firstFile(dir, globalFiles)
	}
	return paths, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	base := os.Getenv("ProgramData")
	if base == "" {
		base = `C:\ProgramData`
	}
	return filepath.Join(base, appName)
}

// userConfigDir follows the XDG base directory layout on every platform.
func userConfigDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// FindProjectConfig walks up from startDir and returns the first project
// config file found. The walk ends after the first directory that is a VCS
// root or the home directory; it returns "" when nothing was found.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, err := resolveWorkDir(startDir)
	if err != nil {
		return "", err
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("config discovery cancelled: %w", err)
		}
		if found := firstFile(dir, projectFiles); found != "" {
			return found, nil
		}
		if dir == home || slices.ContainsFunc(vcsMarkers, func(m string) bool { return isDir(filepath.Join(dir, m)) }) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func resolveWorkDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
