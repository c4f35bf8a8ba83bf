//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binary  = "bin/gocleanup"
	mainPkg = "./cmd/gocleanup"
)

// Default target.
var Default = Build

// Aliases are short target names.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"fmt": Lint.Fmt,
	"dog": Dogfood,
}

type (
	Test st.Namespace
	Lint st.Namespace
	CI   st.Namespace
)

// Build compiles bin/gocleanup when a source file is newer than the binary.
func Build() error {
	stale, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !stale {
		fmt.Println(binary, "is up to date")
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, mainPkg)
}

// Install runs go install with version information.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall deletes the binary placed by Install.
func Uninstall() error {
	dir, err := installDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "gocleanup")
	switch err := os.Remove(path); {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("gocleanup is not installed")
	case err != nil:
		return fmt.Errorf("remove %s: %w", path, err)
	default:
		fmt.Println("removed", path)
	}
	return nil
}

// Check formats, lints and tests, in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes the binary and coverage output.
func Clean() error {
	for _, p := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// Dogfood checks that the repository's own Markdown is already clean.
func Dogfood() error {
	st.Deps(Build)
	return sh.RunV(binary, "run", "--check", "--color", "never",
		"--extensions", ".md", "--ignore", "_examples/**", ".")
}

// Default runs the race-enabled test suite with coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails")
}

// Verbose is Default with every test name printed.
func (Test) Verbose() error {
	return gotestsum("standard-verbose")
}

// Fuzz runs each edit fuzz target for FUZZTIME (default 20s).
func (Test) Fuzz() error {
	fuzztime := cmp.Or(os.Getenv("FUZZTIME"), "20s")
	for _, name := range []string{"FuzzUndoEdits", "FuzzMerge", "FuzzGenerateDiff"} {
		if err := sh.RunV("go", "test", "./pkg/fix", "-run", "^$", "-fuzz", "^"+name+"$", "-fuzztime", fuzztime); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Coverage renders coverage.out as HTML.
func (Test) Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

func gotestsum(format string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunV("go", "tool", "gotestsum", "-f", format, "--",
		"-race", "-p", procs, "-parallel", procs,
		"-coverprofile=coverage.out", "-covermode=atomic", "./...")
}

// Default runs golangci-lint and applies its fixes.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt rewrites Go files with gofmt.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", "cmd", "internal", "pkg", "stavefile.go")
}

// FmtCheck fails if any Go file is not gofmt-clean.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "stavefile.go")
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("not gofmt-clean (run stave lint:fmt):\n%s", out)
	}
	return nil
}

// Gate is what CI runs: no auto-fixes, and go.mod must be tidy.
func (CI) Gate() {
	st.SerialDeps(Lint.FmtCheck, CI.Vet, CI.Lint, Build, Test.Default, CI.ModTidy)
}

// Vet runs go vet.
func (CI) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint without fixes.
func (CI) Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// ModTidy fails if go mod tidy changes go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}
	before := make(map[string][]byte, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		before[f] = b
	}

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}

	for _, f := range files {
		after, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if !bytes.Equal(before[f], after) {
			return fmt.Errorf("%s is not tidy; commit the result of go mod tidy", f)
		}
	}
	return nil
}

func ldflags() string {
	git := func(args ...string) string {
		out, err := sh.Output("git", args...)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(out)
	}
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(git("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339))
}

// installDir is where go install puts binaries.
func installDir() (string, error) {
	if dir := os.Getenv("GOBIN"); dir != "" {
		return dir, nil
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		return filepath.Join(filepath.SplitList(gopath)[0], "bin"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "go", "bin"), nil
}
