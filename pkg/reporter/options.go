package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowPasses lists the passes and contributing rules of each change.
	ShowPasses bool

	// ShowUnchanged lists files that needed no change.
	ShowUnchanged bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat config.RuleFormat

	// Registry resolves rule names. Nil uses cleanup.DefaultRegistry.
	Registry *cleanup.Registry
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Format:      FormatText,
		Color:       "auto",
		ShowPasses:  true,
		ShowSummary: true,
		RuleFormat:  config.RuleFormatID,
	}
}

func (o Options) registry() *cleanup.Registry {
	if o.Registry == nil {
		return cleanup.DefaultRegistry
	}
	return o.Registry
}

// ruleName returns the display name of a rule, or "" if it is unknown.
func (o Options) ruleName(id string) string {
	if rule, ok := o.registry().Get(id); ok {
		return rule.Name()
	}
	return ""
}
