// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorModes lists the accepted color modes.
var ColorModes = []string{ColorAuto, ColorAlways, ColorNever}

// ANSI 256 palette indexes.
const (
	ansiRed     = "9"
	ansiGreen   = "10"
	ansiYellow  = "11"
	ansiBlue    = "12"
	ansiMagenta = "13"
	ansiCyan    = "14"
	ansiGray    = "8"
	ansiWhite   = "7"
)

// Styles holds every style used for terminal output.
type Styles struct {
	// Diagnostics.
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	FilePath lipgloss.Style
	RuleID   lipgloss.Style
	Kind     lipgloss.Style
	Message  lipgloss.Style

	// Per-file outcome.
	Changed lipgloss.Style
	Written lipgloss.Style
	Skipped lipgloss.Style

	// Diffs.
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Summaries and tables.
	SummaryTitle   lipgloss.Style
	SummaryValue   lipgloss.Style
	Success        lipgloss.Style
	Failure        lipgloss.Style
	TableHeader    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableSeparator lipgloss.Style

	// Command help.
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Alias       lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// palette builds styles, dropping every attribute when color is off.
type palette struct {
	color bool
}

func (p palette) plain() lipgloss.Style {
	return lipgloss.NewStyle()
}

func (p palette) fg(c string) lipgloss.Style {
	if !p.color {
		return p.plain()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func (p palette) bold(c string) lipgloss.Style {
	if !p.color {
		return p.plain()
	}
	s := lipgloss.NewStyle().Bold(true)
	if c != "" {
		s = s.Foreground(lipgloss.Color(c))
	}
	return s
}

// NewStyles returns the output styles; with colorEnabled false every style
// renders text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	p := palette{color: colorEnabled}

	return &Styles{
		Error:    p.bold(ansiRed),
		Warning:  p.bold(ansiYellow),
		Info:     p.bold(ansiBlue),
		FilePath: p.bold(""),
		RuleID:   p.fg(ansiGray),
		Kind:     p.fg(ansiMagenta),
		Message:  p.plain(),

		Changed: p.fg(ansiCyan),
		Written: p.fg(ansiGreen),
		Skipped: p.fg(ansiYellow),

		DiffHeader:  p.bold(""),
		DiffHunk:    p.fg(ansiCyan),
		DiffAdd:     p.fg(ansiGreen),
		DiffRemove:  p.fg(ansiRed),
		DiffContext: p.fg(ansiGray),

		SummaryTitle:   p.bold(""),
		SummaryValue:   p.plain(),
		Success:        p.bold(ansiGreen),
		Failure:        p.bold(ansiRed),
		TableHeader:    p.bold(ansiWhite),
		TableErrorRow:  p.fg(ansiRed),
		TableWarnRow:   p.fg(ansiYellow),
		TableSeparator: p.fg(ansiGray),

		Command:     p.bold(ansiCyan),
		Heading:     p.bold(ansiYellow),
		Subcommand:  p.fg(ansiGreen),
		Flag:        p.fg(ansiBlue),
		Description: p.plain(),
		Example:     p.fg(ansiGray),
		Alias:       p.fg(ansiGray),

		Dim:  p.fg(ansiGray),
		Bold: p.bold(""),
	}
}

// ValidateColorMode rejects anything but auto, always, or never.
// The empty string is treated as auto.
func ValidateColorMode(mode string) error {
	if mode == "" || slices.Contains(ColorModes, mode) {
		return nil
	}
	return fmt.Errorf("invalid color mode %q (want one of %v)", mode, ColorModes)
}

// IsColorEnabled resolves mode for writer. In auto mode color is used only
// when writer is a terminal and NO_COLOR is unset. Unknown modes act as auto.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
