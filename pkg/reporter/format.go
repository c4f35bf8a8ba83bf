package reporter

import (
	"fmt"
	"slices"
	"strings"
)

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatDiff    Format = "diff"
	FormatSummary Format = "summary"
)

//nolint:gochecknoglobals // Read-only lookup table.
var formats = []Format{FormatText, FormatJSON, FormatDiff, FormatSummary}

// ParseFormat parses s. An empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	if f := Format(s); f.IsValid() {
		return f, nil
	}

	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", s, strings.Join(names, ", "))
}

func (f Format) String() string { return string(f) }

// IsValid reports whether f is one of the supported formats.
func (f Format) IsValid() bool {
	return slices.Contains(formats, f)
}
