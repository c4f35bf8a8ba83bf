package analysis

import (
	"slices"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
)

// SortField orders Report.ByRule.
type SortField string

// Sort fields. Ties are always broken by rule ID.
const (
	SortByCount    SortField = "count"
	SortByAlpha    SortField = "alpha"
	SortBySeverity SortField = "severity"
)

// IsValid reports whether s is a known sort field.
func (s SortField) IsValid() bool {
	return slices.Contains([]SortField{SortByCount, SortByAlpha, SortBySeverity}, s)
}

// Options selects the parts of a Report that Analyze fills in.
type Options struct {
	IncludeDiagnostics bool
	IncludeFiles       bool
	IncludeByRule      bool

	// IncludeUnchanged also lists files with no change and no diagnostics.
	IncludeUnchanged bool

	// IncludeDiffStats diffs every change to count added and removed lines.
	IncludeDiffStats bool

	// SortBy orders ByRule. SortDesc only affects SortByCount.
	SortBy   SortField
	SortDesc bool

	RuleFormat config.RuleFormat

	// Registry resolves rule names; nil means cleanup.DefaultRegistry.
	Registry *cleanup.Registry
}

// DefaultOptions fills in every view, with the busiest rules first.
func DefaultOptions() Options {
	return Options{
		IncludeDiagnostics: true,
		IncludeFiles:       true,
		IncludeByRule:      true,
		IncludeDiffStats:   true,
		SortBy:             SortByCount,
		SortDesc:           true,
		RuleFormat:         config.RuleFormatID,
	}
}

func (o Options) registry() *cleanup.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return cleanup.DefaultRegistry
}
