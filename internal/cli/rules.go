package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/config"
)

const formatJSON = "json"

// ruleInfo is one entry of `rules --format json`.
type ruleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Enabled     bool   `json:"enabled"`
}

func newRulesCommand() *cobra.Command {
	var format, ruleFormat string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available clean up rules",
		Long: `List the registered clean up rules in priority order. When the fixes of
two rules overlap, the earlier rule wins and the later one is retried in the
next pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := collectRuleInfo(cleanup.DefaultRegistry)
			switch format {
			case formatJSON:
				return writeRulesJSON(cmd.OutOrStdout(), infos)
			case "text":
			default:
				return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid --format %q; must be text or json", format))
			}

			rf := config.RuleFormat(ruleFormat)
			if !slices.Contains([]config.RuleFormat{config.RuleFormatID, config.RuleFormatName, config.RuleFormatCombined}, rf) {
				return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid --rule-format %q; must be id, name or combined", ruleFormat))
			}
			writeRulesText(logging.NewWithWriter(cmd.OutOrStdout(), "info"), infos, rf)
			return nil
		},
	}

	cmd.Flags().StringVar(&ruleFormat, "rule-format", string(config.RuleFormatCombined),
		"rule identifier format in output: name, id, or combined")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}

// collectRuleInfo lists the rules of registry in priority order. A rule is
// enabled when it runs with an empty configuration.
func collectRuleInfo(registry *cleanup.Registry) []ruleInfo {
	defaults := make(map[string]bool)
	for _, rule := range registry.Build(nil) {
		defaults[rule.ID()] = true
	}

	var infos []ruleInfo
	for i, rule := range registry.Rules() {
		infos = append(infos, ruleInfo{
			ID:          rule.ID(),
			Name:        rule.Name(),
			Description: rule.Description(),
			Priority:    i + 1,
			Enabled:     defaults[rule.ID()],
		})
	}
	return infos
}

func writeRulesText(logger *log.Logger, infos []ruleInfo, rf config.RuleFormat) {
	if len(infos) == 0 {
		logger.Info("no rules registered")
		return
	}
	logger.Info("available rules")
	for _, info := range infos {
		enabled := "-"
		if info.Enabled {
			enabled = "yes"
		}
		logger.Info(config.FormatRuleID(rf, info.ID, info.Name),
			"priority", info.Priority,
			"enabled", enabled,
			logging.FieldDescription, info.Description,
		)
	}
}

func writeRulesJSON(w io.Writer, infos []ruleInfo) error {
	if infos == nil {
		infos = []ruleInfo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return nil
}
