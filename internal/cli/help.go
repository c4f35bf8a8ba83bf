package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/gocleanup/internal/configloader"
	"github.com/yaklabco/gocleanup/internal/ui/pretty"
)

const helpColumnGap = "   "

// HelpFormatter renders colored help and usage text for Cobra commands.
// Colour is decided per render from the parsed --color flag and the
// command's output writer.
type HelpFormatter struct {
	colorMode string
}

// NewHelpFormatter returns a formatter that falls back to colorMode when a
// command has no --color flag.
func NewHelpFormatter(colorMode string) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode}
}

// colorEnabled decides colour for help of c written to w.
func (h *HelpFormatter) colorEnabled(c *cobra.Command, w io.Writer) bool {
	mode := h.colorMode
	if f := c.Flag("color"); f != nil {
		mode = f.Value.String()
	}
	return pretty.IsColorEnabled(mode, w)
}

// helpPage renders one help or usage text with fixed styles.
type helpPage struct {
	styles *pretty.Styles
}

func (h helpPage) funcs() template.FuncMap {
	s := h.styles
	return template.FuncMap{
		"styleCommand":            s.Command.Render,
		"styleHeading":            s.Heading.Render,
		"styleSubcommand":         s.Subcommand.Render,
		"styleDescription":        s.Description.Render,
		"styleExample":            s.Example.Render,
		"styleAlias":              s.Alias.Render,
		"styleDim":                s.Dim.Render,
		"flagUsages":              h.flagUsages,
		"envUsage":                h.envUsage,
		"join":                    strings.Join,
		"rpad":                    rpad,
		"trimTrailingWhitespaces": trimTrailingWhitespaces,
	}
}

const usageTemplate = `{{ styleHeading "Usage:" }}
  {{if .Runnable}}{{ styleCommand .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ styleCommand .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ styleHeading "Aliases:" }}
  {{ styleAlias (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ styleHeading "Examples:" }}
{{ styleExample .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ styleHeading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ styleSubcommand (rpad .Name .NamePadding) }} {{ styleDescription .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ styleHeading "Flags:" }}
{{ flagUsages .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ styleHeading "Global Flags:" }}
{{ flagUsages .InheritedFlags }}
{{- end}}

{{- if not .HasParent}}

{{ styleHeading "Environment:" }}
{{ envUsage }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Run "{{ styleCommand (print .CommandPath " [command] --help") }}" for details on a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ styleCommand .CommandPath }}{{if .Version}} {{ styleDim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces }}

{{end}}` + usageTemplate

// flagRow is one line of flag help before styling.
type flagRow struct {
	short   string
	long    string
	varname string
	usage   string
}

func (r flagRow) width() int {
	w := len("-x, --") + len(r.long)
	if r.varname != "" {
		w += 1 + len(r.varname)
	}
	return w
}

// flagUsages lists the visible flags of fs in a two-column layout.
func (h helpPage) flagUsages(fs *pflag.FlagSet) string {
	var rows []flagRow
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		varname, usage := pflag.UnquoteUsage(f)
		if f.Value.Type() == "bool" {
			varname = ""
		}
		if def := flagDefault(f); def != "" {
			usage += " (default " + def + ")"
		}
		row := flagRow{long: f.Name, varname: varname, usage: usage}
		if f.Shorthand != "" && f.ShorthandDeprecated == "" {
			row.short = f.Shorthand
		}
		rows = append(rows, row)
	})

	width := 0
	for _, r := range rows {
		width = max(width, r.width())
	}

	s := h.styles
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		var b strings.Builder
		b.WriteString("  ")
		if r.short != "" {
			b.WriteString(s.Flag.Render("-"+r.short) + ", ")
		} else {
			b.WriteString("    ")
		}
		b.WriteString(s.Flag.Render("--" + r.long))
		if r.varname != "" {
			b.WriteString(" " + s.Dim.Render(r.varname))
		}
		b.WriteString(strings.Repeat(" ", width-r.width()))
		b.WriteString(helpColumnGap + s.Description.Render(r.usage))
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// flagDefault formats the default of f, or returns "" when the default is
// the zero value of its type.
func flagDefault(f *pflag.Flag) string {
	def := f.DefValue
	switch f.Value.Type() {
	case "bool":
		if def == "false" {
			return ""
		}
	case "int", "int64", "uint", "float64", "count":
		if def == "0" {
			return ""
		}
	case "string":
		if def == "" {
			return ""
		}
		return fmt.Sprintf("%q", def)
	case "stringSlice", "stringArray":
		if def == "[]" {
			return ""
		}
	}
	return def
}

// envUsage lists the GOCLEANUP_* variables read by the config loader,
// sorted by name.
func (h helpPage) envUsage() string {
	vars := configloader.ListEnvVars()
	names := slices.Sorted(maps.Keys(vars))

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "  "+h.styles.Flag.Render(rpad(name, width))+helpColumnGap+h.styles.Description.Render(vars[name]))
	}
	return strings.Join(lines, "\n")
}

// ApplyToCommand installs the styled help and usage output on cmd. Cobra
// passes both down to subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	render := func(name, text string, out io.Writer, c *cobra.Command) error {
		page := helpPage{styles: pretty.NewStyles(h.colorEnabled(c, out))}
		tmpl, err := template.New(name).Funcs(page.funcs()).Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		return tmpl.Execute(out, c)
	}

	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpTemplate(helpTemplate)

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return render("usage", usageTemplate, c.OutOrStderr(), c)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := render("help", helpTemplate, c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
