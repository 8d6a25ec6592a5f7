package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/query"
)

var (
	slugStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type queryFlags struct {
	categories []string
	frameworks []string
	tags       []string
	where      string
	format     string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "Only these categories (repeatable)")
	cmd.Flags().StringSliceVarP(&f.frameworks, "framework", "f", nil, "Compatible with any of these frameworks (repeatable)")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "Tagged with any of these tags (repeatable)")
	cmd.Flags().StringVar(&f.where, "where", "", `Expression filter, e.g. 'settings.reasoning_level == "mandatory"'`)
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text or json")
}

func (f *queryFlags) criteria(text string) query.Criteria {
	return query.Criteria{
		Query:      text,
		Categories: f.categories,
		Frameworks: f.frameworks,
		Tags:       f.tags,
		Where:      f.where,
	}
}

func newListCmd() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.OutOrStdout(), flags, "")
		},
	}
	flags.register(cmd)
	return cmd
}

func newSearchCmd() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "search <text...>",
		Short: "Search templates by name, description and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.OutOrStdout(), flags, strings.Join(args, " "))
		},
	}
	flags.register(cmd)
	return cmd
}

func runQuery(out io.Writer, flags queryFlags, text string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	matcher, err := query.Compile(flags.criteria(text))
	if err != nil {
		return err
	}
	matched := matcher.Filter(reg.All())

	switch flags.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(matched)
	case "text":
		writeTemplateList(out, matched, useColor(out))
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be text or json", flags.format)
	}
}

func writeTemplateList(out io.Writer, templates []*agent.Template, color bool) {
	paint := func(style lipgloss.Style, s string) string {
		if !color {
			return s
		}
		return style.Render(s)
	}
	if len(templates) == 0 {
		fmt.Fprintln(out, "No templates found.")
		return
	}
	for _, t := range templates {
		fmt.Fprintf(out, "%s  %s\n", paint(slugStyle, t.Slug), paint(categoryStyle, t.Identity.Category))
		fmt.Fprintf(out, "    %s\n", t.Identity.Description)
		if len(t.Identity.Tags) > 0 {
			fmt.Fprintf(out, "    %s\n", paint(tagStyle, "#"+strings.Join(t.Identity.Tags, " #")))
		}
	}
	fmt.Fprintf(out, "\n%d template(s)\n", len(templates))
}
