package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type painter struct {
	color bool
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// WriteText prints a human summary followed by every error and warning.
func WriteText(w io.Writer, r *Report, color bool) error {
	p := painter{color: color}
	errs, warns := r.Errors(), r.Warnings()

	var b strings.Builder
	b.WriteString(p.paint(dimStyle, strings.Repeat("=", 60)) + "\n")
	fmt.Fprintf(&b, "Total templates: %d\n", r.Templates)
	fmt.Fprintf(&b, "Errors: %d\n", len(errs))
	fmt.Fprintf(&b, "Warnings: %d\n", len(warns))

	if len(errs) > 0 {
		b.WriteString("\n" + p.paint(errorStyle, "Errors:") + "\n")
		for _, i := range errs {
			writeIssue(&b, p, i)
		}
	}
	if len(warns) > 0 {
		b.WriteString("\n" + p.paint(warningStyle, "Warnings:") + "\n")
		for _, i := range warns {
			writeIssue(&b, p, i)
		}
	}

	b.WriteString("\n")
	switch {
	case len(errs) > 0:
		b.WriteString(p.paint(errorStyle, "Validation failed!"))
	case len(warns) > 0:
		b.WriteString(p.paint(okStyle, "All templates are valid (with warnings)"))
	default:
		b.WriteString(p.paint(okStyle, "All templates are valid!"))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssue(b *strings.Builder, p painter, i *Issue) {
	loc := i.File
	if i.Line > 0 {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	fmt.Fprintf(b, "  - %s %s\n", p.paint(dimStyle, loc+":"), i.Message)
	if i.Hint != "" {
		fmt.Fprintf(b, "    %s\n", p.paint(dimStyle, "hint: "+i.Hint))
	}
}

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
