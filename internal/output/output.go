// Package output renders analysis reports for the terminal or for tools.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/report"
)

// Format selects how reports are written.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatText  Format = "text"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatJSONL, FormatText}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	sigStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("green"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want json, jsonl or text)", name)
}

// Write renders analyses to w. JSON output is an indented array, JSONL one
// record per line.
func Write(w io.Writer, format Format, analyses []report.FunctionAnalysis) error {
	if analyses == nil {
		analyses = []report.FunctionAnalysis{}
	}
	switch format {
	case FormatJSON:
		return fileutil.PrintJSON(w, analyses)
	case FormatJSONL:
		if err := fileutil.WriteJSONL(w, analyses); err != nil {
			return fmt.Errorf("failed to encode jsonl: %w", err)
		}
		return nil
	case FormatText:
		return writeText(w, analyses)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeText(w io.Writer, analyses []report.FunctionAnalysis) error {
	var b strings.Builder
	for i, a := range analyses {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(a.Contract) + "\n")
		b.WriteString("  " + sigStyle.Render(a.Function) + "\n")
		fmt.Fprintf(&b, "  %s %s", labelStyle.Render("location:"), a.Location.File)
		if a.Location.StartLine > 0 {
			fmt.Fprintf(&b, ":%d-%d (%d lines)", a.Location.StartLine, a.Location.EndLine, a.Location.LineCount())
		}
		b.WriteString("\n")

		b.WriteString("  " + labelStyle.Render("parameters:"))
		if len(a.Parameters) == 0 {
			b.WriteString(" none\n")
		} else {
			b.WriteString("\n")
			for _, p := range a.Parameters {
				fmt.Fprintf(&b, "    %s: %s\n", p.Name, p.Type)
			}
		}

		b.WriteString("  " + labelStyle.Render("calls:"))
		if len(a.Calls) == 0 {
			b.WriteString(" none\n")
		} else {
			b.WriteString("\n")
			for _, c := range a.Calls {
				fmt.Fprintf(&b, "    %s  %s  (%s)\n", c.Module, c.Function, c.File)
			}
		}

		b.WriteString("  " + labelStyle.Render("source:") + "\n")
		for _, line := range strings.Split(a.Source, "\n") {
			b.WriteString("    " + sourceStyle.Render(line) + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
