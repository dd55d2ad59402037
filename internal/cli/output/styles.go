package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolWarning = "!"
	SymbolError   = "✗"
)

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Header   lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Path     lipgloss.Style
	Success  lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Critical lipgloss.Style
}

// NewStyles returns colored styles bound to the color profile of w.
func NewStyles(w io.Writer) *Styles {
	re := lipgloss.NewRenderer(w)
	return &Styles{
		Header:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:     re.NewStyle().Bold(true),
		Muted:    re.NewStyle().Foreground(lipgloss.Color("8")),
		Path:     re.NewStyle().Bold(true).Underline(true),
		Success:  re.NewStyle().Foreground(lipgloss.Color("10")),
		Info:     re.NewStyle().Foreground(lipgloss.Color("14")),
		Warning:  re.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    re.NewStyle().Foreground(lipgloss.Color("9")),
		Critical: re.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	s := lipgloss.NewStyle()
	return &Styles{
		Header: s, Bold: s, Muted: s, Path: s, Success: s,
		Info: s, Warning: s, Error: s, Critical: s,
	}
}

// Severity returns the style for a defect severity.
func (s *Styles) Severity(sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityCritical:
		return s.Critical
	case core.SeverityError:
		return s.Error
	case core.SeverityWarning:
		return s.Warning
	default:
		return s.Info
	}
}
