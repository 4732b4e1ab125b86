// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
	Circle  = "○"
)

// Heading renders section titles such as package names.
func Heading(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Bold(true).Foreground(Iris)
}

// Muted renders secondary details such as sources and digests.
func Muted(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(Slate)
}

// Resolved renders concrete address values.
func Resolved(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(Green)
}

// Unresolved renders placeholders that have no value.
func Unresolved(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(Yellow)
}
