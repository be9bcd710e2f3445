package cli

import "github.com/charmbracelet/lipgloss"

type theme struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Layer   lipgloss.Style
	Missing lipgloss.Style
	Faint   lipgloss.Style
	OK      lipgloss.Style
	Fail    lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title:   lipgloss.NewStyle().Bold(true),
		Section: lipgloss.NewStyle().Italic(true),
		Layer:   lipgloss.NewStyle().Bold(true),
		Missing: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Faint:   lipgloss.NewStyle().Faint(true),
		OK:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}
