package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nathoo/gauntlet/cli"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSection = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleHeader = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true).
			Padding(0, 1)

	styleCell = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	styleBorder = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSpark = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))
)

// renderSection draws one report section as a bordered table.
func renderSection(sec cli.Section) string {
	if len(sec.Rows) == 0 {
		return styleSection.Render(sec.Title) + "\n" + styleSystem.Render("  (none)")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		BorderHeader(true).
		BorderRow(false).
		Headers(sec.Headers...).
		Rows(sec.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	return styleSection.Render(sec.Title) + "\n" + t.Render()
}
