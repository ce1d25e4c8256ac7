package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// hero, seed, progress and the running win rate.
func (m Model) renderStatusBar() string {
	p := m.progress
	left := m.printer.Sprintf(" %s | seed %d | %d/%d runs", m.heroName(), m.cfg.Seed, p.Completed, p.Total)

	state := "running"
	switch {
	case m.err != nil:
		state = "failed"
	case m.summary != nil && m.summary.Cancelled:
		state = "cut short"
	case m.summary != nil:
		state = "done"
	case m.stopping:
		state = "stopping"
	}
	right := fmt.Sprintf("win %s | stalled %d | %s ", winRate(p.Wins, p.Completed), p.NonConvergent, state)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

func winRate(wins, completed int) string {
	if completed == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(wins)/float64(completed)*100)
}
