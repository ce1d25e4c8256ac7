// Package cli writes plain batch reports and progress lines for terminals
// and pipes.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/harness"
)

// CLI prints batch progress and the final report.
type CLI struct {
	Out  io.Writer
	Defs *state.Defs

	printer *message.Printer
	shown   int // tenths of the batch already announced
}

// New creates a CLI writing to out.
func New(out io.Writer, defs *state.Defs) *CLI {
	return &CLI{
		Out:     out,
		Defs:    defs,
		printer: Printer(),
	}
}

// Printer returns the number formatter used by reports.
func Printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Observer returns a harness observer that prints a line each time another
// tenth of the batch completes.
func (c *CLI) Observer() harness.Observer {
	return func(p harness.Progress) {
		tenth := p.Completed * 10 / p.Total
		if tenth <= c.shown {
			return
		}
		c.shown = tenth
		c.printSystem(c.printer.Sprintf("%d/%d runs, %d won, %d stalled",
			p.Completed, p.Total, p.Wins, p.NonConvergent))
	}
}

// Report writes the summary as plain text tables.
func (c *CLI) Report(s *harness.Summary) {
	for _, line := range Headline(s, c.Defs, c.printer) {
		c.printLine(line)
	}
	for _, sec := range Sections(s, c.Defs, c.printer) {
		c.printLine("")
		c.printLine(sec.Title)
		if len(sec.Rows) == 0 {
			c.printLine("  (none)")
			continue
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderRow(false).
			Headers(sec.Headers...).
			Rows(sec.Rows...)
		c.printLine(t.Render())
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
