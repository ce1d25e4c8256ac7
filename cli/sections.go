package cli

import (
	"golang.org/x/text/message"

	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/harness"
	"github.com/nathoo/gauntlet/types"
)

// Section is one titled table of a report.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Headline returns the summary lines printed above the tables.
func Headline(s *harness.Summary, defs *state.Defs, p *message.Printer) []string {
	hero := s.Hero
	if h, ok := defs.Heroes[s.Hero]; ok && h.Name != "" {
		hero = h.Name
	}
	lines := []string{
		p.Sprintf("%s: %s", defs.Game.Title, hero),
		p.Sprintf("Seed %d, %d of %d runs completed", s.Seed, s.Completed, s.Requested),
		p.Sprintf("Win rate: %s (%.0f%% CI %s to %s)",
			percent(p, s.WinRate.Mean), s.Confidence*100, percent(p, s.WinRate.Low), percent(p, s.WinRate.High)),
		p.Sprintf("Non-convergent runs: %d", s.NonConvergent),
	}
	if s.Cancelled {
		lines = append(lines, p.Sprintf("Batch cut short: %d of %d runs completed.", s.Completed, s.Requested))
	}
	return lines
}

// Sections builds the encounter, card and defeat tables.
func Sections(s *harness.Summary, defs *state.Defs, p *message.Printer) []Section {
	enc := Section{
		Title:   "Encounters",
		Headers: []string{"#", "Encounter", "Reached", "Cleared", "HP after", "Dealt", "Taken", "Exchanges", "Taint"},
	}
	for _, e := range s.Encounters {
		enc.Rows = append(enc.Rows, []string{
			p.Sprintf("%d", e.Index+1),
			encounterLabel(defs, e.Index),
			p.Sprintf("%d", e.Reached),
			p.Sprintf("%d", e.Cleared),
			interval(p, e.HPAfter),
			interval(p, e.DamageDealt),
			interval(p, e.DamageTaken),
			interval(p, e.Exchanges),
			interval(p, e.Taint),
		})
	}

	cards := Section{
		Title:   "Cards",
		Headers: []string{"Card", "Damage/run", "Drafts", "Runs drafted", "Win rate drafted"},
	}
	for _, c := range s.Cards {
		name := c.ID
		if card, ok := defs.Cards[c.ID]; ok && card.Name != "" {
			name = card.Name
		}
		winRate := "-"
		if c.RunsDrafted > 0 {
			winRate = percent(p, c.WinRate)
		}
		cards.Rows = append(cards.Rows, []string{
			name,
			p.Sprintf("%.2f", c.MeanDamage),
			p.Sprintf("%d", c.Drafts),
			p.Sprintf("%d", c.RunsDrafted),
			winRate,
		})
	}

	defeats := Section{
		Title:   "Defeats",
		Headers: []string{"Encounter", "Defeats", "Stalls"},
	}
	for _, d := range s.Defeats {
		name := d.EncounterID
		if e, ok := defs.Encounters[d.EncounterID]; ok && e.Name != "" {
			name = e.Name
		}
		defeats.Rows = append(defeats.Rows, []string{
			name,
			p.Sprintf("%d", d.Defeats),
			p.Sprintf("%d", d.Stalls),
		})
	}

	return []Section{enc, cards, defeats}
}

// encounterLabel names a campaign position: the encounter of a fixed
// sequence, or the tier it is drawn from.
func encounterLabel(defs *state.Defs, i int) string {
	camp := defs.Campaign
	if i < len(camp.Sequence) {
		id := camp.Sequence[i]
		if e, ok := defs.Encounters[id]; ok && e.Name != "" {
			return e.Name
		}
		return id
	}
	if i < camp.BasicCount {
		return "random " + string(types.TierBasic)
	}
	return "random " + string(types.TierElite)
}

func interval(p *message.Printer, iv harness.Interval) string {
	if iv.N == 0 {
		return "-"
	}
	return p.Sprintf("%.1f ± %.1f", iv.Mean, (iv.High-iv.Low)/2)
}

func percent(p *message.Printer, v float64) string {
	return p.Sprintf("%.1f%%", v*100)
}
