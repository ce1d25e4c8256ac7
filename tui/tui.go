package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/message"

	"github.com/nathoo/gauntlet/cli"
	"github.com/nathoo/gauntlet/engine/state"
	"github.com/nathoo/gauntlet/harness"
)

// progressMsg carries harness progress into the Update loop.
type progressMsg harness.Progress

// doneMsg carries the finished batch.
type doneMsg struct {
	summary *harness.Summary
	err     error
}

type keyMap struct {
	Stop      key.Binding
	ForceQuit key.Binding
	viewport.KeyMap
}

func defaultKeys() keyMap {
	return keyMap{
		Stop:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "stop / quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
		KeyMap: viewport.KeyMap{
			PageDown:     key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "page down")),
			PageUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
			HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
			HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
			Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		},
	}
}

// Model is the Bubble Tea model for a batch: a spinner while runs complete,
// then the scrollable report.
type Model struct {
	defs    *state.Defs
	cfg     harness.Config
	cancel  context.CancelFunc
	printer *message.Printer

	spinner  spinner.Model
	viewport viewport.Model
	keys     keyMap
	trend    *Trend

	progress harness.Progress
	summary  *harness.Summary
	err      error
	started  time.Time
	elapsed  time.Duration

	width    int
	height   int
	ready    bool
	stopping bool
	quitting bool
}

// New creates a model for a batch. cancel stops the batch early.
func New(defs *state.Defs, cfg harness.Config, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSpark

	return Model{
		defs:     defs,
		cfg:      cfg,
		cancel:   cancel,
		printer:  cli.Printer(),
		spinner:  sp,
		keys:     defaultKeys(),
		trend:    NewTrend(60),
		progress: harness.Progress{Total: cfg.Trials},
		started:  time.Now(),
	}
}

// Run starts the batch and the Bubble Tea program, and returns the summary
// once the user leaves the report. A batch aborted before it finished
// returns ctx's cancellation error.
func Run(ctx context.Context, defs *state.Defs, cfg harness.Config) (*harness.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(defs, cfg, cancel), tea.WithAltScreen())
	go func() {
		s, err := harness.Run(ctx, defs, cfg, throttle(cfg.Trials, func(pr harness.Progress) {
			p.Send(progressMsg(pr))
		}))
		p.Send(doneMsg{summary: s, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(Model)
	if m.summary == nil && m.err == nil {
		return nil, context.Canceled
	}
	return m.summary, m.err
}

// throttle forwards roughly every hundredth of the batch and the last run.
func throttle(total int, send harness.Observer) harness.Observer {
	step := max(1, total/100)
	return func(p harness.Progress) {
		if p.Completed%step == 0 || p.Completed == p.Total {
			send(p)
		}
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages (key presses, window resize, batch progress).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 3 // title + status bar + help
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = m.keys.KeyMap
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			m.cancel()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Stop):
			if m.done() {
				m.quitting = true
				return m, tea.Quit
			}
			m.stopping = true
			m.cancel()
			return m, nil
		}
		if m.done() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if m.done() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.progress = harness.Progress(msg)
		if m.progress.Completed > 0 {
			m.trend.Push(float64(m.progress.Wins) / float64(m.progress.Completed))
		}
		return m, nil

	case doneMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		if s := msg.summary; s != nil {
			m.progress = harness.Progress{
				Completed:     s.Completed,
				Total:         s.Requested,
				Wins:          s.Wins,
				NonConvergent: s.NonConvergent,
			}
		}
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

func (m Model) done() bool {
	return m.summary != nil || m.err != nil
}

// refreshViewport renders the report at the current width.
func (m *Model) refreshViewport() {
	if !m.ready || !m.done() {
		return
	}
	m.viewport.SetContent(m.report())
	m.viewport.GotoTop()
}

func (m Model) report() string {
	if m.err != nil {
		return styleError.Render("Batch failed: " + m.err.Error())
	}
	var b strings.Builder
	for _, line := range cli.Headline(m.summary, m.defs, m.printer) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(styleSystem.Render(fmt.Sprintf("Elapsed %s", m.elapsed.Round(time.Millisecond))))
	b.WriteString("\n")
	for _, sec := range cli.Sections(m.summary, m.defs, m.printer) {
		b.WriteString("\n")
		b.WriteString(renderSection(sec))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) heroName() string {
	id := m.cfg.Hero
	if id == "" {
		id = m.defs.Campaign.Hero
	}
	if h, ok := m.defs.Heroes[id]; ok && h.Name != "" {
		return h.Name
	}
	return id
}

// View renders the title, the running view or report, the status bar and
// the key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	title := styleTitle.Render(m.defs.Game.Title)
	var body string
	if m.done() {
		body = m.viewport.View()
	} else {
		body = m.runningView()
	}
	return title + "\n" + body + "\n" + m.renderStatusBar() + "\n" + m.helpLine()
}

func (m Model) runningView() string {
	p := m.progress
	lines := []string{
		"",
		m.spinner.View() + " " + m.printer.Sprintf("Simulating %d of %d runs", p.Completed, p.Total),
		"",
		"Win rate so far: " + winRate(p.Wins, p.Completed),
		styleSpark.Render(m.trend.Sparkline()),
	}
	if m.stopping {
		lines = append(lines, "", styleSystem.Render("Stopping; waiting for running campaigns to finish..."))
	}
	body := strings.Join(lines, "\n")
	if pad := m.viewport.Height - len(lines); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body
}

func (m Model) helpLine() string {
	if m.done() {
		return styleSystem.Render("q quit  ↑/↓ scroll  pgup/pgdn page")
	}
	return styleSystem.Render("q stop early  ctrl+c abort")
}
