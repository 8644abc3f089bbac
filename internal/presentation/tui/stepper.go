package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252"))

	headStyle = cellStyle.
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#ffeb3b"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	activeRuleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbc02d")).
			Bold(true)

	acceptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	rejectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
)

type keyMap struct {
	Step  key.Binding
	Back  key.Binding
	Play  key.Binding
	Reset key.Binding
	Help  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Step:  key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "step")),
	Back:  key.NewBinding(key.WithKeys("b", "left", "h"), key.WithHelp("b/←", "step back")),
	Play:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "run/pause")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Back, k.Play, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Step, k.Back, k.Play},
		{k.Reset, k.Help, k.Quit},
	}
}

// tickMsg drives the auto-run. gen discards ticks scheduled before a pause.
type tickMsg struct {
	gen int
}

// Stepper is the bubbletea model of the interactive step view.
type Stepper struct {
	ctx      context.Context
	machine  *turingviz.Machine
	width    int
	interval time.Duration
	playing  bool
	gen      int
	help     help.Model
}

// NewStepper creates the model. width is the number of tape cells shown.
func NewStepper(ctx context.Context, m *turingviz.Machine, width int, interval time.Duration) Stepper {
	if width <= 0 {
		width = domain.DefaultWindowWidth
	}
	if interval <= 0 {
		interval = runner.DefaultInterval
	}
	return Stepper{
		ctx:      ctx,
		machine:  m,
		width:    width,
		interval: interval,
		help:     help.New(),
	}
}

// Playing reports whether the auto-run is active.
func (s Stepper) Playing() bool { return s.playing }

func (s Stepper) Init() tea.Cmd { return nil }

func (s Stepper) tick() tea.Cmd {
	gen := s.gen
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s Stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.help.Width = msg.Width
		return s, nil

	case tickMsg:
		if !s.playing || msg.gen != s.gen {
			return s, nil
		}
		if !s.machine.Step(s.ctx) {
			s.playing = false
			return s, nil
		}
		return s, s.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return s, tea.Quit
		case key.Matches(msg, keys.Step):
			s.pause()
			s.machine.Step(s.ctx)
		case key.Matches(msg, keys.Back):
			s.pause()
			s.machine.StepBack(s.ctx)
		case key.Matches(msg, keys.Reset):
			s.pause()
			s.machine.Restart(s.ctx, s.machine.Input())
		case key.Matches(msg, keys.Play):
			if s.playing {
				s.pause()
				return s, nil
			}
			if s.machine.Halted() {
				return s, nil
			}
			s.playing = true
			s.gen++
			return s, s.tick()
		case key.Matches(msg, keys.Help):
			s.help.ShowAll = !s.help.ShowAll
		}
	}
	return s, nil
}

func (s *Stepper) pause() {
	s.playing = false
	s.gen++
}

func (s Stepper) View() string {
	var b strings.Builder
	snap := s.machine.Snapshot()

	b.WriteString(titleStyle.Render(s.machine.Definition().Title()))
	b.WriteString("\n\n")

	// Tape
	var cells []string
	var index []string
	for _, c := range s.machine.HeadWindow(s.width) {
		style := cellStyle
		if c.Head {
			style = headStyle
		}
		cells = append(cells, style.Render(string(c.Symbol)))
		index = append(index, dimStyle.Render(fmt.Sprintf("%3d", c.Index)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, index...))
	b.WriteString("\n\n")

	// Status
	status := dimStyle.Render("running")
	switch {
	case snap.Halted && snap.Accepting:
		status = acceptStyle.Render("ACCEPT")
	case snap.Halted:
		status = rejectStyle.Render("REJECT")
	case s.playing:
		status = "playing"
	}
	fmt.Fprintf(&b, "state %s  steps %d  head %d  %s\n\n", snap.State, snap.Steps, snap.Head, status)

	// Rules leaving the current state
	for _, e := range s.machine.Model().Edges {
		if e.Source != snap.State && !e.Active {
			continue
		}
		line := fmt.Sprintf("  %s --%s--> %s", e.Source, e.Label, e.Target)
		if e.Active {
			line = activeRuleStyle.Render("▸" + line[1:])
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(s.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// RunStepper runs the interactive view until the user quits or ctx is done.
func RunStepper(ctx context.Context, m *turingviz.Machine, width int, interval time.Duration) error {
	p := tea.NewProgram(NewStepper(ctx, m, width, interval), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
