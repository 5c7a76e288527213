// Package panel is the live terminal view of the deck.
//
// The model reloads the snapshot whenever it receives a RedrawMsg; both the
// coordinator and the watch bridge send one through Host. Reloads go through
// the snapshot cache, so redraws that follow no change cost no backend read.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// Source supplies the deck and the favicon preference.
type Source interface {
	Current(ctx context.Context) (project.Collection, error)
	FetchFavicons(ctx context.Context) bool
}

// Commands are the deck commands the panel can run.
type Commands interface {
	Delete(ctx context.Context, id string) (mutation.Outcome, error)
	Move(ctx context.Context, id string, delta int) (mutation.Outcome, error)
	Open(ctx context.Context, id string) (mutation.Outcome, error)
	Reveal(ctx context.Context, id string) (mutation.Outcome, error)
	SetFetchFavicons(ctx context.Context, on bool) (mutation.Outcome, error)
	Refresh(ctx context.Context)
}

// Lipgloss styles, same palette as the rest of the CLI.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)
)

// Message types
type loadedMsg struct {
	projects project.Collection
	favicons bool
}

type errMsg struct{ err error }

type outcomeMsg struct {
	op      string
	name    string
	outcome mutation.Outcome
	err     error
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx      context.Context
	source   Source
	commands Commands
	logger   *logging.Logger
	keys     KeyMap
	help     help.Model

	projects project.Collection
	favicons bool
	loaded   bool
	cursor   int
	selected string // id under the cursor, kept across reloads

	confirm   *ConfirmMsg
	status    string
	statusErr bool
	err       error
	quitting  bool
}

// NewModel creates a panel model. ctx is passed to every command.
func NewModel(ctx context.Context, source Source, commands Commands, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NewNop()
	}
	return Model{
		ctx:      ctx,
		source:   source,
		commands: commands,
		logger:   logger.Named("panel"),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init loads the deck.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		coll, err := source.Current(ctx)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{projects: coll, favicons: source.FetchFavicons(ctx)}
	}
}

// run executes a command off the event loop. Dialogs the command opens
// arrive back as messages.
func (m Model) run(op string, p project.Project, fn func() (mutation.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		outcome, err := fn()
		return outcomeMsg{op: op, name: p.Name, outcome: outcome, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != nil {
			return m.answer(msg), nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case RedrawMsg:
		return m, m.load()

	case loadedMsg:
		m.projects = msg.projects
		m.favicons = msg.favicons
		m.loaded = true
		m.err = nil
		m.follow()
		return m, nil

	case errMsg:
		m.err = msg.err
		m.logger.Warn(m.ctx, "failed to load projects", zap.Error(msg.err))
		return m, nil

	case ConfirmMsg:
		m.confirm = &msg
		return m, nil

	case NotifyMsg:
		m.status, m.statusErr = msg.Text, msg.Error
		return m, nil

	case outcomeMsg:
		m.status, m.statusErr = describe(msg), msg.err != nil
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.setCursor(m.cursor - 1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.setCursor(m.cursor + 1)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		ctx, commands := m.ctx, m.commands
		return m, func() tea.Msg {
			commands.Refresh(ctx)
			return nil
		}

	case key.Matches(msg, m.keys.Favicons):
		on := !m.favicons
		return m, m.run("favicons", project.Project{}, func() (mutation.Outcome, error) {
			return m.commands.SetFetchFavicons(m.ctx, on)
		})
	}

	p, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.MoveUp):
		return m, m.run("move", p, func() (mutation.Outcome, error) { return m.commands.Move(m.ctx, p.ID, -1) })
	case key.Matches(msg, m.keys.MoveDown):
		return m, m.run("move", p, func() (mutation.Outcome, error) { return m.commands.Move(m.ctx, p.ID, 1) })
	case key.Matches(msg, m.keys.Delete):
		return m, m.run("delete", p, func() (mutation.Outcome, error) { return m.commands.Delete(m.ctx, p.ID) })
	case key.Matches(msg, m.keys.Open):
		return m, m.run("open", p, func() (mutation.Outcome, error) { return m.commands.Open(m.ctx, p.ID) })
	case key.Matches(msg, m.keys.Reveal):
		return m, m.run("reveal", p, func() (mutation.Outcome, error) { return m.commands.Reveal(m.ctx, p.ID) })
	}
	return m, nil
}

// answer resolves the pending confirmation. Other keys are ignored.
func (m Model) answer(msg tea.KeyMsg) Model {
	var yes bool
	switch {
	case key.Matches(msg, m.keys.Yes):
		yes = true
	case key.Matches(msg, m.keys.No):
	default:
		return m
	}
	m.confirm.Reply <- yes
	m.confirm = nil
	return m
}

func (m Model) current() (project.Project, bool) {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return project.Project{}, false
	}
	return m.projects[m.cursor], true
}

func (m *Model) setCursor(i int) {
	if len(m.projects) == 0 {
		m.cursor, m.selected = 0, ""
		return
	}
	m.cursor = max(0, min(len(m.projects)-1, i))
	m.selected = m.projects[m.cursor].ID
}

// follow keeps the cursor on the selected project after a reload, or in
// range if it is gone.
func (m *Model) follow() {
	if i := m.projects.IndexByID(m.selected); i >= 0 {
		m.cursor = i
		return
	}
	m.setCursor(m.cursor)
}

func describe(msg outcomeMsg) string {
	if msg.err != nil {
		return fmt.Sprintf("%s failed: %v", msg.op, msg.err)
	}
	subject := msg.name
	if subject == "" {
		subject = msg.op
	}
	switch msg.outcome {
	case mutation.OutcomeDeleted:
		return "Deleted " + subject
	case mutation.OutcomeCancelled:
		return "Cancelled"
	case mutation.OutcomeNotFound:
		return subject + " is no longer in the deck"
	case mutation.OutcomeUnchanged:
		return ""
	}
	switch msg.op {
	case "open":
		return "Opened " + subject
	case "reveal":
		return "Revealed " + subject
	case "favicons":
		return "Favicon preference saved"
	}
	return ""
}

// View renders the panel
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := headerStyle.Render("Project Deck")
	fav := "favicons off"
	if m.favicons {
		fav = "favicons on"
	}
	b.WriteString(header + "  " + dimStyle.Render(fmt.Sprintf("%d projects · %s", len(m.projects), fav)) + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("⚠ Cannot load projects") + "\n")
		b.WriteString(dimStyle.Render("Error: ") + errorStyle.Render(m.err.Error()) + "\n")
	case !m.loaded:
		b.WriteString(dimStyle.Render("Loading...") + "\n")
	case len(m.projects) == 0:
		b.WriteString(dimStyle.Render("No projects yet. Run `projectdeck add` or `projectdeck scan`.") + "\n")
	default:
		for i, p := range m.projects {
			b.WriteString(m.renderRow(i, p) + "\n")
		}
	}

	b.WriteString("\n")
	if m.confirm != nil {
		b.WriteString(warningStyle.Render(m.confirm.Question) + "\n")
		b.WriteString(m.help.View(confirmHelp{m.keys}))
		return containerStyle.Render(b.String())
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(dimStyle.Render(m.status) + "\n")
		}
	}
	b.WriteString(m.help.View(m.keys))
	return containerStyle.Render(b.String())
}

func (m Model) renderRow(i int, p project.Project) string {
	marker := "  "
	name := nameStyle.Render(p.Name)
	if i == m.cursor {
		marker = selectedStyle.Render("▸ ")
		name = selectedStyle.Render(p.Name)
	}

	swatch := " "
	if c, ok := p.Color.Get(); ok && project.ValidateColor(p.Color) == nil {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")
	}

	row := marker + swatch + " " + name + "  " + dimStyle.Render(p.Path)
	if u, ok := p.ProductionURL.Get(); ok {
		row += "  " + dimStyle.Render(u)
	}
	return row
}
