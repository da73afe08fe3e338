package repl

import (
	"bytes"
	"fmt"
	"strings"

	"symtable/internal/engine/script"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

const scopePanelWidth = 28

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type model struct {
	session    *script.Session
	transcript *bytes.Buffer
	input      textinput.Model
	output     viewport.Model
	scopeList  list.Model
	history    []string
	lastErr    string
}

func initialModel(session *script.Session) model {
	transcript := &bytes.Buffer{}
	session.SetOutput(transcript)

	input := textinput.New()
	input.Placeholder = "enter global | insert x int | lookup x | dump"
	input.Prompt = "> "
	input.CharLimit = 256
	input.Focus()

	scopeList := list.New([]list.Item{}, list.NewDefaultDelegate(), scopePanelWidth, 10)
	scopeList.Title = "Scopes"
	scopeList.SetShowStatusBar(false)
	scopeList.SetShowHelp(false)
	scopeList.SetFilteringEnabled(false)

	m := model{
		session:    session,
		transcript: transcript,
		input:      input,
		output:     viewport.New(60, 10),
		scopeList:  scopeList,
	}
	m.refreshScopes()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h - scopePanelWidth - 4
		height := msg.Height - v - 8
		if width < 20 {
			width = 20
		}
		if height < 5 {
			height = 5
		}
		m.output.Width = width
		m.output.Height = height
		m.scopeList.SetSize(scopePanelWidth, height)
		m.input.Width = width
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs one command line against the session and records it in the
// transcript. Errors are displayed and never end the program.
func (m *model) execute(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	m.history = append(m.history, line)
	fmt.Fprintln(m.transcript, commandStyle.Render("> "+line))

	m.lastErr = ""
	if err := m.session.Exec(line); err != nil {
		m.lastErr = err.Error()
		fmt.Fprintln(m.transcript, errorStyle.Render(m.lastErr))
	}

	m.output.SetContent(m.transcript.String())
	m.output.GotoBottom()
	m.refreshScopes()
}

func (m *model) refreshScopes() {
	scopes := m.session.Stack().Scopes()
	items := make([]list.Item, 0, len(scopes))
	for i, scope := range scopes {
		desc := fmt.Sprintf("%d symbols", scope.Len())
		if i == 0 {
			desc += " (current)"
		}
		items = append(items, item{title: scope.Name, desc: desc})
	}
	m.scopeList.SetItems(items)
}

func (m model) View() string {
	stack := m.session.Stack()
	status := statusStyle.Render(fmt.Sprintf("session %s | %d scopes | %d symbols",
		shortID(m.session.ID), stack.NumScopes(), stack.Size()))

	header := fmt.Sprintf("%s\n%s\n", titleStyle("Symbol Table REPL"), status)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.output.View()),
		panelStyle.Render(m.scopeList.View()),
	)

	footer := m.input.View()
	if m.lastErr != "" {
		footer += "\n" + errorStyle.Render(m.lastErr)
	}
	help := statusStyle.Render("enter: run | pgup/pgdn: scroll | esc/ctrl+c: quit")

	return docStyle.Render(header + "\n" + body + "\n" + footer + "\n" + help)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
