package repl

import (
	"symtable/internal/engine/script"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive REPL on the given session and blocks until the
// user quits.
func Run(session *script.Session) error {
	p := tea.NewProgram(initialModel(session), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
