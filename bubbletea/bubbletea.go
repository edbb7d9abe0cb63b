// Package bubbletea provides a Bubble Tea TUI for the babel translator.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// FragmentMsg delivers one streamed piece of the translation in flight.
type FragmentMsg struct {
	Text string
}

// TranslationDoneMsg signals that the translation in flight has finished.
// Err is nil when the reply was appended to the session.
type TranslationDoneMsg struct {
	Err error
}
