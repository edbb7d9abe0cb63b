package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const helpText = `Commands:
  /add <language>     translate into another language
  /remove <language>  stop translating into a language (at least two stay)
  /clear              start a new conversation, keeping the languages
  /help               show this help
Enter sends a message. Ctrl+C cancels a translation or quits.`

// command is a parsed slash command.
type command struct {
	name string
	arg  string
}

// parseCommand reports whether input is a slash command and splits it into
// a lower-cased name and the remaining argument.
func parseCommand(input string) (command, bool) {
	rest, ok := strings.CutPrefix(input, "/")
	if !ok || rest == "" {
		return command{}, false
	}
	name, arg, _ := strings.Cut(rest, " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// runCommand applies a slash command to the session. Language changes that
// the session rejects leave no trace.
func (m Model) runCommand(c command) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")

	switch c.name {
	case "add":
		if m.session.AddLanguage(c.arg) {
			m.blocks = append(m.blocks, NewNoticeBlock(
				fmt.Sprintf("Translating into: %s", m.session.Languages.String()), m.styles))
		}
	case "remove":
		if m.session.RemoveLanguage(c.arg) {
			m.blocks = append(m.blocks, NewNoticeBlock(
				fmt.Sprintf("Translating into: %s", m.session.Languages.String()), m.styles))
		}
	case "clear":
		m.session.Clear()
		m.blocks = nil
		m.err = nil
	case "help":
		m.blocks = append(m.blocks, NewHintBlock(helpText, m.styles))
	default:
		m.blocks = append(m.blocks, NewHintBlock(
			fmt.Sprintf("Unknown command /%s. Type /help for a list.", c.name), m.styles))
	}

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m, nil
}
