package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a submitted message with a "> " prefix.
type UserMessageBlock struct {
	text   string
	styles Styles
	unsent bool
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

// MarkUnsent flags a message whose translation failed. The session drops
// such a turn before the next submission, so it is no longer context.
func (b *UserMessageBlock) MarkUnsent() { b.unsent = true }

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + sanitize(b.text)
	if b.unsent {
		content += " " + b.styles.Muted.Render("(not sent)")
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
