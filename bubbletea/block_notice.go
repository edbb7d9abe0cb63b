package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*NoticeBlock)(nil)

// NoticeBlock renders command feedback such as a changed language set.
type NoticeBlock struct {
	text  string
	style lipgloss.Style
}

// NewNoticeBlock creates a NoticeBlock in the success style.
func NewNoticeBlock(text string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: text, style: styles.Success}
}

// NewHintBlock creates a NoticeBlock in the muted style.
func NewHintBlock(text string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: text, style: styles.Muted}
}

func (b *NoticeBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.style.Render(b.text))
}
