package bubbletea

// MessageBlock is a renderable element in the conversation.
// View takes a width parameter so the root model controls layout and
// blocks are testable in isolation.
type MessageBlock interface {
	View(width int) string
}

// blockSeparator returns the gap between two adjacent blocks. Each
// exchange starts after a blank line; a reply or a notice sits directly
// under what it answers.
func blockSeparator(prev, curr MessageBlock) string {
	if _, ok := curr.(*UserMessageBlock); ok && prev != nil {
		return "\n\n"
	}
	return "\n"
}
