package bubbletea

import (
	"strings"

	"github.com/fwojciec/babel"
	"github.com/fwojciec/babel/goldmark"
)

var _ MessageBlock = (*TranslationBlock)(nil)

// TranslationBlock renders a streamed translation reply. Complete lines are
// rendered once per width and cached; only the trailing partial line is
// re-rendered on each fragment.
type TranslationBlock struct {
	content strings.Builder
	theme   babel.Theme
	styles  Styles
	done    bool

	// finalizedRaw is the stable prefix ending at the last newline.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewTranslationBlock creates a block for a translation in flight.
func NewTranslationBlock(theme babel.Theme, styles Styles) *TranslationBlock {
	return &TranslationBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

// Append adds a fragment from the stream.
func (b *TranslationBlock) Append(text string) {
	b.content.WriteString(text)
	b.promoteFinalized()
}

// Finish marks the reply complete.
func (b *TranslationBlock) Finish() { b.done = true }

// Text returns the reply received so far, unsanitized.
func (b *TranslationBlock) Text() string { return b.content.String() }

func (b *TranslationBlock) View(width int) string {
	if strings.TrimSpace(b.content.String()) == "" {
		if b.done {
			return b.styles.Muted.Render("(empty reply)")
		}
		return b.styles.Muted.Render("Translating...")
	}

	finalized := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if strings.TrimSpace(trailing) == "" {
		return finalized
	}
	rendered := goldmark.Render(sanitize(trailing), width, b.theme)
	if finalized == "" {
		return rendered
	}
	return finalized + "\n" + rendered
}

func (b *TranslationBlock) promoteFinalized() {
	raw := b.content.String()
	idx := strings.LastIndexByte(raw, '\n')
	if idx <= 0 {
		return
	}
	candidate := raw[:idx]
	if candidate != b.finalizedRaw {
		b.finalizedRaw = candidate
		clear(b.finalizedByWidth)
	}
}

func (b *TranslationBlock) renderFinalized(width int) string {
	if strings.TrimSpace(b.finalizedRaw) == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(sanitize(b.finalizedRaw), width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *TranslationBlock) trailingRaw() string {
	raw := b.content.String()
	if b.finalizedRaw == "" {
		return raw
	}
	return raw[len(b.finalizedRaw)+1:]
}
