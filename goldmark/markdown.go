// Package goldmark reads translation replies with the goldmark markdown
// parser. Render turns a reply into ANSI-styled terminal output using
// lipgloss; ParseLines extracts its per-language lines.
package goldmark

import (
	"github.com/fwojciec/babel"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width; translation lines
// get their language label highlighted. Code blocks are rendered at full
// width without reflow.
func Render(source string, width int, theme babel.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

func parse(source []byte) ast.Node {
	return goldmark.DefaultParser().Parse(text.NewReader(source))
}
