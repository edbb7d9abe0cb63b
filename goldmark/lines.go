package goldmark

import (
	"bytes"
	"strings"

	"github.com/fwojciec/babel"
	"github.com/yuin/goldmark/ast"
)

// ParseLines extracts the "- **Language**: text" items of a translation
// reply in order. Items that do not start with a bold label followed by a
// colon are skipped, as is everything outside lists.
func ParseLines(source string) []babel.TranslationLine {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	src := []byte(source)
	var lines []babel.TranslationLine
	_ = ast.Walk(parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}
		if line, ok := translationLine(item, src); ok {
			lines = append(lines, line)
		}
		return ast.WalkSkipChildren, nil
	})
	return lines
}

// translationLine reads a list item of the form **Label**: text.
func translationLine(item *ast.ListItem, source []byte) (babel.TranslationLine, bool) {
	block := item.FirstChild()
	if block == nil {
		return babel.TranslationLine{}, false
	}
	label, ok := block.FirstChild().(*ast.Emphasis)
	if !ok || label.Level != 2 {
		return babel.TranslationLine{}, false
	}

	var rest bytes.Buffer
	for c := label.NextSibling(); c != nil; c = c.NextSibling() {
		writePlain(c, source, &rest)
	}
	body, ok := strings.CutPrefix(rest.String(), ":")
	if !ok {
		return babel.TranslationLine{}, false
	}

	var lang bytes.Buffer
	writePlain(label, source, &lang)
	return babel.TranslationLine{
		Language: strings.TrimSpace(lang.String()),
		Text:     strings.TrimSpace(body),
	}, true
}

// writePlain writes the text content of an inline node without markup.
func writePlain(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
	case *ast.String:
		buf.Write(n.Value)
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			writePlain(c, source, buf)
		}
	}
}
