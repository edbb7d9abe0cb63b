package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/babel"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the babel TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	translate babel.TranslateFunc
	session   *babel.Session
	theme     babel.Theme
	styles    Styles

	blocks []MessageBlock
	active *TranslationBlock // reply in flight, also the last block
	asked  *UserMessageBlock // message of the reply in flight

	running   bool
	cancelled bool // Ctrl+C was pressed during the current translation
	cancel    context.CancelFunc
	fragCh    chan string
	doneCh    chan error
	err       error
	ready     bool
}

// New creates a new TUI Model. The session's existing exchanges are shown
// once the terminal size is known.
func New(translate babel.TranslateFunc, session *babel.Session, theme babel.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:     ti,
		translate: translate,
		session:   session,
		theme:     theme,
		styles:    NewStyles(theme),
	}
}

// Running returns whether a translation is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last translation error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FragmentMsg:
		if m.active != nil {
			m.active.Append(msg.Text)
			m.Viewport.SetContent(m.renderContent())
			m.Viewport.GotoBottom()
		}
		if m.fragCh != nil {
			return m, listenForFragment(m.fragCh, m.doneCh)
		}
		return m, nil

	case TranslationDoneMsg:
		m = m.finishTranslation(msg.Err)
		return m, m.Input.Focus()
	}

	// Pass remaining messages to sub-components.
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if c, ok := parseCommand(text); ok {
			return m.runCommand(c)
		}
		return m.submitInput(text)
	}

	// While a translation streams the draft is frozen; only scrolling works.
	// Character keys are not forwarded to the viewport because 'j'/'k' are
	// both scroll keys and text.
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.active = NewTranslationBlock(m.theme, m.styles)
	m.asked = NewUserMessageBlock(text, m.styles)
	m.blocks = append(m.blocks, m.asked, m.active)
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.fragCh = make(chan string, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTranslation(ctx, m.translate, m.session, text, m.fragCh, m.doneCh),
		listenForFragment(m.fragCh, m.doneCh),
	)
}

// finishTranslation settles the reply block. A failed reply is replaced with
// an error block; a cancelled one with a hint.
func (m Model) finishTranslation(err error) Model {
	if m.cancel != nil {
		m.cancel()
	}
	cancelled := m.cancelled
	m.running = false
	m.cancelled = false
	m.cancel = nil
	m.fragCh = nil
	m.doneCh = nil

	switch {
	case err == nil:
		if m.active != nil {
			m.active.Finish()
		}
	case cancelled || errors.Is(err, context.Canceled):
		m = m.markUnsent()
		m = m.dropActive()
		m.blocks = append(m.blocks, NewHintBlock("Translation cancelled.", m.styles))
	default:
		m.err = err
		m = m.markUnsent()
		m = m.dropActive()
		m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
	}
	m.active = nil
	m.asked = nil

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) markUnsent() Model {
	if m.asked != nil {
		m.asked.MarkUnsent()
	}
	return m
}

func (m Model) dropActive() Model {
	if n := len(m.blocks); n > 0 && m.active != nil && m.blocks[n-1] == MessageBlock(m.active) {
		m.blocks = m.blocks[:n-1]
	}
	return m
}

// renderSession creates blocks from the session's existing exchanges.
func (m Model) renderSession() Model {
	for _, ex := range m.session.Conversation.Exchanges() {
		m.blocks = append(m.blocks, NewUserMessageBlock(ex.User.Content, m.styles))
		if ex.Reply != nil {
			b := NewTranslationBlock(m.theme, m.styles)
			b.Append(ex.Reply.Content)
			b.Finish()
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	var prev MessageBlock
	for _, block := range m.blocks {
		if prev != nil {
			b.WriteString(blockSeparator(prev, block))
		}
		b.WriteString(block.View(m.Viewport.Width))
		prev = block
	}
	return b.String()
}

// statusLine shows the streaming indicator, or the target languages and the
// draft length in user-perceived characters.
func (m Model) statusLine() string {
	if m.running {
		return m.styles.Muted.Render("Translating... Ctrl+C to cancel")
	}
	count := fmt.Sprintf("%d chars", uniseg.GraphemeClusterCount(m.Input.Value()))
	langs := m.session.Languages.String()
	const sep = " · "
	if avail := m.Viewport.Width - runewidth.StringWidth(sep+count); avail > 0 {
		langs = runewidth.Truncate(langs, avail, "…")
	}
	return m.styles.Muted.Render(langs + sep + count)
}

// startTranslation runs the translation in a goroutine and signals completion.
func startTranslation(ctx context.Context, translate babel.TranslateFunc, session *babel.Session, text string, fragCh chan<- string, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := translate(ctx, session, text, func(f string) {
			select {
			case fragCh <- f:
			case <-ctx.Done():
			}
		})
		close(fragCh)
		doneCh <- err
		return nil
	}
}

// listenForFragment waits for the next fragment from the channel.
// When the channel closes, it reads the error from doneCh and returns
// TranslationDoneMsg.
func listenForFragment(ch <-chan string, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return TranslationDoneMsg{Err: <-doneCh}
		}
		return FragmentMsg{Text: f}
	}
}
