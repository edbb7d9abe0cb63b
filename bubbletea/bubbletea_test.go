package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/babel"
	bt "github.com/fwojciec/babel/bubbletea"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, languages ...string) *babel.Session {
	t.Helper()
	s, err := babel.NewSession(languages...)
	require.NoError(t, err)
	return s
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run babel.TranslateFunc) (bt.Model, *babel.Session) {
	t.Helper()
	return initModelWithSize(t, run, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run babel.TranslateFunc, width, height int) (bt.Model, *babel.Session) {
	t.Helper()
	session := newSession(t)
	m := bt.New(run, session, babel.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height}), session
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// submit types text into the input and presses Enter.
func submit(t *testing.T, m bt.Model, text string) (bt.Model, tea.Cmd) {
	t.Helper()
	m.Input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// nopTranslate is a translate func that does nothing.
func nopTranslate(_ context.Context, _ *babel.Session, _ string, _ func(string)) error {
	return nil
}
