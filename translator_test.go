package babel_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/babel"
	"github.com/fwojciec/babel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, languages ...string) *babel.Session {
	t.Helper()
	s, err := babel.NewSession(languages...)
	require.NoError(t, err)
	return s
}

func fragmentProvider(fragments []string, err error) (*mock.Provider, *[]babel.Request) {
	var reqs []babel.Request
	p := &mock.Provider{
		StreamFn: func(_ context.Context, req babel.Request) (babel.Stream, error) {
			reqs = append(reqs, req)
			return mock.NewFragmentStream(fragments, err), nil
		},
	}
	return p, &reqs
}

func TestTranslator_Run(t *testing.T) {
	t.Parallel()

	t.Run("appends one reply in fragment order", func(t *testing.T) {
		t.Parallel()
		p, reqs := fragmentProvider([]string{"- **Spanish**: Hola", " amigo\n", "- **Haitian Creole**: Bonjou zanmi"}, nil)
		tr := babel.NewTranslator(p)
		s := newSession(t)

		var got []string
		err := tr.Run(context.Background(), s, "Hello friend", func(f string) { got = append(got, f) })
		require.NoError(t, err)

		assert.Equal(t, []string{"- **Spanish**: Hola", " amigo\n", "- **Haitian Creole**: Bonjou zanmi"}, got)
		turns := s.Conversation.All()
		require.Len(t, turns, 2)
		assert.Equal(t, babel.RoleUser, turns[0].Role)
		assert.Equal(t, "Hello friend", turns[0].Content)
		assert.Equal(t, babel.RoleAssistant, turns[1].Role)
		assert.Equal(t, "- **Spanish**: Hola amigo\n- **Haitian Creole**: Bonjou zanmi", turns[1].Content)

		require.Len(t, *reqs, 1)
		req := (*reqs)[0]
		assert.Equal(t, babel.BuildInstruction(babel.DefaultLanguages), req.SystemPrompt)
		assert.Equal(t, babel.DefaultMaxTokens, req.MaxTokens)
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, babel.DefaultTemperature, *req.Temperature, 1e-9)
		require.Len(t, req.Turns, 1)
	})

	t.Run("sends full history and current languages", func(t *testing.T) {
		t.Parallel()
		p, reqs := fragmentProvider([]string{"- **Spanish**: Hola"}, nil)
		tr := babel.NewTranslator(p, babel.WithModel("test-model"))
		s := newSession(t, "English", "Spanish")

		require.NoError(t, tr.Run(context.Background(), s, "Hello", nil))
		s.AddLanguage("French")
		require.NoError(t, tr.Run(context.Background(), s, "Goodbye", nil))

		require.Len(t, *reqs, 2)
		second := (*reqs)[1]
		assert.Equal(t, "test-model", second.Model)
		require.Len(t, second.Turns, 3)
		assert.Equal(t, "Hello", second.Turns[0].Content)
		assert.Equal(t, babel.RoleAssistant, second.Turns[1].Role)
		assert.Equal(t, "Goodbye", second.Turns[2].Content)
		assert.Contains(t, second.SystemPrompt, "- **French**: {translation}")
		assert.NotContains(t, (*reqs)[0].SystemPrompt, "French")
		assert.Equal(t, 4, s.Conversation.Len())
	})

	t.Run("empty message is rejected without a provider call", func(t *testing.T) {
		t.Parallel()
		p, reqs := fragmentProvider(nil, nil)
		tr := babel.NewTranslator(p)
		s := newSession(t)

		for _, text := range []string{"", "   ", "\n\t"} {
			err := tr.Run(context.Background(), s, text, nil)
			assert.ErrorIs(t, err, babel.ErrEmptyMessage)
		}
		assert.Empty(t, *reqs)
		assert.Equal(t, 0, s.Conversation.Len())
	})

	t.Run("message is trimmed", func(t *testing.T) {
		t.Parallel()
		p, _ := fragmentProvider([]string{"ok"}, nil)
		tr := babel.NewTranslator(p)
		s := newSession(t)

		require.NoError(t, tr.Run(context.Background(), s, "  Hola  \n", nil))
		assert.Equal(t, "Hola", s.Conversation.All()[0].Content)
	})
}

func TestTranslator_Failure(t *testing.T) {
	t.Parallel()

	t.Run("mid-stream failure leaves only the user turn", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		p, _ := fragmentProvider([]string{"- **Spanish**: Ho"}, boom)
		tr := babel.NewTranslator(p)
		s := newSession(t)

		var got []string
		err := tr.Run(context.Background(), s, "Hello", func(f string) { got = append(got, f) })
		require.ErrorIs(t, err, babel.ErrTranslation)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"- **Spanish**: Ho"}, got)

		turns := s.Conversation.All()
		require.Len(t, turns, 1)
		assert.Equal(t, babel.RoleUser, turns[0].Role)
	})

	t.Run("failure does not affect earlier pairs", func(t *testing.T) {
		t.Parallel()
		calls := 0
		p := &mock.Provider{
			StreamFn: func(_ context.Context, _ babel.Request) (babel.Stream, error) {
				calls++
				if calls == 1 {
					return mock.NewFragmentStream([]string{"- **Spanish**: Hola"}, nil), nil
				}
				return mock.NewFragmentStream(nil, errors.New("overloaded")), nil
			},
		}
		tr := babel.NewTranslator(p)
		s := newSession(t)

		require.NoError(t, tr.Run(context.Background(), s, "Hello", nil))
		require.Error(t, tr.Run(context.Background(), s, "Bye", nil))

		ex := s.Conversation.Exchanges()
		require.Len(t, ex, 2)
		require.NotNil(t, ex[0].Reply)
		assert.Equal(t, "- **Spanish**: Hola", ex[0].Reply.Content)
		assert.True(t, ex[1].Pending())
	})

	t.Run("provider error on open", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("unauthorized")
		p := &mock.Provider{
			StreamFn: func(_ context.Context, _ babel.Request) (babel.Stream, error) {
				return nil, boom
			},
		}
		tr := babel.NewTranslator(p)
		s := newSession(t)

		_, err := tr.Translate(context.Background(), s, "Hello")
		require.ErrorIs(t, err, babel.ErrTranslation)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, s.Conversation.Len())
	})

	t.Run("next submission retracts the unanswered turn", func(t *testing.T) {
		t.Parallel()
		calls := 0
		var last babel.Request
		p := &mock.Provider{
			StreamFn: func(_ context.Context, req babel.Request) (babel.Stream, error) {
				calls++
				last = req
				if calls == 1 {
					return mock.NewFragmentStream(nil, errors.New("timeout")), nil
				}
				return mock.NewFragmentStream([]string{"- **Spanish**: Hola"}, nil), nil
			},
		}
		tr := babel.NewTranslator(p)
		s := newSession(t)

		require.Error(t, tr.Run(context.Background(), s, "Hello?", nil))
		require.NoError(t, tr.Run(context.Background(), s, "Hello", nil))

		require.Len(t, last.Turns, 1)
		assert.Equal(t, "Hello", last.Turns[0].Content)
		turns := s.Conversation.All()
		require.Len(t, turns, 2)
		assert.Equal(t, "Hello", turns[0].Content)
		assert.Equal(t, babel.RoleAssistant, turns[1].Role)
	})

	t.Run("invalid temperature fails validation", func(t *testing.T) {
		t.Parallel()
		p, reqs := fragmentProvider(nil, nil)
		tr := babel.NewTranslator(p, babel.WithTemperature(3))
		s := newSession(t)

		err := tr.Run(context.Background(), s, "Hello", nil)
		require.ErrorIs(t, err, babel.ErrTranslation)
		assert.ErrorIs(t, err, babel.ErrValidation)
		assert.Empty(t, *reqs)
	})
}

func TestTranslation_Next(t *testing.T) {
	t.Parallel()

	t.Run("EOF is sticky after completion", func(t *testing.T) {
		t.Parallel()
		p, _ := fragmentProvider([]string{"a", "b"}, nil)
		s := newSession(t)
		tr, err := babel.NewTranslator(p).Translate(context.Background(), s, "Hello")
		require.NoError(t, err)

		f, err := tr.Next()
		require.NoError(t, err)
		assert.Equal(t, "a", f)
		f, err = tr.Next()
		require.NoError(t, err)
		assert.Equal(t, "b", f)
		_, err = tr.Next()
		assert.ErrorIs(t, err, io.EOF)
		_, err = tr.Next()
		assert.ErrorIs(t, err, io.EOF)

		assert.Equal(t, "ab", tr.Text())
		assert.Equal(t, babel.StopEndTurn, tr.Reply().StopReason)
		assert.NoError(t, tr.Err())
		assert.Equal(t, 2, s.Conversation.Len())
	})

	t.Run("close before completion appends nothing", func(t *testing.T) {
		t.Parallel()
		closed := false
		stream := mock.NewFragmentStream([]string{"a", "b"}, nil)
		stream.CloseFn = func() error { closed = true; return nil }
		p := &mock.Provider{
			StreamFn: func(_ context.Context, _ babel.Request) (babel.Stream, error) { return stream, nil },
		}
		s := newSession(t)
		tr, err := babel.NewTranslator(p).Translate(context.Background(), s, "Hello")
		require.NoError(t, err)

		_, err = tr.Next()
		require.NoError(t, err)
		require.NoError(t, tr.Close())

		assert.True(t, closed)
		_, err = tr.Next()
		assert.ErrorIs(t, err, babel.ErrStreamClosed)
		assert.Equal(t, 1, s.Conversation.Len())
	})

	t.Run("close after completion is a no-op", func(t *testing.T) {
		t.Parallel()
		p, _ := fragmentProvider([]string{"a"}, nil)
		s := newSession(t)
		tr, err := babel.NewTranslator(p).Translate(context.Background(), s, "Hello")
		require.NoError(t, err)
		for _, err := range tr.All() {
			require.NoError(t, err)
		}
		require.NoError(t, tr.Close())
		assert.NoError(t, tr.Err())
		assert.Equal(t, 2, s.Conversation.Len())
	})
}
