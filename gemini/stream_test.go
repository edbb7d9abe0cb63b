package gemini_test

import (
	"context"
	"io"
	"testing"

	"github.com/fwojciec/babel"
	"github.com/fwojciec/babel/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func textChunk(finish genai.FinishReason, parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: parts},
			FinishReason: finish,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
		},
	}
}

func collectFragments(t *testing.T, s babel.Stream) []string {
	t.Helper()
	var frags []string
	for {
		f, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		frags = append(frags, f)
	}
	return frags
}

func TestStream_TextFragments(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("", &genai.Part{Text: "- **Spanish**: Hola"}),
		{
			Candidates: []*genai.Candidate{{
				Content:      &genai.Content{Parts: []*genai.Part{{Text: " amigo"}}},
				FinishReason: genai.FinishReasonStop,
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 8,
			},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"- **Spanish**: Hola", " amigo"}, collectFragments(t, s))

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "- **Spanish**: Hola amigo", reply.Text)
	assert.Equal(t, babel.StopEndTurn, reply.StopReason)
	assert.Equal(t, "STOP", reply.RawStopReason)
	assert.Equal(t, 10, reply.Usage.InputTokens)
	assert.Equal(t, 8, reply.Usage.OutputTokens)
}

func TestStream_MultiPartChunk(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk(genai.FinishReasonStop,
			&genai.Part{Text: "- **Spanish**: Hola\n"},
			&genai.Part{Text: "- **Haitian Creole**: Bonjou"},
		),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"- **Spanish**: Hola\n", "- **Haitian Creole**: Bonjou"}, collectFragments(t, s))
}

func TestStream_SkipsThoughtsAndEmptyParts(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("", &genai.Part{Text: "The message is English.", Thought: true}),
		textChunk("", &genai.Part{Text: ""}, nil),
		textChunk(genai.FinishReasonStop, &genai.Part{Text: "- **Spanish**: Hola"}),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"- **Spanish**: Hola"}, collectFragments(t, s))

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "- **Spanish**: Hola", reply.Text)
}

func TestStream_NilAndEmptyChunksSkipped(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		nil,
		{},
		textChunk(genai.FinishReasonStop, &genai.Part{Text: "Hola"}),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"Hola"}, collectFragments(t, s))
}

func TestStream_Usage(t *testing.T) {
	t.Parallel()

	t.Run("cached tokens are subtracted", func(t *testing.T) {
		t.Parallel()
		chunk := textChunk(genai.FinishReasonStop, &genai.Part{Text: "Hi"})
		chunk.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:        210,
			CandidatesTokenCount:    5,
			CachedContentTokenCount: 200,
		}
		s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{chunk}))
		collectFragments(t, s)

		reply, err := s.Reply()
		require.NoError(t, err)
		assert.Equal(t, babel.Usage{InputTokens: 10, OutputTokens: 5, CacheReadTokens: 200}, reply.Usage)
	})

	t.Run("clamps negative input", func(t *testing.T) {
		t.Parallel()
		chunk := textChunk(genai.FinishReasonStop, &genai.Part{Text: "Hi"})
		chunk.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:        5,
			CandidatesTokenCount:    3,
			CachedContentTokenCount: 100,
		}
		s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{chunk}))
		collectFragments(t, s)

		reply, err := s.Reply()
		require.NoError(t, err)
		assert.Equal(t, 0, reply.Usage.InputTokens)
		assert.Equal(t, 100, reply.Usage.CacheReadTokens)
	})
}

func TestStream_StopReasons(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		finish  genai.FinishReason
		want    babel.StopReason
		wantRaw string
	}{
		{"stop", genai.FinishReasonStop, babel.StopEndTurn, "STOP"},
		{"max tokens", genai.FinishReasonMaxTokens, babel.StopLength, "MAX_TOKENS"},
		{"safety", genai.FinishReasonSafety, babel.StopUnknown, "SAFETY"},
		{"absent defaults to end turn", "", babel.StopEndTurn, "end_turn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks := []*genai.GenerateContentResponse{textChunk(tt.finish, &genai.Part{Text: "Hi"})}
			s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
			collectFragments(t, s)

			reply, err := s.Reply()
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.StopReason)
			assert.Equal(t, tt.wantRaw, reply.RawStopReason)
		})
	}
}

func TestStream_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emptyIter := func(yield func(*genai.GenerateContentResponse, error) bool) {}

	s := gemini.NewStreamFromIter(ctx, emptyIter)
	_, err := s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	reply, _ := s.Reply()
	assert.Equal(t, babel.StopAborted, reply.StopReason)
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	errIter := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk("", &genai.Part{Text: "Ho"}), nil) {
			return
		}
		yield(nil, assert.AnError)
	}

	s := gemini.NewStreamFromIter(context.Background(), errIter)
	frag, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "Ho", frag)

	_, err = s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "gemini:")
	assert.Equal(t, babel.StreamStateError, s.State())

	// The error is sticky.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)

	reply, _ := s.Reply()
	assert.Equal(t, babel.StopError, reply.StopReason)
	assert.Equal(t, "Ho", reply.Text)
}

func TestStream_PromptBlocked(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReasonSafety,
			},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt blocked")

	assert.Equal(t, babel.StreamStateError, s.State())
	reply, _ := s.Reply()
	assert.Equal(t, babel.StopError, reply.StopReason)
	assert.Equal(t, "SAFETY", reply.RawStopReason)
}

func TestStream_State(t *testing.T) {
	t.Parallel()
	chunks := func() []*genai.GenerateContentResponse {
		return []*genai.GenerateContentResponse{
			textChunk("", &genai.Part{Text: "a"}),
			textChunk(genai.FinishReasonStop, &genai.Part{Text: "b"}),
		}
	}

	t.Run("new before first next", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks()))
		assert.Equal(t, babel.StreamStateNew, s.State())
		_, err := s.Reply()
		assert.ErrorIs(t, err, babel.ErrStreamNotReady)
	})

	t.Run("streaming after first next", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks()))
		_, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, babel.StreamStateStreaming, s.State())
	})

	t.Run("complete after EOF", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks()))
		collectFragments(t, s)
		assert.Equal(t, babel.StreamStateComplete, s.State())
		_, err := s.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("closed after close mid-stream", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks()))
		_, err := s.Next()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.Equal(t, babel.StreamStateClosed, s.State())

		reply, err := s.Reply()
		require.NoError(t, err)
		assert.Equal(t, babel.StopAborted, reply.StopReason)

		_, err = s.Next()
		assert.ErrorIs(t, err, gemini.ErrStreamClosed)
	})

	t.Run("close preserves terminal state", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks()))
		collectFragments(t, s)
		require.NoError(t, s.Close())

		reply, err := s.Reply()
		require.NoError(t, err)
		assert.Equal(t, babel.StopEndTurn, reply.StopReason)
	})
}
