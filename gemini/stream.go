package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/babel"
	"google.golang.org/genai"
)

// stream implements [babel.Stream] by wrapping the genai SDK's streaming iterator.
// A single response chunk may carry several text parts; they are queued and
// handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   babel.StreamState
	reply   babel.Reply
	text    strings.Builder
	pending []string
	err     error
}

// Interface compliance check.
var _ babel.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai streaming iterator as a [babel.Stream].
// Exported for testing with canned chunks.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) babel.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: babel.StreamStateNew,
	}
}

func (s *stream) Next() (string, error) {
	switch s.state {
	case babel.StreamStateComplete:
		return "", io.EOF
	case babel.StreamStateError:
		return "", s.err
	case babel.StreamStateClosed:
		return "", ErrStreamClosed
	}

	for len(s.pending) == 0 {
		chunk, err, ok := s.pull()
		if !ok {
			if err := s.ctx.Err(); err != nil {
				s.terminate(err)
				return "", s.err
			}
			s.finalize()
			return "", io.EOF
		}
		if err != nil {
			s.terminate(err)
			return "", s.err
		}
		s.state = babel.StreamStateStreaming
		if err := s.processChunk(chunk); err != nil {
			s.terminate(err)
			return "", s.err
		}
	}

	frag := s.pending[0]
	s.pending = s.pending[1:]
	return frag, nil
}

func (s *stream) State() babel.StreamState {
	return s.state
}

func (s *stream) Reply() (babel.Reply, error) {
	if s.state == babel.StreamStateNew {
		return babel.Reply{}, fmt.Errorf("gemini: %w", babel.ErrStreamNotReady)
	}
	r := s.reply
	r.Text = s.text.String()
	return r, nil
}

func (s *stream) Close() error {
	if s.state != babel.StreamStateComplete && s.state != babel.StreamStateError {
		s.state = babel.StreamStateClosed
		s.reply.StopReason = babel.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func (s *stream) processChunk(chunk *genai.GenerateContentResponse) error {
	if chunk == nil {
		return nil
	}
	if chunk.UsageMetadata != nil {
		s.applyUsage(chunk.UsageMetadata)
	}
	if len(chunk.Candidates) == 0 {
		if fb := chunk.PromptFeedback; fb != nil && fb.BlockReason != "" {
			s.reply.RawStopReason = string(fb.BlockReason)
			return fmt.Errorf("prompt blocked: %s", fb.BlockReason)
		}
		return nil
	}

	cand := chunk.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought || p.Text == "" {
				continue
			}
			s.text.WriteString(p.Text)
			s.pending = append(s.pending, p.Text)
		}
	}
	if cand.FinishReason != "" {
		s.reply.RawStopReason = string(cand.FinishReason)
		s.reply.StopReason = mapFinishReason(cand.FinishReason)
	}
	return nil
}

// applyUsage records the latest usage. PromptTokenCount includes cached
// tokens, so they are subtracted to match babel.Usage.
func (s *stream) applyUsage(u *genai.GenerateContentResponseUsageMetadata) {
	cached := int(u.CachedContentTokenCount)
	s.reply.Usage = babel.Usage{
		InputTokens:     max(int(u.PromptTokenCount)-cached, 0),
		OutputTokens:    int(u.CandidatesTokenCount),
		CacheReadTokens: cached,
	}
}

func (s *stream) finalize() {
	s.state = babel.StreamStateComplete
	if s.reply.StopReason == "" {
		s.reply.StopReason = babel.StopEndTurn
		s.reply.RawStopReason = "end_turn"
	}
}

func (s *stream) terminate(err error) {
	s.state = babel.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	if s.ctx.Err() != nil {
		s.reply.StopReason = babel.StopAborted
		s.reply.RawStopReason = "aborted"
		return
	}
	s.reply.StopReason = babel.StopError
	if s.reply.RawStopReason == "" {
		s.reply.RawStopReason = "error"
	}
}

func mapFinishReason(r genai.FinishReason) babel.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return babel.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return babel.StopLength
	default:
		return babel.StopUnknown
	}
}
