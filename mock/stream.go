package mock

import (
	"io"
	"strings"

	"github.com/fwojciec/babel"
)

// Interface compliance check.
var _ babel.Stream = (*Stream)(nil)

// Stream is a test double for babel.Stream.
// Set the function fields for the methods you need. NextFn and ReplyFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because callers close streams unconditionally.
type Stream struct {
	NextFn  func() (string, error)
	StateFn func() babel.StreamState
	ReplyFn func() (babel.Reply, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (string, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() babel.StreamState {
	if s.StateFn == nil {
		return babel.StreamStateNew
	}
	return s.StateFn()
}

// Reply delegates to ReplyFn.
func (s *Stream) Reply() (babel.Reply, error) {
	return s.ReplyFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// NewFragmentStream returns a Stream that yields fragments in order. If err
// is nil the stream then completes with io.EOF and a StopEndTurn reply;
// otherwise Next returns err after the last fragment.
func NewFragmentStream(fragments []string, err error) *Stream {
	var (
		i     int
		state = babel.StreamStateNew
		text  strings.Builder
	)
	return &Stream{
		NextFn: func() (string, error) {
			switch state {
			case babel.StreamStateComplete:
				return "", io.EOF
			case babel.StreamStateError:
				return "", err
			}
			if i < len(fragments) {
				state = babel.StreamStateStreaming
				f := fragments[i]
				i++
				text.WriteString(f)
				return f, nil
			}
			if err != nil {
				state = babel.StreamStateError
				return "", err
			}
			state = babel.StreamStateComplete
			return "", io.EOF
		},
		StateFn: func() babel.StreamState { return state },
		ReplyFn: func() (babel.Reply, error) {
			if state == babel.StreamStateNew {
				return babel.Reply{}, babel.ErrStreamNotReady
			}
			r := babel.Reply{Text: text.String(), StopReason: babel.StopEndTurn, RawStopReason: "end_turn"}
			if state == babel.StreamStateError {
				r.StopReason = babel.StopError
				r.RawStopReason = "error"
			}
			return r, nil
		},
	}
}
