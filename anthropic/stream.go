package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/babel"
)

// stream implements [babel.Stream] by parsing SSE events from an HTTP response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   babel.StreamState
	reply   babel.Reply
	text    strings.Builder
	err     error // terminal error, if any
}

// Interface compliance check.
var _ babel.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		state:   babel.StreamStateNew,
	}
}

// Next reads SSE events until the next text fragment.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (string, error) {
	switch s.state {
	case babel.StreamStateComplete:
		return "", io.EOF
	case babel.StreamStateError:
		return "", s.err
	case babel.StreamStateClosed:
		return "", fmt.Errorf("anthropic: %w", babel.ErrStreamClosed)
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return "", s.err
		}

		s.state = babel.StreamStateStreaming

		frag, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return "", s.err
		}

		// processEvent may set a terminal state (e.g. message_stop).
		if s.state == babel.StreamStateComplete {
			return "", io.EOF
		}

		if frag != "" {
			return frag, nil
		}
		// Non-text event (ping, message_start, etc.) - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() babel.StreamState {
	return s.state
}

// Reply returns the reply assembled so far.
func (s *stream) Reply() (babel.Reply, error) {
	if s.state == babel.StreamStateNew {
		return babel.Reply{}, fmt.Errorf("anthropic: %w", babel.ErrStreamNotReady)
	}
	r := s.reply
	r.Text = s.text.String()
	return r, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != babel.StreamStateComplete && s.state != babel.StreamStateError {
		s.state = babel.StreamStateClosed
		s.reply.StopReason = babel.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	return s.body.Close()
}

// terminate records a terminal error and sets the appropriate state and stop reason.
func (s *stream) terminate(err error) {
	s.state = babel.StreamStateError
	if err == io.EOF {
		// Normal completion via message_stop sets StreamStateComplete
		// before we reach here. Raw EOF means the stream was cut short.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		s.reply.StopReason = babel.StopError
		s.reply.RawStopReason = "error"
		return
	}
	s.err = err
	if s.ctx.Err() != nil {
		s.reply.StopReason = babel.StopAborted
		s.reply.RawStopReason = "aborted"
	} else {
		s.reply.StopReason = babel.StopError
		s.reply.RawStopReason = "error"
	}
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent applies an SSE event to the reply and returns the text
// fragment it carries, if any.
func (s *stream) processEvent(eventType, data string) (string, error) {
	switch eventType {
	case "message_start":
		return "", s.handleMessageStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return "", s.handleMessageDelta(data)
	case "message_stop":
		s.state = babel.StreamStateComplete
		return "", nil
	case "error":
		return "", s.handleError(data)
	default:
		// ping, content_block_start/stop and unknown types carry no text.
		return "", nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_start: %w", err)
	}
	u := evt.Message.Usage
	s.reply.Usage.InputTokens = u.InputTokens
	s.reply.Usage.OutputTokens = u.OutputTokens
	if u.CacheReadInputTokens != nil {
		s.reply.Usage.CacheReadTokens = *u.CacheReadInputTokens
	}
	if u.CacheCreationInputTokens != nil {
		s.reply.Usage.CacheWriteTokens = *u.CacheCreationInputTokens
	}
	return nil
}

func (s *stream) handleContentBlockDelta(data string) (string, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if evt.Delta.Type != "text_delta" {
		return "", nil
	}
	s.text.WriteString(evt.Delta.Text)
	return evt.Delta.Text, nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}

	u := evt.Usage
	s.reply.Usage.OutputTokens = u.OutputTokens
	if u.InputTokens != nil {
		s.reply.Usage.InputTokens = *u.InputTokens
	}
	if u.CacheReadInputTokens != nil {
		s.reply.Usage.CacheReadTokens = *u.CacheReadInputTokens
	}
	if u.CacheCreationInputTokens != nil {
		s.reply.Usage.CacheWriteTokens = *u.CacheCreationInputTokens
	}

	if evt.Delta.StopReason != nil {
		s.reply.RawStopReason = *evt.Delta.StopReason
		s.reply.StopReason = mapStopReason(*evt.Delta.StopReason)
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}

func mapStopReason(raw string) babel.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return babel.StopEndTurn
	case "max_tokens":
		return babel.StopLength
	default:
		return babel.StopUnknown
	}
}
