package babel

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Translation is the in-flight reply to one user turn. It is a finite,
// non-restartable pull iterator over text fragments: drain it with Next
// (or range over All) until io.EOF, or Close it to abandon it.
//
// When the stream completes, the concatenated fragments are appended to the
// session as one assistant turn. A failed or abandoned translation appends
// nothing.
type Translation struct {
	ctx     context.Context
	stream  Stream
	session *Session
	logger  *slog.Logger
	started time.Time

	text  strings.Builder
	reply Reply
	done  bool
	err   error // terminal error, if any
}

// Next returns the next fragment. It returns io.EOF after the assistant turn
// has been appended, and the same error on every call after a failure.
func (tr *Translation) Next() (string, error) {
	if tr.err != nil {
		return "", tr.err
	}
	if tr.done {
		return "", io.EOF
	}

	frag, err := tr.stream.Next()
	if err == io.EOF {
		if err := tr.finish(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	if err != nil {
		tr.fail(err)
		return "", tr.err
	}
	tr.text.WriteString(frag)
	return frag, nil
}

// All returns a range-over-func view of Next. Iteration stops after the
// last fragment or yields a single error. Breaking out early does not close
// the translation.
func (tr *Translation) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			frag, err := tr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

// Text returns the fragments received so far, concatenated.
func (tr *Translation) Text() string { return tr.text.String() }

// Reply returns the provider's assembled reply. It is only meaningful once
// Next has returned io.EOF.
func (tr *Translation) Reply() Reply { return tr.reply }

// Err returns the terminal error, if any.
func (tr *Translation) Err() error { return tr.err }

// Close abandons the translation if it has not finished and releases the
// underlying stream. Closing a finished translation is a no-op.
func (tr *Translation) Close() error {
	if tr.done || tr.err != nil {
		return nil
	}
	tr.err = ErrStreamClosed
	return tr.stream.Close()
}

func (tr *Translation) finish() error {
	reply, err := tr.stream.Reply()
	if err != nil {
		tr.fail(err)
		return tr.err
	}
	tr.reply = reply
	tr.done = true
	_ = tr.stream.Close()

	now := time.Now()
	tr.session.Conversation.Append(Turn{
		Role:      RoleAssistant,
		Content:   tr.text.String(),
		Timestamp: now,
	})
	tr.session.UpdatedAt = now

	if reply.StopReason == StopLength {
		tr.logger.WarnContext(tr.ctx, "translation truncated at max tokens",
			slog.String("session", tr.session.ID),
		)
	}
	tr.logger.InfoContext(tr.ctx, "translation complete",
		slog.String("session", tr.session.ID),
		slog.Duration("elapsed", now.Sub(tr.started)),
		slog.Int("input_tokens", reply.Usage.InputTokens),
		slog.Int("output_tokens", reply.Usage.OutputTokens),
		slog.String("stop_reason", string(reply.StopReason)),
	)
	return nil
}

func (tr *Translation) fail(err error) {
	tr.err = fmt.Errorf("%w: %w", ErrTranslation, err)
	_ = tr.stream.Close()
	tr.logger.ErrorContext(tr.ctx, "translation failed",
		slog.String("session", tr.session.ID),
		slog.Any("error", err),
	)
}
