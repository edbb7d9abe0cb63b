package babel

import "context"

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving fragments.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next() returns the next text fragment in arrival order and io.EOF once the
// provider signals the end of the reply.
//
// Reply() returns the assembled reply. Behavior by stream state:
//   - StreamStateComplete: complete reply, nil error.
//   - StreamStateError: partial reply, nil error. StopReason is StopError
//     for transport/protocol failures, StopAborted for context cancellation.
//   - StreamStateStreaming: partial reply, nil error.
//   - StreamStateNew: zero-value reply, non-nil error.
//   - StreamStateClosed: partial reply with StopReason = StopAborted.
//     Subsequent Next() calls return error.
type Stream interface {
	Next() (string, error)
	State() StreamState
	Reply() (Reply, error)
	Close() error
}

// Provider is a strategy pattern interface for completion APIs.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries the instruction, the conversation so far and generation
// parameters. The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Turns        []Turn
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// Reply is the assembled result of a stream.
type Reply struct {
	Text          string
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
}
