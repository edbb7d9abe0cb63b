package babel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Generation defaults. A moderate, non-zero temperature favors natural
// phrasing over determinism.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// TranslateFunc translates one user message within a session, calling
// onFragment for each streamed piece of the reply. UI shells depend on this
// shape rather than on Translator directly.
type TranslateFunc func(ctx context.Context, session *Session, text string, onFragment func(string)) error

// Translator turns one user message into one multi-language translation
// block using a Provider.
type Translator struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithModel sets the model ID for provider requests.
// Empty string means the provider uses its default model.
func WithModel(model string) TranslatorOption {
	return func(t *Translator) { t.model = model }
}

// WithMaxTokens sets the response-length ceiling.
func WithMaxTokens(n int) TranslatorOption {
	return func(t *Translator) { t.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) TranslatorOption {
	return func(t *Translator) { t.temperature = temp }
}

// WithLogger sets the logger. Nil keeps the default, which discards.
func WithLogger(l *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTranslator creates a Translator backed by provider.
func NewTranslator(provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:    provider,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Translate appends text to the session as a user turn and starts streaming
// its translation. The whole conversation is sent as context together with
// an instruction built from the session's current language set.
//
// If the previous submission failed, its unanswered user turn is retracted
// first so the conversation keeps alternating. On error the new user turn
// stays in the conversation without a reply.
func (t *Translator) Translate(ctx context.Context, session *Session, text string) (*Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if session.Conversation.retractUnanswered() {
		t.logger.DebugContext(ctx, "retracted unanswered turn", slog.String("session", session.ID))
	}
	now := time.Now()
	session.Conversation.Append(Turn{Role: RoleUser, Content: text, Timestamp: now})
	session.UpdatedAt = now

	temp := t.temperature
	req := Request{
		Model:        t.model,
		SystemPrompt: BuildInstruction(session.Languages.Names()),
		Turns:        session.Conversation.All(),
		MaxTokens:    t.maxTokens,
		Temperature:  &temp,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranslation, err)
	}

	t.logger.DebugContext(ctx, "translation started",
		slog.String("session", session.ID),
		slog.Int("turns", len(req.Turns)),
		slog.String("languages", session.Languages.String()),
	)

	stream, err := t.provider.Stream(ctx, req)
	if err != nil {
		t.logger.ErrorContext(ctx, "translation request failed",
			slog.String("session", session.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrTranslation, err)
	}
	return &Translation{
		ctx:     ctx,
		stream:  stream,
		session: session,
		logger:  t.logger,
		started: now,
	}, nil
}

// Run translates text and drains the result, forwarding each fragment to
// onFragment. It satisfies TranslateFunc.
func (t *Translator) Run(ctx context.Context, session *Session, text string, onFragment func(string)) error {
	tr, err := t.Translate(ctx, session, text)
	if err != nil {
		return err
	}
	defer tr.Close()
	for frag, err := range tr.All() {
		if err != nil {
			return err
		}
		if onFragment != nil {
			onFragment(frag)
		}
	}
	return nil
}
