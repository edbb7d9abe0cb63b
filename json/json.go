// Package json implements the JSON wire format of the web shell: session
// snapshots, request bodies and stream event payloads.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/babel"
	"github.com/fwojciec/babel/goldmark"
)

// Snapshot is the JSON representation of a session as shown to the browser.
type Snapshot struct {
	ID        string     `json:"id"`
	Languages []string   `json:"languages"`
	Exchanges []Exchange `json:"exchanges"`
	Busy      bool       `json:"busy"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Exchange is one user message and its translation, if any.
type Exchange struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Pending   bool      `json:"pending"`
	Reply     *Reply    `json:"reply,omitempty"`
}

// Reply is an assistant turn. Lines holds the per-language lines parsed from
// Content; a reply that does not follow the line format has none.
type Reply struct {
	Content   string    `json:"content"`
	Lines     []Line    `json:"lines"`
	Timestamp time.Time `json:"timestamp"`
}

// Line is one translation of the user message.
type Line struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// NewSnapshot builds the snapshot of s. busy reports whether a translation
// is streaming.
func NewSnapshot(s *babel.Session, busy bool) Snapshot {
	exchanges := s.Conversation.Exchanges()
	snap := Snapshot{
		ID:        s.ID,
		Languages: s.Languages.Names(),
		Exchanges: make([]Exchange, len(exchanges)),
		Busy:      busy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for i, ex := range exchanges {
		dto := Exchange{
			Text:      ex.User.Content,
			Timestamp: ex.User.Timestamp,
			Pending:   ex.Pending(),
		}
		if ex.Reply != nil {
			dto.Reply = newReply(*ex.Reply)
		}
		snap.Exchanges[i] = dto
	}
	return snap
}

func newReply(t babel.Turn) *Reply {
	parsed := goldmark.ParseLines(t.Content)
	lines := make([]Line, len(parsed))
	for i, l := range parsed {
		lines[i] = Line{Language: l.Language, Text: l.Text}
	}
	return &Reply{Content: t.Content, Lines: lines, Timestamp: t.Timestamp}
}

// MarshalSnapshot serializes a snapshot.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

type messageRequest struct {
	Text string `json:"text"`
}

type languageRequest struct {
	Name string `json:"name"`
}

// DecodeMessageRequest reads a {"text": ...} body. Blank text is rejected
// with babel.ErrEmptyMessage.
func DecodeMessageRequest(r io.Reader) (string, error) {
	var req messageRequest
	if err := decode(r, &req); err != nil {
		return "", fmt.Errorf("message request: %w", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("message request: %w", babel.ErrEmptyMessage)
	}
	return req.Text, nil
}

// DecodeLanguageRequest reads a {"name": ...} body.
func DecodeLanguageRequest(r io.Reader) (string, error) {
	var req languageRequest
	if err := decode(r, &req); err != nil {
		return "", fmt.Errorf("language request: %w", err)
	}
	return req.Name, nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body: %w", babel.ErrValidation)
		}
		return fmt.Errorf("%w: %w", babel.ErrValidation, err)
	}
	return nil
}

type fragmentEvent struct {
	Text string `json:"text"`
}

type errorEvent struct {
	Message string `json:"message"`
}

// MarshalFragment serializes the payload of a fragment event.
func MarshalFragment(text string) ([]byte, error) {
	return json.Marshal(fragmentEvent{Text: text})
}

// MarshalError serializes the payload of an error event or response.
func MarshalError(err error) ([]byte, error) {
	return json.Marshal(errorEvent{Message: err.Error()})
}
