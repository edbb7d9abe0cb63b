package babel

import (
	"time"

	"github.com/google/uuid"
)

// Session owns the state of one interactive session: the conversation and
// the language set translations are produced for. A Session is not safe for
// concurrent use; UI shells drive it from one logical thread.
type Session struct {
	ID           string
	Conversation Conversation
	Languages    LanguageSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSession creates an empty session translating between languages. With
// no languages it uses DefaultLanguages.
func NewSession(languages ...string) (*Session, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	set, err := NewLanguageSet(languages...)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Languages: set,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddLanguage adds a target language. See LanguageSet.Add.
func (s *Session) AddLanguage(name string) bool {
	if !s.Languages.Add(name) {
		return false
	}
	s.UpdatedAt = time.Now()
	return true
}

// RemoveLanguage removes a target language. See LanguageSet.Remove.
func (s *Session) RemoveLanguage(name string) bool {
	if !s.Languages.Remove(name) {
		return false
	}
	s.UpdatedAt = time.Now()
	return true
}

// Clear empties the conversation. The language set is kept.
func (s *Session) Clear() {
	s.Conversation.Clear()
	s.UpdatedAt = time.Now()
}
