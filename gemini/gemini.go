// Package gemini implements [babel.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between babel's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [babel.Stream] interface.
package gemini

import "errors"

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 1000
)

// ErrStreamClosed is returned by Next after Close.
var ErrStreamClosed = errors.New("gemini: stream closed")
