// Package web provides a browser UI for the babel translator: an HTML page
// backed by a JSON API, with translations streamed as Server-Sent Events.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fwojciec/babel"
	babeljson "github.com/fwojciec/babel/json"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

var _ http.Handler = (*Server)(nil)

// Server serves one session. A message submitted while another translation
// streams is rejected with 409 Conflict, as are language and clear requests.
type Server struct {
	translate babel.TranslateFunc
	logger    *slog.Logger
	page      *template.Template
	handler   http.Handler

	mu      sync.Mutex
	session *babel.Session
	busy    bool
	// snapshot is the session as of the last settled change. It is served
	// while a translation owns the session.
	snapshot babeljson.Snapshot
}

// NewServer creates a Server for session. A nil logger discards output.
func NewServer(session *babel.Session, translate babel.TranslateFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		translate: translate,
		logger:    logger,
		page:      template.Must(template.ParseFS(templateFS, "templates/index.html")),
		session:   session,
		snapshot:  babeljson.NewSnapshot(session, false),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/messages", s.handleMessage)
	mux.HandleFunc("POST /api/languages", s.handleAddLanguage)
	mux.HandleFunc("DELETE /api/languages/{name}", s.handleRemoveLanguage)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	s.handler = chain(mux, recoverPanic(logger), logRequests(logger))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// mutate runs fn on the session unless a translation is streaming. It
// reports false when the server is busy.
func (s *Server) mutate(fn func(*babel.Session)) (babeljson.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.snapshot, false
	}
	fn(s.session)
	s.snapshot = babeljson.NewSnapshot(s.session, false)
	return s.snapshot, true
}

// acquire marks the server busy. It reports false if it already was.
func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	s.snapshot.Busy = true
	return true
}

// release clears the busy flag and returns the settled snapshot.
func (s *Server) release() babeljson.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.snapshot = babeljson.NewSnapshot(s.session, false)
	return s.snapshot
}

func (s *Server) current() babeljson.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}
