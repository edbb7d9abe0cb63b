package web

import (
	"errors"
	"net/http"

	"github.com/fwojciec/babel"
	babeljson "github.com/fwojciec/babel/json"
)

type indexData struct {
	Title    string
	Snapshot babeljson.Snapshot
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{Title: "Multilingual Chat", Snapshot: s.current()}
	if err := s.page.Execute(w, data); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "error", err)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.writeSnapshot(w, s.current())
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	text, err := babeljson.DecodeMessageRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	if !s.acquire() {
		s.writeError(w, http.StatusConflict, errors.New("a translation is already in progress"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := &eventWriter{w: w, flusher: flusher}
	ctx := r.Context()
	err = s.translate(ctx, s.session, text, func(fragment string) {
		data, err := babeljson.MarshalFragment(fragment)
		if err != nil {
			return
		}
		if err := events.send("fragment", data); err != nil {
			s.logger.DebugContext(ctx, "write fragment", "error", err)
		}
	})
	snap := s.release()

	if err != nil {
		s.logger.WarnContext(ctx, "translation failed", "error", err)
		data, merr := babeljson.MarshalError(err)
		if merr == nil {
			_ = events.send("error", data)
		}
		return
	}
	data, err := babeljson.MarshalSnapshot(snap)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal snapshot", "error", err)
		return
	}
	_ = events.send("done", data)
}

func (s *Server) handleAddLanguage(w http.ResponseWriter, r *http.Request) {
	name, err := babeljson.DecodeLanguageRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeMutation(w, func(session *babel.Session) {
		session.AddLanguage(name)
	})
}

func (s *Server) handleRemoveLanguage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.writeMutation(w, func(session *babel.Session) {
		session.RemoveLanguage(name)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.writeMutation(w, func(session *babel.Session) {
		session.Clear()
	})
}

// writeMutation applies fn and writes the resulting snapshot. Rejected
// language changes leave the session as it was and still return 200.
func (s *Server) writeMutation(w http.ResponseWriter, fn func(*babel.Session)) {
	snap, ok := s.mutate(fn)
	if !ok {
		s.writeError(w, http.StatusConflict, errors.New("a translation is in progress"))
		return
	}
	s.writeSnapshot(w, snap)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, snap babeljson.Snapshot) {
	data, err := babeljson.MarshalSnapshot(snap)
	if err != nil {
		s.logger.Error("marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	data, merr := babeljson.MarshalError(err)
	if merr != nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
