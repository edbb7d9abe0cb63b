package web_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/babel"
	babeljson "github.com/fwojciec/babel/json"
	"github.com/fwojciec/babel/mock"
	"github.com/fwojciec/babel/web"
	"github.com/stretchr/testify/require"
)

type event struct {
	name string
	data string
}

func newSession(t *testing.T, languages ...string) *babel.Session {
	t.Helper()
	s, err := babel.NewSession(languages...)
	require.NoError(t, err)
	return s
}

// fragmentTranslator returns a TranslateFunc backed by a Translator whose
// provider streams fragments and then err.
func fragmentTranslator(fragments []string, err error) babel.TranslateFunc {
	p := &mock.Provider{
		StreamFn: func(_ context.Context, _ babel.Request) (babel.Stream, error) {
			return mock.NewFragmentStream(fragments, err), nil
		},
	}
	return babel.NewTranslator(p).Run
}

func nopTranslate(_ context.Context, _ *babel.Session, _ string, _ func(string)) error {
	return nil
}

// do sends a request to srv and returns the recorded response.
func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, body []byte) babeljson.Snapshot {
	t.Helper()
	var snap babeljson.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	return snap
}

// parseEvents splits a text/event-stream body into events.
func parseEvents(t *testing.T, body string) []event {
	t.Helper()
	var events []event
	var cur event
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if cur.name != "" {
				events = append(events, cur)
			}
			cur = event{}
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func newServer(t *testing.T, session *babel.Session, translate babel.TranslateFunc) *web.Server {
	t.Helper()
	return web.NewServer(session, translate, nil)
}
