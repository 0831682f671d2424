package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
)

// Call is one request received by the FakeBackend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Failure is a canned failure queued for a route. Drop closes the
// connection without writing a response.
type Failure struct {
	Status int
	Body   string
	Drop   bool
}

// FakeBackend is an in-process implementation of the daoban REST API.
type FakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	users    map[string]string
	docs     map[string]json.RawMessage
	calls    []Call
	failures map[string][]Failure
	delay    time.Duration
}

// BackendOption configures a FakeBackend.
type BackendOption func(*FakeBackend)

// WithUser registers a user with the given password.
func WithUser(username, password string) BackendOption {
	return func(b *FakeBackend) { b.users[username] = password }
}

// WithStoredDocument seeds the raw document returned for username.
func WithStoredDocument(username, raw string) BackendOption {
	return func(b *FakeBackend) { b.docs[username] = json.RawMessage(raw) }
}

// WithDelay makes every handler sleep before answering.
func WithDelay(d time.Duration) BackendOption {
	return func(b *FakeBackend) { b.delay = d }
}

// NewFakeBackend starts a FakeBackend that is closed when the test ends.
func NewFakeBackend(t *testing.T, opts ...BackendOption) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		users:    make(map[string]string),
		docs:     make(map[string]json.RawMessage),
		failures: make(map[string][]Failure),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// BaseURL is the API root to configure the client with.
func (b *FakeBackend) BaseURL() string {
	return b.server.URL + "/api"
}

// HTTPClient returns a client that never reuses connections, so a dropped
// connection is reported to the caller instead of being retried by the
// transport.
func (b *FakeBackend) HTTPClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

// FailNext queues failures for method+path, consumed one per request.
func (b *FakeBackend) FailNext(method, path string, failures ...Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failures...)
}

// Calls returns the recorded requests for method+path in arrival order.
func (b *FakeBackend) Calls(method, path string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Document returns the stored raw document for username.
func (b *FakeBackend) Document(username string) (json.RawMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[username]
	return doc, ok
}

func (b *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Post("/auth/logout", b.logout)
		r.Get("/user/data", b.getUserData)
		r.Post("/user/data", b.saveUserData)
	})
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		delay := b.delay
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		queue := b.failures[key]
		var f *Failure
		if len(queue) > 0 {
			f = &queue[0]
			b.failures[key] = queue[1:]
		}
		b.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.Drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.Status)
		_, _ = io.WriteString(w, f.Body)
	})
}

type authBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req authBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "malformed body"})
		return
	}
	b.mu.Lock()
	password, ok := b.users[req.Username]
	b.mu.Unlock()
	if !ok || password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": req.Username})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req authBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "malformed body"})
		return
	}
	b.mu.Lock()
	_, taken := b.users[req.Username]
	if !taken {
		b.users[req.Username] = req.Password
	}
	b.mu.Unlock()
	if taken {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "username already taken"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *FakeBackend) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *FakeBackend) getUserData(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	b.mu.Lock()
	doc, ok := b.docs[username]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (b *FakeBackend) saveUserData(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	body, err := io.ReadAll(r.Body)
	if err != nil || username == "" || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid document"})
		return
	}
	b.mu.Lock()
	b.docs[username] = json.RawMessage(body)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
