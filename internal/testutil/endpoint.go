// Package testutil provides shared helpers for tests that talk to a data
// endpoint.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Endpoint is a fake data endpoint serving a canned JSON body. It records
// the id tokens it was called with.
type Endpoint struct {
	*httptest.Server

	tokenParam string

	mu     sync.Mutex
	status int
	body   string
	tokens []string
}

// NewEndpoint starts an endpoint that answers 200 with body. It is closed
// when the test ends.
func NewEndpoint(t *testing.T, body string) *Endpoint {
	t.Helper()
	SkipIfNoNetwork(t)

	e := &Endpoint{tokenParam: "idToken", status: http.StatusOK, body: body}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.Close)
	return e
}

// SetResponse replaces the status and body served from now on.
func (e *Endpoint) SetResponse(status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	e.body = body
}

// Tokens returns the tokens seen so far, in request order.
func (e *Endpoint) Tokens() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tokens...)
}

func (e *Endpoint) serve(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	e.tokens = append(e.tokens, r.URL.Query().Get(e.tokenParam))
	status, body := e.status, e.body
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
