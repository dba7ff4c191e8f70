// Package session gates data loading on a completed sign-in.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned when sign-in completes without a token.
var ErrEmptyToken = errors.New("sign-in completed without a token")

// State is the gate's lifecycle position.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Credentials are what the identity provider hands back on sign-in.
type Credentials struct {
	// Token is the opaque bearer id token.
	Token string
	// Identity is a human-readable label, typically an email address.
	Identity string
}

// Gate tracks the bearer token and decides when a load may run. There is
// no logout: once a token is held it stays until it is replaced.
type Gate struct {
	mu    sync.Mutex
	state State
	creds Credentials
}

// NewGate returns a gate in the unauthenticated state.
func NewGate() *Gate {
	return &Gate{}
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Credentials returns the held credentials and whether a token is held.
func (g *Gate) Credentials() (Credentials, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creds, g.creds.Token != ""
}

// BeginSignIn marks an identity-provider flow as in progress. A held token
// stays usable until the flow completes with a new one.
func (g *Gate) BeginSignIn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateAuthenticating
}

// CancelSignIn abandons an in-progress flow.
func (g *Gate) CancelSignIn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticating {
		return
	}
	if g.creds.Token != "" {
		g.state = StateAuthenticated
		return
	}
	g.state = StateUnauthenticated
}

// Complete is the identity-provider callback. It reports whether the caller
// must start a load: true exactly once per distinct token.
func (g *Gate) Complete(creds Credentials) (bool, error) {
	creds.Token = strings.TrimSpace(creds.Token)
	if creds.Token == "" {
		return false, ErrEmptyToken
	}
	creds.Identity = strings.TrimSpace(creds.Identity)
	if creds.Identity == "" {
		creds.Identity = IdentityFromToken(creds.Token)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateAuthenticated
	if creds.Token == g.creds.Token {
		if creds.Identity != "" {
			g.creds.Identity = creds.Identity
		}
		return false, nil
	}
	g.creds = creds
	return true, nil
}

// IdentityFromToken reads the email claim from a JWT id token without
// verifying it; the data endpoint does the verification. Tokens that are not
// JWTs yield "".
func IdentityFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"email", "preferred_username", "sub"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
