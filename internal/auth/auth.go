package auth

import (
	"errors"
	"sync"

	"github.com/matthieukhl/buildright/internal/events"
)

var ErrInvalidCredentials = errors.New("Invalid credentials. Please try again.")

const (
	DefaultUsername = "admin"
	DefaultPassword = "123"
)

// Authenticator checks a username/password pair
type Authenticator interface {
	Authenticate(username, password string) error
}

// StaticAuthenticator accepts exactly one fixed credential pair. It is a
// demo stand-in: no hashing, no tokens, no expiry.
type StaticAuthenticator struct {
	username string
	password string
}

func NewStaticAuthenticator(username, password string) *StaticAuthenticator {
	if username == "" && password == "" {
		username, password = DefaultUsername, DefaultPassword
	}
	return &StaticAuthenticator{username: username, password: password}
}

func (a *StaticAuthenticator) Authenticate(username, password string) error {
	if username == a.username && password == a.password {
		return nil
	}
	return ErrInvalidCredentials
}

// Gate is the process-wide admin session flag
type Gate struct {
	mu            sync.RWMutex
	authenticated bool
	authn         Authenticator
	dispatcher    events.Dispatcher
}

func NewGate(authn Authenticator, dispatcher events.Dispatcher) *Gate {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	return &Gate{authn: authn, dispatcher: dispatcher}
}

// Login sets the flag when the credentials match; a failure leaves it as is
func (g *Gate) Login(username, password string) error {
	if err := g.authn.Authenticate(username, password); err != nil {
		return err
	}
	g.mu.Lock()
	g.authenticated = true
	g.mu.Unlock()

	_ = g.dispatcher.Dispatch(events.AdminLogin{Username: username})
	return nil
}

func (g *Gate) Logout() {
	g.mu.Lock()
	g.authenticated = false
	g.mu.Unlock()

	_ = g.dispatcher.Dispatch(events.AdminLogout{})
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

var _ Authenticator = (*StaticAuthenticator)(nil)
