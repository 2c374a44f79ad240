// Package session gates access to protected commands.
//
// A session is derived entirely from the stored bearer credential. Claims are
// decoded locally for display only; the credential is never verified here and
// the remote service stays the sole authority for authorization.
package session

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"taskdash/internal/service"
)

// ErrNoSession is returned when no usable credential is stored. A stored
// credential that cannot be decoded is reported the same way.
var ErrNoSession = errors.New("no session")

// Session is the identity derived from the credential.
type Session struct {
	// Name is the display name ("name" claim, falling back to "email").
	Name  string
	Email string
	Token string
}

// claims are the display claims issued by the task service.
type claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager reads, creates and destroys sessions over a Store.
type Manager struct {
	store Store
	log   logr.Logger
}

// NewManager creates a Manager over store.
func NewManager(store Store, log logr.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Current returns the session for the stored credential.
func (m *Manager) Current() (Session, error) {
	token, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.log.V(1).Info("reading credential failed", "error", err.Error())
		}
		return Session{}, ErrNoSession
	}
	s, err := decode(token)
	if err != nil {
		m.log.V(1).Info("credential not decodable", "error", err.Error())
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Begin persists the credential returned by a successful login.
func (m *Manager) Begin(token string) (Session, error) {
	if err := m.store.Save(token); err != nil {
		return Session{}, fmt.Errorf("saving credential: %w", err)
	}
	s, err := m.Current()
	if err != nil {
		// Never leave a credential behind that Current cannot use
		_ = m.store.Clear()
		return Session{}, fmt.Errorf("credential not usable: %w", err)
	}
	return s, nil
}

// End erases the credential. The server is not told.
func (m *Manager) End() error {
	return m.store.Clear()
}

// TokenSource returns an oauth2.TokenSource that reads the current credential
// on every request. A missing credential fails with service.ErrUnauthorized.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return storeSource{store: m.store}
}

type storeSource struct {
	store Store
}

func (s storeSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w (%w)", service.ErrUnauthorized, err)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func decode(token string) (Session, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Session{}, err
	}
	name := c.Name
	if name == "" {
		name = c.Email
	}
	return Session{Name: name, Email: c.Email, Token: token}, nil
}
