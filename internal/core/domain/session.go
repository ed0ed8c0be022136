package domain

import "time"

// Session is an authenticated registry session.
// It is created by a login and passed explicitly to calls that need it; it is never persisted.
type Session struct {
	Email     string
	Token     string
	Registry  string
	CreatedAt time.Time

	invalidated bool
}

// NewSession creates a session for the given credentials.
func NewSession(email, token, registry string) *Session {
	return &Session{
		Email:     email,
		Token:     token,
		Registry:  registry,
		CreatedAt: time.Now(),
	}
}

// Valid reports whether the session can authenticate requests.
func (s *Session) Valid() bool {
	return s != nil && !s.invalidated && s.Token != ""
}

// Invalidate ends the session. Subsequent calls to Valid report false.
func (s *Session) Invalidate() {
	if s == nil {
		return
	}
	s.invalidated = true
	s.Token = ""
}
