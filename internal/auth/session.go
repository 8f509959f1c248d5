package auth

import (
	"sync"
	"time"
)

// Session holds the signed-in referee of this process. Sync runs only while
// a session is active.
type Session struct {
	issuer *Issuer

	mu      sync.RWMutex
	userID  string
	expires time.Time
}

func NewSession(issuer *Issuer) *Session {
	return &Session{issuer: issuer}
}

// SignIn verifies token and makes its user current.
func (s *Session) SignIn(token string) (string, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = claims.UserID
	s.expires = claims.ExpiresAt.Time

	return claims.UserID, nil
}

// SignOut ends the session. Local data is kept.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = ""
	s.expires = time.Time{}
}

// CurrentUser returns the signed-in user while the token is unexpired.
func (s *Session) CurrentUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userID == "" || !s.issuer.now().Before(s.expires) {
		return "", false
	}

	return s.userID, true
}
