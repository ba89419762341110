package tcp

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the server-side state of one connection: an id for log
// correlation and the account that logged in on it, if any.
type Session struct {
	ID         string
	RemoteAddr string

	mu     sync.Mutex
	userID int64
}

func NewSession(remoteAddr string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
	}
}

// Bind attaches the connection to an account.
func (s *Session) Bind(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// Clear forgets the bound account.
func (s *Session) Clear() {
	s.Bind(0)
}

// UserID returns the bound account.
func (s *Session) UserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != 0
}
