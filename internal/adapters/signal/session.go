package signal

import (
	"sync"

	"github.com/dkeye/wavelink/internal/core"
	"github.com/dkeye/wavelink/internal/domain"
)

type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// session is the server-side state for one client connection. The id is
// assigned by the server at join time, never taken from the client, and is
// stable until the connection closes. The struct is mutated only by the
// connection's read pump; the mutex covers reads from registry fan-out.
type session struct {
	conn core.SignalConnection

	mu          sync.Mutex
	state       sessionState
	id          core.SessionID
	displayName string
	room        domain.RoomName
}

func newSession(conn core.SignalConnection) *session {
	return &session{conn: conn}
}

func (s *session) ID() core.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

func (s *session) Signal() core.SignalConnection { return s.conn }

// snapshot returns the fields the router needs without holding the lock
// across registry calls.
func (s *session) snapshot() (sessionState, core.SessionID, domain.RoomName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.id, s.room
}
