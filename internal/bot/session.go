package bot

import "sync"

// session holds one user's conversation state. Its mutex is held for the
// whole of an event's handling, so a user's transitions never interleave.
type session struct {
	mu sync.Mutex
	st state
}

// sessions is the keyed map from user to conversation session. Sessions are
// created on first contact and never removed; an inactive session is just an
// idle state.
type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

func (s *sessions) get(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[userID]
	if !ok {
		sess = &session{st: idle()}
		s.m[userID] = sess
	}
	return sess
}
