package bot

import (
	"sync"

	"giveaway-bot/internal/features/giveaway/models"
)

// sessionStep tracks where an admin is in a multi-message flow.
type sessionStep int

const (
	stepIdle sessionStep = iota
	stepAwaitMedia
	stepAwaitDescription
	stepAwaitChannels
	stepAwaitButtonText
	stepAwaitPublishChannel
	stepAwaitConfirm
	stepAwaitNewDescription
	stepAwaitWinnerUsername
)

// adminSession is the per-admin conversation state for the creation
// and edit flows. Telegram delivers one update at a time per user, so
// the map is the only shared state.
type adminSession struct {
	Step  sessionStep
	Draft models.GiveawayDraft

	// EditGiveawayID targets the description edit flow.
	EditGiveawayID int64
	// PickGiveawayID targets the manual winner flow.
	PickGiveawayID int64
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*adminSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*adminSession)}
}

// get returns the admin's session, creating an idle one on first use.
func (s *sessionStore) get(userID int64) *adminSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		session = &adminSession{}
		s.sessions[userID] = session
	}
	return session
}

// reset drops the admin back to the idle state.
func (s *sessionStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
