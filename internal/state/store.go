package state

import (
	"sort"
	"sync"

	"github.com/marcward/clack/internal/domain"
)

// Store holds the client's view of the open conversation: the transcript,
// per-peer unread counts, and the online roster. All mutation happens under
// one lock; handlers run to completion before the next event touches state.
type Store struct {
	mu         sync.RWMutex
	localUser  domain.Identity
	openPeer   *domain.Identity
	transcript []domain.Message
	inView     map[string]bool // message ids already in the transcript
	unread     map[string]int  // peer id -> count
	users      []domain.Identity
	online     map[string]bool
	connState  domain.ConnectionState
	drawFunc   func()
}

func New(localUser domain.Identity, drawFunc func()) *Store {
	return &Store{
		localUser: localUser,
		inView:    make(map[string]bool),
		unread:    make(map[string]int),
		online:    make(map[string]bool),
		connState: domain.StateDisconnected,
		drawFunc:  drawFunc,
	}
}

func (s *Store) SetDrawFunc(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawFunc = f
}

func (s *Store) draw() {
	if s.drawFunc != nil {
		s.drawFunc()
	}
}

// Draw triggers a redraw from outside the store; the typing and focus
// trackers share the store's draw hook.
func (s *Store) Draw() {
	s.mu.RLock()
	f := s.drawFunc
	s.mu.RUnlock()
	if f != nil {
		f()
	}
}

// OnMessage routes one inbound message. The conversation-membership check
// is computed once and drives both the transcript append and the unread
// counter, so the two can never disagree.
func (s *Store) OnMessage(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Defensive: a message neither sent nor received by us is not ours to
	// show or count.
	if msg.SenderID != s.localUser.ID && msg.ReceiverID != s.localUser.ID {
		return
	}

	open := s.openPeer != nil && msg.Between(s.localUser.ID, s.openPeer.ID)

	if open && !s.inView[msg.ID] {
		s.transcript = append(s.transcript, msg)
		if msg.ID != "" {
			s.inView[msg.ID] = true
		}
	}

	if msg.AddressedTo(s.localUser.ID) && !open {
		s.unread[msg.SenderID]++
	}

	s.draw()
}

// OnUserJoined marks a user online, adding them to the roster if the
// directory fetch has not seen them yet.
func (s *Store) OnUserJoined(user domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.online[user.ID] = true
	for _, u := range s.users {
		if u.ID == user.ID {
			s.draw()
			return
		}
	}
	s.users = append(s.users, user)
	s.sortUsers()
	s.draw()
}

func (s *Store) OnUserLeft(user domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.online, user.ID)
	s.draw()
}

func (s *Store) OnConnectionState(state domain.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connState = state
	s.draw()
}

// OpenPeer switches the open conversation. The previous transcript is
// discarded entirely; the caller fetches a fresh one from the message store
// and installs it with SetTranscript. The peer's unread entry is cleared.
func (s *Store) OpenPeer(peer domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := peer
	s.openPeer = &p
	s.transcript = nil
	s.inView = make(map[string]bool)
	delete(s.unread, peer.ID)
	s.draw()
}

// SetTranscript installs a freshly fetched transcript for peerID. Stale
// fetches for a peer that is no longer open are dropped. Installing also
// clears the peer's unread entry, which covers a manual refresh without a
// peer switch.
func (s *Store) SetTranscript(peerID string, msgs []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openPeer == nil || s.openPeer.ID != peerID {
		return
	}

	s.transcript = msgs
	s.inView = make(map[string]bool, len(msgs))
	for _, m := range msgs {
		if m.ID != "" {
			s.inView[m.ID] = true
		}
	}
	delete(s.unread, peerID)
	s.draw()
}

// AppendOwn appends the server-acknowledged copy of a message the local
// user just sent, if its conversation is still the open one.
func (s *Store) AppendOwn(msg domain.Message) {
	s.OnMessage(msg)
}

func (s *Store) SetUsers(users []domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.sortUsers()
	s.draw()
}

func (s *Store) sortUsers() {
	sort.Slice(s.users, func(i, j int) bool {
		return s.users[i].Username < s.users[j].Username
	})
}

func (s *Store) LocalUser() domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localUser
}

// CurrentPeer returns the open peer, or nil when no conversation is open.
func (s *Store) CurrentPeer() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.openPeer == nil {
		return nil
	}
	p := *s.openPeer
	return &p
}

func (s *Store) Transcript() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Store) Unread(peerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[peerID]
}

func (s *Store) Users() []domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Identity, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) Online(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online[userID]
}

func (s *Store) ConnectionState() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connState
}
