package state

import (
	"sort"
	"sync"
	"time"
)

// DefaultTypingExpiry is how long a typing indicator stays up without a
// stop event.
const DefaultTypingExpiry = 3 * time.Second

type typingEntry struct {
	timer *time.Timer
}

// TypingTracker tracks which peers are currently typing toward the local
// user. Every entry carries its own auto-expiry timer; an explicit stop and
// a firing timer are both safe in any order, in either direction.
//
// A repeated start for a user already in the set leaves the existing timer
// running rather than restarting it. A user who types continuously past the
// expiry will see their indicator clear mid-activity until the next start
// event; see DESIGN.md for why this stays as is.
type TypingTracker struct {
	mu       sync.Mutex
	expiry   time.Duration
	entries  map[string]*typingEntry
	closed   bool
	onChange func()
}

// NewTypingTracker creates a tracker. onChange fires after every visible
// change to the set and may be nil.
func NewTypingTracker(expiry time.Duration, onChange func()) *TypingTracker {
	return &TypingTracker{
		expiry:   expiry,
		entries:  make(map[string]*typingEntry),
		onChange: onChange,
	}
}

// Start flags username as typing and arms the auto-expiry timer. If the
// username is already flagged, the existing timer keeps running.
func (t *TypingTracker) Start(username string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if _, ok := t.entries[username]; ok {
		t.mu.Unlock()
		return
	}

	e := &typingEntry{}
	e.timer = time.AfterFunc(t.expiry, func() { t.expire(username, e) })
	t.entries[username] = e
	t.mu.Unlock()

	t.notify()
}

// Stop removes username from the set and cancels its timer. Calling Stop
// for an absent username is a no-op.
func (t *TypingTracker) Stop(username string) {
	t.mu.Lock()
	e, ok := t.entries[username]
	if ok {
		e.timer.Stop()
		delete(t.entries, username)
	}
	t.mu.Unlock()

	if ok {
		t.notify()
	}
}

// expire is the timer callback. The entry identity check makes a stale fire
// harmless: if the username was stopped and re-started since this timer was
// armed, the map holds a different entry and nothing is removed.
func (t *TypingTracker) expire(username string, e *typingEntry) {
	t.mu.Lock()
	cur, ok := t.entries[username]
	if !ok || cur != e {
		t.mu.Unlock()
		return
	}
	delete(t.entries, username)
	t.mu.Unlock()

	t.notify()
}

// Typing returns the usernames currently flagged, sorted.
func (t *TypingTracker) Typing() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.entries))
	for name := range t.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close cancels every pending timer. The tracker accepts no further starts.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for name, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, name)
	}
}

func (t *TypingTracker) notify() {
	if t.onChange != nil {
		t.onChange()
	}
}
