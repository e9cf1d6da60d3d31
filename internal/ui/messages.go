package ui

import (
	"github.com/marcward/clack/internal/domain"
)

// StoreUpdatedMsg signals that shared client state changed and views should
// re-read it.
type StoreUpdatedMsg struct{}

// PeerSelectedMsg is emitted when the user picks a peer from the roster.
type PeerSelectedMsg struct {
	Peer domain.Identity
}

// TranscriptLoadedMsg delivers a freshly fetched conversation.
type TranscriptLoadedMsg struct {
	PeerID   string
	Messages []domain.Message
}

// UsersLoadedMsg delivers the identity directory.
type UsersLoadedMsg struct {
	Users []domain.Identity
}

// MessageSentMsg delivers the server-acknowledged copy of an outbound
// message.
type MessageSentMsg struct {
	Message domain.Message
}

// ToastMsg raises a transient toast line.
type ToastMsg struct {
	From    string
	Preview string
}

// toastExpiredMsg clears the toast after its display window.
type toastExpiredMsg struct{ seq int }

// sendMessageMsg is emitted when the user presses Enter in the input.
type sendMessageMsg struct {
	text string
}

// typingFlippedMsg is emitted when the input transitions between empty and
// non-empty.
type typingFlippedMsg struct {
	isTyping bool
}

// RequestFailedMsg reports a failed HTTP call; shown as transient status.
type RequestFailedMsg struct {
	Err error
}
