package domain

import "time"

// Identity is a user known to the server. Equality is by ID; AvatarRef may
// change out-of-band.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarRef string `json:"avatarRef,omitempty"`
}

// MessageKind distinguishes what a message carries.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindFile  MessageKind = "file"
	KindImage MessageKind = "image"
	KindGIF   MessageKind = "gif"
)

// Sender is the denormalized author info the server attaches to a message.
type Sender struct {
	Username  string `json:"username"`
	AvatarRef string `json:"avatarRef,omitempty"`
}

// Message is a single chat message. The ID is assigned by the server; a
// message that has not been acknowledged yet has no ID.
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Sender     Sender      `json:"sender"`
	Timestamp  time.Time   `json:"timestamp"`
	Kind       MessageKind `json:"kind"`
	FileRef    string      `json:"fileRef,omitempty"`
	FileName   string      `json:"fileName,omitempty"`
	FileSize   int64       `json:"fileSize,omitempty"`
}

// Between reports whether the message belongs to the one-to-one conversation
// between a and b. The pair is unordered: either participant may be the
// sender.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}

// AddressedTo reports whether the message qualifies for unread counting and
// notification: sent to user and not authored by them.
func (m Message) AddressedTo(userID string) bool {
	return m.ReceiverID == userID && m.SenderID != userID
}

// ConnectionState describes the live-connection lifecycle.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateReconnecting
	StateDisconnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
