package backend

import (
	"context"

	"github.com/marcward/clack/internal/domain"
)

// EventHandler receives events from the live connection. Implementations
// must be safe for calls from the socket's read goroutine.
type EventHandler interface {
	OnMessage(msg domain.Message)
	OnUserJoined(user domain.Identity)
	OnUserLeft(user domain.Identity)
	OnTypingStart(user domain.Identity)
	OnTypingStop(user domain.Identity)
	OnConnectionState(state domain.ConnectionState)
}

// Connection is the live-connection surface the rest of the client uses.
type Connection interface {
	Run(ctx context.Context, identity domain.Identity) error
	AnnouncePresence(identity domain.Identity) error
	SendTyping(isTyping bool) error
	Close() error
}
