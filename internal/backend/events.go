package backend

import (
	"encoding/json"
	"fmt"

	"github.com/marcward/clack/internal/domain"
)

// Wire event names used on the live connection.
const (
	eventMessageReceive = "message:receive"
	eventUserJoined     = "user:joined"
	eventUserLeft       = "user:left"
	eventTypingStart    = "typing:start"
	eventTypingStop     = "typing:stop"

	eventUserJoin = "user:join" // outbound presence announcement
)

// envelope is the framing for every event on the socket, in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", event, err)
	}
	return json.Marshal(envelope{Event: event, Data: raw})
}

// dispatchEvent decodes one inbound frame and routes it to the handler.
// Unknown events are skipped, not errors: the server may grow event types
// this client does not know about.
func dispatchEvent(frame []byte, h EventHandler) error {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Event {
	case eventMessageReceive:
		var msg domain.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		h.OnMessage(msg)
	case eventUserJoined:
		var user domain.Identity
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		h.OnUserJoined(user)
	case eventUserLeft:
		var user domain.Identity
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		h.OnUserLeft(user)
	case eventTypingStart:
		var user domain.Identity
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		h.OnTypingStart(user)
	case eventTypingStop:
		var user domain.Identity
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		h.OnTypingStop(user)
	}

	return nil
}
