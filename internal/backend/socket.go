package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcward/clack/internal/domain"
)

const writeTimeout = 5 * time.Second

// Socket owns the live connection to the server: it dials, announces
// presence, pumps inbound events to the handler, and redials with a fixed
// delay after transport failures, up to a bounded attempt budget. The
// budget resets after every successful handshake.
type Socket struct {
	url      string
	token    string
	handler  EventHandler
	delay    time.Duration
	attempts int
	logger   *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	state     domain.ConnectionState
	closed    bool
	wasTyping bool
}

// NewSocket creates an unconnected Socket. Call Run to connect.
func NewSocket(url, token string, handler EventHandler, delay time.Duration, attempts int, logger *zap.Logger) *Socket {
	return &Socket{
		url:      url,
		token:    token,
		handler:  handler,
		delay:    delay,
		attempts: attempts,
		logger:   logger,
		state:    domain.StateDisconnected,
	}
}

// Run connects and blocks until ctx is cancelled, Close is called, or the
// reconnect budget is exhausted. Every state transition is reported to the
// handler exactly once.
func (s *Socket) Run(ctx context.Context, identity domain.Identity) error {
	s.setState(domain.StateConnecting)
	attemptsLeft := s.attempts

	for {
		if s.isClosed() || ctx.Err() != nil {
			s.setState(domain.StateDisconnected)
			return nil
		}

		log := s.logger.With(zap.String("link", uuid.NewString()[:8]))

		conn, err := s.dial(ctx)
		if err != nil {
			if s.isClosed() || ctx.Err() != nil {
				s.setState(domain.StateDisconnected)
				return nil
			}
			attemptsLeft--
			if attemptsLeft <= 0 {
				s.setState(domain.StateDisconnected)
				return fmt.Errorf("connect %s: %w", s.url, err)
			}
			log.Warn("dial failed, retrying",
				zap.Duration("delay", s.delay),
				zap.Int("attempts_left", attemptsLeft),
				zap.Error(err))
			s.setState(domain.StateReconnecting)
			if !s.waitRetry(ctx) {
				s.setState(domain.StateDisconnected)
				return nil
			}
			continue
		}

		s.setConn(conn)
		s.setState(domain.StateConnected)
		attemptsLeft = s.attempts
		log.Info("connected", zap.String("user", identity.Username))

		if err := s.AnnouncePresence(identity); err != nil {
			log.Warn("announce presence", zap.Error(err))
		}

		pumpErr := s.readPump(ctx, conn)
		s.dropConn(conn)

		if s.isClosed() || ctx.Err() != nil {
			s.setState(domain.StateDisconnected)
			return nil
		}

		log.Warn("connection lost", zap.Error(pumpErr))
		s.setState(domain.StateReconnecting)
		if !s.waitRetry(ctx) {
			s.setState(domain.StateDisconnected)
			return nil
		}
	}
}

// AnnouncePresence tells the server who is on this connection.
func (s *Socket) AnnouncePresence(identity domain.Identity) error {
	return s.send(eventUserJoin, identity)
}

// SendTyping signals the local typing state. Repeated calls with the same
// flag are collapsed; only emptiness flips go out on the wire.
func (s *Socket) SendTyping(isTyping bool) error {
	s.mu.Lock()
	if isTyping == s.wasTyping {
		s.mu.Unlock()
		return nil
	}
	s.wasTyping = isTyping
	s.mu.Unlock()

	event := eventTypingStop
	if isTyping {
		event = eventTypingStart
	}
	return s.send(event, struct{}{})
}

// Close releases the underlying transport and stops any pending retry.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "")
	}
	return nil
}

func (s *Socket) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	conn, _, err := websocket.Dial(ctx, s.url, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Socket) readPump(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if err := dispatchEvent(frame, s.handler); err != nil {
			s.logger.Warn("bad event frame", zap.Error(err))
		}
	}
}

func (s *Socket) send(event string, data any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("send %s: not connected", event)
	}

	frame, err := encodeEvent(event, data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

// setState records a transition and reports it to the handler. Setting the
// current state again is a no-op, so a link never produces duplicate
// transitions.
func (s *Socket) setState(state domain.ConnectionState) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.handler.OnConnectionState(state)
}

// State returns the current connection state.
func (s *Socket) State() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Socket) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.wasTyping = false
	s.mu.Unlock()
}

// dropConn clears the stored conn only if it is still the one that failed;
// Close may already have swapped it out.
func (s *Socket) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Socket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Socket) waitRetry(ctx context.Context) bool {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return !s.isClosed()
	}
}
