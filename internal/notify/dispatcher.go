// Package notify decides what happens when a message arrives: alert sound,
// transient toast, desktop notification, and the sticky new-messages
// banner. Side effects are best effort; a failing sound or notification is
// logged and never surfaced.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/marcward/clack/internal/domain"
)

const previewLimit = 50

// Plan is the outcome for one message. Sound and Desktop are executed by
// the dispatcher itself; Toast and Banner are handed back to the caller,
// which owns that UI state.
type Plan struct {
	Sound   bool
	Toast   bool
	Desktop bool
	Banner  bool
	From    string
	Title   string
	Preview string
}

// Qualifies reports whether any effect fires at all.
func (p Plan) Qualifies() bool {
	return p.Sound || p.Toast || p.Desktop || p.Banner
}

// SoundPlayer produces the inbound alert tone.
type SoundPlayer interface {
	Alert() error
}

// Notifier raises a desktop notification.
type Notifier func(title, body string) error

// Dispatcher turns qualifying inbound messages into notification effects,
// at most once per message id no matter how often the id is redelivered.
type Dispatcher struct {
	sound    SoundPlayer
	notifier Notifier
	soundOn  bool
	logger   *zap.Logger

	mu   sync.Mutex
	seen map[string]bool
}

func NewDispatcher(sound SoundPlayer, notifier Notifier, soundOn bool, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sound:    sound,
		notifier: notifier,
		soundOn:  soundOn,
		logger:   logger,
		seen:     make(map[string]bool),
	}
}

// Dispatch evaluates msg and executes the sound and desktop effects. A
// message qualifies iff it was sent to the local user by someone else;
// focus and the open conversation only shape which effects fire, never
// whether the message qualifies.
func (d *Dispatcher) Dispatch(msg domain.Message, openPeer *domain.Identity, localUser domain.Identity, focused bool) Plan {
	if !msg.AddressedTo(localUser.ID) {
		return Plan{}
	}
	if !d.markSeen(msg.ID) {
		return Plan{}
	}

	open := openPeer != nil && msg.Between(localUser.ID, openPeer.ID)

	plan := Plan{
		Sound:   d.soundOn,
		Toast:   true,
		Desktop: !open,
		Banner:  !focused,
		From:    msg.Sender.Username,
		Title:   "New message from " + msg.Sender.Username,
		Preview: Preview(msg),
	}

	if plan.Sound {
		if err := d.sound.Alert(); err != nil {
			d.logger.Warn("alert sound", zap.Error(err))
		}
	}
	if plan.Desktop {
		if err := d.notifier(plan.Title, plan.Preview); err != nil {
			d.logger.Warn("desktop notification", zap.Error(err))
		}
	}

	return plan
}

// markSeen records the id and reports whether it was new. Messages without
// an id cannot be deduplicated and always pass.
func (d *Dispatcher) markSeen(id string) bool {
	if id == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false
	}
	// Inbound ids grow without bound over a long session; start over
	// rather than grow forever. Redelivery windows are short.
	if len(d.seen) > 4096 {
		d.seen = make(map[string]bool)
	}
	d.seen[id] = true
	return true
}

// Preview is the truncated text shown in toasts and notifications.
func Preview(msg domain.Message) string {
	text := msg.Content
	if text == "" {
		switch msg.Kind {
		case domain.KindFile:
			text = msg.FileName
		case domain.KindImage:
			text = "Photo"
		case domain.KindGIF:
			text = "GIF"
		}
	}
	return truncate(text, previewLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
