package notify

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/marcward/clack/internal/domain"
)

var (
	localUser = domain.Identity{ID: "u1", Username: "alice"}
	peer      = domain.Identity{ID: "u2", Username: "bob"}
)

// mockSound counts Alert calls and can fail on demand.
type mockSound struct {
	calls int
	err   error
}

func (m *mockSound) Alert() error {
	m.calls++
	return m.err
}

// mockNotifier records desktop notifications.
type mockNotifier struct {
	calls []struct{ title, body string }
	err   error
}

func (m *mockNotifier) notify(title, body string) error {
	m.calls = append(m.calls, struct{ title, body string }{title, body})
	return m.err
}

func fromPeer(id, content string) domain.Message {
	return domain.Message{
		ID:         id,
		Content:    content,
		SenderID:   peer.ID,
		ReceiverID: localUser.ID,
		Sender:     domain.Sender{Username: peer.Username},
		Kind:       domain.KindText,
	}
}

func TestDispatch_OpenConversationFocused(t *testing.T) {
	sound := &mockSound{}
	desktop := &mockNotifier{}
	d := NewDispatcher(sound, desktop.notify, true, zap.NewNop())

	plan := d.Dispatch(fromPeer("m1", "hi"), &peer, localUser, true)

	if !plan.Sound || !plan.Toast {
		t.Errorf("plan = %+v, want sound and toast", plan)
	}
	if plan.Desktop {
		t.Error("desktop notification planned for the open conversation")
	}
	if plan.Banner {
		t.Error("banner planned while focused")
	}
	if sound.calls != 1 {
		t.Errorf("sound fired %d times, want 1", sound.calls)
	}
	if len(desktop.calls) != 0 {
		t.Errorf("desktop fired %d times, want 0", len(desktop.calls))
	}
}

func TestDispatch_ClosedConversationUnfocused(t *testing.T) {
	sound := &mockSound{}
	desktop := &mockNotifier{}
	d := NewDispatcher(sound, desktop.notify, true, zap.NewNop())

	other := domain.Identity{ID: "u3", Username: "carol"}
	plan := d.Dispatch(fromPeer("m1", "hi"), &other, localUser, false)

	if !plan.Sound || !plan.Toast || !plan.Desktop || !plan.Banner {
		t.Errorf("plan = %+v, want all effects", plan)
	}
	if len(desktop.calls) != 1 {
		t.Fatalf("desktop fired %d times, want 1", len(desktop.calls))
	}
	if desktop.calls[0].title != "New message from bob" {
		t.Errorf("title = %q", desktop.calls[0].title)
	}
	if desktop.calls[0].body != "hi" {
		t.Errorf("body = %q", desktop.calls[0].body)
	}
}

func TestDispatch_NoOpenPeerGetsDesktop(t *testing.T) {
	d := NewDispatcher(&mockSound{}, (&mockNotifier{}).notify, true, zap.NewNop())

	plan := d.Dispatch(fromPeer("m1", "hi"), nil, localUser, true)
	if !plan.Desktop {
		t.Error("no open peer means no open conversation; desktop must fire")
	}
}

func TestDispatch_NonQualifyingMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.Message
	}{
		{
			name: "own outbound message",
			msg:  domain.Message{ID: "m1", SenderID: localUser.ID, ReceiverID: peer.ID},
		},
		{
			name: "between two other users",
			msg:  domain.Message{ID: "m2", SenderID: "u3", ReceiverID: "u4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sound := &mockSound{}
			desktop := &mockNotifier{}
			d := NewDispatcher(sound, desktop.notify, true, zap.NewNop())

			plan := d.Dispatch(tt.msg, &peer, localUser, false)
			if plan.Qualifies() {
				t.Errorf("plan = %+v, want nothing", plan)
			}
			if sound.calls != 0 || len(desktop.calls) != 0 {
				t.Error("side effects fired for a non-qualifying message")
			}
		})
	}
}

func TestDispatch_AtMostOncePerMessageID(t *testing.T) {
	sound := &mockSound{}
	desktop := &mockNotifier{}
	d := NewDispatcher(sound, desktop.notify, true, zap.NewNop())

	msg := fromPeer("m1", "hi")
	first := d.Dispatch(msg, nil, localUser, false)
	second := d.Dispatch(msg, nil, localUser, false)
	third := d.Dispatch(msg, nil, localUser, true)

	if !first.Qualifies() {
		t.Fatal("first delivery produced no plan")
	}
	if second.Qualifies() || third.Qualifies() {
		t.Error("redelivery produced effects")
	}
	if sound.calls != 1 || len(desktop.calls) != 1 {
		t.Errorf("sound=%d desktop=%d, want 1 each", sound.calls, len(desktop.calls))
	}
}

func TestDispatch_SoundDisabled(t *testing.T) {
	sound := &mockSound{}
	d := NewDispatcher(sound, (&mockNotifier{}).notify, false, zap.NewNop())

	plan := d.Dispatch(fromPeer("m1", "hi"), nil, localUser, true)
	if plan.Sound {
		t.Error("plan.Sound = true with sound disabled")
	}
	if !plan.Toast {
		t.Error("toast must still fire with sound disabled")
	}
	if sound.calls != 0 {
		t.Errorf("sound fired %d times, want 0", sound.calls)
	}
}

func TestDispatch_SideEffectErrorsSwallowed(t *testing.T) {
	sound := &mockSound{err: errors.New("no audio device")}
	desktop := &mockNotifier{err: errors.New("no notification daemon")}
	d := NewDispatcher(sound, desktop.notify, true, zap.NewNop())

	plan := d.Dispatch(fromPeer("m1", "hi"), nil, localUser, false)

	// Failures are logged, not reported: the toast and banner paths are
	// unaffected.
	if !plan.Toast || !plan.Banner {
		t.Errorf("plan = %+v, want toast and banner despite failures", plan)
	}
}

func TestPreview_Truncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := Preview(domain.Message{Content: long, Kind: domain.KindText})
	want := strings.Repeat("a", 50) + "..."
	if got != want {
		t.Errorf("Preview() = %q, want %q", got, want)
	}

	exact := strings.Repeat("b", 50)
	if got := Preview(domain.Message{Content: exact}); got != exact {
		t.Errorf("Preview() = %q, want unmodified 50-rune content", got)
	}

	// Rune-aware, not byte-aware.
	wide := strings.Repeat("ü", 60)
	got = Preview(domain.Message{Content: wide})
	if got != strings.Repeat("ü", 50)+"..." {
		t.Errorf("Preview() mangled multi-byte content: %q", got)
	}
}

func TestPreview_KindFallbacks(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.Message
		want string
	}{
		{"file", domain.Message{Kind: domain.KindFile, FileName: "report.pdf"}, "report.pdf"},
		{"image", domain.Message{Kind: domain.KindImage}, "Photo"},
		{"gif", domain.Message{Kind: domain.KindGIF}, "GIF"},
		{"text wins over kind", domain.Message{Kind: domain.KindFile, Content: "see attached", FileName: "report.pdf"}, "see attached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.msg); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}
