package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/marcward/clack/internal/backend"
	"github.com/marcward/clack/internal/domain"
	"github.com/marcward/clack/internal/state"
)

type focusTarget int

const (
	focusRoster focusTarget = iota
	focusTranscript
	focusInput
)

const (
	rosterWidth         = 28
	inputRenderedHeight = 3
	toastDuration       = 4 * time.Second
)

// Messenger is the slice of the REST API the UI drives.
type Messenger interface {
	GetMessages(ctx context.Context, peerID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, req backend.SendRequest) (domain.Message, error)
	Upload(ctx context.Context, name string, r io.Reader) (backend.UploadResult, error)
	UploadAvatar(ctx context.Context, name string, r io.Reader) (string, error)
}

// GIFSearcher resolves a /gif query to sendable results.
type GIFSearcher interface {
	Search(ctx context.Context, query string) ([]backend.GIF, error)
}

// TypingSender carries the local typing signal out on the live connection.
type TypingSender interface {
	SendTyping(isTyping bool) error
}

// Model is the root Bubble Tea model.
type Model struct {
	roster     UserListModel
	transcript TranscriptModel
	input      InputModel
	status     statusModel

	store    *state.Store
	typing   *state.TypingTracker
	focusTrk *state.FocusTracker
	api      Messenger
	gifs     GIFSearcher
	sender   TypingSender
	logger   *zap.Logger

	focus    focusTarget
	width    int
	height   int
	toastSeq int
}

// NewModel creates the root model with all sub-components.
func NewModel(store *state.Store, typing *state.TypingTracker, focusTrk *state.FocusTracker, api Messenger, gifs GIFSearcher, sender TypingSender, logger *zap.Logger) Model {
	m := Model{
		roster:     NewUserListModel(),
		transcript: NewTranscriptModel(),
		input:      NewInputModel(),
		status:     newStatusModel(),
		store:      store,
		typing:     typing,
		focusTrk:   focusTrk,
		api:        api,
		gifs:       gifs,
		sender:     sender,
		logger:     logger,
		focus:      focusRoster,
	}
	m.status.userName = store.LocalUser().Username
	m.transcript = m.transcript.SetLocalID(store.LocalUser().ID)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.input.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.distributeSize()
		return m, nil

	case tea.FocusMsg:
		m.focusTrk.SetFocused(true)
		return m.refreshFromStore(), nil

	case tea.BlurMsg:
		m.focusTrk.SetFocused(false)
		if err := m.sender.SendTyping(false); err != nil {
			m.logger.Debug("typing stop on blur", zap.Error(err))
		}
		return m, nil

	case StoreUpdatedMsg:
		return m.refreshFromStore(), nil

	case UsersLoadedMsg:
		m.store.SetUsers(msg.Users)
		return m.refreshFromStore(), nil

	case PeerSelectedMsg:
		m.store.OpenPeer(msg.Peer)
		m.transcript = m.transcript.SetPeerName(msg.Peer.Username)
		m.focus = focusInput
		m = m.updateFocus()
		return m, m.loadTranscriptCmd(msg.Peer.ID)

	case TranscriptLoadedMsg:
		m.store.SetTranscript(msg.PeerID, msg.Messages)
		return m.refreshFromStore(), nil

	case sendMessageMsg:
		if rest, ok := strings.CutPrefix(msg.text, "/avatar "); ok {
			return m, m.uploadAvatarCmd(strings.TrimSpace(rest))
		}
		peer := m.store.CurrentPeer()
		if peer == nil {
			return m, nil
		}
		if rest, ok := strings.CutPrefix(msg.text, "/gif "); ok {
			return m, m.sendGIFCmd(peer.ID, strings.TrimSpace(rest))
		}
		if rest, ok := strings.CutPrefix(msg.text, "/file "); ok {
			return m, m.sendFileCmd(peer.ID, strings.TrimSpace(rest))
		}
		return m, m.sendCmd(backend.SendRequest{
			Content:    msg.text,
			Kind:       domain.KindText,
			ReceiverID: peer.ID,
		})

	case MessageSentMsg:
		m.store.AppendOwn(msg.Message)
		return m.refreshFromStore(), nil

	case typingFlippedMsg:
		if err := m.sender.SendTyping(msg.isTyping); err != nil {
			m.logger.Debug("typing signal", zap.Error(err))
		}
		return m, nil

	case ToastMsg:
		m.toastSeq++
		m.status.toast = fmt.Sprintf("%s: %s", msg.From, msg.Preview)
		seq := m.toastSeq
		cmds = append(cmds, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		}))
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.status.toast = ""
		}
		return m, nil

	case RequestFailedMsg:
		m.status.warning = msg.Err.Error()
		return m, nil

	case scrolledToEndMsg:
		m.focusTrk.ClearBanner()
		m.status.banner = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.focus != focusInput && !m.roster.Filtering() {
				return m, tea.Quit
			}
		case "tab":
			m.focus = (m.focus + 1) % 3
			m = m.updateFocus()
			return m, nil
		case "shift+tab":
			m.focus = (m.focus + 2) % 3
			m = m.updateFocus()
			return m, nil
		case "esc":
			if m.focus == focusRoster && m.roster.Filtering() {
				break // the filter prompt owns esc
			}
			m.focus = focusRoster
			m = m.updateFocus()
			return m, nil
		case "r":
			// Re-fetch the open conversation; the refreshed transcript also
			// acknowledges it as read.
			if m.focus != focusInput && !m.roster.Filtering() {
				if peer := m.store.CurrentPeer(); peer != nil {
					return m, m.loadTranscriptCmd(peer.ID)
				}
			}
		}

		switch m.focus {
		case focusRoster:
			var cmd tea.Cmd
			m.roster, cmd = m.roster.Update(msg)
			cmds = append(cmds, cmd)
		case focusTranscript:
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			cmds = append(cmds, cmd)
		case focusInput:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	// Focus reporting drives the unfocused banner and the typing-stop signal
	// on blur.
	v.ReportFocus = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	rosterView := m.roster.View()
	rightPane := lipgloss.JoinVertical(lipgloss.Left, m.transcript.View(), m.input.View())
	content := lipgloss.JoinHorizontal(lipgloss.Top, rosterView, rightPane)

	full := lipgloss.JoinVertical(lipgloss.Left, content, m.status.View())

	v.SetContent(lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(full))
	return v
}

func (m Model) distributeSize() Model {
	contentHeight := m.height - 1 // bottom status bar

	clWidth := rosterWidth
	if clWidth > m.width {
		clWidth = m.width
	}
	m.roster = m.roster.SetSize(clWidth, contentHeight)

	rightWidth := m.width - clWidth
	if rightWidth < 1 {
		rightWidth = 1
	}
	transcriptHeight := contentHeight - inputRenderedHeight
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}

	m.transcript = m.transcript.SetSize(rightWidth, transcriptHeight)
	m.input = m.input.SetSize(rightWidth, inputRenderedHeight)
	m.status = m.status.SetWidth(m.width)

	return m
}

func (m Model) updateFocus() Model {
	m.roster = m.roster.SetFocused(m.focus == focusRoster)
	m.transcript = m.transcript.SetFocused(m.focus == focusTranscript)
	m.input = m.input.SetFocused(m.focus == focusInput)
	return m
}

func (m Model) refreshFromStore() Model {
	m.roster = m.roster.WithUsers(m.store.Users(), m.store.Unread, m.store.Online)
	m.transcript = m.transcript.SetMessages(m.store.Transcript())

	// Only the open peer's typing state belongs in a one-to-one transcript.
	var typingLine []string
	if peer := m.store.CurrentPeer(); peer != nil {
		for _, name := range m.typing.Typing() {
			if name == peer.Username {
				typingLine = append(typingLine, name)
			}
		}
	}
	m.transcript = m.transcript.SetTyping(typingLine)

	m.status.state = m.store.ConnectionState()
	m.status.banner = m.focusTrk.Banner()
	return m
}

func (m Model) loadTranscriptCmd(peerID string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		msgs, err := api.GetMessages(context.Background(), peerID)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return TranscriptLoadedMsg{PeerID: peerID, Messages: msgs}
	}
}

func (m Model) sendCmd(req backend.SendRequest) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		sent, err := api.SendMessage(context.Background(), req)
		if err != nil {
			// No partial application: the transcript is untouched on
			// failure.
			return RequestFailedMsg{Err: err}
		}
		return MessageSentMsg{Message: sent}
	}
}

func (m Model) sendGIFCmd(peerID, query string) tea.Cmd {
	api, gifs := m.api, m.gifs
	return func() tea.Msg {
		if gifs == nil {
			return RequestFailedMsg{Err: fmt.Errorf("gif search is not configured")}
		}
		results, err := gifs.Search(context.Background(), query)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		if len(results) == 0 {
			return RequestFailedMsg{Err: fmt.Errorf("no gifs found for %q", query)}
		}
		sent, err := api.SendMessage(context.Background(), backend.SendRequest{
			Content:    query,
			Kind:       domain.KindGIF,
			ReceiverID: peerID,
			FileRef:    results[0].FullRef,
		})
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return MessageSentMsg{Message: sent}
	}
}

func (m Model) sendFileCmd(peerID, path string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		defer f.Close()

		up, err := api.Upload(context.Background(), filepath.Base(path), f)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}

		kind := domain.KindFile
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".webp":
			kind = domain.KindImage
		}

		sent, err := api.SendMessage(context.Background(), backend.SendRequest{
			Kind:       kind,
			ReceiverID: peerID,
			FileRef:    up.FileRef,
			FileName:   up.FileName,
			FileSize:   up.FileSize,
		})
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return MessageSentMsg{Message: sent}
	}
}

func (m Model) uploadAvatarCmd(path string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		defer f.Close()

		if _, err := api.UploadAvatar(context.Background(), filepath.Base(path), f); err != nil {
			return RequestFailedMsg{Err: err}
		}
		return ToastMsg{From: "profile", Preview: "avatar updated"}
	}
}

// App wraps the Bubble Tea program for external use.
type App struct {
	program *tea.Program
}

// NewApp creates a new App ready to Run.
func NewApp(model Model) *App {
	return &App{program: tea.NewProgram(model)}
}

// Run starts the Bubble Tea event loop (blocks until quit).
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}

// Send sends a message into the Bubble Tea event loop from external
// goroutines.
func (a *App) Send(msg tea.Msg) {
	go a.program.Send(msg)
}

// DrawFunc returns a function suitable for state.Store that triggers a
// re-render.
func (a *App) DrawFunc() func() {
	return func() {
		a.Send(StoreUpdatedMsg{})
	}
}
