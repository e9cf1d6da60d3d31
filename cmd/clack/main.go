package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marcward/clack/internal/backend"
	"github.com/marcward/clack/internal/config"
	"github.com/marcward/clack/internal/domain"
	"github.com/marcward/clack/internal/notify"
	"github.com/marcward/clack/internal/session"
	"github.com/marcward/clack/internal/state"
	"github.com/marcward/clack/internal/ui"
)

// eventRouter fans every live-connection event out to the components that
// react to it: the store, the typing tracker, and the notification
// dispatcher each get their own look at the same event.
type eventRouter struct {
	store      *state.Store
	typing     *state.TypingTracker
	focus      *state.FocusTracker
	dispatcher *notify.Dispatcher
	app        *ui.App
}

func (r *eventRouter) OnMessage(msg domain.Message) {
	r.store.OnMessage(msg)

	plan := r.dispatcher.Dispatch(msg, r.store.CurrentPeer(), r.store.LocalUser(), r.focus.Focused())
	if plan.Banner {
		r.focus.RaiseBanner()
	}
	if plan.Toast {
		r.app.Send(ui.ToastMsg{From: plan.From, Preview: plan.Preview})
	}
}

func (r *eventRouter) OnUserJoined(user domain.Identity)  { r.store.OnUserJoined(user) }
func (r *eventRouter) OnUserLeft(user domain.Identity)    { r.store.OnUserLeft(user) }
func (r *eventRouter) OnTypingStart(user domain.Identity) { r.typing.Start(user.Username) }
func (r *eventRouter) OnTypingStop(user domain.Identity)  { r.typing.Stop(user.Username) }

func (r *eventRouter) OnConnectionState(s domain.ConnectionState) {
	r.store.OnConnectionState(s)
}

func main() {
	cfgDir := config.Dir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", cfgPath, err)
		fmt.Fprintf(os.Stderr, "\nCreate the config file with:\n")
		fmt.Fprintf(os.Stderr, "  mkdir -p %s\n", cfgDir)
		fmt.Fprintf(os.Stderr, "  cat > %s << 'EOF'\n", cfgPath)
		fmt.Fprintf(os.Stderr, "server:\n  url: \"https://your-clack-server\"\nEOF\n")
		os.Exit(1)
	}

	// Setup logging to file; stdout belongs to the TUI.
	logPath := filepath.Join(cfgDir, "clack.log")
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{logPath}
	logCfg.ErrorOutputPaths = []string{logPath}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		logCfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	token, err := session.Token(filepath.Join(cfgDir, "token"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
		fmt.Fprintf(os.Stderr, "Log in with the web client and copy the token to %s\n", filepath.Join(cfgDir, "token"))
		os.Exit(1)
	}

	api := backend.NewAPI(cfg.Server.URL, token)

	meCtx, meCancel := context.WithTimeout(context.Background(), 10*time.Second)
	me, err := api.Me(meCtx)
	meCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to look up your identity: %v\n", err)
		os.Exit(1)
	}

	store := state.New(me, nil)
	typing := state.NewTypingTracker(state.DefaultTypingExpiry, store.Draw)
	focusTrk := state.NewFocusTracker(store.Draw)
	dispatcher := notify.NewDispatcher(notify.ToneAlert{}, notify.Desktop, cfg.SoundEnabled(), logger)

	router := &eventRouter{
		store:      store,
		typing:     typing,
		focus:      focusTrk,
		dispatcher: dispatcher,
	}

	sock := backend.NewSocket(
		wsEndpoint(cfg.Server.URL),
		token,
		router,
		cfg.Server.ReconnectDelay,
		cfg.Server.ReconnectAttempts,
		logger,
	)

	var gifs ui.GIFSearcher
	if cfg.Gif.URL != "" {
		gifs = backend.NewGIFClient(cfg.Gif.URL, cfg.Gif.Key)
	}

	model := ui.NewModel(store, typing, focusTrk, api, gifs, sock, logger)
	app := ui.NewApp(model)
	store.SetDrawFunc(app.DrawFunc())
	router.app = app

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Load the identity directory in the background.
	go func() {
		users, err := api.GetUsers(ctx)
		if err != nil {
			logger.Error("load users", zap.Error(err))
			app.Send(ui.RequestFailedMsg{Err: err})
			return
		}
		app.Send(ui.UsersLoadedMsg{Users: users})
	}()

	// Run the live connection in the background.
	go func() {
		if err := sock.Run(ctx, me); err != nil {
			logger.Error("live connection gave up", zap.Error(err))
		}
	}()

	// Run TUI (blocks until quit).
	runErr := app.Run()

	cancel()
	sock.Close()
	typing.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// wsEndpoint turns the configured HTTP base URL into the websocket URL.
func wsEndpoint(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
