// Command pinnwand is a terminal client for the Pinnwand message
// board: boards grouped by department, a live comment thread per
// message, and a local notification log fed by the realtime channel.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/app"
	"github.com/mfellner/pinnwand/internal/feedback"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/realtime"
	"github.com/mfellner/pinnwand/internal/session"
	"github.com/mfellner/pinnwand/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pinnwand:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the configuration file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := openLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logger.Sync()

	sessions, err := session.Open()
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening notification store: %w", err)
	}
	defer st.Close()

	notices := feedback.NewCenter(time.Duration(cfg.Display.NoticeTTLSec) * time.Second)
	client := api.NewClient(cfg.Server.APIBaseURL, sessions, notices, logger)
	channel := realtime.NewChannel(cfg.Server.RealtimeURL, cfg.Server.Environment, sessions, logger)

	root := app.New(client, sessions, notices, channel, st, logger)
	program := tea.NewProgram(root, tea.WithAltScreen())

	// External event sources feed the UI loop through program.Send.
	notices.SetListener(func(n feedback.Notice) {
		program.Send(app.NoticeMsg{Notice: n})
	})
	client.OnAuthFailure(func() {
		program.Send(app.AuthFailedMsg{})
	})
	removeListener := channel.Subscribe(func(ev realtime.Event) {
		program.Send(app.RealtimeMsg{Event: ev})
	})
	defer removeListener()

	logger.Info("starting",
		zap.String("environment", cfg.Server.Environment),
		zap.String("api", cfg.Server.APIBaseURL))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openLogger builds a file-backed zap logger. The terminal belongs to
// the UI, so nothing may log to stdout or stderr.
func openLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
